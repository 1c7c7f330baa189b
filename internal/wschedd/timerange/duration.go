package timerange

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDuration is returned for a duration that is not strictly positive.
var ErrInvalidDuration = errors.New("invalid duration")

// maxComponent bounds each parsed field so the total cannot overflow.
const maxComponent = 1 << 31

var maxSeconds = int64(math.MaxInt64 / int64(time.Second))

// Components is a duration expressed in calendar-free units.
type Components struct {
	Days    int64
	Hours   int64
	Minutes int64
	Seconds int64
}

// TotalSeconds returns s + 60m + 3600h + 86400d.
func (c Components) TotalSeconds() int64 {
	return c.Seconds + 60*c.Minutes + 3600*c.Hours + 86400*c.Days
}

// Duration converts the components into a time.Duration. Negative components
// and non-positive totals yield ErrInvalidDuration.
func (c Components) Duration() (time.Duration, error) {
	if c.Days < 0 || c.Hours < 0 || c.Minutes < 0 || c.Seconds < 0 {
		return 0, ErrInvalidDuration
	}
	total := c.TotalSeconds()
	if total <= 0 || total > maxSeconds {
		return 0, ErrInvalidDuration
	}
	return time.Duration(total) * time.Second, nil
}

// ParseComponents parses decimal day, hour, minute and second fields.
// Blank fields count as zero.
func ParseComponents(days, hours, minutes, seconds string) (Components, error) {
	var c Components
	fields := []struct {
		raw string
		dst *int64
	}{
		{days, &c.Days},
		{hours, &c.Hours},
		{minutes, &c.Minutes},
		{seconds, &c.Seconds},
	}
	for _, f := range fields {
		raw := strings.TrimSpace(f.raw)
		if raw == "" {
			continue
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 || n > maxComponent {
			return Components{}, ErrInvalidDuration
		}
		*f.dst = n
	}
	return c, nil
}
