package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTime accepts Unix seconds, RFC 3339 or a local "YYYY-MM-DD[ HH:MM]"
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(sec, 0), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q: use Unix seconds, RFC 3339 or YYYY-MM-DD HH:MM", s)
}

// UnixString converts a time flag to the Unix seconds string the API takes.
// An empty flag stays empty.
func UnixString(s string, loc *time.Location) (string, error) {
	if s == "" {
		return "", nil
	}
	t, err := ParseTime(s, loc)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(t.Unix(), 10), nil
}

// DurationParts splits d into the day, hour, minute and second fields of a
// save request
func DurationParts(d time.Duration) (days, hours, minutes, seconds string) {
	total := int64(d / time.Second)
	return strconv.FormatInt(total/86400, 10),
		strconv.FormatInt(total%86400/3600, 10),
		strconv.FormatInt(total%3600/60, 10),
		strconv.FormatInt(total%60, 10)
}
