package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrale/wrale-scheduler/internal/wschedd/timerange"
)

// Monday 2024-03-04 09:00 UTC
var monday = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

func weeks(n int) time.Duration { return time.Duration(n) * 7 * 24 * time.Hour }

func TestExpandWeeklyWindowSizes(t *testing.T) {
	e := NewExpander()
	def := Definition{
		Range: timerange.New(monday, time.Hour),
		Mode:  ModeWeekly,
		Stop:  monday.Add(weeks(52)),
	}

	one, err := e.Expand(def, timerange.New(monday, weeks(1)))
	require.NoError(t, err)
	assert.Len(t, one, 1)

	two, err := e.Expand(def, timerange.New(monday, weeks(2)))
	require.NoError(t, err)
	require.Len(t, two, 2)
	assert.Equal(t, monday.Add(weeks(1)), two[1].Start)
	assert.Equal(t, time.Hour, two[1].Duration)
}

func TestExpandRespectsStop(t *testing.T) {
	e := NewExpander()
	def := Definition{
		Range: timerange.New(monday, time.Hour),
		Mode:  ModeDaily,
		Stop:  monday.Add(72 * time.Hour), // three occurrences
	}

	got, err := e.Expand(def, timerange.New(monday.Add(-weeks(1)), weeks(4)))
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, occ := range got {
		assert.True(t, occ.Start.Before(def.Stop))
	}

	// The stop instant itself is excluded.
	def.Stop = monday.Add(48 * time.Hour)
	got, err = e.Expand(def, timerange.New(monday, weeks(1)))
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestExpandOneOff(t *testing.T) {
	e := NewExpander()
	def := Definition{Range: timerange.New(monday, time.Hour), Mode: ModeOnce}

	got, err := e.Expand(def, timerange.New(monday.Add(30*time.Minute), time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []timerange.Range{def.Range}, got)

	got, err = e.Expand(def, timerange.New(monday.Add(time.Hour), time.Hour))
	require.NoError(t, err)
	assert.Empty(t, got, "touching window must not include the show")
}

func TestExpandPartialOverlapAtWindowEdges(t *testing.T) {
	e := NewExpander()
	def := Definition{
		Range: timerange.New(monday, 2*time.Hour),
		Mode:  ModeDaily,
		Stop:  monday.Add(weeks(1)),
	}

	// Window opens in the middle of the second occurrence.
	window := timerange.New(monday.Add(25*time.Hour), 24*time.Hour)
	got, err := e.Expand(def, window)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, monday.Add(24*time.Hour), got[0].Start)
	assert.Equal(t, monday.Add(48*time.Hour), got[1].Start)
}

func TestExpandIntervalMatchesBruteForce(t *testing.T) {
	e := NewExpander()
	def := Definition{
		Range: timerange.New(monday, 90*time.Minute),
		Mode:  ModeXDays,
		XData: "3",
		Stop:  monday.AddDate(2, 0, 0),
	}
	window := timerange.New(monday.AddDate(1, 0, 0), weeks(3))

	var want []timerange.Range
	for start := monday; start.Before(def.Stop); start = start.AddDate(0, 0, 3) {
		occ := timerange.New(start, def.Range.Duration)
		if timerange.Overlaps(occ, window) {
			want = append(want, occ)
		}
	}

	got, err := e.Expand(def, window)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestExpandMonthlyDoesNotDrift(t *testing.T) {
	e := NewExpander()
	first := time.Date(2024, 1, 31, 20, 0, 0, 0, time.UTC)
	def := Definition{
		Range: timerange.New(first, time.Hour),
		Mode:  ModeMonthly,
		Stop:  first.AddDate(1, 0, 0),
	}

	got, err := e.Expand(def, timerange.Between(first, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		time.Date(2024, 1, 31, 20, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 20, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 20, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 30, 20, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 31, 20, 0, 0, 0, time.UTC),
	}, starts(got))
}

func starts(rs []timerange.Range) []time.Time {
	out := make([]time.Time, len(rs))
	for i, r := range rs {
		out[i] = r.Start
	}
	return out
}

func TestExpandMonthlyClampsToMonthEnd(t *testing.T) {
	day := func(year int, month time.Month, d int) time.Time {
		return time.Date(year, month, d, 9, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name  string
		mode  Mode
		xData string
		first time.Time
		end   time.Time
		want  []time.Time
	}{
		{
			name:  "monthly from the 31st",
			mode:  ModeMonthly,
			first: day(2025, 1, 31),
			end:   day(2025, 6, 1),
			want:  []time.Time{day(2025, 1, 31), day(2025, 2, 28), day(2025, 3, 31), day(2025, 4, 30), day(2025, 5, 31)},
		},
		{
			name:  "monthly from the 30th",
			mode:  ModeMonthly,
			first: day(2025, 1, 30),
			end:   day(2025, 4, 1),
			want:  []time.Time{day(2025, 1, 30), day(2025, 2, 28), day(2025, 3, 30)},
		},
		{
			name:  "every two months from the 31st",
			mode:  ModeXMonths,
			xData: "2",
			first: day(2024, 12, 31),
			end:   day(2025, 7, 1),
			want:  []time.Time{day(2024, 12, 31), day(2025, 2, 28), day(2025, 4, 30), day(2025, 6, 30)},
		},
		{
			name:  "leap february",
			mode:  ModeMonthly,
			first: day(2024, 1, 29),
			end:   day(2024, 3, 1),
			want:  []time.Time{day(2024, 1, 29), day(2024, 2, 29)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := Definition{
				Range: timerange.New(tt.first, time.Hour),
				Mode:  tt.mode,
				XData: tt.xData,
				Stop:  tt.first.AddDate(2, 0, 0),
			}
			got, err := NewExpander().Expand(def, timerange.Between(tt.first, tt.end))
			require.NoError(t, err)
			assert.Equal(t, tt.want, starts(got))
		})
	}
}

func TestExpandMonthlyLateWindow(t *testing.T) {
	first := time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC)
	def := Definition{
		Range: timerange.New(first, time.Hour),
		Mode:  ModeMonthly,
		Stop:  first.AddDate(3, 0, 0),
	}

	got, err := NewExpander().Expand(def, timerange.Between(
		time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{time.Date(2026, 2, 28, 9, 0, 0, 0, time.UTC)}, starts(got))
}

func TestExpandKeepsWallClockAcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	e := NewExpander(WithLocation(ny))
	first := time.Date(2024, 3, 8, 10, 0, 0, 0, ny)
	def := Definition{
		Range: timerange.New(first, time.Hour),
		Mode:  ModeDaily,
		Stop:  first.AddDate(0, 0, 5),
	}

	got, err := e.Expand(def, timerange.Between(first, first.AddDate(0, 0, 5)))
	require.NoError(t, err)
	require.Len(t, got, 5)
	for _, occ := range got {
		assert.Equal(t, 10, occ.Start.In(ny).Hour())
	}
}

func TestExpandRRule(t *testing.T) {
	e := NewExpander()
	def := Definition{
		Range: timerange.New(monday, time.Hour),
		Mode:  ModeRRule,
		XData: "RRULE:FREQ=WEEKLY;BYDAY=MO,WE",
		Stop:  monday.Add(weeks(10)),
	}

	got, err := e.Expand(def, timerange.New(monday, weeks(2)))
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, monday.Add(48*time.Hour), got[1].Start)
	assert.Equal(t, time.Wednesday, got[3].Start.Weekday())
}

func TestExpandLimit(t *testing.T) {
	e := NewExpander(WithLimit(10))
	def := Definition{
		Range: timerange.New(monday, time.Minute),
		Mode:  ModeDaily,
		Stop:  monday.AddDate(1, 0, 0),
	}

	_, err := e.Expand(def, def.Bounds())
	assert.ErrorIs(t, err, ErrTooManyOccurrences)
}

func TestValidate(t *testing.T) {
	e := NewExpander()
	valid := Definition{Range: timerange.New(monday, time.Hour), Mode: ModeXWeeks, XData: "2", Stop: monday.Add(weeks(8))}

	tests := []struct {
		name    string
		mutate  func(d *Definition)
		wantErr error
	}{
		{"valid", func(d *Definition) {}, nil},
		{"zero duration", func(d *Definition) { d.Range.Duration = 0 }, timerange.ErrInvalidDuration},
		{"unknown mode", func(d *Definition) { d.Mode = "fortnightly" }, ErrUnknownMode},
		{"bad interval", func(d *Definition) { d.XData = "zero" }, ErrInvalidPayload},
		{"stop before start", func(d *Definition) { d.Stop = monday.Add(-time.Hour) }, ErrInvalidStop},
		{"bad rrule", func(d *Definition) { d.Mode = ModeRRule; d.XData = "FREQ=SOMETIMES" }, ErrInvalidPayload},
		{"one-off needs no stop", func(d *Definition) { d.Mode = ModeOnce; d.Stop = time.Time{} }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := valid
			tt.mutate(&def)
			err := e.Validate(def)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRegistryCustomMode(t *testing.T) {
	reg := DefaultRegistry()
	reg.Register("weekdays", func(string) (Rule, error) { return stepRule{days: 1}, nil })
	e := NewExpander(WithRegistry(reg))

	assert.Contains(t, reg.Modes(), Mode("weekdays"))
	got, err := e.Expand(Definition{
		Range: timerange.New(monday, time.Hour),
		Mode:  "weekdays",
		Stop:  monday.Add(weeks(1)),
	}, timerange.New(monday, 48*time.Hour))
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
