package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClockMinutes(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"00:00", 0},
		{"09:00", 540},
		{"23:59", 1439},
		{"12:00 AM", 0},
		{"12:30 AM", 30},
		{"1:00 AM", 60},
		{"11:59 AM", 719},
		{"12:00 PM", 720},
		{"12:45 PM", 765},
		{"1:00 PM", 780},
		{"11:59 PM", 1439},
		{"9:30am", 570},
		{"5:15 pm", 1035},
	}
	for _, tc := range cases {
		got, err := ParseClockMinutes(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseClockMinutesRejectsMalformedInput(t *testing.T) {
	for _, in := range []string{"", "noon", "25:00", "13:00 PM", "0:30 AM", "10:60", "10", "-1:00"} {
		_, err := ParseClockMinutes(in)
		assert.Error(t, err, in)
	}
}

func TestFormatClockMinutes(t *testing.T) {
	assert.Equal(t, "00:00", FormatClockMinutes(0))
	assert.Equal(t, "09:05", FormatClockMinutes(545))
	assert.Equal(t, "23:59", FormatClockMinutes(1439))
}

func TestNormalizeWeekday(t *testing.T) {
	for raw, want := range map[string]string{
		"monday": "Monday",
		"Mon":    "Monday",
		" TUE ":  "Tuesday",
		"thurs":  "Thursday",
		"sun":    "Sunday",
	} {
		got, err := NormalizeWeekday(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got)
	}

	_, err := NormalizeWeekday("funday")
	assert.Error(t, err)
}

func TestTimeRangeOverlaps(t *testing.T) {
	base := TimeRange{Start: 540, End: 630} // 09:00-10:30

	assert.True(t, base.Overlaps(TimeRange{Start: 600, End: 660}))
	assert.True(t, base.Overlaps(TimeRange{Start: 500, End: 541}))
	assert.True(t, base.Overlaps(TimeRange{Start: 560, End: 600}))

	// Half-open: sharing a boundary is not a conflict.
	assert.False(t, base.Overlaps(TimeRange{Start: 630, End: 720}))
	assert.False(t, base.Overlaps(TimeRange{Start: 480, End: 540}))

	// Symmetry.
	other := TimeRange{Start: 600, End: 660}
	assert.Equal(t, base.Overlaps(other), other.Overlaps(base))
}

func TestWeekScheduleCloneIsDeep(t *testing.T) {
	week := WeekSchedule{
		"Monday": {{CourseCode: "CS101", Start: 540, End: 630}},
	}
	clone := week.Clone()
	clone["Monday"][0].CourseCode = "MATH200"
	clone["Tuesday"] = []TimeRange{{CourseCode: "PE1", Start: 420, End: 480}}

	assert.Equal(t, "CS101", week["Monday"][0].CourseCode)
	assert.NotContains(t, week, "Tuesday")
}
