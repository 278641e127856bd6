package models

import (
	"fmt"
	"strconv"
	"strings"
)

// TimeRange is one occupied block on a student's weekly schedule. Start and
// End are minutes since midnight; the interval is half-open [Start, End).
type TimeRange struct {
	CourseCode string `json:"course_code"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Room       string `json:"room,omitempty"`
}

// Overlaps reports whether two half-open intervals intersect.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start < other.End && other.Start < r.End
}

// WeekSchedule maps a weekday name to the time-ordered blocks occupied on it.
type WeekSchedule map[string][]TimeRange

// Clone returns a deep copy so callers can't mutate ledger state through reads.
func (w WeekSchedule) Clone() WeekSchedule {
	out := make(WeekSchedule, len(w))
	for day, ranges := range w {
		cp := make([]TimeRange, len(ranges))
		copy(cp, ranges)
		out[day] = cp
	}
	return out
}

// Canonical weekday names used as WeekSchedule keys.
var weekdays = map[string]string{
	"monday": "Monday", "mon": "Monday",
	"tuesday": "Tuesday", "tue": "Tuesday", "tues": "Tuesday",
	"wednesday": "Wednesday", "wed": "Wednesday",
	"thursday": "Thursday", "thu": "Thursday", "thurs": "Thursday",
	"friday": "Friday", "fri": "Friday",
	"saturday": "Saturday", "sat": "Saturday",
	"sunday": "Sunday", "sun": "Sunday",
}

// NormalizeWeekday maps a day label to its canonical name.
func NormalizeWeekday(raw string) (string, error) {
	day, ok := weekdays[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", fmt.Errorf("unknown weekday %q", raw)
	}
	return day, nil
}

// ParseClockMinutes converts a wall-clock string to minutes since midnight.
// It accepts 24-hour "HH:MM" and 12-hour "H:MM AM/PM". In the 12-hour form,
// 12 AM maps to hour 0 and 12 PM stays at hour 12; hours 1-11 gain 12 when PM.
// Malformed input is a data error and is returned as such, never defaulted:
// a silently-zeroed time would corrupt conflict detection.
func ParseClockMinutes(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("empty time string")
	}

	meridiem := ""
	upper := strings.ToUpper(s)
	switch {
	case strings.HasSuffix(upper, "AM"):
		meridiem = "AM"
		s = strings.TrimSpace(s[:len(s)-2])
	case strings.HasSuffix(upper, "PM"):
		meridiem = "PM"
		s = strings.TrimSpace(s[:len(s)-2])
	}

	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q", raw)
	}
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q", raw)
	}
	minute, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q", raw)
	}
	if minute < 0 || minute > 59 {
		return 0, fmt.Errorf("minute out of range in %q", raw)
	}

	switch meridiem {
	case "AM":
		if hour < 1 || hour > 12 {
			return 0, fmt.Errorf("hour out of range in %q", raw)
		}
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour < 1 || hour > 12 {
			return 0, fmt.Errorf("hour out of range in %q", raw)
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour < 0 || hour > 23 {
			return 0, fmt.Errorf("hour out of range in %q", raw)
		}
	}

	return hour*60 + minute, nil
}

// FormatClockMinutes renders minutes since midnight as 24-hour "HH:MM".
func FormatClockMinutes(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
