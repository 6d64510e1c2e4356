// Package dateparse parses the relative and absolute date/time strings
// accepted by --due, --start and --end flags.
package dateparse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Parse parses input relative to the current local time.
func Parse(input string) (time.Time, bool, error) {
	return ParseFrom(input, time.Now())
}

// ParseFrom parses input relative to now and reports whether a time of day
// was given. Dates without a time resolve to midnight in now's location.
//
// Supported formats:
//   - Exact dates: "2026-03-01"
//   - Date and time: "2026-03-01 14:30", "2026-03-01T14:30", RFC 3339
//   - Time only: "14:30" (today)
//   - Relative days, weeks, months: "+7d", "+2w", "+1m"
//   - Day names: "monday", "tuesday", etc. (next occurrence)
//   - Keywords: "today", "tomorrow", "next-week", "next-month"
//
// Any date form may be followed by a space and "HH:MM".
func ParseFrom(input string, now time.Time) (time.Time, bool, error) {
	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" {
		return time.Time{}, false, fmt.Errorf("empty date input")
	}
	loc := now.Location()

	if t, err := time.Parse(time.RFC3339, strings.ToUpper(input)); err == nil {
		return t.In(loc), true, nil
	}
	if t, err := time.ParseInLocation("2006-01-02t15:04", input, loc); err == nil {
		return t, true, nil
	}

	datePart, timePart := input, ""
	if i := strings.LastIndexByte(input, ' '); i > 0 {
		datePart, timePart = strings.TrimSpace(input[:i]), input[i+1:]
	}

	if h, m, ok := parseClock(input); ok {
		return at(now, h, m), true, nil
	}

	day, err := parseDay(datePart, now)
	if err != nil {
		return time.Time{}, false, err
	}
	if timePart == "" {
		return day, false, nil
	}
	h, m, ok := parseClock(timePart)
	if !ok {
		return time.Time{}, false, fmt.Errorf("unrecognized time %q in %q (use HH:MM)", timePart, input)
	}
	return at(day, h, m), true, nil
}

// ParseDate parses input and returns an ISO 8601 date (YYYY-MM-DD).
func ParseDate(input string, now time.Time) (string, error) {
	t, _, err := ParseFrom(input, now)
	if err != nil {
		return "", err
	}
	return formatDate(t), nil
}

func parseClock(s string) (int, int, bool) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, false
	}
	return t.Hour(), t.Minute(), true
}

func at(day time.Time, hour, min int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, hour, min, 0, 0, day.Location())
}

func midnight(t time.Time) time.Time {
	return at(t, 0, 0)
}

func parseDay(input string, now time.Time) (time.Time, error) {
	// Exact date: YYYY-MM-DD
	if t, err := time.ParseInLocation("2006-01-02", input, now.Location()); err == nil {
		return t, nil
	}

	today := midnight(now)

	// Keywords
	switch input {
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	case "next-week":
		// Next Monday
		daysUntilMonday := (int(time.Monday) - int(now.Weekday()) + 7) % 7
		if daysUntilMonday == 0 {
			daysUntilMonday = 7
		}
		return today.AddDate(0, 0, daysUntilMonday), nil
	case "next-month":
		// 1st of next month
		year, month, _ := now.Date()
		return time.Date(year, month+1, 1, 0, 0, 0, 0, now.Location()), nil
	}

	// Relative offsets: +Nd, +Nw, +Nm
	if strings.HasPrefix(input, "+") && len(input) >= 3 {
		suffix := input[len(input)-1]
		n, err := strconv.Atoi(input[1 : len(input)-1])
		if err == nil && n >= 0 {
			switch suffix {
			case 'd':
				return today.AddDate(0, 0, n), nil
			case 'w':
				return today.AddDate(0, 0, n*7), nil
			case 'm':
				return today.AddDate(0, n, 0), nil
			default:
				return time.Time{}, fmt.Errorf("unknown relative unit %q in %q (use d, w, or m)", string(suffix), input)
			}
		}
	}

	// Day names: next occurrence of that weekday
	if target, ok := weekdays[input]; ok {
		daysAhead := (int(target) - int(now.Weekday()) + 7) % 7
		if daysAhead == 0 {
			daysAhead = 7 // always advance to next occurrence
		}
		return today.AddDate(0, 0, daysAhead), nil
	}

	return time.Time{}, fmt.Errorf("unrecognized date format: %q", input)
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sun":       time.Sunday,
	"mon":       time.Monday,
	"tue":       time.Tuesday,
	"wed":       time.Wednesday,
	"thu":       time.Thursday,
	"fri":       time.Friday,
	"sat":       time.Saturday,
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
