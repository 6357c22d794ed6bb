// Package calendar maps between the compact day/minute encoding used by
// the booking engine and the human "mm-dd" / "hh:mm" forms. The booking
// season runs June 1 through August 31; day 0 is 06-01, day 91 is 08-31.
package calendar

import (
	"errors"
	"fmt"
)

var ErrInvalidDate = errors.New("date outside booking season")

const (
	FirstDay = 0
	LastDay  = 91 // 08-31

	minutesPerDay = 24 * 60
)

var monthDays = map[int]int{6: 30, 7: 31, 8: 31}

// monthStart is the day index of the first day of each season month.
var monthStart = map[int]int{6: 0, 7: 30, 8: 61}

// DayIndex parses an "mm-dd" date into its day index within the season.
func DayIndex(s string) (int, error) {
	const op = "calendar.DayIndex"

	var m, d int
	if _, err := fmt.Sscanf(s, "%2d-%2d", &m, &d); err != nil || len(s) != 5 || s[2] != '-' {
		return 0, fmt.Errorf("%s: %q: %w", op, s, ErrInvalidDate)
	}

	days, ok := monthDays[m]
	if !ok || d < 1 || d > days {
		return 0, fmt.Errorf("%s: %q: %w", op, s, ErrInvalidDate)
	}

	return monthStart[m] + d - 1, nil
}

// Date formats a day index back to "mm-dd".
func Date(day int) (string, error) {
	const op = "calendar.Date"

	if day < FirstDay || day > LastDay {
		return "", fmt.Errorf("%s: day %d: %w", op, day, ErrInvalidDate)
	}

	for _, m := range []int{8, 7, 6} {
		if day >= monthStart[m] {
			return fmt.Sprintf("%02d-%02d", m, day-monthStart[m]+1), nil
		}
	}

	return "", fmt.Errorf("%s: day %d: %w", op, day, ErrInvalidDate)
}

// MinuteOfDay parses an "hh:mm" clock into minutes since midnight.
func MinuteOfDay(s string) (int, error) {
	const op = "calendar.MinuteOfDay"

	var h, m int
	if _, err := fmt.Sscanf(s, "%2d:%2d", &h, &m); err != nil || len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%s: %q: %w", op, s, ErrInvalidDate)
	}

	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("%s: %q: %w", op, s, ErrInvalidDate)
	}

	return h*60 + m, nil
}

// Clock formats minutes since midnight as "hh:mm". Values outside a
// single day wrap; callers track day offsets separately.
func Clock(minute int) string {
	minute %= minutesPerDay
	if minute < 0 {
		minute += minutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// InSeason reports whether day falls inside the supported window.
func InSeason(day int) bool {
	return day >= FirstDay && day <= LastDay
}
