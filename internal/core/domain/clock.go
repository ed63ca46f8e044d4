package domain

import "fmt"

// ClockTime is a time of day with minute precision. The zero value is absent.
type ClockTime struct {
	Minutes int
	Valid   bool
}

func NewClockTime(hour, minute int) ClockTime {
	return ClockTime{Minutes: hour*60 + minute, Valid: true}
}

// After reports whether both times are valid and t is later than other.
func (t ClockTime) After(other ClockTime) bool {
	return t.Valid && other.Valid && t.Minutes > other.Minutes
}

// Equal reports whether both times are valid and equal.
func (t ClockTime) Equal(other ClockTime) bool {
	return t.Valid && other.Valid && t.Minutes == other.Minutes
}

// String renders the time in 12-hour form, e.g. "10:30 PM".
func (t ClockTime) String() string {
	if !t.Valid {
		return ""
	}
	hour := t.Minutes / 60
	minute := t.Minutes % 60
	meridiem := "AM"
	if hour >= 12 {
		meridiem = "PM"
	}
	hour %= 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, minute, meridiem)
}

// ClosingTimes holds the latest regular and public-holiday closing times
// found in an operating hours string.
type ClosingTimes struct {
	Normal  ClockTime
	Holiday ClockTime
}
