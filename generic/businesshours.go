package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// BUSINESS HOURS - Staffed desk, Monday to Friday, evaluated in UTC
// =============================================================================

// BusinessHours is a daily staffed window [Open:00, Close:00) in UTC on
// weekdays.
type BusinessHours struct {
	Open  int `json:"open" yaml:"open"`
	Close int `json:"close" yaml:"close"`
}

// StandardBusinessHours is the 09:00-17:00 UTC support desk.
func StandardBusinessHours() BusinessHours {
	return BusinessHours{Open: 9, Close: 17}
}

// Validate checks 0 <= Open < Close <= 24.
func (b BusinessHours) Validate() error {
	if b.Open < 0 || b.Close > 24 || b.Open >= b.Close {
		return fmt.Errorf("business hours %02d:00-%02d:00: open must precede close within one day", b.Open, b.Close)
	}
	return nil
}

// Contains reports whether t falls inside the staffed window.
func (b BusinessHours) Contains(t time.Time) bool {
	u := t.UTC()
	return !IsWeekend(u) && u.Hour() >= b.Open && u.Hour() < b.Close
}

// Normalize moves t forward to the next staffed slot. Rules are checked in
// order against the UTC weekday and hour; the first match wins:
//
//	Saturday              -> +2 days at Open (Monday)
//	Sunday                -> +1 day at Open (Monday)
//	Friday, hour >= Close -> +3 days at Open (Monday)
//	hour >= Close         -> +1 day at Open
//	hour < Open           -> same day at Open
//	otherwise             -> unchanged
//
// Every adjusted result lands inside the window, so Normalize is idempotent.
// The result is in UTC.
func (b BusinessHours) Normalize(t time.Time) time.Time {
	u := t.UTC()
	hour := u.Hour()

	switch wd := u.Weekday(); {
	case wd == time.Saturday:
		return atHour(u, 2, b.Open)
	case wd == time.Sunday:
		return atHour(u, 1, b.Open)
	case hour >= b.Close && wd == time.Friday:
		return atHour(u, 3, b.Open)
	case hour >= b.Close:
		return atHour(u, 1, b.Open)
	case hour < b.Open:
		return atHour(u, 0, b.Open)
	default:
		return u
	}
}
