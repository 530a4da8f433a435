package generic

import (
	"time"
)

// =============================================================================
// DATE CONVENTIONS - Field order of slash-separated numeric dates
// =============================================================================

// Convention is the field order of a slash-separated date.
type Convention int

const (
	MonthFirst Convention = iota // M/D/YYYY
	DayFirst                     // D/M/YYYY
)

const clockLayout = "15:04"

// dateLayout accepts one or two digit month and day fields and a four digit year.
func (c Convention) dateLayout() string {
	if c == DayFirst {
		return "2/1/2006"
	}
	return "1/2/2006"
}

func (c Convention) String() string {
	if c == DayFirst {
		return "D/M/YYYY"
	}
	return "M/D/YYYY"
}

// Name returns the identifier used in JSON payloads.
func (c Convention) Name() string {
	if c == DayFirst {
		return "day_first"
	}
	return "month_first"
}

// =============================================================================
// PARSING - Wall-clock strings in a fixed-offset zone to absolute instants
// =============================================================================

// ParseDate parses a date at midnight wall-clock time in zone.
func ParseDate(date string, conv Convention, zone Zone) (time.Time, error) {
	t, err := time.ParseInLocation(conv.dateLayout(), date, zone.Location())
	if err != nil {
		return time.Time{}, &ParseError{Input: date, Convention: conv, Err: err}
	}
	return t, nil
}

// ParseDateTime parses date plus an HH:MM 24-hour clock as wall-clock time in
// zone. Month or day fields out of range for the convention (a 13 in the
// month position, 31 February) are rejected; nothing is reinterpreted under
// the other convention.
func ParseDateTime(date, clock string, conv Convention, zone Zone) (time.Time, error) {
	input := date + " " + clock
	if !isClock(clock) {
		return time.Time{}, &ParseError{Input: input, Convention: conv}
	}
	t, err := time.ParseInLocation(conv.dateLayout()+" "+clockLayout, input, zone.Location())
	if err != nil {
		return time.Time{}, &ParseError{Input: input, Convention: conv, Err: err}
	}
	return t, nil
}

// isClock reports whether s is exactly HH:MM. The layout's hour directive
// alone would also take a single digit.
func isClock(s string) bool {
	if len(s) != len(clockLayout) || s[2] != ':' {
		return false
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatDateTime renders t in zone under conv. Parsing the two strings back
// with ParseDateTime yields the same instant for any minute-aligned t.
func FormatDateTime(t time.Time, conv Convention, zone Zone) (date, clock string) {
	local := t.In(zone.Location())
	return local.Format(conv.dateLayout()), local.Format(clockLayout)
}
