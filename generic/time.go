package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// CIVIL DATE - A calendar date with no zone attached
// =============================================================================

// CivilDate is a calendar day. It becomes an instant only once a zone is
// chosen, which lets one real-world date serve every region.
type CivilDate struct {
	Year  int
	Month time.Month
	Day   int
}

// Constructors
func NewCivilDate(year int, month time.Month, day int) CivilDate {
	return CivilDate{Year: year, Month: month, Day: day}
}

// ParseCivilDate parses an ISO YYYY-MM-DD date.
func ParseCivilDate(s string) (CivilDate, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return CivilDate{}, fmt.Errorf("parse civil date %q: %w", s, err)
	}
	return CivilDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// In returns midnight of the date in zone.
func (d CivilDate) In(zone Zone) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, zone.Location())
}

// Format renders the date the way records in a convention write it.
func (d CivilDate) Format(conv Convention) string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format(conv.dateLayout())
}

func (d CivilDate) IsZero() bool { return d.Year == 0 && d.Month == 0 && d.Day == 0 }

func (d CivilDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// atHour returns t's calendar day (in t's location) plus days, at hour:00:00.
func atHour(t time.Time, days, hour int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+days, hour, 0, 0, 0, t.Location())
}
