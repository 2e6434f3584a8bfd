package domain

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// periodLayout is the fixed 8-digit calendar-date form used as the
// namespace suffix on every table and file of one reconciliation run.
const periodLayout = "20060102"

// Period identifies one reconciliation period: a single calendar day.
// All loads and stores of a run are addressed by name_{Period}.
type Period struct {
	Date civil.Date
}

// ParsePeriod parses an 8-digit YYYYMMDD string into a Period.
func ParsePeriod(s string) (Period, error) {
	t, err := time.ParseInLocation(periodLayout, s, time.UTC)
	if err != nil {
		return Period{}, fmt.Errorf("ParsePeriod: invalid period %q: %w", s, err)
	}
	return Period{Date: civil.DateOf(t)}, nil
}

// PeriodOf returns the period containing the given instant in loc.
func PeriodOf(t time.Time, loc *time.Location) Period {
	return Period{Date: civil.DateOf(t.In(loc))}
}

// YesterdayIn returns the period for the calendar day before now in loc.
// Daily runs reconcile the previous day's feeds.
func YesterdayIn(now time.Time, loc *time.Location) Period {
	return Period{Date: civil.DateOf(now.In(loc)).AddDays(-1)}
}

// String returns the canonical YYYYMMDD form.
func (p Period) String() string {
	return fmt.Sprintf("%04d%02d%02d", p.Date.Year, int(p.Date.Month), p.Date.Day)
}

// IsZero reports whether p is the zero Period.
func (p Period) IsZero() bool {
	return p.Date == civil.Date{}
}

// Next returns the following calendar day's period.
func (p Period) Next() Period {
	return Period{Date: p.Date.AddDays(1)}
}

// Before reports whether p is an earlier day than q.
func (p Period) Before(q Period) bool {
	return p.Date.Before(q.Date)
}

// PeriodsBetween returns every period from first through last inclusive.
// It returns nil when last precedes first.
func PeriodsBetween(first, last Period) []Period {
	if last.Before(first) {
		return nil
	}
	var periods []Period
	for p := first; !last.Before(p); p = p.Next() {
		periods = append(periods, p)
	}
	return periods
}
