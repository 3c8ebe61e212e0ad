// Package billing holds the calendar arithmetic for monthly fee periods.
package billing

import (
	"fmt"
	"time"
)

// dueDayOfMonth is the day of the month fees fall due, by school convention.
const dueDayOfMonth = 10

// Period identifies one billing month. The zero value is invalid.
type Period struct {
	Year  int
	Month time.Month
}

// ParsePeriod parses a YYYY-MM period key.
func ParsePeriod(key string) (Period, error) {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return Period{}, fmt.Errorf("invalid billing period %q: %w", key, err)
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}

// PeriodOf returns the billing period containing the given instant.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.UTC().Year(), Month: t.UTC().Month()}
}

// Key renders the canonical YYYY-MM form.
func (p Period) Key() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Next returns the following billing period.
func (p Period) Next() Period {
	t := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return Period{Year: t.Year(), Month: t.Month()}
}

// DueDate returns when fees for this period fall due: the 10th of the
// following calendar month. The date is derived from the period key alone,
// never from when the generation job happens to run, so periods generated
// late or out of order keep consistent due dates.
func (p Period) DueDate() time.Time {
	next := p.Next()
	return time.Date(next.Year, next.Month, dueDayOfMonth, 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether the period is unset.
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}
