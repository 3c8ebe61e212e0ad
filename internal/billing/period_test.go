package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("2026-03")
	require.NoError(t, err)
	require.Equal(t, 2026, p.Year)
	require.Equal(t, time.March, p.Month)
	require.Equal(t, "2026-03", p.Key())

	_, err = ParsePeriod("2026-13")
	require.Error(t, err)

	_, err = ParsePeriod("march 2026")
	require.Error(t, err)
}

func TestPeriodDueDateDerivedFromKeyNotClock(t *testing.T) {
	p, err := ParsePeriod("2026-07")
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, time.August, 10, 0, 0, 0, 0, time.UTC), p.DueDate())

	// December rolls the due date into the next year.
	dec := Period{Year: 2026, Month: time.December}
	require.Equal(t, time.Date(2027, time.January, 10, 0, 0, 0, 0, time.UTC), dec.DueDate())
}

func TestPeriodNext(t *testing.T) {
	p := Period{Year: 2026, Month: time.December}
	next := p.Next()
	require.Equal(t, 2027, next.Year)
	require.Equal(t, time.January, next.Month)
}

func TestPeriodOf(t *testing.T) {
	p := PeriodOf(time.Date(2026, time.May, 31, 23, 59, 0, 0, time.UTC))
	require.Equal(t, "2026-05", p.Key())
}
