// Package calendar implements business-day arithmetic over a set of
// explicit and recurring holidays, mirroring BusinessCalendar from the
// QUANTAF harness's original implementation.
package calendar

import (
	"fmt"
	"time"

	"github.com/vinipx/quantaf/internal/domain"
)

// monthDay is a recurring (month, day) holiday, independent of year.
type monthDay struct {
	month time.Month
	day   int
}

// Calendar is a named business-day calendar: weekends plus an explicit set
// of holiday dates and a recurring (month, day) set. Membership tests are
// O(1) map lookups, per spec.md §4.1.
type Calendar struct {
	name              string
	explicitHolidays  map[string]struct{} // "YYYY-MM-DD" -> present
	recurringHolidays map[monthDay]struct{}
}

// New creates a calendar with the given name and no holidays. Use
// WithHoliday/WithRecurringHoliday to add them, or one of the presets.
func New(name string) *Calendar {
	return &Calendar{
		name:              name,
		explicitHolidays:  make(map[string]struct{}),
		recurringHolidays: make(map[monthDay]struct{}),
	}
}

func dateKey(d time.Time) string {
	return d.Format("2006-01-02")
}

// WithHoliday adds an explicit holiday date and returns the calendar for
// fluent chaining.
func (c *Calendar) WithHoliday(d time.Time) *Calendar {
	c.explicitHolidays[dateKey(d)] = struct{}{}
	return c
}

// WithRecurringHoliday adds a (month, day) pair observed every year.
func (c *Calendar) WithRecurringHoliday(month time.Month, day int) *Calendar {
	c.recurringHolidays[monthDay{month, day}] = struct{}{}
	return c
}

// Name returns the calendar's configured name.
func (c *Calendar) Name() string { return c.name }

// IsBusinessDay reports whether d is neither a weekend nor a holiday.
func (c *Calendar) IsBusinessDay(d time.Time) bool {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	if _, ok := c.explicitHolidays[dateKey(d)]; ok {
		return false
	}
	if _, ok := c.recurringHolidays[monthDay{d.Month(), d.Day()}]; ok {
		return false
	}
	return true
}

// AddBusinessDays advances d day-by-day, counting only business days, n
// times. n must be non-negative.
func (c *Calendar) AddBusinessDays(d time.Time, n int) (time.Time, error) {
	if n < 0 {
		return time.Time{}, fmt.Errorf("%w: business days must be non-negative", domain.ErrInvalidParameter)
	}
	result := d
	added := 0
	for added < n {
		result = result.AddDate(0, 0, 1)
		if c.IsBusinessDay(result) {
			added++
		}
	}
	return result, nil
}

// BusinessDaysBetween counts business days in (a, b], requiring b >= a.
func (c *Calendar) BusinessDaysBetween(a, b time.Time) (int, error) {
	if b.Before(a) {
		return 0, fmt.Errorf("%w: end date must not be before start date", domain.ErrInvalidRange)
	}
	count := 0
	d := a
	for d.Before(b) {
		d = d.AddDate(0, 0, 1)
		if c.IsBusinessDay(d) {
			count++
		}
	}
	return count, nil
}

// NYSE returns a calendar with the New York Stock Exchange's recurring
// holidays. Explicit holidays (e.g. a specific Good Friday) are the
// caller's responsibility to add, per spec.md §4.1 ("presets define only
// recurring dates").
func NYSE() *Calendar {
	return New("NYSE").
		WithRecurringHoliday(time.January, 1).
		WithRecurringHoliday(time.July, 4).
		WithRecurringHoliday(time.December, 25)
}

// LSE returns a calendar with the London Stock Exchange's recurring
// holidays.
func LSE() *Calendar {
	return New("LSE").
		WithRecurringHoliday(time.January, 1).
		WithRecurringHoliday(time.December, 25).
		WithRecurringHoliday(time.December, 26)
}

// TSE returns a calendar with the Tokyo Stock Exchange's recurring
// holidays.
func TSE() *Calendar {
	return New("TSE").
		WithRecurringHoliday(time.January, 1).
		WithRecurringHoliday(time.January, 2).
		WithRecurringHoliday(time.January, 3).
		WithRecurringHoliday(time.December, 31)
}
