// File: calendar.go
// Title: Work Calendar Oracle
// Description: Classifies calendar dates as weekend, holiday or workday and
//              computes the next workday from a given date. Holiday status
//              comes from an injected jurisdiction table plus static
//              exclusion rules supplied as configuration; the oracle itself
//              holds no data source.

package calendar

import (
	"time"

	"github.com/softusing/rollcall/pkg/errorx"
)

// maxSearchDays bounds the next-workday search. A configuration that marks
// every day of a year a holiday is a fatal error, not an infinite loop.
const maxSearchDays = 366

// HolidayTable answers whether a date is a jurisdiction holiday. It is an
// injected capability; the data source behind it is out of scope here.
type HolidayTable interface {
	IsHoliday(date time.Time) bool
}

// HolidayFunc adapts a plain function to the HolidayTable interface.
type HolidayFunc func(date time.Time) bool

// IsHoliday implements HolidayTable.
func (f HolidayFunc) IsHoliday(date time.Time) bool {
	return f(date)
}

// ExclusionRule is a static holiday rule: either an exact date
// (FromDay == ToDay) or an inclusive day range within one month of one year.
type ExclusionRule struct {
	Year    int
	Month   time.Month
	FromDay int
	ToDay   int
}

// Matches reports whether the rule covers the given date.
func (r ExclusionRule) Matches(date time.Time) bool {
	return date.Year() == r.Year &&
		date.Month() == r.Month &&
		date.Day() >= r.FromDay &&
		date.Day() <= r.ToDay
}

func (r ExclusionRule) validate() error {
	if r.Year < 1 {
		return errorx.Newf("exclusion rule has invalid year %d", r.Year).
			WithCode(errorx.CodeInvalidConfig).
			WithOperation("calendar.New")
	}
	if r.Month < time.January || r.Month > time.December {
		return errorx.Newf("exclusion rule has invalid month %d", r.Month).
			WithCode(errorx.CodeInvalidConfig).
			WithOperation("calendar.New").
			WithDetail("year", r.Year)
	}
	if r.FromDay < 1 || r.ToDay > 31 || r.FromDay > r.ToDay {
		return errorx.Newf("exclusion rule has invalid day range %d-%d", r.FromDay, r.ToDay).
			WithCode(errorx.CodeInvalidConfig).
			WithOperation("calendar.New").
			WithDetail("year", r.Year).
			WithDetail("month", int(r.Month))
	}
	return nil
}

// Calendar is the work-calendar oracle. It is a pure function of its
// static configuration; all methods are safe for concurrent use.
type Calendar struct {
	table      HolidayTable
	exclusions []ExclusionRule
}

// New creates a Calendar from an optional jurisdiction holiday table and a
// set of static exclusion rules. The rules are validated eagerly; a nil
// table means no jurisdiction holidays.
func New(table HolidayTable, exclusions []ExclusionRule) (*Calendar, error) {
	for _, rule := range exclusions {
		if err := rule.validate(); err != nil {
			return nil, err
		}
	}
	rules := make([]ExclusionRule, len(exclusions))
	copy(rules, exclusions)
	return &Calendar{table: table, exclusions: rules}, nil
}

// IsWeekend reports whether the date falls on Saturday or Sunday.
func (c *Calendar) IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsHoliday reports whether the date matches the jurisdiction table or a
// static exclusion rule.
func (c *Calendar) IsHoliday(date time.Time) bool {
	if c.table != nil && c.table.IsHoliday(date) {
		return true
	}
	for _, rule := range c.exclusions {
		if rule.Matches(date) {
			return true
		}
	}
	return false
}

// IsWorkday reports whether the date is neither a weekend day nor a
// holiday.
func (c *Calendar) IsWorkday(date time.Time) bool {
	return !c.IsWeekend(date) && !c.IsHoliday(date)
}

// NextWorkday returns the first workday strictly after the given date, at
// midnight in the date's location. The search is bounded; exhausting the
// bound reports a fatal configuration error.
func (c *Calendar) NextWorkday(date time.Time) (time.Time, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	for i := 0; i < maxSearchDays; i++ {
		day = day.AddDate(0, 0, 1)
		if c.IsWorkday(day) {
			return day, nil
		}
	}
	return time.Time{}, errorx.Newf("no workday within %d days after %s", maxSearchDays, date.Format("2006-01-02")).
		WithCode(errorx.CodeCalendarExhausted).
		WithOperation("calendar.NextWorkday")
}
