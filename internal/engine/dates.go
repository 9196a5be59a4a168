package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/tartampluch/ieq-connect/internal/config"
)

// CalendarDate is a year/month/day triple with no time zone attached.
// Birth dates are stored as plain calendar dates; converting them to an
// instant and back through time.Local shifts the day in zones west of UTC.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseCalendarDate reads an ISO YYYY-MM-DD date. time.Parse without a zone
// yields UTC, so the components come back exactly as written.
func ParseCalendarDate(s string) (CalendarDate, error) {
	t, err := time.Parse(config.DateFormatISO, strings.TrimSpace(s))
	if err != nil {
		return CalendarDate{}, fmt.Errorf("%s: %w", config.ErrDateParse, err)
	}
	return CalendarDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) CalendarDate {
	y, m, d := t.Date()
	return CalendarDate{Year: y, Month: m, Day: d}
}

// String formats d as YYYY-MM-DD.
func (d CalendarDate) String() string {
	return d.midnight().Format(config.DateFormatISO)
}

// InYear moves d to another year. Feb 29 becomes Mar 1 outside leap years.
func (d CalendarDate) InYear(year int) CalendarDate {
	return DateOf(time.Date(year, d.Month, d.Day, 0, 0, 0, 0, time.UTC))
}

// Before reports whether d is strictly earlier than o.
func (d CalendarDate) Before(o CalendarDate) bool {
	return d.midnight().Before(o.midnight())
}

// DaysUntil counts calendar days from d to o (negative when o is earlier).
func (d CalendarDate) DaysUntil(o CalendarDate) int {
	return int(o.midnight().Sub(d.midnight()).Hours() / 24)
}

// SameMonthDay compares only month and day.
func (d CalendarDate) SameMonthDay(o CalendarDate) bool {
	return d.Month == o.Month && d.Day == o.Day
}

// midnight anchors the date in UTC, where every day is 24 hours long.
func (d CalendarDate) midnight() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// FormatISO returns the calendar date of t as YYYY-MM-DD.
func FormatISO(t time.Time) string {
	return DateOf(t).String()
}

// TodayISO is the stamp written by the contact updater.
func TodayISO(c Clock) string {
	return FormatISO(c.Now())
}
