package engine

import (
	"cmp"
	"log/slog"
	"slices"
	"time"

	"github.com/tartampluch/ieq-connect/internal/config"
	"github.com/tartampluch/ieq-connect/internal/model"
)

// Mode selects one birthday view.
type Mode int

const (
	ModeToday Mode = iota
	ModeNext7
	ModeMonth
)

// View is a birthday filter: a mode and, for ModeMonth, the month.
type View struct {
	Mode  Mode
	Month time.Month
}

// Select applies v to people and returns the matches sorted by (month, day).
func Select(now time.Time, v View, people []model.Person) []model.Person {
	switch v.Mode {
	case ModeNext7:
		return FilterNext7(now, people)
	case ModeMonth:
		return FilterByMonth(v.Month, people)
	default:
		return FilterToday(now, people)
	}
}

// FilterToday keeps people whose birthday falls on now's calendar day.
func FilterToday(now time.Time, people []model.Person) []model.Person {
	today := DateOf(now)
	return filterSorted(people, func(b CalendarDate) bool {
		return b.SameMonthDay(today)
	})
}

// FilterNext7 keeps people whose birthday falls within the next seven
// days, today included.
func FilterNext7(now time.Time, people []model.Person) []model.Person {
	today := DateOf(now)
	return filterSorted(people, func(b CalendarDate) bool {
		candidate := b.InYear(today.Year)
		// Early January birthdays seen from late December belong to next year.
		if candidate.Before(today) && b.Month == time.January && today.Month == time.December {
			candidate = b.InYear(today.Year + 1)
		}
		diff := today.DaysUntil(candidate)
		return diff >= 0 && diff <= config.UpcomingWindowDays
	})
}

// FilterByMonth keeps people born in month.
func FilterByMonth(month time.Month, people []model.Person) []model.Person {
	return filterSorted(people, func(b CalendarDate) bool {
		return b.Month == month
	})
}

// SortByBirthday orders people by (month, day), keeping the input order of ties.
// Unparseable birth dates sort last.
func SortByBirthday(people []model.Person) {
	slices.SortStableFunc(people, func(a, b model.Person) int {
		da, errA := ParseCalendarDate(a.BirthDate)
		db, errB := ParseCalendarDate(b.BirthDate)
		switch {
		case errA != nil && errB != nil:
			return 0
		case errA != nil:
			return 1
		case errB != nil:
			return -1
		}
		if c := cmp.Compare(da.Month, db.Month); c != 0 {
			return c
		}
		return cmp.Compare(da.Day, db.Day)
	})
}

// AlreadyContactedToday reports whether the stamp for kind equals today's
// ISO date. It gates the action only; it never hides a person from a view.
func AlreadyContactedToday(p model.Person, kind model.ContactKind, now time.Time) bool {
	return p.LastContact(kind) == FormatISO(now)
}

func filterSorted(people []model.Person, keep func(CalendarDate) bool) []model.Person {
	out := make([]model.Person, 0, len(people))
	for _, p := range people {
		b, err := ParseCalendarDate(p.BirthDate)
		if err != nil {
			slog.Debug(config.MsgSkippedPerson,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyID, p.ID,
				config.LogKeyValue, p.BirthDate)
			continue
		}
		if keep(b) {
			out = append(out, p)
		}
	}
	SortByBirthday(out)
	return out
}
