package engine

import (
	"time"

	"github.com/tartampluch/ieq-connect/internal/model"
)

// BirthdayEntry is a person prepared for a birthday list.
type BirthdayEntry struct {
	Person model.Person
	Kind   model.Kind

	// DateOfBirth is the parsed birth date.
	DateOfBirth CalendarDate

	// NextOccurrence is the next birthday on or after today.
	NextOccurrence CalendarDate

	// AgeNext is the age reached at NextOccurrence.
	AgeNext int

	IsToday bool

	// AlreadyWished is the dedupe gate for the birthday message.
	AlreadyWished bool
}

// NewBirthdayEntries annotates people of one kind. The order of people is
// kept; people with an unparseable birth date are left out.
func NewBirthdayEntries(now time.Time, kind model.Kind, people []model.Person) []BirthdayEntry {
	today := DateOf(now)
	out := make([]BirthdayEntry, 0, len(people))
	for _, p := range people {
		dob, err := ParseCalendarDate(p.BirthDate)
		if err != nil {
			continue
		}
		next, age := calculateNextOccurrence(today, dob)
		out = append(out, BirthdayEntry{
			Person:         p,
			Kind:           kind,
			DateOfBirth:    dob,
			NextOccurrence: next,
			AgeNext:        age,
			IsToday:        dob.SameMonthDay(today),
			AlreadyWished:  AlreadyContactedToday(p, model.ContactBirthday, now),
		})
	}
	return out
}

// calculateNextOccurrence returns the next birthday on or after today and
// the age reached on that day.
func calculateNextOccurrence(today, birth CalendarDate) (CalendarDate, int) {
	candidate := birth.InYear(today.Year)
	if candidate.Before(today) {
		candidate = birth.InYear(today.Year + 1)
	}
	return candidate, candidate.Year - birth.Year
}
