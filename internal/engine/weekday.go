package engine

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var weekdayNames = map[string]time.Weekday{
	"domingo": time.Sunday, "dom": time.Sunday, "sunday": time.Sunday, "sun": time.Sunday,
	"segunda": time.Monday, "seg": time.Monday, "monday": time.Monday, "mon": time.Monday,
	"terca": time.Tuesday, "ter": time.Tuesday, "tuesday": time.Tuesday, "tue": time.Tuesday,
	"quarta": time.Wednesday, "qua": time.Wednesday, "wednesday": time.Wednesday, "wed": time.Wednesday,
	"quinta": time.Thursday, "qui": time.Thursday, "thursday": time.Thursday, "thu": time.Thursday,
	"sexta": time.Friday, "sex": time.Friday, "friday": time.Friday, "fri": time.Friday,
	"sabado": time.Saturday, "sab": time.Saturday, "saturday": time.Saturday, "sat": time.Saturday,
}

// ParseWeekday recognises the free-text weekday of an event, in Portuguese
// or English, with or without accents and the "-feira" suffix.
func ParseWeekday(s string) (time.Weekday, bool) {
	key := foldAccents(strings.ToLower(strings.TrimSpace(s)))
	key = strings.TrimSuffix(key, "-feira")
	key = strings.TrimSuffix(key, " feira")
	key = strings.TrimSuffix(key, ".")
	wd, ok := weekdayNames[strings.TrimSpace(key)]
	return wd, ok
}

// foldAccents removes combining marks ("Sábado" -> "Sabado").
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
