package engine

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/ieq-connect/internal/config"
	"github.com/tartampluch/ieq-connect/internal/model"
	"github.com/teambition/rrule-go"
)

// floatingDateTime is a local date-time without zone, valid in any calendar client.
const floatingDateTime = "20060102T150405"

// Generator builds the iCalendar feeds served to calendar clients.
type Generator struct {
	Clock Clock

	// FormatSummary lets the caller localise birthday event titles.
	FormatSummary func(name string, age int, yearKnown bool) string

	// ReminderTrigger is an ISO 8601 duration such as "-P1D"; empty disables alarms.
	ReminderTrigger string
}

// genStats are the counters logged after a generation pass.
type genStats struct{ processed, found, today int }

// BirthdayCalendar renders one all-day event per person for the previous,
// current and next year. It also returns how many birthdays fall today.
func (g *Generator) BirthdayCalendar(people []model.Person) ([]byte, int, error) {
	now := g.Clock.Now()
	cal := newCalendar(config.ICalCalBirthdays)
	stamp := stampProp(now)
	stats := genStats{}

	for _, p := range people {
		stats.processed++
		dob, err := ParseCalendarDate(p.BirthDate)
		if err != nil {
			slog.Debug(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyID, p.ID,
				config.LogKeyValue, p.BirthDate)
			continue
		}
		stats.found++

		name := strings.TrimSpace(p.Name)
		if name == "" {
			name = config.FallbackName
		}

		input := fmt.Sprintf(config.FormatHashInput, p.ID, dob.String(), config.UIDSalt)
		hash := sha256.Sum256([]byte(input))
		uidBase := fmt.Sprintf("%x", hash[:config.UIDHashLength])

		events, isToday := g.createEvents(name, dob, now, uidBase)
		if isToday {
			stats.today++
			slog.Info(config.MsgBdayToday,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyName, name,
				config.LogKeyDOB, dob.String())
		}
		for _, e := range events {
			e.Props.Set(stamp)
			cal.Children = append(cal.Children, e.Component)
		}
	}

	data, err := encode(cal)
	if err != nil {
		return nil, 0, err
	}
	logSuccess(config.FeedBirthdays, stats)
	return data, stats.today, nil
}

// createEvents generates the events for year-1, year and year+1, never
// before the year of birth.
func (g *Generator) createEvents(name string, dob CalendarDate, now time.Time, uidBase string) ([]*ical.Event, bool) {
	currentYear := now.Year()
	loc := now.Location()
	today := DateOf(now)

	var events []*ical.Event
	isToday := false

	for _, y := range []int{currentYear - 1, currentYear, currentYear + 1} {
		if y < dob.Year {
			continue
		}

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, uidBase, y, config.ICalDomain))

		age := y - dob.Year
		summary := fmt.Sprintf(config.FallbackSummary, name)
		if g.FormatSummary != nil {
			summary = g.FormatSummary(name, age, age >= 0)
		}
		event.Props.SetText(config.PropSummary, summary)

		day := dob.InYear(y)
		if day == today {
			isToday = true
		}

		dtStart := ical.NewProp(config.PropDTStart)
		dtStart.SetDate(time.Date(day.Year, day.Month, day.Day, 0, 0, 0, 0, loc))
		event.Props.Set(dtStart)

		if g.ReminderTrigger != "" {
			addAlarm(event, g.ReminderTrigger, summary)
		}
		events = append(events, event)
	}
	return events, isToday
}

// AgendaCalendar renders the weekly agenda: one recurring event per event
// time, two when a secondary time is set. Events whose weekday or time
// cannot be read are skipped.
func (g *Generator) AgendaCalendar(events []model.ChurchEvent) ([]byte, error) {
	now := g.Clock.Now()
	cal := newCalendar(config.ICalCalAgenda)
	stamp := stampProp(now)
	stats := genStats{}

	for _, e := range events {
		stats.processed++
		for _, at := range eventTimes(e) {
			rule, err := weeklyRule(e.DayOfWeek, at, now)
			if err != nil {
				slog.Debug(config.MsgSkippedWeekday,
					config.LogKeyComponent, config.CompEngine,
					config.LogKeyID, e.ID,
					config.LogKeyValue, e.DayOfWeek,
					config.LogKeyError, err)
				continue
			}
			stats.found++
			first := rule.After(rule.OrigOptions.Dtstart, true)

			event := ical.NewEvent()
			event.Props.SetText(config.PropUID,
				fmt.Sprintf(config.FormatEventUID, e.ID, strings.ReplaceAll(at, ":", ""), config.ICalDomain))
			event.Props.SetText(config.PropSummary, strings.TrimSpace(e.Icon+" "+e.Title))
			if e.Description != "" {
				event.Props.SetText(config.PropDescription, e.Description)
			}
			event.Props.Set(floatingProp(config.PropDTStart, first))
			event.Props.Set(floatingProp(config.PropDTEnd, first.Add(config.AgendaEventLength)))

			rr := ical.NewProp(config.PropRRule)
			rr.Value = rule.OrigOptions.RRuleString()
			event.Props.Set(rr)
			event.Props.Set(stamp)

			cal.Children = append(cal.Children, event.Component)
		}
	}

	data, err := encode(cal)
	if err != nil {
		return nil, err
	}
	logSuccess(config.FeedAgenda, stats)
	return data, nil
}

// NextOccurrence returns the next start of e at or after now, as a wall
// clock time in now's location. Secondary times are not considered.
func NextOccurrence(e model.ChurchEvent, now time.Time) (time.Time, error) {
	rule, err := weeklyRule(e.DayOfWeek, e.Time, now)
	if err != nil {
		return time.Time{}, err
	}
	wall := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), now.Minute(), 0, 0, time.UTC)
	next := rule.After(wall, true)
	if next.IsZero() {
		return time.Time{}, fmt.Errorf("%s: %q", config.ErrRRule, e.DayOfWeek)
	}
	return time.Date(next.Year(), next.Month(), next.Day(), next.Hour(), next.Minute(), 0, 0, now.Location()), nil
}

var rruleWeekdays = [...]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

// weeklyRule anchors a weekly rule at today's date and the event's wall
// clock time. The rule is computed in UTC so DST never shifts the hour; the
// result is written out as floating time.
func weeklyRule(dayOfWeek, at string, now time.Time) (*rrule.RRule, error) {
	wd, ok := ParseWeekday(dayOfWeek)
	if !ok {
		return nil, fmt.Errorf("%s: %q", config.ErrRRule, dayOfWeek)
	}
	clock, err := time.Parse(config.TimeFormatClock, strings.TrimSpace(at))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrRRule, err)
	}
	today := DateOf(now)
	anchor := time.Date(today.Year, today.Month, today.Day, clock.Hour(), clock.Minute(), 0, 0, time.UTC)

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: []rrule.Weekday{rruleWeekdays[wd]},
		Dtstart:   anchor,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrRRule, err)
	}
	return rule, nil
}

func eventTimes(e model.ChurchEvent) []string {
	times := []string{e.Time}
	if s := strings.TrimSpace(e.SecondaryTime); s != "" {
		times = append(times, s)
	}
	return times
}

func newCalendar(name string) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, name)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986 refresh hint.
	refresh := ical.NewProp(config.PropRefresh)
	refresh.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refresh)
	return cal
}

// stampProp stamps the generation day rather than the instant, so feeds
// regenerated on the same day are byte-identical and keep their ETag.
func stampProp(now time.Time) *ical.Prop {
	p := ical.NewProp(config.PropDTStamp)
	p.SetDateTime(DateOf(now).midnight())
	return p
}

// floatingProp writes t without TZID so clients show the church's wall clock.
func floatingProp(name string, t time.Time) *ical.Prop {
	p := ical.NewProp(name)
	p.Value = t.Format(floatingDateTime)
	return p
}

// encode returns the stub calendar when there is nothing to publish, since
// clients flag a VCALENDAR without components as invalid.
func encode(cal *ical.Calendar) ([]byte, error) {
	if len(cal.Children) == 0 {
		return []byte(config.StubVCalendar), nil
	}
	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return buf.Bytes(), nil
}

// addAlarm appends a DISPLAY alarm to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set the value directly: SetText would add VALUE=TEXT.
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}

func logSuccess(feed string, stats genStats) {
	slog.Info(config.MsgGenSuccess,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyFeed, feed,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, stats.processed),
			slog.Int(config.LogKeyFound, stats.found),
			slog.Int(config.LogKeyToday, stats.today),
		),
	)
}
