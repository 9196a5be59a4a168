package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/tartampluch/ieq-connect/internal/config"
	"github.com/tartampluch/ieq-connect/internal/engine"
	"github.com/tartampluch/ieq-connect/internal/model"
	"github.com/tartampluch/ieq-connect/internal/notifier"
)

func newTable(w io.Writer, header string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, config.TabPadding, ' ', 0)
	fmt.Fprintln(tw, header)
	return tw
}

func row(tw *tabwriter.Writer, cols ...string) {
	fmt.Fprintln(tw, strings.Join(cols, config.TableSep))
}

// displayDate renders an ISO date as dd/mm/yyyy; anything else is kept.
func displayDate(iso string) string {
	d, err := engine.ParseCalendarDate(iso)
	if err != nil {
		return iso
	}
	return fmt.Sprintf("%02d/%02d/%04d", d.Day, int(d.Month), d.Year)
}

// stamp renders a contact stamp, or the "never" label.
func stamp(t *notifier.Translator, iso string) string {
	if iso == "" {
		return t.Msg(config.TKeyLblNever, nil)
	}
	return displayDate(iso)
}

func registeredOn(p model.Person) string {
	if at, ok := p.Registered(); ok {
		return at.Local().Format(config.DateFormatDisplay)
	}
	return p.RegistrationDate
}

func kindLabel(t *notifier.Translator, kind model.Kind) string {
	if kind == model.KindMember {
		return t.Msg(config.TKeyLblMember, nil)
	}
	return t.Msg(config.TKeyLblVisitor, nil)
}

func writePeople(w io.Writer, t *notifier.Translator, people []model.Person) error {
	tw := newTable(w, config.HeaderPeople)
	for _, p := range people {
		row(tw, p.ID, p.Name, p.Phone, displayDate(p.BirthDate), registeredOn(p),
			stamp(t, p.LastWelcomeSentAt), stamp(t, p.LastBirthdayWishedAt))
	}
	return tw.Flush()
}

func writeEvents(w io.Writer, events []model.ChurchEvent) error {
	tw := newTable(w, config.HeaderEvents)
	for _, e := range events {
		at := e.Time
		if e.SecondaryTime != "" {
			at += " / " + e.SecondaryTime
		}
		row(tw, e.ID, e.DayOfWeek, at, strings.TrimSpace(e.Icon+" "+e.Title))
	}
	return tw.Flush()
}

func writeUsers(w io.Writer, users []model.User) error {
	tw := newTable(w, config.HeaderUsers)
	for _, u := range users {
		row(tw, u.ID, u.Username, u.Name, string(u.Role))
	}
	return tw.Flush()
}

func writeBirthdays(w io.Writer, t *notifier.Translator, entries []engine.BirthdayEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, t.Msg(config.TKeyLblNoBirthdays, nil))
		return err
	}
	tw := newTable(w, config.HeaderBirthdays)
	for _, e := range entries {
		status := ""
		switch {
		case e.AlreadyWished:
			status = t.Msg(config.TKeyLblAlreadySent, nil)
		case e.IsToday:
			status = t.Msg(config.TKeyLblToday, nil) + ": " + t.Msg(config.TKeyLblSendBirthday, nil)
		}
		row(tw,
			fmt.Sprintf("%02d/%02d", e.DateOfBirth.Day, int(e.DateOfBirth.Month)),
			e.Person.ID,
			e.Person.Name,
			kindLabel(t, e.Kind),
			fmt.Sprint(e.AgeNext),
			status)
	}
	return tw.Flush()
}
