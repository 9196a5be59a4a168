package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/ieq-connect/internal/config"
	"github.com/tartampluch/ieq-connect/internal/model"
)

// OpenSource opens a vCard file path or an http(s) URL. Credentials in the
// URL user info are sent as basic auth and never logged.
func OpenSource(ctx context.Context, fetcher VCardFetcher, src string) (io.ReadCloser, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, errors.New(config.ErrLocalPathEmpty)
	}

	u, err := url.Parse(src)
	if err != nil || (u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS) {
		return os.Open(src)
	}
	if fetcher == nil {
		return nil, errors.New(config.ErrFetcherMissing)
	}

	var user, pass string
	if u.User != nil {
		user = u.User.Username()
		pass, _ = u.User.Password()
		u.User = nil
	}
	return fetcher.Fetch(ctx, u.String(), user, pass)
}

// ImportVCards decodes every card of r into a Person. Cards without a name
// or a birth date with a year are skipped. The card UID becomes the id
// when present; X-IEQ-REGISTERED restores the registration date.
func ImportVCards(ctx context.Context, r io.Reader, now time.Time) ([]model.Person, error) {
	log := slog.With(config.LogKeyComponent, config.CompEngine)
	decoder := vcard.NewDecoder(r)
	var people []model.Person
	skipped := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Warn(config.MsgSkippedCard, config.LogKeyError, err)
			skipped++
			continue
		}

		p, ok := personFromCard(card, now)
		if !ok {
			skipped++
			continue
		}
		people = append(people, p)
	}

	log.Info(config.MsgImportDone,
		config.LogKeyFound, len(people),
		config.LogKeyTotal, len(people)+skipped)
	return people, nil
}

func personFromCard(card vcard.Card, now time.Time) (model.Person, bool) {
	name := strings.TrimSpace(card.PreferredValue(vcard.FieldFormattedName))
	if name == "" {
		if n := card.Name(); n != nil {
			name = strings.TrimSpace(strings.Join(nonEmpty(n.GivenName, n.AdditionalName, n.FamilyName), " "))
		}
	}
	if name == "" {
		slog.Debug(config.MsgSkippedCard, config.LogKeyComponent, config.CompEngine)
		return model.Person{}, false
	}

	bday := card.Value(vcard.FieldBirthday)
	dob, yearKnown, err := parseDate(bday)
	if err != nil || !yearKnown {
		slog.Debug(config.MsgSkippedDate,
			config.LogKeyComponent, config.CompEngine,
			config.LogKeyName, name,
			config.LogKeyValue, bday)
		return model.Person{}, false
	}

	var address string
	if a := card.Address(); a != nil {
		address = strings.Join(nonEmpty(a.StreetAddress, a.ExtendedAddress, a.Locality, a.Region, a.PostalCode, a.Country), ", ")
	}

	p := model.NewPerson(name, card.PreferredValue(vcard.FieldTelephone), dob.Format(config.DateFormatISO), address, now)
	if uid := strings.TrimSpace(card.Value(vcard.FieldUID)); uid != "" {
		p.ID = uid
	}
	if reg := strings.TrimSpace(card.Value(config.VCardRegDate)); reg != "" {
		p.RegistrationDate = reg
	}
	return p, true
}

// ExportVCards writes one vCard 4.0 per person.
func ExportVCards(w io.Writer, kind model.Kind, people []model.Person) error {
	enc := vcard.NewEncoder(w)
	for _, p := range people {
		card := vcard.Card{}
		card.SetValue(vcard.FieldVersion, config.VCardVersion)
		card.SetValue(vcard.FieldUID, p.ID)
		card.SetValue(vcard.FieldFormattedName, p.Name)
		if p.Phone != "" {
			card.SetValue(vcard.FieldTelephone, p.Phone)
		}
		if dob, err := ParseCalendarDate(p.BirthDate); err == nil {
			card.SetValue(vcard.FieldBirthday, dob.midnight().Format(config.DateFormatFullBasic))
		}
		if p.Address != "" {
			card.AddAddress(&vcard.Address{StreetAddress: p.Address})
		}
		card.SetValue(config.VCardKind, string(kind))
		card.SetValue(config.VCardRegDate, p.RegistrationDate)

		if err := enc.Encode(card); err != nil {
			return fmt.Errorf("%s: %w", config.ErrVCardEncode, err)
		}
	}
	return nil
}

// parseDate handles the vCard date forms, with or without a year.
func parseDate(value string) (time.Time, bool, error) {
	value = strings.TrimSpace(value)
	formatsWithYear := []string{
		config.DateFormatISO,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}
	for _, f := range formatsWithYear {
		if t, err := time.Parse(f, value); err == nil {
			return t, true, nil
		}
	}

	// Truncated dates: pin a leap year so --02-29 survives.
	for _, f := range []string{config.DateFormatNoYearD, config.DateFormatNoYearB} {
		if t, err := time.Parse(f, value); err == nil {
			return time.Date(config.DefaultLeapYear, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), false, nil
		}
	}
	return time.Time{}, false, errors.New(config.ErrDateParse)
}

func nonEmpty(parts ...string) []string {
	out := parts[:0:0]
	for _, s := range parts {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
