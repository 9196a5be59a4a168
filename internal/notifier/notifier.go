// Package notifier turns contact actions into WhatsApp click-to-chat links.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	"github.com/tartampluch/ieq-connect/internal/config"
	"github.com/tartampluch/ieq-connect/internal/model"
)

// ErrPhoneEmpty is returned when a phone number has no digits to dial.
var ErrPhoneEmpty = errors.New(config.ErrPhoneEmpty)

// LinkOpener hands a link to whatever delivers it.
type LinkOpener interface {
	Open(ctx context.Context, link string) error
}

// BrowserOpener launches the platform URL handler. It does not wait for
// the browser to exit.
type BrowserOpener struct{}

// Open checks ctx only before launching. The handler is not bound to ctx
// so it survives the CLI cancelling its context on exit.
func (BrowserOpener) Open(ctx context.Context, link string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", config.ErrOpenLink, err)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command(config.OpenCmdWindows, config.OpenArgWindows, link)
	case "darwin":
		cmd = exec.Command(config.OpenCmdDarwin, link)
	default:
		cmd = exec.Command(config.OpenCmdLinux, link)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%s: %w", config.ErrOpenLink, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// WriterOpener prints the link, one per line.
type WriterOpener struct {
	W io.Writer
}

func (o WriterOpener) Open(_ context.Context, link string) error {
	if _, err := fmt.Fprintln(o.W, link); err != nil {
		return fmt.Errorf("%s: %w", config.ErrOpenLink, err)
	}
	return nil
}

// WhatsApp renders the localised messages and opens wa.me links.
type WhatsApp struct {
	Translator  *Translator
	Opener      LinkOpener
	CountryCode string
}

// SendWelcome thanks a visitor and lists the weekly agenda.
func (w *WhatsApp) SendWelcome(ctx context.Context, p model.Person, events []model.ChurchEvent) error {
	link, err := w.WelcomeLink(p, events)
	if err != nil {
		return err
	}
	return w.open(ctx, p, model.ContactWelcome, link)
}

// SendBirthday wishes a happy birthday.
func (w *WhatsApp) SendBirthday(ctx context.Context, p model.Person) error {
	link, err := w.BirthdayLink(p)
	if err != nil {
		return err
	}
	return w.open(ctx, p, model.ContactBirthday, link)
}

// WelcomeLink builds the welcome link without opening it.
func (w *WhatsApp) WelcomeLink(p model.Person, events []model.ChurchEvent) (string, error) {
	msg := w.Translator.Msg(config.TKeyMsgWelcome, map[string]any{
		"Name":   p.Name,
		"Agenda": w.agenda(events),
	})
	return BuildLink(w.CountryCode, p.Phone, msg)
}

// BirthdayLink builds the birthday link without opening it.
func (w *WhatsApp) BirthdayLink(p model.Person) (string, error) {
	msg := w.Translator.Msg(config.TKeyMsgBirthday, map[string]any{"Name": p.Name})
	return BuildLink(w.CountryCode, p.Phone, msg)
}

// agenda renders one block per event, or the follow-us line when empty.
func (w *WhatsApp) agenda(events []model.ChurchEvent) string {
	if len(events) == 0 {
		return w.Translator.Msg(config.TKeyMsgAgendaEmpty, nil)
	}
	blocks := make([]string, 0, len(events))
	for _, e := range events {
		at := e.Time
		if e.SecondaryTime != "" {
			at = w.Translator.Msg(config.TKeyMsgAgendaTimes, map[string]any{"First": e.Time, "Second": e.SecondaryTime})
		}
		blocks = append(blocks, w.Translator.Msg(config.TKeyMsgAgendaItem, map[string]any{
			"Title":       e.Title,
			"Day":         e.DayOfWeek,
			"Time":        at,
			"Description": e.Description,
		}))
	}
	return strings.Join(blocks, "\n\n")
}

func (w *WhatsApp) open(ctx context.Context, p model.Person, kind model.ContactKind, link string) error {
	if err := w.Opener.Open(ctx, link); err != nil {
		return fmt.Errorf("%s: %w", config.ErrSendFailed, err)
	}
	slog.Info(config.MsgLinkOpened,
		config.LogKeyComponent, config.CompNotifier,
		config.LogKeyID, p.ID,
		config.LogKeyContact, string(kind))
	return nil
}

// FormatPhone strips every non-digit.
func FormatPhone(phone string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
}

// BuildLink returns https://wa.me/<country><digits>?text=<message>, with
// spaces encoded as %20 so every client shows them.
func BuildLink(countryCode, phone, message string) (string, error) {
	digits := FormatPhone(phone)
	if digits == "" {
		return "", fmt.Errorf("%w: %q", ErrPhoneEmpty, phone)
	}
	text := strings.ReplaceAll(url.QueryEscape(message), "+", config.QueryPlusEscaped)
	return config.WhatsAppBaseURL + FormatPhone(countryCode) + digits + "?" + config.WhatsAppTextKey + "=" + text, nil
}
