package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tartampluch/ieq-connect/internal/config"
	"github.com/tartampluch/ieq-connect/internal/model"
)

var (
	// ErrUnknownPerson is returned when the person is in neither collection.
	ErrUnknownPerson = errors.New(config.ErrUnknownPerson)
	// ErrUnknownContact is returned for a contact kind the updater cannot send.
	ErrUnknownContact = errors.New(config.ErrUnknownContact)
)

// Notifier delivers the outbound messages. Implementations live in the
// notifier package; the updater only needs this contract.
type Notifier interface {
	SendWelcome(ctx context.Context, person model.Person, events []model.ChurchEvent) error
	SendBirthday(ctx context.Context, person model.Person) error
}

// PersonCollection is the slice of the store the updater writes through.
type PersonCollection interface {
	All() ([]model.Person, error)
	Find(id string) (model.Person, bool, error)
	UpdateByID(p model.Person) error
}

// EventSource provides the agenda embedded in welcome messages.
type EventSource interface {
	All() ([]model.ChurchEvent, error)
}

// ContactUpdater sends a message and stamps the person with today's date.
type ContactUpdater struct {
	Clock    Clock
	Notifier Notifier
	Members  PersonCollection
	Visitors PersonCollection
	Events   EventSource
}

// Apply notifies person, stamps the matching field and returns the refreshed
// collection that holds the person along with its kind.
//
// Members are looked up first, then visitors. A failed dispatch is logged
// and the stamp is still written: it records the attempt, not the delivery.
func (u *ContactUpdater) Apply(ctx context.Context, person model.Person, kind model.ContactKind) ([]model.Person, model.Kind, error) {
	log := slog.With(
		config.LogKeyComponent, config.CompUpdater,
		config.LogKeyID, person.ID,
		config.LogKeyContact, string(kind),
	)

	if kind != model.ContactWelcome && kind != model.ContactBirthday {
		return nil, "", fmt.Errorf("%w: %q", ErrUnknownContact, kind)
	}

	owner, ownerKind, err := u.locate(person.ID)
	if err != nil {
		return nil, "", err
	}

	if err := u.notify(ctx, person, kind); err != nil {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		log.Warn(config.MsgNotifyFailed, config.LogKeyError, err)
	}

	today := TodayISO(u.Clock)
	if err := owner.UpdateByID(person.WithContact(kind, today)); err != nil {
		return nil, "", err
	}
	log.Info(config.MsgContactStamped,
		config.LogKeyKind, string(ownerKind),
		config.LogKeyDate, today)

	people, err := owner.All()
	if err != nil {
		return nil, "", err
	}
	return people, ownerKind, nil
}

func (u *ContactUpdater) locate(id string) (PersonCollection, model.Kind, error) {
	if _, ok, err := u.Members.Find(id); err != nil {
		return nil, "", err
	} else if ok {
		return u.Members, model.KindMember, nil
	}
	if _, ok, err := u.Visitors.Find(id); err != nil {
		return nil, "", err
	} else if ok {
		return u.Visitors, model.KindVisitor, nil
	}
	return nil, "", fmt.Errorf("%w: %q", ErrUnknownPerson, id)
}

func (u *ContactUpdater) notify(ctx context.Context, person model.Person, kind model.ContactKind) error {
	if kind == model.ContactBirthday {
		return u.Notifier.SendBirthday(ctx, person)
	}
	var events []model.ChurchEvent
	if u.Events != nil {
		all, err := u.Events.All()
		if err != nil {
			return err
		}
		events = all
	}
	return u.Notifier.SendWelcome(ctx, person, events)
}
