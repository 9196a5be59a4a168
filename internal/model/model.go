// Package model defines the records persisted by the store.
//
// Field names in the JSON tags match the documents written by the original
// browser application so that exported data can be loaded unchanged.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tartampluch/ieq-connect/internal/config"
)

// Kind tells which collection a Person belongs to.
type Kind string

const (
	KindVisitor Kind = "visitor"
	KindMember  Kind = "member"
)

// ParseKind accepts the singular or plural collection name.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "visitor", "visitors":
		return KindVisitor, nil
	case "member", "members":
		return KindMember, nil
	default:
		return "", fmt.Errorf("%s: %q", config.ErrUnknownKind, s)
	}
}

// ContactKind is the type of outbound message that stamps a Person.
type ContactKind string

const (
	ContactWelcome  ContactKind = "welcome"
	ContactBirthday ContactKind = "birthday"
)

// Person is the shared shape of visitors and members.
type Person struct {
	ID               string `json:"id" validate:"required"`
	Name             string `json:"name" validate:"required"`
	Phone            string `json:"phone" validate:"required"`
	BirthDate        string `json:"birthDate" validate:"required,datetime=2006-01-02"`
	Address          string `json:"address"`
	RegistrationDate string `json:"registrationDate" validate:"required"`

	// Same-day dedupe gates, ISO dates.
	LastBirthdayWishedAt string `json:"lastBirthdayWishedAt,omitempty" validate:"omitempty,datetime=2006-01-02"`
	LastWelcomeSentAt    string `json:"lastWelcomeSentAt,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// Key returns the collection identifier.
func (p Person) Key() string { return p.ID }

// NewPerson builds a Person with a fresh id and registration timestamp.
func NewPerson(name, phone, birthDate, address string, now time.Time) Person {
	return Person{
		ID:               uuid.NewString(),
		Name:             strings.TrimSpace(name),
		Phone:            strings.TrimSpace(phone),
		BirthDate:        strings.TrimSpace(birthDate),
		Address:          strings.TrimSpace(address),
		RegistrationDate: now.UTC().Format(time.RFC3339),
	}
}

// LastContact returns the stamp for kind, or "" if never sent.
func (p Person) LastContact(kind ContactKind) string {
	switch kind {
	case ContactWelcome:
		return p.LastWelcomeSentAt
	case ContactBirthday:
		return p.LastBirthdayWishedAt
	}
	return ""
}

// WithContact returns a copy of p with the stamp for kind set to date.
func (p Person) WithContact(kind ContactKind, date string) Person {
	switch kind {
	case ContactWelcome:
		p.LastWelcomeSentAt = date
	case ContactBirthday:
		p.LastBirthdayWishedAt = date
	}
	return p
}

// Registered parses RegistrationDate. Both RFC 3339 and the millisecond
// form written by browsers are accepted.
func (p Person) Registered() (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, p.RegistrationDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ChurchEvent is one entry of the weekly agenda.
type ChurchEvent struct {
	ID            string `json:"id" validate:"required"`
	Title         string `json:"title" validate:"required"`
	DayOfWeek     string `json:"dayOfWeek" validate:"required"`
	Time          string `json:"time" validate:"required,datetime=15:04"`
	SecondaryTime string `json:"secondaryTime,omitempty" validate:"omitempty,datetime=15:04"`
	Description   string `json:"description"`
	Icon          string `json:"icon,omitempty"`
}

// Key returns the collection identifier.
func (e ChurchEvent) Key() string { return e.ID }

// NewChurchEvent builds an event with a fresh id.
func NewChurchEvent(title, dayOfWeek, at, secondary, description, icon string) ChurchEvent {
	if icon == "" {
		icon = config.DefaultEventIcon
	}
	return ChurchEvent{
		ID:            uuid.NewString(),
		Title:         strings.TrimSpace(title),
		DayOfWeek:     strings.TrimSpace(dayOfWeek),
		Time:          strings.TrimSpace(at),
		SecondaryTime: strings.TrimSpace(secondary),
		Description:   strings.TrimSpace(description),
		Icon:          icon,
	}
}

// Role is the access level of an operator.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// User is an operator account. Passwords are stored as entered.
type User struct {
	ID                 string `json:"id" validate:"required"`
	Username           string `json:"username" validate:"required"`
	Password           string `json:"password" validate:"required"`
	Name               string `json:"name" validate:"required"`
	Role               Role   `json:"role" validate:"required,oneof=ADMIN MEMBER"`
	MustChangePassword bool   `json:"mustChangePassword,omitempty"`
}

// Key returns the collection identifier.
func (u User) Key() string { return u.ID }

// NewUser builds an operator with a fresh id and a normalised username.
func NewUser(name, username, password string, role Role) User {
	return User{
		ID:       uuid.NewString(),
		Username: NormalizeUsername(username),
		Password: password,
		Name:     strings.TrimSpace(name),
		Role:     role,
	}
}

// NormalizeUsername lower-cases and trims a login name.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// DefaultAdmin is the seed administrator.
func DefaultAdmin() User {
	return User{
		ID:                 config.AdminID,
		Username:           config.AdminUsername,
		Password:           config.DefaultAdminPassword,
		Name:               config.AdminName,
		Role:               RoleAdmin,
		MustChangePassword: true,
	}
}

// InitialEvents is the starter agenda.
func InitialEvents() []ChurchEvent {
	return []ChurchEvent{
		{ID: "1", Title: "Culto de Celebração (Manhã)", DayOfWeek: "Domingo", Time: "09:00", Description: "Nossa primeira celebração do dia, começando a manhã na presença do Senhor."},
		{ID: "1.5", Title: "Culto da Família (Noite)", DayOfWeek: "Domingo", Time: "19:00", Description: "Um momento especial para toda a família se reunir em adoração."},
		{ID: "2", Title: "Culto de Ensino", DayOfWeek: "Quarta-feira", Time: "20:00", Description: "Aprofundando no conhecimento da Palavra de Deus."},
		{ID: "3", Title: "Reunião de Jovens", DayOfWeek: "Sábado", Time: "19:30", Description: "Comunhão, louvor e palavra para a juventude."},
	}
}
