package model_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/ieq-connect/internal/model"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    model.Kind
		wantErr bool
	}{
		{"visitor", model.KindVisitor, false},
		{"Visitors", model.KindVisitor, false},
		{" member ", model.KindMember, false},
		{"members", model.KindMember, false},
		{"guest", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := model.ParseKind(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewPerson(t *testing.T) {
	now := time.Date(2024, 3, 15, 13, 45, 0, 0, time.FixedZone("BRT", -3*3600))
	p := model.NewPerson("  Maria  ", " (11) 98765-4321 ", "1990-03-15", "Rua A", now)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Maria", p.Name)
	assert.Equal(t, "(11) 98765-4321", p.Phone)
	assert.Equal(t, "2024-03-15T16:45:00Z", p.RegistrationDate)
	assert.Empty(t, p.LastBirthdayWishedAt)
	assert.Empty(t, p.LastWelcomeSentAt)

	other := model.NewPerson("João", "1", "1990-01-01", "", now)
	assert.NotEqual(t, p.ID, other.ID, "ids must be unique")
}

func TestPerson_WithContact(t *testing.T) {
	p := model.Person{ID: "p1"}

	wished := p.WithContact(model.ContactBirthday, "2024-03-15")
	welcomed := p.WithContact(model.ContactWelcome, "2024-03-16")

	assert.Equal(t, "2024-03-15", wished.LastContact(model.ContactBirthday))
	assert.Empty(t, wished.LastContact(model.ContactWelcome))
	assert.Equal(t, "2024-03-16", welcomed.LastContact(model.ContactWelcome))
	assert.Empty(t, p.LastBirthdayWishedAt, "WithContact must not mutate the receiver")
}

func TestPerson_Registered(t *testing.T) {
	withMillis := model.Person{RegistrationDate: "2024-03-15T10:00:00.000Z"}
	got, ok := withMillis.Registered()
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC), got)

	_, ok = model.Person{RegistrationDate: "yesterday"}.Registered()
	assert.False(t, ok)
}

func TestPerson_JSONShape(t *testing.T) {
	p := model.Person{ID: "1", Name: "Ana", Phone: "1", BirthDate: "1990-03-15", RegistrationDate: "2024-01-01T00:00:00Z"}
	data, err := json.Marshal(p)
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, `"birthDate":"1990-03-15"`)
	assert.Contains(t, s, `"registrationDate"`)
	assert.NotContains(t, s, "lastWelcomeSentAt", "unset stamps are omitted")
}

func TestValidate_Person(t *testing.T) {
	valid := model.NewPerson("Ana", "11999990000", "1990-03-15", "", time.Now())
	assert.NoError(t, model.Validate(valid))

	tests := []struct {
		name   string
		mutate func(p *model.Person)
		field  string
	}{
		{"missing name", func(p *model.Person) { p.Name = "" }, "Name"},
		{"missing phone", func(p *model.Person) { p.Phone = "" }, "Phone"},
		{"missing birth date", func(p *model.Person) { p.BirthDate = "" }, "BirthDate"},
		{"bad birth date", func(p *model.Person) { p.BirthDate = "15/03/1990" }, "BirthDate"},
		{"bad stamp", func(p *model.Person) { p.LastWelcomeSentAt = "today" }, "LastWelcomeSentAt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := model.Validate(p)
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrValidation))
			assert.Contains(t, model.FieldErrors(err), tt.field)
		})
	}
}

func TestValidate_EventAndUser(t *testing.T) {
	ev := model.NewChurchEvent("Culto", "Domingo", "09:00", "", "", "")
	assert.NoError(t, model.Validate(ev))
	assert.Equal(t, "⛪", ev.Icon, "default icon is applied")

	ev.Time = "9h"
	assert.ErrorIs(t, model.Validate(ev), model.ErrValidation)

	u := model.NewUser("Ana", "  ANA.Silva ", "abcd", model.RoleMember)
	assert.Equal(t, "ana.silva", u.Username)
	assert.NoError(t, model.Validate(u))

	u.Role = "OWNER"
	assert.ErrorIs(t, model.Validate(u), model.ErrValidation)
}

func TestSeeds(t *testing.T) {
	admin := model.DefaultAdmin()
	assert.Equal(t, "admin-001", admin.ID)
	assert.Equal(t, model.RoleAdmin, admin.Role)
	assert.True(t, admin.MustChangePassword)

	events := model.InitialEvents()
	require.Len(t, events, 4)
	for _, e := range events {
		assert.NoError(t, model.Validate(e), e.Title)
	}
}
