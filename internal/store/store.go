// Package store is the single source of truth for visitors, members,
// events, operators and the current session.
package store

import (
	"log/slog"
	"sync"

	"github.com/tartampluch/ieq-connect/internal/config"
	"github.com/tartampluch/ieq-connect/internal/model"
)

// Store groups the four collections over one backend.
// The mutex serialises backend access inside this process only; two
// processes writing the same collection can still lose an update.
type Store struct {
	mu      sync.Mutex
	backend Backend
	session SessionSlot

	Visitors *Collection[model.Person]
	Members  *Collection[model.Person]
	Events   *Collection[model.ChurchEvent]
	Users    *Collection[model.User]
}

// Open wires the collections and runs pending schema migrations.
func Open(backend Backend, session SessionSlot) (*Store, error) {
	s := &Store{backend: backend, session: session}

	noPeople := func() []model.Person { return []model.Person{} }

	s.Visitors = &Collection[model.Person]{key: config.KeyVisitors, store: s, seed: noPeople}
	s.Members = &Collection[model.Person]{key: config.KeyMembers, store: s, seed: noPeople}
	s.Events = &Collection[model.ChurchEvent]{key: config.KeyEvents, store: s, seed: model.InitialEvents}
	s.Users = &Collection[model.User]{
		key:       config.KeyUsers,
		store:     s,
		seed:      func() []model.User { return []model.User{model.DefaultAdmin()} },
		protected: func(id string) bool { return id == config.AdminID },
		migrate:   upgradeLegacyAdmin,
		onUpdate:  s.syncSession,
	}

	if err := s.migrateSchema(); err != nil {
		return nil, err
	}

	slog.Debug(config.MsgStoreOpened, config.LogKeyComponent, config.CompStore)
	return s, nil
}

// People returns the person collection for kind.
func (s *Store) People(kind model.Kind) *Collection[model.Person] {
	if kind == model.KindMember {
		return s.Members
	}
	return s.Visitors
}

// upgradeLegacyAdmin moves the seed admin off the legacy default password
// and forces a change at next login. Safe to run on every read.
func upgradeLegacyAdmin(users []model.User) bool {
	for i := range users {
		if users[i].ID != config.AdminID || users[i].Password != config.LegacyAdminPassword {
			continue
		}
		users[i].Password = config.DefaultAdminPassword
		users[i].MustChangePassword = true
		slog.Info(config.MsgAdminMigrated,
			config.LogKeyComponent, config.CompStore,
			config.LogKeyID, config.AdminID)
		return true
	}
	return false
}
