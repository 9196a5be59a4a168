package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tartampluch/ieq-connect/internal/config"
	"github.com/tartampluch/ieq-connect/internal/model"
	"github.com/zalando/go-keyring"
)

// SessionSlot holds at most one logged-in user.
type SessionSlot interface {
	Load() (*model.User, error)
	Save(user *model.User) error
}

// KeyringSession keeps the session in the OS credential store, so it
// survives between CLI invocations without a plain file on disk.
type KeyringSession struct {
	Service string
	Account string
}

// NewKeyringSession returns the slot used in production.
func NewKeyringSession() *KeyringSession {
	return &KeyringSession{Service: config.KeyringService, Account: config.KeySession}
}

// Load returns nil when no session is stored.
func (k *KeyringSession) Load() (*model.User, error) {
	secret, err := keyring.Get(k.Service, k.Account)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s (%s): %w", config.ErrSessionRead, config.HintSessionFile, err)
	}
	return decodeSession([]byte(secret))
}

// Save overwrites the slot; nil clears it.
func (k *KeyringSession) Save(user *model.User) error {
	if user == nil {
		err := keyring.Delete(k.Service, k.Account)
		if err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("%s (%s): %w", config.ErrSessionWrite, config.HintSessionFile, err)
		}
		return nil
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrSessionWrite, err)
	}
	if err := keyring.Set(k.Service, k.Account, string(data)); err != nil {
		return fmt.Errorf("%s (%s): %w", config.ErrSessionWrite, config.HintSessionFile, err)
	}
	return nil
}

// BackendSession keeps the session as one more document of a Backend,
// for hosts without a credential store.
type BackendSession struct {
	Backend Backend
	Key     string
}

// NewBackendSession stores the session under config.KeySession.
func NewBackendSession(b Backend) *BackendSession {
	return &BackendSession{Backend: b, Key: config.KeySession}
}

// Load returns nil when no session is stored.
func (b *BackendSession) Load() (*model.User, error) {
	data, ok, err := b.Backend.Get(b.Key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrSessionRead, err)
	}
	if !ok {
		return nil, nil
	}
	return decodeSession(data)
}

// Save overwrites the document; nil removes it.
func (b *BackendSession) Save(user *model.User) error {
	if user == nil {
		if err := b.Backend.Remove(b.Key); err != nil {
			return fmt.Errorf("%s: %w", config.ErrSessionWrite, err)
		}
		return nil
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrSessionWrite, err)
	}
	if err := b.Backend.Set(b.Key, data); err != nil {
		return fmt.Errorf("%s: %w", config.ErrSessionWrite, err)
	}
	return nil
}

func decodeSession(data []byte) (*model.User, error) {
	var u model.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrSessionRead, err)
	}
	return &u, nil
}

// MemorySession is a process-local slot.
type MemorySession struct {
	mu   sync.Mutex
	user *model.User
}

func (m *MemorySession) Load() (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil, nil
	}
	u := *m.user
	return &u, nil
}

func (m *MemorySession) Save(user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user == nil {
		m.user = nil
		return nil
	}
	u := *user
	m.user = &u
	return nil
}

// CurrentSession returns the logged-in user, or nil.
func (s *Store) CurrentSession() (*model.User, error) {
	return s.session.Load()
}

// SetCurrentSession replaces the slot wholesale; nil logs out.
func (s *Store) SetCurrentSession(user *model.User) error {
	if err := s.session.Save(user); err != nil {
		return err
	}
	if user == nil {
		slog.Info(config.MsgSessionCleared, config.LogKeyComponent, config.CompSession)
	} else {
		slog.Info(config.MsgSessionSet,
			config.LogKeyComponent, config.CompSession,
			config.LogKeyUser, user.Username)
	}
	return nil
}

// syncSession refreshes the slot when the logged-in user's record changes.
func (s *Store) syncSession(updated model.User) error {
	current, err := s.session.Load()
	if err != nil || current == nil || current.ID != updated.ID {
		return err
	}
	if err := s.session.Save(&updated); err != nil {
		return err
	}
	slog.Debug(config.MsgSessionSynced,
		config.LogKeyComponent, config.CompSession,
		config.LogKeyID, updated.ID)
	return nil
}
