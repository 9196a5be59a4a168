// Package auth is the login layer: credentials are checked against the
// users collection and the result is kept in the store's session slot.
// Passwords are compared and stored as plain text.
package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tartampluch/ieq-connect/internal/config"
	"github.com/tartampluch/ieq-connect/internal/model"
	"github.com/tartampluch/ieq-connect/internal/store"
)

var (
	ErrInvalidCredentials = errors.New(config.ErrInvalidCreds)
	ErrNotLoggedIn        = errors.New(config.ErrNotLoggedIn)
	ErrMustChangePassword = errors.New(config.ErrMustChangePass)
	ErrPasswordTooShort   = errors.New(config.ErrPasswordShort)
	ErrPasswordMismatch   = errors.New(config.ErrPasswordMismatch)
	ErrUsernameTaken      = errors.New(config.ErrUsernameTaken)
	ErrAdminUndeletable   = errors.New(config.ErrAdminUndeletable)
	ErrAdminRequired      = errors.New(config.ErrAdminRequired)
)

// Service wraps the users collection and the session slot of one store.
type Service struct {
	Store *store.Store
}

// New returns a Service over s.
func New(s *store.Store) *Service {
	return &Service{Store: s}
}

// Login checks the credentials and makes the user the current session.
func (a *Service) Login(username, password string) (model.User, error) {
	username = model.NormalizeUsername(username)
	users, err := a.Store.Users.All()
	if err != nil {
		return model.User{}, err
	}
	for _, u := range users {
		if u.Username == username && u.Password == password {
			if err := a.Store.SetCurrentSession(&u); err != nil {
				return model.User{}, err
			}
			slog.Info(config.MsgLoginOK,
				config.LogKeyComponent, config.CompAuth,
				config.LogKeyUser, u.Username)
			return u, nil
		}
	}
	slog.Warn(config.MsgLoginFailed,
		config.LogKeyComponent, config.CompAuth,
		config.LogKeyUser, username)
	return model.User{}, ErrInvalidCredentials
}

// Logout clears the session slot.
func (a *Service) Logout() error {
	return a.Store.SetCurrentSession(nil)
}

// RequireSession returns the logged-in user, re-read from the users
// collection. A session pointing at a deleted user is cleared.
// ErrMustChangePassword is returned along with the user while the flag is set.
func (a *Service) RequireSession() (model.User, error) {
	current, err := a.Store.CurrentSession()
	if err != nil {
		return model.User{}, err
	}
	if current == nil {
		return model.User{}, ErrNotLoggedIn
	}

	u, ok, err := a.Store.Users.Find(current.ID)
	if err != nil {
		return model.User{}, err
	}
	if !ok {
		if err := a.Logout(); err != nil {
			return model.User{}, err
		}
		return model.User{}, ErrNotLoggedIn
	}
	if u.MustChangePassword {
		return u, ErrMustChangePassword
	}
	return u, nil
}

// RequireAdmin is RequireSession restricted to the ADMIN role.
func (a *Service) RequireAdmin() (model.User, error) {
	u, err := a.RequireSession()
	if err != nil {
		return u, err
	}
	if u.Role != model.RoleAdmin {
		return u, ErrAdminRequired
	}
	return u, nil
}

// ChangePassword updates the name, username and password of user and
// clears the forced-change flag. The session follows through the store.
func (a *Service) ChangePassword(user model.User, name, username, password, confirm string) (model.User, error) {
	if err := checkPassword(password, confirm); err != nil {
		return model.User{}, err
	}

	updated := user
	if n := strings.TrimSpace(name); n != "" {
		updated.Name = n
	}
	if un := model.NormalizeUsername(username); un != "" {
		updated.Username = un
	}
	updated.Password = password
	updated.MustChangePassword = false

	if err := model.Validate(updated); err != nil {
		return model.User{}, err
	}
	if err := a.ensureUsernameFree(updated.Username, updated.ID); err != nil {
		return model.User{}, err
	}
	if err := a.Store.Users.UpdateByID(updated); err != nil {
		return model.User{}, err
	}
	slog.Info(config.MsgPasswordChanged,
		config.LogKeyComponent, config.CompAuth,
		config.LogKeyUser, updated.Username)
	return updated, nil
}

// CreateUser registers a new operator.
func (a *Service) CreateUser(name, username, password string, role model.Role) (model.User, error) {
	if err := checkPassword(password, password); err != nil {
		return model.User{}, err
	}
	u := model.NewUser(name, username, password, role)
	if err := model.Validate(u); err != nil {
		return model.User{}, err
	}
	if err := a.ensureUsernameFree(u.Username, u.ID); err != nil {
		return model.User{}, err
	}
	if err := a.Store.Users.Append(u); err != nil {
		return model.User{}, err
	}
	slog.Info(config.MsgUserCreated,
		config.LogKeyComponent, config.CompAuth,
		config.LogKeyUser, u.Username,
		config.LogKeyID, u.ID)
	return u, nil
}

// DeleteUser removes an operator. The seed administrator is refused.
func (a *Service) DeleteUser(id string) error {
	if id == config.AdminID {
		return ErrAdminUndeletable
	}
	return a.Store.Users.DeleteByID(id)
}

func (a *Service) ensureUsernameFree(username, selfID string) error {
	users, err := a.Store.Users.All()
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.Username == username && u.ID != selfID {
			return fmt.Errorf("%w: %q", ErrUsernameTaken, username)
		}
	}
	return nil
}

func checkPassword(password, confirm string) error {
	if len([]rune(password)) < config.MinPasswordLength {
		return ErrPasswordTooShort
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}
