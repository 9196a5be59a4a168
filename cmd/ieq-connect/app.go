package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tartampluch/ieq-connect/internal/auth"
	"github.com/tartampluch/ieq-connect/internal/config"
	"github.com/tartampluch/ieq-connect/internal/engine"
	"github.com/tartampluch/ieq-connect/internal/model"
	"github.com/tartampluch/ieq-connect/internal/notifier"
	"github.com/tartampluch/ieq-connect/internal/store"
)

// App holds the dependencies shared by every command. Fields left nil
// before the first command runs are wired to their production defaults.
type App struct {
	In  io.Reader
	Out io.Writer

	ConfigPath string
	Debug      bool
	Yes        bool

	Settings *config.Settings
	Backend  store.Backend
	Session  store.SessionSlot
	Clock    engine.Clock
	Opener   notifier.LinkOpener
	Fetcher  engine.VCardFetcher

	Store      *store.Store
	Auth       *auth.Service
	Translator *notifier.Translator

	// User is the logged-in operator, set by the session gate.
	User model.User

	setupLogging func(debug bool) io.Closer
	logCloser    io.Closer
	reader       *bufio.Reader
}

// NewApp returns an App reading prompts from in and writing to out.
func NewApp(in io.Reader, out io.Writer) *App {
	return &App{In: in, Out: out}
}

// Close releases the log file.
func (a *App) Close() {
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
}

// init wires the dependencies, then applies the session gate of cmd.
func (a *App) init(cmd *cobra.Command) error {
	if a.setupLogging != nil && a.logCloser == nil {
		a.logCloser = a.setupLogging(a.Debug)
		logStartupInfo()
	}

	if a.Settings == nil {
		cfg, err := a.loadSettings()
		if err != nil {
			return err
		}
		a.Settings = &cfg
	}
	if a.Clock == nil {
		a.Clock = engine.RealClock{Location: a.Settings.Location()}
	}
	if a.Opener == nil {
		a.Opener = notifier.BrowserOpener{}
	}
	if a.Fetcher == nil {
		a.Fetcher = engine.NewHTTPFetcher()
	}
	if a.Translator == nil {
		t, err := notifier.NewTranslator(a.Settings.Language)
		if err != nil {
			return err
		}
		a.Translator = t
	}
	if a.Store == nil {
		if err := a.openStore(); err != nil {
			return err
		}
	}
	return a.gate(cmd)
}

func (a *App) loadSettings() (config.Settings, error) {
	dir, err := config.AppConfigDir()
	if err != nil {
		return config.Settings{}, err
	}
	path := a.ConfigPath
	if path == "" {
		path = filepath.Join(dir, config.SettingsFileName)
	}
	return config.LoadSettings(path, config.DefaultSettings(dir))
}

func (a *App) openStore() error {
	if a.Backend == nil {
		b, err := store.NewFileBackend(a.Settings.DataDir)
		if err != nil {
			return err
		}
		a.Backend = b
	}
	if a.Session == nil {
		if a.Settings.Session == config.SessionFile {
			a.Session = store.NewBackendSession(a.Backend)
		} else {
			a.Session = store.NewKeyringSession()
		}
	}
	s, err := store.Open(a.Backend, a.Session)
	if err != nil {
		return err
	}
	a.Store = s
	a.Auth = auth.New(s)
	return nil
}

// gate enforces the session annotation of cmd. Unannotated commands need
// a session with no pending password change; "limited" commands accept
// one; "none" commands run logged out.
func (a *App) gate(cmd *cobra.Command) error {
	mode := cmd.Annotations[config.AnnotSession]
	if mode == config.AnnotSessionNone || cmd.Name() == "help" {
		return nil
	}

	u, err := a.Auth.RequireSession()
	switch {
	case errors.Is(err, auth.ErrMustChangePassword) && mode == config.AnnotSessionLimit:
		a.User = u
		return nil
	case errors.Is(err, auth.ErrMustChangePassword):
		return fmt.Errorf("%w: %s", err, a.Translator.Msg(config.TKeyLblMustChangePass, nil))
	case err != nil:
		return err
	}
	a.User = u
	return nil
}

// requireAdmin is called by commands restricted to administrators.
func (a *App) requireAdmin() error {
	_, err := a.Auth.RequireAdmin()
	return err
}

// contactUpdater wires the updater to the store and the WhatsApp notifier.
// With printOnly set the link is written to Out instead of being opened.
func (a *App) contactUpdater(printOnly bool) *engine.ContactUpdater {
	var opener notifier.LinkOpener = a.Opener
	if printOnly {
		opener = notifier.WriterOpener{W: a.Out}
	}
	return &engine.ContactUpdater{
		Clock: a.Clock,
		Notifier: &notifier.WhatsApp{
			Translator:  a.Translator,
			Opener:      opener,
			CountryCode: a.Settings.CountryCode,
		},
		Members:  a.Store.Members,
		Visitors: a.Store.Visitors,
		Events:   a.Store.Events,
	}
}

// findPerson looks the id up in members, then visitors.
func (a *App) findPerson(id string) (model.Person, model.Kind, error) {
	for _, kind := range []model.Kind{model.KindMember, model.KindVisitor} {
		p, ok, err := a.Store.People(kind).Find(id)
		if err != nil {
			return model.Person{}, "", err
		}
		if ok {
			return p, kind, nil
		}
	}
	return model.Person{}, "", fmt.Errorf("%w: %q", engine.ErrUnknownPerson, id)
}
