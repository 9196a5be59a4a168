package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/emersion/go-ical"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Settings is the runtime configuration read from settings.yaml.
// Every field has a default, so a missing file is not an error.
type Settings struct {
	// DataDir holds one JSON document per collection.
	DataDir string `yaml:"dataDir" validate:"required"`
	// Language selects the outbound message locale (BCP 47, e.g. "pt-BR").
	Language string `yaml:"language" validate:"required"`
	// CountryCode is prefixed to the digits-only phone number.
	CountryCode string `yaml:"countryCode" validate:"required,numeric,max=4"`
	// Port is the local feed server port.
	Port int `yaml:"port" validate:"min=1,max=65535"`
	// RefreshMinutes is the feed regeneration interval.
	RefreshMinutes int `yaml:"refreshMinutes" validate:"min=1"`
	// ReminderTrigger is an ISO 8601 duration (e.g. "-P1D") for birthday alarms.
	ReminderTrigger string `yaml:"reminderTrigger,omitempty"`
	// Timezone names the IANA location that decides "today". Empty means local.
	Timezone string `yaml:"timezone,omitempty"`
	// Session selects where the login survives between runs: the OS
	// keyring, or a file next to the data for hosts without one.
	Session string `yaml:"session" validate:"oneof=keyring file"`
}

var validate = validator.New()

// DefaultSettings returns the settings used when no file exists.
// dir is the application config directory.
func DefaultSettings(dir string) Settings {
	return Settings{
		DataDir:        filepath.Join(dir, DataDirName),
		Language:       DefaultLanguage,
		CountryCode:    DefaultCountryCode,
		Port:           DefaultPort,
		RefreshMinutes: DefaultRefreshMin,
		Session:        SessionKeyring,
	}
}

// AppConfigDir returns the per-user application directory, creating it if needed.
func AppConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrConfigDir, err)
	}
	dir := filepath.Join(base, AppID)
	if err := os.MkdirAll(dir, DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", ErrCreateDir, err)
	}
	return dir, nil
}

// LoadSettings reads path on top of the defaults and validates the result.
// A missing file yields the defaults.
func LoadSettings(path string, defaults Settings) (Settings, error) {
	cfg := defaults

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug(MsgSettingsMissing,
			LogKeyComponent, CompSettings,
			LogKeyPath, path)
		return cfg, ValidateSettings(&cfg)
	}
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", ErrSettingsRead, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", ErrSettingsParse, err)
	}

	if err := ValidateSettings(&cfg); err != nil {
		return Settings{}, err
	}
	return cfg, nil
}

// ValidateSettings runs struct validation and checks the language tag,
// reminder trigger and timezone.
func ValidateSettings(cfg *Settings) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("%s: %w", ErrSettingsInvalid, err)
	}
	if _, err := language.Parse(cfg.Language); err != nil {
		return fmt.Errorf("%s %q: %w", ErrLanguage, cfg.Language, err)
	}
	if cfg.ReminderTrigger != "" {
		if err := checkTrigger(cfg.ReminderTrigger); err != nil {
			return err
		}
	}
	if cfg.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Timezone); err != nil {
			return fmt.Errorf("%s: %w", ErrSettingsInvalid, err)
		}
	}
	return nil
}

// checkTrigger parses value the way the feed writer will emit it.
func checkTrigger(value string) error {
	prop := ical.NewProp(PropTrigger)
	prop.Value = value
	if _, err := prop.Duration(); err != nil {
		return fmt.Errorf("%s %q: %w", ErrTrigger, value, err)
	}
	return nil
}

// Location resolves Timezone, falling back to time.Local.
func (s Settings) Location() *time.Location {
	if s.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// RefreshInterval converts RefreshMinutes to a duration.
func (s Settings) RefreshInterval() time.Duration {
	if s.RefreshMinutes <= 0 {
		return DefaultRefreshMin * time.Minute
	}
	return time.Duration(s.RefreshMinutes) * time.Minute
}

// PortString renders Port for the feed server.
func (s Settings) PortString() string {
	return strconv.Itoa(s.Port)
}
