package notifier

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/ieq-connect/internal/config"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator renders message templates in one language, falling back to
// the default language for missing keys.
type Translator struct {
	Lang      string
	Languages []string

	localizer *i18n.Localizer
}

// NewTranslator loads the embedded locale files. A lang that is not a
// valid BCP 47 tag is an error; a valid tag without a locale file falls
// back to the default language.
func NewTranslator(lang string) (*Translator, error) {
	if lang == "" {
		lang = config.DefaultLanguage
	}
	if _, err := language.Parse(lang); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrLanguage, err)
	}

	bundle := i18n.NewBundle(language.MustParse(config.DefaultLanguage))
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrLocalesAccess, err)
	}

	var detected []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, config.FileExtJSON) {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name)
			continue
		}

		code := strings.TrimSuffix(strings.TrimPrefix(name, "active."), config.FileExtJSON)
		if code == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			return nil, fmt.Errorf("%s %s: %w", config.ErrLocaleLoad, name, err)
		}
		detected = append(detected, code)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, code)
	}

	return &Translator{
		Lang:      lang,
		Languages: detected,
		localizer: i18n.NewLocalizer(bundle, lang, config.DefaultLanguage),
	}, nil
}

// Msg translates key. A missing key is logged and returned as is.
func (t *Translator) Msg(key string, data map[string]any) string {
	msg, err := t.localize(key, data)
	if err != nil {
		return key
	}
	return msg
}

func (t *Translator) localize(key string, data map[string]any) (string, error) {
	if t == nil || t.localizer == nil {
		return "", errors.New(config.ErrLocNotInit)
	}
	msg, err := t.localizer.Localize(&i18n.LocalizeConfig{MessageID: key, TemplateData: data})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err)
		return "", err
	}
	return msg, nil
}

// SummaryFormatter localises birthday event titles for the calendar feed.
// Age 0 is the day of birth.
func (t *Translator) SummaryFormatter() func(name string, age int, yearKnown bool) string {
	return func(name string, age int, yearKnown bool) string {
		data := map[string]any{"Name": name, "Age": age}
		key := config.TKeyEvtSummary
		switch {
		case yearKnown && age == 0:
			key = config.TKeyEvtSummaryBirth
		case yearKnown:
			key = config.TKeyEvtSummaryAge
		}

		if msg, err := t.localize(key, data); err == nil && msg != "" {
			return msg
		}
		switch key {
		case config.TKeyEvtSummaryBirth:
			return fmt.Sprintf(config.FallbackSummaryBirth, name)
		case config.TKeyEvtSummaryAge:
			return fmt.Sprintf(config.FallbackSummaryAge, name, age)
		}
		return fmt.Sprintf(config.FallbackSummary, name)
	}
}
