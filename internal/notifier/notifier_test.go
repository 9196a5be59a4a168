package notifier_test

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/ieq-connect/internal/config"
	"github.com/tartampluch/ieq-connect/internal/model"
	"github.com/tartampluch/ieq-connect/internal/notifier"
)

type MockOpener struct {
	mock.Mock
}

func (m *MockOpener) Open(ctx context.Context, link string) error {
	return m.Called(ctx, link).Error(0)
}

func newWhatsApp(t *testing.T, lang string, opener notifier.LinkOpener) *notifier.WhatsApp {
	t.Helper()
	tr, err := notifier.NewTranslator(lang)
	require.NoError(t, err)
	return &notifier.WhatsApp{Translator: tr, Opener: opener, CountryCode: config.DefaultCountryCode}
}

// decodeText returns the phone part and the decoded message of a wa.me link.
func decodeText(t *testing.T, link string) (string, string) {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "wa.me", u.Host)
	return strings.TrimPrefix(u.Path, "/"), u.Query().Get(config.WhatsAppTextKey)
}

func TestFormatPhone(t *testing.T) {
	assert.Equal(t, "11987654321", notifier.FormatPhone("(11) 98765-4321"))
	assert.Equal(t, "", notifier.FormatPhone("n/a"))
}

func TestBuildLink(t *testing.T) {
	link, err := notifier.BuildLink("55", "(11) 98765-4321", "Olá, *Ana* & família + 1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "https://wa.me/5511987654321?text="))
	assert.NotContains(t, link, "+")
	assert.Contains(t, link, "%20")

	phone, text := decodeText(t, link)
	assert.Equal(t, "5511987654321", phone)
	assert.Equal(t, "Olá, *Ana* & família + 1", text)

	_, err = notifier.BuildLink("55", "---", "x")
	assert.ErrorIs(t, err, notifier.ErrPhoneEmpty)
}

func TestWelcomeLink_Agenda(t *testing.T) {
	w := newWhatsApp(t, "pt-BR", nil)
	p := model.Person{ID: "v1", Name: "Ana", Phone: "11 90000-0000"}
	events := []model.ChurchEvent{
		{Title: "Culto de Ensino", DayOfWeek: "Quarta-feira", Time: "20:00", Description: "Palavra"},
		{Title: "Célula", DayOfWeek: "Quinta-feira", Time: "19:00", SecondaryTime: "20:30", Description: "Casas"},
	}

	link, err := w.WelcomeLink(p, events)
	require.NoError(t, err)
	_, text := decodeText(t, link)

	assert.True(t, strings.HasPrefix(text, "Paz do Senhor, *Ana*!"))
	assert.Contains(t, text, "📍 *Culto de Ensino*\n📅 Quarta-feira às 20:00\n_Palavra_\n\n📍 *Célula*")
	assert.Contains(t, text, "Quinta-feira às 19:00 e 20:30")
}

func TestWelcomeLink_NoEvents(t *testing.T) {
	w := newWhatsApp(t, "en", nil)
	link, err := w.WelcomeLink(model.Person{Name: "Ana", Phone: "1190000"}, nil)
	require.NoError(t, err)
	_, text := decodeText(t, link)
	assert.Contains(t, text, "Follow our social networks for upcoming events!")
}

func TestSendBirthday_Opens(t *testing.T) {
	opener := new(MockOpener)
	w := newWhatsApp(t, "pt-BR", opener)
	p := model.Person{ID: "m1", Name: "João", Phone: "+55 (21) 99999-0000"}

	opener.On("Open", mock.Anything, mock.MatchedBy(func(link string) bool {
		return strings.HasPrefix(link, "https://wa.me/555521999990000?")
	})).Return(nil).Once()

	require.NoError(t, w.SendBirthday(context.Background(), p))
	opener.AssertExpectations(t)
}

func TestSend_Errors(t *testing.T) {
	opener := new(MockOpener)
	w := newWhatsApp(t, "pt-BR", opener)

	err := w.SendBirthday(context.Background(), model.Person{Name: "Sem Fone"})
	assert.ErrorIs(t, err, notifier.ErrPhoneEmpty)
	opener.AssertNotCalled(t, "Open", mock.Anything, mock.Anything)

	opener.On("Open", mock.Anything, mock.Anything).Return(errors.New("xdg-open missing"))
	err = w.SendWelcome(context.Background(), model.Person{Name: "Ana", Phone: "1"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrSendFailed)
}

func TestWriterOpener(t *testing.T) {
	var buf bytes.Buffer
	w := newWhatsApp(t, "pt-BR", notifier.WriterOpener{W: &buf})

	require.NoError(t, w.SendBirthday(context.Background(), model.Person{Name: "Ana", Phone: "11"}))
	assert.True(t, strings.HasPrefix(buf.String(), "https://wa.me/5511?text="))
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
}

// fakeHandler puts an xdg-open on PATH that records its argument after a
// delay, standing in for a browser that takes a moment to start.
func fakeHandler(t *testing.T) string {
	t.Helper()
	if runtime.GOOS != "linux" {
		t.Skip("fake URL handler is a shell script")
	}
	dir := t.TempDir()
	marker := filepath.Join(dir, "opened")
	script := "#!/bin/sh\nsleep 0.2\nprintf '%s' \"$1\" > " + marker + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.OpenCmdLinux), []byte(script), 0o755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return marker
}

func TestBrowserOpener_OutlivesCancelledContext(t *testing.T) {
	marker := fakeHandler(t)
	link := "https://wa.me/5511988887777?text=Ol%C3%A1"

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, notifier.BrowserOpener{}.Open(ctx, link))
	// The CLI cancels its context as soon as the command returns.
	cancel()

	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(marker)
		return err == nil && string(data) == link
	}, 3*time.Second, 20*time.Millisecond)
}

func TestBrowserOpener_CancelledBeforeOpen(t *testing.T) {
	marker := fakeHandler(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := notifier.BrowserOpener{}.Open(ctx, "https://wa.me/5511988887777")
	require.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), config.ErrOpenLink)

	time.Sleep(400 * time.Millisecond)
	_, statErr := os.Stat(marker)
	assert.ErrorIs(t, statErr, os.ErrNotExist, "nothing is launched for a cancelled context")
}
