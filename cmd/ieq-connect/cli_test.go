package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/ieq-connect/internal/auth"
	"github.com/tartampluch/ieq-connect/internal/config"
	"github.com/tartampluch/ieq-connect/internal/engine"
	"github.com/tartampluch/ieq-connect/internal/model"
	"github.com/tartampluch/ieq-connect/internal/server"
	"github.com/tartampluch/ieq-connect/internal/store"
)

// MockClock pins "now" for deterministic output.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time { return m.CurrentTime }

// recordingOpener collects the links the notifier would open.
type recordingOpener struct {
	links []string
}

func (r *recordingOpener) Open(_ context.Context, link string) error {
	r.links = append(r.links, link)
	return nil
}

type harness struct {
	app    *App
	out    *bytes.Buffer
	opener *recordingOpener
}

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func newHarness(t *testing.T) *harness {
	t.Helper()
	settings := config.DefaultSettings(t.TempDir())
	out := &bytes.Buffer{}
	opener := &recordingOpener{}
	app := &App{
		Out:      out,
		Settings: &settings,
		Backend:  store.NewMemoryBackend(),
		Session:  &store.MemorySession{},
		Clock:    MockClock{CurrentTime: testNow},
		Opener:   opener,
	}
	return &harness{app: app, out: out, opener: opener}
}

// run executes one command line with stdin as the prompt input.
func (h *harness) run(stdin string, args ...string) (string, error) {
	h.out.Reset()
	h.app.In = strings.NewReader(stdin)
	h.app.reader = nil

	cmd := newRootCmd(h.app)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return h.out.String(), err
}

// loginAdmin logs the seed admin in and clears the forced password change.
func (h *harness) loginAdmin(t *testing.T) {
	t.Helper()
	_, err := h.run("", "login", "admin", "--password", config.DefaultAdminPassword)
	require.NoError(t, err)
	_, err = h.run("", "passwd", "--password", "s3cret")
	require.NoError(t, err)
}

func (h *harness) seed(t *testing.T, kind model.Kind, people ...model.Person) {
	t.Helper()
	for _, p := range people {
		require.NoError(t, h.app.Store.People(kind).Append(p))
	}
}

func newPerson(id, name, birth string) model.Person {
	return model.Person{ID: id, Name: name, Phone: "(11) 98888-7777", BirthDate: birth, RegistrationDate: "2024-03-01T12:00:00Z"}
}

func TestVersion_RunsLoggedOut(t *testing.T) {
	h := newHarness(t)
	out, err := h.run("", "version")
	require.NoError(t, err)
	assert.Contains(t, out, config.AppName)
	assert.Contains(t, out, config.Version)
}

func TestFileSession_PersistsAcrossInvocations(t *testing.T) {
	settings := config.DefaultSettings(t.TempDir())
	settings.Session = config.SessionFile

	// Each invocation wires a fresh App over the same data directory.
	invoke := func(args ...string) (string, error) {
		out := &bytes.Buffer{}
		app := &App{
			In:       strings.NewReader(""),
			Out:      out,
			Settings: &settings,
			Clock:    MockClock{CurrentTime: testNow},
			Opener:   &recordingOpener{},
		}
		cmd := newRootCmd(app)
		cmd.SetArgs(args)
		err := cmd.Execute()
		if err == nil {
			assert.IsType(t, &store.BackendSession{}, app.Session)
		}
		return out.String(), err
	}

	_, err := invoke("login", "admin", "--password", config.DefaultAdminPassword)
	require.NoError(t, err)
	out, err := invoke("whoami")
	require.NoError(t, err)
	assert.Contains(t, out, config.AdminUsername)

	_, err = os.Stat(filepath.Join(settings.DataDir, config.KeySession+config.FileExtJSON))
	require.NoError(t, err)

	_, err = invoke("logout")
	require.NoError(t, err)
	_, err = invoke("whoami")
	assert.ErrorIs(t, err, auth.ErrNotLoggedIn)
}

func TestSessionGate(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("", "visitors", "list")
	assert.ErrorIs(t, err, auth.ErrNotLoggedIn)

	_, err = h.run("", "login", "admin", "--password", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	out, err := h.run("", "login", "admin", "--password", config.DefaultAdminPassword)
	require.NoError(t, err)
	assert.Contains(t, out, config.AdminName)

	// Only passwd, whoami and logout run until the password is changed.
	_, err = h.run("", "visitors", "list")
	assert.ErrorIs(t, err, auth.ErrMustChangePassword)
	out, err = h.run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, config.AdminUsername)

	_, err = h.run("abc\nabc\n", "passwd")
	assert.ErrorIs(t, err, auth.ErrPasswordTooShort)
	_, err = h.run("abcd\nabce\n", "passwd")
	assert.ErrorIs(t, err, auth.ErrPasswordMismatch)
	_, err = h.run("abcd\nabcd\n", "passwd")
	require.NoError(t, err)

	_, err = h.run("", "visitors", "list")
	require.NoError(t, err)

	_, err = h.run("", "logout")
	require.NoError(t, err)
	_, err = h.run("", "visitors", "list")
	assert.ErrorIs(t, err, auth.ErrNotLoggedIn)
}

func TestLogin_PromptsForPassword(t *testing.T) {
	h := newHarness(t)
	out, err := h.run(config.DefaultAdminPassword+"\n", "login", "ADMIN")
	require.NoError(t, err)
	assert.Contains(t, out, config.MsgPromptPassword)
	assert.Contains(t, out, h.app.Translator.Msg(config.TKeyLblMustChangePass, nil))
}

func TestVisitorsAdd_OffersWelcome(t *testing.T) {
	h := newHarness(t)
	h.loginAdmin(t)
	add := []string{"visitors", "add", "--name", "Ana", "--phone", "(11) 98888-7777", "--birth-date", "1990-03-15"}

	_, err := h.run("n\n", add...)
	require.NoError(t, err)
	assert.Empty(t, h.opener.links)

	_, err = h.run("s\n", add...)
	require.NoError(t, err)
	require.Len(t, h.opener.links, 1)
	assert.True(t, strings.HasPrefix(h.opener.links[0], config.WhatsAppBaseURL+"5511988887777?"))

	visitors, err := h.app.Store.Visitors.All()
	require.NoError(t, err)
	require.Len(t, visitors, 2)
	assert.Empty(t, visitors[0].LastWelcomeSentAt)
	assert.Equal(t, "2024-03-15", visitors[1].LastWelcomeSentAt)
	assert.Equal(t, testNow.Format(time.RFC3339), visitors[1].RegistrationDate)
}

func TestVisitorsAdd_RejectsInvalidForm(t *testing.T) {
	h := newHarness(t)
	h.loginAdmin(t)

	_, err := h.run("", "members", "add", "--name", "Ana", "--phone", "1199", "--birth-date", "15/03/1990")
	assert.ErrorIs(t, err, model.ErrValidation)

	members, err := h.app.Store.Members.All()
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestMembersEditAndDelete(t *testing.T) {
	h := newHarness(t)
	h.loginAdmin(t)
	h.seed(t, model.KindMember, newPerson("m1", "João", "1985-07-01"))

	_, err := h.run("", "members", "edit", "m1", "--phone", "11 91234-5678")
	require.NoError(t, err)
	m, ok, err := h.app.Store.Members.Find("m1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "11 91234-5678", m.Phone)
	assert.Equal(t, "João", m.Name)

	_, err = h.run("", "members", "edit", "nope", "--phone", "1")
	assert.ErrorIs(t, err, errNotFound)

	out, err := h.run("n\n", "members", "delete", "m1")
	require.NoError(t, err)
	assert.Contains(t, out, config.MsgAborted)
	ok, err = h.app.Store.Members.Contains("m1")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = h.run("", "members", "delete", "m1", "--yes")
	require.NoError(t, err)
	ok, err = h.app.Store.Members.Contains("m1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvents(t *testing.T) {
	h := newHarness(t)
	h.loginAdmin(t)

	_, err := h.run("", "events", "add", "--title", "Vigília", "--day", "Funday", "--time", "22:00")
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.ErrorIs(t, err, errUnknownWeekday)

	out, err := h.run("", "events", "add", "--title", "Vigília", "--day", "Sexta-feira", "--time", "22:00")
	require.NoError(t, err)
	id := strings.TrimSpace(strings.TrimPrefix(out, "Created "))

	_, err = h.run("", "events", "edit", id, "--secondary-time", "23:30")
	require.NoError(t, err)

	out, err = h.run("", "events", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Culto de Ensino")
	assert.Contains(t, out, "22:00 / 23:30")

	_, err = h.run("", "events", "delete", id, "-y")
	require.NoError(t, err)
	events, err := h.app.Store.Events.All()
	require.NoError(t, err)
	assert.Len(t, events, len(model.InitialEvents()))
}

func TestBirthdays(t *testing.T) {
	h := newHarness(t)
	h.loginAdmin(t)
	h.seed(t, model.KindMember, newPerson("m1", "Marta", "1980-03-20"), newPerson("m2", "Paulo", "1970-08-01"))
	h.seed(t, model.KindVisitor, newPerson("v1", "Vera", "1990-03-15"))

	out, err := h.run("", "birthdays")
	require.NoError(t, err)
	assert.Contains(t, out, "Vera")
	assert.Contains(t, out, "Marta")
	assert.NotContains(t, out, "Paulo")
	assert.Less(t, strings.Index(out, "Vera"), strings.Index(out, "Marta"))

	out, err = h.run("", "birthdays", "--today")
	require.NoError(t, err)
	assert.Contains(t, out, "Vera")
	assert.Contains(t, out, h.app.Translator.Msg(config.TKeyLblVisitor, nil))
	assert.NotContains(t, out, "Marta")

	out, err = h.run("", "birthdays", "--month", "8", "--kind", "member")
	require.NoError(t, err)
	assert.Contains(t, out, "Paulo")

	out, err = h.run("", "birthdays", "--month", "8", "--kind", "visitor")
	require.NoError(t, err)
	assert.Contains(t, out, h.app.Translator.Msg(config.TKeyLblNoBirthdays, nil))

	_, err = h.run("", "birthdays", "--today", "--next7")
	assert.ErrorIs(t, err, errFilterConflict)
	_, err = h.run("", "birthdays", "--month", "13")
	assert.ErrorIs(t, err, errMonthRange)
}

func TestBirthdayView(t *testing.T) {
	tests := []struct {
		name     string
		today    bool
		next7    bool
		month    int
		monthSet bool
		want     engine.View
	}{
		{name: "default is current month", want: engine.View{Mode: engine.ModeMonth, Month: time.March}},
		{name: "today", today: true, want: engine.View{Mode: engine.ModeToday}},
		{name: "next7", next7: true, want: engine.View{Mode: engine.ModeNext7}},
		{name: "month", month: 12, monthSet: true, want: engine.View{Mode: engine.ModeMonth, Month: time.December}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := birthdayView(tt.today, tt.next7, tt.month, tt.monthSet, testNow)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := birthdayView(false, false, 0, true, testNow)
	assert.ErrorIs(t, err, errMonthRange)
}

func TestWish_PrintAndSameDayGate(t *testing.T) {
	h := newHarness(t)
	h.loginAdmin(t)
	h.seed(t, model.KindMember, newPerson("m1", "Marta", "1980-03-15"))

	out, err := h.run("", "wish", "m1", "--print")
	require.NoError(t, err)
	assert.Contains(t, out, config.WhatsAppBaseURL+"5511988887777?text=")
	assert.Contains(t, out, h.app.Translator.Msg(config.TKeyLblSentBirthday, nil))
	assert.Empty(t, h.opener.links)

	m, _, err := h.app.Store.Members.Find("m1")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", m.LastBirthdayWishedAt)

	out, err = h.run("", "wish", "m1")
	require.NoError(t, err)
	assert.Contains(t, out, h.app.Translator.Msg(config.TKeyLblAlreadySent, nil))
	assert.Empty(t, h.opener.links)

	_, err = h.run("", "welcome", "ghost")
	assert.ErrorIs(t, err, engine.ErrUnknownPerson)
}

func TestUsers_AdminOnly(t *testing.T) {
	h := newHarness(t)
	h.loginAdmin(t)

	_, err := h.run("", "users", "add", "--name", "Maria", "--username", "maria", "--password", "pass1")
	require.NoError(t, err)
	out, err := h.run("", "users", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "maria")
	assert.Contains(t, out, string(model.RoleMember))

	_, err = h.run("", "users", "delete", config.AdminID, "--yes")
	assert.ErrorIs(t, err, auth.ErrAdminUndeletable)

	_, err = h.run("", "login", "maria", "--password", "pass1")
	require.NoError(t, err)
	_, err = h.run("", "users", "list")
	assert.ErrorIs(t, err, auth.ErrAdminRequired)
	_, err = h.run("", "visitors", "list")
	require.NoError(t, err)
}

func TestVCardExportImport(t *testing.T) {
	src := newHarness(t)
	src.loginAdmin(t)
	src.seed(t, model.KindMember, newPerson("m1", "Marta Souza", "1980-03-20"))

	path := filepath.Join(t.TempDir(), "members.vcf")
	_, err := src.run("", "export", "vcard", "--kind", "member", "-o", path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Marta Souza")

	dst := newHarness(t)
	dst.loginAdmin(t)
	out, err := dst.run("", "import", "vcard", path, "--kind", "member")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1, skipped 0")

	m, ok, err := dst.app.Store.Members.Find("m1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1980-03-20", m.BirthDate)

	out, err = dst.run("", "import", "vcard", path, "--kind", "member")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 0, skipped 1")
}

func TestDashboard(t *testing.T) {
	h := newHarness(t)
	h.loginAdmin(t)
	h.seed(t, model.KindMember, newPerson("m1", "Marta", "1980-03-15"))
	h.seed(t, model.KindVisitor, newPerson("v1", "Vera", "1990-01-01"))

	out, err := h.run("", "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Members: 1  Visitors: 1  Events: 4  New visitors this month: 1")
	assert.Contains(t, out, "Vera")
	assert.Contains(t, out, "Marta")
}

func TestNewRefresher_ServesFeeds(t *testing.T) {
	h := newHarness(t)
	h.loginAdmin(t)
	h.seed(t, model.KindMember, newPerson("m1", "Marta", "1980-03-15"))

	srv := server.NewFeedServer(h.app.Settings.PortString())
	require.NoError(t, h.app.newRefresher(srv).Refresh(context.Background()))

	for _, route := range []string{config.RouteAgenda, config.RouteBirthdays} {
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, route, nil))
		assert.Equal(t, http.StatusOK, rec.Code, route)
		assert.Contains(t, rec.Body.String(), "BEGIN:VCALENDAR")
	}
}
