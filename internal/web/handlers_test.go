package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hivemindhq/hivemind/internal/auth"
	"github.com/hivemindhq/hivemind/internal/logging"
	"github.com/hivemindhq/hivemind/internal/models"
	"github.com/hivemindhq/hivemind/internal/secrets"
	"github.com/hivemindhq/hivemind/internal/storage/memory"
	"github.com/hivemindhq/hivemind/internal/web/view"
)

const testPassword = "Password1!"

type testEnv struct {
	store    *memory.Store
	sessions *auth.Sessions
	clock    *clockwork.FakeClock
	hasher   secrets.Hasher
	mux      *http.ServeMux
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	views, err := view.New()
	require.NoError(t, err)

	clock := clockwork.NewFakeClock()
	sessions := auth.NewSessions("test-secret", "hivemind", time.Hour, clock)
	hasher := secrets.NewBcryptHasher(bcrypt.MinCost)
	store := memory.New()

	mux := http.NewServeMux()
	New(store, sessions, hasher, hasher, views, logging.NewNopLogger(), clock).Register(mux)

	return &testEnv{
		store:    store,
		sessions: sessions,
		clock:    clock,
		hasher:   hasher,
		mux:      mux,
	}
}

// seedAccount persists an account with the shared test password.
func (e *testEnv) seedAccount(t *testing.T, username string, role models.Role, status models.Status) models.Account {
	t.Helper()

	account := models.Account{
		Username: username,
		Forename: "Test",
		Surname:  "User",
		Address:  "1 Test Lane",
		Role:     role,
		Status:   status,
	}
	if role == models.RoleObserver {
		account.Observer = &models.ObserverProfile{
			CardName:               "TEST USER",
			CardType:               models.CardVisa,
			NotificationPreference: models.NotifyEmail,
		}
	}
	require.NoError(t, account.SetPassword(e.hasher, testPassword))

	created, err := e.store.CreateAccount(context.Background(), account)
	require.NoError(t, err)
	return created
}

// sessionCookie issues a valid session cookie for the account.
func (e *testEnv) sessionCookie(t *testing.T, account models.Account) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, e.sessions.Issue(rec, &account))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func (e *testEnv) get(target string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) post(target string, cookie *http.Cookie, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func sessionCookieFrom(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookie {
			return c
		}
	}
	return nil
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get("/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["uptime"])
}

func TestHomeAnonymous(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get("/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Log in")
}

func TestSecuredRoutesRedirectAnonymous(t *testing.T) {
	env := newTestEnv(t)

	for _, target := range []string{
		"/observation/dashboard",
		"/admin/dashboard",
		"/account",
		"/messages",
	} {
		rec := env.get(target, nil)
		assert.Equal(t, http.StatusFound, rec.Code, target)
		assert.Equal(t, "/login", rec.Header().Get("Location"), target)
	}
}

func TestRoleGate(t *testing.T) {
	env := newTestEnv(t)
	observer := env.seedAccount(t, "observer@example.com", models.RoleObserver, models.StatusActive)
	support := env.seedAccount(t, "support@example.com", models.RoleSupport, models.StatusActive)

	rec := env.get("/admin/dashboard", env.sessionCookie(t, observer))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = env.get("/observation/dashboard", env.sessionCookie(t, support))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

// A status change takes effect on the next request; the session itself
// survives.
func TestStatusChangeAppliesMidSession(t *testing.T) {
	env := newTestEnv(t)
	observer := env.seedAccount(t, "observer@example.com", models.RoleObserver, models.StatusActive)
	cookie := env.sessionCookie(t, observer)

	form := url.Values{
		"date": {"20240115"}, "time": {"10:30:00"}, "timeZoneOffset": {"+00:00"},
		"w3w": {"filled.count.soap"}, "latitude": {"51.5"}, "longitude": {"-0.1"},
		"freeSpacePathLoss": {"92.4"}, "bitErrorRate": {"0.001"}, "temperature": {"4.5"},
		"humidity": {"80"}, "snowfall": {"0"}, "windSpeed": {"12"},
		"windDirection": {"270"}, "precipitation": {"1.2"}, "haze": {"10"},
	}
	rec := env.post("/observation/new", cookie, form)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	require.NoError(t, env.store.UpdateAccountStatus(context.Background(), observer.ID, models.StatusSuspended))

	rec = env.post("/observation/new", cookie, form)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "suspended")
}
