package web

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hivemindhq/hivemind/internal/models"
)

func registrationForm() url.Values {
	return url.Values{
		"username":               {"new.observer@example.com"},
		"password":               {testPassword},
		"confirmPassword":        {testPassword},
		"forename":               {"Nia"},
		"surname":                {"Okafor"},
		"address":                {"12 Summit Road"},
		"cardName":               {"N OKAFOR"},
		"cardType":               {"Visa"},
		"cardNumber":             {"4111 1111 1111 1111"},
		"cardCVV":                {"123"},
		"notificationPreference": {"email"},
	}
}

func TestRegisterObserver(t *testing.T) {
	env := newTestEnv(t)

	rec := env.post("/register", nil, registrationForm())
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/observation/dashboard", rec.Header().Get("Location"))

	cookie := sessionCookieFrom(rec)
	require.NotNil(t, cookie, "successful registration binds a session")
	assert.NotEmpty(t, cookie.Value)

	account, err := env.store.FindAccountByUsername(context.Background(), "new.observer@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleObserver, account.Role)
	assert.Equal(t, models.StatusActive, account.Status)
	require.NotNil(t, account.Observer)
	assert.Equal(t, "1111", account.Observer.CardNumberLast4)
	assert.NotContains(t, account.Observer.CardNumberHash, "4111111111111111")
	assert.NotEqual(t, "123", account.Observer.CardCVVHash)
	assert.NotEqual(t, testPassword, account.PasswordHash)
}

func TestRegisterRejectsBadCard(t *testing.T) {
	env := newTestEnv(t)

	form := registrationForm()
	form.Set("cardNumber", "4111111111111112") // fails the checksum

	rec := env.post("/register", nil, form)
	assert.Equal(t, http.StatusOK, rec.Code, "validation failures re-render the form")
	assert.Contains(t, rec.Body.String(), "credit card")
	assert.Nil(t, sessionCookieFrom(rec))

	_, err := env.store.FindAccountByUsername(context.Background(), "new.observer@example.com")
	assert.Error(t, err, "nothing is persisted on a validation failure")
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	env := newTestEnv(t)

	form := registrationForm()
	form.Set("password", "alllowercase")
	form.Set("confirmPassword", "alllowercase")

	rec := env.post("/register", nil, form)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Password must be")
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "new.observer@example.com", models.RoleObserver, models.StatusActive)

	rec := env.post("/register", nil, registrationForm())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "already exists")
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "observer@example.com", models.RoleObserver, models.StatusActive)
	env.seedAccount(t, "support@example.com", models.RoleSupport, models.StatusActive)

	rec := env.post("/login", nil, url.Values{
		"username": {"observer@example.com"},
		"password": {testPassword},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/observation/dashboard", rec.Header().Get("Location"))
	assert.NotNil(t, sessionCookieFrom(rec))

	rec = env.post("/login", nil, url.Values{
		"username": {"support@example.com"},
		"password": {testPassword},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/dashboard", rec.Header().Get("Location"))
}

func TestLoginFailure(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "observer@example.com", models.RoleObserver, models.StatusActive)

	for name, form := range map[string]url.Values{
		"wrong password":   {"username": {"observer@example.com"}, "password": {"Wrong-Pass1!"}},
		"unknown username": {"username": {"nobody@example.com"}, "password": {testPassword}},
	} {
		rec := env.post("/login", nil, form)
		assert.Equal(t, http.StatusSeeOther, rec.Code, name)
		assert.Equal(t, "/login", rec.Header().Get("Location"), name)
		assert.Nil(t, sessionCookieFrom(rec), name)
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	observer := env.seedAccount(t, "observer@example.com", models.RoleObserver, models.StatusActive)

	rec := env.get("/logout", env.sessionCookie(t, observer))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	cookie := sessionCookieFrom(rec)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Equal(t, -1, cookie.MaxAge)
}
