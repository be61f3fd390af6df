// Package auth binds request identities to accounts (sessions) and decides
// what a resolved account may do (gate).
package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"

	"github.com/hivemindhq/hivemind/internal/models"
)

// SessionCookie is the cookie carrying the signed session claims.
const SessionCookie = "hivemind_session"

// Sessions issues and resolves signed session cookies. The cookie payload is
// an HS256 JWT holding only the account id; the account itself is reloaded on
// every request so status changes take effect immediately.
type Sessions struct {
	secret []byte
	issuer string
	ttl    time.Duration
	clock  clockwork.Clock
}

// NewSessions creates a session manager with the provided signing secret,
// issuer, and lifetime.
func NewSessions(secret, issuer string, ttl time.Duration, clock clockwork.Clock) *Sessions {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Sessions{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		clock:  clock,
	}
}

// Issue binds the account to the response's session cookie.
func (s *Sessions) Issue(w http.ResponseWriter, account *models.Account) error {
	now := s.clock.Now()
	claims := jwt.MapClaims{
		"iss": s.issuer,
		"sub": account.ID,
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": now.Add(s.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("sign session token: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    signed,
		Path:     "/",
		Expires:  now.Add(s.ttl),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Resolve maps the request to the account id bound to its session cookie.
// Any missing, malformed, expired, or foreign-issued cookie resolves to
// anonymous (ok = false).
func (s *Sessions) Resolve(r *http.Request) (accountID string, ok bool) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (any, error) {
		if _, isHMAC := t.Method.(*jwt.SigningMethodHMAC); !isHMAC {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil || !token.Valid {
		return "", false
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", false
	}
	return sub, true
}

// Clear ends the session by expiring the cookie.
func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
