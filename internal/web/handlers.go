// Package web owns the HTTP route handlers. Every handler resolves the caller
// through the session, runs the authorization gate, and renders through the
// view layer; no handler inspects markup or ambient request state.
package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/hivemindhq/hivemind/internal/auth"
	"github.com/hivemindhq/hivemind/internal/logging"
	"github.com/hivemindhq/hivemind/internal/models"
	"github.com/hivemindhq/hivemind/internal/secrets"
	"github.com/hivemindhq/hivemind/internal/storage"
	"github.com/hivemindhq/hivemind/internal/web/view"
)

// Handlers wires the route surface to sessions, the gate, and the stores.
type Handlers struct {
	store     storage.Store
	sessions  *auth.Sessions
	passwords secrets.Hasher
	cards     secrets.Hasher
	views     *view.Renderer
	log       logging.Logger
	clock     clockwork.Clock
	startedAt time.Time
}

// New constructs the handler set. passwords and cards may carry different
// cost factors; both must be one-way.
func New(store storage.Store, sessions *auth.Sessions, passwords, cards secrets.Hasher,
	views *view.Renderer, log logging.Logger, clock clockwork.Clock) *Handlers {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Handlers{
		store:     store,
		sessions:  sessions,
		passwords: passwords,
		cards:     cards,
		views:     views,
		log:       log,
		clock:     clock,
		startedAt: clock.Now(),
	}
}

// Register attaches every route to the mux.
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleHome)
	mux.HandleFunc("GET /health", h.handleHealth)

	mux.HandleFunc("GET /register", h.handleRegisterForm)
	mux.HandleFunc("POST /register", h.handleRegister)
	mux.HandleFunc("GET /login", h.handleLoginForm)
	mux.HandleFunc("POST /login", h.handleLogin)
	mux.HandleFunc("GET /logout", h.handleLogout)

	observer := auth.RequireRole(models.RoleObserver)
	mux.HandleFunc("GET /observation/dashboard", h.secured(h.handleObserverDashboard, observer))
	mux.HandleFunc("GET /observation/new", h.secured(h.handleObservationForm, observer))
	mux.HandleFunc("POST /observation/new", h.secured(h.handleObservationCreate, observer, auth.RequireActive))
	mux.HandleFunc("GET /observation/history", h.secured(h.handleObservationHistory, observer))
	mux.HandleFunc("GET /observation/{id}", h.secured(h.handleObservationView, observer))

	support := auth.RequireRole(models.RoleSupport)
	mux.HandleFunc("GET /admin/dashboard", h.secured(h.handleSupportDashboard, support))
	mux.HandleFunc("GET /admin/users", h.secured(h.handleSupportUsers, support))
	mux.HandleFunc("GET /admin/users/{id}", h.secured(h.handleSupportUserView, support))
	mux.HandleFunc("POST /admin/users/{id}", h.secured(h.handleSupportUserStatus, support))
	mux.HandleFunc("GET /admin/support/new", h.secured(h.handleNewSupportForm, support))
	mux.HandleFunc("POST /admin/support/new", h.secured(h.handleNewSupportCreate, support))

	mux.HandleFunc("GET /account", h.secured(h.handleAccount))
	mux.HandleFunc("POST /account", h.secured(h.handleAccountUpdate))
	mux.HandleFunc("GET /account/password", h.secured(h.handlePasswordForm))
	mux.HandleFunc("POST /account/password", h.secured(h.handlePasswordChange))

	mux.HandleFunc("GET /messages", h.secured(h.handleInbox))
	mux.HandleFunc("GET /messages/sent", h.secured(h.handleSent))
	mux.HandleFunc("GET /messages/new", h.secured(h.handleMessageForm))
	mux.HandleFunc("POST /messages/new", h.secured(h.handleMessageSend))
	mux.HandleFunc("GET /messages/{id}", h.secured(h.handleMessageView))
	mux.HandleFunc("GET /messages/{id}/reply", h.secured(h.handleReplyForm))
	mux.HandleFunc("POST /messages/{id}/reply", h.secured(h.handleReplySend))
}

// accountHandler is a handler that receives the resolved caller explicitly.
type accountHandler func(w http.ResponseWriter, r *http.Request, account *models.Account)

// secured resolves the caller and runs the gate: authenticated first, then
// the given checks in order. The first failing check decides the response.
func (h *Handlers) secured(fn accountHandler, checks ...auth.Check) http.HandlerFunc {
	all := append([]auth.Check{auth.Authenticated}, checks...)
	return func(w http.ResponseWriter, r *http.Request) {
		account := h.currentAccount(r)
		verdict := auth.Evaluate(account, all...)
		switch {
		case verdict.Allowed:
			fn(w, r, account)
		case verdict.RedirectTo != "":
			http.Redirect(w, r, verdict.RedirectTo, http.StatusFound)
		default:
			h.render(w, r, "auth/account-status", view.Data{
				"User":   account,
				"Status": verdict.Notice,
			})
		}
	}
}

// currentAccount maps the request's session to its account, or nil for
// anonymous. The account is reloaded every request so status changes take
// effect without ending the session.
func (h *Handlers) currentAccount(r *http.Request) *models.Account {
	id, ok := h.sessions.Resolve(r)
	if !ok {
		return nil
	}
	account, err := h.store.FindAccountByID(r.Context(), id)
	if err != nil {
		return nil
	}
	return &account
}

// render writes the named view; template faults surface as a bare 500 and a
// log line, never as partial output.
func (h *Handlers) render(w http.ResponseWriter, r *http.Request, name string, data view.Data) {
	if err := h.views.Render(w, name, data); err != nil {
		h.log.Error(r.Context(), "render failed", "view", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// seeOther is the redirect used after a successful state-changing POST.
func seeOther(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handlers) handleHome(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "index", view.Data{"User": h.currentAccount(r)})
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"uptime": h.clock.Since(h.startedAt).Truncate(time.Second).String(),
	}); err != nil {
		h.log.Error(r.Context(), "health encode failed", "error", err)
	}
}
