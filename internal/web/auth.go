package web

import (
	"errors"
	"net/http"

	"github.com/hivemindhq/hivemind/internal/models"
	"github.com/hivemindhq/hivemind/internal/storage"
	"github.com/hivemindhq/hivemind/internal/validate"
	"github.com/hivemindhq/hivemind/internal/web/view"
)

func (h *Handlers) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "auth/register", view.Data{"User": h.currentAccount(r)})
}

// handleRegister creates an observer account from the public form. Support
// accounts are never self-service; they come from /admin/support/new.
func (h *Handlers) handleRegister(w http.ResponseWriter, r *http.Request) {
	form := formValues(r)

	var errs formErrors
	if !validate.Email(form["username"]) {
		errs.add("Please enter a valid email address.")
	}
	if !validate.StrongPassword(form["password"]) {
		errs.add("Password must be at least 8 characters and include uppercase, lowercase, number, and special character.")
	}
	if form["password"] != form["confirmPassword"] {
		errs.add("Passwords do not match.")
	}
	if form["forename"] == "" || form["surname"] == "" || form["address"] == "" {
		errs.add("Forename, surname, and address are required.")
	}

	cardNumber := cleanCardNumber(form["cardNumber"])
	if !validate.CreditCard(cardNumber) {
		errs.add("Please enter a valid 16-digit credit card number.")
	}
	if !isThreeDigitCVV(form["cardCVV"]) {
		errs.add("CVV must be a 3-digit number.")
	}
	if form["cardName"] == "" {
		errs.add("Name on card is required.")
	}
	cardType := models.CardType(form["cardType"])
	if cardType != models.CardVisa && cardType != models.CardMastercard {
		errs.add("Card type must be Visa or Mastercard.")
	}
	notify := models.NotificationPreference(form["notificationPreference"])
	if notify != models.NotifyText && notify != models.NotifyEmail {
		errs.add("Notification preference must be text or email.")
	}

	if !errs.ok() {
		h.render(w, r, "auth/register", view.Data{"Error": errs.summary(), "Form": form})
		return
	}

	account := models.Account{
		Username: form["username"],
		Forename: form["forename"],
		Surname:  form["surname"],
		Address:  form["address"],
		Role:     models.RoleObserver,
		Status:   models.StatusActive,
		Observer: &models.ObserverProfile{
			CardName:               form["cardName"],
			CardType:               cardType,
			NotificationPreference: notify,
		},
	}
	if err := account.SetPassword(h.passwords, form["password"]); err != nil {
		h.log.Error(r.Context(), "hash password", "error", err)
		h.render(w, r, "auth/register", view.Data{"Error": "Registration failed. Please try again.", "Form": form})
		return
	}
	account.SetCardDetails(h.cards, cardNumber, form["cardCVV"])

	created, err := h.store.CreateAccount(r.Context(), account)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			h.render(w, r, "auth/register", view.Data{"Error": "An account with that email already exists.", "Form": form})
			return
		}
		h.log.Error(r.Context(), "create account", "error", err)
		h.render(w, r, "auth/register", view.Data{"Error": "Registration failed. Please try again.", "Form": form})
		return
	}

	if err := h.sessions.Issue(w, &created); err != nil {
		h.log.Error(r.Context(), "issue session", "error", err)
		seeOther(w, r, "/login")
		return
	}
	seeOther(w, r, dashboardFor(&created))
}

func (h *Handlers) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "auth/login", view.Data{"User": h.currentAccount(r)})
}

// handleLogin matches credentials and binds a session. Failures redirect back
// to the login form without revealing whether the username exists.
func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	form := formValues(r)

	account, err := h.store.FindAccountByUsername(r.Context(), form["username"])
	if err != nil || !account.Authenticate(h.passwords, form["password"]) {
		seeOther(w, r, "/login")
		return
	}

	if err := h.sessions.Issue(w, &account); err != nil {
		h.log.Error(r.Context(), "issue session", "error", err)
		seeOther(w, r, "/login")
		return
	}
	seeOther(w, r, dashboardFor(&account))
}

func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// dashboardFor picks the post-login landing page by role.
func dashboardFor(account *models.Account) string {
	if account.IsSupport() {
		return "/admin/dashboard"
	}
	return "/observation/dashboard"
}
