package web

import (
	"errors"
	"net/http"

	"github.com/hivemindhq/hivemind/internal/models"
	"github.com/hivemindhq/hivemind/internal/storage"
	"github.com/hivemindhq/hivemind/internal/validate"
	"github.com/hivemindhq/hivemind/internal/web/view"
)

// recentInboxPreview caps the dashboard message list.
const recentInboxPreview = 5

func (h *Handlers) handleSupportDashboard(w http.ResponseWriter, r *http.Request, account *models.Account) {
	data := view.Data{"User": account}

	counts, err := h.store.CountObserversByStatus(r.Context())
	if err != nil {
		h.log.Error(r.Context(), "count observers", "error", err)
		data["Error"] = "Failed to load dashboard data."
		h.render(w, r, "support/dashboard", data)
		return
	}
	data["Stats"] = counts

	recent, err := h.store.ListInbox(r.Context(), account.ID, recentInboxPreview)
	if err != nil {
		h.log.Error(r.Context(), "list recent messages", "error", err)
		data["Error"] = "Failed to load dashboard data."
	} else {
		data["RecentMessages"] = recent
	}
	h.render(w, r, "support/dashboard", data)
}

func (h *Handlers) handleSupportUsers(w http.ResponseWriter, r *http.Request, account *models.Account) {
	observers, err := h.store.ListAccountsByRole(r.Context(), models.RoleObserver)
	data := view.Data{"User": account, "Observers": observers}
	if err != nil {
		h.log.Error(r.Context(), "list observers", "error", err)
		data["Observers"] = nil
		data["Error"] = "Failed to load users."
	}
	h.render(w, r, "support/users", data)
}

func (h *Handlers) handleSupportUserView(w http.ResponseWriter, r *http.Request, account *models.Account) {
	observer, err := h.store.FindAccountByID(r.Context(), r.PathValue("id"))
	if err != nil || !observer.IsObserver() {
		http.Redirect(w, r, "/admin/users", http.StatusFound)
		return
	}
	h.render(w, r, "support/view-user", view.Data{
		"User":     account,
		"Observer": &observer,
	})
}

// handleSupportUserStatus sets an observer's account status. Any status may
// be set from any other; only the support role reaches this handler.
func (h *Handlers) handleSupportUserStatus(w http.ResponseWriter, r *http.Request, account *models.Account) {
	id := r.PathValue("id")
	form := formValues(r)

	target, err := h.store.FindAccountByID(r.Context(), id)
	if err != nil || !target.IsObserver() {
		http.Redirect(w, r, "/admin/users", http.StatusFound)
		return
	}

	status := form["accountStatus"]
	if !models.ValidStatus(status) {
		h.render(w, r, "support/view-user", view.Data{
			"User":     account,
			"Observer": &target,
			"Error":    "Unknown account status.",
		})
		return
	}

	if err := h.store.UpdateAccountStatus(r.Context(), id, models.Status(status)); err != nil {
		h.log.Error(r.Context(), "update account status", "error", err, "account", id)
		http.Redirect(w, r, "/admin/users", http.StatusFound)
		return
	}
	seeOther(w, r, "/admin/users/"+id)
}

func (h *Handlers) handleNewSupportForm(w http.ResponseWriter, r *http.Request, account *models.Account) {
	h.render(w, r, "support/new-support", view.Data{"User": account})
}

// handleNewSupportCreate registers a support account. No card fields exist
// for this role and the new account is not logged in.
func (h *Handlers) handleNewSupportCreate(w http.ResponseWriter, r *http.Request, account *models.Account) {
	form := formValues(r)

	var errs formErrors
	if !validate.Email(form["username"]) {
		errs.add("Please enter a valid email address.")
	}
	if !validate.StrongPassword(form["password"]) {
		errs.add("Password must be at least 8 characters and include uppercase, lowercase, number, and special character.")
	}
	if form["forename"] == "" || form["surname"] == "" || form["address"] == "" {
		errs.add("Forename, surname, and address are required.")
	}
	if !errs.ok() {
		h.render(w, r, "support/new-support", view.Data{
			"User":  account,
			"Error": errs.summary(),
			"Form":  form,
		})
		return
	}

	newAccount := models.Account{
		Username: form["username"],
		Forename: form["forename"],
		Surname:  form["surname"],
		Address:  form["address"],
		Role:     models.RoleSupport,
		Status:   models.StatusActive,
	}
	if err := newAccount.SetPassword(h.passwords, form["password"]); err != nil {
		h.log.Error(r.Context(), "hash password", "error", err)
		h.render(w, r, "support/new-support", view.Data{
			"User":  account,
			"Error": "Failed to create support user. Please try again.",
			"Form":  form,
		})
		return
	}

	if _, err := h.store.CreateAccount(r.Context(), newAccount); err != nil {
		msg := "Failed to create support user. Please try again."
		if errors.Is(err, storage.ErrAlreadyExists) {
			msg = "An account with that email already exists."
		} else {
			h.log.Error(r.Context(), "create support account", "error", err)
		}
		h.render(w, r, "support/new-support", view.Data{
			"User":  account,
			"Error": msg,
			"Form":  form,
		})
		return
	}
	seeOther(w, r, "/admin/users")
}
