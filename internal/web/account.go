package web

import (
	"errors"
	"net/http"

	"github.com/hivemindhq/hivemind/internal/models"
	"github.com/hivemindhq/hivemind/internal/secrets"
	"github.com/hivemindhq/hivemind/internal/validate"
	"github.com/hivemindhq/hivemind/internal/web/view"
)

func (h *Handlers) handleAccount(w http.ResponseWriter, r *http.Request, account *models.Account) {
	h.render(w, r, "user/account", view.Data{"User": account})
}

// handleAccountUpdate applies a partial profile update. Only fields present
// in the posted form change; card data changes only when both a number and a
// CVV are supplied, and only after both validate.
func (h *Handlers) handleAccountUpdate(w http.ResponseWriter, r *http.Request, account *models.Account) {
	form := formValues(r)

	var errs formErrors
	if form["forename"] == "" || form["surname"] == "" || form["address"] == "" {
		errs.add("Forename, surname, and address are required.")
	}

	common := models.AccountUpdate{
		Forename: ptr(form["forename"]),
		Surname:  ptr(form["surname"]),
		Address:  ptr(form["address"]),
	}

	var observer models.ObserverUpdate
	if account.IsObserver() {
		if notify, ok := form["notificationPreference"]; ok {
			pref := models.NotificationPreference(notify)
			if pref != models.NotifyText && pref != models.NotifyEmail {
				errs.add("Notification preference must be text or email.")
			} else {
				observer.NotificationPreference = &pref
			}
		}
		if name, ok := form["cardName"]; ok && name != "" {
			observer.CardName = &name
		}
		if cardType, ok := form["cardType"]; ok && cardType != "" {
			ct := models.CardType(cardType)
			if ct != models.CardVisa && ct != models.CardMastercard {
				errs.add("Card type must be Visa or Mastercard.")
			} else {
				observer.CardType = &ct
			}
		}

		cardNumber := cleanCardNumber(form["cardNumber"])
		cvv := form["cardCVV"]
		if cardNumber != "" || cvv != "" {
			switch {
			case cardNumber == "" || cvv == "":
				errs.add("To update card details supply both the card number and the CVV.")
			case !validate.CreditCard(cardNumber):
				errs.add("Please enter a valid 16-digit credit card number.")
			case !isThreeDigitCVV(cvv):
				errs.add("CVV must be a 3-digit number.")
			default:
				digest, ok := secrets.EncodeCard(h.cards, cardNumber, cvv)
				if !ok {
					errs.add("Failed to update card details. Please try again.")
					break
				}
				observer.CardNumberHash = &digest.NumberHash
				observer.CardNumberLast4 = &digest.Last4
				observer.CardCVVHash = &digest.CVVHash
			}
		}
	}

	if !errs.ok() {
		h.render(w, r, "user/account", view.Data{
			"User":  account,
			"Error": errs.summary(),
		})
		return
	}

	if err := h.store.UpdateAccountProfile(r.Context(), account.ID, common, observer); err != nil {
		h.log.Error(r.Context(), "update account profile", "error", err)
		h.render(w, r, "user/account", view.Data{
			"User":  account,
			"Error": "Failed to update account. Please try again.",
		})
		return
	}
	seeOther(w, r, "/account")
}

func (h *Handlers) handlePasswordForm(w http.ResponseWriter, r *http.Request, account *models.Account) {
	h.render(w, r, "user/password", view.Data{"User": account})
}

// handlePasswordChange swaps the credential only when the current password
// verifies; a failed verification changes nothing.
func (h *Handlers) handlePasswordChange(w http.ResponseWriter, r *http.Request, account *models.Account) {
	form := formValues(r)

	if form["newPassword"] != form["confirmPassword"] {
		h.render(w, r, "user/password", view.Data{
			"User":  account,
			"Error": "New passwords do not match.",
		})
		return
	}
	if !validate.StrongPassword(form["newPassword"]) {
		h.render(w, r, "user/password", view.Data{
			"User":  account,
			"Error": "Password must be at least 8 characters and include uppercase, lowercase, number, and special character.",
		})
		return
	}

	if err := account.ChangePassword(h.passwords, form["currentPassword"], form["newPassword"]); err != nil {
		msg := "Failed to change password. Please try again."
		if errors.Is(err, models.ErrPasswordMismatch) {
			msg = "Current password is incorrect."
		} else {
			h.log.Error(r.Context(), "change password", "error", err)
		}
		h.render(w, r, "user/password", view.Data{"User": account, "Error": msg})
		return
	}

	if err := h.store.UpdateAccountPassword(r.Context(), account.ID, account.PasswordHash); err != nil {
		h.log.Error(r.Context(), "persist password change", "error", err)
		h.render(w, r, "user/password", view.Data{
			"User":  account,
			"Error": "Failed to change password. Please try again.",
		})
		return
	}
	seeOther(w, r, "/account")
}

func ptr[T any](v T) *T {
	return &v
}
