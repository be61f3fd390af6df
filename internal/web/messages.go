package web

import (
	"net/http"

	"github.com/hivemindhq/hivemind/internal/models"
	"github.com/hivemindhq/hivemind/internal/web/view"
)

func (h *Handlers) handleInbox(w http.ResponseWriter, r *http.Request, account *models.Account) {
	messages, err := h.store.ListInbox(r.Context(), account.ID, 0)
	data := view.Data{"User": account, "Messages": messages}
	if err != nil {
		h.log.Error(r.Context(), "list inbox", "error", err)
		data["Messages"] = nil
		data["Error"] = "Failed to load messages."
	}
	h.render(w, r, "messages/inbox", data)
}

func (h *Handlers) handleSent(w http.ResponseWriter, r *http.Request, account *models.Account) {
	messages, err := h.store.ListSent(r.Context(), account.ID)
	data := view.Data{"User": account, "Messages": messages}
	if err != nil {
		h.log.Error(r.Context(), "list sent messages", "error", err)
		data["Messages"] = nil
		data["Error"] = "Failed to load sent messages."
	}
	h.render(w, r, "messages/sent", data)
}

// handleMessageForm renders the compose form. Observers may only address
// support staff; support may address anyone but themselves.
func (h *Handlers) handleMessageForm(w http.ResponseWriter, r *http.Request, account *models.Account) {
	recipients, err := h.recipientsFor(r, account)
	data := view.Data{
		"User":        account,
		"Recipients":  recipients,
		"RecipientID": r.URL.Query().Get("to"),
	}
	if err != nil {
		h.log.Error(r.Context(), "list recipients", "error", err)
		data["Recipients"] = nil
		data["Error"] = "Failed to load recipients."
	}
	h.render(w, r, "messages/new", data)
}

// handleMessageSend persists a new message. The posted recipient id is
// re-validated against the sender's recipient rule; the recipient list shown
// on the form is not trusted.
func (h *Handlers) handleMessageSend(w http.ResponseWriter, r *http.Request, account *models.Account) {
	form := formValues(r)

	var errs formErrors
	if form["subject"] == "" {
		errs.add("Subject is required.")
	}
	if form["content"] == "" {
		errs.add("Message content is required.")
	}

	var recipient models.Account
	if form["recipient"] == "" {
		errs.add("Please choose a recipient.")
	} else {
		found, err := h.store.FindAccountByID(r.Context(), form["recipient"])
		if err != nil || !h.mayMessage(account, &found) {
			errs.add("Please choose a valid recipient.")
		} else {
			recipient = found
		}
	}

	if !errs.ok() {
		recipients, _ := h.recipientsFor(r, account)
		h.render(w, r, "messages/new", view.Data{
			"User":        account,
			"Recipients":  recipients,
			"RecipientID": form["recipient"],
			"Error":       errs.summary(),
			"Form":        form,
		})
		return
	}

	msg := models.Message{
		SenderID:    account.ID,
		RecipientID: recipient.ID,
		Subject:     form["subject"],
		Content:     form["content"],
		Timestamp:   h.clock.Now(),
	}
	if _, err := h.store.CreateMessage(r.Context(), msg); err != nil {
		h.log.Error(r.Context(), "create message", "error", err)
		seeOther(w, r, "/messages/new")
		return
	}
	seeOther(w, r, "/messages")
}

// handleMessageView shows one message to its sender or recipient only; the
// recipient's first view marks it read.
func (h *Handlers) handleMessageView(w http.ResponseWriter, r *http.Request, account *models.Account) {
	msg, err := h.store.FindMessageByID(r.Context(), r.PathValue("id"))
	if err != nil || (msg.SenderID != account.ID && msg.RecipientID != account.ID) {
		http.Redirect(w, r, "/messages", http.StatusFound)
		return
	}

	if msg.RecipientID == account.ID && !msg.Read {
		if err := h.store.MarkMessageRead(r.Context(), msg.ID); err != nil {
			h.log.Error(r.Context(), "mark message read", "error", err, "message", msg.ID)
		} else {
			msg.Read = true
		}
	}

	h.render(w, r, "messages/view", view.Data{
		"User":     account,
		"Message":  msg,
		"CanReply": msg.RecipientID == account.ID,
	})
}

func (h *Handlers) handleReplyForm(w http.ResponseWriter, r *http.Request, account *models.Account) {
	original, err := h.store.FindMessageByID(r.Context(), r.PathValue("id"))
	if err != nil || original.RecipientID != account.ID {
		http.Redirect(w, r, "/messages", http.StatusFound)
		return
	}
	h.render(w, r, "messages/reply", view.Data{
		"User":     account,
		"Original": original,
	})
}

// handleReplySend sends a reply to a message the caller received. The
// recipient is forced to the original sender and a blank subject inherits
// "Re: <original subject>".
func (h *Handlers) handleReplySend(w http.ResponseWriter, r *http.Request, account *models.Account) {
	original, err := h.store.FindMessageByID(r.Context(), r.PathValue("id"))
	if err != nil || original.RecipientID != account.ID {
		http.Redirect(w, r, "/messages", http.StatusFound)
		return
	}

	form := formValues(r)
	if form["content"] == "" {
		h.render(w, r, "messages/reply", view.Data{
			"User":     account,
			"Original": original,
			"Error":    "Message content is required.",
			"Form":     form,
		})
		return
	}

	subject := form["subject"]
	if subject == "" {
		subject = "Re: " + original.Subject
	}

	msg := models.Message{
		SenderID:    account.ID,
		RecipientID: original.SenderID,
		Subject:     subject,
		Content:     form["content"],
		Timestamp:   h.clock.Now(),
	}
	if _, err := h.store.CreateMessage(r.Context(), msg); err != nil {
		h.log.Error(r.Context(), "create reply", "error", err)
	}
	seeOther(w, r, "/messages")
}

// recipientsFor builds the recipient list the compose form offers.
func (h *Handlers) recipientsFor(r *http.Request, account *models.Account) ([]models.Account, error) {
	if account.IsObserver() {
		return h.store.ListAccountsByRole(r.Context(), models.RoleSupport)
	}
	return h.store.ListAccountsExcept(r.Context(), account.ID)
}

// mayMessage is the recipient rule: observers reach support only; support
// reaches anyone but themselves.
func (h *Handlers) mayMessage(sender, recipient *models.Account) bool {
	if sender.IsObserver() {
		return recipient.IsSupport()
	}
	return recipient.ID != sender.ID
}
