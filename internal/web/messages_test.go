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

func TestObserverMessagesSupport(t *testing.T) {
	env := newTestEnv(t)
	observer := env.seedAccount(t, "observer@example.com", models.RoleObserver, models.StatusActive)
	support := env.seedAccount(t, "support@example.com", models.RoleSupport, models.StatusActive)

	rec := env.post("/messages/new", env.sessionCookie(t, observer), url.Values{
		"recipient": {support.ID},
		"subject":   {"Signal drop"},
		"content":   {"Readings stopped around noon."},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/messages", rec.Header().Get("Location"))

	inbox, err := env.store.ListInbox(context.Background(), support.ID, 0)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	msg := inbox[0]
	assert.Equal(t, observer.ID, msg.SenderID)
	assert.Equal(t, "Signal drop", msg.Subject)
	assert.False(t, msg.Read)
	assert.True(t, msg.Timestamp.Equal(env.clock.Now()), "timestamp comes from the injected clock")
}

func TestObserverCannotMessageObserver(t *testing.T) {
	env := newTestEnv(t)
	sender := env.seedAccount(t, "sender@example.com", models.RoleObserver, models.StatusActive)
	peer := env.seedAccount(t, "peer@example.com", models.RoleObserver, models.StatusActive)
	env.seedAccount(t, "support@example.com", models.RoleSupport, models.StatusActive)

	// The posted recipient id is checked against the rule even though the
	// compose form would never offer a fellow observer.
	rec := env.post("/messages/new", env.sessionCookie(t, sender), url.Values{
		"recipient": {peer.ID},
		"subject":   {"hello"},
		"content":   {"hi"},
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "valid recipient")

	inbox, err := env.store.ListInbox(context.Background(), peer.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, inbox)
}

func TestSupportMessagesAnyoneButSelf(t *testing.T) {
	env := newTestEnv(t)
	support := env.seedAccount(t, "support@example.com", models.RoleSupport, models.StatusActive)
	observer := env.seedAccount(t, "observer@example.com", models.RoleObserver, models.StatusActive)
	cookie := env.sessionCookie(t, support)

	rec := env.post("/messages/new", cookie, url.Values{
		"recipient": {observer.ID},
		"subject":   {"Account notice"},
		"content":   {"Your card details need updating."},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = env.post("/messages/new", cookie, url.Values{
		"recipient": {support.ID},
		"subject":   {"note to self"},
		"content":   {"nope"},
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "valid recipient")
}

func TestMessageSendValidation(t *testing.T) {
	env := newTestEnv(t)
	observer := env.seedAccount(t, "observer@example.com", models.RoleObserver, models.StatusActive)
	support := env.seedAccount(t, "support@example.com", models.RoleSupport, models.StatusActive)

	rec := env.post("/messages/new", env.sessionCookie(t, observer), url.Values{
		"recipient": {support.ID},
		"subject":   {""},
		"content":   {""},
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Subject is required")
	assert.Contains(t, body, "Message content is required")
}

func TestMessageViewMarksRead(t *testing.T) {
	env := newTestEnv(t)
	observer := env.seedAccount(t, "observer@example.com", models.RoleObserver, models.StatusActive)
	support := env.seedAccount(t, "support@example.com", models.RoleSupport, models.StatusActive)

	msg, err := env.store.CreateMessage(context.Background(), models.Message{
		SenderID:    observer.ID,
		RecipientID: support.ID,
		Subject:     "Signal drop",
		Content:     "Readings stopped.",
	})
	require.NoError(t, err)
	require.False(t, msg.Read)

	// The sender viewing their own sent message does not mark it read.
	rec := env.get("/messages/"+msg.ID, env.sessionCookie(t, observer))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "/reply", "only the recipient may reply")

	stored, err := env.store.FindMessageByID(context.Background(), msg.ID)
	require.NoError(t, err)
	assert.False(t, stored.Read)

	rec = env.get("/messages/"+msg.ID, env.sessionCookie(t, support))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/reply")

	stored, err = env.store.FindMessageByID(context.Background(), msg.ID)
	require.NoError(t, err)
	assert.True(t, stored.Read)
}

func TestMessageViewThirdPartyRedirects(t *testing.T) {
	env := newTestEnv(t)
	observer := env.seedAccount(t, "observer@example.com", models.RoleObserver, models.StatusActive)
	support := env.seedAccount(t, "support@example.com", models.RoleSupport, models.StatusActive)
	bystander := env.seedAccount(t, "bystander@example.com", models.RoleObserver, models.StatusActive)

	msg, err := env.store.CreateMessage(context.Background(), models.Message{
		SenderID:    observer.ID,
		RecipientID: support.ID,
		Subject:     "private",
		Content:     "between us",
	})
	require.NoError(t, err)

	rec := env.get("/messages/"+msg.ID, env.sessionCookie(t, bystander))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/messages", rec.Header().Get("Location"))
}

func TestReplyDefaults(t *testing.T) {
	env := newTestEnv(t)
	observer := env.seedAccount(t, "observer@example.com", models.RoleObserver, models.StatusActive)
	support := env.seedAccount(t, "support@example.com", models.RoleSupport, models.StatusActive)

	original, err := env.store.CreateMessage(context.Background(), models.Message{
		SenderID:    observer.ID,
		RecipientID: support.ID,
		Subject:     "Signal drop",
		Content:     "Readings stopped.",
	})
	require.NoError(t, err)

	rec := env.post("/messages/"+original.ID+"/reply", env.sessionCookie(t, support), url.Values{
		"subject": {""},
		"content": {"Looking into it now."},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/messages", rec.Header().Get("Location"))

	inbox, err := env.store.ListInbox(context.Background(), observer.ID, 0)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	reply := inbox[0]
	assert.Equal(t, support.ID, reply.SenderID, "reply goes back to the original sender")
	assert.Equal(t, "Re: Signal drop", reply.Subject)
	assert.Equal(t, "Looking into it now.", reply.Content)
}

func TestReplyOnlyByRecipient(t *testing.T) {
	env := newTestEnv(t)
	observer := env.seedAccount(t, "observer@example.com", models.RoleObserver, models.StatusActive)
	support := env.seedAccount(t, "support@example.com", models.RoleSupport, models.StatusActive)

	original, err := env.store.CreateMessage(context.Background(), models.Message{
		SenderID:    observer.ID,
		RecipientID: support.ID,
		Subject:     "Signal drop",
		Content:     "Readings stopped.",
	})
	require.NoError(t, err)

	// The sender cannot reply to their own outbound message.
	rec := env.post("/messages/"+original.ID+"/reply", env.sessionCookie(t, observer), url.Values{
		"content": {"bump"},
	})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/messages", rec.Header().Get("Location"))

	inbox, err := env.store.ListInbox(context.Background(), support.ID, 0)
	require.NoError(t, err)
	assert.Len(t, inbox, 1, "only the original message exists")
}

func TestComposeFormRecipients(t *testing.T) {
	env := newTestEnv(t)
	observer := env.seedAccount(t, "observer@example.com", models.RoleObserver, models.StatusActive)
	peer := env.seedAccount(t, "peer@example.com", models.RoleObserver, models.StatusActive)
	support := env.seedAccount(t, "support@example.com", models.RoleSupport, models.StatusActive)

	// Observers see support staff only.
	rec := env.get("/messages/new", env.sessionCookie(t, observer))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, support.ID)
	assert.NotContains(t, body, peer.ID)

	// Support sees everyone but themselves.
	rec = env.get("/messages/new", env.sessionCookie(t, support))
	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()
	assert.Contains(t, body, observer.ID)
	assert.Contains(t, body, peer.ID)
	assert.NotContains(t, body, `value="`+support.ID+`"`)
}
