// Package storage declares the persistence operations handlers depend on,
// independent of the backing store.
package storage

import (
	"context"
	"errors"

	"github.com/hivemindhq/hivemind/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// StatusCounts breaks observer accounts down by status for the admin
// dashboard.
type StatusCounts struct {
	Active    int
	Inactive  int
	Suspended int
}

// Total is the observer population across all statuses.
func (c StatusCounts) Total() int {
	return c.Active + c.Inactive + c.Suspended
}

// AccountStore captures persistence operations over accounts.
type AccountStore interface {
	CreateAccount(ctx context.Context, account models.Account) (models.Account, error)
	FindAccountByID(ctx context.Context, id string) (models.Account, error)
	FindAccountByUsername(ctx context.Context, username string) (models.Account, error)

	// ListAccountsByRole returns accounts of one role ordered by surname,
	// then forename.
	ListAccountsByRole(ctx context.Context, role models.Role) ([]models.Account, error)
	// ListAccountsExcept returns every account other than the given one,
	// ordered by role, surname, forename. Used to build recipient lists.
	ListAccountsExcept(ctx context.Context, id string) ([]models.Account, error)
	CountObserversByStatus(ctx context.Context) (StatusCounts, error)

	UpdateAccountProfile(ctx context.Context, id string, common models.AccountUpdate, observer models.ObserverUpdate) error
	UpdateAccountStatus(ctx context.Context, id string, status models.Status) error
	UpdateAccountPassword(ctx context.Context, id string, passwordHash string) error
}

// ObservationStore captures persistence operations over observations.
type ObservationStore interface {
	CreateObservation(ctx context.Context, obs models.Observation) (models.Observation, error)
	FindObservationByID(ctx context.Context, id string) (models.Observation, error)

	// ListRecentByObserver returns the newest observations first, capped at
	// limit (0 means no cap).
	ListRecentByObserver(ctx context.Context, observerID string, limit int) ([]models.Observation, error)
	// ListHistoryByObserver returns observations ordered by date then time,
	// newest first.
	ListHistoryByObserver(ctx context.Context, observerID string) ([]models.Observation, error)
	// ListByDateRange returns the observer's observations whose date falls
	// within [from, to], both YYYYMMDD strings, newest first.
	ListByDateRange(ctx context.Context, observerID, from, to string) ([]models.Observation, error)
}

// MessageStore captures persistence operations over messages. Reads populate
// the sender/recipient correspondent fields.
type MessageStore interface {
	CreateMessage(ctx context.Context, msg models.Message) (models.Message, error)
	FindMessageByID(ctx context.Context, id string) (models.Message, error)
	// ListInbox returns messages addressed to the recipient, newest first,
	// capped at limit (0 means no cap).
	ListInbox(ctx context.Context, recipientID string, limit int) ([]models.Message, error)
	ListSent(ctx context.Context, senderID string) ([]models.Message, error)
	MarkMessageRead(ctx context.Context, id string) error
}

// Store aggregates the per-entity stores a backend provides.
type Store interface {
	AccountStore
	ObservationStore
	MessageStore
}
