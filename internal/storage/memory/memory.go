// Package memory implements the storage interfaces in process memory. It
// backs handler tests and local development without a database.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hivemindhq/hivemind/internal/models"
	"github.com/hivemindhq/hivemind/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store holds all records behind one mutex. Good enough for tests; not meant
// for production traffic.
type Store struct {
	mu           sync.Mutex
	accounts     map[string]models.Account
	observations map[string]models.Observation
	messages     map[string]models.Message
}

func New() *Store {
	return &Store{
		accounts:     make(map[string]models.Account),
		observations: make(map[string]models.Observation),
		messages:     make(map[string]models.Message),
	}
}

func cloneAccount(a models.Account) models.Account {
	if a.Observer != nil {
		profile := *a.Observer
		a.Observer = &profile
	}
	return a
}

func (s *Store) CreateAccount(ctx context.Context, account models.Account) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.accounts {
		if strings.EqualFold(existing.Username, account.Username) {
			return models.Account{}, storage.ErrAlreadyExists
		}
	}
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}
	s.accounts[account.ID] = cloneAccount(account)
	return cloneAccount(account), nil
}

func (s *Store) FindAccountByID(ctx context.Context, id string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return models.Account{}, storage.ErrNotFound
	}
	return cloneAccount(account), nil
}

func (s *Store) FindAccountByUsername(ctx context.Context, username string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, account := range s.accounts {
		if strings.EqualFold(account.Username, username) {
			return cloneAccount(account), nil
		}
	}
	return models.Account{}, storage.ErrNotFound
}

func (s *Store) ListAccountsByRole(ctx context.Context, role models.Role) ([]models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Account
	for _, account := range s.accounts {
		if account.Role == role {
			out = append(out, cloneAccount(account))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Surname != out[j].Surname {
			return out[i].Surname < out[j].Surname
		}
		return out[i].Forename < out[j].Forename
	})
	return out, nil
}

func (s *Store) ListAccountsExcept(ctx context.Context, id string) ([]models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Account
	for _, account := range s.accounts {
		if account.ID != id {
			out = append(out, cloneAccount(account))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Role != out[j].Role {
			return out[i].Role < out[j].Role
		}
		if out[i].Surname != out[j].Surname {
			return out[i].Surname < out[j].Surname
		}
		return out[i].Forename < out[j].Forename
	})
	return out, nil
}

func (s *Store) CountObserversByStatus(ctx context.Context) (storage.StatusCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var counts storage.StatusCounts
	for _, account := range s.accounts {
		if account.Role != models.RoleObserver {
			continue
		}
		switch account.Status {
		case models.StatusActive:
			counts.Active++
		case models.StatusInactive:
			counts.Inactive++
		case models.StatusSuspended:
			counts.Suspended++
		}
	}
	return counts, nil
}

func (s *Store) UpdateAccountProfile(ctx context.Context, id string, common models.AccountUpdate, observer models.ObserverUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return storage.ErrNotFound
	}
	account = cloneAccount(account)
	common.Apply(&account)
	observer.Apply(&account)
	s.accounts[id] = account
	return nil
}

func (s *Store) UpdateAccountStatus(ctx context.Context, id string, status models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return storage.ErrNotFound
	}
	account.Status = status
	s.accounts[id] = account
	return nil
}

func (s *Store) UpdateAccountPassword(ctx context.Context, id string, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return storage.ErrNotFound
	}
	account.PasswordHash = passwordHash
	s.accounts[id] = account
	return nil
}

func (s *Store) CreateObservation(ctx context.Context, obs models.Observation) (models.Observation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if obs.ID == "" {
		obs.ID = uuid.NewString()
	}
	if obs.CreatedAt.IsZero() {
		obs.CreatedAt = time.Now()
	}
	s.observations[obs.ID] = obs
	return obs, nil
}

func (s *Store) FindObservationByID(ctx context.Context, id string) (models.Observation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obs, ok := s.observations[id]
	if !ok {
		return models.Observation{}, storage.ErrNotFound
	}
	return obs, nil
}

func (s *Store) ListRecentByObserver(ctx context.Context, observerID string, limit int) ([]models.Observation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.observationsOf(observerID)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ListHistoryByObserver(ctx context.Context, observerID string) ([]models.Observation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.observationsOf(observerID)
	sortByDateTimeDesc(out)
	return out, nil
}

func (s *Store) ListByDateRange(ctx context.Context, observerID, from, to string) ([]models.Observation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Observation
	for _, obs := range s.observationsOf(observerID) {
		if obs.Date >= from && obs.Date <= to {
			out = append(out, obs)
		}
	}
	sortByDateTimeDesc(out)
	return out, nil
}

func (s *Store) observationsOf(observerID string) []models.Observation {
	var out []models.Observation
	for _, obs := range s.observations {
		if obs.ObserverID == observerID {
			out = append(out, obs)
		}
	}
	return out
}

func sortByDateTimeDesc(obs []models.Observation) {
	sort.Slice(obs, func(i, j int) bool {
		if obs[i].Date != obs[j].Date {
			return obs[i].Date > obs[j].Date
		}
		return obs[i].Time > obs[j].Time
	})
}

func (s *Store) CreateMessage(ctx context.Context, msg models.Message) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[msg.SenderID]; !ok {
		return models.Message{}, storage.ErrNotFound
	}
	if _, ok := s.accounts[msg.RecipientID]; !ok {
		return models.Message{}, storage.ErrNotFound
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	msg.Sender = nil
	msg.Recipient = nil
	s.messages[msg.ID] = msg
	return s.populate(msg), nil
}

func (s *Store) FindMessageByID(ctx context.Context, id string) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.messages[id]
	if !ok {
		return models.Message{}, storage.ErrNotFound
	}
	return s.populate(msg), nil
}

func (s *Store) ListInbox(ctx context.Context, recipientID string, limit int) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Message
	for _, msg := range s.messages {
		if msg.RecipientID == recipientID {
			out = append(out, s.populate(msg))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ListSent(ctx context.Context, senderID string) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Message
	for _, msg := range s.messages {
		if msg.SenderID == senderID {
			out = append(out, s.populate(msg))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

func (s *Store) MarkMessageRead(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.messages[id]
	if !ok {
		return storage.ErrNotFound
	}
	msg.Read = true
	s.messages[id] = msg
	return nil
}

func (s *Store) populate(msg models.Message) models.Message {
	msg.Sender = s.correspondent(msg.SenderID)
	msg.Recipient = s.correspondent(msg.RecipientID)
	return msg
}

func (s *Store) correspondent(id string) *models.Correspondent {
	account, ok := s.accounts[id]
	if !ok {
		return nil
	}
	return &models.Correspondent{
		ID:       account.ID,
		Username: account.Username,
		Forename: account.Forename,
		Surname:  account.Surname,
		Role:     account.Role,
	}
}
