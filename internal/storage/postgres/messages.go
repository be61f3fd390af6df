package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hivemindhq/hivemind/internal/models"
	"github.com/hivemindhq/hivemind/internal/storage"
)

// messageColumns joins the accounts table twice so every read resolves the
// sender and recipient references into their public fields.
const messageColumns = `m.id, m.sender_id, m.recipient_id, m.subject,
	m.content, m.sent_at, m.is_read,
	s.username, s.forename, s.surname, s.role,
	r.username, r.forename, r.surname, r.role`

const messageJoins = `
	FROM messages m
	JOIN accounts s ON s.id = m.sender_id
	JOIN accounts r ON r.id = m.recipient_id`

// CreateMessage inserts a new message row. A missing id is assigned here; a
// zero timestamp falls back to the wall clock.
func (s *Store) CreateMessage(ctx context.Context, msg models.Message) (models.Message, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	query := `
		INSERT INTO messages (id, sender_id, recipient_id, subject, content, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := s.pool.QueryRow(ctx, query,
		msg.ID, msg.SenderID, msg.RecipientID, msg.Subject, msg.Content, msg.Timestamp).Scan(&msg.ID)
	if err != nil {
		return models.Message{}, fmt.Errorf("insert message: %w", err)
	}

	return s.FindMessageByID(ctx, msg.ID)
}

// FindMessageByID fetches one message with its correspondents populated.
func (s *Store) FindMessageByID(ctx context.Context, id string) (models.Message, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE m.id = $1`, messageColumns, messageJoins)
	msg, err := scanMessage(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Message{}, storage.ErrNotFound
		}
		return models.Message{}, fmt.Errorf("find message: %w", err)
	}
	return msg, nil
}

// ListInbox returns messages addressed to the recipient, newest first.
func (s *Store) ListInbox(ctx context.Context, recipientID string, limit int) ([]models.Message, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE m.recipient_id = $1
		ORDER BY m.sent_at DESC`, messageColumns, messageJoins)
	args := []any{recipientID}
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inbox: %w", err)
	}
	defer rows.Close()
	return collectMessages(rows)
}

// ListSent returns messages the sender has sent, newest first.
func (s *Store) ListSent(ctx context.Context, senderID string) ([]models.Message, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE m.sender_id = $1
		ORDER BY m.sent_at DESC`, messageColumns, messageJoins)
	rows, err := s.pool.Query(ctx, query, senderID)
	if err != nil {
		return nil, fmt.Errorf("list sent messages: %w", err)
	}
	defer rows.Close()
	return collectMessages(rows)
}

// MarkMessageRead flips the read flag on. The flag never reverts.
func (s *Store) MarkMessageRead(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE messages SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark message read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanMessage(row pgx.Row) (models.Message, error) {
	var (
		msg    models.Message
		sender models.Correspondent
		recip  models.Correspondent
	)
	err := row.Scan(
		&msg.ID, &msg.SenderID, &msg.RecipientID, &msg.Subject, &msg.Content,
		&msg.Timestamp, &msg.Read,
		&sender.Username, &sender.Forename, &sender.Surname, &sender.Role,
		&recip.Username, &recip.Forename, &recip.Surname, &recip.Role)
	if err != nil {
		return models.Message{}, err
	}
	sender.ID = msg.SenderID
	recip.ID = msg.RecipientID
	msg.Sender = &sender
	msg.Recipient = &recip
	return msg, nil
}

func collectMessages(rows pgx.Rows) ([]models.Message, error) {
	var out []models.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return out, nil
}
