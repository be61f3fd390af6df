package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hivemindhq/hivemind/internal/models"
	"github.com/hivemindhq/hivemind/internal/storage"
)

// uniqueViolation is the postgres error code for a unique constraint breach.
const uniqueViolation = "23505"

const accountColumns = `id, username, forename, surname, address, role, status,
	password_hash, created_at, account_balance, card_number_hash,
	card_number_last4, card_name, card_type, card_cvv_hash,
	notification_preference`

// CreateAccount inserts a new account row. A missing id is assigned here.
func (s *Store) CreateAccount(ctx context.Context, account models.Account) (models.Account, error) {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}

	var (
		balance sql.NullFloat64
		cardHash, cardLast4, cardName, cardType, cvvHash, notify sql.NullString
	)
	if p := account.Observer; p != nil {
		balance = sql.NullFloat64{Float64: p.AccountBalance, Valid: true}
		cardHash = nullString(p.CardNumberHash)
		cardLast4 = nullString(p.CardNumberLast4)
		cardName = nullString(p.CardName)
		cardType = nullString(string(p.CardType))
		cvvHash = nullString(p.CardCVVHash)
		notify = nullString(string(p.NotificationPreference))
	}

	query := fmt.Sprintf(`
		INSERT INTO accounts (id, username, forename, surname, address, role,
			status, password_hash, account_balance, card_number_hash,
			card_number_last4, card_name, card_type, card_cvv_hash,
			notification_preference)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING %s`, accountColumns)

	row := s.pool.QueryRow(ctx, query,
		account.ID, account.Username, account.Forename, account.Surname,
		account.Address, account.Role, account.Status, account.PasswordHash,
		balance, cardHash, cardLast4, cardName, cardType, cvvHash, notify)

	created, err := scanAccount(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return models.Account{}, storage.ErrAlreadyExists
		}
		return models.Account{}, fmt.Errorf("insert account: %w", err)
	}
	return created, nil
}

// FindAccountByID fetches one account by id.
func (s *Store) FindAccountByID(ctx context.Context, id string) (models.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE id = $1`, accountColumns)
	account, err := scanAccount(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Account{}, storage.ErrNotFound
		}
		return models.Account{}, fmt.Errorf("find account by id: %w", err)
	}
	return account, nil
}

// FindAccountByUsername fetches one account by its unique username.
func (s *Store) FindAccountByUsername(ctx context.Context, username string) (models.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE username = $1`, accountColumns)
	account, err := scanAccount(s.pool.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Account{}, storage.ErrNotFound
		}
		return models.Account{}, fmt.Errorf("find account by username: %w", err)
	}
	return account, nil
}

// ListAccountsByRole returns accounts of one role ordered by surname, forename.
func (s *Store) ListAccountsByRole(ctx context.Context, role models.Role) ([]models.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE role = $1
		ORDER BY surname, forename`, accountColumns)
	rows, err := s.pool.Query(ctx, query, role)
	if err != nil {
		return nil, fmt.Errorf("list accounts by role: %w", err)
	}
	defer rows.Close()
	return collectAccounts(rows)
}

// ListAccountsExcept returns every account other than id, ordered for
// recipient pickers.
func (s *Store) ListAccountsExcept(ctx context.Context, id string) ([]models.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE id <> $1
		ORDER BY role, surname, forename`, accountColumns)
	rows, err := s.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("list accounts except: %w", err)
	}
	defer rows.Close()
	return collectAccounts(rows)
}

// CountObserversByStatus aggregates observer accounts per status.
func (s *Store) CountObserversByStatus(ctx context.Context) (storage.StatusCounts, error) {
	const query = `
		SELECT
			COUNT(*) FILTER (WHERE status = 'active'),
			COUNT(*) FILTER (WHERE status = 'inactive'),
			COUNT(*) FILTER (WHERE status = 'suspended')
		FROM accounts WHERE role = 'observer'`

	var counts storage.StatusCounts
	err := s.pool.QueryRow(ctx, query).Scan(&counts.Active, &counts.Inactive, &counts.Suspended)
	if err != nil {
		return storage.StatusCounts{}, fmt.Errorf("count observers: %w", err)
	}
	return counts, nil
}

// UpdateAccountProfile applies the set fields of both partial updates in one
// statement. Unset fields keep their stored values.
func (s *Store) UpdateAccountProfile(ctx context.Context, id string, common models.AccountUpdate, observer models.ObserverUpdate) error {
	sets := []string{}
	args := []any{id}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if common.Forename != nil {
		add("forename", *common.Forename)
	}
	if common.Surname != nil {
		add("surname", *common.Surname)
	}
	if common.Address != nil {
		add("address", *common.Address)
	}
	if observer.CardNumberHash != nil {
		add("card_number_hash", *observer.CardNumberHash)
	}
	if observer.CardNumberLast4 != nil {
		add("card_number_last4", *observer.CardNumberLast4)
	}
	if observer.CardCVVHash != nil {
		add("card_cvv_hash", *observer.CardCVVHash)
	}
	if observer.CardName != nil {
		add("card_name", *observer.CardName)
	}
	if observer.CardType != nil {
		add("card_type", string(*observer.CardType))
	}
	if observer.NotificationPreference != nil {
		add("notification_preference", string(*observer.NotificationPreference))
	}

	if len(sets) == 0 {
		return nil
	}

	query := fmt.Sprintf(`UPDATE accounts SET %s WHERE id = $1`, strings.Join(sets, ", "))
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update account profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// UpdateAccountStatus sets the account status.
func (s *Store) UpdateAccountStatus(ctx context.Context, id string, status models.Status) error {
	tag, err := s.pool.Exec(ctx, `UPDATE accounts SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update account status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// UpdateAccountPassword replaces the stored credential hash.
func (s *Store) UpdateAccountPassword(ctx context.Context, id string, passwordHash string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE accounts SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update account password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// scanAccount reads one account row, folding the nullable observer columns
// into the variant payload only for observer rows.
func scanAccount(row pgx.Row) (models.Account, error) {
	var (
		account models.Account
		balance sql.NullFloat64
		cardHash, cardLast4, cardName, cardType, cvvHash, notify sql.NullString
	)
	err := row.Scan(
		&account.ID, &account.Username, &account.Forename, &account.Surname,
		&account.Address, &account.Role, &account.Status,
		&account.PasswordHash, &account.CreatedAt,
		&balance, &cardHash, &cardLast4, &cardName, &cardType, &cvvHash, &notify)
	if err != nil {
		return models.Account{}, err
	}

	if account.Role == models.RoleObserver {
		account.Observer = &models.ObserverProfile{
			AccountBalance:         balance.Float64,
			CardNumberHash:         cardHash.String,
			CardNumberLast4:        cardLast4.String,
			CardName:               cardName.String,
			CardType:               models.CardType(cardType.String),
			CardCVVHash:            cvvHash.String,
			NotificationPreference: models.NotificationPreference(notify.String),
		}
	}
	return account, nil
}

func collectAccounts(rows pgx.Rows) ([]models.Account, error) {
	var accounts []models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return accounts, nil
}
