package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"pointsgame/database"
	"pointsgame/models"
	"pointsgame/service"
)

const accountColumns = `id, seq, username, email, password_hash, is_active, is_admin, balance, version, created_at, updated_at`

// AccountRepository implements the AccountRepository interface
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository with a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var a models.Account
	err := row.Scan(
		&a.ID,
		&a.Seq,
		&a.Username,
		&a.Email,
		&a.PasswordHash,
		&a.IsActive,
		&a.IsAdmin,
		&a.Balance,
		&a.Version,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new account
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}

	query := `
		INSERT INTO accounts (id, username, email, password_hash, is_active, is_admin, balance)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING seq, version, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		account.ID,
		account.Username,
		account.Email,
		account.PasswordHash,
		account.IsActive,
		account.IsAdmin,
		account.Balance,
	).Scan(&account.Seq, &account.Version, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return service.ErrAccountExists
		}
		return fmt.Errorf("failed to create account %s: %w", account.Username, err)
	}
	return nil
}

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	account, err := scanAccount(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", id, err)
	}
	return account, nil
}

// GetByEmail retrieves an account by email, ignoring case
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE LOWER(email) = LOWER($1)`

	account, err := scanAccount(r.q.QueryRow(ctx, query, email))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}
	return account, nil
}

// ExistsByUsernameOrEmail reports whether the username or email is already registered
func (r *AccountRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM accounts
			WHERE LOWER(username) = LOWER($1) OR LOWER(email) = LOWER($2)
		)
	`

	var exists bool
	if err := r.q.QueryRow(ctx, query, username, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check account existence: %w", err)
	}
	return exists, nil
}

// ApplyDelta debits and credits the balance atomically, failing if the balance cannot cover debit
func (r *AccountRepository) ApplyDelta(ctx context.Context, id uuid.UUID, debit, credit int64) (*models.BalanceChange, error) {
	if debit < 0 || credit < 0 {
		return nil, fmt.Errorf("debit and credit must not be negative")
	}

	query := `
		UPDATE accounts
		SET balance = balance - $2 + $3, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND balance >= $2
		RETURNING balance + $2 - $3, balance, version
	`

	change := &models.BalanceChange{AccountID: id}
	err := r.q.QueryRow(ctx, query, id, debit, credit).Scan(&change.Before, &change.After, &change.Version)
	if err == nil {
		return change, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to apply balance change for account %s: %w", id, err)
	}

	exists, err := r.exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, service.ErrAccountNotFound
	}
	return nil, service.ErrInsufficientFunds
}

// CompareAndSetBalance writes newBalance if the version has not moved since it was read
func (r *AccountRepository) CompareAndSetBalance(ctx context.Context, id uuid.UUID, expectedVersion, newBalance int64) (*models.BalanceChange, bool, error) {
	if newBalance < 0 {
		return nil, false, fmt.Errorf("balance cannot be negative")
	}

	query := `
		WITH prev AS (
			SELECT balance FROM accounts WHERE id = $1 AND version = $2
		)
		UPDATE accounts a
		SET balance = $3, version = a.version + 1, updated_at = NOW()
		FROM prev
		WHERE a.id = $1 AND a.version = $2
		RETURNING prev.balance, a.balance, a.version
	`

	change := &models.BalanceChange{AccountID: id}
	err := r.q.QueryRow(ctx, query, id, expectedVersion, newBalance).Scan(&change.Before, &change.After, &change.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to set balance for account %s: %w", id, err)
	}
	return change, true, nil
}

// SetActive toggles the active flag of an account
func (r *AccountRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE accounts SET is_active = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.q.Exec(ctx, query, id, active)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return service.ErrAccountNotFound
	}
	return nil
}

// SetAdmin grants or revokes the admin flag of an account
func (r *AccountRepository) SetAdmin(ctx context.Context, id uuid.UUID, admin bool) error {
	query := `UPDATE accounts SET is_admin = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.q.Exec(ctx, query, id, admin)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return service.ErrAccountNotFound
	}
	return nil
}

// ListAll returns every account in creation order
func (r *AccountRepository) ListAll(ctx context.Context) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY seq`
	return r.list(ctx, query)
}

// ListTargets returns the active non-admin accounts other than excludeID
func (r *AccountRepository) ListTargets(ctx context.Context, excludeID uuid.UUID) ([]*models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE is_active AND NOT is_admin AND id <> $1
		ORDER BY username
	`
	return r.list(ctx, query, excludeID)
}

func (r *AccountRepository) list(ctx context.Context, query string, args ...any) ([]*models.Account, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []*models.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return accounts, nil
}

func (r *AccountRepository) exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check account %s: %w", id, err)
	}
	return exists, nil
}
