package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"pointsgame/database"
	"pointsgame/models"
)

// CreateTestAccount builds an unsaved active player account
func CreateTestAccount(username string, balance int64) *models.Account {
	return &models.Account{
		ID:           uuid.New(),
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		PasswordHash: "not-a-real-hash",
		IsActive:     true,
		Balance:      balance,
	}
}

// CreateTestAdmin builds an unsaved admin account
func CreateTestAdmin(username string) *models.Account {
	account := CreateTestAccount(username, 0)
	account.IsAdmin = true
	return account
}

// SeedAccount inserts an account and gives it every active catalog item at max uses.
// The returned account has its generated columns filled in.
func SeedAccount(t *testing.T, db *database.DB, account *models.Account) *models.Account {
	t.Helper()
	ctx := context.Background()

	err := db.WithTransaction(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO accounts (id, username, email, password_hash, is_active, is_admin, balance)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING seq, version, created_at, updated_at
		`, account.ID, account.Username, account.Email, account.PasswordHash, account.IsActive, account.IsAdmin, account.Balance).
			Scan(&account.Seq, &account.Version, &account.CreatedAt, &account.UpdatedAt)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO inventory (account_id, item_id, remaining_uses)
			SELECT $1, id, max_uses FROM item_definitions WHERE is_active
		`, account.ID)
		return err
	})
	require.NoError(t, err)

	return account
}

// SetRemainingUses overwrites an inventory counter directly
func SetRemainingUses(t *testing.T, db *database.DB, accountID uuid.UUID, itemID string, uses int) {
	t.Helper()
	_, err := db.Exec(context.Background(),
		`UPDATE inventory SET remaining_uses = $3 WHERE account_id = $1 AND item_id = $2`,
		accountID, itemID, uses)
	require.NoError(t, err)
}

// Balance reads an account balance straight from the table
func Balance(t *testing.T, db *database.DB, accountID uuid.UUID) int64 {
	t.Helper()
	var balance int64
	err := db.QueryRow(context.Background(), `SELECT balance FROM accounts WHERE id = $1`, accountID).Scan(&balance)
	require.NoError(t, err)
	return balance
}

// CountRows counts the rows of table matching an optional where clause
func CountRows(t *testing.T, db *database.DB, table, where string, args ...any) int {
	t.Helper()
	query := "SELECT COUNT(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}
	var n int
	require.NoError(t, db.QueryRow(context.Background(), query, args...).Scan(&n))
	return n
}
