package models

import (
	"time"

	"github.com/google/uuid"
)

// Account represents a registered player or administrator with a balance
type Account struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Seq          int64     `db:"seq" json:"-"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	IsAdmin      bool      `db:"is_admin" json:"is_admin"`
	Balance      int64     `db:"balance" json:"balance"`
	Version      int64     `db:"version" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Session is the resolved identity of an authenticated caller
type Session struct {
	AccountID uuid.UUID
	Username  string
	Email     string
	IsAdmin   bool
}

// BalanceChange is the result of a single atomic balance write
type BalanceChange struct {
	AccountID uuid.UUID
	Before    int64
	After     int64
	Version   int64
}

// Delta returns the signed change applied to the balance
func (c BalanceChange) Delta() int64 {
	return c.After - c.Before
}

// AdjustDirection is the direction of an administrative balance adjustment
type AdjustDirection string

const (
	AdjustAdd      AdjustDirection = "add"
	AdjustSubtract AdjustDirection = "subtract"
)

// Valid reports whether the direction is one of the known values
func (d AdjustDirection) Valid() bool {
	return d == AdjustAdd || d == AdjustSubtract
}
