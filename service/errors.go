package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Domain errors shared by every service
var (
	ErrUnauthenticated   = errors.New("not authenticated")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrAccountNotFound   = errors.New("account not found")
	ErrItemNotFound      = errors.New("item not found")
	ErrInsufficientFunds = errors.New("insufficient points")
	ErrItemNotOwned      = errors.New("item not in inventory")
	ErrNoUsesRemaining   = errors.New("no remaining uses for this item")
	ErrInvalidInput      = errors.New("invalid input")
)

// Identity errors
var (
	ErrAccountExists      = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
)

// invalidInput wraps ErrInvalidInput with a reason
func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// RateLimitedError is returned when a caller exceeded a game's window
type RateLimitedError struct {
	Action  string
	ResetAt time.Time
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s, retry after %s", e.Action, e.ResetAt.UTC().Format(time.RFC3339))
}

// PartialSabotageError reports that the attacker was charged but the target side failed
type PartialSabotageError struct {
	AttackerID         uuid.UUID
	TargetID           uuid.UUID
	ItemID             string
	At                 time.Time
	AttackerNewBalance int64
	Err                error
}

func (e *PartialSabotageError) Error() string {
	return fmt.Sprintf("sabotage %s on %s charged attacker %s but was not applied: %v", e.ItemID, e.TargetID, e.AttackerID, e.Err)
}

func (e *PartialSabotageError) Unwrap() error {
	return e.Err
}

// ErrorKind is the stable classification exposed to clients
type ErrorKind string

const (
	KindUnauthenticated    ErrorKind = "Unauthenticated"
	KindPermissionDenied   ErrorKind = "PermissionDenied"
	KindAccountNotFound    ErrorKind = "AccountNotFound"
	KindItemNotFound       ErrorKind = "ItemNotFound"
	KindInsufficientFunds  ErrorKind = "InsufficientFunds"
	KindItemNotOwned       ErrorKind = "ItemNotOwned"
	KindNoUsesRemaining    ErrorKind = "NoUsesRemaining"
	KindInvalidInput       ErrorKind = "InvalidInput"
	KindRateLimited        ErrorKind = "RateLimited"
	KindPartialSabotage    ErrorKind = "PartialSabotageApplication"
	KindAccountExists      ErrorKind = "AccountExists"
	KindInvalidCredentials ErrorKind = "InvalidCredentials"
	KindAccountDisabled    ErrorKind = "AccountDisabled"
	KindInternal           ErrorKind = "Internal"
)

var sentinelKinds = []struct {
	err  error
	kind ErrorKind
}{
	{ErrUnauthenticated, KindUnauthenticated},
	{ErrPermissionDenied, KindPermissionDenied},
	{ErrAccountNotFound, KindAccountNotFound},
	{ErrItemNotFound, KindItemNotFound},
	{ErrInsufficientFunds, KindInsufficientFunds},
	{ErrItemNotOwned, KindItemNotOwned},
	{ErrNoUsesRemaining, KindNoUsesRemaining},
	{ErrInvalidInput, KindInvalidInput},
	{ErrAccountExists, KindAccountExists},
	{ErrInvalidCredentials, KindInvalidCredentials},
	{ErrAccountDisabled, KindAccountDisabled},
}

// KindOf classifies err. Typed errors win over any sentinel they wrap.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var partial *PartialSabotageError
	if errors.As(err, &partial) {
		return KindPartialSabotage
	}
	var limited *RateLimitedError
	if errors.As(err, &limited) {
		return KindRateLimited
	}

	for _, s := range sentinelKinds {
		if errors.Is(err, s.err) {
			return s.kind
		}
	}
	return KindInternal
}
