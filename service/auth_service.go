package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"pointsgame/config"
	"pointsgame/events"
	"pointsgame/models"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const (
	minUsernameLength = 3
	maxUsernameLength = 32
	minPasswordLength = 8
)

// SessionClaims are the JWT claims carried by the session cookie
type SessionClaims struct {
	jwt.RegisteredClaims
	AccountID string `json:"account_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"is_admin"`
}

type authService struct {
	uowFactory UnitOfWorkFactory
	now        func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(uowFactory UnitOfWorkFactory) AuthService {
	return &authService{
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

func (s *authService) Register(ctx context.Context, username, email, password string) (*models.Account, string, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if n := utf8.RuneCountInString(username); n < minUsernameLength || n > maxUsernameLength {
		return nil, "", invalidInput("username must be between %d and %d characters", minUsernameLength, maxUsernameLength)
	}
	if !emailRegex.MatchString(email) {
		return nil, "", invalidInput("email address is not valid")
	}
	if len(password) < minPasswordLength {
		return nil, "", invalidInput("password must be at least %d characters", minPasswordLength)
	}

	cfg := config.Get()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	exists, err := uow.AccountRepository().ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing accounts: %w", err)
	}
	if exists {
		return nil, "", ErrAccountExists
	}

	account := &models.Account{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     true,
		Balance:      cfg.StartingBalance,
	}
	if err := uow.AccountRepository().Create(ctx, account); err != nil {
		return nil, "", fmt.Errorf("failed to create account: %w", err)
	}

	items, err := uow.ItemRepository().List(ctx, ItemFilter{ActiveOnly: true})
	if err != nil {
		return nil, "", fmt.Errorf("failed to list items: %w", err)
	}
	if _, err := uow.InventoryRepository().Replace(ctx, account.ID, items); err != nil {
		return nil, "", fmt.Errorf("failed to seed inventory: %w", err)
	}

	uow.EventBus().Publish(events.AccountCreatedEvent{
		AccountID:      account.ID,
		Username:       account.Username,
		InitialBalance: account.Balance,
	})

	if err := uow.Commit(); err != nil {
		return nil, "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	token, err := s.issueToken(account, cfg.SessionTTL)
	if err != nil {
		return nil, "", err
	}

	log.WithFields(log.Fields{
		"account_id": account.ID,
		"username":   account.Username,
	}).Info("Account registered")

	return account, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string, rememberMe bool) (*models.Account, string, time.Duration, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", 0, invalidInput("email and password are required")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, "", 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByEmail(ctx, email)
	if err != nil {
		return nil, "", 0, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, "", 0, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, "", 0, ErrInvalidCredentials
	}
	if !account.IsActive {
		return nil, "", 0, ErrAccountDisabled
	}

	cfg := config.Get()
	ttl := cfg.SessionTTL
	if rememberMe {
		ttl = cfg.RememberMeTTL
	}

	token, err := s.issueToken(account, ttl)
	if err != nil {
		return nil, "", 0, err
	}
	return account, token, ttl, nil
}

func (s *authService) ParseToken(tokenString string) (*models.Session, error) {
	if tokenString == "" {
		return nil, ErrUnauthenticated
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(config.Get().JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrUnauthenticated
	}

	id, err := uuid.Parse(claims.AccountID)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	return &models.Session{
		AccountID: id,
		Username:  claims.Username,
		Email:     claims.Email,
		IsAdmin:   claims.IsAdmin,
	}, nil
}

func (s *authService) Me(ctx context.Context, accountID uuid.UUID) (*models.Account, []*models.InventoryView, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, nil, ErrUnauthenticated
	}
	if !account.IsActive {
		return nil, nil, ErrAccountDisabled
	}

	views, err := loadInventoryView(ctx, uow, accountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, nil, ErrUnauthenticated
		}
		return nil, nil, err
	}
	return account, views, nil
}

func (s *authService) issueToken(account *models.Account, ttl time.Duration) (string, error) {
	now := s.now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		AccountID: account.ID.String(),
		Username:  account.Username,
		Email:     account.Email,
		IsAdmin:   account.IsAdmin,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(config.Get().JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}
