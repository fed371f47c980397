package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"pointsgame/config"
	"pointsgame/database"
	"pointsgame/events"
	"pointsgame/games"
	"pointsgame/repository"
	"pointsgame/service"
)

// ConfigureLogging sets the global logrus level and formatter
func ConfigureLogging(level, format string) error {
	if level == "" {
		level = "info"
	}
	parsed, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	log.SetLevel(parsed)

	switch strings.ToLower(format) {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	case "", "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("invalid log format %q", format)
	}
	return nil
}

// Promote grants the admin flag to the account registered with email
func Promote(ctx context.Context, email string, admin bool) error {
	cfg := config.Get()
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	return setAdmin(ctx, repository.NewUnitOfWorkFactory(db, events.NewBus()), email, admin)
}

func setAdmin(ctx context.Context, uowFactory service.UnitOfWorkFactory, email string, admin bool) error {
	uow := uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return service.ErrAccountNotFound
	}

	if err := uow.AccountRepository().SetAdmin(ctx, account.ID, admin); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"account_id": account.ID,
		"username":   account.Username,
		"admin":      admin,
	}).Info("Updated admin flag")
	return nil
}

// Simulate plays every game trials times and prints the return analysis
func Simulate(w io.Writer, trials int, seed int64, dieBet int64) {
	if w == nil {
		w = os.Stdout
	}
	src := games.NewSource(seed)
	games.WriteReport(w,
		games.SimulateReel(src, trials),
		games.SimulateDie(src, trials, dieBet),
		games.SimulateGrid(src, trials),
	)
}
