package cmd

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"pointsgame/api"
	"pointsgame/config"
	"pointsgame/database"
	"pointsgame/events"
	"pointsgame/games"
	"pointsgame/jobs"
	"pointsgame/ratelimit"
	"pointsgame/repository"
	"pointsgame/service"
)

// Run initializes and starts the HTTP server, blocking until ctx is cancelled
func Run(ctx context.Context) error {
	cfg := config.Get()
	log.WithField("environment", cfg.Environment).Info("Starting pointsgame server...")

	log.Info("Connecting to database...")
	db, err := database.NewConnectionWithMaxConns(ctx, cfg.GetDatabaseURL(), cfg.DBMaxConns)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("Closing database connection...")
		db.Close()
	}()

	if err := database.RunMigrationsWithURL(cfg.GetDatabaseURL()); err != nil {
		return err
	}
	log.Info("Database ready")

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	if cfg.NATSServers != "" {
		natsClient, err := connectNATS(ctx, cfg.NATSServers)
		if err != nil {
			return err
		}
		defer natsClient.Close()
		events.NewForwarder(natsClient).Attach(eventBus)
	}

	limiter := ratelimit.New()
	defer limiter.Close()

	ledger := service.NewLedgerService(uowFactory)
	analytics := service.NewAnalyticsService(uowFactory)
	services := api.Services{
		Auth:      service.NewAuthService(uowFactory),
		Games:     service.NewGameService(uowFactory, ledger, limiter, games.NewTimeSource()),
		Catalog:   service.NewCatalogService(uowFactory, ledger),
		Analytics: analytics,
		Admin:     service.NewAdminService(uowFactory, ledger, analytics),
		Timer:     service.NewTimerService(ledger),
	}

	hub := api.NewLiveHub()
	hub.Attach(eventBus)

	scheduler := jobs.NewScheduler(uowFactory, analytics)
	if err := scheduler.Start(ctx); err != nil {
		return err
	}
	defer scheduler.Stop()

	server := api.NewServer(cfg, services, db, hub)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Shutdown timeout exceeded")
		return nil
	}
	log.Info("Shutdown completed")
	return nil
}

func connectNATS(ctx context.Context, servers string) (*events.NATSClient, error) {
	log.WithField("servers", servers).Info("Connecting to NATS...")

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := events.NewNATSClient(servers)
	if err := client.Connect(connectCtx); err != nil {
		return nil, err
	}
	if err := client.EnsureStream(events.AllSubjects()); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}
