package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	log "github.com/sirupsen/logrus"

	"pointsgame/cmd"
	"pointsgame/database"
)

func main() {
	if err := cmd.ConfigureLogging(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT")); err != nil {
		log.Fatal("Logging error: ", err)
	}

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			if err := handleMigrationCommand(); err != nil {
				log.Fatal("Migration error: ", err)
			}
			return
		case "simulate":
			if err := handleSimulateCommand(); err != nil {
				log.Fatal("Simulation error: ", err)
			}
			return
		case "promote", "demote":
			if len(os.Args) < 3 {
				log.Fatalf("usage: pointsgame %s email", os.Args[1])
			}
			if err := cmd.Promote(context.Background(), os.Args[2], os.Args[1] == "promote"); err != nil {
				log.Fatal("Promote error: ", err)
			}
			return
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	if err := cmd.Run(ctx); err != nil {
		log.Fatal("Application error: ", err)
	}
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: pointsgame migrate [up|down|status] [args...]")
	}

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}

// handleSimulateCommand parses: simulate [trials] [seed] [die-bet]
func handleSimulateCommand() error {
	values := []int64{1_000_000, 1, 10}
	for i, arg := range os.Args[2:] {
		if i >= len(values) {
			break
		}
		n, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || n <= 0 {
			return fmt.Errorf("usage: pointsgame simulate [trials] [seed] [die-bet]")
		}
		values[i] = n
	}

	cmd.Simulate(os.Stdout, int(values[0]), values[1], values[2])
	return nil
}
