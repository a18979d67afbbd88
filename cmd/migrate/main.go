package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	flag "github.com/spf13/pflag"

	"github.com/clipsight/clipsight/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var (
		databaseURL = flag.String("url", "", "Postgres connection URL (defaults to DATABASE_URL)")
		recreate    = flag.Bool("recreate", false, "Drop all tables before migrating")
	)
	flag.Parse()

	_ = godotenv.Load(".env")

	url := *databaseURL
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	log := slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelInfo}))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pool, err := store.NewPool(ctx, url)
	if err != nil {
		return err
	}
	defer pool.Close()

	if *recreate {
		log.Warn("dropping existing schema")
		if err := store.DropSchema(ctx, pool); err != nil {
			return err
		}
	}

	if err := store.RunMigrations(ctx, log, pool); err != nil {
		return err
	}
	log.Info("migrations applied")
	return nil
}
