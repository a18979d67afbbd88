package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

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
		path        = flag.String("path", "", "Path to the dataset JSON file")
		datasetURL  = flag.String("from-url", "", "HTTP(S) URL of the dataset JSON")
		databaseURL = flag.String("url", "", "Postgres connection URL (defaults to DATABASE_URL)")
		truncate    = flag.Bool("truncate", false, "Empty both tables before loading")
		batchSize   = flag.Int("batch-size", 1000, "Rows per insert batch")
	)
	flag.Parse()

	if (*path == "") == (*datasetURL == "") {
		return fmt.Errorf("exactly one of --path or --from-url is required")
	}

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

	data, source, err := readDataset(ctx, *path, *datasetURL)
	if err != nil {
		return err
	}
	videos, err := store.ParseDataset(data)
	if err != nil {
		return err
	}
	log.Info("dataset parsed", "source", source, "videos", len(videos))

	pool, err := store.NewPool(ctx, url)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := store.RunMigrations(ctx, log, pool); err != nil {
		return err
	}

	return store.LoadDataset(ctx, log, pool, videos, store.LoadOptions{
		Truncate:  *truncate,
		BatchSize: *batchSize,
	})
}

// readDataset reads the dataset payload from a local file or over HTTP.
func readDataset(ctx context.Context, path, datasetURL string) ([]byte, string, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("read dataset: %w", err)
		}
		return data, path, nil
	}

	reqCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, datasetURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("fetch dataset: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch dataset: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch dataset: unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("fetch dataset: %w", err)
	}
	return data, datasetURL, nil
}
