package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	_ "net/http/pprof"

	"github.com/clipsight/clipsight/internal/answer"
	"github.com/clipsight/clipsight/internal/bot"
	"github.com/clipsight/clipsight/internal/intent"
	"github.com/clipsight/clipsight/internal/store"
)

var (
	// Set by LDFLAGS
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const defaultMetricsAddr = ":8080"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var (
		metricsAddr = flag.String("metrics-addr", defaultMetricsAddr, "Prometheus metrics listen address (empty disables)")
		verbose     = flag.Bool("verbose", false, "Enable debug logging")
		enablePprof = flag.Bool("pprof", false, "Enable the pprof server on localhost:6060")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("version: %s, commit: %s, date: %s\n", version, commit, date)
		return nil
	}

	_ = godotenv.Load(".env")

	cfg, err := bot.LoadFromEnv(*metricsAddr, *verbose, *enablePprof)
	if err != nil {
		return err
	}

	log := newLogger(cfg.Verbose)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.EnablePprof {
		go func() {
			log.Info("starting pprof server", "address", "localhost:6060")
			if err := http.ListenAndServe("localhost:6060", nil); err != nil {
				log.Error("failed to start pprof server", "error", err)
			}
		}()
	}

	pool, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	producers := []intent.Producer{intent.NewRules()}
	if cfg.LLMEnabled {
		llm := intent.NewLLM(intent.LLMConfig{
			APIKey:  cfg.AnthropicAPIKey,
			Model:   cfg.LLMModel,
			BaseURL: cfg.LLMBaseURL,
			Timeout: cfg.LLMTimeout,
		}, log)
		// The LLM goes first; the rule extractor backs it on any failure.
		producers = []intent.Producer{llm, intent.NewRules()}
		log.Info("llm intent producer enabled", "model", cfg.LLMModel, "timeout", cfg.LLMTimeout)
	}

	answerer := answer.New(producers, store.NewExecutor(pool), log)

	tg, err := bot.New(cfg.TelegramToken, answerer, log)
	if err != nil {
		return fmt.Errorf("telegram api: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	if cfg.MetricsAddr != "" {
		listener, err := net.Listen("tcp", cfg.MetricsAddr)
		if err != nil {
			return fmt.Errorf("metrics listener: %w", err)
		}
		log.Info("prometheus metrics server listening", "address", listener.Addr().String())
		g.Go(func() error {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			srv := &http.Server{Handler: mux}
			go func() {
				<-ctx.Done()
				_ = srv.Close()
			}()
			if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		return tg.Run(ctx)
	})

	return g.Wait()
}

func newLogger(verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: logLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.TimeValue(a.Value.Time().UTC())
			}
			return a
		},
	}))
}
