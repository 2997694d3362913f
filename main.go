package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ledgerly/config"
	"ledgerly/handlers"
	"ledgerly/logging"
	"ledgerly/mailer"
	"ledgerly/services"
	"ledgerly/storage"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout   = 15 * time.Second
	readHeaderTimeout = 10 * time.Second
)

func main() {
	export := flag.Bool("export", false, "print all subscribers as JSON and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Export owns stdout, so its logs go to stderr.
	logOut := os.Stdout
	if *export {
		logOut = os.Stderr
	}
	log := logging.New(cfg.Environment, cfg.LogLevel, logOut)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *export {
		err = runExport(ctx, cfg, log, os.Stdout)
	} else {
		err = run(ctx, cfg, log)
	}
	if err != nil {
		log.Error("ledgerly stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	store, err := storage.Open(ctx, cfg.Store, log)
	if err != nil {
		return fmt.Errorf("failed to open subscriber store: %w", err)
	}
	defer store.Close()

	sender, err := mailer.Open(cfg.Mail, log)
	if err != nil {
		return fmt.Errorf("failed to set up mail transport: %w", err)
	}
	log.Info("mail transport ready", "transport", cfg.Mail.Transport)

	notifier := services.NewWelcomeNotifier(sender, services.WelcomeContent{
		Product:   "Ledgerly",
		SurveyURL: cfg.Mail.SurveyURL,
		Signature: "The " + cfg.Mail.FromName,
	}, log)
	// In-flight welcome emails finish before the store is closed.
	defer notifier.Wait()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(store, notifier, log),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, draining connections")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server gracefully stopped")
	return nil
}

// runExport writes every stored subscriber to w as an indented JSON array.
func runExport(ctx context.Context, cfg config.Config, log *slog.Logger, w io.Writer) error {
	store, err := storage.Open(ctx, cfg.Store, log)
	if err != nil {
		return fmt.Errorf("failed to open subscriber store: %w", err)
	}
	defer store.Close()

	subs, err := store.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to load subscribers: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(subs)
}
