// Command pdfchat-devserver serves the conversation backend API from a local
// sqlite database, answering with a configurable provider.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pdfchat/config"
	"pdfchat/devserver"
	"pdfchat/provider"
	"pdfchat/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "pdfchat-devserver: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	addr := flag.String("addr", cfg.DevServer.Addr, "listen address")
	dbPath := flag.String("db", cfg.DevServerDBPath(), "sqlite database path")
	providerID := flag.String("provider", cfg.DevServer.Provider, "answer provider: echo, ollama, openrouter, openai, anthropic")
	verbose := flag.Bool("verbose", config.CheckDebug(), "log at debug level")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	st, err := storage.Open(*dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	answerer, err := provider.NewAnswerer(provider.Config{
		Type:    provider.MapProviderIDToType(*providerID),
		BaseURL: cfg.DevServer.BaseURL,
		Model:   cfg.DevServer.Model,
		APIKey:  cfg.DevServer.APIKey,
	})
	if err != nil {
		return fmt.Errorf("failed to create answer provider: %w", err)
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           devserver.New(st, answerer, devserver.WithLogger(logger)).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", *addr, "db", *dbPath, "provider", answerer.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
