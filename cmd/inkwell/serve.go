package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/inkwell-news/inkwell/internal/config"
	httpapp "github.com/inkwell-news/inkwell/internal/http"
	"github.com/inkwell-news/inkwell/internal/identity"
	"github.com/inkwell-news/inkwell/internal/store/sqlite"
)

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()
	log := logger.Sugar()

	// Startup-time failures are fatal: the process refuses to serve with a
	// broken dependency.
	creds, err := identity.LoadCredentials(cfg.IdentityCredentials)
	if err != nil {
		return fmt.Errorf("identity credentials: %w", err)
	}

	st, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer st.Close()

	verifier := identity.NewService(cfg.IdentityURL, creds, cfg.VerifyTimeout)
	server := httpapp.NewServer(st, verifier, cfg, log)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("listening", "addr", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	log.Infow("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(ctx)
}
