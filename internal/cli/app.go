package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/existflow/scic/internal/api"
	"github.com/existflow/scic/internal/logger"
	"github.com/existflow/scic/internal/session"
	"github.com/existflow/scic/internal/storage"
)

// app bundles what a command needs to talk to the backend
type app struct {
	store  session.Store
	closer io.Closer
	guard  *session.Guard
	client *api.Client
}

// openApp wires the session store, cookie jar, guard and API client from cfg
func openApp(cmd *cobra.Command) (*app, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, closer, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	log := logger.Global()
	jar := session.NewCookieJar(store, log)
	httpClient := &http.Client{Jar: jar, Timeout: cfg.API.Timeout}

	a := &app{store: store, closer: closer}
	a.guard = session.NewGuard(store, httpClient,
		session.WithTTL(cfg.Session.TTL),
		session.WithLogoutURL(cfg.API.URL(cfg.API.LogoutPath)),
		session.WithCookieJar(jar),
		session.WithOnEnd(func() { logger.Info("Session ended, admin commands need a new login") }),
		session.WithLogger(log),
	)
	a.client = api.New(cfg.API, a.guard, httpClient).WithLogger(log)

	logger.Debug("Session store opened", logger.F("driver", cfg.Storage.Driver))
	return a, nil
}

// Close waits for a pending logout notification and releases the store
func (a *app) Close() {
	a.guard.Wait()
	if err := a.closer.Close(); err != nil {
		logger.Warn("Failed to close session store", logger.F("error", err))
	}
}

// withApp runs fn with a wired app and closes it afterwards
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, a)
}
