// Package server wires the HTTP front end: it opens the configured store,
// builds the signup and login flows over it and serves them until a
// termination signal arrives.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/userforms/internal/kv"
	"github.com/dmitrijs2005/userforms/internal/logging"
	"github.com/dmitrijs2005/userforms/internal/login"
	"github.com/dmitrijs2005/userforms/internal/password"
	"github.com/dmitrijs2005/userforms/internal/server/config"
	"github.com/dmitrijs2005/userforms/internal/server/httpapi"
	"github.com/dmitrijs2005/userforms/internal/signup"
	"github.com/dmitrijs2005/userforms/internal/users"
)

type App struct {
	config *config.Config
	logger logging.Logger
	closer io.Closer
	server *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogFormat, c.LogLevel, os.Stdout)
	if err != nil {
		return nil, err
	}

	hasher, err := password.New(c.Hasher)
	if err != nil {
		return nil, err
	}

	store, closer, err := kv.Open(ctx, c.StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	return newApp(c, logger, users.NewKVRepository(store), hasher, closer), nil
}

func newApp(c *config.Config, logger logging.Logger, repo users.Repository, hasher password.Hasher, closer io.Closer) *App {
	h := httpapi.NewHandler(
		signup.NewFlow(repo, hasher, logger),
		login.NewFlow(repo, hasher, logger),
		logger, c.SecretKey, c.TokenTTL,
	)
	router := httpapi.NewRouter(h, httpapi.RouterOptions{
		AllowedOrigins: c.CORSOrigins,
		RequestTimeout: c.RequestTimeout,
	})

	return &App{
		config: c,
		logger: logger,
		closer: closer,
		server: httpapi.NewServer(c.Address, router, logger, c.ShutdownTimeout),
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled, a termination signal arrives or the
// server fails. The store is closed on return.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "address", app.config.Address, "backend", app.config.Backend)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if app.closer != nil {
		if err := app.closer.Close(); err != nil {
			app.logger.Error(ctx, "closing store", "error", err)
		}
	}
	app.logger.Info(ctx, "App stopped")
}
