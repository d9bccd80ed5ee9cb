package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dmitrijs2005/userforms/internal/client/config"
	"github.com/dmitrijs2005/userforms/internal/kv"
	"github.com/dmitrijs2005/userforms/internal/logging"
	"github.com/dmitrijs2005/userforms/internal/login"
	"github.com/dmitrijs2005/userforms/internal/models"
	"github.com/dmitrijs2005/userforms/internal/password"
	"github.com/dmitrijs2005/userforms/internal/signup"
	"github.com/dmitrijs2005/userforms/internal/users"
	"github.com/google/uuid"
)

type App struct {
	config *config.Config
	signup *signup.Flow
	login  *login.Flow
	logger logging.Logger
	closer io.Closer

	reader *bufio.Reader
	out    io.Writer

	current *models.UserRecord
}

// NewApp opens the configured store and builds both flows over it. Log
// lines go to stderr and carry a per-session id.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogFormat, c.LogLevel, os.Stderr)
	if err != nil {
		return nil, err
	}
	logger = logger.With("session", uuid.NewString())

	hasher, err := password.New(c.Hasher)
	if err != nil {
		return nil, err
	}

	store, closer, err := kv.Open(ctx, c.StoreOptions())
	if err != nil {
		log.Printf("error opening %s store: %s", c.Backend, err.Error())
		return nil, err
	}

	a := newApp(c, users.NewKVRepository(store), hasher, logger, bufio.NewReader(os.Stdin), os.Stdout)
	a.closer = closer
	return a, nil
}

func newApp(c *config.Config, repo users.Repository, hasher password.Hasher, logger logging.Logger, r *bufio.Reader, w io.Writer) *App {
	return &App{
		config: c,
		signup: signup.NewFlow(repo, hasher, logger),
		login:  login.NewFlow(repo, hasher, logger),
		logger: logger,
		reader: r,
		out:    w,
	}
}

// Run loads the stored users and runs the REPL until the user exits or
// input ends. The store is closed on return.
func (a *App) Run(ctx context.Context) {
	if a.closer != nil {
		defer a.closer.Close()
	}

	fmt.Fprintln(a.out, "Welcome to userforms (type 'help' for commands)")

	if _, err := a.signup.LoadAll(ctx); err != nil {
		log.Printf("error: %v", err)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

// withTimeout bounds one command's store access by the configured timeout.
func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config == nil || a.config.OpTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.OpTimeout)
}

func (a *App) getStatus() string {
	s := ""
	if a.current != nil {
		s = a.current.Email
	}
	if i, ok := a.signup.EditingIndex(); ok {
		if s != "" {
			s += " "
		}
		s += fmt.Sprintf("editing #%d", i+1)
	}
	if s != "" {
		s = fmt.Sprintf("(%s) ", s)
	}
	return s
}
