package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/keyvault/internal/audit"
	"github.com/dmitrijs2005/keyvault/internal/config"
	"github.com/dmitrijs2005/keyvault/internal/cryptox"
	"github.com/dmitrijs2005/keyvault/internal/filex"
	"github.com/dmitrijs2005/keyvault/internal/logging"
	"github.com/dmitrijs2005/keyvault/internal/session"
	"github.com/dmitrijs2005/keyvault/internal/store"
)

type App struct {
	config  *config.Config
	log     logging.Logger
	session *session.Session
	journal *audit.Journal
	reader  *bufio.Reader
	out     io.Writer
}

// NewApp wires an App reading from stdin and writing to stdout, logging to
// stderr at the configured level.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	return newApp(ctx, c, os.Stdin, os.Stdout, logging.New(os.Stderr, c.LogLevel), cryptox.DefaultKDF)
}

func newApp(ctx context.Context, c *config.Config, in io.Reader, out io.Writer, log logging.Logger, kdf cryptox.KDF) (*App, error) {
	if _, err := filex.EnsureDir(c.DataDir); err != nil {
		return nil, fmt.Errorf("prepare data dir: %w", err)
	}

	var recorder audit.Recorder = audit.Nop{}
	journal, err := audit.Open(ctx, c.AuditPath())
	if err != nil {
		log.Warn(ctx, "audit journal unavailable", "path", c.AuditPath(), "error", err)
		journal = nil
	} else {
		recorder = journal
		pruneJournal(ctx, journal, c.AuditRetentionDays, log)
	}

	st := store.New(c.VaultPath(), c.SaltPath())
	sess, err := session.Open(ctx, st,
		session.WithKDF(kdf),
		session.WithLogger(log),
		session.WithRecorder(recorder),
	)
	if err != nil {
		if journal != nil {
			_ = journal.Close()
		}
		return nil, err
	}

	return &App{
		config:  c,
		log:     log,
		session: sess,
		journal: journal,
		reader:  bufio.NewReader(in),
		out:     out,
	}, nil
}

// pruneJournal drops events older than the retention window. Zero days
// keeps everything; failures are logged and otherwise ignored.
func pruneJournal(ctx context.Context, j *audit.Journal, days int, log logging.Logger) {
	if days <= 0 {
		return
	}
	n, err := j.Purge(ctx, time.Now().AddDate(0, 0, -days))
	if err != nil {
		log.Warn(ctx, "audit purge failed", "error", err)
		return
	}
	if n > 0 {
		log.Debug(ctx, "audit events purged", "count", n, "retention_days", days)
	}
}

// Run authenticates the user and then serves commands until they quit.
// It returns common.ErrAuth when the master password is wrong.
func (a *App) Run(ctx context.Context) error {
	defer a.Close(ctx)

	fmt.Fprintln(a.out, "Welcome to keyvault (type 'help' for commands)")
	if err := a.authenticate(ctx); err != nil {
		return err
	}

	runREPL(ctx, a, a.reader, a.out)
	return nil
}

// Close locks the session and closes the audit journal.
func (a *App) Close(ctx context.Context) {
	a.session.Close(ctx)
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			a.log.Warn(ctx, "close audit journal", "error", err)
		}
		a.journal = nil
	}
}
