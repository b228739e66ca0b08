// Package engine wires the SecureFin components together: storage, the
// encryption key, password hashing, the activity log, the optional file
// vault and the interactive shell.
package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dmitrijs2005/securefin/internal/activity"
	"github.com/dmitrijs2005/securefin/internal/cli"
	"github.com/dmitrijs2005/securefin/internal/common"
	"github.com/dmitrijs2005/securefin/internal/config"
	"github.com/dmitrijs2005/securefin/internal/cryptox"
	"github.com/dmitrijs2005/securefin/internal/dbx"
	"github.com/dmitrijs2005/securefin/internal/filex"
	"github.com/dmitrijs2005/securefin/internal/hasher"
	"github.com/dmitrijs2005/securefin/internal/keystore"
	"github.com/dmitrijs2005/securefin/internal/logging"
	"github.com/dmitrijs2005/securefin/internal/objectstore"
	"github.com/dmitrijs2005/securefin/internal/repositories/repomanager"
	"github.com/dmitrijs2005/securefin/internal/services"
	"github.com/dmitrijs2005/securefin/internal/session"
)

// newObjectStore is a test seam for objectstore.NewS3Store.
var newObjectStore = func(ctx context.Context, cfg objectstore.S3Config) (objectstore.Store, error) {
	return objectstore.NewS3Store(ctx, cfg)
}

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	userService *services.UserService
	fileService *services.FileService
	txService   *services.TransactionService
	sessions    *session.Manager
	store       *session.Store
}

// NewApp opens storage, loads or creates the encryption key and builds the
// services. Logs go to logOut. The caller must Close the App.
func NewApp(ctx context.Context, c *config.Config, logOut io.Writer) (*App, error) {
	logger := logging.New(logOut, c.LogLevel, c.LogFormat)

	keyExists, err := filex.Exists(c.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("key init error: %w", err)
	}
	key, err := keystore.GetOrCreate(c.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("key init error: %w", err)
	}
	cipher, err := cryptox.NewCipher(key)
	common.WipeByteArray(key)
	if err != nil {
		return nil, fmt.Errorf("cipher init error: %w", err)
	}
	if !keyExists {
		logger.Info(ctx, "generated new encryption key", "path", c.KeyFile)
	}

	h, ok := hasher.FromConfig(c.HashAlgorithm, hasher.Options{
		BcryptCost:       c.BcryptCost,
		PBKDF2Iterations: c.PBKDF2Iterations,
		Argon2:           hasher.DefaultArgon2Params,
	})
	if !ok {
		logger.Warn(ctx, "unknown hash algorithm, falling back", "requested", c.HashAlgorithm, "using", h.Algorithm())
	}

	if c.DatabaseDriver == dbx.DriverSQLite && isSQLiteFilePath(c.DatabaseDSN) {
		if err := filex.EnsureParentDir(c.DatabaseDSN); err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
	}

	db, err := dbx.Open(ctx, c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.New(c.DatabaseDriver)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	if err := filex.EnsureParentDir(c.ActivityLogFile); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("activity log init error: %w", err)
	}
	sink := activity.NewFileSink(c.ActivityLogFile)

	var store objectstore.Store
	s3cfg := objectstore.S3Config{
		Region:       c.S3Region,
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
		Bucket:       c.S3Bucket,
		BaseEndpoint: c.S3BaseEndpoint,
	}
	switch st, err := newObjectStore(ctx, s3cfg); {
	case err == nil:
		store = st
	case errors.Is(err, common.ErrorDisabled):
		logger.Info(ctx, "file vault disabled, no bucket configured")
	default:
		logger.Warn(ctx, "file vault unavailable", "error", err)
	}

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		userService: services.NewUserService(db, rm, h, cipher, sink, logger),
		fileService: services.NewFileService(store, cipher, sink, logger),
		txService:   services.NewTransactionService(db, rm, sink, logger),
		sessions:    session.NewManager(c.SessionTimeout),
		store:       session.NewStore(),
	}, nil
}

// isSQLiteFilePath reports whether dsn names a plain file rather than a URI
// or an in-memory database.
func isSQLiteFilePath(dsn string) bool {
	return dsn != ":memory:" && !strings.HasPrefix(dsn, "file:")
}

// runShell is a test seam for cli.App.Run.
var runShell = func(ctx context.Context, shell *cli.App) {
	shell.Run(ctx)
}

// initSignalHandler cancels the run on SIGINT or SIGTERM. The returned
// function stops signal delivery.
func (app *App) initSignalHandler(cancelFunc context.CancelFunc) func() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if _, ok := <-sigs; ok {
			cancelFunc()
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(sigs)
	}
}

// Run starts the shell and blocks until the user leaves it or ctx is
// canceled (also on SIGINT/SIGTERM). The shell may still be blocked reading
// stdin when Run returns on cancellation; the caller is expected to Close
// the App and exit.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting SecureFin...", "driver", app.config.DatabaseDriver, "hash", app.config.HashAlgorithm)

	stop := app.initSignalHandler(cancelFunc)
	defer stop()

	sess := app.store.New()
	defer app.store.Delete(sess.ID)

	shell := cli.NewApp(app.userService, app.fileService, app.txService, app.sessions, sess, app.config.ActivityLogFile)

	done := make(chan struct{})
	go func() {
		defer close(done)
		runShell(ctx, shell)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		app.logger.Info(context.Background(), "Shutting down...")
	}
}

func (app *App) Close() error {
	return app.db.Close()
}
