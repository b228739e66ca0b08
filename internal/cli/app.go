package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/securefin/internal/models"
	"github.com/dmitrijs2005/securefin/internal/session"
)

// UserDirectory is the user-facing part of services.UserService.
type UserDirectory interface {
	Register(ctx context.Context, username, email, password string) error
	Authenticate(ctx context.Context, username, password string) error
	GetProfile(ctx context.Context, username string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, username, email string, doc map[string]any) error
	UpdateEmail(ctx context.Context, username, email string) error
	UpdateSensitive(ctx context.Context, username, value string) error
	RecordActivity(ctx context.Context, username, action string)
}

// FileVault is the user-facing part of services.FileService.
type FileVault interface {
	Enabled() bool
	Upload(ctx context.Context, username, name string, data []byte) (*models.StoredFile, error)
	List(ctx context.Context, username string) ([]*models.StoredFile, error)
	Download(ctx context.Context, username, key string) ([]byte, error)
	ShareURL(ctx context.Context, username, key string, ttl time.Duration) (string, error)
}

// Ledger is the user-facing part of services.TransactionService.
type Ledger interface {
	Add(ctx context.Context, username, amount, note, secret string) (*models.Transaction, error)
	List(ctx context.Context, username string) ([]*models.Transaction, error)
	Reveal(sealed, secret string) (string, error)
}

// App is one interactive shell bound to a single session.
type App struct {
	users       UserDirectory
	files       FileVault
	ledger      Ledger
	sessions    *session.Manager
	session     *session.Session
	activityLog string
	in          *bufio.Reader
	out         io.Writer
}

// NewApp builds a shell for sess reading from stdin and writing to stdout.
// activityLog is the path read by the "logs" command.
func NewApp(users UserDirectory, files FileVault, ledger Ledger, sessions *session.Manager, sess *session.Session, activityLog string) *App {
	return &App{
		users:       users,
		files:       files,
		ledger:      ledger,
		sessions:    sessions,
		session:     sess,
		activityLog: activityLog,
		in:          bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.LoggedIn()
}

func (a *App) userName() string {
	return a.session.UserName
}

func (a *App) status() string {
	if a.isLoggedIn() {
		return a.userName()
	}
	return "guest"
}

// Run starts the REPL and blocks until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	printlnFn("Welcome to SecureFin (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.in)
}
