// Package session tracks login state per actor and enforces the idle timeout.
//
// There is no background timer: expiry is detected lazily by Check, which the
// caller runs before every command. A Session belongs to a single actor and
// is not safe for concurrent use; Store is.
package session

import (
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout is the idle period after which a session expires.
const DefaultTimeout = 300 * time.Second

type State int

const (
	LoggedOut State = iota
	LoggedIn
)

func (s State) String() string {
	if s == LoggedIn {
		return "logged_in"
	}
	return "logged_out"
}

// Session is the login state of one actor.
type Session struct {
	ID           string
	UserName     string
	LoginAt      time.Time
	LastActivity time.Time
	State        State
}

// NewSession returns a logged-out session with a fresh random ID.
func NewSession() *Session {
	return &Session{ID: uuid.NewString()}
}

func (s *Session) LoggedIn() bool {
	return s != nil && s.State == LoggedIn
}

// CheckResult is the outcome of Manager.Check.
type CheckResult struct {
	// Expired is true only on the check that observed the timeout.
	Expired bool
	// UserName is the user whose session expired, if Expired.
	UserName string
}

// Manager applies login, logout and timeout transitions to sessions.
type Manager struct {
	timeout time.Duration
	now     func() time.Time
}

type Option func(*Manager)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager returns a Manager; a non-positive timeout selects DefaultTimeout.
func NewManager(timeout time.Duration, opts ...Option) *Manager {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	m := &Manager{timeout: timeout, now: time.Now}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Manager) Timeout() time.Duration { return m.timeout }

// Login marks s as logged in for username. Any previous login on s is replaced.
func (m *Manager) Login(s *Session, username string) {
	s.UserName = username
	s.State = LoggedIn
	s.LoginAt = m.now()
	s.LastActivity = s.LoginAt
}

// Logout clears s. It is a no-op on a logged-out session.
func (m *Manager) Logout(s *Session) {
	s.State = LoggedOut
	s.UserName = ""
	s.LoginAt = time.Time{}
	s.LastActivity = time.Time{}
}

// Check enforces the idle timeout. A logged-in session idle for longer than
// the timeout is logged out and reported as Expired; the report is given
// once, since later checks see a logged-out session. Otherwise the activity
// timestamp is refreshed.
func (m *Manager) Check(s *Session) CheckResult {
	if !s.LoggedIn() {
		return CheckResult{}
	}

	now := m.now()
	if now.Sub(s.LastActivity) > m.timeout {
		user := s.UserName
		m.Logout(s)
		return CheckResult{Expired: true, UserName: user}
	}

	s.LastActivity = now
	return CheckResult{}
}
