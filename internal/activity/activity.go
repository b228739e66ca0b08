// Package activity records user-visible security events (registrations,
// logins, logouts, expiries) in an append-only text log, one event per line:
//
//	2025-01-02T15:04:05.123456789Z | alice | login_success
package activity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	ActionRegister         = "register"
	ActionLoginSuccess     = "login_success"
	ActionLoginFail        = "login_fail"
	ActionLoginUnknownUser = "login_unknown_user"
	ActionLogout           = "logout"
	ActionSessionExpired   = "session_expired"
	ActionProfileUpdate    = "profile_update"
	ActionFileUpload       = "file_upload"
	ActionTransactionAdd   = "transaction_add"
)

const separator = " | "

// Sink receives activity events. Implementations must be safe to call from
// the goroutine that owns the session.
type Sink interface {
	Record(ctx context.Context, username, action string) error
}

// Event is one parsed log line.
type Event struct {
	Time     time.Time
	UserName string
	Action   string
}

var fieldReplacer = strings.NewReplacer("\r", " ", "\n", " ", "|", "/")

// sanitize keeps a field on one line and free of the separator, so a
// crafted username cannot forge a second entry.
func sanitize(s string) string {
	return fieldReplacer.Replace(s)
}

// String renders e in log-line form, without the trailing newline.
func (e Event) String() string {
	return e.Time.UTC().Format(time.RFC3339Nano) + separator + sanitize(e.UserName) + separator + sanitize(e.Action)
}

var errMalformedLine = errors.New("malformed activity line")

// ParseLine parses one log line produced by Event.String.
func ParseLine(line string) (Event, error) {
	parts := strings.SplitN(strings.TrimRight(line, "\r\n"), separator, 3)
	if len(parts) != 3 {
		return Event{}, errMalformedLine
	}

	ts, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", errMalformedLine, err)
	}

	return Event{Time: ts, UserName: parts[1], Action: parts[2]}, nil
}
