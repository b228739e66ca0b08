// Package cli provides the interactive SecureFin shell.
//
// It wires the user directory, the session manager, the activity log, the
// transaction ledger and the optional file vault behind a read–eval–print loop. Before every command
// the current session is checked for inactivity; an expired session is
// logged out and the user is told once.
//
// Commands mirror the application menu: register, login, dashboard,
// profile, upload, transactions (tx), crypt, logs and logout, plus a few
// profile editing helpers.
// The REPL is started via App.Run, which blocks until the user exits.
package cli
