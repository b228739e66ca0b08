package cli

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	checkSession(ctx context.Context)
	Register(ctx context.Context) error
	CheckPassword(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Dashboard(ctx context.Context) error
	Profile(ctx context.Context) error
	SetEmail(ctx context.Context) error
	SetField(ctx context.Context, key, value string) error
	SetSecret(ctx context.Context) error
	Upload(ctx context.Context, path string) error
	Files(ctx context.Context) error
	Download(ctx context.Context, key, dest string) error
	Share(ctx context.Context, key string) error
	Logs(ctx context.Context, n int) error
	AddTransaction(ctx context.Context, amount, note string) error
	Transactions(ctx context.Context, reveal bool) error
	Crypt(ctx context.Context, mode string) error
}

// loginRequired lists commands that need an active session.
var loginRequired = map[string]bool{
	"logout": true, "dashboard": true, "profile": true, "setemail": true, "set": true, "setsecret": true,
	"upload": true, "files": true, "download": true, "share": true, "logs": true,
	"tx": true, "crypt": true,
}

// runREPL starts a simple read–eval–print loop for the SecureFin shell.
//
// Before each command the session is checked for inactivity, so a command
// typed after the timeout is refused and the expiry is reported instead of
// being executed. The loop exits on EOF or when the user types "exit" or
// "quit".
//
// Prompt & Commands
//
//	Not logged in:
//	  - help           - show available commands
//	  - register       - create an account
//	  - check          - rate a password against the policy
//	  - login          - authenticate
//	  - exit | quit    - leave the program
//
//	Logged in:
//	  - dashboard              - session overview
//	  - profile                - show profile and decrypted sensitive field
//	  - setemail / setsecret   - edit the profile
//	  - set <key> [value]      - set or clear a profile field
//	  - upload <path>          - encrypt and store a file
//	  - files                  - list stored files
//	  - download <key> <dest>  - fetch and decrypt a file
//	  - share <key>            - time-limited link to a stored file
//	  - logs [n]               - your recent activity (n capped at 1000)
//	  - tx add <amount> <note> - record a transaction, amount sealed with a secret
//	  - tx list | tx reveal    - list transactions, optionally decrypting amounts
//	  - crypt enc | crypt dec  - encrypt or decrypt text with a secret
//	  - logout                 - log out
//
// Errors returned by command handlers are reported by the handlers
// themselves; the loop only keeps going.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("securefin (%s)> ", statusFn()))
		line, err := readLine(in)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		a.checkSession(ctx)

		if loginRequired[cmd] && !a.isLoggedIn() {
			printlnFn("Please log in first.")
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: dashboard, profile, setemail, set, setsecret, upload, files, download, share, logs, tx, crypt, logout, exit")
			} else {
				printlnFn("Available commands: register, check, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "check":
			_ = a.CheckPassword(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "dashboard", "home":
			_ = a.Dashboard(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "setemail":
			_ = a.SetEmail(ctx)

		case "set":
			if len(args) == 0 {
				printlnFn("Usage: set <key> [value]")
				continue
			}
			_ = a.SetField(ctx, args[0], strings.Join(args[1:], " "))

		case "setsecret":
			_ = a.SetSecret(ctx)

		case "upload":
			if len(args) != 1 {
				printlnFn("Usage: upload <path>")
				continue
			}
			_ = a.Upload(ctx, args[0])

		case "files":
			_ = a.Files(ctx)

		case "download":
			if len(args) != 2 {
				printlnFn("Usage: download <key> <dest>")
				continue
			}
			_ = a.Download(ctx, args[0], args[1])

		case "share":
			if len(args) != 1 {
				printlnFn("Usage: share <key>")
				continue
			}
			_ = a.Share(ctx, args[0])

		case "logs":
			n := defaultLogLines
			if len(args) == 1 {
				v, err := strconv.Atoi(args[0])
				if err != nil || v <= 0 {
					printlnFn("Usage: logs [n]")
					continue
				}
				n = min(v, maxLogLines)
			}
			_ = a.Logs(ctx, n)

		case "tx":
			switch {
			case len(args) >= 3 && args[0] == "add":
				_ = a.AddTransaction(ctx, args[1], strings.Join(args[2:], " "))
			case len(args) == 1 && args[0] == "list":
				_ = a.Transactions(ctx, false)
			case len(args) == 1 && args[0] == "reveal":
				_ = a.Transactions(ctx, true)
			default:
				printlnFn("Usage: tx add <amount> <note> | tx list | tx reveal")
			}

		case "crypt":
			if len(args) != 1 || (args[0] != "enc" && args[0] != "dec") {
				printlnFn("Usage: crypt enc|dec")
				continue
			}
			_ = a.Crypt(ctx, args[0])

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
