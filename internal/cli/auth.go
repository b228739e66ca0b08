package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/securefin/internal/activity"
	"github.com/dmitrijs2005/securefin/internal/common"
	"github.com/dmitrijs2005/securefin/internal/policy"
)

var errPasswordMismatch = errors.New("passwords do not match")

// checkSession enforces the idle timeout before a command runs.
func (a *App) checkSession(ctx context.Context) {
	res := a.sessions.Check(a.session)
	if res.Expired {
		a.users.RecordActivity(ctx, res.UserName, activity.ActionSessionExpired)
		a.say(msgExpired)
	}
}

// Register prompts for a username, email and password (twice) and creates
// the account. Policy feedback is shown before anything is stored.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.in, "Choose a username", a.out)
	if err != nil {
		return err
	}
	if err := policy.ValidateUsername(userName); err != nil {
		return a.fail(err)
	}

	email, err := getSimpleText(a.in, "Email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.in, "Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if ok, msg := policy.Validate(string(password)); !ok {
		a.say(msg)
		return &policy.ValidationError{Reason: msg}
	}

	confirm, err := getPassword(a.in, "Repeat password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if string(confirm) != string(password) {
		a.say("Passwords do not match.")
		return errPasswordMismatch
	}

	if err := a.users.Register(ctx, userName, email, string(password)); err != nil {
		return a.fail(err)
	}

	a.say("Registration successful. You can now log in.")
	return nil
}

// CheckPassword rates a password without registering anything.
func (a *App) CheckPassword(ctx context.Context) error {
	password, err := getPassword(a.in, "Password to check", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	_, msg := policy.Validate(string(password))
	a.say(msg)
	return nil
}

// Login prompts for credentials and starts a session on success.
func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		a.say("Already logged in as " + a.userName() + ". Log out first.")
		return nil
	}

	userName, err := getSimpleText(a.in, "Username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.in, "Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.users.Authenticate(ctx, userName, string(password)); err != nil {
		return a.fail(err)
	}

	a.sessions.Login(a.session, userName)
	a.say("Welcome, " + userName + "!")
	return nil
}

// Logout ends the session.
func (a *App) Logout(ctx context.Context) error {
	user := a.userName()
	a.sessions.Logout(a.session)
	a.users.RecordActivity(ctx, user, activity.ActionLogout)
	a.say("Logged out.")
	return nil
}
