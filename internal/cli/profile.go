package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/securefin/internal/common"
)

// Dashboard prints a short session overview.
func (a *App) Dashboard(ctx context.Context) error {
	a.say(fmt.Sprintf("Logged in as %s since %s.", a.userName(), a.session.LoginAt.Format(time.Kitchen)))
	a.say(fmt.Sprintf("Session expires after %s of inactivity.", a.sessions.Timeout().Round(time.Second)))
	if a.files != nil && a.files.Enabled() {
		a.say("File storage: enabled")
	} else {
		a.say("File storage: disabled")
	}
	return nil
}

// Profile prints the stored profile, including the decrypted sensitive field.
func (a *App) Profile(ctx context.Context) error {
	p, err := a.users.GetProfile(ctx, a.userName())
	if err != nil {
		return a.fail(err)
	}

	doc, err := json.MarshalIndent(p.Document, "", "  ")
	if err != nil {
		doc = []byte(common.EmptyProfileDocument)
	}

	a.say("Username: " + p.UserName)
	a.say("Email:    " + p.Email)
	a.say("Profile:  " + string(doc))
	a.say("Sensitive data (decrypted): " + p.Sensitive)
	return nil
}

// SetEmail replaces the email, keeping the rest of the profile.
func (a *App) SetEmail(ctx context.Context) error {
	email, err := getSimpleText(a.in, "New email", a.out)
	if err != nil {
		return err
	}

	if err := a.users.UpdateEmail(ctx, a.userName(), email); err != nil {
		return a.fail(err)
	}
	a.say("Profile updated.")
	return nil
}

// SetField stores value under key in the profile document. An empty value
// removes the key.
func (a *App) SetField(ctx context.Context, key, value string) error {
	p, err := a.users.GetProfile(ctx, a.userName())
	if err != nil {
		return a.fail(err)
	}

	doc := p.Document
	if doc == nil {
		doc = map[string]any{}
	}
	if value == "" {
		delete(doc, key)
	} else {
		doc[key] = value
	}

	if err := a.users.UpdateProfile(ctx, a.userName(), p.Email, doc); err != nil {
		return a.fail(err)
	}
	a.say("Profile updated.")
	return nil
}

// SetSecret stores a new sensitive value. It is read like a password.
func (a *App) SetSecret(ctx context.Context) error {
	secret, err := getPassword(a.in, "New sensitive value", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(secret)

	if err := a.users.UpdateSensitive(ctx, a.userName(), string(secret)); err != nil {
		return a.fail(err)
	}
	a.say("Sensitive data updated.")
	return nil
}
