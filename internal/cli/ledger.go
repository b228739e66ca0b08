package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/securefin/internal/common"
	"github.com/dmitrijs2005/securefin/internal/cryptox"
)

const msgRowUndecryptable = "Decryption failed"

func (a *App) askSecret(prompt string) (string, error) {
	secret, err := getPassword(a.in, prompt, a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(secret)
	return string(secret), nil
}

// AddTransaction seals amount with a secret read from the user and stores it
// with note.
func (a *App) AddTransaction(ctx context.Context, amount, note string) error {
	secret, err := a.askSecret("Encryption secret")
	if err != nil {
		return err
	}

	t, err := a.ledger.Add(ctx, a.userName(), amount, note, secret)
	if err != nil {
		return a.fail(err)
	}
	a.say(fmt.Sprintf("Transaction #%d saved.", t.ID))
	return nil
}

// Transactions lists the ledger. With reveal set, amounts are decrypted with
// a secret read from the user; rows sealed under another secret are marked
// rather than aborting the listing.
func (a *App) Transactions(ctx context.Context, reveal bool) error {
	list, err := a.ledger.List(ctx, a.userName())
	if err != nil {
		return a.fail(err)
	}
	if len(list) == 0 {
		a.say("No transactions yet.")
		return nil
	}

	var secret string
	if reveal {
		if secret, err = a.askSecret("Decryption secret"); err != nil {
			return err
		}
	}

	for _, t := range list {
		amount := "[encrypted]"
		if reveal {
			if v, err := a.ledger.Reveal(t.AmountEncrypted, secret); err != nil {
				amount = msgRowUndecryptable
			} else {
				amount = v
			}
		}
		a.say(fmt.Sprintf("#%-5d %s  %-20s %s", t.ID, t.CreatedAt.Local().Format(time.DateTime), amount, t.Note))
	}
	return nil
}

// Crypt encrypts ("enc") or decrypts ("dec") a line of text with a secret.
// Nothing is stored.
func (a *App) Crypt(ctx context.Context, mode string) error {
	prompt := "Text to encrypt"
	if mode == "dec" {
		prompt = "Encrypted text"
	}
	text, err := getSimpleText(a.in, prompt, a.out)
	if err != nil {
		return err
	}
	secret, err := a.askSecret("Secret")
	if err != nil {
		return err
	}

	if mode == "dec" {
		plain, err := cryptox.OpenWithSecret(text, secret)
		if err != nil {
			return a.fail(err)
		}
		defer common.WipeByteArray(plain)
		a.say("Decrypted: " + string(plain))
		return nil
	}

	sealed, err := cryptox.SealWithSecret([]byte(text), secret)
	if err != nil {
		return a.fail(err)
	}
	a.say("Encrypted: " + sealed)
	return nil
}
