package cli

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/securefin/internal/common"
	"github.com/dmitrijs2005/securefin/internal/policy"
)

const (
	msgUsernameTaken = "Username already taken."
	msgBadLogin      = "Invalid username or password."
	msgExpired       = "Session expired due to inactivity. Please log in again."
	msgVaultDisabled = "File storage is not configured."
	msgNotFound      = "Not found."
	msgUndecryptable = "Stored data could not be decrypted."
	msgStorageDown   = "Storage is unavailable, please try again later."
	msgInternal      = "Something went wrong, please try again."
)

// userMessage maps a service error to the text shown to the user. Raw
// storage or crypto detail never reaches the terminal.
func userMessage(err error) string {
	var ve *policy.ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Reason
	case errors.Is(err, common.ErrorValidation):
		return fmt.Sprintf("Rejected: %v.", err)
	case errors.Is(err, common.ErrorAlreadyExists):
		return msgUsernameTaken
	case errors.Is(err, common.ErrorUnauthorized):
		return msgBadLogin
	case errors.Is(err, common.ErrorNotFound):
		return msgNotFound
	case errors.Is(err, common.ErrorDisabled):
		return msgVaultDisabled
	case errors.Is(err, common.ErrorDecryption):
		return msgUndecryptable
	case errors.Is(err, common.ErrorStorage):
		return msgStorageDown
	default:
		return msgInternal
	}
}

func (a *App) say(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// fail reports err to the user and returns it.
func (a *App) fail(err error) error {
	a.say(userMessage(err))
	return err
}
