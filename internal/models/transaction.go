package models

import "time"

// Transaction is a ledger entry. The amount is sealed with a secret only the
// user knows; the note is stored in the clear.
type Transaction struct {
	ID              int64
	UserName        string
	AmountEncrypted string
	Note            string
	CreatedAt       time.Time
}
