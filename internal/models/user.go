package models

// User is a row of the users table.
type User struct {
	ID                 int64
	UserName           string
	Email              string
	PasswordHash       string
	ProfileJSON        string
	SensitiveEncrypted []byte
}

// Profile is the decrypted, user-facing view of a User.
type Profile struct {
	UserName  string
	Email     string
	Document  map[string]any
	Sensitive string
}
