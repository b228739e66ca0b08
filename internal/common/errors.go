// Package common defines shared constants, sentinel errors and small helpers
// used across SecureFin components. Callers should use errors.Is to match
// the sentinel values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")
	ErrorStorage       = errors.New("storage error")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Input errors. Recoverable, the user can correct them.
	ErrorValidation = errors.New("validation error")

	// Crypto errors (tampered, corrupted or foreign ciphertext).
	ErrorDecryption = errors.New("decryption failed")

	// Optional features switched off in configuration.
	ErrorDisabled = errors.New("feature disabled")
)
