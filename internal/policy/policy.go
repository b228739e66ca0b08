// Package policy holds the input rules applied before anything reaches the
// hasher or the directory: password strength and username shape.
package policy

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/securefin/internal/common"
)

// MinPasswordLength is counted in characters, not bytes.
const MinPasswordLength = 8

// MaxUsernameLength bounds stored usernames.
const MaxUsernameLength = 64

const (
	MsgTooShort      = "Password must be at least 8 characters."
	MsgNoDigit       = "Password must include a digit."
	MsgNoUpper       = "Password must include an uppercase letter."
	MsgNoLower       = "Password must include a lowercase letter."
	MsgNoSpecial     = "Password must include a special character."
	MsgStrongEnough  = "Strong password."
	MsgEmptyUsername = "Username must not be empty."
	MsgLongUsername  = "Username must be at most 64 characters."
	MsgBadUsername   = "Username contains forbidden characters."
)

// ValidationError carries the user-facing reason. It matches
// common.ErrorValidation with errors.Is.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Is(target error) bool { return target == common.ErrorValidation }

type rule struct {
	ok  func(string) bool
	msg string
}

// Order matters: the first failing rule is reported.
var passwordRules = []rule{
	{func(p string) bool { return utf8.RuneCountInString(p) >= MinPasswordLength }, MsgTooShort},
	{func(p string) bool { return strings.ContainsFunc(p, isASCIIDigit) }, MsgNoDigit},
	{func(p string) bool { return strings.ContainsFunc(p, isASCIIUpper) }, MsgNoUpper},
	{func(p string) bool { return strings.ContainsFunc(p, isASCIILower) }, MsgNoLower},
	{func(p string) bool { return strings.ContainsFunc(p, isSpecial) }, MsgNoSpecial},
}

func isASCIIDigit(r rune) bool { return r >= '0' && r <= '9' }
func isASCIIUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isASCIILower(r rune) bool { return r >= 'a' && r <= 'z' }
func isSpecial(r rune) bool    { return !isASCIIDigit(r) && !isASCIIUpper(r) && !isASCIILower(r) }

// Validate reports whether password satisfies every rule. On failure the
// message names the first violated rule.
func Validate(password string) (bool, string) {
	for _, r := range passwordRules {
		if !r.ok(password) {
			return false, r.msg
		}
	}
	return true, MsgStrongEnough
}

// Check is Validate in error form.
func Check(password string) error {
	if ok, msg := Validate(password); !ok {
		return &ValidationError{Reason: msg}
	}
	return nil
}

// ValidateUsername rejects names that are empty, too long, or contain
// control characters or '|', the activity log field separator.
func ValidateUsername(name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Reason: MsgEmptyUsername}
	}
	if utf8.RuneCountInString(name) > MaxUsernameLength {
		return &ValidationError{Reason: MsgLongUsername}
	}
	if !utf8.ValidString(name) || strings.ContainsFunc(name, func(r rune) bool {
		return r == '|' || unicode.IsControl(r)
	}) {
		return &ValidationError{Reason: MsgBadUsername}
	}
	return nil
}
