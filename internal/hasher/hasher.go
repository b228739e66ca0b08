// Package hasher produces and verifies salted password hashes.
//
// Every stored hash carries an algorithm tag, so verification dispatches to
// the strategy that produced it even if the active strategy changed between
// runs. New hashes always use the strategy chosen at startup.
package hasher

import (
	"strings"
	"sync"
)

// Strategy is one password hashing algorithm.
type Strategy interface {
	// Name is the configuration name, e.g. "bcrypt".
	Name() string
	// Hash returns a self-describing, salted encoding of password.
	Hash(password string) (string, error)
	// Verify reports whether password matches encoded. A malformed encoding
	// is an error, a mismatch is (false, nil).
	Verify(password, encoded string) (bool, error)
	// Recognizes reports whether encoded was produced by this strategy.
	Recognizes(encoded string) bool
}

// Hasher hashes with one active strategy and verifies against any known one.
type Hasher struct {
	active Strategy
	known  []Strategy

	dummyOnce sync.Once
	dummy     string
}

// New returns a Hasher hashing with active. others are additional strategies
// accepted during verification.
func New(active Strategy, others ...Strategy) *Hasher {
	h := &Hasher{active: active, known: []Strategy{active}}
	for _, s := range others {
		if s != nil && s.Name() != active.Name() {
			h.known = append(h.known, s)
		}
	}
	return h
}

// Options tunes the strategies built by FromConfig.
type Options struct {
	BcryptCost       int
	PBKDF2Iterations int
	Argon2           Argon2Params
}

// FromConfig builds a Hasher whose active strategy is named by algorithm.
// All three strategies are accepted for verification. An unknown name
// selects PBKDF2; the second result is false in that case so the caller can
// warn about it.
func FromConfig(algorithm string, opts Options) (*Hasher, bool) {
	bc := NewBcrypt(opts.BcryptCost)
	ar := NewArgon2id(opts.Argon2)
	pb := NewPBKDF2(opts.PBKDF2Iterations)

	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case AlgBcrypt:
		return New(bc, ar, pb), true
	case AlgArgon2id:
		return New(ar, bc, pb), true
	case AlgPBKDF2:
		return New(pb, bc, ar), true
	default:
		return New(pb, bc, ar), false
	}
}

// Algorithm names the active strategy.
func (h *Hasher) Algorithm() string {
	return h.active.Name()
}

// Hash hashes password with the active strategy. Each call uses a fresh salt.
func (h *Hasher) Hash(password string) (string, error) {
	return h.active.Hash(password)
}

// Verify reports whether password matches stored. It fails closed: unknown
// tags, malformed encodings and internal errors all yield false.
func (h *Hasher) Verify(password, stored string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	for _, s := range h.known {
		if !s.Recognizes(stored) {
			continue
		}
		match, err := s.Verify(password, stored)
		return err == nil && match
	}
	return false
}

// VerifyDummy spends roughly the same time as a real verification and
// always returns false. It is used for unknown usernames so that response
// time does not reveal whether an account exists.
func (h *Hasher) VerifyDummy(password string) bool {
	h.dummyOnce.Do(func() {
		h.dummy, _ = h.active.Hash("dummy-password-for-timing")
	})
	_ = h.Verify(password, h.dummy)
	return false
}
