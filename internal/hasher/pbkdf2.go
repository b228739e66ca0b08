package hasher

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const AlgPBKDF2 = "pbkdf2"

const (
	// MinPBKDF2Iterations is also the iteration count of legacy untagged hashes.
	MinPBKDF2Iterations = 100_000
	maxPBKDF2Iterations = 10_000_000

	pbkdf2SaltLength = 16
	pbkdf2KeyLength  = 32
	pbkdf2Tag        = "pbkdf2-sha256$"
)

var errMalformedPBKDF2 = errors.New("malformed pbkdf2 hash")

// PBKDF2Strategy is the fallback strategy: PBKDF2-HMAC-SHA256 with a 16-byte
// random salt. Output:
//
//	pbkdf2-sha256$<iterations>$<base64(salt ‖ derived key)>
//
// Legacy untagged values, base64(salt ‖ derived key) at 100,000 iterations,
// are still verified.
type PBKDF2Strategy struct {
	iterations int
}

// NewPBKDF2 never goes below MinPBKDF2Iterations.
func NewPBKDF2(iterations int) *PBKDF2Strategy {
	if iterations < MinPBKDF2Iterations {
		iterations = MinPBKDF2Iterations
	}
	return &PBKDF2Strategy{iterations: iterations}
}

func (s *PBKDF2Strategy) Name() string { return AlgPBKDF2 }

func (s *PBKDF2Strategy) Hash(password string) (string, error) {
	salt := make([]byte, pbkdf2SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	dk := pbkdf2.Key([]byte(password), salt, s.iterations, pbkdf2KeyLength, sha256.New)
	raw := append(salt, dk...)

	return fmt.Sprintf("%s%d$%s", pbkdf2Tag, s.iterations, base64.StdEncoding.EncodeToString(raw)), nil
}

func (s *PBKDF2Strategy) Verify(password, encoded string) (bool, error) {
	iterations, raw, err := decodePBKDF2(encoded)
	if err != nil {
		return false, err
	}

	salt, dk := raw[:pbkdf2SaltLength], raw[pbkdf2SaltLength:]
	candidate := pbkdf2.Key([]byte(password), salt, iterations, len(dk), sha256.New)

	return subtle.ConstantTimeCompare(dk, candidate) == 1, nil
}

func (s *PBKDF2Strategy) Recognizes(encoded string) bool {
	if strings.HasPrefix(encoded, pbkdf2Tag) {
		return true
	}
	_, _, err := decodeLegacyPBKDF2(encoded)
	return err == nil
}

func decodePBKDF2(encoded string) (int, []byte, error) {
	rest, ok := strings.CutPrefix(encoded, pbkdf2Tag)
	if !ok {
		return decodeLegacyPBKDF2(encoded)
	}

	iterStr, b64, ok := strings.Cut(rest, "$")
	if !ok {
		return 0, nil, errMalformedPBKDF2
	}
	iterations, err := strconv.Atoi(iterStr)
	if err != nil || iterations < 1 || iterations > maxPBKDF2Iterations {
		return 0, nil, errMalformedPBKDF2
	}

	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil || len(raw) <= pbkdf2SaltLength {
		return 0, nil, errMalformedPBKDF2
	}
	return iterations, raw, nil
}

// decodeLegacyPBKDF2 accepts exactly salt ‖ 32-byte key, base64 encoded,
// with no '$' anywhere.
func decodeLegacyPBKDF2(encoded string) (int, []byte, error) {
	if encoded == "" || strings.Contains(encoded, "$") {
		return 0, nil, errMalformedPBKDF2
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(raw) != pbkdf2SaltLength+pbkdf2KeyLength {
		return 0, nil, errMalformedPBKDF2
	}
	return MinPBKDF2Iterations, bytes.Clone(raw), nil
}
