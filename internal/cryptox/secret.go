package cryptox

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/dmitrijs2005/securefin/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

// Passphrase sealing derives a one-off key from a user secret with
// PBKDF2-HMAC-SHA256 and seals with AES-256-GCM. The text form is
//
//	base64(salt (16 bytes) ‖ nonce (12 bytes) ‖ ciphertext ‖ tag)
const (
	SecretSaltSize   = 16
	SecretIterations = 100_000
)

// ErrEmptySecret is returned when no passphrase is given.
var ErrEmptySecret = fmt.Errorf("%w: secret must not be empty", common.ErrorValidation)

func secretCipher(secret string, salt []byte) (*Cipher, error) {
	key := pbkdf2.Key([]byte(secret), salt, SecretIterations, KeySize, sha256.New)
	defer common.WipeByteArray(key)
	return NewCipher(key)
}

// SealWithSecret encrypts plaintext under a key derived from secret and a
// fresh salt. Sealing the same text twice yields different output.
func SealWithSecret(plaintext []byte, secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}

	salt := make([]byte, SecretSaltSize)
	if _, err := io.ReadFull(nonceSource, salt); err != nil {
		return "", err
	}

	c, err := secretCipher(secret, salt)
	if err != nil {
		return "", err
	}
	blob, err := c.Encrypt(plaintext)
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(append(salt, blob...)), nil
}

// OpenWithSecret reverses SealWithSecret. A wrong secret, bad base64 or
// tampered input all yield ErrDecryption.
func OpenWithSecret(sealed, secret string) ([]byte, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil || len(raw) < SecretSaltSize+Overhead {
		return nil, ErrDecryption
	}

	c, err := secretCipher(secret, raw[:SecretSaltSize])
	if err != nil {
		return nil, err
	}
	return c.Decrypt(raw[SecretSaltSize:])
}
