// Package cryptox provides authenticated symmetric encryption for data at rest.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dmitrijs2005/securefin/internal/common"
)

const (
	// KeySize is the only accepted key length (AES-256).
	KeySize = 32
	// Overhead is the number of bytes Encrypt adds to a plaintext.
	Overhead = 12 + 16
)

// ErrDecryption is returned for any ciphertext that cannot be opened: wrong
// key, truncated input or tampered bytes. It matches common.ErrorDecryption.
var ErrDecryption = fmt.Errorf("%w: message authentication failed", common.ErrorDecryption)

// ErrKeySize is returned by NewCipher for keys that are not KeySize bytes.
var ErrKeySize = fmt.Errorf("cryptox: key must be %d bytes", KeySize)

// nonceSource is swapped in tests.
var nonceSource io.Reader = rand.Reader

// Cipher seals and opens blobs with AES-256-GCM under a single key.
// It is safe for concurrent use.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher builds a Cipher around key, which must be exactly KeySize bytes.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &Cipher{aead: aead}, nil
}

// Encrypt seals plaintext with a fresh random 12-byte nonce.
//
// The returned blob is self-contained:
//
//	nonce (12 bytes) ‖ ciphertext ‖ tag (16 bytes)
//
// so encrypting the same plaintext twice yields different blobs, and Decrypt
// needs nothing but the blob and the same key.
//
// Example:
//
//	c, _ := cryptox.NewCipher(key)
//	blob, err := c.Encrypt([]byte("card 4111"))
//	if err != nil {
//	    return err
//	}
//	plain, err := c.Decrypt(blob)
func (c *Cipher) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+c.aead.Overhead())
	if _, err := io.ReadFull(nonceSource, nonce); err != nil {
		return nil, err
	}

	return c.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens a blob produced by Encrypt. Any failure, including input
// shorter than a nonce, is reported as ErrDecryption and no partial
// plaintext is returned.
func (c *Cipher) Decrypt(blob []byte) ([]byte, error) {
	ns := c.aead.NonceSize()
	if len(blob) < ns+c.aead.Overhead() {
		return nil, ErrDecryption
	}

	plaintext, err := c.aead.Open(nil, blob[:ns], blob[ns:], nil)
	if err != nil {
		return nil, ErrDecryption
	}
	return plaintext, nil
}

// EncryptString is Encrypt for UTF-8 text.
func (c *Cipher) EncryptString(s string) ([]byte, error) {
	return c.Encrypt([]byte(s))
}

// DecryptString is Decrypt returning text.
func (c *Cipher) DecryptString(blob []byte) (string, error) {
	p, err := c.Decrypt(blob)
	if err != nil {
		return "", err
	}
	return string(p), nil
}

// EncryptJSON serializes v to JSON and seals it.
func (c *Cipher) EncryptJSON(v any) ([]byte, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(plaintext)

	return c.Encrypt(plaintext)
}

// DecryptJSON opens blob and unmarshals the JSON inside into v.
func (c *Cipher) DecryptJSON(blob []byte, v any) error {
	plaintext, err := c.Decrypt(blob)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(plaintext)

	return json.Unmarshal(plaintext, v)
}
