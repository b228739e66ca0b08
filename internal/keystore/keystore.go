// Package keystore loads the process-wide encryption key from a file,
// generating and persisting it on first run.
//
// The key is never rotated: ciphertexts written under one key cannot be
// read after the file is lost or replaced.
package keystore

import (
	"crypto/rand"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/securefin/internal/common"
	"github.com/dmitrijs2005/securefin/internal/filex"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// ErrKeyCorrupt is returned when the key file exists but does not hold
// exactly KeySize bytes.
var ErrKeyCorrupt = fmt.Errorf("%w: key file has wrong length", common.ErrorStorage)

// randRead is a seam for tests.
var randRead = rand.Read

// GetOrCreate returns the key stored at path. When the file does not exist a
// fresh random key is generated, written atomically with mode 0600, and
// returned.
//
// Concurrent first runs race: the last writer wins.
func GetOrCreate(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	switch {
	case err == nil:
		if len(key) != KeySize {
			return nil, fmt.Errorf("%w (%s: %d bytes)", ErrKeyCorrupt, path, len(key))
		}
		return key, nil
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("%w: read key file: %w", common.ErrorStorage, err)
	}

	key = make([]byte, KeySize)
	if _, err := randRead(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	if err := filex.WriteFileAtomic(path, key, 0o600); err != nil {
		return nil, fmt.Errorf("%w: persist key file: %w", common.ErrorStorage, err)
	}

	return key, nil
}
