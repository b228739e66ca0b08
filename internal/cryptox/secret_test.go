package cryptox

import (
	"encoding/base64"
	"testing"

	"github.com/dmitrijs2005/securefin/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealWithSecret_RoundTrip(t *testing.T) {
	sealed, err := SealWithSecret([]byte("125.50"), "hunter2")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(sealed)
	require.NoError(t, err)
	assert.Len(t, raw, SecretSaltSize+Overhead+len("125.50"))

	plain, err := OpenWithSecret(sealed, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "125.50", string(plain))

	again, err := SealWithSecret([]byte("125.50"), "hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again)
}

func TestOpenWithSecret_Failures(t *testing.T) {
	sealed, err := SealWithSecret([]byte("42"), "right")
	require.NoError(t, err)

	_, err = OpenWithSecret(sealed, "wrong")
	assert.ErrorIs(t, err, ErrDecryption)
	assert.ErrorIs(t, err, common.ErrorDecryption)

	raw, _ := base64.StdEncoding.DecodeString(sealed)
	raw[len(raw)-1] ^= 0x01
	_, err = OpenWithSecret(base64.StdEncoding.EncodeToString(raw), "right")
	assert.ErrorIs(t, err, ErrDecryption)

	for _, bad := range []string{"", "not base64!", base64.StdEncoding.EncodeToString(make([]byte, SecretSaltSize+Overhead-1))} {
		_, err = OpenWithSecret(bad, "right")
		assert.ErrorIs(t, err, ErrDecryption, "input=%q", bad)
	}
}

func TestSecret_EmptyRejected(t *testing.T) {
	_, err := SealWithSecret([]byte("x"), "")
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = OpenWithSecret("abc", "")
	assert.ErrorIs(t, err, ErrEmptySecret)
}
