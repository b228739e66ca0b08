package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandByteArray_LengthAndVariation(t *testing.T) {
	a := GenerateRandByteArray(32)
	b := GenerateRandByteArray(32)

	require.Len(t, a, 32)
	require.Len(t, b, 32)
	assert.NotEqual(t, a, b, "two 32-byte random arrays should differ")
}

func TestWipeByteArray(t *testing.T) {
	buf := []byte("Str0ng!Pass")
	WipeByteArray(buf)
	assert.Equal(t, make([]byte, len(buf)), buf)

	// nil must not panic
	WipeByteArray(nil)
}

func TestSentinels_MatchThroughWrapping(t *testing.T) {
	err := fmt.Errorf("db error: %w", ErrorAlreadyExists)
	assert.True(t, errors.Is(err, ErrorAlreadyExists))
	assert.False(t, errors.Is(err, ErrorNotFound))
}
