package hasher

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/securefin/internal/common"
	"golang.org/x/crypto/bcrypt"
)

const AlgBcrypt = "bcrypt"

// DefaultBcryptCost is the work factor used when none is configured.
const DefaultBcryptCost = 12

// BcryptStrategy is the adaptive, cost-tunable strategy. Its output is the
// standard "$2a$<cost>$..." string, which already embeds the tag, cost and salt.
type BcryptStrategy struct {
	cost int
}

// NewBcrypt clamps cost into bcrypt's valid range; zero selects the default.
func NewBcrypt(cost int) *BcryptStrategy {
	switch {
	case cost == 0:
		cost = DefaultBcryptCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &BcryptStrategy{cost: cost}
}

func (b *BcryptStrategy) Name() string { return AlgBcrypt }

func (b *BcryptStrategy) Hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: password is longer than 72 bytes", common.ErrorValidation)
		}
		return "", err
	}
	return string(h), nil
}

func (b *BcryptStrategy) Verify(password, encoded string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}

func (b *BcryptStrategy) Recognizes(encoded string) bool {
	for _, p := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(encoded, p) {
			return true
		}
	}
	return false
}
