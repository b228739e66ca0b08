// Package users persists user records. Implementations exist for SQLite and
// PostgreSQL; both report duplicate usernames as common.ErrorAlreadyExists
// and missing ones as common.ErrorNotFound.
package users

import (
	"context"

	"github.com/dmitrijs2005/securefin/internal/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	UpdateProfile(ctx context.Context, login, email, profileJSON string) error
	UpdateSensitive(ctx context.Context, login string, encrypted []byte) error
}
