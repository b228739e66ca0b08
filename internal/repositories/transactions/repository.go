// Package transactions persists ledger entries per user. Implementations
// exist for SQLite and PostgreSQL.
package transactions

import (
	"context"

	"github.com/dmitrijs2005/securefin/internal/models"
)

type Repository interface {
	Create(ctx context.Context, t *models.Transaction) (*models.Transaction, error)
	ListByUser(ctx context.Context, username string) ([]*models.Transaction, error)
}
