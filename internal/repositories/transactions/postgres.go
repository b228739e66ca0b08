package transactions

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/securefin/internal/dbx"
	"github.com/dmitrijs2005/securefin/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.Transaction) (*models.Transaction, error) {
	query :=
		`INSERT INTO transactions (username, amount_encrypted, note, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query, t.UserName, t.AmountEncrypted, t.Note, t.CreatedAt).Scan(&t.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return t, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, username string) ([]*models.Transaction, error) {
	query :=
		`SELECT id, username, amount_encrypted, note, created_at FROM transactions
		 WHERE username = $1 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return scanAll(rows)
}
