package transactions

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/securefin/internal/dbx"
	"github.com/dmitrijs2005/securefin/internal/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, t *models.Transaction) (*models.Transaction, error) {
	query :=
		`INSERT INTO transactions (username, amount_encrypted, note, created_at)
		 VALUES (?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query, t.UserName, t.AmountEncrypted, t.Note, t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	t.ID = id

	return t, nil
}

func (r *SQLiteRepository) ListByUser(ctx context.Context, username string) ([]*models.Transaction, error) {
	query :=
		`SELECT id, username, amount_encrypted, note, created_at FROM transactions
		 WHERE username = ? ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return scanAll(rows)
}
