package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/securefin/internal/dbx"
	"github.com/dmitrijs2005/securefin/internal/migrations"
	"github.com/dmitrijs2005/securefin/internal/repositories/transactions"
	"github.com/dmitrijs2005/securefin/internal/repositories/users"
	"github.com/pressly/goose/v3"
)

// SQLiteRepositoryManager is the default, file-backed manager.
type SQLiteRepositoryManager struct{}

func (m *SQLiteRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Transactions(db dbx.DBTX) transactions.Repository {
	return transactions.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.SQLite())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func NewSQLiteRepositoryManager() *SQLiteRepositoryManager {
	return &SQLiteRepositoryManager{}
}
