// Package repomanager vends repository implementations for the configured
// database driver and runs the matching schema migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/securefin/internal/dbx"
	"github.com/dmitrijs2005/securefin/internal/repositories/transactions"
	"github.com/dmitrijs2005/securefin/internal/repositories/users"
	"github.com/pressly/goose/v3"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Transactions(db dbx.DBTX) transactions.Repository
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// New returns the manager for driver (dbx.DriverSQLite or dbx.DriverPostgres).
func New(driver string) (RepositoryManager, error) {
	switch driver {
	case dbx.DriverSQLite:
		return NewSQLiteRepositoryManager(), nil
	case dbx.DriverPostgres:
		return NewPostgresRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
