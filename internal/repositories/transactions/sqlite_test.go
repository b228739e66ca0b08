package transactions

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/securefin/internal/dbx"
	"github.com/dmitrijs2005/securefin/internal/migrations"
	"github.com/dmitrijs2005/securefin/internal/models"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dbSeq atomic.Int64

func newSQLiteRepo(t *testing.T) (*SQLiteRepository, *sql.DB) {
	t.Helper()
	ctx := context.Background()
	dsn := fmt.Sprintf("file:transactions_repo_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := dbx.Open(ctx, dbx.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetBaseFS(migrations.SQLite())
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.UpContext(ctx, db, "."))

	for _, name := range []string{"alice", "bob"} {
		_, err := db.ExecContext(ctx, `INSERT INTO users (username, password_hash) VALUES (?, 'h')`, name)
		require.NoError(t, err)
	}

	return NewSQLiteRepository(db), db
}

func TestSQLite_CreateAndList(t *testing.T) {
	repo, _ := newSQLiteRepo(t)
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)

	first, err := repo.Create(ctx, &models.Transaction{UserName: "alice", AmountEncrypted: "c1", Note: "Groceries", CreatedAt: at})
	require.NoError(t, err)
	assert.Positive(t, first.ID)

	_, err = repo.Create(ctx, &models.Transaction{UserName: "bob", AmountEncrypted: "c2", Note: "Rent", CreatedAt: at})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &models.Transaction{UserName: "alice", AmountEncrypted: "c3", Note: "Fuel", CreatedAt: at.Add(time.Hour)})
	require.NoError(t, err)

	got, err := repo.ListByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Groceries", got[0].Note)
	assert.Equal(t, "c1", got[0].AmountEncrypted)
	assert.True(t, got[0].CreatedAt.Equal(at))
	assert.Equal(t, "Fuel", got[1].Note)
}

func TestSQLite_ListEmpty(t *testing.T) {
	repo, _ := newSQLiteRepo(t)

	got, err := repo.ListByUser(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestSQLite_ClosedDB(t *testing.T) {
	repo, db := newSQLiteRepo(t)
	require.NoError(t, db.Close())

	_, err := repo.Create(context.Background(), &models.Transaction{UserName: "alice", AmountEncrypted: "c"})
	assert.ErrorContains(t, err, "db error")

	_, err = repo.ListByUser(context.Background(), "alice")
	assert.ErrorContains(t, err, "db error")
}
