package users

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/securefin/internal/common"
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
	dsn := fmt.Sprintf("file:users_repo_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := dbx.Open(context.Background(), dbx.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetBaseFS(migrations.SQLite())
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.UpContext(context.Background(), db, "."))

	return NewSQLiteRepository(db), db
}

func TestSQLite_CreateAndGet(t *testing.T) {
	repo, _ := newSQLiteRepo(t)
	ctx := context.Background()

	u, err := repo.Create(ctx, &models.User{
		UserName:           "alice",
		Email:              "a@x",
		PasswordHash:       "$2a$04$hash",
		SensitiveEncrypted: []byte{1, 2, 3},
	})
	require.NoError(t, err)
	assert.Positive(t, u.ID)
	assert.Equal(t, "{}", u.ProfileJSON)

	got, err := repo.GetUserByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "a@x", got.Email)
	assert.Equal(t, "$2a$04$hash", got.PasswordHash)
	assert.Equal(t, "{}", got.ProfileJSON)
	assert.Equal(t, []byte{1, 2, 3}, got.SensitiveEncrypted)
}

func TestSQLite_UsernameIsCaseSensitive(t *testing.T) {
	repo, _ := newSQLiteRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, &models.User{UserName: "alice", PasswordHash: "h"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &models.User{UserName: "Alice", PasswordHash: "h"})
	require.NoError(t, err)

	_, err = repo.GetUserByLogin(ctx, "ALICE")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSQLite_DuplicateUsername(t *testing.T) {
	repo, db := newSQLiteRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, &models.User{UserName: "alice", PasswordHash: "h1"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &models.User{UserName: "alice", PasswordHash: "h2"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n))
	assert.Equal(t, 1, n)

	got, err := repo.GetUserByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "h1", got.PasswordHash)
}

func TestSQLite_GetMissing(t *testing.T) {
	repo, _ := newSQLiteRepo(t)

	_, err := repo.GetUserByLogin(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSQLite_Updates(t *testing.T) {
	repo, _ := newSQLiteRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, &models.User{UserName: "bob", PasswordHash: "h"})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateProfile(ctx, "bob", "b@x", `{"city":"Riga"}`))
	require.NoError(t, repo.UpdateSensitive(ctx, "bob", []byte("blob")))

	got, err := repo.GetUserByLogin(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "b@x", got.Email)
	assert.Equal(t, `{"city":"Riga"}`, got.ProfileJSON)
	assert.Equal(t, []byte("blob"), got.SensitiveEncrypted)

	assert.ErrorIs(t, repo.UpdateProfile(ctx, "ghost", "", ""), common.ErrorNotFound)
	assert.ErrorIs(t, repo.UpdateSensitive(ctx, "ghost", nil), common.ErrorNotFound)
}

func TestSQLite_WithinTransaction(t *testing.T) {
	_, db := newSQLiteRepo(t)
	ctx := context.Background()

	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := NewSQLiteRepository(tx).Create(ctx, &models.User{UserName: "tx", PasswordHash: "h"})
		require.NoError(t, err)
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	_, err = NewSQLiteRepository(db).GetUserByLogin(ctx, "tx")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
