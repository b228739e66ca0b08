package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/securefin/internal/common"
	"github.com/dmitrijs2005/securefin/internal/cryptox"
	"github.com/dmitrijs2005/securefin/internal/dbx"
	"github.com/dmitrijs2005/securefin/internal/hasher"
	"github.com/dmitrijs2005/securefin/internal/logging"
	"github.com/dmitrijs2005/securefin/internal/repositories/repomanager"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- helpers ---

type recordedEvent struct {
	user, action string
}

type recordingSink struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (r *recordingSink) Record(_ context.Context, username, action string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, recordedEvent{username, action})
	return nil
}

func (r *recordingSink) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.action)
	}
	return out
}

var dbSeq atomic.Int64

func newSQLiteDB(t *testing.T) (*sql.DB, repomanager.RepositoryManager) {
	t.Helper()
	ctx := context.Background()

	dsn := fmt.Sprintf("file:services_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := dbx.Open(ctx, dbx.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rm := repomanager.NewSQLiteRepositoryManager()
	require.NoError(t, rm.RunMigrations(ctx, db))
	return db, rm
}

func newTestCipher(t *testing.T) *cryptox.Cipher {
	t.Helper()
	c, err := cryptox.NewCipher(common.GenerateRandByteArray(cryptox.KeySize))
	require.NoError(t, err)
	return c
}

func newTestHasher() *hasher.Hasher {
	h, _ := hasher.FromConfig(hasher.AlgBcrypt, hasher.Options{BcryptCost: bcrypt.MinCost})
	return h
}

type userFixture struct {
	svc    *UserService
	db     *sql.DB
	rm     repomanager.RepositoryManager
	sink   *recordingSink
	cipher *cryptox.Cipher
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	db, rm := newSQLiteDB(t)
	f := &userFixture{db: db, rm: rm, sink: &recordingSink{}, cipher: newTestCipher(t)}
	f.svc = NewUserService(db, rm, newTestHasher(), f.cipher, f.sink, logging.Discard())
	return f
}
