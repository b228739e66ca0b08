package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/securefin/internal/activity"
	"github.com/dmitrijs2005/securefin/internal/common"
	"github.com/dmitrijs2005/securefin/internal/dbx"
	"github.com/dmitrijs2005/securefin/internal/hasher"
	"github.com/dmitrijs2005/securefin/internal/logging"
	"github.com/dmitrijs2005/securefin/internal/models"
	"github.com/dmitrijs2005/securefin/internal/policy"
	txrepo "github.com/dmitrijs2005/securefin/internal/repositories/transactions"
	usersrepo "github.com/dmitrijs2005/securefin/internal/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const goodPassword = "Abcdef1!"

func TestRegister_ThenAuthenticate(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Register(ctx, "alice", "a@x", goodPassword))

	assert.NoError(t, f.svc.Authenticate(ctx, "alice", goodPassword))
	assert.ErrorIs(t, f.svc.Authenticate(ctx, "alice", "Abcdef1?"), common.ErrorUnauthorized)

	assert.Equal(t, []string{activity.ActionRegister, activity.ActionLoginSuccess, activity.ActionLoginFail}, f.sink.actions())
}

func TestRegister_StoresNoPlaintext(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Register(ctx, "alice", "a@x", goodPassword))

	u, err := f.rm.Users(f.db).GetUserByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.NotContains(t, u.PasswordHash, goodPassword)
	assert.True(t, strings.HasPrefix(u.PasswordHash, "$2a$"))
	assert.Equal(t, "{}", u.ProfileJSON)
	assert.NotContains(t, string(u.SensitiveEncrypted), common.DefaultSensitivePayload)
	assert.Len(t, u.SensitiveEncrypted, len(common.DefaultSensitivePayload)+28)
}

func TestRegister_Duplicate(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Register(ctx, "alice", "first@x", goodPassword))
	err := f.svc.Register(ctx, "alice", "second@x", "Zyxwvu9#")
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	// the original password still works
	assert.NoError(t, f.svc.Authenticate(ctx, "alice", goodPassword))

	p, err := f.svc.GetProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "first@x", p.Email)
}

func TestRegister_ConcurrentSameUsername(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.svc.Register(ctx, "racer", "", goodPassword)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, common.ErrorAlreadyExists)
	}
	assert.Equal(t, 1, ok)
}

func TestRegister_RejectsWeakPasswordAndBadUsername(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	err := f.svc.Register(ctx, "alice", "", "short")
	assert.ErrorIs(t, err, common.ErrorValidation)
	var ve *policy.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, policy.MsgTooShort, ve.Reason)

	assert.ErrorIs(t, f.svc.Register(ctx, "", "", goodPassword), common.ErrorValidation)
	assert.ErrorIs(t, f.svc.Register(ctx, "a|b", "", goodPassword), common.ErrorValidation)

	_, err = f.svc.GetProfile(ctx, "alice")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Empty(t, f.sink.actions())
}

func TestAuthenticate_UnknownUser(t *testing.T) {
	f := newUserFixture(t)

	err := f.svc.Authenticate(context.Background(), "nouser", "whatever")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	require.Len(t, f.sink.events, 1)
	assert.Equal(t, recordedEvent{"nouser", activity.ActionLoginUnknownUser}, f.sink.events[0])
}

func TestAuthenticate_AfterAlgorithmChange(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.Register(ctx, "alice", "", goodPassword))

	pb, _ := hasher.FromConfig(hasher.AlgPBKDF2, hasher.Options{BcryptCost: bcrypt.MinCost})
	svc := NewUserService(f.db, f.rm, pb, f.cipher, f.sink, logging.Discard())

	assert.NoError(t, svc.Authenticate(ctx, "alice", goodPassword))
	assert.ErrorIs(t, svc.Authenticate(ctx, "alice", "nope"), common.ErrorUnauthorized)
}

func TestGetProfile(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.Register(ctx, "alice", "a@x", goodPassword))

	p, err := f.svc.GetProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, &models.Profile{
		UserName:  "alice",
		Email:     "a@x",
		Document:  map[string]any{},
		Sensitive: common.DefaultSensitivePayload,
	}, p)

	_, err = f.svc.GetProfile(ctx, "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetProfile_TamperedSensitive(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.Register(ctx, "alice", "", goodPassword))

	repo := f.rm.Users(f.db)
	u, err := repo.GetUserByLogin(ctx, "alice")
	require.NoError(t, err)
	u.SensitiveEncrypted[len(u.SensitiveEncrypted)-1] ^= 0xff
	require.NoError(t, repo.UpdateSensitive(ctx, "alice", u.SensitiveEncrypted))

	p, err := f.svc.GetProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, common.DecryptErrorPlaceholder, p.Sensitive)
}

func TestGetProfile_UndecodableDocument(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.Register(ctx, "alice", "", goodPassword))

	for _, doc := range []string{"not json", "null", "[1,2]"} {
		require.NoError(t, f.rm.Users(f.db).UpdateProfile(ctx, "alice", "", doc))

		p, err := f.svc.GetProfile(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{}, p.Document, "doc=%q", doc)
	}
}

func TestUpdateProfileAndSensitive(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.Register(ctx, "alice", "", goodPassword))

	require.NoError(t, f.svc.UpdateProfile(ctx, "alice", "new@x", map[string]any{"city": "Riga"}))
	require.NoError(t, f.svc.UpdateSensitive(ctx, "alice", "IBAN LV00"))

	p, err := f.svc.GetProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "new@x", p.Email)
	assert.Equal(t, map[string]any{"city": "Riga"}, p.Document)
	assert.Equal(t, "IBAN LV00", p.Sensitive)

	assert.ErrorIs(t, f.svc.UpdateProfile(ctx, "ghost", "", nil), common.ErrorNotFound)
	assert.ErrorIs(t, f.svc.UpdateSensitive(ctx, "ghost", "x"), common.ErrorNotFound)
	assert.ErrorIs(t, f.svc.UpdateProfile(ctx, "alice", "", map[string]any{"bad": make(chan int)}), common.ErrorValidation)

	assert.Equal(t, []string{activity.ActionRegister, activity.ActionProfileUpdate, activity.ActionProfileUpdate}, f.sink.actions())
}

func TestUpdateEmailKeepsDocument(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.Register(ctx, "alice", "old@x", goodPassword))
	require.NoError(t, f.svc.UpdateProfile(ctx, "alice", "old@x", map[string]any{"city": "Riga"}))

	require.NoError(t, f.svc.UpdateEmail(ctx, "alice", "new@x"))

	p, err := f.svc.GetProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "new@x", p.Email)
	assert.Equal(t, map[string]any{"city": "Riga"}, p.Document)

	assert.ErrorIs(t, f.svc.UpdateEmail(ctx, "ghost", "x@x"), common.ErrorNotFound)
}

func TestActivitySinkFailureIsNotFatal(t *testing.T) {
	f := newUserFixture(t)
	f.sink.err = errors.New("disk full")

	assert.NoError(t, f.svc.Register(context.Background(), "alice", "", goodPassword))
	assert.NoError(t, f.svc.Authenticate(context.Background(), "alice", goodPassword))
}

// --- storage failures ---

type brokenUsersRepo struct{ err error }

func (r brokenUsersRepo) Create(context.Context, *models.User) (*models.User, error) { return nil, r.err }
func (r brokenUsersRepo) GetUserByLogin(context.Context, string) (*models.User, error) {
	return nil, r.err
}
func (r brokenUsersRepo) UpdateProfile(context.Context, string, string, string) error { return r.err }
func (r brokenUsersRepo) UpdateSensitive(context.Context, string, []byte) error       { return r.err }

type brokenRepoManager struct{ repo brokenUsersRepo }

func (m brokenRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m brokenRepoManager) Users(dbx.DBTX) usersrepo.Repository          { return m.repo }
func (m brokenRepoManager) Transactions(dbx.DBTX) txrepo.Repository      { return nil }

func TestStorageFailuresAreInternal(t *testing.T) {
	rm := brokenRepoManager{repo: brokenUsersRepo{err: errors.New("db error: disk I/O error")}}
	sink := &recordingSink{}
	svc := NewUserService(nil, rm, newTestHasher(), newTestCipher(t), sink, logging.Discard())
	ctx := context.Background()

	for name, err := range map[string]error{
		"register":     svc.Register(ctx, "alice", "", goodPassword),
		"authenticate": svc.Authenticate(ctx, "alice", goodPassword),
		"update":       svc.UpdateProfile(ctx, "alice", "", nil),
		"sensitive":    svc.UpdateSensitive(ctx, "alice", "x"),
	} {
		assert.ErrorIs(t, err, common.ErrorInternal, name)
		assert.NotContains(t, err.Error(), "disk", name)
	}

	_, err := svc.GetProfile(ctx, "alice")
	assert.ErrorIs(t, err, common.ErrorInternal)
	assert.Empty(t, sink.actions())
}
