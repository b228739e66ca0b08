// Package services contains the business logic behind the shell. This file
// implements UserService: registration, authentication and profile access
// over the users repository.
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/dmitrijs2005/securefin/internal/activity"
	"github.com/dmitrijs2005/securefin/internal/common"
	"github.com/dmitrijs2005/securefin/internal/cryptox"
	"github.com/dmitrijs2005/securefin/internal/dbx"
	"github.com/dmitrijs2005/securefin/internal/hasher"
	"github.com/dmitrijs2005/securefin/internal/logging"
	"github.com/dmitrijs2005/securefin/internal/models"
	"github.com/dmitrijs2005/securefin/internal/policy"
	"github.com/dmitrijs2005/securefin/internal/repositories/repomanager"
)

// UserService is the user directory. Errors returned to callers are always
// one of the common sentinels (or a *policy.ValidationError); storage
// detail goes to the diagnostic log only.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *hasher.Hasher
	cipher      *cryptox.Cipher
	activity    activity.Sink
	log         logging.Logger
}

// NewUserService wires a UserService. Every dependency is required.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, h *hasher.Hasher, c *cryptox.Cipher,
	sink activity.Sink, log logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      h,
		cipher:      c,
		activity:    sink,
		log:         log,
	}
}

// Register creates a user. The username and password are validated first,
// so a rejected password never reaches the hasher or the database. A taken
// username yields common.ErrorAlreadyExists and leaves the existing record
// untouched.
func (s *UserService) Register(ctx context.Context, username, email, password string) error {
	if err := policy.ValidateUsername(username); err != nil {
		return err
	}
	if err := policy.Check(password); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			return err
		}
		s.log.Error(ctx, "hash password", "username", username, "error", err)
		return common.ErrorInternal
	}

	sensitive, err := s.cipher.EncryptString(common.DefaultSensitivePayload)
	if err != nil {
		s.log.Error(ctx, "encrypt sensitive field", "username", username, "error", err)
		return common.ErrorInternal
	}

	user := &models.User{
		UserName:           username,
		Email:              email,
		PasswordHash:       hash,
		ProfileJSON:        common.EmptyProfileDocument,
		SensitiveEncrypted: sensitive,
	}

	repo := s.repomanager.Users(s.db)
	if _, err := repo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			s.log.Info(ctx, "registration rejected, username taken", "username", username)
			return common.ErrorAlreadyExists
		}
		s.log.Error(ctx, "create user", "username", username, "error", err)
		return common.ErrorInternal
	}

	s.log.Info(ctx, "user registered", "username", username, "algorithm", s.hasher.Algorithm())
	s.RecordActivity(ctx, username, activity.ActionRegister)
	return nil
}

// Authenticate checks the password of username. Unknown users and wrong
// passwords both yield common.ErrorUnauthorized; unknown users still pay for
// one hash verification so the two cases take similar time.
func (s *UserService) Authenticate(ctx context.Context, username, password string) error {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.VerifyDummy(password)
			s.RecordActivity(ctx, username, activity.ActionLoginUnknownUser)
			return common.ErrorUnauthorized
		}
		s.log.Error(ctx, "load user", "username", username, "error", err)
		return common.ErrorInternal
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.RecordActivity(ctx, username, activity.ActionLoginFail)
		return common.ErrorUnauthorized
	}

	s.RecordActivity(ctx, username, activity.ActionLoginSuccess)
	return nil
}

// GetProfile returns the decrypted profile of username, or
// common.ErrorNotFound. A sensitive field that fails to decrypt is reported
// as common.DecryptErrorPlaceholder; an unreadable profile document as an
// empty one.
func (s *UserService) GetProfile(ctx context.Context, username string) (*models.Profile, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.log.Error(ctx, "load user", "username", username, "error", err)
		return nil, common.ErrorInternal
	}

	profile := &models.Profile{
		UserName: user.UserName,
		Email:    user.Email,
		Document: map[string]any{},
	}

	if err := json.Unmarshal([]byte(user.ProfileJSON), &profile.Document); err != nil || profile.Document == nil {
		s.log.Warn(ctx, "undecodable profile document", "username", username, "error", err)
		profile.Document = map[string]any{}
	}

	sensitive, err := s.cipher.DecryptString(user.SensitiveEncrypted)
	if err != nil {
		s.log.Warn(ctx, "sensitive field did not decrypt", "username", username, "error", err)
		sensitive = common.DecryptErrorPlaceholder
	}
	profile.Sensitive = sensitive

	return profile, nil
}

// UpdateProfile replaces the email and profile document of username.
func (s *UserService) UpdateProfile(ctx context.Context, username, email string, doc map[string]any) error {
	if doc == nil {
		doc = map[string]any{}
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return errors.Join(common.ErrorValidation, err)
	}

	repo := s.repomanager.Users(s.db)
	if err := repo.UpdateProfile(ctx, username, email, string(raw)); err != nil {
		return s.storageError(ctx, "update profile", username, err)
	}

	s.RecordActivity(ctx, username, activity.ActionProfileUpdate)
	return nil
}

// UpdateEmail replaces the email of username and keeps the stored profile
// document. The read and the write share one transaction.
func (s *UserService) UpdateEmail(ctx context.Context, username, email string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		user, err := repo.GetUserByLogin(ctx, username)
		if err != nil {
			return err
		}
		return repo.UpdateProfile(ctx, username, email, user.ProfileJSON)
	})
	if err != nil {
		return s.storageError(ctx, "update email", username, err)
	}

	s.RecordActivity(ctx, username, activity.ActionProfileUpdate)
	return nil
}

// UpdateSensitive encrypts value and stores it as the sensitive field of username.
func (s *UserService) UpdateSensitive(ctx context.Context, username, value string) error {
	blob, err := s.cipher.EncryptString(value)
	if err != nil {
		s.log.Error(ctx, "encrypt sensitive field", "username", username, "error", err)
		return common.ErrorInternal
	}

	repo := s.repomanager.Users(s.db)
	if err := repo.UpdateSensitive(ctx, username, blob); err != nil {
		return s.storageError(ctx, "update sensitive field", username, err)
	}

	s.RecordActivity(ctx, username, activity.ActionProfileUpdate)
	return nil
}

// RecordActivity writes an activity event. The activity log is best-effort:
// a failed write is logged and otherwise ignored.
func (s *UserService) RecordActivity(ctx context.Context, username, action string) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Record(ctx, username, action); err != nil {
		s.log.Warn(ctx, "activity log write failed", "action", action, "error", err)
	}
}

func (s *UserService) storageError(ctx context.Context, op, username string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrorNotFound
	}
	s.log.Error(ctx, op, "username", username, "error", err)
	return common.ErrorInternal
}
