package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/securefin/internal/common"
	"github.com/dmitrijs2005/securefin/internal/dbx"
	"github.com/dmitrijs2005/securefin/internal/models"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (username, email, password_hash, profile_json, sensitive_encrypted)
		 VALUES (?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		user.UserName, user.Email, user.PasswordHash, profileOrEmpty(user.ProfileJSON), user.SensitiveEncrypted)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	user.ID = id
	user.ProfileJSON = profileOrEmpty(user.ProfileJSON)

	return user, nil
}

func (r *SQLiteRepository) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	query :=
		`SELECT id, username, email, password_hash, profile_json, sensitive_encrypted FROM users
		 WHERE username = ?`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, login).Scan(
		&user.ID, &user.UserName, &user.Email, &user.PasswordHash, &user.ProfileJSON, &user.SensitiveEncrypted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *SQLiteRepository) UpdateProfile(ctx context.Context, login, email, profileJSON string) error {
	query := `UPDATE users SET email = ?, profile_json = ? WHERE username = ?`

	res, err := r.db.ExecContext(ctx, query, email, profileOrEmpty(profileJSON), login)
	return affectedOne(res, err)
}

func (r *SQLiteRepository) UpdateSensitive(ctx context.Context, login string, encrypted []byte) error {
	query := `UPDATE users SET sensitive_encrypted = ? WHERE username = ?`

	res, err := r.db.ExecContext(ctx, query, encrypted, login)
	return affectedOne(res, err)
}

func isSQLiteUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
