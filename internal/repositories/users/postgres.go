package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/securefin/internal/common"
	"github.com/dmitrijs2005/securefin/internal/dbx"
	"github.com/dmitrijs2005/securefin/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (username, email, password_hash, profile_json, sensitive_encrypted)
         VALUES ($1, $2, $3, $4, $5)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.UserName, user.Email, user.PasswordHash, profileOrEmpty(user.ProfileJSON), user.SensitiveEncrypted).Scan(&user.ID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	user.ProfileJSON = profileOrEmpty(user.ProfileJSON)

	return user, nil
}

func (r *PostgresRepository) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	query :=
		`SELECT id, username, email, password_hash, profile_json, sensitive_encrypted FROM users
		 WHERE username = $1
		 `

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

func (r *PostgresRepository) UpdateProfile(ctx context.Context, login, email, profileJSON string) error {
	query :=
		`UPDATE users SET email = $1, profile_json = $2
		 WHERE username = $3
		 `

	res, err := r.db.ExecContext(ctx, query, email, profileOrEmpty(profileJSON), login)
	return affectedOne(res, err)
}

func (r *PostgresRepository) UpdateSensitive(ctx context.Context, login string, encrypted []byte) error {
	query :=
		`UPDATE users SET sensitive_encrypted = $1
		 WHERE username = $2
		 `

	res, err := r.db.ExecContext(ctx, query, encrypted, login)
	return affectedOne(res, err)
}
