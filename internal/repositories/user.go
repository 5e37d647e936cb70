package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/contact-book/internal/logger"
	"github.com/sbilibin2017/contact-book/internal/models"
)

const userColumns = `id, username, email, password_hash, avatar, confirmed, role, refresh_token, created_at, updated_at`

// UserReadRepository handles user read operations
type UserReadRepository struct {
	db *sqlx.DB
}

func NewUserReadRepository(db *sqlx.DB) *UserReadRepository {
	return &UserReadRepository{db: db}
}

// GetByEmail returns the user with the given email, or nil if absent.
func (r *UserReadRepository) GetByEmail(ctx context.Context, email string) (*models.UserDB, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1
		LIMIT 1
	`

	var user models.UserDB
	err := r.db.GetContext(ctx, &user, query, email)

	logger.Log.Infow("user query executed",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{email},
		"error", err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

// UserWriteRepository handles user write operations. Mutations run on the
// request transaction when one is present in the context.
type UserWriteRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewUserWriteRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *UserWriteRepository {
	return &UserWriteRepository{db: db, txGetter: txGetter}
}

func (r *UserWriteRepository) executor(ctx context.Context) sqlx.ExtContext {
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			return tx
		}
	}
	return r.db
}

// Save inserts a new unconfirmed user and returns the stored record.
func (r *UserWriteRepository) Save(ctx context.Context, username, email, passwordHash string, avatar *string) (*models.UserDB, error) {
	query := `
		INSERT INTO users (username, email, password_hash, avatar, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING ` + userColumns + `
	`
	args := []any{username, email, passwordHash, avatar}

	var user models.UserDB
	err := sqlx.GetContext(ctx, r.executor(ctx), &user, query, args...)

	logger.Log.Infow("user query executed",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{username, email, avatar},
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateRefreshToken overwrites the user's stored refresh token.
// A nil token clears the slot, forcing a new login.
func (r *UserWriteRepository) UpdateRefreshToken(ctx context.Context, email string, token *string) error {
	query := `
		UPDATE users
		SET refresh_token = $2, updated_at = NOW()
		WHERE email = $1
	`

	res, err := r.executor(ctx).ExecContext(ctx, query, email, token)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow("user query executed",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{email},
		"result", rowsAffected,
		"error", err,
	)

	return err
}

// ConfirmEmail marks the user with the given email as confirmed.
// Confirming an already confirmed user is a no-op.
func (r *UserWriteRepository) ConfirmEmail(ctx context.Context, email string) error {
	query := `
		UPDATE users
		SET confirmed = TRUE, updated_at = NOW()
		WHERE email = $1
	`

	res, err := r.executor(ctx).ExecContext(ctx, query, email)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow("user query executed",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{email},
		"result", rowsAffected,
		"error", err,
	)

	return err
}

// UpdateAvatar overwrites the user's avatar URL and returns the updated record.
func (r *UserWriteRepository) UpdateAvatar(ctx context.Context, email, url string) (*models.UserDB, error) {
	query := `
		UPDATE users
		SET avatar = $2, updated_at = NOW()
		WHERE email = $1
		RETURNING ` + userColumns + `
	`

	var user models.UserDB
	err := sqlx.GetContext(ctx, r.executor(ctx), &user, query, email, url)

	logger.Log.Infow("user query executed",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{email, url},
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return &user, nil
}
