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

const contactColumns = `id, first_name, last_name, email, phone_number, birthday, data, user_id, created_at, updated_at`

// ContactReadRepository handles contact read operations.
// Every query except ListAll is scoped to the owning user.
type ContactReadRepository struct {
	db *sqlx.DB
}

func NewContactReadRepository(db *sqlx.DB) *ContactReadRepository {
	return &ContactReadRepository{db: db}
}

// List returns a page of the given user's contacts.
func (r *ContactReadRepository) List(ctx context.Context, limit, offset int, userID int64) ([]models.ContactDB, error) {
	const query = `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE user_id = $1
		ORDER BY id
		LIMIT $2 OFFSET $3
	`

	contacts := []models.ContactDB{}
	err := r.db.SelectContext(ctx, &contacts, query, userID, limit, offset)

	logger.Log.Infow("contact query executed",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{userID, limit, offset},
		"result", len(contacts),
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return contacts, nil
}

// ListAll returns a page of all contacts regardless of owner.
// Administrative enumeration only; callers must gate it by role.
func (r *ContactReadRepository) ListAll(ctx context.Context, limit, offset int) ([]models.ContactDB, error) {
	const query = `
		SELECT ` + contactColumns + `
		FROM contacts
		ORDER BY id
		LIMIT $1 OFFSET $2
	`

	contacts := []models.ContactDB{}
	err := r.db.SelectContext(ctx, &contacts, query, limit, offset)

	logger.Log.Infow("contact query executed",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{limit, offset},
		"result", len(contacts),
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return contacts, nil
}

// GetByID returns the contact with the given id owned by the given user,
// or nil when the contact is absent or owned by someone else.
func (r *ContactReadRepository) GetByID(ctx context.Context, id, userID int64) (*models.ContactDB, error) {
	const query = `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE id = $1 AND user_id = $2
		LIMIT 1
	`

	var contact models.ContactDB
	err := r.db.GetContext(ctx, &contact, query, id, userID)

	logger.Log.Infow("contact query executed",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{id, userID},
		"error", err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &contact, nil
}

// ContactWriteRepository handles contact write operations. Mutations run on
// the request transaction when one is present in the context.
type ContactWriteRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewContactWriteRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *ContactWriteRepository {
	return &ContactWriteRepository{db: db, txGetter: txGetter}
}

func (r *ContactWriteRepository) executor(ctx context.Context) sqlx.ExtContext {
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			return tx
		}
	}
	return r.db
}

// Save inserts a new contact owned by contact.UserID and returns the stored record.
func (r *ContactWriteRepository) Save(ctx context.Context, contact models.ContactDB) (*models.ContactDB, error) {
	query := `
		INSERT INTO contacts (first_name, last_name, email, phone_number, birthday, data, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING ` + contactColumns + `
	`
	args := []any{contact.FirstName, contact.LastName, contact.Email, contact.PhoneNumber, contact.Birthday, contact.Data, contact.UserID}

	var saved models.ContactDB
	err := sqlx.GetContext(ctx, r.executor(ctx), &saved, query, args...)

	logger.Log.Infow("contact query executed",
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// Update fully replaces the fields of the contact owned by userID.
// Returns nil when the contact is absent or owned by someone else.
func (r *ContactWriteRepository) Update(ctx context.Context, id, userID int64, contact models.ContactDB) (*models.ContactDB, error) {
	query := `
		UPDATE contacts
		SET first_name = $3, last_name = $4, email = $5, phone_number = $6, birthday = $7, data = $8, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + contactColumns + `
	`
	args := []any{id, userID, contact.FirstName, contact.LastName, contact.Email, contact.PhoneNumber, contact.Birthday, contact.Data}

	var updated models.ContactDB
	err := sqlx.GetContext(ctx, r.executor(ctx), &updated, query, args...)

	logger.Log.Infow("contact query executed",
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"error", err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &updated, nil
}

// Delete removes the contact owned by userID and returns the deleted record.
// Returns nil when the contact is absent or owned by someone else.
func (r *ContactWriteRepository) Delete(ctx context.Context, id, userID int64) (*models.ContactDB, error) {
	query := `
		DELETE FROM contacts
		WHERE id = $1 AND user_id = $2
		RETURNING ` + contactColumns + `
	`

	var deleted models.ContactDB
	err := sqlx.GetContext(ctx, r.executor(ctx), &deleted, query, id, userID)

	logger.Log.Infow("contact query executed",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{id, userID},
		"error", err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &deleted, nil
}
