package services

import (
	"context"
	"errors"

	"github.com/sbilibin2017/contact-book/internal/logger"
	"github.com/sbilibin2017/contact-book/internal/models"
)

// ErrContactNotFound covers both an absent contact and a contact owned by
// another user; callers must not be able to tell the two apart.
var ErrContactNotFound = errors.New("contact not found")

// Pagination bounds for contact listings.
const (
	minLimit  = 10
	maxLimit  = 500
	minOffset = 0
	maxOffset = 200
)

// ContactReader defines read-only operations for contacts.
type ContactReader interface {
	List(ctx context.Context, limit, offset int, userID int64) ([]models.ContactDB, error)
	ListAll(ctx context.Context, limit, offset int) ([]models.ContactDB, error)
	GetByID(ctx context.Context, id, userID int64) (*models.ContactDB, error)
}

// ContactWriter defines write operations for contacts.
type ContactWriter interface {
	Save(ctx context.Context, contact models.ContactDB) (*models.ContactDB, error)
	Update(ctx context.Context, id, userID int64, contact models.ContactDB) (*models.ContactDB, error)
	Delete(ctx context.Context, id, userID int64) (*models.ContactDB, error)
}

// ContactService handles contact CRUD scoped to the owning user plus the
// administrative unscoped listing.
type ContactService struct {
	reader ContactReader
	writer ContactWriter
}

// NewContactService creates a new ContactService instance.
func NewContactService(reader ContactReader, writer ContactWriter) *ContactService {
	return &ContactService{
		reader: reader,
		writer: writer,
	}
}

func clampPage(limit, offset int) (int, int) {
	if limit < minLimit {
		limit = minLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < minOffset {
		offset = minOffset
	}
	if offset > maxOffset {
		offset = maxOffset
	}
	return limit, offset
}

// List returns a page of the user's own contacts.
func (svc *ContactService) List(ctx context.Context, limit, offset int, userID int64) ([]models.ContactDB, error) {
	limit, offset = clampPage(limit, offset)

	contacts, err := svc.reader.List(ctx, limit, offset, userID)
	if err != nil {
		logger.Log.Errorw("failed to list contacts", "user_id", userID, "err", err)
		return nil, err
	}
	return contacts, nil
}

// ListAll returns a page of every user's contacts. Enumeration only: the
// role gate in front of it never extends to mutations.
func (svc *ContactService) ListAll(ctx context.Context, limit, offset int) ([]models.ContactDB, error) {
	limit, offset = clampPage(limit, offset)

	contacts, err := svc.reader.ListAll(ctx, limit, offset)
	if err != nil {
		logger.Log.Errorw("failed to list all contacts", "err", err)
		return nil, err
	}
	return contacts, nil
}

// Get returns the user's contact with the given id.
func (svc *ContactService) Get(ctx context.Context, id, userID int64) (*models.ContactDB, error) {
	contact, err := svc.reader.GetByID(ctx, id, userID)
	if err != nil {
		logger.Log.Errorw("failed to get contact", "id", id, "user_id", userID, "err", err)
		return nil, err
	}
	if contact == nil {
		return nil, ErrContactNotFound
	}
	return contact, nil
}

// Create stores a new contact owned by userID.
func (svc *ContactService) Create(ctx context.Context, contact models.ContactDB, userID int64) (*models.ContactDB, error) {
	contact.UserID = userID

	saved, err := svc.writer.Save(ctx, contact)
	if err != nil {
		logger.Log.Errorw("failed to create contact", "user_id", userID, "err", err)
		return nil, err
	}
	return saved, nil
}

// Update fully replaces the fields of the user's contact with the given id.
func (svc *ContactService) Update(ctx context.Context, id, userID int64, contact models.ContactDB) (*models.ContactDB, error) {
	updated, err := svc.writer.Update(ctx, id, userID, contact)
	if err != nil {
		logger.Log.Errorw("failed to update contact", "id", id, "user_id", userID, "err", err)
		return nil, err
	}
	if updated == nil {
		return nil, ErrContactNotFound
	}
	return updated, nil
}

// Delete removes the user's contact with the given id and returns it.
func (svc *ContactService) Delete(ctx context.Context, id, userID int64) (*models.ContactDB, error) {
	deleted, err := svc.writer.Delete(ctx, id, userID)
	if err != nil {
		logger.Log.Errorw("failed to delete contact", "id", id, "user_id", userID, "err", err)
		return nil, err
	}
	if deleted == nil {
		return nil, ErrContactNotFound
	}
	return deleted, nil
}
