package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sbilibin2017/contact-book/internal/logger"
	"github.com/sbilibin2017/contact-book/internal/middlewares"
	"github.com/sbilibin2017/contact-book/internal/models"
	"github.com/sbilibin2017/contact-book/internal/services"
)

// ContactLister defines the interface for listing the caller's contacts.
type ContactLister interface {
	List(ctx context.Context, limit, offset int, userID int64) ([]models.ContactDB, error)
}

// AllContactLister defines the interface for the administrative listing.
type AllContactLister interface {
	ListAll(ctx context.Context, limit, offset int) ([]models.ContactDB, error)
}

// ContactGetter defines the interface for reading a single contact.
type ContactGetter interface {
	Get(ctx context.Context, id, userID int64) (*models.ContactDB, error)
}

// ContactCreator defines the interface for creating a contact.
type ContactCreator interface {
	Create(ctx context.Context, contact models.ContactDB, userID int64) (*models.ContactDB, error)
}

// ContactUpdater defines the interface for fully replacing a contact.
type ContactUpdater interface {
	Update(ctx context.Context, id, userID int64, contact models.ContactDB) (*models.ContactDB, error)
}

// ContactDeleter defines the interface for deleting a contact.
type ContactDeleter interface {
	Delete(ctx context.Context, id, userID int64) (*models.ContactDB, error)
}

// ContactRequest represents the JSON body for creating or replacing a contact
// swagger:model ContactRequest
type ContactRequest struct {
	// First name
	// required: true
	// example: John
	FirstName string `json:"first_name"`

	// Last name
	// required: true
	// example: Doe
	LastName string `json:"last_name"`

	// Email
	// required: true
	// example: john@doe.com
	Email string `json:"email"`

	// Phone number
	// required: true
	// example: +380501234567
	PhoneNumber string `json:"phone_number"`

	// Birthday in YYYY-MM-DD format
	// required: true
	// example: 2000-01-01
	Birthday string `json:"birthday"`

	// Optional free-form data
	Data *string `json:"data"`
}

// ContactErrorResponse represents an error response for contact operations
// swagger:model ContactErrorResponse
type ContactErrorResponse struct {
	// Error message
	// example: NOT FOUND!
	Error string `json:"error"`
}

func writeContactError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ContactErrorResponse{Error: msg})
}

func writeContactJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func parsePage(r *http.Request) (limit, offset int) {
	limit = 10
	offset = 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = n
		}
	}
	return limit, offset
}

func parseContactID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("invalid contact id")
	}
	return id, nil
}

func parseContactBody(r *http.Request) (*models.ContactDB, error) {
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.New("invalid request body")
	}

	birthday, err := time.Parse(time.DateOnly, req.Birthday)
	if err != nil {
		return nil, errors.New("invalid birthday, expected YYYY-MM-DD")
	}

	return &models.ContactDB{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Birthday:    birthday,
		Data:        req.Data,
	}, nil
}

// NewGetContactsHandler returns an HTTP handler listing the caller's contacts.
// @Summary List own contacts
// @Description Returns a page of the caller's contacts
// @Tags contacts
// @Produce json
// @Param limit query int false "Page size (10-500)"
// @Param offset query int false "Page offset (0-200)"
// @Success 200 {array} models.ContactDB "Contacts"
// @Failure 401 {object} handlers.ContactErrorResponse "Not authenticated"
// @Router /contacts/ [get]
// @Security BearerAuth
func NewGetContactsHandler(svc ContactLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middlewares.GetUserFromContext(r.Context())
		if user == nil {
			writeContactError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		limit, offset := parsePage(r)

		contacts, err := svc.List(r.Context(), limit, offset, user.ID)
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeContactError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeContactJSON(w, http.StatusOK, contacts)
	}
}

// NewGetAllContactsHandler returns an HTTP handler listing every user's
// contacts. The route must sit behind the moderator/admin role gate.
// @Summary List all contacts
// @Description Returns a page of all contacts regardless of owner
// @Tags contacts
// @Produce json
// @Param limit query int false "Page size (10-500)"
// @Param offset query int false "Page offset (0-200)"
// @Success 200 {array} models.ContactDB "Contacts"
// @Failure 403 {object} handlers.ContactErrorResponse "Forbidden"
// @Router /contacts/all [get]
// @Security BearerAuth
func NewGetAllContactsHandler(svc AllContactLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := parsePage(r)

		contacts, err := svc.ListAll(r.Context(), limit, offset)
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeContactError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeContactJSON(w, http.StatusOK, contacts)
	}
}

// NewGetContactHandler returns an HTTP handler reading one of the caller's
// contacts. A contact owned by someone else answers 404, same as an
// absent one.
// @Summary Get contact
// @Description Returns a single contact owned by the caller
// @Tags contacts
// @Produce json
// @Param id path int true "Contact ID"
// @Success 200 {object} models.ContactDB "Contact"
// @Failure 404 {object} handlers.ContactErrorResponse "Not found"
// @Router /contacts/{id} [get]
// @Security BearerAuth
func NewGetContactHandler(svc ContactGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middlewares.GetUserFromContext(r.Context())
		if user == nil {
			writeContactError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		id, err := parseContactID(r)
		if err != nil {
			writeContactError(w, http.StatusBadRequest, err.Error())
			return
		}

		contact, err := svc.Get(r.Context(), id, user.ID)
		if err != nil {
			if errors.Is(err, services.ErrContactNotFound) {
				writeContactError(w, http.StatusNotFound, "NOT FOUND!")
				return
			}
			logger.Log.Errorw("internal server error", "err", err)
			writeContactError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeContactJSON(w, http.StatusOK, contact)
	}
}

// NewCreateContactHandler returns an HTTP handler creating a contact owned
// by the caller.
// @Summary Create contact
// @Description Creates a contact owned by the caller
// @Tags contacts
// @Accept json
// @Produce json
// @Param contactRequest body handlers.ContactRequest true "Contact"
// @Success 201 {object} models.ContactDB "Created contact"
// @Failure 400 {object} handlers.ContactErrorResponse "Invalid request body"
// @Router /contacts/ [post]
// @Security BearerAuth
func NewCreateContactHandler(svc ContactCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middlewares.GetUserFromContext(r.Context())
		if user == nil {
			writeContactError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		contact, err := parseContactBody(r)
		if err != nil {
			writeContactError(w, http.StatusBadRequest, err.Error())
			return
		}

		created, err := svc.Create(r.Context(), *contact, user.ID)
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			writeContactError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeContactJSON(w, http.StatusCreated, created)
	}
}

// NewUpdateContactHandler returns an HTTP handler fully replacing one of
// the caller's contacts. Partial updates are not supported: every field
// is written.
// @Summary Replace contact
// @Description Fully replaces a contact owned by the caller
// @Tags contacts
// @Accept json
// @Produce json
// @Param id path int true "Contact ID"
// @Param contactRequest body handlers.ContactRequest true "Contact"
// @Success 200 {object} models.ContactDB "Updated contact"
// @Failure 404 {object} handlers.ContactErrorResponse "Not found"
// @Router /contacts/{id} [put]
// @Security BearerAuth
func NewUpdateContactHandler(svc ContactUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middlewares.GetUserFromContext(r.Context())
		if user == nil {
			writeContactError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		id, err := parseContactID(r)
		if err != nil {
			writeContactError(w, http.StatusBadRequest, err.Error())
			return
		}

		contact, err := parseContactBody(r)
		if err != nil {
			writeContactError(w, http.StatusBadRequest, err.Error())
			return
		}

		updated, err := svc.Update(r.Context(), id, user.ID, *contact)
		if err != nil {
			if errors.Is(err, services.ErrContactNotFound) {
				writeContactError(w, http.StatusNotFound, "NOT FOUND!")
				return
			}
			logger.Log.Errorw("internal server error", "err", err)
			writeContactError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeContactJSON(w, http.StatusOK, updated)
	}
}

// NewDeleteContactHandler returns an HTTP handler deleting one of the
// caller's contacts and returning the deleted record.
// @Summary Delete contact
// @Description Deletes a contact owned by the caller
// @Tags contacts
// @Produce json
// @Param id path int true "Contact ID"
// @Success 200 {object} models.ContactDB "Deleted contact"
// @Failure 404 {object} handlers.ContactErrorResponse "Not found"
// @Router /contacts/{id} [delete]
// @Security BearerAuth
func NewDeleteContactHandler(svc ContactDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middlewares.GetUserFromContext(r.Context())
		if user == nil {
			writeContactError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		id, err := parseContactID(r)
		if err != nil {
			writeContactError(w, http.StatusBadRequest, err.Error())
			return
		}

		deleted, err := svc.Delete(r.Context(), id, user.ID)
		if err != nil {
			if errors.Is(err, services.ErrContactNotFound) {
				writeContactError(w, http.StatusNotFound, "NOT FOUND!")
				return
			}
			logger.Log.Errorw("internal server error", "err", err)
			writeContactError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeContactJSON(w, http.StatusOK, deleted)
	}
}
