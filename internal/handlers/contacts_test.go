package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/contact-book/internal/middlewares"
	"github.com/sbilibin2017/contact-book/internal/models"
	"github.com/sbilibin2017/contact-book/internal/services"
	"github.com/stretchr/testify/assert"
)

var testUser = &models.UserDB{ID: 7, Email: "john@doe.com", Role: models.RoleUser}

// withUser puts the authenticated user into the request context the way
// the auth middleware would.
func withUser(req *http.Request, user *models.UserDB) *http.Request {
	return req.WithContext(middlewares.SetUserToContext(req.Context(), user))
}

func TestGetContactsHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockContactLister(ctrl)

	t.Run("default pagination", func(t *testing.T) {
		expected := []models.ContactDB{{ID: 1, FirstName: "Jane", UserID: 7}}

		mockSvc.EXPECT().
			List(gomock.Any(), 10, 0, int64(7)).
			Return(expected, nil)

		req := withUser(httptest.NewRequest(http.MethodGet, "/contacts/", nil), testUser)
		w := httptest.NewRecorder()

		NewGetContactsHandler(mockSvc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp []models.ContactDB
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp, 1)
		assert.Equal(t, "Jane", resp[0].FirstName)
	})

	t.Run("explicit pagination", func(t *testing.T) {
		mockSvc.EXPECT().
			List(gomock.Any(), 50, 20, int64(7)).
			Return([]models.ContactDB{}, nil)

		req := withUser(httptest.NewRequest(http.MethodGet, "/contacts/?limit=50&offset=20", nil), testUser)
		w := httptest.NewRecorder()

		NewGetContactsHandler(mockSvc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("no user in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/contacts/", nil)
		w := httptest.NewRecorder()

		NewGetContactsHandler(mockSvc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("internal error", func(t *testing.T) {
		mockSvc.EXPECT().
			List(gomock.Any(), 10, 0, int64(7)).
			Return(nil, errors.New("db error"))

		req := withUser(httptest.NewRequest(http.MethodGet, "/contacts/", nil), testUser)
		w := httptest.NewRecorder()

		NewGetContactsHandler(mockSvc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestGetAllContactsHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockAllContactLister(ctrl)

	expected := []models.ContactDB{
		{ID: 1, FirstName: "Jane", UserID: 7},
		{ID: 2, FirstName: "Bob", UserID: 8},
	}

	mockSvc.EXPECT().
		ListAll(gomock.Any(), 10, 0).
		Return(expected, nil)

	req := httptest.NewRequest(http.MethodGet, "/contacts/all", nil)
	w := httptest.NewRecorder()

	NewGetAllContactsHandler(mockSvc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp []models.ContactDB
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
}

func TestGetContactHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockContactGetter(ctrl)

	r := chi.NewRouter()
	r.Get("/contacts/{id}", NewGetContactHandler(mockSvc))

	t.Run("found", func(t *testing.T) {
		mockSvc.EXPECT().
			Get(gomock.Any(), int64(1), int64(7)).
			Return(&models.ContactDB{ID: 1, FirstName: "Jane", UserID: 7}, nil)

		req := withUser(httptest.NewRequest(http.MethodGet, "/contacts/1", nil), testUser)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.EXPECT().
			Get(gomock.Any(), int64(99), int64(7)).
			Return(nil, services.ErrContactNotFound)

		req := withUser(httptest.NewRequest(http.MethodGet, "/contacts/99", nil), testUser)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)

		var resp ContactErrorResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "NOT FOUND!", resp.Error)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := withUser(httptest.NewRequest(http.MethodGet, "/contacts/abc", nil), testUser)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCreateContactHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockContactCreator(ctrl)

	t.Run("created", func(t *testing.T) {
		birthday, _ := time.Parse(time.DateOnly, "2000-01-01")

		mockSvc.EXPECT().
			Create(gomock.Any(), gomock.Any(), int64(7)).
			DoAndReturn(func(_ interface{}, contact models.ContactDB, userID int64) (*models.ContactDB, error) {
				assert.Equal(t, "Jane", contact.FirstName)
				assert.Equal(t, birthday, contact.Birthday)
				contact.ID = 1
				contact.UserID = userID
				return &contact, nil
			})

		body, _ := json.Marshal(ContactRequest{
			FirstName:   "Jane",
			LastName:    "Doe",
			Email:       "jane@doe.com",
			PhoneNumber: "+380501234567",
			Birthday:    "2000-01-01",
		})
		req := withUser(httptest.NewRequest(http.MethodPost, "/contacts/", bytes.NewReader(body)), testUser)
		w := httptest.NewRecorder()

		NewCreateContactHandler(mockSvc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp models.ContactDB
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(1), resp.ID)
		assert.Equal(t, int64(7), resp.UserID)
	})

	t.Run("invalid birthday", func(t *testing.T) {
		body, _ := json.Marshal(ContactRequest{
			FirstName: "Jane",
			Birthday:  "01.01.2000",
		})
		req := withUser(httptest.NewRequest(http.MethodPost, "/contacts/", bytes.NewReader(body)), testUser)
		w := httptest.NewRecorder()

		NewCreateContactHandler(mockSvc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		req := withUser(httptest.NewRequest(http.MethodPost, "/contacts/", bytes.NewReader([]byte("{invalid"))), testUser)
		w := httptest.NewRecorder()

		NewCreateContactHandler(mockSvc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUpdateContactHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockContactUpdater(ctrl)

	r := chi.NewRouter()
	r.Put("/contacts/{id}", NewUpdateContactHandler(mockSvc))

	body, _ := json.Marshal(ContactRequest{
		FirstName:   "Janet",
		LastName:    "Doe",
		Email:       "jane@doe.com",
		PhoneNumber: "+380501234567",
		Birthday:    "2000-01-01",
	})

	t.Run("updated", func(t *testing.T) {
		mockSvc.EXPECT().
			Update(gomock.Any(), int64(1), int64(7), gomock.Any()).
			Return(&models.ContactDB{ID: 1, FirstName: "Janet", UserID: 7}, nil)

		req := withUser(httptest.NewRequest(http.MethodPut, "/contacts/1", bytes.NewReader(body)), testUser)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp models.ContactDB
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Janet", resp.FirstName)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.EXPECT().
			Update(gomock.Any(), int64(99), int64(7), gomock.Any()).
			Return(nil, services.ErrContactNotFound)

		req := withUser(httptest.NewRequest(http.MethodPut, "/contacts/99", bytes.NewReader(body)), testUser)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeleteContactHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockContactDeleter(ctrl)

	r := chi.NewRouter()
	r.Delete("/contacts/{id}", NewDeleteContactHandler(mockSvc))

	t.Run("deleted record is returned", func(t *testing.T) {
		mockSvc.EXPECT().
			Delete(gomock.Any(), int64(1), int64(7)).
			Return(&models.ContactDB{ID: 1, FirstName: "Jane", UserID: 7}, nil)

		req := withUser(httptest.NewRequest(http.MethodDelete, "/contacts/1", nil), testUser)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp models.ContactDB
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(1), resp.ID)
		assert.Equal(t, "Jane", resp.FirstName)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.EXPECT().
			Delete(gomock.Any(), int64(99), int64(7)).
			Return(nil, services.ErrContactNotFound)

		req := withUser(httptest.NewRequest(http.MethodDelete, "/contacts/99", nil), testUser)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
