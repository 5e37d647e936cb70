package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sbilibin2017/contact-book/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestRoleMiddleware(t *testing.T) {
	tests := []struct {
		name             string
		user             *models.UserDB
		allowed          []models.Role
		expectedStatus   int
		expectNextCalled bool
	}{
		{
			name:             "admin allowed",
			user:             &models.UserDB{ID: 1, Role: models.RoleAdmin},
			allowed:          []models.Role{models.RoleAdmin, models.RoleModerator},
			expectedStatus:   http.StatusOK,
			expectNextCalled: true,
		},
		{
			name:             "moderator allowed",
			user:             &models.UserDB{ID: 2, Role: models.RoleModerator},
			allowed:          []models.Role{models.RoleAdmin, models.RoleModerator},
			expectedStatus:   http.StatusOK,
			expectNextCalled: true,
		},
		{
			name:             "plain user forbidden",
			user:             &models.UserDB{ID: 3, Role: models.RoleUser},
			allowed:          []models.Role{models.RoleAdmin, models.RoleModerator},
			expectedStatus:   http.StatusForbidden,
			expectNextCalled: false,
		},
		{
			name:             "no user in context",
			user:             nil,
			allowed:          []models.Role{models.RoleAdmin},
			expectedStatus:   http.StatusUnauthorized,
			expectNextCalled: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				w.WriteHeader(http.StatusOK)
			})

			handler := RoleMiddleware(tt.allowed...)(nextHandler)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.user != nil {
				req = req.WithContext(SetUserToContext(req.Context(), tt.user))
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, tt.expectNextCalled, nextCalled)
		})
	}
}
