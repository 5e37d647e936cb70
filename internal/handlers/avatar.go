package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sbilibin2017/contact-book/internal/logger"
	"github.com/sbilibin2017/contact-book/internal/middlewares"
	"github.com/sbilibin2017/contact-book/internal/models"
	"github.com/sbilibin2017/contact-book/internal/services"
)

// AvatarUpdater defines the interface for refreshing a user's avatar.
type AvatarUpdater interface {
	UpdateAvatar(ctx context.Context, email string) (*models.UserDB, error)
}

// AvatarErrorResponse represents an error response for avatar refresh
// swagger:model AvatarErrorResponse
type AvatarErrorResponse struct {
	// Error message
	// example: avatar not found
	Error string `json:"error"`
}

// NewUpdateAvatarHandler returns an HTTP handler that re-resolves the
// caller's Gravatar and stores the new URL.
// @Summary Refresh own avatar
// @Description Looks up the caller's Gravatar again and persists the URL
// @Tags auth
// @Produce json
// @Success 200 {object} models.UserDB "Updated user"
// @Failure 401 {object} handlers.AvatarErrorResponse "Not authenticated"
// @Failure 404 {object} handlers.AvatarErrorResponse "No Gravatar for this email"
// @Router /auth/avatar [patch]
// @Security BearerAuth
func NewUpdateAvatarHandler(svc AvatarUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middlewares.GetUserFromContext(r.Context())
		if user == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(AvatarErrorResponse{
				Error: "Not authenticated",
			})
			return
		}

		updated, err := svc.UpdateAvatar(r.Context(), user.Email)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			switch {
			case errors.Is(err, services.ErrAvatarNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(AvatarErrorResponse{
					Error: "avatar not found",
				})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(AvatarErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(updated)
	}
}
