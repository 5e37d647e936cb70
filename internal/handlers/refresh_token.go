package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sbilibin2017/contact-book/internal/logger"
	"github.com/sbilibin2017/contact-book/internal/services"
)

// Refresher defines the interface that the token-rotation service must implement.
type Refresher interface {
	Refresh(ctx context.Context, tokenString string) (accessToken, refreshToken string, err error)
}

// RefreshTokener extracts the bearer token from a request.
type RefreshTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
}

// RefreshErrorResponse represents an error response for token refresh
// swagger:model RefreshErrorResponse
type RefreshErrorResponse struct {
	// Error message
	// example: Invalid refresh token
	Error string `json:"error"`
}

// NewRefreshTokenHandler returns an HTTP handler that rotates a token pair.
// Presenting a refresh token that no longer matches the stored one kills
// the session: the stored token is cleared and the request rejected.
// @Summary Refresh token pair
// @Description Exchanges a valid refresh token for a new access/refresh pair
// @Tags auth
// @Produce json
// @Success 200 {object} handlers.TokenResponse "New token pair"
// @Failure 401 {object} handlers.RefreshErrorResponse "Invalid refresh token"
// @Router /auth/refresh_token [get]
// @Security BearerAuth
func NewRefreshTokenHandler(svc Refresher, tokener RefreshTokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := tokener.GetTokenFromRequest(r.Context(), r)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(RefreshErrorResponse{
				Error: "Invalid refresh token",
			})
			return
		}

		accessToken, refreshToken, err := svc.Refresh(r.Context(), tokenString)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			switch {
			case errors.Is(err, services.ErrInvalidRefreshToken):
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(RefreshErrorResponse{
					Error: "Invalid refresh token",
				})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(RefreshErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(TokenResponse{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			TokenType:    "bearer",
		})
	}
}
