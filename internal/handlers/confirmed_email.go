package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sbilibin2017/contact-book/internal/logger"
	"github.com/sbilibin2017/contact-book/internal/services"
)

// EmailConfirmer defines the interface that the confirmation service must implement.
type EmailConfirmer interface {
	ConfirmEmail(ctx context.Context, tokenString string) (alreadyConfirmed bool, err error)
}

// MessageResponse represents a plain informational message
// swagger:model MessageResponse
type MessageResponse struct {
	// Message
	// example: Email confirmed
	Message string `json:"message"`
}

// ConfirmErrorResponse represents an error response for email confirmation
// swagger:model ConfirmErrorResponse
type ConfirmErrorResponse struct {
	// Error message
	// example: Verification error
	Error string `json:"error"`
}

// NewConfirmedEmailHandler returns an HTTP handler for the email
// confirmation link. Confirming twice is harmless.
// @Summary Confirm email address
// @Description Confirms the account behind the emailed confirmation token
// @Tags auth
// @Produce json
// @Param token path string true "Email-confirmation token"
// @Success 200 {object} handlers.MessageResponse "Email confirmed"
// @Failure 400 {object} handlers.ConfirmErrorResponse "Verification error"
// @Router /auth/confirmed_email/{token} [get]
func NewConfirmedEmailHandler(svc EmailConfirmer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := chi.URLParam(r, "token")

		alreadyConfirmed, err := svc.ConfirmEmail(r.Context(), token)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			switch {
			case errors.Is(err, services.ErrInvalidVerification):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(ConfirmErrorResponse{
					Error: "Verification error",
				})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(ConfirmErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		msg := "Email confirmed"
		if alreadyConfirmed {
			msg = "Your email is already confirmed"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(MessageResponse{Message: msg})
	}
}
