package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sbilibin2017/contact-book/internal/logger"
	"github.com/sbilibin2017/contact-book/internal/models"
)

// EmailRequester defines the interface for re-requesting a confirmation email.
type EmailRequester interface {
	RequestEmail(ctx context.Context, email string) (user *models.UserDB, alreadyConfirmed bool, err error)
}

// RequestEmailRequest represents the JSON body for re-requesting a confirmation email
// swagger:model RequestEmailRequest
type RequestEmailRequest struct {
	// Email
	// required: true
	// example: john@example.com
	Email string `json:"email"`
}

// NewRequestEmailHandler returns an HTTP handler that re-sends the
// confirmation email. Unknown addresses get the same answer as known
// unconfirmed ones, so the endpoint cannot be used to probe accounts.
// @Summary Re-send confirmation email
// @Description Sends a new confirmation email if the account is unconfirmed
// @Tags auth
// @Accept json
// @Produce json
// @Param requestEmailRequest body handlers.RequestEmailRequest true "Email to confirm"
// @Success 200 {object} handlers.MessageResponse "Check your email for confirmation"
// @Router /auth/request_email [post]
func NewRequestEmailHandler(svc EmailRequester, sender ConfirmationSender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RequestEmailRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ConfirmErrorResponse{
				Error: "invalid request body",
			})
			return
		}

		user, alreadyConfirmed, err := svc.RequestEmail(r.Context(), req.Email)
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(ConfirmErrorResponse{
				Error: "Internal server error",
			})
			return
		}

		if alreadyConfirmed {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(MessageResponse{
				Message: "Your email is already confirmed",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(MessageResponse{
			Message: "Check your email for confirmation.",
		})

		if user != nil {
			go func(email, username string) {
				if err := sender.SendConfirmation(context.Background(), email, username); err != nil {
					logger.Log.Errorw("confirmation email failed", "email", email, "err", err)
				}
			}(user.Email, user.Username)
		}
	}
}
