package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sbilibin2017/contact-book/internal/logger"
	"github.com/sbilibin2017/contact-book/internal/models"
	"github.com/sbilibin2017/contact-book/internal/services"
)

// Registerer defines the interface that the signup service must implement.
type Registerer interface {
	Register(ctx context.Context, username, email, password string) (*models.UserDB, error)
}

// ConfirmationSender sends a confirmation email to a user.
type ConfirmationSender interface {
	SendConfirmation(ctx context.Context, email, username string) error
}

// SignupRequest represents the JSON body for account signup
// swagger:model SignupRequest
type SignupRequest struct {
	// Username
	// required: true
	// example: john_doe
	Username string `json:"username"`

	// Email
	// required: true
	// example: john@example.com
	Email string `json:"email"`

	// Password
	// required: true
	// example: secret123
	Password string `json:"password"`
}

// SignupErrorResponse represents an error response for signup
// swagger:model SignupErrorResponse
type SignupErrorResponse struct {
	// Error message
	// example: Account already exists
	Error string `json:"error"`
}

// NewSignupHandler returns an HTTP handler for account signup.
// The confirmation email is dispatched in the background after the
// response is written; its failure never affects the request.
// @Summary Sign up a new account
// @Description Creates an unconfirmed account and sends a confirmation email
// @Tags auth
// @Accept json
// @Produce json
// @Param signupRequest body handlers.SignupRequest true "Signup request"
// @Success 201 {object} models.UserDB "Account created"
// @Failure 400 {object} handlers.SignupErrorResponse "Invalid request body"
// @Failure 409 {object} handlers.SignupErrorResponse "Account already exists"
// @Router /auth/signup [post]
func NewSignupHandler(svc Registerer, sender ConfirmationSender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SignupRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(SignupErrorResponse{
				Error: "invalid request body",
			})
			return
		}

		user, err := svc.Register(r.Context(), req.Username, req.Email, req.Password)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			switch {
			case errors.Is(err, services.ErrUserAlreadyExists):
				w.WriteHeader(http.StatusConflict)
				json.NewEncoder(w).Encode(SignupErrorResponse{
					Error: "Account already exists",
				})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(SignupErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(user)

		// Fire and forget: the request context dies with the response.
		go func() {
			if err := sender.SendConfirmation(context.Background(), user.Email, user.Username); err != nil {
				logger.Log.Errorw("confirmation email failed", "email", user.Email, "err", err)
			}
		}()
	}
}
