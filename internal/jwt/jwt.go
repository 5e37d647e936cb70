package jwt

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Scope tags a token with its intended use. A token issued for one
// scope never validates under another.
type Scope string

const (
	ScopeAccess  Scope = "access"  // short-lived API credential
	ScopeRefresh Scope = "refresh" // long-lived token-rotation credential
	ScopeEmail   Scope = "email"   // email-confirmation credential
)

// Error variables
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrInvalidScope = errors.New("invalid token scope")
)

// JWT issues and decodes HS256 tokens carrying a subject email,
// issued-at/expiry times and a scope tag.
type JWT struct {
	SecretKey  string        // Secret key for signing tokens
	AccessExp  time.Duration // Access token expiration
	RefreshExp time.Duration // Refresh token expiration
	EmailExp   time.Duration // Email-confirmation token expiration
}

// New creates a new JWT instance
func New(secretKey string, accessExp, refreshExp, emailExp time.Duration) *JWT {
	return &JWT{
		SecretKey:  secretKey,
		AccessExp:  accessExp,
		RefreshExp: refreshExp,
		EmailExp:   emailExp,
	}
}

// GenerateAccessToken creates a short-lived access token for the given email.
func (j *JWT) GenerateAccessToken(ctx context.Context, email string) (string, error) {
	return j.generate(email, ScopeAccess, j.AccessExp)
}

// GenerateRefreshToken creates a long-lived refresh token for the given email.
func (j *JWT) GenerateRefreshToken(ctx context.Context, email string) (string, error) {
	return j.generate(email, ScopeRefresh, j.RefreshExp)
}

// GenerateEmailToken creates an email-confirmation token for the given email.
func (j *JWT) GenerateEmailToken(ctx context.Context, email string) (string, error) {
	return j.generate(email, ScopeEmail, j.EmailExp)
}

func (j *JWT) generate(email string, scope Scope, exp time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   email,
		"scope": string(scope),
		"exp":   now.Add(exp).Unix(),
		"iat":   now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.SecretKey))
}

// GetEmail parses the token string and returns the subject email.
// The token must be signed with the configured key, unexpired, and
// carry exactly the given scope.
func (j *JWT) GetEmail(ctx context.Context, tokenString string, scope Scope) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(j.SecretKey), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}

	if tokenScope, ok := claims["scope"].(string); !ok || tokenScope != string(scope) {
		return "", ErrInvalidScope
	}

	email, ok := claims["sub"].(string)
	if !ok || email == "" {
		return "", errors.New("subject not found in token")
	}
	return email, nil
}

// GetTokenFromRequest extracts the token string from the Authorization header
func (j *JWT) GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header missing")
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", errors.New("invalid authorization header format")
	}

	return parts[1], nil
}
