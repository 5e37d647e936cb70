package services

import (
	"context"
	"errors"

	"github.com/sbilibin2017/contact-book/internal/jwt"
	"github.com/sbilibin2017/contact-book/internal/logger"
	"github.com/sbilibin2017/contact-book/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// Error variables
var (
	ErrUserAlreadyExists   = errors.New("account already exists")
	ErrUserDoesNotExist    = errors.New("invalid email")
	ErrEmailNotConfirmed   = errors.New("email not confirmed")
	ErrInvalidCredentials  = errors.New("invalid password")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrInvalidVerification = errors.New("verification error")
	ErrUnauthorized        = errors.New("could not validate credentials")
	ErrAvatarNotFound      = errors.New("avatar not found")
)

// UserReader defines read-only operations for users.
type UserReader interface {
	GetByEmail(ctx context.Context, email string) (*models.UserDB, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Save(ctx context.Context, username, email, passwordHash string, avatar *string) (*models.UserDB, error)
	UpdateRefreshToken(ctx context.Context, email string, token *string) error
	ConfirmEmail(ctx context.Context, email string) error
	UpdateAvatar(ctx context.Context, email, url string) (*models.UserDB, error)
}

// TokenIssuer defines an interface for issuing and decoding scoped JWT tokens.
type TokenIssuer interface {
	GenerateAccessToken(ctx context.Context, email string) (string, error)
	GenerateRefreshToken(ctx context.Context, email string) (string, error)
	GetEmail(ctx context.Context, tokenString string, scope jwt.Scope) (string, error)
}

// AvatarProvider resolves an avatar URL for an email, returning nil when
// the email has none.
type AvatarProvider interface {
	Lookup(ctx context.Context, email string) (*string, error)
}

// AuthService handles signup, login, token rotation, email confirmation
// and identity resolution.
type AuthService struct {
	reader  UserReader
	writer  UserWriter
	tokens  TokenIssuer
	avatars AvatarProvider
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(reader UserReader, writer UserWriter, tokens TokenIssuer, avatars AvatarProvider) *AuthService {
	return &AuthService{
		reader:  reader,
		writer:  writer,
		tokens:  tokens,
		avatars: avatars,
	}
}

// Register creates a new unconfirmed account. The avatar lookup is best
// effort: its failure never blocks account creation.
func (svc *AuthService) Register(ctx context.Context, username, email, password string) (*models.UserDB, error) {
	existing, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to check user exists", "err", err)
		return nil, err
	}
	if existing != nil {
		logger.Log.Errorw("account already exists", "email", email)
		return nil, ErrUserAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return nil, err
	}

	var avatar *string
	if svc.avatars != nil {
		avatar, err = svc.avatars.Lookup(ctx, email)
		if err != nil {
			// Recoverable: the account is created without an avatar.
			logger.Log.Errorw("avatar lookup failed", "email", email, "err", err)
			avatar = nil
		}
	}

	user, err := svc.writer.Save(ctx, username, email, string(hashedPassword), avatar)
	if err != nil {
		logger.Log.Errorw("failed to save user", "err", err)
		return nil, err
	}

	return user, nil
}

// Login authenticates a user and returns a fresh access/refresh token pair.
// The new refresh token becomes the user's only valid one.
func (svc *AuthService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error) {
	user, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return "", "", err
	}
	if user == nil {
		logger.Log.Errorw("user does not exist", "email", email)
		return "", "", ErrUserDoesNotExist
	}
	if !user.Confirmed {
		logger.Log.Errorw("email not confirmed", "email", email)
		return "", "", ErrEmailNotConfirmed
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Log.Errorw("invalid credentials", "email", email)
		return "", "", ErrInvalidCredentials
	}

	return svc.issueTokens(ctx, email)
}

// Refresh rotates the token pair presented via a refresh token. If the
// presented token does not match the stored one, the stored slot is
// cleared so a stale or stolen token kills the session entirely.
func (svc *AuthService) Refresh(ctx context.Context, tokenString string) (accessToken, refreshToken string, err error) {
	email, err := svc.tokens.GetEmail(ctx, tokenString, jwt.ScopeRefresh)
	if err != nil {
		logger.Log.Errorw("failed to decode refresh token", "err", err)
		return "", "", ErrInvalidRefreshToken
	}

	user, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return "", "", err
	}
	if user == nil {
		logger.Log.Errorw("user does not exist", "email", email)
		return "", "", ErrInvalidRefreshToken
	}

	if user.RefreshToken == nil || *user.RefreshToken != tokenString {
		logger.Log.Errorw("refresh token mismatch, clearing session", "email", email)
		if clearErr := svc.writer.UpdateRefreshToken(ctx, email, nil); clearErr != nil {
			logger.Log.Errorw("failed to clear refresh token", "err", clearErr)
			return "", "", clearErr
		}
		return "", "", ErrInvalidRefreshToken
	}

	return svc.issueTokens(ctx, email)
}

func (svc *AuthService) issueTokens(ctx context.Context, email string) (string, string, error) {
	accessToken, err := svc.tokens.GenerateAccessToken(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to generate access token", "err", err)
		return "", "", err
	}
	refreshToken, err := svc.tokens.GenerateRefreshToken(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to generate refresh token", "err", err)
		return "", "", err
	}

	if err := svc.writer.UpdateRefreshToken(ctx, email, &refreshToken); err != nil {
		logger.Log.Errorw("failed to store refresh token", "err", err)
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// ConfirmEmail flips the account behind an email-confirmation token to
// confirmed. Reports whether it already was; confirming twice is harmless.
func (svc *AuthService) ConfirmEmail(ctx context.Context, tokenString string) (alreadyConfirmed bool, err error) {
	email, err := svc.tokens.GetEmail(ctx, tokenString, jwt.ScopeEmail)
	if err != nil {
		logger.Log.Errorw("failed to decode email token", "err", err)
		return false, ErrInvalidVerification
	}

	user, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return false, err
	}
	if user == nil {
		logger.Log.Errorw("verification for unknown user", "email", email)
		return false, ErrInvalidVerification
	}

	if user.Confirmed {
		return true, nil
	}

	if err := svc.writer.ConfirmEmail(ctx, email); err != nil {
		logger.Log.Errorw("failed to confirm email", "err", err)
		return false, err
	}
	return false, nil
}

// RequestEmail returns the user a new confirmation email should go to.
// Unknown emails return (nil, false, nil) so the caller can answer with
// the same generic message and not leak account existence.
func (svc *AuthService) RequestEmail(ctx context.Context, email string) (user *models.UserDB, alreadyConfirmed bool, err error) {
	user, err = svc.reader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return nil, false, err
	}
	if user == nil {
		return nil, false, nil
	}
	if user.Confirmed {
		return user, true, nil
	}
	return user, false, nil
}

// GetCurrentUser resolves an access token to its user. Every failure maps
// to the same ErrUnauthorized so callers cannot tell which check failed.
func (svc *AuthService) GetCurrentUser(ctx context.Context, tokenString string) (*models.UserDB, error) {
	email, err := svc.tokens.GetEmail(ctx, tokenString, jwt.ScopeAccess)
	if err != nil {
		logger.Log.Errorw("failed to decode access token", "err", err)
		return nil, ErrUnauthorized
	}

	user, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return nil, ErrUnauthorized
	}
	if user == nil {
		logger.Log.Errorw("token subject has no account", "email", email)
		return nil, ErrUnauthorized
	}

	return user, nil
}

// UpdateAvatar re-resolves the user's Gravatar and persists the new URL.
func (svc *AuthService) UpdateAvatar(ctx context.Context, email string) (*models.UserDB, error) {
	avatar, err := svc.avatars.Lookup(ctx, email)
	if err != nil {
		logger.Log.Errorw("avatar lookup failed", "email", email, "err", err)
		return nil, err
	}
	if avatar == nil {
		return nil, ErrAvatarNotFound
	}

	user, err := svc.writer.UpdateAvatar(ctx, email, *avatar)
	if err != nil {
		logger.Log.Errorw("failed to update avatar", "err", err)
		return nil, err
	}
	return user, nil
}
