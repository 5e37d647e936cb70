package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/contact-book/internal/jwt"
	"github.com/sbilibin2017/contact-book/internal/models"
	"github.com/sbilibin2017/contact-book/internal/services"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	mockWriter := services.NewMockUserWriter(ctrl)
	mockTokens := services.NewMockTokenIssuer(ctrl)
	mockAvatars := services.NewMockAvatarProvider(ctrl)

	svc := services.NewAuthService(mockReader, mockWriter, mockTokens, mockAvatars)

	avatarURL := "https://www.gravatar.com/avatar/abc"

	tests := []struct {
		name         string
		username     string
		email        string
		password     string
		existingUser *models.UserDB
		readerErr    error
		avatar       *string
		avatarErr    error
		writerErr    error
		wantErr      error
	}{
		{
			name:     "successful registration with avatar",
			username: "alice",
			email:    "alice@example.com",
			password: "pass123",
			avatar:   &avatarURL,
		},
		{
			name:     "successful registration without avatar",
			username: "dave",
			email:    "dave@example.com",
			password: "pass123",
			avatar:   nil,
		},
		{
			name:      "avatar lookup failure is absorbed",
			username:  "frank",
			email:     "frank@example.com",
			password:  "pass123",
			avatarErr: errors.New("gravatar down"),
		},
		{
			name:         "user already exists",
			username:     "bob",
			email:        "bob@example.com",
			password:     "pass123",
			existingUser: &models.UserDB{ID: 1, Email: "bob@example.com"},
			wantErr:      services.ErrUserAlreadyExists,
		},
		{
			name:      "reader error",
			username:  "eve",
			email:     "eve@example.com",
			password:  "pass123",
			readerErr: errors.New("db error"),
			wantErr:   errors.New("db error"),
		},
		{
			name:      "writer error",
			username:  "carol",
			email:     "carol@example.com",
			password:  "pass123",
			writerErr: errors.New("save error"),
			wantErr:   errors.New("save error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockReader.EXPECT().
				GetByEmail(gomock.Any(), tt.email).
				Return(tt.existingUser, tt.readerErr)

			if tt.existingUser == nil && tt.readerErr == nil {
				mockAvatars.EXPECT().
					Lookup(gomock.Any(), tt.email).
					Return(tt.avatar, tt.avatarErr)

				var expectedAvatar interface{} = tt.avatar
				if tt.avatarErr != nil {
					expectedAvatar = (*string)(nil)
				}
				mockWriter.EXPECT().
					Save(gomock.Any(), tt.username, tt.email, gomock.Any(), expectedAvatar).
					DoAndReturn(func(_ context.Context, username, email, passwordHash string, avatar *string) (*models.UserDB, error) {
						if tt.writerErr != nil {
							return nil, tt.writerErr
						}
						// The stored hash must verify against the raw password.
						assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(tt.password)))
						return &models.UserDB{ID: 1, Username: username, Email: email, Avatar: avatar}, nil
					})
			}

			user, err := svc.Register(context.Background(), tt.username, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.email, user.Email)
			}
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	mockWriter := services.NewMockUserWriter(ctrl)
	mockTokens := services.NewMockTokenIssuer(ctrl)
	mockAvatars := services.NewMockAvatarProvider(ctrl)

	svc := services.NewAuthService(mockReader, mockWriter, mockTokens, mockAvatars)

	password := "secret"
	hashed, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	tests := []struct {
		name       string
		email      string
		user       *models.UserDB
		readerErr  error
		tokenErr   error
		storeErr   error
		loginPass  string
		wantErr    error
		expectPair bool
	}{
		{
			name:       "successful login",
			email:      "alice@example.com",
			user:       &models.UserDB{ID: 1, Email: "alice@example.com", PasswordHash: string(hashed), Confirmed: true},
			loginPass:  password,
			expectPair: true,
		},
		{
			name:      "user does not exist",
			email:     "bob@example.com",
			user:      nil,
			loginPass: password,
			wantErr:   services.ErrUserDoesNotExist,
		},
		{
			name:      "email not confirmed",
			email:     "carol@example.com",
			user:      &models.UserDB{ID: 2, Email: "carol@example.com", PasswordHash: string(hashed), Confirmed: false},
			loginPass: password,
			wantErr:   services.ErrEmailNotConfirmed,
		},
		{
			name:      "invalid password",
			email:     "dave@example.com",
			user:      &models.UserDB{ID: 3, Email: "dave@example.com", PasswordHash: string(hashed), Confirmed: true},
			loginPass: "wrongpass",
			wantErr:   services.ErrInvalidCredentials,
		},
		{
			name:      "reader error",
			email:     "eve@example.com",
			readerErr: errors.New("db error"),
			loginPass: password,
			wantErr:   errors.New("db error"),
		},
		{
			name:      "token generation error",
			email:     "frank@example.com",
			user:      &models.UserDB{ID: 4, Email: "frank@example.com", PasswordHash: string(hashed), Confirmed: true},
			loginPass: password,
			tokenErr:  errors.New("jwt error"),
			wantErr:   errors.New("jwt error"),
		},
		{
			name:      "refresh token store error",
			email:     "grace@example.com",
			user:      &models.UserDB{ID: 5, Email: "grace@example.com", PasswordHash: string(hashed), Confirmed: true},
			loginPass: password,
			storeErr:  errors.New("store error"),
			wantErr:   errors.New("store error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockReader.EXPECT().
				GetByEmail(gomock.Any(), tt.email).
				Return(tt.user, tt.readerErr)

			passes := tt.user != nil && tt.readerErr == nil && tt.user.Confirmed && tt.loginPass == password
			if passes {
				mockTokens.EXPECT().
					GenerateAccessToken(gomock.Any(), tt.email).
					Return("access-token", tt.tokenErr)
				if tt.tokenErr == nil {
					mockTokens.EXPECT().
						GenerateRefreshToken(gomock.Any(), tt.email).
						Return("refresh-token", nil)
					mockWriter.EXPECT().
						UpdateRefreshToken(gomock.Any(), tt.email, gomock.Any()).
						Return(tt.storeErr)
				}
			}

			access, refresh, err := svc.Login(context.Background(), tt.email, tt.loginPass)
			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
				assert.Empty(t, access)
				assert.Empty(t, refresh)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "access-token", access)
				assert.Equal(t, "refresh-token", refresh)
			}
		})
	}
}

func TestAuthService_Refresh(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	mockWriter := services.NewMockUserWriter(ctrl)
	mockTokens := services.NewMockTokenIssuer(ctrl)
	mockAvatars := services.NewMockAvatarProvider(ctrl)

	svc := services.NewAuthService(mockReader, mockWriter, mockTokens, mockAvatars)

	email := "alice@example.com"
	stored := "stored-refresh-token"

	t.Run("successful rotation", func(t *testing.T) {
		mockTokens.EXPECT().
			GetEmail(gomock.Any(), stored, jwt.ScopeRefresh).
			Return(email, nil)
		mockReader.EXPECT().
			GetByEmail(gomock.Any(), email).
			Return(&models.UserDB{ID: 1, Email: email, RefreshToken: &stored}, nil)
		mockTokens.EXPECT().
			GenerateAccessToken(gomock.Any(), email).
			Return("new-access", nil)
		mockTokens.EXPECT().
			GenerateRefreshToken(gomock.Any(), email).
			Return("new-refresh", nil)
		mockWriter.EXPECT().
			UpdateRefreshToken(gomock.Any(), email, gomock.Any()).
			Return(nil)

		access, refresh, err := svc.Refresh(context.Background(), stored)
		assert.NoError(t, err)
		assert.Equal(t, "new-access", access)
		assert.Equal(t, "new-refresh", refresh)
	})

	t.Run("undecodable token", func(t *testing.T) {
		mockTokens.EXPECT().
			GetEmail(gomock.Any(), "garbage", jwt.ScopeRefresh).
			Return("", jwt.ErrInvalidToken)

		_, _, err := svc.Refresh(context.Background(), "garbage")
		assert.ErrorIs(t, err, services.ErrInvalidRefreshToken)
	})

	t.Run("unknown user", func(t *testing.T) {
		mockTokens.EXPECT().
			GetEmail(gomock.Any(), stored, jwt.ScopeRefresh).
			Return(email, nil)
		mockReader.EXPECT().
			GetByEmail(gomock.Any(), email).
			Return(nil, nil)

		_, _, err := svc.Refresh(context.Background(), stored)
		assert.ErrorIs(t, err, services.ErrInvalidRefreshToken)
	})

	t.Run("mismatch clears stored token", func(t *testing.T) {
		other := "some-older-token"
		mockTokens.EXPECT().
			GetEmail(gomock.Any(), other, jwt.ScopeRefresh).
			Return(email, nil)
		mockReader.EXPECT().
			GetByEmail(gomock.Any(), email).
			Return(&models.UserDB{ID: 1, Email: email, RefreshToken: &stored}, nil)
		mockWriter.EXPECT().
			UpdateRefreshToken(gomock.Any(), email, (*string)(nil)).
			Return(nil)

		_, _, err := svc.Refresh(context.Background(), other)
		assert.ErrorIs(t, err, services.ErrInvalidRefreshToken)
	})

	t.Run("empty slot rejects any token", func(t *testing.T) {
		mockTokens.EXPECT().
			GetEmail(gomock.Any(), stored, jwt.ScopeRefresh).
			Return(email, nil)
		mockReader.EXPECT().
			GetByEmail(gomock.Any(), email).
			Return(&models.UserDB{ID: 1, Email: email, RefreshToken: nil}, nil)
		mockWriter.EXPECT().
			UpdateRefreshToken(gomock.Any(), email, (*string)(nil)).
			Return(nil)

		_, _, err := svc.Refresh(context.Background(), stored)
		assert.ErrorIs(t, err, services.ErrInvalidRefreshToken)
	})
}

func TestAuthService_ConfirmEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	mockWriter := services.NewMockUserWriter(ctrl)
	mockTokens := services.NewMockTokenIssuer(ctrl)
	mockAvatars := services.NewMockAvatarProvider(ctrl)

	svc := services.NewAuthService(mockReader, mockWriter, mockTokens, mockAvatars)

	email := "alice@example.com"
	token := "email-token"

	t.Run("first confirmation", func(t *testing.T) {
		mockTokens.EXPECT().
			GetEmail(gomock.Any(), token, jwt.ScopeEmail).
			Return(email, nil)
		mockReader.EXPECT().
			GetByEmail(gomock.Any(), email).
			Return(&models.UserDB{ID: 1, Email: email, Confirmed: false}, nil)
		mockWriter.EXPECT().
			ConfirmEmail(gomock.Any(), email).
			Return(nil)

		already, err := svc.ConfirmEmail(context.Background(), token)
		assert.NoError(t, err)
		assert.False(t, already)
	})

	t.Run("already confirmed", func(t *testing.T) {
		mockTokens.EXPECT().
			GetEmail(gomock.Any(), token, jwt.ScopeEmail).
			Return(email, nil)
		mockReader.EXPECT().
			GetByEmail(gomock.Any(), email).
			Return(&models.UserDB{ID: 1, Email: email, Confirmed: true}, nil)

		already, err := svc.ConfirmEmail(context.Background(), token)
		assert.NoError(t, err)
		assert.True(t, already)
	})

	t.Run("undecodable token", func(t *testing.T) {
		mockTokens.EXPECT().
			GetEmail(gomock.Any(), "garbage", jwt.ScopeEmail).
			Return("", jwt.ErrInvalidToken)

		_, err := svc.ConfirmEmail(context.Background(), "garbage")
		assert.ErrorIs(t, err, services.ErrInvalidVerification)
	})

	t.Run("unknown user", func(t *testing.T) {
		mockTokens.EXPECT().
			GetEmail(gomock.Any(), token, jwt.ScopeEmail).
			Return(email, nil)
		mockReader.EXPECT().
			GetByEmail(gomock.Any(), email).
			Return(nil, nil)

		_, err := svc.ConfirmEmail(context.Background(), token)
		assert.ErrorIs(t, err, services.ErrInvalidVerification)
	})
}

func TestAuthService_RequestEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	mockWriter := services.NewMockUserWriter(ctrl)
	mockTokens := services.NewMockTokenIssuer(ctrl)
	mockAvatars := services.NewMockAvatarProvider(ctrl)

	svc := services.NewAuthService(mockReader, mockWriter, mockTokens, mockAvatars)

	t.Run("unconfirmed user", func(t *testing.T) {
		mockReader.EXPECT().
			GetByEmail(gomock.Any(), "a@b.com").
			Return(&models.UserDB{ID: 1, Email: "a@b.com", Confirmed: false}, nil)

		user, already, err := svc.RequestEmail(context.Background(), "a@b.com")
		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.False(t, already)
	})

	t.Run("confirmed user", func(t *testing.T) {
		mockReader.EXPECT().
			GetByEmail(gomock.Any(), "a@b.com").
			Return(&models.UserDB{ID: 1, Email: "a@b.com", Confirmed: true}, nil)

		user, already, err := svc.RequestEmail(context.Background(), "a@b.com")
		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.True(t, already)
	})

	t.Run("unknown email does not leak", func(t *testing.T) {
		mockReader.EXPECT().
			GetByEmail(gomock.Any(), "nobody@b.com").
			Return(nil, nil)

		user, already, err := svc.RequestEmail(context.Background(), "nobody@b.com")
		assert.NoError(t, err)
		assert.Nil(t, user)
		assert.False(t, already)
	})
}

func TestAuthService_GetCurrentUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	mockWriter := services.NewMockUserWriter(ctrl)
	mockTokens := services.NewMockTokenIssuer(ctrl)
	mockAvatars := services.NewMockAvatarProvider(ctrl)

	svc := services.NewAuthService(mockReader, mockWriter, mockTokens, mockAvatars)

	email := "alice@example.com"

	t.Run("valid access token", func(t *testing.T) {
		mockTokens.EXPECT().
			GetEmail(gomock.Any(), "access-token", jwt.ScopeAccess).
			Return(email, nil)
		mockReader.EXPECT().
			GetByEmail(gomock.Any(), email).
			Return(&models.UserDB{ID: 1, Email: email}, nil)

		user, err := svc.GetCurrentUser(context.Background(), "access-token")
		assert.NoError(t, err)
		assert.Equal(t, email, user.Email)
	})

	t.Run("invalid token", func(t *testing.T) {
		mockTokens.EXPECT().
			GetEmail(gomock.Any(), "garbage", jwt.ScopeAccess).
			Return("", jwt.ErrInvalidToken)

		user, err := svc.GetCurrentUser(context.Background(), "garbage")
		assert.ErrorIs(t, err, services.ErrUnauthorized)
		assert.Nil(t, user)
	})

	t.Run("reader error maps to unauthorized", func(t *testing.T) {
		mockTokens.EXPECT().
			GetEmail(gomock.Any(), "access-token", jwt.ScopeAccess).
			Return(email, nil)
		mockReader.EXPECT().
			GetByEmail(gomock.Any(), email).
			Return(nil, errors.New("db error"))

		user, err := svc.GetCurrentUser(context.Background(), "access-token")
		assert.ErrorIs(t, err, services.ErrUnauthorized)
		assert.Nil(t, user)
	})

	t.Run("unknown subject maps to unauthorized", func(t *testing.T) {
		mockTokens.EXPECT().
			GetEmail(gomock.Any(), "access-token", jwt.ScopeAccess).
			Return(email, nil)
		mockReader.EXPECT().
			GetByEmail(gomock.Any(), email).
			Return(nil, nil)

		user, err := svc.GetCurrentUser(context.Background(), "access-token")
		assert.ErrorIs(t, err, services.ErrUnauthorized)
		assert.Nil(t, user)
	})
}

func TestAuthService_UpdateAvatar(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	mockWriter := services.NewMockUserWriter(ctrl)
	mockTokens := services.NewMockTokenIssuer(ctrl)
	mockAvatars := services.NewMockAvatarProvider(ctrl)

	svc := services.NewAuthService(mockReader, mockWriter, mockTokens, mockAvatars)

	email := "alice@example.com"
	avatarURL := "https://www.gravatar.com/avatar/abc"

	t.Run("avatar found and stored", func(t *testing.T) {
		mockAvatars.EXPECT().
			Lookup(gomock.Any(), email).
			Return(&avatarURL, nil)
		mockWriter.EXPECT().
			UpdateAvatar(gomock.Any(), email, avatarURL).
			Return(&models.UserDB{ID: 1, Email: email, Avatar: &avatarURL}, nil)

		user, err := svc.UpdateAvatar(context.Background(), email)
		assert.NoError(t, err)
		assert.Equal(t, &avatarURL, user.Avatar)
	})

	t.Run("no gravatar registered", func(t *testing.T) {
		mockAvatars.EXPECT().
			Lookup(gomock.Any(), email).
			Return(nil, nil)

		user, err := svc.UpdateAvatar(context.Background(), email)
		assert.ErrorIs(t, err, services.ErrAvatarNotFound)
		assert.Nil(t, user)
	})

	t.Run("lookup error", func(t *testing.T) {
		mockAvatars.EXPECT().
			Lookup(gomock.Any(), email).
			Return(nil, errors.New("gravatar down"))

		user, err := svc.UpdateAvatar(context.Background(), email)
		assert.Error(t, err)
		assert.Nil(t, user)
	})
}
