package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"lodge/config"
	"lodge/infras/jwt"
	jwtMocks "lodge/infras/jwt/mocks"
	"lodge/infras/otel/mocks"
	pgMocks "lodge/infras/postgres/mocks"
	sessionMocks "lodge/internal/domains/auth/mocks"
	"lodge/internal/domains/auth/model"
	"lodge/internal/domains/auth/model/dto"
	"lodge/internal/domains/auth/service"
	userMocks "lodge/internal/domains/user/mocks"
	userModel "lodge/internal/domains/user/model"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	"lodge/shared/failure"
	gModel "lodge/shared/model"
	"lodge/shared/password"
	"lodge/shared/timezone"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
)

// "password"
const passwordHash = "$2a$10$92IXUNpkjO0rOQ5byMi.Ye4oKoEa3Ro9llC/.og/at2.uheWG/igi"

type deps struct {
	users    *userMocks.MockUser
	sessions *sessionMocks.MockSession
	tx       *pgMocks.MockTransactor
	jwt      *jwtMocks.MockJWT
}

func newService(t *testing.T) (service.Auth, deps) {
	ctrl := gomock.NewController(t)

	d := deps{
		users:    userMocks.NewMockUser(ctrl),
		sessions: sessionMocks.NewMockSession(ctrl),
		tx:       pgMocks.NewMockTransactor(ctrl),
		jwt:      jwtMocks.NewMockJWT(ctrl),
	}

	return service.New(d.users, d.sessions, d.tx, &config.Config{}, mocks.NewOtel(), d.jwt), d
}

func validUser() userModel.User {
	return userModel.User{
		ID:       "user-id-123",
		Email:    "test@example.com",
		Password: passwordHash,
		Role:     constant.RoleRegular,
		FullName: stringPtr("Test User"),
		Active:   true,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  "system",
			ModifiedBy: "system",
		},
	}
}

func tokenPair() *jwt.TokenPair {
	return &jwt.TokenPair{
		AccessToken:      "access-token",
		RefreshToken:     "refresh-token",
		TokenType:        "Bearer",
		RefreshTokenID:   "token-2",
		RefreshExpiresAt: timezone.Now().Add(time.Hour),
	}
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(d deps)
		wantCode  int
	}{
		{
			name: "successful registration",
			setupMock: func(d deps) {
				d.users.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				d.users.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u userModel.User) error {
					assert.Equal(t, constant.RoleRegular, u.Role)
					assert.NotEqual(t, "password123", u.Password)

					return nil
				})
			},
		},
		{
			name: "email already registered",
			setupMock: func(d deps) {
				d.users.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newService(t)
			tt.setupMock(d)

			err := svc.Register(context.Background(), dto.RegisterRequest{Email: "new@example.com", Password: "password123"})

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	tests := []struct {
		name      string
		req       dto.LoginRequest
		setupMock func(d deps)
		wantErr   bool
	}{
		{
			name: "successful login stores a session",
			req:  dto.LoginRequest{Email: "test@example.com", Password: "password", UserAgent: "Mozilla/5.0"},
			setupMock: func(d deps) {
				user := validUser()

				d.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(user, nil)
				d.jwt.EXPECT().GenerateTokenPair(gomock.Any(), user.ID, user.Email, user.Role).Return(tokenPair(), nil)
				d.sessions.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, s model.Session) error {
					assert.Equal(t, "token-2", s.TokenID)
					assert.Equal(t, user.ID, s.UserID)
					assert.Equal(t, "Mozilla/5.0", s.UserAgent)

					return nil
				})
				d.users.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name: "last login failure does not block sign in",
			req:  dto.LoginRequest{Email: "test@example.com", Password: "password"},
			setupMock: func(d deps) {
				d.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(validUser(), nil)
				d.jwt.EXPECT().GenerateTokenPair(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(tokenPair(), nil)
				d.sessions.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
				d.users.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("update error"))
			},
		},
		{
			name: "user not found",
			req:  dto.LoginRequest{Email: "nonexistent@example.com", Password: "password"},
			setupMock: func(d deps) {
				d.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{}, nil)
			},
			wantErr: true,
		},
		{
			name: "wrong password",
			req:  dto.LoginRequest{Email: "test@example.com", Password: "wrongpassword"},
			setupMock: func(d deps) {
				d.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(validUser(), nil)
			},
			wantErr: true,
		},
		{
			name: "inactive user",
			req:  dto.LoginRequest{Email: "test@example.com", Password: "password"},
			setupMock: func(d deps) {
				inactive := validUser()
				inactive.Active = false

				d.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(inactive, nil)
			},
			wantErr: true,
		},
		{
			name: "token generation error",
			req:  dto.LoginRequest{Email: "test@example.com", Password: "password"},
			setupMock: func(d deps) {
				d.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(validUser(), nil)
				d.jwt.EXPECT().GenerateTokenPair(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, errors.New("token generation failed"))
			},
			wantErr: true,
		},
		{
			name: "session store error",
			req:  dto.LoginRequest{Email: "test@example.com", Password: "password"},
			setupMock: func(d deps) {
				d.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(validUser(), nil)
				d.jwt.EXPECT().GenerateTokenPair(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(tokenPair(), nil)
				d.sessions.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("insert error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newService(t)
			tt.setupMock(d)

			result, err := svc.Login(context.Background(), tt.req)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "access-token", result.AccessToken)
				assert.Equal(t, "refresh-token", result.RefreshToken)
			}
		})
	}
}

func TestAuthService_Login_UpgradesWeakHash(t *testing.T) {
	svc, d := newService(t)

	weak, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	assert.NoError(t, err)

	user := validUser()
	user.Password = string(weak)

	d.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(user, nil)
	d.jwt.EXPECT().GenerateTokenPair(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(tokenPair(), nil)
	d.sessions.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
	d.users.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
			rehashed, ok := fields[userModel.FieldPassword].(string)
			assert.True(t, ok)
			assert.NoError(t, password.Verify("password", rehashed))
			assert.False(t, password.NeedsRehash(rehashed))
			assert.Contains(t, fields, userModel.FieldLastLogin)

			return nil
		})

	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: user.Email, Password: "password"})
	assert.NoError(t, err)
}

func TestAuthService_RefreshToken(t *testing.T) {
	claims := &jwt.Claims{UserID: "user-id-123", TokenID: "token-1", Type: jwt.RefreshToken}
	liveSession := model.Session{TokenID: "token-1", UserID: "user-id-123", ExpiresAt: timezone.Now().Add(time.Hour)}

	tests := []struct {
		name      string
		setupMock func(d deps)
		wantCode  int
	}{
		{
			name: "rotates the session",
			setupMock: func(d deps) {
				d.jwt.EXPECT().ValidateToken(gomock.Any(), "refresh", jwt.RefreshToken).Return(claims, nil)
				d.sessions.EXPECT().Get(gomock.Any(), gomock.Any()).Return(liveSession, nil)
				d.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(validUser(), nil)
				d.jwt.EXPECT().GenerateTokenPair(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(tokenPair(), nil)
				d.tx.EXPECT().WithTransaction(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, fn func(*sqlx.Tx) error) error { return fn(nil) })
				gomock.InOrder(
					d.sessions.EXPECT().DeleteTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil),
					d.sessions.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
						func(_ context.Context, _ *sqlx.Tx, s model.Session) error {
							assert.Equal(t, "token-2", s.TokenID)

							return nil
						}),
				)
			},
		},
		{
			name: "invalid token",
			setupMock: func(d deps) {
				d.jwt.EXPECT().ValidateToken(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, jwt.ErrInvalidToken)
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "revoked session",
			setupMock: func(d deps) {
				d.jwt.EXPECT().ValidateToken(gomock.Any(), gomock.Any(), gomock.Any()).Return(claims, nil)
				d.sessions.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Session{}, nil)
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "deactivated user",
			setupMock: func(d deps) {
				inactive := validUser()
				inactive.Active = false

				d.jwt.EXPECT().ValidateToken(gomock.Any(), gomock.Any(), gomock.Any()).Return(claims, nil)
				d.sessions.EXPECT().Get(gomock.Any(), gomock.Any()).Return(liveSession, nil)
				d.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(inactive, nil)
			},
			wantCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newService(t)
			tt.setupMock(d)

			result, err := svc.RefreshToken(context.Background(), dto.RefreshTokenRequest{RefreshToken: "refresh"})

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "refresh-token", result.RefreshToken)
			}
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	t.Run("deletes the session", func(t *testing.T) {
		svc, d := newService(t)

		d.jwt.EXPECT().ValidateToken(gomock.Any(), "refresh", jwt.RefreshToken).
			Return(&jwt.Claims{UserID: "user-id-123", TokenID: "token-1"}, nil)
		d.sessions.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)

		assert.NoError(t, svc.Logout(context.Background(), dto.LogoutRequest{RefreshToken: "refresh"}))
	})

	t.Run("invalid token", func(t *testing.T) {
		svc, d := newService(t)

		d.jwt.EXPECT().ValidateToken(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, jwt.ErrExpiredToken)

		err := svc.Logout(context.Background(), dto.LogoutRequest{RefreshToken: "stale"})
		assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	tests := []struct {
		name      string
		req       dto.ChangePasswordRequest
		setupMock func(d deps)
		wantErr   bool
	}{
		{
			name: "successful password change revokes sessions",
			req:  dto.ChangePasswordRequest{CurrentPassword: "password", NewPassword: "newpassword123"},
			setupMock: func(d deps) {
				d.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(validUser(), nil)
				d.users.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				d.sessions.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name: "repository error",
			req:  dto.ChangePasswordRequest{CurrentPassword: "password", NewPassword: "newpassword123"},
			setupMock: func(d deps) {
				d.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{}, errors.New("conn refused"))
			},
			wantErr: true,
		},
		{
			name: "user not found",
			req:  dto.ChangePasswordRequest{CurrentPassword: "password", NewPassword: "newpassword123"},
			setupMock: func(d deps) {
				d.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{}, nil)
			},
			wantErr: true,
		},
		{
			name: "wrong current password",
			req:  dto.ChangePasswordRequest{CurrentPassword: "wrongpassword", NewPassword: "newpassword123"},
			setupMock: func(d deps) {
				d.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(validUser(), nil)
			},
			wantErr: true,
		},
		{
			name: "update password error",
			req:  dto.ChangePasswordRequest{CurrentPassword: "password", NewPassword: "newpassword123"},
			setupMock: func(d deps) {
				d.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(validUser(), nil)
				d.users.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("update error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newService(t)
			tt.setupMock(d)

			err := svc.ChangePassword(context.Background(), tt.req, "user-id-123")

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func stringPtr(s string) *string {
	return &s
}
