package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/talkwise/talkwise-backend/internal/entitlement"
	"github.com/talkwise/talkwise-backend/internal/lib/jwt"
	"github.com/talkwise/talkwise-backend/internal/lib/password"
	"github.com/talkwise/talkwise-backend/internal/models"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) RegisterUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *MockUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if res := args.Get(0); res != nil {
		return res.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func testPolicy() entitlement.Policy {
	return entitlement.Policy{FreeLessonLimit: 30, TrialDays: 30, NearExpiryDays: 10, NudgeDays: 3}
}

func TestRegister(t *testing.T) {
	repo := new(MockUserRepository)
	maker := jwt.NewJWTMaker("secret", time.Hour)
	service := New(repo, maker, testPolicy())

	repo.On("RegisterUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		if u.SubscriptionStatus != models.StatusFree || u.Role != "user" || u.CurrentLesson != 1 {
			return false
		}
		// пробный период заканчивается примерно через 30 дней
		if u.ExpiresAt == nil {
			return false
		}
		days := time.Until(*u.ExpiresAt).Hours() / 24
		return days > 29 && days < 31
	})).Return("uid-new", nil)

	uid, err := service.Register(context.Background(), "a@b.c", "alice", "password1")
	require.NoError(t, err)
	assert.Equal(t, "uid-new", uid)
	repo.AssertExpectations(t)
}

func TestLogin(t *testing.T) {
	hash, err := password.GetHash("password1")
	require.NoError(t, err)

	user := &models.User{
		UID:                "uid-1",
		Username:           "alice",
		PasswordHash:       hash,
		Role:               "user",
		SubscriptionStatus: models.StatusFree,
	}

	tests := []struct {
		name     string
		password string
		repoErr  error
		wantErr  bool
	}{
		{"успешный вход", "password1", nil, false},
		{"неверный пароль", "wrong", nil, true},
		{"пользователь не найден", "password1", errors.New("no rows"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			if tt.repoErr != nil {
				repo.On("GetUserByUsername", mock.Anything, "alice").Return(nil, tt.repoErr)
			} else {
				repo.On("GetUserByUsername", mock.Anything, "alice").Return(user, nil)
			}
			maker := jwt.NewJWTMaker("secret", time.Hour)
			service := New(repo, maker, testPolicy())

			token, role, err := service.Login(context.Background(), "alice", tt.password)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "user", role)

			claims, err := maker.ParseToken(token)
			require.NoError(t, err)
			assert.Equal(t, "alice", claims.Username)
			assert.Equal(t, "uid-1", claims.UserUID)
		})
	}
}
