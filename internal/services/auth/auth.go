// Package auth содержит логику бизнес-уровня для регистрации,
// авторизации и валидации JWT.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/talkwise/talkwise-backend/internal/entitlement"
	"github.com/talkwise/talkwise-backend/internal/lib/jwt"
	"github.com/talkwise/talkwise-backend/internal/lib/password"
	"github.com/talkwise/talkwise-backend/internal/models"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)

	// GetUserByUsername возвращает пользователя по имени или ошибку, если не найден.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Service отвечает за регистрацию, авторизацию и валидацию JWT.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
	policy   entitlement.Policy
}

// New создает новый экземпляр Service.
func New(users UserRepository, jwtMaker jwt.Maker, policy entitlement.Policy) *Service {
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
		policy:   policy,
	}
}

// Register создает нового бесплатного пользователя. Дата окончания
// пробного периода выставляется политикой один раз при создании и
// больше нигде не пересчитывается.
func (s *Service) Register(ctx context.Context, email, username, rawPassword string) (string, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", err
	}
	trialEnd := s.policy.TrialEnd(time.Now().UTC())
	user := models.User{
		Email:              email,
		Username:           username,
		PasswordHash:       hashed,
		Role:               "user",
		SubscriptionStatus: models.StatusFree,
		ExpiresAt:          &trialEnd,
		CurrentLesson:      1,
	}
	return s.users.RegisterUser(ctx, user)
}

// Login проверяет пароль пользователя и генерирует JWT.
func (s *Service) Login(ctx context.Context, username, rawPassword string) (token, role string, err error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return "", "", err
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", "", errors.New("invalid credentials")
	}
	token, err = s.jwtMaker.GenerateToken(user.Username, user.Role, user.UID)
	if err != nil {
		return "", "", err
	}
	return token, user.Role, nil
}

// ValidateToken проверяет JWT и возвращает данные пользователя из claims.
func (s *Service) ValidateToken(_ context.Context, token string) (*jwt.CustomClaims, error) {
	return s.jwtMaker.ParseToken(token)
}
