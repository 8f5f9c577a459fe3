// Package admin содержит операции админ-панели: сводная статистика
// и управление пользователями.
package admin

import (
	"context"
	"log/slog"
	"time"

	"github.com/talkwise/talkwise-backend/internal/models"
	"github.com/talkwise/talkwise-backend/internal/storage/repository"
)

// Repository определяет методы хранилища для админ-панели.
type Repository interface {
	CollectStats(ctx context.Context, now time.Time) (*repository.Stats, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
	UpdateUserRole(ctx context.Context, userUID, role string) (int, error)
	UpgradeSubscription(ctx context.Context, userUID, status string) (int, error)
}

// Service реализует операции админ-панели.
type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

// New создает новый экземпляр Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

// WithClock подменяет источник времени. Используется в тестах.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Stats собирает сводку по пользователям, выручке и поддержке.
func (s *Service) Stats(ctx context.Context) (*repository.Stats, error) {
	return s.repo.CollectStats(ctx, s.now().UTC())
}

// ListUsers возвращает пользователей постранично.
func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	return s.repo.ListUsers(ctx, limit, offset)
}

// SetRole меняет роль пользователя.
func (s *Service) SetRole(ctx context.Context, userUID, role string) (int, error) {
	updated, err := s.repo.UpdateUserRole(ctx, userUID, role)
	if err == nil && updated > 0 {
		s.log.Info("user role updated",
			slog.String("user_uid", userUID), slog.String("role", role))
	}
	return updated, err
}

// GrantSubscription выдаёт подписку вручную, минуя оплату. Нужна
// для возвратов и партнёрских аккаунтов.
func (s *Service) GrantSubscription(ctx context.Context, userUID, status string) (int, error) {
	updated, err := s.repo.UpgradeSubscription(ctx, userUID, status)
	if err == nil && updated > 0 {
		s.log.Info("subscription granted",
			slog.String("user_uid", userUID), slog.String("status", status))
	}
	return updated, err
}
