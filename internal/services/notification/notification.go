// Package notification отдаёт уведомления личного кабинета и
// помечает их прочитанными.
package notification

import (
	"context"
	"log/slog"

	"github.com/talkwise/talkwise-backend/internal/models"
)

// Repository определяет методы хранилища уведомлений.
type Repository interface {
	ListNotificationsForUser(ctx context.Context, userUID string, limit, offset int) ([]*models.Notification, error)
	MarkNotificationRead(ctx context.Context, id, userUID string) (int, error)
	CreateNotification(ctx context.Context, n models.Notification) (string, error)
}

// Service реализует операции с уведомлениями.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// List возвращает уведомления пользователя вместе с рассылками.
func (s *Service) List(ctx context.Context, userUID string, limit, offset int) ([]*models.Notification, error) {
	return s.repo.ListNotificationsForUser(ctx, userUID, limit, offset)
}

// MarkRead помечает уведомление прочитанным. Чужое уведомление
// пометить нельзя: вернётся 0 обновлённых строк.
func (s *Service) MarkRead(ctx context.Context, id, userUID string) (int, error) {
	return s.repo.MarkNotificationRead(ctx, id, userUID)
}

// Broadcast создает рассылку для всех пользователей.
func (s *Service) Broadcast(ctx context.Context, title, body string) (string, error) {
	id, err := s.repo.CreateNotification(ctx, models.Notification{
		Title: title,
		Body:  body,
		Kind:  models.KindAnnouncement,
	})
	if err != nil {
		return "", err
	}
	s.log.Info("broadcast created", slog.String("notification_id", id))
	return id, nil
}
