// Package ticket содержит бизнес-логику обращений в поддержку.
package ticket

import (
	"context"
	"errors"
	"log/slog"

	"github.com/talkwise/talkwise-backend/internal/models"
	"github.com/talkwise/talkwise-backend/internal/storage/repository"
)

// Repository определяет методы хранилища обращений.
type Repository interface {
	CreateTicket(ctx context.Context, t models.Ticket) (string, error)
	ListTicketsByUser(ctx context.Context, userUID string) ([]*models.Ticket, error)
	ListAllTickets(ctx context.Context, limit, offset int) ([]*models.Ticket, error)
	AnswerTicket(ctx context.Context, id, answer, status string) (string, error)
	CreateNotification(ctx context.Context, n models.Notification) (string, error)
}

// Service реализует операции с обращениями.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Create создает обращение от пользователя.
func (s *Service) Create(ctx context.Context, userUID string, req models.DummyTicket) (string, error) {
	id, err := s.repo.CreateTicket(ctx, models.Ticket{
		UserUID: userUID,
		Subject: req.Subject,
		Body:    req.Body,
		Status:  models.TicketOpen,
	})
	if err != nil {
		return "", err
	}
	s.log.Info("support ticket created",
		slog.String("ticket_id", id), slog.String("user_uid", userUID))
	return id, nil
}

// ListForUser возвращает обращения пользователя.
func (s *Service) ListForUser(ctx context.Context, userUID string) ([]*models.Ticket, error) {
	return s.repo.ListTicketsByUser(ctx, userUID)
}

// ListAll возвращает все обращения постранично для админ-панели.
func (s *Service) ListAll(ctx context.Context, limit, offset int) ([]*models.Ticket, error) {
	return s.repo.ListAllTickets(ctx, limit, offset)
}

// Answer записывает ответ администратора и уведомляет автора обращения.
// Автор определяется по самой строке обращения, а не по данным запроса.
func (s *Service) Answer(ctx context.Context, id, answer string) (int, error) {
	authorUID, err := s.repo.AnswerTicket(ctx, id, answer, models.TicketAnswered)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return 0, nil
		}
		return 0, err
	}

	if _, err := s.repo.CreateNotification(ctx, models.Notification{
		UserUID: &authorUID,
		Title:   "Ответ поддержки",
		Body:    "На ваше обращение получен ответ, проверьте раздел поддержки.",
		Kind:    models.KindAnnouncement,
	}); err != nil {
		s.log.Error("failed to notify ticket author", slog.String("ticket_id", id))
	}
	return 1, nil
}
