// Package scheduler находит истекающие пробные периоды и публикует
// напоминания в очередь для отправки почтой.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/talkwise/talkwise-backend/internal/config"
	"github.com/talkwise/talkwise-backend/internal/lib/sl"
	"github.com/talkwise/talkwise-backend/internal/models"
	"github.com/talkwise/talkwise-backend/internal/rabbitmq"
)

// Repository определяет методы хранилища для планировщика.
type Repository interface {
	FindTrialsExpiringInDays(ctx context.Context, days int) ([]*models.TrialInfo, error)
}

// Service публикует напоминания об окончании пробного периода.
type Service struct {
	repo         Repository
	log          *slog.Logger
	interval     time.Duration
	reminderDays int
}

// New создает новый экземпляр Service. Период обхода и горизонт
// напоминания берутся из конфига.
func New(repo Repository, log *slog.Logger, cfg config.Scheduler) *Service {
	return &Service{
		repo:         repo,
		log:          log,
		interval:     cfg.Interval,
		reminderDays: cfg.ReminderDays,
	}
}

// Run выполняет проход сразу и затем по тикеру, пока контекст жив.
func (s *Service) Run(ctx context.Context, channel *amqp.Channel) {
	s.runOnce(ctx, channel)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, channel)
		}
	}
}

func (s *Service) runOnce(ctx context.Context, channel *amqp.Channel) {
	s.log.Info("starting search for expiring trials", "horizon_days", s.reminderDays)
	trials, err := s.repo.FindTrialsExpiringInDays(ctx, s.reminderDays)
	if err != nil {
		s.log.Error("failed to find expiring trials", sl.Err(err))
		return
	}
	if len(trials) == 0 {
		s.log.Info("no expiring trials found")
		return
	}
	s.log.Info("found expiring trials", "count", len(trials))
	for _, trial := range trials {
		err = rabbitmq.PublishMessage(channel,
			rabbitmq.NotificationsExchange, rabbitmq.TrialExpiringRoutingKey, trial)
		if err != nil {
			s.log.Error("failed to publish message", sl.Err(err))
		}
	}
}
