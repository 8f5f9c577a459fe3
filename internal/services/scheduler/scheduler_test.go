package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/talkwise/talkwise-backend/internal/config"
	"github.com/talkwise/talkwise-backend/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) FindTrialsExpiringInDays(ctx context.Context, days int) ([]*models.TrialInfo, error) {
	args := m.Called(ctx, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TrialInfo), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRunOnce(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(*MockRepository)
	}{
		{
			name: "нет истекающих пробных периодов",
			setupMocks: func(r *MockRepository) {
				r.On("FindTrialsExpiringInDays", mock.Anything, 1).
					Return([]*models.TrialInfo{}, nil).Once()
			},
		},
		{
			name: "ошибка хранилища только логируется",
			setupMocks: func(r *MockRepository) {
				r.On("FindTrialsExpiringInDays", mock.Anything, 1).
					Return(nil, errors.New("db error")).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			service := New(repo, newNoopLogger(), config.Scheduler{
				Interval:     12 * time.Hour,
				ReminderDays: 1,
			})

			tt.setupMocks(repo)

			service.runOnce(context.Background(), nil)

			repo.AssertExpectations(t)
		})
	}
}

// Горизонт напоминания приходит из конфига, а не зашит в коде.
func TestRunOnce_UsesConfiguredHorizon(t *testing.T) {
	repo := new(MockRepository)
	repo.On("FindTrialsExpiringInDays", mock.Anything, 3).
		Return([]*models.TrialInfo{}, nil).Once()

	service := New(repo, newNoopLogger(), config.Scheduler{
		Interval:     time.Hour,
		ReminderDays: 3,
	})

	service.runOnce(context.Background(), nil)

	repo.AssertExpectations(t)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	repo := new(MockRepository)
	repo.On("FindTrialsExpiringInDays", mock.Anything, 1).
		Return([]*models.TrialInfo{}, nil)

	service := New(repo, newNoopLogger(), config.Scheduler{
		Interval:     10 * time.Millisecond,
		ReminderDays: 1,
	})

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		service.Run(ctx, nil)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after context cancel")
	}
}
