// Package progress содержит бизнес-логику прохождения уроков:
// XP, серии дней и продвижение текущего урока.
package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/talkwise/talkwise-backend/internal/entitlement"
	"github.com/talkwise/talkwise-backend/internal/models"
)

// ErrAccessDenied возвращается при попытке завершить недоступный урок.
// Гейт применяется и к записи прогресса, не только к чтению контента.
var ErrAccessDenied = errors.New("lesson access denied")

// Repository определяет методы хранилища для записи прогресса.
type Repository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	GetLesson(ctx context.Context, lessonNumber int) (*models.Lesson, error)
	// InsertCompletion возвращает true при первом прохождении урока.
	InsertCompletion(ctx context.Context, userUID string, lessonNumber int, completedAt time.Time) (bool, error)
	UpdateProgress(ctx context.Context, u *models.User) (int, error)
}

// Result — результат завершения урока.
type Result struct {
	FirstCompletion bool `json:"first_completion"`
	XPEarned        int  `json:"xp_earned"`
	TotalXP         int  `json:"total_xp"`
	CurrentStreak   int  `json:"current_streak"`
	LongestStreak   int  `json:"longest_streak"`
	CurrentLesson   int  `json:"current_lesson"`
}

// Service реализует запись прогресса.
type Service struct {
	repo   Repository
	policy entitlement.Policy
	log    *slog.Logger
	now    func() time.Time
}

// New создает новый экземпляр Service.
func New(repo Repository, policy entitlement.Policy, log *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		policy: policy,
		log:    log,
		now:    time.Now,
	}
}

// WithClock подменяет источник времени. Используется в тестах.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// sameDay сообщает, что два момента приходятся на одну календарную дату UTC.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// CompleteLesson фиксирует прохождение урока. Операция идемпотентна:
// повторное прохождение не добавляет XP и не двигает серию.
func (s *Service) CompleteLesson(ctx context.Context, userUID string, lessonNumber int) (*Result, error) {
	now := s.now().UTC()

	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if access := s.policy.LessonAccess(user, lessonNumber, now); access != entitlement.AccessGranted {
		s.log.Info("completion rejected by gate",
			slog.String("user_uid", userUID),
			slog.Int("lesson", lessonNumber),
			slog.String("access", access.String()))
		return nil, ErrAccessDenied
	}

	lesson, err := s.repo.GetLesson(ctx, lessonNumber)
	if err != nil {
		return nil, fmt.Errorf("load lesson: %w", err)
	}

	inserted, err := s.repo.InsertCompletion(ctx, userUID, lessonNumber, now)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return &Result{
			FirstCompletion: false,
			TotalXP:         user.TotalXP,
			CurrentStreak:   user.CurrentStreak,
			LongestStreak:   user.LongestStreak,
			CurrentLesson:   user.CurrentLesson,
		}, nil
	}

	user.TotalXP += lesson.XPReward
	if lessonNumber+1 > user.CurrentLesson {
		user.CurrentLesson = lessonNumber + 1
	}

	// Серия: +1 если последнее прохождение было вчера, без изменений
	// если сегодня уже был урок, сброс на 1 после перерыва.
	switch {
	case user.LastCompletedAt == nil:
		user.CurrentStreak = 1
	case sameDay(*user.LastCompletedAt, now):
		if user.CurrentStreak == 0 {
			user.CurrentStreak = 1
		}
	case sameDay(user.LastCompletedAt.AddDate(0, 0, 1), now):
		user.CurrentStreak++
	default:
		user.CurrentStreak = 1
	}
	if user.CurrentStreak > user.LongestStreak {
		user.LongestStreak = user.CurrentStreak
	}
	user.LastCompletedAt = &now

	if _, err := s.repo.UpdateProgress(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("lesson completed",
		slog.String("user_uid", userUID),
		slog.Int("lesson", lessonNumber),
		slog.Int("total_xp", user.TotalXP))

	return &Result{
		FirstCompletion: true,
		XPEarned:        lesson.XPReward,
		TotalXP:         user.TotalXP,
		CurrentStreak:   user.CurrentStreak,
		LongestStreak:   user.LongestStreak,
		CurrentLesson:   user.CurrentLesson,
	}, nil
}
