package progress

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/talkwise/talkwise-backend/internal/entitlement"
	"github.com/talkwise/talkwise-backend/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if res := args.Get(0); res != nil {
		return res.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) GetLesson(ctx context.Context, lessonNumber int) (*models.Lesson, error) {
	args := m.Called(ctx, lessonNumber)
	if res := args.Get(0); res != nil {
		return res.(*models.Lesson), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) InsertCompletion(ctx context.Context, userUID string, lessonNumber int, completedAt time.Time) (bool, error) {
	args := m.Called(ctx, userUID, lessonNumber, completedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) UpdateProgress(ctx context.Context, u *models.User) (int, error) {
	args := m.Called(ctx, u)
	return args.Int(0), args.Error(1)
}

func testPolicy() entitlement.Policy {
	return entitlement.Policy{FreeLessonLimit: 30, TotalLessons: 120, TrialDays: 30, NearExpiryDays: 10, NudgeDays: 3}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func fixedNow() time.Time {
	return time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)
}

func freeUser() *models.User {
	future := fixedNow().AddDate(0, 0, 20)
	return &models.User{
		UID:                "u1",
		SubscriptionStatus: models.StatusFree,
		ExpiresAt:          &future,
		CurrentLesson:      5,
		TotalXP:            40,
	}
}

func TestCompleteLessonFirstTime(t *testing.T) {
	user := freeUser()
	lesson := &models.Lesson{LessonNumber: 5, XPReward: 10}

	repo := new(MockRepository)
	repo.On("GetUser", mock.Anything, "u1").Return(user, nil)
	repo.On("GetLesson", mock.Anything, 5).Return(lesson, nil)
	repo.On("InsertCompletion", mock.Anything, "u1", 5, mock.Anything).Return(true, nil)
	repo.On("UpdateProgress", mock.Anything, mock.Anything).Return(1, nil)

	service := New(repo, testPolicy(), testLogger()).WithClock(fixedNow)

	res, err := service.CompleteLesson(context.Background(), "u1", 5)
	require.NoError(t, err)
	assert.True(t, res.FirstCompletion)
	assert.Equal(t, 10, res.XPEarned)
	assert.Equal(t, 50, res.TotalXP)
	assert.Equal(t, 6, res.CurrentLesson)
	assert.Equal(t, 1, res.CurrentStreak)
	repo.AssertExpectations(t)
}

func TestCompleteLessonIdempotent(t *testing.T) {
	user := freeUser()
	lesson := &models.Lesson{LessonNumber: 5, XPReward: 10}

	repo := new(MockRepository)
	repo.On("GetUser", mock.Anything, "u1").Return(user, nil)
	repo.On("GetLesson", mock.Anything, 5).Return(lesson, nil)
	repo.On("InsertCompletion", mock.Anything, "u1", 5, mock.Anything).Return(false, nil)

	service := New(repo, testPolicy(), testLogger()).WithClock(fixedNow)

	res, err := service.CompleteLesson(context.Background(), "u1", 5)
	require.NoError(t, err)
	assert.False(t, res.FirstCompletion)
	assert.Equal(t, 0, res.XPEarned)
	assert.Equal(t, 40, res.TotalXP, "повторное прохождение не добавляет XP")
	repo.AssertNotCalled(t, "UpdateProgress", mock.Anything, mock.Anything)
}

func TestCompleteLessonGateApplies(t *testing.T) {
	user := freeUser()

	repo := new(MockRepository)
	repo.On("GetUser", mock.Anything, "u1").Return(user, nil)

	service := New(repo, testPolicy(), testLogger()).WithClock(fixedNow)

	// премиальный урок закрыт для free и на запись тоже
	_, err := service.CompleteLesson(context.Background(), "u1", 31)
	assert.ErrorIs(t, err, ErrAccessDenied)
	repo.AssertNotCalled(t, "InsertCompletion", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStreakRules(t *testing.T) {
	yesterday := fixedNow().AddDate(0, 0, -1)
	today := fixedNow().Add(-2 * time.Hour)
	lastWeek := fixedNow().AddDate(0, 0, -7)

	tests := []struct {
		name          string
		lastCompleted *time.Time
		streak        int
		longest       int
		wantStreak    int
		wantLongest   int
	}{
		{"первое прохождение вообще", nil, 0, 0, 1, 1},
		{"вчера был урок — серия растёт", &yesterday, 3, 3, 4, 4},
		{"сегодня уже был урок — серия не меняется", &today, 3, 5, 3, 5},
		{"перерыв — серия сбрасывается", &lastWeek, 9, 9, 1, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := freeUser()
			user.LastCompletedAt = tt.lastCompleted
			user.CurrentStreak = tt.streak
			user.LongestStreak = tt.longest

			lesson := &models.Lesson{LessonNumber: 7, XPReward: 10}

			repo := new(MockRepository)
			repo.On("GetUser", mock.Anything, "u1").Return(user, nil)
			repo.On("GetLesson", mock.Anything, 7).Return(lesson, nil)
			repo.On("InsertCompletion", mock.Anything, "u1", 7, mock.Anything).Return(true, nil)
			repo.On("UpdateProgress", mock.Anything, mock.Anything).Return(1, nil)

			service := New(repo, testPolicy(), testLogger()).WithClock(fixedNow)

			res, err := service.CompleteLesson(context.Background(), "u1", 7)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStreak, res.CurrentStreak)
			assert.Equal(t, tt.wantLongest, res.LongestStreak)
		})
	}
}
