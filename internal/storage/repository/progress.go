package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/talkwise/talkwise-backend/internal/models"
)

// InsertCompletion фиксирует прохождение урока. Возвращает true, если
// запись вставлена впервые: пара (user, lesson) уникальна, повторное
// прохождение не дублируется.
func (s *Storage) InsertCompletion(ctx context.Context, userUID string, lessonNumber int, completedAt time.Time) (bool, error) {
	const op = "storage.InsertCompletion"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO completed_lessons (user_uid, lesson_number, completed_at)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (user_uid, lesson_number) DO NOTHING`
	result, err := s.DB.ExecContext(ctx, query, userUID, lessonNumber, completedAt)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected > 0, nil
}

// ListCompletedNumbers возвращает номера пройденных пользователем уроков.
func (s *Storage) ListCompletedNumbers(ctx context.Context, userUID string) ([]int, error) {
	const op = "storage.ListCompletedNumbers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT lesson_number FROM completed_lessons
			  WHERE user_uid = $1
			  ORDER BY lesson_number`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateProgress сохраняет счётчики прогресса пользователя после
// прохождения урока.
func (s *Storage) UpdateProgress(ctx context.Context, u *models.User) (int, error) {
	const op = "storage.UpdateProgress"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET current_lesson = $1, total_xp = $2, current_streak = $3,
			      longest_streak = $4, last_completed_at = $5
			  WHERE uid = $6`
	result, err := s.DB.ExecContext(ctx, query,
		u.CurrentLesson, u.TotalXP, u.CurrentStreak, u.LongestStreak,
		u.LastCompletedAt, u.UID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
