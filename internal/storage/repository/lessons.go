package repository

import (
	"context"
	"fmt"

	"github.com/talkwise/talkwise-backend/internal/models"
)

// ListLessons возвращает весь каталог уроков в порядке номеров.
func (s *Storage) ListLessons(ctx context.Context) ([]*models.Lesson, error) {
	const op = "storage.ListLessons"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT lesson_number, title, description, category, xp_reward, is_free
			  FROM lessons
			  ORDER BY lesson_number`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Lesson
	for rows.Next() {
		var item models.Lesson
		if err := rows.Scan(&item.LessonNumber, &item.Title, &item.Description,
			&item.Category, &item.XPReward, &item.IsFree); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetLesson возвращает урок по номеру.
func (s *Storage) GetLesson(ctx context.Context, lessonNumber int) (*models.Lesson, error) {
	const op = "storage.GetLesson"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT lesson_number, title, description, category, xp_reward, is_free
			  FROM lessons WHERE lesson_number = $1`
	var result models.Lesson
	row := s.DB.QueryRowContext(ctx, query, lessonNumber)
	if err := row.Scan(&result.LessonNumber, &result.Title, &result.Description,
		&result.Category, &result.XPReward, &result.IsFree); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}
