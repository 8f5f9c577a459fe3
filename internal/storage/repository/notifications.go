package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/talkwise/talkwise-backend/internal/models"
)

// CreateNotification вставляет уведомление. UserUID == nil означает
// рассылку всем пользователям.
func (s *Storage) CreateNotification(ctx context.Context, n models.Notification) (string, error) {
	const op = "storage.CreateNotification"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO notifications (user_uid, title, body, kind)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID string
	err := s.DB.QueryRowContext(ctx, query, n.UserUID, n.Title, n.Body, n.Kind).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListNotificationsForUser возвращает уведомления пользователя вместе
// с рассылками, новые первыми.
func (s *Storage) ListNotificationsForUser(ctx context.Context, userUID string, limit, offset int) ([]*models.Notification, error) {
	const op = "storage.ListNotificationsForUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	// У рассылки нет своего флага read для каждого получателя, факт
	// прочтения берётся из notification_reads.
	query := `SELECT n.id, n.user_uid, n.title, n.body, n.kind,
			      CASE WHEN n.user_uid IS NULL THEN r.user_uid IS NOT NULL
			           ELSE n.read END AS read,
			      n.created_at
			  FROM notifications n
			  LEFT JOIN notification_reads r
			    ON r.notification_id = n.id AND r.user_uid = $1
			  WHERE n.user_uid = $1 OR n.user_uid IS NULL
			  ORDER BY n.created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Notification
	for rows.Next() {
		var item models.Notification
		var uid sql.NullString
		if err := rows.Scan(&item.ID, &uid, &item.Title, &item.Body, &item.Kind,
			&item.Read, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if uid.Valid {
			item.UserUID = &uid.String
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// MarkNotificationRead помечает уведомление прочитанным. Пользователь
// может пометить только своё уведомление; прочтение рассылки пишется
// в notification_reads и не видно другим получателям.
func (s *Storage) MarkNotificationRead(ctx context.Context, id, userUID string) (int, error) {
	const op = "storage.MarkNotificationRead"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE notifications SET read = true
			  WHERE id = $1 AND user_uid = $2`
	result, err := s.DB.ExecContext(ctx, query, id, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected > 0 {
		return int(rowsAffected), nil
	}

	// Не личное уведомление — возможно, рассылка. Повторная отметка
	// остаётся идемпотентной и по-прежнему считается успехом.
	query = `INSERT INTO notification_reads (notification_id, user_uid)
			 SELECT id, $2 FROM notifications WHERE id = $1 AND user_uid IS NULL
			 ON CONFLICT (notification_id, user_uid)
			 DO UPDATE SET read_at = notification_reads.read_at`
	result, err = s.DB.ExecContext(ctx, query, id, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err = result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
