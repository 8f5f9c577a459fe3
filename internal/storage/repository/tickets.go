package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/talkwise/talkwise-backend/internal/models"
)

// ErrTicketNotFound возвращается при ответе на несуществующее обращение.
var ErrTicketNotFound = errors.New("ticket not found")

func scanTicket(row interface{ Scan(dest ...any) error }) (*models.Ticket, error) {
	var item models.Ticket
	var answer sql.NullString
	if err := row.Scan(&item.ID, &item.UserUID, &item.Subject, &item.Body,
		&item.Status, &answer, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}
	if answer.Valid {
		item.Answer = &answer.String
	}
	return &item, nil
}

// CreateTicket вставляет новое обращение и возвращает его ID.
func (s *Storage) CreateTicket(ctx context.Context, t models.Ticket) (string, error) {
	const op = "storage.CreateTicket"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO support_tickets (user_uid, subject, body, status)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID string
	err := s.DB.QueryRowContext(ctx, query, t.UserUID, t.Subject, t.Body, models.TicketOpen).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListTicketsByUser возвращает обращения пользователя.
func (s *Storage) ListTicketsByUser(ctx context.Context, userUID string) ([]*models.Ticket, error) {
	const op = "storage.ListTicketsByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, subject, body, status, answer, created_at, updated_at
			  FROM support_tickets
			  WHERE user_uid = $1
			  ORDER BY created_at DESC`
	return s.queryTickets(ctx, op, query, userUID)
}

// ListAllTickets возвращает все обращения с пагинацией, новые первыми.
func (s *Storage) ListAllTickets(ctx context.Context, limit, offset int) ([]*models.Ticket, error) {
	const op = "storage.ListAllTickets"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, subject, body, status, answer, created_at, updated_at
			  FROM support_tickets
			  ORDER BY created_at DESC
			  LIMIT $1 OFFSET $2`
	return s.queryTickets(ctx, op, query, limit, offset)
}

func (s *Storage) queryTickets(ctx context.Context, op, query string, args ...any) ([]*models.Ticket, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Ticket
	for rows.Next() {
		item, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// AnswerTicket записывает ответ администратора, меняет статус обращения
// и возвращает UID автора. Автор берётся из самой строки обращения.
func (s *Storage) AnswerTicket(ctx context.Context, id, answer, status string) (string, error) {
	const op = "storage.AnswerTicket"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE support_tickets
			  SET answer = $1, status = $2, updated_at = now()
			  WHERE id = $3
			  RETURNING user_uid`
	var authorUID string
	if err := s.DB.QueryRowContext(ctx, query, answer, status, id).Scan(&authorUID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrTicketNotFound
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return authorUID, nil
}
