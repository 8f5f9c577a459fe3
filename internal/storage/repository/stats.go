package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/talkwise/talkwise-backend/internal/models"
)

// CountUsersByStatus возвращает количество пользователей в разрезе
// статуса подписки.
func (s *Storage) CountUsersByStatus(ctx context.Context) (map[string]int, error) {
	const op = "storage.CountUsersByStatus"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT subscription_status, COUNT(*) FROM users GROUP BY subscription_status`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := map[string]int{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result[status] = count
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// SumRevenueCents возвращает суммарную выручку по успешным платежам.
func (s *Storage) SumRevenueCents(ctx context.Context) (int, error) {
	const op = "storage.SumRevenueCents"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COALESCE(SUM(amount_cents), 0) FROM payments WHERE status = 'succeeded'`
	var total int
	if err := s.DB.QueryRowContext(ctx, query).Scan(&total); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return total, nil
}

// CountTicketsByStatus возвращает количество обращений по статусу.
func (s *Storage) CountTicketsByStatus(ctx context.Context, status string) (int, error) {
	const op = "storage.CountTicketsByStatus"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*) FROM support_tickets WHERE status = $1`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, status).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// CountCompletionsSince возвращает число прохождений уроков с указанного момента.
func (s *Storage) CountCompletionsSince(ctx context.Context, since time.Time) (int, error) {
	const op = "storage.CountCompletionsSince"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*) FROM completed_lessons WHERE completed_at >= $1`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// Stats — агрегированная сводка для админ-панели.
type Stats struct {
	UsersByStatus   map[string]int `json:"users_by_status"`
	TotalUsers      int            `json:"total_users"`
	RevenueCents    int            `json:"revenue_cents"`
	OpenTickets     int            `json:"open_tickets"`
	CompletionsWeek int            `json:"completions_week"`
}

// CollectStats собирает сводку одним вызовом.
func (s *Storage) CollectStats(ctx context.Context, now time.Time) (*Stats, error) {
	const op = "storage.CollectStats"

	byStatus, err := s.CountUsersByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	total := 0
	for _, c := range byStatus {
		total += c
	}
	revenue, err := s.SumRevenueCents(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	open, err := s.CountTicketsByStatus(ctx, models.TicketOpen)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	completions, err := s.CountCompletionsSince(ctx, now.AddDate(0, 0, -7))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Stats{
		UsersByStatus:   byStatus,
		TotalUsers:      total,
		RevenueCents:    revenue,
		OpenTickets:     open,
		CompletionsWeek: completions,
	}, nil
}
