package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/talkwise/talkwise-backend/internal/models"
)

// Ошибки погашения ваучера, различимые на уровне сервиса.
var (
	ErrVoucherNotFound  = errors.New("voucher not found")
	ErrVoucherExhausted = errors.New("voucher exhausted")
)

// CreateVoucher вставляет новый ваучер и возвращает его ID.
func (s *Storage) CreateVoucher(ctx context.Context, v models.Voucher) (string, error) {
	const op = "storage.CreateVoucher"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO vouchers (code, discount_type, discount_value, max_uses, expires_at)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id`
	var newID string
	err := s.DB.QueryRowContext(ctx, query,
		v.Code, v.DiscountType, v.DiscountValue, v.MaxUses, v.ExpiresAt).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListVouchers возвращает все ваучеры в порядке создания.
func (s *Storage) ListVouchers(ctx context.Context) ([]*models.Voucher, error) {
	const op = "storage.ListVouchers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, code, discount_type, discount_value, used_count, max_uses,
			      expires_at, created_at
			  FROM vouchers
			  ORDER BY created_at`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Voucher
	for rows.Next() {
		var item models.Voucher
		var expiresAt sql.NullTime
		if err := rows.Scan(&item.ID, &item.Code, &item.DiscountType, &item.DiscountValue,
			&item.UsedCount, &item.MaxUses, &expiresAt, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if expiresAt.Valid {
			item.ExpiresAt = &expiresAt.Time
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetVoucherByCode возвращает ваучер по коду.
func (s *Storage) GetVoucherByCode(ctx context.Context, code string) (*models.Voucher, error) {
	const op = "storage.GetVoucherByCode"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, code, discount_type, discount_value, used_count, max_uses,
			      expires_at, created_at
			  FROM vouchers WHERE code = $1`
	var item models.Voucher
	var expiresAt sql.NullTime
	row := s.DB.QueryRowContext(ctx, query, code)
	if err := row.Scan(&item.ID, &item.Code, &item.DiscountType, &item.DiscountValue,
		&item.UsedCount, &item.MaxUses, &expiresAt, &item.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVoucherNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if expiresAt.Valid {
		item.ExpiresAt = &expiresAt.Time
	}
	return &item, nil
}

// ConsumeVoucher атомарно увеличивает счётчик погашений кода.
// Возвращает ErrVoucherExhausted, если лимит уже исчерпан.
func (s *Storage) ConsumeVoucher(ctx context.Context, code string) error {
	const op = "storage.ConsumeVoucher"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE vouchers
			  SET used_count = used_count + 1
			  WHERE code = $1 AND used_count < max_uses`
	result, err := s.DB.ExecContext(ctx, query, code)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return ErrVoucherExhausted
	}
	return nil
}

// RemoveVoucher удаляет ваучер по ID и возвращает количество удалённых строк.
func (s *Storage) RemoveVoucher(ctx context.Context, id string) (int, error) {
	const op = "storage.RemoveVoucher"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM vouchers WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
