package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/talkwise/talkwise-backend/internal/models"
)

// CreatePayment сохраняет платёж. Повторная доставка вебхука с тем же
// provider_sale_id не создаёт дубликат: возвращается false.
func (s *Storage) CreatePayment(ctx context.Context, p models.Payment) (bool, error) {
	const op = "storage.CreatePayment"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO payments (user_uid, provider_sale_id, product, amount_cents,
			      currency, voucher_code, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  ON CONFLICT (provider_sale_id) DO NOTHING`
	result, err := s.DB.ExecContext(ctx, query,
		p.UserUID, p.ProviderSaleID, p.Product, p.AmountCents, p.Currency,
		p.VoucherCode, p.Status)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected > 0, nil
}

// ListPayments возвращает платежи пользователя.
func (s *Storage) ListPayments(ctx context.Context, userUID string) ([]*models.Payment, error) {
	const op = "storage.ListPayments"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, provider_sale_id, product, amount_cents, currency,
			      voucher_code, status, created_at
			  FROM payments
			  WHERE user_uid = $1
			  ORDER BY created_at`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Payment
	for rows.Next() {
		var item models.Payment
		var voucherCode sql.NullString
		if err := rows.Scan(&item.ID, &item.UserUID, &item.ProviderSaleID, &item.Product,
			&item.AmountCents, &item.Currency, &voucherCode, &item.Status,
			&item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if voucherCode.Valid {
			item.VoucherCode = &voucherCode.String
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
