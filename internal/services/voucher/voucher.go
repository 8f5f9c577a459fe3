// Package voucher содержит бизнес-логику промокодов: создание,
// погашение при оплате и выгрузку в CSV.
package voucher

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/talkwise/talkwise-backend/internal/models"
	"github.com/talkwise/talkwise-backend/internal/storage/repository"
)

// ErrVoucherExpired возвращается для кода с истёкшим сроком действия.
var ErrVoucherExpired = errors.New("voucher expired")

// Repository определяет методы хранилища ваучеров.
type Repository interface {
	CreateVoucher(ctx context.Context, v models.Voucher) (string, error)
	ListVouchers(ctx context.Context) ([]*models.Voucher, error)
	GetVoucherByCode(ctx context.Context, code string) (*models.Voucher, error)
	ConsumeVoucher(ctx context.Context, code string) error
	RemoveVoucher(ctx context.Context, id string) (int, error)
}

// Service реализует операции с ваучерами.
type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

// New создает новый экземпляр Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// WithClock подменяет источник времени. Используется в тестах.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create создает ваучер из данных запроса администратора.
func (s *Service) Create(ctx context.Context, req models.DummyVoucher) (string, error) {
	var expiresAt *time.Time
	if req.ExpiresAt != "" {
		parsed, err := time.Parse("02-01-2006", req.ExpiresAt)
		if err != nil {
			return "", fmt.Errorf("invalid expires date: %w", err)
		}
		expiresAt = &parsed
	}

	v := models.Voucher{
		Code:          req.Code,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		MaxUses:       req.MaxUses,
		ExpiresAt:     expiresAt,
	}

	id, err := s.repo.CreateVoucher(ctx, v)
	if err != nil {
		return "", err
	}
	s.log.Info("created voucher", slog.String("code", req.Code))
	return id, nil
}

// List возвращает все ваучеры.
func (s *Service) List(ctx context.Context) ([]*models.Voucher, error) {
	return s.repo.ListVouchers(ctx)
}

// Remove удаляет ваучер по ID.
func (s *Service) Remove(ctx context.Context, id string) (int, error) {
	return s.repo.RemoveVoucher(ctx, id)
}

// DiscountedCents применяет скидку ваучера к цене.
func DiscountedCents(v *models.Voucher, priceCents int) int {
	var result int
	switch v.DiscountType {
	case models.DiscountFixed:
		result = priceCents - v.DiscountValue
	case models.DiscountPercentage:
		result = priceCents - priceCents*v.DiscountValue/100
	default:
		result = priceCents
	}
	if result < 0 {
		return 0
	}
	return result
}

// Redeem проверяет код и атомарно погашает его. Неизвестный,
// просроченный и исчерпанный коды дают различимые ошибки.
func (s *Service) Redeem(ctx context.Context, code string) (*models.Voucher, error) {
	v, err := s.repo.GetVoucherByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if v.ExpiresAt != nil && s.now().After(*v.ExpiresAt) {
		return nil, ErrVoucherExpired
	}
	if err := s.repo.ConsumeVoucher(ctx, code); err != nil {
		return nil, err
	}
	v.UsedCount++
	s.log.Info("voucher redeemed", slog.String("code", code), slog.Int("used_count", v.UsedCount))
	return v, nil
}

// Validate проверяет код без погашения: для предрасчёта цены на
// странице оплаты.
func (s *Service) Validate(ctx context.Context, code string) (*models.Voucher, error) {
	v, err := s.repo.GetVoucherByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if v.ExpiresAt != nil && s.now().After(*v.ExpiresAt) {
		return nil, ErrVoucherExpired
	}
	if v.UsedCount >= v.MaxUses {
		return nil, repository.ErrVoucherExhausted
	}
	return v, nil
}

// ExportCSV выгружает все ваучеры в CSV для админ-панели.
func (s *Service) ExportCSV(ctx context.Context) ([]byte, error) {
	vouchers, err := s.repo.ListVouchers(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"code", "discount_type", "discount_value", "used_count", "max_uses", "expires_at"}); err != nil {
		return nil, err
	}
	for _, v := range vouchers {
		expires := ""
		if v.ExpiresAt != nil {
			expires = v.ExpiresAt.Format(time.RFC3339)
		}
		record := []string{
			v.Code,
			v.DiscountType,
			strconv.Itoa(v.DiscountValue),
			strconv.Itoa(v.UsedCount),
			strconv.Itoa(v.MaxUses),
			expires,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
