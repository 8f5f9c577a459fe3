// Package payment обрабатывает покупки: формирование ссылки на
// оплату и приём вебхуков от платёжного провайдера.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/talkwise/talkwise-backend/internal/config"
	"github.com/talkwise/talkwise-backend/internal/lib/sl"
	"github.com/talkwise/talkwise-backend/internal/models"
	"github.com/talkwise/talkwise-backend/internal/paymentprovider"
)

// ErrUnknownProduct возвращается для продукта, которого нет в каталоге.
var ErrUnknownProduct = errors.New("unknown product")

// ErrSaleRefunded возвращается для продажи, помеченной провайдером
// как возвращённая.
var ErrSaleRefunded = errors.New("sale refunded")

// SaleEvent — тело вебхука провайдера о завершённой продаже.
type SaleEvent struct {
	SaleID      string `json:"sale_id" validate:"required"`
	UserUID     string `json:"user_uid" validate:"required,uuid"`
	Product     string `json:"product" validate:"required,oneof=premium lifetime"`
	VoucherCode string `json:"voucher_code"`
}

// CheckoutInfo — данные для редиректа пользователя на оплату.
type CheckoutInfo struct {
	URL         string `json:"url"`
	PriceCents  int    `json:"price_cents"`
	Currency    string `json:"currency"`
	VoucherCode string `json:"voucher_code,omitempty"`
}

// Repository определяет методы хранилища для платежей.
type Repository interface {
	CreatePayment(ctx context.Context, p models.Payment) (bool, error)
	ListPayments(ctx context.Context, userUID string) ([]*models.Payment, error)
	UpgradeSubscription(ctx context.Context, userUID, status string) (int, error)
	CreateNotification(ctx context.Context, n models.Notification) (string, error)
}

// Provider определяет клиент платёжного провайдера.
type Provider interface {
	BuildCheckoutURL(product, userUID, voucherCode string) string
	VerifySale(saleID string) (*paymentprovider.Sale, error)
}

// VoucherRedeemer погашает промокод при подтверждённой оплате.
type VoucherRedeemer interface {
	Redeem(ctx context.Context, code string) (*models.Voucher, error)
	Validate(ctx context.Context, code string) (*models.Voucher, error)
}

// Publisher публикует событие оплаты в очередь уведомлений.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// Discounter применяет скидку ваучера к цене.
type Discounter func(v *models.Voucher, priceCents int) int

// Service реализует операции оплаты.
type Service struct {
	repo      Repository
	provider  Provider
	vouchers  VoucherRedeemer
	publisher Publisher
	discount  Discounter
	cfg       config.PaymentProvider
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, provider Provider, vouchers VoucherRedeemer,
	publisher Publisher, discount Discounter, cfg config.PaymentProvider, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		provider:  provider,
		vouchers:  vouchers,
		publisher: publisher,
		discount:  discount,
		cfg:       cfg,
		log:       log,
	}
}

// priceCents возвращает базовую цену продукта.
func (s *Service) priceCents(product string) (int, error) {
	switch product {
	case models.ProductPremium:
		return s.cfg.PremiumPriceCents, nil
	case models.ProductLifetime:
		return s.cfg.LifetimePriceCents, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownProduct, product)
	}
}

// Checkout формирует ссылку на страницу оплаты. Промокод
// проверяется без погашения, погашение происходит в вебхуке.
func (s *Service) Checkout(ctx context.Context, product, userUID, voucherCode string) (*CheckoutInfo, error) {
	price, err := s.priceCents(product)
	if err != nil {
		return nil, err
	}

	if voucherCode != "" {
		v, err := s.vouchers.Validate(ctx, voucherCode)
		if err != nil {
			return nil, err
		}
		price = s.discount(v, price)
	}

	return &CheckoutInfo{
		URL:         s.provider.BuildCheckoutURL(product, userUID, voucherCode),
		PriceCents:  price,
		Currency:    s.cfg.Currency,
		VoucherCode: voucherCode,
	}, nil
}

// VerifySignature проверяет подпись HMAC-SHA256 тела вебхука.
func (s *Service) VerifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(s.cfg.WebhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// ProcessSale обрабатывает событие продажи: верифицирует её у
// провайдера, записывает платёж, апгрейдит подписку и публикует
// уведомление. Повторная доставка того же sale_id — no-op.
func (s *Service) ProcessSale(ctx context.Context, event SaleEvent) error {
	const op = "services.payment.ProcessSale"

	sale, err := s.provider.VerifySale(event.SaleID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if sale.Refunded {
		return fmt.Errorf("%s: %w", op, ErrSaleRefunded)
	}

	var voucherCode *string
	if event.VoucherCode != "" {
		if _, err := s.vouchers.Redeem(ctx, event.VoucherCode); err != nil {
			// Оплата уже прошла, битый промокод её не отменяет
			s.log.Warn("voucher redeem failed on paid sale",
				slog.String("code", event.VoucherCode), sl.Err(err))
		} else {
			voucherCode = &event.VoucherCode
		}
	}

	inserted, err := s.repo.CreatePayment(ctx, models.Payment{
		UserUID:        event.UserUID,
		ProviderSaleID: sale.ID,
		Product:        event.Product,
		AmountCents:    sale.PriceCents,
		Currency:       sale.Currency,
		VoucherCode:    voucherCode,
		Status:         "succeeded",
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !inserted {
		s.log.Info("duplicate sale delivery ignored", slog.String("sale_id", sale.ID))
		return nil
	}

	status := models.StatusPremium
	if event.Product == models.ProductLifetime {
		status = models.StatusLifetime
	}
	if _, err := s.repo.UpgradeSubscription(ctx, event.UserUID, status); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.repo.CreateNotification(ctx, models.Notification{
		UserUID: &event.UserUID,
		Title:   "Оплата прошла",
		Body:    fmt.Sprintf("Подписка %s активирована, доступны все уроки.", event.Product),
		Kind:    models.KindPayment,
	}); err != nil {
		s.log.Error("failed to create payment notification", sl.Err(err))
	}

	if s.publisher != nil {
		if err := s.publisher.Publish("payment", sale); err != nil {
			s.log.Error("failed to publish payment event", sl.Err(err))
		}
	}

	s.log.Info("sale processed",
		slog.String("sale_id", sale.ID),
		slog.String("user_uid", event.UserUID),
		slog.String("product", event.Product))
	return nil
}

// History возвращает платежи пользователя.
func (s *Service) History(ctx context.Context, userUID string) ([]*models.Payment, error) {
	return s.repo.ListPayments(ctx, userUID)
}
