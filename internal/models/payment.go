package models

import "time"

// Продукты, доступные к покупке.
const (
	ProductPremium  = "premium"
	ProductLifetime = "lifetime"
)

// Payment — запись о платеже, подтверждённом провайдером.
// ProviderSaleID уникален, повторная доставка вебхука не создаёт дубликат.
type Payment struct {
	ID             string
	UserUID        string
	ProviderSaleID string
	Product        string // premium или lifetime
	AmountCents    int
	Currency       string
	VoucherCode    *string // Код ваучера, если применялся
	Status         string  // succeeded, refunded
	CreatedAt      time.Time
}
