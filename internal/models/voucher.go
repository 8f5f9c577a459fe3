package models

import "time"

// Типы скидки ваучера.
const (
	DiscountFixed      = "fixed"
	DiscountPercentage = "percentage"
)

// Voucher представляет промокод, создаваемый администратором и
// погашаемый при оплате. EndDate может быть nil — бессрочный код.
type Voucher struct {
	ID            string     // Уникальный идентификатор
	Code          string     // Уникальный код, вводимый пользователем
	DiscountType  string     // fixed или percentage
	DiscountValue int        // Сумма в центах либо процент
	UsedCount     int        // Сколько раз код уже погашен
	MaxUses       int        // Лимит погашений
	ExpiresAt     *time.Time // Дата окончания действия кода
	CreatedAt     time.Time
}

// DummyVoucher используется для приёма данных из JSON-запроса,
// прежде чем конвертировать их в Voucher.
type DummyVoucher struct {
	Code          string `json:"code" validate:"required,alphanum,min=4,max=32"` // Код
	DiscountType  string `json:"discount_type" validate:"required,oneof=fixed percentage"`
	DiscountValue int    `json:"discount_value" validate:"required,gt=0"`
	MaxUses       int    `json:"max_uses" validate:"required,gt=0"`
	ExpiresAt     string `json:"expires_at"` // Дата в формате 02-01-2006, пусто — бессрочно
}
