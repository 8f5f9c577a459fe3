// Package models содержит доменную модель пользователя платформы,
// включающую данные учётной записи, статус подписки и прогресс обучения.
// Структура используется в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// Статусы подписки пользователя. Статус меняется только вперёд:
// free -> premium/lifetime после подтверждённого платежа.
const (
	StatusFree     = "free"
	StatusPremium  = "premium"
	StatusLifetime = "lifetime"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID                string     // Уникальный идентификатор пользователя
	Email              string     // Электронная почта
	Username           string     // Имя пользователя (уникальное)
	PasswordHash       string     // Хэш пароля пользователя
	Role               string     // Роль пользователя, admin или user
	SubscriptionStatus string     // free, premium или lifetime
	ExpiresAt          *time.Time // Дата окончания пробного периода, только для free
	CurrentLesson      int        // Номер текущего урока
	TotalXP            int        // Суммарный опыт за пройденные уроки
	CurrentStreak      int        // Текущая серия дней с пройденными уроками
	LongestStreak      int        // Максимальная серия за всё время
	LastCompletedAt    *time.Time // Время последнего пройденного урока
	CreatedAt          time.Time
}

// IsFree сообщает, что у пользователя нет оплаченной подписки.
func (u *User) IsFree() bool {
	return u.SubscriptionStatus == StatusFree
}
