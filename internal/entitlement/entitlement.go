// Package entitlement содержит политику доступа к аккаунту и урокам.
//
// Все функции чистые: результат зависит только от пользователя, номера
// урока и переданного момента времени. Время всегда инжектируется
// параметром now, глобальные часы внутри пакета не читаются. Политика
// никогда не возвращает ошибок — исходы являются значениями, а
// некорректный вход (nil-пользователь) даёт выделенный результат.
package entitlement

import (
	"math"
	"time"

	"github.com/talkwise/talkwise-backend/internal/models"
)

// AccountStatus — состояние аккаунта в целом.
type AccountStatus int

const (
	// StatusActive — аккаунт полностью доступен.
	StatusActive AccountStatus = iota
	// StatusNearExpiry — пробный период скоро закончится. Состояние
	// консультативное: доступ к урокам оно не блокирует.
	StatusNearExpiry
	// StatusExpired — пробный период закончился.
	StatusExpired
)

// String возвращает строковое представление статуса для логов и JSON.
func (s AccountStatus) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusNearExpiry:
		return "near_expiry"
	case StatusExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// AccessResult — решение о доступе к конкретному уроку.
type AccessResult int

const (
	// AccessNoUser — пользователь не передан. Отсутствующего
	// пользователя нельзя молча считать активным.
	AccessNoUser AccessResult = iota
	// AccessGranted — урок доступен.
	AccessGranted
	// AccessAccountExpired — пробный период закончился, доступ закрыт.
	AccessAccountExpired
	// AccessPaymentRequired — урок премиальный, нужна оплата.
	AccessPaymentRequired
)

// String возвращает строковое представление результата.
func (r AccessResult) String() string {
	switch r {
	case AccessGranted:
		return "granted"
	case AccessAccountExpired:
		return "account_expired"
	case AccessPaymentRequired:
		return "payment_required"
	case AccessNoUser:
		return "no_user"
	default:
		return "unknown"
	}
}

// UnlimitedDays — сентинел "фактически без ограничения" для аккаунтов,
// у которых нет даты окончания.
const UnlimitedDays = 999

// Policy хранит пороги политики. Конструируется из конфига при старте
// приложения, литералов порогов на местах вызова нет.
type Policy struct {
	FreeLessonLimit int // Последний номер бесплатного урока
	TotalLessons    int // Всего уроков в каталоге
	TrialDays       int // Длина пробного периода в днях
	NearExpiryDays  int // Порог предупреждения об окончании
	NudgeDays       int // Порог показа предложения об апгрейде
}

// daysUntil возвращает число дней до expires, округлённое вверх.
// Может быть отрицательным после истечения срока. Обе проверки —
// статус аккаунта и доступ к уроку — считают срок через эту функцию,
// расхождений "по времени суток" между ними нет.
func daysUntil(expires, now time.Time) int {
	return int(math.Ceil(expires.Sub(now).Hours() / 24))
}

// AccountStatus решает, доступен ли аккаунт в целом.
//
// Оплаченные аккаунты (premium, lifetime) всегда активны. Бесплатный
// аккаунт без даты окончания тоже считается активным: это осознанный
// консервативный дефолт, а не вычисленный факт.
func (p Policy) AccountStatus(u *models.User, now time.Time) AccountStatus {
	if u == nil {
		return StatusExpired
	}
	if !u.IsFree() {
		return StatusActive
	}
	if u.ExpiresAt == nil {
		return StatusActive
	}
	daysLeft := daysUntil(*u.ExpiresAt, now)
	switch {
	case daysLeft <= 0:
		return StatusExpired
	case daysLeft <= p.NearExpiryDays:
		return StatusNearExpiry
	default:
		return StatusActive
	}
}

// LessonAccess решает, доступен ли пользователю урок с данным номером.
// Проверки применяются по порядку, первая сработавшая определяет исход:
//
//  1. истёкший пробный период закрывает любой урок;
//  2. премиальный урок без оплаченной подписки требует оплаты;
//  3. иначе доступ открыт.
func (p Policy) LessonAccess(u *models.User, lessonNumber int, now time.Time) AccessResult {
	if u == nil {
		return AccessNoUser
	}
	if u.IsFree() && u.ExpiresAt != nil && daysUntil(*u.ExpiresAt, now) <= 0 {
		return AccessAccountExpired
	}
	if p.IsPremiumLesson(lessonNumber) && u.IsFree() {
		return AccessPaymentRequired
	}
	return AccessGranted
}

// DaysLeft возвращает число дней до конца пробного периода.
//
// Для оплаченных аккаунтов и бесплатных без даты окончания возвращает
// UnlimitedDays. После истечения срока значение отрицательное — функция
// не клампит, интерпретация остаётся за вызывающим.
func (p Policy) DaysLeft(u *models.User, now time.Time) int {
	if u == nil {
		return 0
	}
	if !u.IsFree() || u.ExpiresAt == nil {
		return UnlimitedDays
	}
	return daysUntil(*u.ExpiresAt, now)
}

// IsPremiumLesson сообщает, что урок платный. Не зависит от пользователя,
// используется для разметки каталога.
func (p Policy) IsPremiumLesson(lessonNumber int) bool {
	return lessonNumber > p.FreeLessonLimit
}

// ShouldNudge сообщает, что пора показать пользователю предложение об
// апгрейде: бесплатный аккаунт, до конца пробного периода осталось не
// больше NudgeDays дней, но срок ещё не истёк.
func (p Policy) ShouldNudge(u *models.User, now time.Time) bool {
	if u == nil || !u.IsFree() || u.ExpiresAt == nil {
		return false
	}
	daysLeft := daysUntil(*u.ExpiresAt, now)
	return daysLeft > 0 && daysLeft <= p.NudgeDays
}

// TrialEnd возвращает дату окончания пробного периода для аккаунта,
// созданного в createdAt.
func (p Policy) TrialEnd(createdAt time.Time) time.Time {
	return createdAt.AddDate(0, 0, p.TrialDays)
}
