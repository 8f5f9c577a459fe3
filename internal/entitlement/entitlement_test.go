package entitlement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/talkwise/talkwise-backend/internal/models"
)

func testPolicy() Policy {
	return Policy{
		FreeLessonLimit: 30,
		TotalLessons:    120,
		TrialDays:       30,
		NearExpiryDays:  10,
		NudgeDays:       3,
	}
}

func freeUser(expiresAt *time.Time) *models.User {
	return &models.User{
		UID:                "uid-free",
		Username:           "freeuser",
		SubscriptionStatus: models.StatusFree,
		ExpiresAt:          expiresAt,
	}
}

func paidUser(status string) *models.User {
	return &models.User{
		UID:                "uid-paid",
		Username:           "paiduser",
		SubscriptionStatus: status,
	}
}

func TestAccountStatus(t *testing.T) {
	p := testPolicy()
	now := time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)

	past := now.Add(-time.Second)
	in5days := now.AddDate(0, 0, 5)
	in10days := now.AddDate(0, 0, 10)
	in11days := now.AddDate(0, 0, 11)

	tests := []struct {
		name string
		user *models.User
		want AccountStatus
	}{
		{"premium всегда активен", paidUser(models.StatusPremium), StatusActive},
		{"lifetime всегда активен", paidUser(models.StatusLifetime), StatusActive},
		{"free без даты окончания активен", freeUser(nil), StatusActive},
		{"free истёк секунду назад", freeUser(&past), StatusExpired},
		{"free осталось 5 дней", freeUser(&in5days), StatusNearExpiry},
		{"free осталось ровно 10 дней", freeUser(&in10days), StatusNearExpiry},
		{"free осталось 11 дней", freeUser(&in11days), StatusActive},
		{"nil пользователь не активен", nil, StatusExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.AccountStatus(tt.user, now))
		})
	}
}

func TestAccountStatusPaidIgnoresExpiry(t *testing.T) {
	p := testPolicy()
	now := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -100)

	// Оставшаяся дата окончания не имеет значения после оплаты.
	u := paidUser(models.StatusPremium)
	u.ExpiresAt = &past
	assert.Equal(t, StatusActive, p.AccountStatus(u, now))
}

func TestLessonAccess(t *testing.T) {
	p := testPolicy()
	now := time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)

	future := now.AddDate(0, 0, 20)
	past := now.Add(-time.Second)

	tests := []struct {
		name         string
		user         *models.User
		lessonNumber int
		want         AccessResult
	}{
		{"free непросроченный, бесплатный урок", freeUser(&future), 1, AccessGranted},
		{"free непросроченный, последний бесплатный", freeUser(&future), 30, AccessGranted},
		{"free непросроченный, первый премиальный", freeUser(&future), 31, AccessPaymentRequired},
		{"free непросроченный, последний премиальный", freeUser(&future), 120, AccessPaymentRequired},
		{"free просроченный, бесплатный урок", freeUser(&past), 1, AccessAccountExpired},
		{"free просроченный, премиальный урок", freeUser(&past), 50, AccessAccountExpired},
		{"premium, бесплатный урок", paidUser(models.StatusPremium), 15, AccessGranted},
		{"premium, премиальный урок", paidUser(models.StatusPremium), 120, AccessGranted},
		{"lifetime, премиальный урок", paidUser(models.StatusLifetime), 31, AccessGranted},
		{"nil пользователь", nil, 1, AccessNoUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.LessonAccess(tt.user, tt.lessonNumber, now))
		})
	}
}

// Проверка просрочки доминирует над проверкой оплаты: просроченный
// бесплатный аккаунт получает account_expired даже на премиальном уроке.
func TestLessonAccessExpiryDominatesPayment(t *testing.T) {
	p := testPolicy()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -5)

	for n := 1; n <= p.TotalLessons; n += 7 {
		assert.Equal(t, AccessAccountExpired, p.LessonAccess(freeUser(&past), n, now),
			"lesson %d", n)
	}
}

// near_expiry не блокирует уроки: блокирует только жёсткая просрочка.
func TestLessonAccessNearExpiryIsAdvisory(t *testing.T) {
	p := testPolicy()
	now := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	in2days := now.AddDate(0, 0, 2)

	u := freeUser(&in2days)
	assert.Equal(t, StatusNearExpiry, p.AccountStatus(u, now))
	assert.Equal(t, AccessGranted, p.LessonAccess(u, 15, now))
}

func TestDaysLeft(t *testing.T) {
	p := testPolicy()
	now := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)

	in7days := now.AddDate(0, 0, 7)
	past3days := now.AddDate(0, 0, -3)

	tests := []struct {
		name string
		user *models.User
		want int
	}{
		{"premium получает сентинел", paidUser(models.StatusPremium), UnlimitedDays},
		{"lifetime получает сентинел", paidUser(models.StatusLifetime), UnlimitedDays},
		{"free без даты получает сентинел", freeUser(nil), UnlimitedDays},
		{"free осталось 7 дней", freeUser(&in7days), 7},
		{"free просрочен на 3 дня — отрицательное значение", freeUser(&past3days), -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.DaysLeft(tt.user, now))
		})
	}
}

// DaysLeft монотонно не возрастает с течением времени при фиксированной
// дате окончания.
func TestDaysLeftMonotonic(t *testing.T) {
	p := testPolicy()
	expires := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	u := freeUser(&expires)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	prev := p.DaysLeft(u, now)
	for i := 0; i < 60; i++ {
		now = now.Add(13 * time.Hour)
		cur := p.DaysLeft(u, now)
		assert.LessOrEqual(t, cur, prev, "now=%s", now)
		prev = cur
	}
}

func TestIsPremiumLesson(t *testing.T) {
	p := testPolicy()

	assert.False(t, p.IsPremiumLesson(1))
	assert.False(t, p.IsPremiumLesson(30))
	assert.True(t, p.IsPremiumLesson(31))
	assert.True(t, p.IsPremiumLesson(120))
}

func TestShouldNudge(t *testing.T) {
	p := testPolicy()
	now := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)

	in2days := now.AddDate(0, 0, 2)
	in3days := now.AddDate(0, 0, 3)
	in4days := now.AddDate(0, 0, 4)
	past := now.Add(-time.Hour)

	assert.True(t, p.ShouldNudge(freeUser(&in2days), now))
	assert.True(t, p.ShouldNudge(freeUser(&in3days), now))
	assert.False(t, p.ShouldNudge(freeUser(&in4days), now))
	assert.False(t, p.ShouldNudge(freeUser(&past), now), "просроченный аккаунт не получает nudge")
	assert.False(t, p.ShouldNudge(paidUser(models.StatusPremium), now))
	assert.False(t, p.ShouldNudge(nil, now))
}

func TestTrialEnd(t *testing.T) {
	p := testPolicy()
	created := time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 1, 31, 10, 30, 0, 0, time.UTC), p.TrialEnd(created))
}

// Функции политики чистые: повторный вызов с теми же аргументами даёт
// тот же результат.
func TestEvaluatorIdempotent(t *testing.T) {
	p := testPolicy()
	now := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	expires := now.AddDate(0, 0, 10)
	u := freeUser(&expires)

	for i := 0; i < 3; i++ {
		assert.Equal(t, StatusNearExpiry, p.AccountStatus(u, now))
		assert.Equal(t, AccessPaymentRequired, p.LessonAccess(u, 31, now))
		assert.Equal(t, AccessGranted, p.LessonAccess(u, 15, now))
		assert.Equal(t, 10, p.DaysLeft(u, now))
	}
}

// Сценарий из продуктовых требований: free-аккаунт с окончанием
// 2024-01-30, текущий момент 2024-01-20.
func TestScenarioTenDaysLeft(t *testing.T) {
	p := testPolicy()
	now := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	expires := time.Date(2024, 1, 30, 0, 0, 0, 0, time.UTC)
	u := freeUser(&expires)

	assert.Equal(t, StatusNearExpiry, p.AccountStatus(u, now))
	assert.Equal(t, 10, p.DaysLeft(u, now))
	assert.Equal(t, AccessPaymentRequired, p.LessonAccess(u, 31, now))
	assert.Equal(t, AccessGranted, p.LessonAccess(u, 15, now))
}

// Обе проверки считают срок одним и тем же способом: вблизи границы
// статус и доступ не противоречат друг другу ни в какое время суток.
func TestStatusAndAccessAgreeNearBoundary(t *testing.T) {
	p := testPolicy()
	expires := time.Date(2024, 1, 30, 0, 0, 0, 0, time.UTC)
	u := freeUser(&expires)

	for hour := 0; hour < 48; hour++ {
		now := expires.Add(time.Duration(hour-24) * time.Hour)
		status := p.AccountStatus(u, now)
		access := p.LessonAccess(u, 1, now)
		if status == StatusExpired {
			assert.Equal(t, AccessAccountExpired, access, "now=%s", now)
		} else {
			assert.Equal(t, AccessGranted, access, "now=%s", now)
		}
	}
}
