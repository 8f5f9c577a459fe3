package models

import "time"

// Виды уведомлений.
const (
	KindTrialExpiry  = "trial_expiry"
	KindAnnouncement = "announcement"
	KindPayment      = "payment"
)

// Notification — уведомление в личном кабинете. UserUID == nil
// означает рассылку всем пользователям.
type Notification struct {
	ID        string
	UserUID   *string
	Title     string
	Body      string
	Kind      string
	Read      bool
	CreatedAt time.Time
}

// TrialInfo — сообщение для очереди напоминаний об окончании
// пробного периода, сериализуется в JSON при публикации.
type TrialInfo struct {
	Email    string    `json:"email"`
	Username string    `json:"username"`
	EndDate  time.Time `json:"end_date"`
	DaysLeft int       `json:"days_left"`
}
