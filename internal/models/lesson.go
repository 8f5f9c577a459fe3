package models

import "time"

// Lesson описывает урок каталога. Номера уроков плотные, от 1 до
// общего числа уроков. Флаг IsFree помечает запись каталога, но
// решение о доступе всегда принимает политика энтайтлментов.
type Lesson struct {
	LessonNumber int    // Номер урока, уникальный
	Title        string // Название урока
	Description  string
	Category     string // Тематика: small_talk, storytelling и т.д.
	XPReward     int    // Опыт за прохождение
	IsFree       bool
}

// CatalogItem — урок каталога вместе с вычисленными для конкретного
// пользователя метками: премиальность и факт прохождения.
type CatalogItem struct {
	Lesson
	IsPremium bool `json:"is_premium"`
	Completed bool `json:"completed"`
}

// Completion фиксирует факт прохождения урока пользователем.
// Пара (user, lesson) уникальна, повторное прохождение не дублируется.
type Completion struct {
	UserUID      string
	LessonNumber int
	CompletedAt  time.Time
}
