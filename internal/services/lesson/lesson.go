// Package lesson содержит бизнес-логику каталога уроков и гейта доступа.
//
// Любой путь, отдающий содержимое урока, проходит через политику
// энтайтлментов. Неизвестный исход политики трактуется как отказ.
package lesson

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/talkwise/talkwise-backend/internal/entitlement"
	"github.com/talkwise/talkwise-backend/internal/models"
)

// ErrLessonNotFound возвращается для номера вне каталога.
var ErrLessonNotFound = errors.New("lesson not found")

// Repository определяет методы хранилища, нужные сервису уроков.
type Repository interface {
	// ListLessons возвращает весь каталог в порядке номеров.
	ListLessons(ctx context.Context) ([]*models.Lesson, error)
	// GetLesson возвращает урок по номеру.
	GetLesson(ctx context.Context, lessonNumber int) (*models.Lesson, error)
	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// ListCompletedNumbers возвращает номера пройденных уроков.
	ListCompletedNumbers(ctx context.Context, userUID string) ([]int, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Gate — решение гейта по конкретному уроку. Содержимое урока
// присутствует только при разрешённом доступе.
type Gate struct {
	Result   entitlement.AccessResult
	Lesson   *models.Lesson
	DaysLeft int
}

// Summary — сводка энтайтлментов пользователя для личного кабинета.
type Summary struct {
	AccountStatus entitlement.AccountStatus
	DaysLeft      int
	ShouldNudge   bool
}

// Service реализует каталог и гейт доступа.
type Service struct {
	repo   Repository
	cache  Cache
	policy entitlement.Policy
	log    *slog.Logger
	now    func() time.Time
}

// New создает новый экземпляр Service. Часы инжектируются для тестов.
func New(repo Repository, cache Cache, policy entitlement.Policy, log *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		policy: policy,
		log:    log,
		now:    time.Now,
	}
}

// WithClock подменяет источник времени. Используется в тестах.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

const catalogCacheKey = "lessons:catalog"

// catalog возвращает каталог уроков, используя кеш или репозиторий.
func (s *Service) catalog(ctx context.Context) ([]*models.Lesson, error) {
	var cached []*models.Lesson
	found, err := s.cache.Get(catalogCacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read catalog cache", slog.Any("err", err))
	}
	if found {
		return cached, nil
	}

	lessons, err := s.repo.ListLessons(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(catalogCacheKey, lessons, time.Hour); err != nil {
		s.log.Warn("failed to cache catalog", slog.Any("err", err))
	}
	return lessons, nil
}

// Catalog возвращает каталог, размеченный для конкретного пользователя:
// премиальность по политике и факт прохождения.
func (s *Service) Catalog(ctx context.Context, userUID string) ([]models.CatalogItem, error) {
	lessons, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}

	completed, err := s.repo.ListCompletedNumbers(ctx, userUID)
	if err != nil {
		return nil, err
	}
	completedSet := make(map[int]bool, len(completed))
	for _, n := range completed {
		completedSet[n] = true
	}

	items := make([]models.CatalogItem, 0, len(lessons))
	for _, l := range lessons {
		items = append(items, models.CatalogItem{
			Lesson:    *l,
			IsPremium: s.policy.IsPremiumLesson(l.LessonNumber),
			Completed: completedSet[l.LessonNumber],
		})
	}
	return items, nil
}

// Read пропускает запрос урока через гейт. Содержимое возвращается
// только при AccessGranted, все остальные исходы — отказ.
func (s *Service) Read(ctx context.Context, userUID string, lessonNumber int) (*Gate, error) {
	now := s.now()

	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		// Пользователь не загружен — гейт закрыт, а не открыт.
		return &Gate{Result: entitlement.AccessNoUser}, fmt.Errorf("load user: %w", err)
	}

	result := s.policy.LessonAccess(user, lessonNumber, now)
	gate := &Gate{
		Result:   result,
		DaysLeft: s.policy.DaysLeft(user, now),
	}
	if result != entitlement.AccessGranted {
		return gate, nil
	}

	lesson, err := s.repo.GetLesson(ctx, lessonNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("load lesson: %w", err)
	}
	gate.Lesson = lesson
	return gate, nil
}

// Entitlement возвращает сводку по аккаунту пользователя.
func (s *Service) Entitlement(ctx context.Context, userUID string) (*Summary, error) {
	now := s.now()

	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, err
	}
	return &Summary{
		AccountStatus: s.policy.AccountStatus(user, now),
		DaysLeft:      s.policy.DaysLeft(user, now),
		ShouldNudge:   s.policy.ShouldNudge(user, now),
	}, nil
}

// InvalidateCatalog сбрасывает кеш каталога. Вызывается после правок
// каталога администратором.
func (s *Service) InvalidateCatalog() {
	if err := s.cache.Invalidate(catalogCacheKey); err != nil {
		s.log.Warn("failed to invalidate catalog cache", slog.Any("err", err))
	}
}
