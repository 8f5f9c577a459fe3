// Package read реализует HTTP-обработчик выдачи урока.
//
// Handler извлекает номер урока из URL, прогоняет запрос через гейт
// доступа и возвращает содержимое урока только при разрешении.
// Любой неопознанный исход гейта трактуется как отказ.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/talkwise/talkwise-backend/internal/entitlement"
	"github.com/talkwise/talkwise-backend/internal/http/middlewarectx"
	"github.com/talkwise/talkwise-backend/internal/http/response"
	"github.com/talkwise/talkwise-backend/internal/lib/sl"
	"github.com/talkwise/talkwise-backend/internal/services/lesson"
)

// Service описывает интерфейс гейта доступа к уроку.
type Service interface {
	Read(ctx context.Context, userUID string, lessonNumber int) (*lesson.Gate, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получение урока
// @Description Возвращает содержимое урока, если доступ разрешён гейтом.
// @Tags Lessons
// @Produce  json
// @Param number path int true "Номер урока"
// @Success 200 {object} map[string]any "Содержимое урока"
// @Failure 402 {object} response.ErrorResponse "Нужна подписка"
// @Failure 403 {object} response.ErrorResponse "Пробный период истёк"
// @Failure 404 {object} response.ErrorResponse "Урок не найден"
// @Security BearerAuth
// @Router /lessons/{number} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.lesson.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		log.Error("failed to decode lesson number from url", sl.Err(err))
		render.JSON(w, r, response.Error("failed to decode lesson number from url"))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("user identification missing"))
		return
	}

	gate, err := h.service.Read(r.Context(), userUID, number)
	if err != nil && errors.Is(err, lesson.ErrLessonNotFound) {
		log.Error("lesson not found", slog.Int("number", number))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("lesson not found"))
		return
	}
	if gate == nil {
		// Сбой хранилища, а не решение гейта
		log.Error("failed to load lesson", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load lesson"))
		return
	}

	switch gate.Result {
	case entitlement.AccessGranted:
		log.Info("lesson access granted", slog.Int("number", number))
		render.JSON(w, r, response.StatusOKWithData(map[string]any{
			"lesson":    gate.Lesson,
			"days_left": gate.DaysLeft,
		}))
	case entitlement.AccessPaymentRequired:
		log.Info("lesson requires subscription", slog.Int("number", number))
		w.WriteHeader(http.StatusPaymentRequired)
		render.JSON(w, r, response.Error("subscription required for this lesson"))
	case entitlement.AccessAccountExpired:
		log.Info("trial expired, access denied", slog.String("user_uid", userUID))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("trial period expired"))
	default:
		// Сюда попадают AccessNoUser и ошибки загрузки пользователя
		if err != nil {
			log.Error("failed to evaluate lesson access", sl.Err(err))
		}
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("access denied"))
	}
}
