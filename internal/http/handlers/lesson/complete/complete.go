// Package complete реализует HTTP-обработчик завершения урока.
//
// Handler вызывает запись прогресса: начисление XP, обновление серии
// и текущего урока. Повторное завершение урока — no-op.
package complete

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/talkwise/talkwise-backend/internal/http/middlewarectx"
	"github.com/talkwise/talkwise-backend/internal/http/response"
	"github.com/talkwise/talkwise-backend/internal/lib/sl"
	"github.com/talkwise/talkwise-backend/internal/services/progress"
)

// Service описывает интерфейс записи прогресса.
type Service interface {
	CompleteLesson(ctx context.Context, userUID string, lessonNumber int) (*progress.Result, error)
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
// @Summary Завершение урока
// @Description Записывает прохождение урока и возвращает новый прогресс.
// @Tags Lessons
// @Produce  json
// @Param number path int true "Номер урока"
// @Success 200 {object} map[string]any "Обновлённый прогресс"
// @Failure 403 {object} response.ErrorResponse "Доступ к уроку закрыт"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /lessons/{number}/complete [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.lesson.complete"

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

	result, err := h.service.CompleteLesson(r.Context(), userUID, number)
	if err != nil {
		if errors.Is(err, progress.ErrAccessDenied) {
			log.Error("lesson completion denied", slog.Int("number", number))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("lesson access denied"))
			return
		}
		log.Error("failed to complete lesson", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not complete lesson"))
		return
	}

	log.Info("lesson completed",
		slog.Int("number", number), slog.Bool("first", result.FirstCompletion))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"progress": result,
	}))
}
