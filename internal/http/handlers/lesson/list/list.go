// Package list реализует HTTP-обработчик каталога уроков.
//
// Handler возвращает все уроки с пометками IsPremium и Completed для
// текущего пользователя. Содержимое уроков в каталог не входит.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/talkwise/talkwise-backend/internal/http/middlewarectx"
	"github.com/talkwise/talkwise-backend/internal/http/response"
	"github.com/talkwise/talkwise-backend/internal/lib/sl"
	"github.com/talkwise/talkwise-backend/internal/models"
)

// Service описывает интерфейс бизнес-логики каталога.
type Service interface {
	Catalog(ctx context.Context, userUID string) ([]models.CatalogItem, error)
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
// @Summary Каталог уроков
// @Description Возвращает все уроки с пометками премиальности и завершённости.
// @Tags Lessons
// @Produce  json
// @Success 200 {object} map[string]any "Список уроков"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /lessons [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.lesson.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("user identification missing"))
		return
	}

	items, err := h.service.Catalog(r.Context(), userUID)
	if err != nil {
		log.Error("failed to load catalog", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load lessons"))
		return
	}

	log.Info("catalog loaded", slog.Int("count", len(items)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"lessons": items,
	}))
}
