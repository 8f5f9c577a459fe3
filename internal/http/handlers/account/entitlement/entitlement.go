// Package entitlement реализует HTTP-обработчик сводки аккаунта:
// статус подписки, оставшиеся дни и флаг показа предложения об апгрейде.
package entitlement

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/talkwise/talkwise-backend/internal/http/middlewarectx"
	"github.com/talkwise/talkwise-backend/internal/http/response"
	"github.com/talkwise/talkwise-backend/internal/lib/sl"
	"github.com/talkwise/talkwise-backend/internal/services/lesson"
)

// Service описывает интерфейс сводки энтайтлментов.
type Service interface {
	Entitlement(ctx context.Context, userUID string) (*lesson.Summary, error)
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
// @Summary Сводка аккаунта
// @Description Возвращает статус аккаунта, оставшиеся дни и флаг предложения об апгрейде.
// @Tags Account
// @Produce  json
// @Success 200 {object} map[string]any "Сводка аккаунта"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /me/entitlement [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.entitlement"

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

	summary, err := h.service.Entitlement(r.Context(), userUID)
	if err != nil {
		log.Error("failed to build entitlement summary", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load account summary"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"account_status": summary.AccountStatus.String(),
		"days_left":      summary.DaysLeft,
		"should_nudge":   summary.ShouldNudge,
	}))
}
