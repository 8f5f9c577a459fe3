// Package userupdate реализует HTTP-обработчик правки пользователя из
// админ-панели: смена роли и ручная выдача подписки.
package userupdate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/talkwise/talkwise-backend/internal/http/response"
	"github.com/talkwise/talkwise-backend/internal/lib/sl"
)

// Request — изменяемые поля пользователя. Пустое поле не меняется.
type Request struct {
	Role               string `json:"role" validate:"omitempty,oneof=user admin"`
	SubscriptionStatus string `json:"subscription_status" validate:"omitempty,oneof=premium lifetime"`
}

// Service описывает интерфейс правки пользователя.
type Service interface {
	SetRole(ctx context.Context, userUID, role string) (int, error)
	GrantSubscription(ctx context.Context, userUID, status string) (int, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Правка пользователя
// @Description Меняет роль либо выдаёт подписку вручную.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param uid path string true "UID пользователя"
// @Param request body Request true "Изменяемые поля"
// @Success 200 {object} map[string]any "Количество обновлённых записей"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Security BearerAuth
// @Router /admin/users/{uid} [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userupdate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uid := chi.URLParam(r, "uid")

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	if req.Role == "" && req.SubscriptionStatus == "" {
		render.JSON(w, r, response.Error("nothing to update"))
		return
	}

	var updated int
	if req.Role != "" {
		n, err := h.service.SetRole(r.Context(), uid, req.Role)
		if err != nil {
			log.Error("failed to update role", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not update user"))
			return
		}
		updated += n
	}
	if req.SubscriptionStatus != "" {
		n, err := h.service.GrantSubscription(r.Context(), uid, req.SubscriptionStatus)
		if err != nil {
			log.Error("failed to grant subscription", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not update user"))
			return
		}
		updated += n
	}

	if updated == 0 {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	}

	log.Info("user updated", slog.String("user_uid", uid))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"updated": updated,
	}))
}
