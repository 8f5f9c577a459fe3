// Package broadcast реализует HTTP-обработчик рассылки уведомления
// всем пользователям.
package broadcast

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/talkwise/talkwise-backend/internal/http/response"
	"github.com/talkwise/talkwise-backend/internal/lib/sl"
)

// Request — заголовок и текст рассылки
type Request struct {
	Title string `json:"title" validate:"required,min=3,max=200"`
	Body  string `json:"body" validate:"required,min=3"`
}

// Service описывает интерфейс создания рассылки.
type Service interface {
	Broadcast(ctx context.Context, title, body string) (string, error)
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

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.broadcast"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	id, err := h.service.Broadcast(r.Context(), req.Title, req.Body)
	if err != nil {
		log.Error("failed to create broadcast", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create broadcast"))
		return
	}

	log.Info("broadcast created", slog.String("notification_id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"notification_id": id,
	}))
}
