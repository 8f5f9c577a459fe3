// Package ticketanswer реализует HTTP-обработчик ответа поддержки на обращение.
package ticketanswer

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

// Request — ответ администратора на обращение
type Request struct {
	Answer string `json:"answer" validate:"required,min=3"`
}

// Service описывает интерфейс ответа на обращение.
type Service interface {
	Answer(ctx context.Context, id, answer string) (int, error)
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
	const op = "handlers.admin.ticketanswer"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")

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

	updated, err := h.service.Answer(r.Context(), id, req.Answer)
	if err != nil {
		log.Error("failed to answer ticket", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not answer ticket"))
		return
	}
	if updated == 0 {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("ticket not found"))
		return
	}

	log.Info("ticket answered", slog.String("ticket_id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"updated": updated,
	}))
}
