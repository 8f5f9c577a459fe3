// Package ticketlist реализует HTTP-обработчик списка всех обращений
// для админ-панели.
package ticketlist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/talkwise/talkwise-backend/internal/http/response"
	"github.com/talkwise/talkwise-backend/internal/lib/sl"
	"github.com/talkwise/talkwise-backend/internal/models"
)

// Service описывает интерфейс списка всех обращений.
type Service interface {
	ListAll(ctx context.Context, limit, offset int) ([]*models.Ticket, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.ticketlist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	tickets, err := h.service.ListAll(r.Context(), limit, offset)
	if err != nil {
		log.Error("failed to list tickets", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list tickets"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"tickets": tickets,
	}))
}
