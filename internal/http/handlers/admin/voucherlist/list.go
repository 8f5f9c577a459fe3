// Package voucherlist реализует HTTP-обработчик списка промокодов.
package voucherlist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/talkwise/talkwise-backend/internal/http/response"
	"github.com/talkwise/talkwise-backend/internal/lib/sl"
	"github.com/talkwise/talkwise-backend/internal/models"
)

// Service описывает интерфейс списка промокодов.
type Service interface {
	List(ctx context.Context) ([]*models.Voucher, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.voucherlist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	vouchers, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list vouchers", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list vouchers"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"vouchers": vouchers,
	}))
}
