// Package voucherexport реализует HTTP-обработчик выгрузки промокодов в CSV.
package voucherexport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/talkwise/talkwise-backend/internal/http/response"
	"github.com/talkwise/talkwise-backend/internal/lib/sl"
)

// Service описывает интерфейс выгрузки промокодов.
type Service interface {
	ExportCSV(ctx context.Context) ([]byte, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP отдаёт файл vouchers.csv со всеми промокодами.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.voucherexport"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	data, err := h.service.ExportCSV(r.Context())
	if err != nil {
		log.Error("failed to export vouchers", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not export vouchers"))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="vouchers.csv"`)
	if _, err := w.Write(data); err != nil {
		log.Error("failed to write csv response", sl.Err(err))
	}
}
