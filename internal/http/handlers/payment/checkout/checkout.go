// Package checkout реализует HTTP-обработчик формирования ссылки на оплату.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/talkwise/talkwise-backend/internal/http/middlewarectx"
	"github.com/talkwise/talkwise-backend/internal/http/response"
	"github.com/talkwise/talkwise-backend/internal/lib/sl"
	"github.com/talkwise/talkwise-backend/internal/services/payment"
	"github.com/talkwise/talkwise-backend/internal/services/voucher"
	"github.com/talkwise/talkwise-backend/internal/storage/repository"
)

// Request — параметры покупки
type Request struct {
	Product     string `json:"product" validate:"required,oneof=premium lifetime"`
	VoucherCode string `json:"voucher_code" validate:"omitempty,alphanum"`
}

// Service описывает интерфейс формирования ссылки на оплату.
type Service interface {
	Checkout(ctx context.Context, product, userUID, voucherCode string) (*payment.CheckoutInfo, error)
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
// @Summary Ссылка на оплату
// @Description Возвращает ссылку на страницу оплаты с учётом промокода.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Param request body Request true "Продукт и промокод"
// @Success 200 {object} map[string]any "Ссылка и цена"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос либо промокод"
// @Security BearerAuth
// @Router /payments/checkout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.checkout"

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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	info, err := h.service.Checkout(r.Context(), req.Product, userUID, req.VoucherCode)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrVoucherNotFound):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("voucher not found"))
		case errors.Is(err, voucher.ErrVoucherExpired):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("voucher expired"))
		case errors.Is(err, repository.ErrVoucherExhausted):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("voucher exhausted"))
		case errors.Is(err, payment.ErrUnknownProduct):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown product"))
		default:
			log.Error("failed to build checkout", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not build checkout link"))
		}
		return
	}

	log.Info("checkout link built", slog.String("product", req.Product))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"checkout": info,
	}))
}
