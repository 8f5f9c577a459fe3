// Package paymentwebhook реализует HTTP-обработчик вебхука платёжного провайдера.
//
// Handler проверяет подпись HMAC-SHA256 сырого тела запроса, разбирает
// событие продажи и передаёт его бизнес-логике. Повторная доставка
// события с тем же sale_id отвечает 200 без побочных эффектов.
package paymentwebhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/talkwise/talkwise-backend/internal/http/response"
	"github.com/talkwise/talkwise-backend/internal/lib/sl"
	"github.com/talkwise/talkwise-backend/internal/services/payment"
)

// SignatureHeader — заголовок с подписью тела вебхука.
const SignatureHeader = "X-Signature"

// Service описывает интерфейс обработки события продажи.
type Service interface {
	VerifySignature(body []byte, signature string) bool
	ProcessSale(ctx context.Context, event payment.SaleEvent) error
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
// @Summary Вебхук платёжного провайдера
// @Description Принимает событие продажи, проверяет подпись и апгрейдит подписку.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Success 200 {object} map[string]any "Событие обработано"
// @Failure 401 {object} response.ErrorResponse "Неверная подпись"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /payments/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.webhook"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to read request body"))
		return
	}

	if !h.service.VerifySignature(body, r.Header.Get(SignatureHeader)) {
		log.Error("invalid webhook signature")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid signature"))
		return
	}

	var event payment.SaleEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Error("failed to decode webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(event); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if err := h.service.ProcessSale(r.Context(), event); err != nil {
		log.Error("failed to process sale", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not process sale"))
		return
	}

	log.Info("sale event processed", slog.String("sale_id", event.SaleID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "sale processed",
	}))
}
