package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"
)

// Сколько сообщений очереди обрабатывается параллельно.
const consumerConcurrency = 10

// Handler обрабатывает тело одного сообщения очереди.
type Handler func(body []byte) error

// Consume подписывается на очередь и обрабатывает сообщения до отмены
// контекста. Обработка ограничена семафором, неуспешные сообщения
// возвращаются в очередь через Nack с requeue.
func Consume(ctx context.Context, ch *amqp.Channel, log *slog.Logger, queueName string, handler Handler) error {
	const op = "rabbitmq.Consume"
	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(slog.String("op", op), slog.String("queue", queueName))

	sem := make(chan struct{}, consumerConcurrency)
	go func() {
		for {
			select {
			case d, ok := <-delivery:
				if !ok {
					return
				}
				sem <- struct{}{}
				go func(d amqp.Delivery) {
					defer func() { <-sem }()
					handleDelivery(d, log, handler)
				}(d)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

func handleDelivery(d amqp.Delivery, log *slog.Logger, handler Handler) {
	if err := handler(d.Body); err != nil {
		if nackErr := d.Nack(false, true); nackErr != nil {
			log.Error("failed to nack message", slog.String("error", nackErr.Error()))
		}
		return
	}
	if ackErr := d.Ack(false); ackErr != nil {
		log.Error("failed to ack message", slog.String("error", ackErr.Error()))
	}
}
