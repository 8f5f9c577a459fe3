// Package talkwise собирает основное HTTP-приложение: хранилище,
// миграции, кеш, очередь уведомлений и все сервисы.
package talkwise

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/talkwise/talkwise-backend/internal/cache"
	"github.com/talkwise/talkwise-backend/internal/config"
	"github.com/talkwise/talkwise-backend/internal/entitlement"
	"github.com/talkwise/talkwise-backend/internal/lib/jwt"
	"github.com/talkwise/talkwise-backend/internal/migrations"
	"github.com/talkwise/talkwise-backend/internal/paymentprovider"
	"github.com/talkwise/talkwise-backend/internal/rabbitmq"
	adminservice "github.com/talkwise/talkwise-backend/internal/services/admin"
	authservice "github.com/talkwise/talkwise-backend/internal/services/auth"
	lessonservice "github.com/talkwise/talkwise-backend/internal/services/lesson"
	notificationservice "github.com/talkwise/talkwise-backend/internal/services/notification"
	paymentservice "github.com/talkwise/talkwise-backend/internal/services/payment"
	progressservice "github.com/talkwise/talkwise-backend/internal/services/progress"
	ticketservice "github.com/talkwise/talkwise-backend/internal/services/ticket"
	voucherservice "github.com/talkwise/talkwise-backend/internal/services/voucher"
	"github.com/talkwise/talkwise-backend/internal/storage/repository"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// queuePublisher публикует события оплаты в обменник уведомлений.
type queuePublisher struct {
	ch *amqp.Channel
}

func (p *queuePublisher) Publish(routingKey string, message any) error {
	return rabbitmq.PublishMessage(p.ch, rabbitmq.NotificationsExchange, routingKey, message)
}

func policyFromConfig(cfg *config.Config) entitlement.Policy {
	return entitlement.Policy{
		FreeLessonLimit: cfg.Entitlement.FreeLessonLimit,
		TotalLessons:    cfg.Entitlement.TotalLessons,
		TrialDays:       cfg.Entitlement.TrialDays,
		NearExpiryDays:  cfg.Entitlement.NearExpiryDays,
		NudgeDays:       cfg.Entitlement.NudgeDays,
	}
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		if cerr := conn.Close(); cerr != nil {
			logger.Error("failed to close connection", slog.Any("err", cerr))
		}
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	policy := policyFromConfig(cfg)
	jwtMaker := jwt.NewJWTMaker(cfg.JWTToken.JWTSecretKey, cfg.JWTToken.TokenTTL)
	providerClient := paymentprovider.NewClient(
		cfg.PaymentProvider.CheckoutURL,
		cfg.PaymentProvider.APIURL,
		cfg.PaymentProvider.APIToken,
	)

	authService := authservice.New(db, jwtMaker, policy)
	lessonService := lessonservice.New(db, cacheRedis, policy, logger)
	progressService := progressservice.New(db, policy, logger)
	voucherService := voucherservice.New(db, logger)
	paymentService := paymentservice.New(db, providerClient, voucherService,
		&queuePublisher{ch: ch}, voucherservice.DiscountedCents, cfg.PaymentProvider, logger)
	ticketService := ticketservice.New(db, logger)
	notificationService := notificationservice.New(db, logger)
	adminService := adminservice.New(db, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		Auth:         authService,
		Lesson:       lessonService,
		Progress:     progressService,
		Voucher:      voucherService,
		Payment:      paymentService,
		Ticket:       ticketService,
		Notification: notificationService,
		Admin:        adminService,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		conn:   conn,
		ch:     ch,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if cerr := a.ch.Close(); cerr != nil {
			a.logger.Error("failed to close channel", slog.Any("err", cerr))
		}
		if cerr := a.conn.Close(); cerr != nil {
			a.logger.Error("failed to close connection", slog.Any("err", cerr))
		}
		if cerr := a.db.DB.Close(); cerr != nil {
			a.logger.Error("failed to close storage", slog.Any("err", cerr))
		}
		return err
	}
}
