package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"homestay/internal/app/handlers"
	"homestay/internal/app/middleware"
	appoutbox "homestay/internal/app/outbox"
	"homestay/internal/app/policies"
	authsvc "homestay/internal/app/services/auth"
	"homestay/internal/app/uow"
	domainauth "homestay/internal/domain/auth"
	domainreviews "homestay/internal/domain/reviews"
	"homestay/internal/infra/broker/kafka"
	"homestay/internal/infra/config"
	mongostore "homestay/internal/infra/db/mongo"
	"homestay/internal/infra/export"
	ginserver "homestay/internal/infra/http/gin"
	"homestay/internal/infra/inbox"
	"homestay/internal/infra/notify"
	"homestay/internal/infra/obs"
	infraoutbox "homestay/internal/infra/outbox"
	"homestay/internal/infra/security"
	"homestay/internal/infra/storage/memory"
	redisstore "homestay/internal/infra/storage/redis"
	"homestay/internal/infra/storage/s3"
	"homestay/internal/infra/validation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		obs.NewLogger(os.Getenv("APP_ENV")).Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("homestay stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("homestay stopped")
}

// storage bundles the persistence adapters chosen by STORE_DRIVER.
type storage struct {
	factory     uow.UoWFactory
	outbox      appoutbox.Outbox
	source      infraoutbox.Source
	idempotency middleware.IdempotencyStore
	inbox       inbox.Inbox
	checks      map[string]obs.Check
	closers     []func(context.Context) error
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for i := len(store.closers) - 1; i >= 0; i-- {
			if err := store.closers[i](closeCtx); err != nil {
				logger.Warn("shutdown step failed", "error", err)
			}
		}
	}()

	notifier, err := openNotifier(cfg, logger)
	if err != nil {
		return err
	}
	if c, ok := notifier.(io.Closer); ok {
		store.closers = append(store.closers, func(context.Context) error { return c.Close() })
	}

	photos, err := openPhotoStorage(cfg, logger, store.checks)
	if err != nil {
		return err
	}

	metrics := obs.NewMetrics()
	buses := handlers.Build(handlers.Deps{
		UoWFactory:  store.factory,
		Outbox:      store.outbox,
		Encoder:     appoutbox.JSONEventEncoder{},
		Idempotency: store.idempotency,
		Validator:   validation.New(),
		Notifier:    notifier,
		Photos:      photos,
		Exporter:    export.XLSXExporter{},
		Metrics:     metrics,
		Currency:    cfg.DefaultCurrency,
		Logger:      logger,
	})

	sessions, err := openSessions(ctx, cfg, logger, store)
	if err != nil {
		return err
	}
	tokens, err := security.NewJWTIssuer(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		return err
	}
	auth := &authsvc.Service{
		UoWFactory: store.factory,
		Sessions:   sessions,
		Passwords:  security.BcryptHasher{Cost: bcrypt.DefaultCost},
		Tokens:     tokens,
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}
	if cfg.AdminEmail != "" {
		if err := auth.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
	}

	workers, err := startRelay(ctx, cfg, logger, store, buses)
	if err != nil {
		return err
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, metrics, obs.HealthHandlers{Checks: store.checks}, ginserver.Handlers{
		Auth:           ginserver.AuthHandler{Service: auth, Logger: logger},
		Property:       ginserver.PropertyHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		Review:         ginserver.ReviewHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		Booking:        ginserver.BookingHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		Host:           ginserver.HostHandler{Queries: buses.Queries, Logger: logger},
		Admin:          ginserver.AdminHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		AuthMiddleware: ginserver.AuthMiddleware{Service: auth, Logger: logger}.Handle,
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "store", cfg.StoreDriver)
	serveErr := server.ListenAndServe()
	if errors.Is(serveErr, http.ErrServerClosed) {
		serveErr = nil
	}
	cancel()
	return errors.Join(serveErr, workers())
}

func openStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (*storage, error) {
	if cfg.StoreDriver != config.StoreMongo {
		mem := memory.NewStore()
		logger.Info("using in-memory storage")
		return &storage{
			factory:     mem.Factory(),
			outbox:      mem.Outbox(),
			source:      mem.Outbox(),
			idempotency: memory.NewIdempotencyStore(cfg.IdempotencyTTL),
			inbox:       inbox.NewMemory(),
			checks:      map[string]obs.Check{},
		}, nil
	}

	client, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	s := &storage{
		checks:  map[string]obs.Check{"mongo": client.Ping},
		closers: []func(context.Context) error{client.Close},
	}
	if s.factory, err = mongostore.NewFactory(ctx, client.DB); err != nil {
		return nil, err
	}
	box, err := infraoutbox.NewStore(ctx, client.DB)
	if err != nil {
		return nil, err
	}
	s.outbox, s.source = box, box
	if s.idempotency, err = mongostore.NewIdempotencyStore(ctx, client.DB, cfg.IdempotencyTTL); err != nil {
		return nil, err
	}
	if s.inbox, err = inbox.NewStore(ctx, client.DB, cfg.KafkaConsumerGroup); err != nil {
		return nil, err
	}
	logger.Info("using mongo storage", "database", cfg.MongoDB)
	return s, nil
}

func openSessions(ctx context.Context, cfg config.Config, logger *slog.Logger, store *storage) (domainauth.SessionStore, error) {
	if cfg.RedisAddr == "" {
		return memory.NewSessionStore(), nil
	}
	client := redisstore.NewClient(redisstore.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err := redisstore.Ping(ctx, client); err != nil {
		_ = client.Close()
		return nil, err
	}
	store.checks["redis"] = func(ctx context.Context) error { return redisstore.Ping(ctx, client) }
	store.closers = append(store.closers, func(context.Context) error { return client.Close() })
	logger.Info("sessions stored in redis", "addr", cfg.RedisAddr)
	return redisstore.NewSessionStore(client, "homestay"), nil
}

func openNotifier(cfg config.Config, logger *slog.Logger) (policies.Notifier, error) {
	if cfg.AMQPURL == "" {
		return notify.LogNotifier{Logger: logger}, nil
	}
	n, err := notify.DialAMQP(cfg.AMQPURL, cfg.AMQPQueue)
	if err != nil {
		return nil, fmt.Errorf("amqp: %w", err)
	}
	logger.Info("notifications published to rabbitmq", "queue", cfg.AMQPQueue)
	return n, nil
}

func openPhotoStorage(cfg config.Config, logger *slog.Logger, checks map[string]obs.Check) (policies.PhotoStorage, error) {
	if cfg.S3Endpoint == "" {
		return s3.Disabled{}, nil
	}
	photos, err := s3.NewPhotoStore(s3.Config{
		Endpoint:       cfg.S3Endpoint,
		PublicEndpoint: cfg.S3PublicEndpoint,
		AccessKey:      cfg.S3AccessKey,
		SecretKey:      cfg.S3SecretKey,
		Bucket:         cfg.S3Bucket,
		UseSSL:         cfg.S3UseSSL,
	}, logger)
	if err != nil {
		return nil, err
	}
	checks["s3"] = photos.Ping
	return photos, nil
}

// startRelay launches the outbox relay and the rating reconciler when Kafka is
// configured. The returned func waits for both to stop.
func startRelay(ctx context.Context, cfg config.Config, logger *slog.Logger, store *storage, buses handlers.Buses) (func() error, error) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("kafka not configured, events stay in the outbox")
		return func() error { return nil }, nil
	}
	producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	reconciler := &kafka.RatingReconciler{Recompute: buses.Recompute, Inbox: store.inbox, Logger: logger}
	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaConsumerGroup, nil, reconciler, logger)
	if err != nil {
		_ = producer.Close()
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}

	worker := &infraoutbox.Worker{
		Source:      store.source,
		Producer:    producer,
		Logger:      logger,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		EventSource: "homestay-api",
		Backoff:     cfg.RetryBackoff,
	}
	errs := make(chan error, 2)
	go func() { errs <- worker.Run(ctx) }()
	go func() {
		errs <- consumer.Run(ctx, []string{infraoutbox.TopicFor(cfg.KafkaTopicPrefix, domainreviews.EventSubmitted)})
	}()

	return func() error {
		var joined error
		for range 2 {
			if err := <-errs; err != nil && !errors.Is(err, context.Canceled) {
				joined = errors.Join(joined, err)
			}
		}
		return errors.Join(joined, consumer.Close(), producer.Close())
	}, nil
}
