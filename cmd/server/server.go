package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/shanmuk27/smart-dustbin/internal/api"
	"github.com/shanmuk27/smart-dustbin/internal/coach"
	"github.com/shanmuk27/smart-dustbin/internal/config"
	"github.com/shanmuk27/smart-dustbin/internal/db"
	"github.com/shanmuk27/smart-dustbin/internal/identity"
	"github.com/shanmuk27/smart-dustbin/internal/ingest"
	"github.com/shanmuk27/smart-dustbin/internal/mq"
	"github.com/shanmuk27/smart-dustbin/internal/repository"
	"github.com/shanmuk27/smart-dustbin/internal/serialport"
	"github.com/shanmuk27/smart-dustbin/internal/status"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// registerHTTPServer starts the REST API with the app lifecycle.
func registerHTTPServer(lc fx.Lifecycle, cfg *config.Config, a *api.API, logger *zap.Logger) {
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: a.Routes(),
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping http server")
			return server.Shutdown(ctx)
		},
	})
}

// registerIngestLoop runs the serial ingestion loop for the app's lifetime.
func registerIngestLoop(lc fx.Lifecycle, reader *ingest.Reader, logger *zap.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			go func() {
				defer close(done)
				reader.Run(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				logger.Info("ingestion loop stopped gracefully")
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}

// registerQueueIntake starts the broker-based classification intake when a
// broker is configured; without one the serial loop is the only source.
func registerQueueIntake(
	lc fx.Lifecycle,
	conn *mq.Connection,
	cfg *config.Config,
	attributor *ingest.Attributor,
	logger *zap.Logger,
) error {
	if conn == nil {
		logger.Info("no broker configured, skipping queue intake")
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())

	consumer, err := mq.NewConsumer(mq.ConsumerConfig{
		Connection:       conn,
		Queue:            cfg.RabbitMQ.IngestQueue,
		DLQQueue:         cfg.RabbitMQ.DLQQueue,
		Exchange:         cfg.RabbitMQ.IngestExchange,
		RoutingKey:       cfg.RabbitMQ.IngestRoutingKey,
		PrefetchCount:    cfg.RabbitMQ.PrefetchCount,
		Logger:           logger,
		MessageProcessor: attributor.ProcessQueued,
	})
	if err != nil {
		cancel()
		return err
	}

	lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			logger.Info("starting classification intake",
				zap.String("queue", cfg.RabbitMQ.IngestQueue),
				zap.Int("prefetch", cfg.RabbitMQ.PrefetchCount))
			return consumer.Start(ctx)
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			if err := consumer.Close(); err != nil {
				logger.Error("failed to close consumer", zap.Error(err))
				return err
			}
			return nil
		},
	})

	return nil
}

// ProvideDBPool creates the shared database pool
func ProvideDBPool(lc fx.Lifecycle, logger *zap.Logger, cfg *config.Config) (*db.Pool, error) {
	return db.NewPool(lc, logger, cfg.Database.URL, cfg.Database.MigrationsPath)
}

// ProvideIdentityService creates the account store
func ProvideIdentityService(pool *db.Pool) identity.Service {
	return identity.NewPostgresService(pool)
}

// ProvideRepository creates the user record store
func ProvideRepository(pool *db.Pool) *repository.Repository {
	return repository.NewRepository(pool)
}

// ProvideStatusTracker creates the dustbin liveness tracker
func ProvideStatusTracker() *status.Tracker {
	return status.NewTracker()
}

// ProvideMQConnection connects to RabbitMQ when a URL is configured. The
// broker is optional: without it, awards are still persisted but no events
// are published and the queue intake stays off.
func ProvideMQConnection(lc fx.Lifecycle, logger *zap.Logger, cfg *config.Config) (*mq.Connection, error) {
	if cfg.RabbitMQ.URL == "" {
		logger.Info("RABBITMQ_URL not set, running without a broker")
		return nil, nil
	}
	return mq.Dial(lc, logger, cfg.RabbitMQ.URL)
}

// ProvidePublisher creates the points-event publisher
func ProvidePublisher(conn *mq.Connection, cfg *config.Config, logger *zap.Logger) (mq.Publisher, error) {
	if conn == nil {
		return mq.NopPublisher{}, nil
	}
	return mq.NewEventPublisher(conn, cfg.RabbitMQ.EventsExchange, cfg.RabbitMQ.EventsRoutingKey, logger)
}

// ProvideAttributor creates the classification attribution service
func ProvideAttributor(repo *repository.Repository, publisher mq.Publisher, logger *zap.Logger) *ingest.Attributor {
	return ingest.NewAttributor(repo, publisher, logger)
}

// ProvideReader creates the serial ingestion loop
func ProvideReader(cfg *config.Config, attributor *ingest.Attributor, tracker *status.Tracker, logger *zap.Logger) *ingest.Reader {
	opener := serialport.NewOpener(cfg.Serial.Port, cfg.Serial.BaudRate)
	return ingest.NewReader(opener, attributor, tracker, logger)
}

// ProvideCoach creates the generative coaching client
func ProvideCoach(cfg *config.Config, logger *zap.Logger) *coach.Client {
	return coach.NewClient(cfg.Coach.APIKey, cfg.Coach.Model, cfg.Coach.Location, logger)
}

// ProvideAPI creates the REST API handlers
func ProvideAPI(
	id identity.Service,
	repo *repository.Repository,
	coachClient *coach.Client,
	tracker *status.Tracker,
	logger *zap.Logger,
) *api.API {
	return api.New(api.Config{
		Identity: id,
		Users:    repo,
		Coach:    coachClient,
		Liveness: tracker,
		Logger:   logger,
	})
}
