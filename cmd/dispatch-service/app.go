package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"pipelinq/internal/config"
	"pipelinq/internal/config_handler"
	"pipelinq/internal/constants"
	"pipelinq/internal/deduplication"
	"pipelinq/internal/dispatch"
	"pipelinq/internal/filtering"
	"pipelinq/internal/logger"
	"pipelinq/internal/objectevent"
	"pipelinq/internal/schema"
	"pipelinq/internal/settings"
	"pipelinq/internal/subject"
	"pipelinq/pkg/bootstrap"
	"pipelinq/pkg/health"
	"pipelinq/pkg/logging"
	"pipelinq/pkg/metrics"
	"pipelinq/pkg/tracing"
)

type App struct {
	*bootstrap.Base
	dbConnector    *bootstrap.DatabaseConnector
	db             *sql.DB
	redisClient    *redis.Client
	mongoClient    *mongo.Client
	resolver       *schema.Resolver
	handler        *objectevent.Handler
	tracerProvider *tracing.TracerProvider
	server         *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName(constants.ServiceNameDispatch)
	}
	return &App{
		Base:        bootstrap.NewBase(cfg, log),
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	initCtx, cancel := context.WithTimeout(ctx, constants.InitTimeout)
	defer cancel()

	if err := a.initDatabases(initCtx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := a.InitBroker(constants.ServiceNameDispatch); err != nil {
		return fmt.Errorf("failed to initialize broker: %w", err)
	}

	if err := a.initPipeline(initCtx); err != nil {
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}

	tp, err := tracing.Init(a.Config.Tracing, constants.ServiceNameDispatch)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	metrics.RegisterDispatchMetrics()
	metrics.RegisterBrokerMetrics()
	if a.Config.CircuitBreaker.Enabled {
		metrics.RegisterCircuitBreakerMetrics()
	}

	a.initHTTPServer()
	return nil
}

func (a *App) initDatabases(ctx context.Context) error {
	mongoClient, err := a.dbConnector.InitMongoDB(ctx)
	if err != nil {
		return err
	}
	if mongoClient == nil {
		return fmt.Errorf("database.mongodb.uri is required for the activity stream")
	}
	a.mongoClient = mongoClient

	redisClient, err := a.dbConnector.InitRedis(ctx)
	if err != nil {
		return err
	}
	a.redisClient = redisClient

	db, err := a.dbConnector.InitPostgreSQL(ctx)
	if err != nil {
		return err
	}
	a.db = db

	return a.dbConnector.RunMigrations(ctx, a.db, a.mongoDatabase())
}

func (a *App) mongoDatabase() *mongo.Database {
	if a.mongoClient == nil {
		return nil
	}
	name := a.Config.Database.MongoDB.Database
	if name == "" {
		name = constants.DefaultMongoDBName
	}
	return a.mongoClient.Database(name)
}

func (a *App) settingsSource() schema.SettingsSource {
	static := settings.NewStaticSource(a.Config.Pipelinq)
	if a.db == nil {
		return static
	}
	return settings.NewLayeredSource(settings.NewRepository(a.db), static)
}

func (a *App) initPipeline(ctx context.Context) error {
	renderer, err := subject.NewRenderer(a.Config.Dispatch.DefaultLanguage)
	if err != nil {
		return fmt.Errorf("failed to load subject catalogs: %w", err)
	}

	collection := a.Config.Dispatch.ActivityCollection
	if collection == "" {
		collection = constants.DefaultActivityCollection
	}
	activities := dispatch.NewCircuitBreakerActivityRepository(
		dispatch.NewActivityRepository(a.mongoDatabase(), collection),
		a.Config.CircuitBreaker,
	)
	notifications := dispatch.NewCircuitBreakerNotificationSink(
		dispatch.NewKafkaNotificationSink(a.Producer, a.Config.Broker.Kafka.NotificationsTopic, constants.ServiceNameDispatch),
		a.Config.CircuitBreaker,
	)
	publisher := dispatch.NewPublisher(activities, notifications, renderer, dispatch.Options{
		AppID:           a.Config.Dispatch.AppID,
		BaseURL:         a.Config.Dispatch.BaseURL,
		DefaultLanguage: renderer.DefaultLanguage(),
	}, a.Logger)

	suppressor, err := filtering.NewService(a.Config.Dispatch.SuppressionRules, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to compile suppression rules: %w", err)
	}

	var dedup objectevent.Deduplicator
	if a.redisClient != nil {
		repo := deduplication.NewCircuitBreakerRepository(deduplication.NewRepository(a.redisClient), a.Config.CircuitBreaker)
		dedup = deduplication.NewService(repo, a.Config.Dispatch, a.Logger)
	} else {
		a.Logger.WarnwCtx(logging.WithServiceName(ctx, constants.ServiceNameDispatch),
			"Redis not configured, duplicate object events will be dispatched twice")
	}

	a.resolver = schema.NewResolver(a.settingsSource(), a.Logger)
	a.handler = objectevent.NewHandler(a.resolver, publisher, suppressor, dedup, a.Logger)

	a.Logger.InfowCtx(ctx, "Dispatch pipeline ready",
		"suppression_rules", suppressor.RuleCount(),
		"dedup", dedup != nil,
		"settings_db", a.db != nil,
	)
	return nil
}

func (a *App) initHTTPServer() {
	mux := http.NewServeMux()

	healthRegistry := health.NewCheckerRegistry()
	healthRegistry.Register(health.NewMongoDBChecker(a.mongoClient))
	if a.redisClient != nil {
		if a.Config.Dispatch.OnRedisError == constants.FallbackDeny {
			healthRegistry.Register(health.NewRedisChecker(a.redisClient))
		} else {
			healthRegistry.RegisterOptional(health.NewRedisChecker(a.redisClient))
		}
	}
	if a.db != nil {
		healthRegistry.Register(health.NewPostgreSQLChecker(a.db))
	}

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		h := healthRegistry.Check(r.Context())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(h.HTTPStatus())
		fmt.Fprintf(w, `{"status":"%s","timestamp":"%s"}`, h.Status, h.Timestamp.Format(time.RFC3339))
	})

	mux.Handle("/metrics", promhttp.Handler())

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      mux,
		ReadTimeout:  time.Duration(a.Config.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(a.Config.Server.WriteTimeoutSeconds) * time.Second,
	}
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfowCtx(ctx, "HTTP server starting", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	if topic := a.Config.Broker.Kafka.SettingsTopic; topic != "" {
		// One group per instance: every instance must see every settings event.
		groupID := settingsGroupID(a.Config.Broker.Kafka.GroupID, os.Hostname)
		settingsConsumer, err := a.NewGroupConsumer(groupID, constants.ServiceNameDispatch, bootstrap.FromLatest)
		if err != nil {
			a.Logger.WarnwCtx(logging.WithServiceName(ctx, constants.ServiceNameDispatch),
				"Failed to create settings consumer, schema cache refreshes on restart only",
				"error", err,
			)
		} else {
			settingsHandler := config_handler.NewSettingsHandler(a.Logger, a.resolver)
			g.Go(func() error {
				a.Logger.InfowCtx(gCtx, "Starting settings event consumer", "topic", topic, "group_id", groupID)
				return settingsConsumer.Consume(gCtx, topic, settingsHandler.HandleConfigUpdateEvent)
			})
		}
	}

	eventsTopic := a.Config.Broker.Kafka.ObjectEventsTopic
	g.Go(func() error {
		a.Logger.InfowCtx(gCtx, "Starting object event consumer", "topic", eventsTopic)
		return a.Consumer.Consume(gCtx, eventsTopic, a.handler.HandleMessage)
	})

	return g.Wait()
}

// settingsGroupID names the settings consumer group after the host so a
// restarted instance rejoins its own group. Without a hostname it falls back
// to a random suffix.
func settingsGroupID(base string, hostname func() (string, error)) string {
	host, err := hostname()
	if err != nil || host == "" {
		host = uuid.NewString()
	}
	return fmt.Sprintf("%s-settings-%s", base, host)
}

func (a *App) Shutdown(ctx context.Context) error {
	shutdownCtx := logging.WithServiceName(ctx, constants.ServiceNameDispatch)
	a.Logger.InfowCtx(shutdownCtx, "Shutting down dispatch service")

	additionalShutdown := func(ctx context.Context) []error {
		var errs []error

		if a.tracerProvider != nil {
			if err := a.tracerProvider.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
			}
		}

		errs = append(errs, a.dbConnector.ShutdownDatabases(ctx, a.redisClient, a.db, a.mongoClient)...)
		return errs
	}

	return a.Base.Shutdown(ctx, additionalShutdown)
}
