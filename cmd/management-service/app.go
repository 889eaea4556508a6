package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"pipelinq/internal/api"
	"pipelinq/internal/config"
	"pipelinq/internal/constants"
	"pipelinq/internal/dispatch"
	"pipelinq/internal/feed"
	"pipelinq/internal/logger"
	"pipelinq/internal/notes"
	"pipelinq/internal/objectstore"
	"pipelinq/internal/pipelines"
	"pipelinq/internal/settings"
	"pipelinq/internal/subject"
	"pipelinq/internal/tags"
	"pipelinq/pkg/bootstrap"
	"pipelinq/pkg/health"
	"pipelinq/pkg/logging"
	"pipelinq/pkg/metrics"
	"pipelinq/pkg/middleware"
	"pipelinq/pkg/ratelimit"
	"pipelinq/pkg/tracing"
)

type App struct {
	*bootstrap.Base
	dbConnector    *bootstrap.DatabaseConnector
	db             *sql.DB
	mongoClient    *mongo.Client
	tagService     *tags.Service
	server         *http.Server
	router         *gin.Engine
	tracerProvider *tracing.TracerProvider
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName(constants.ServiceNameManagement)
	}
	return &App{
		Base:        bootstrap.NewBase(cfg, log),
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	initCtx, cancel := context.WithTimeout(ctx, constants.InitTimeout)
	defer cancel()

	if err := a.initDatabase(initCtx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := a.InitProducer(); err != nil {
		return fmt.Errorf("failed to initialize broker: %w", err)
	}

	tp, err := tracing.Init(a.Config.Tracing, constants.ServiceNameManagement)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	if err := a.initRouter(); err != nil {
		return fmt.Errorf("failed to initialize router: %w", err)
	}

	metrics.RegisterManagementMetrics()
	metrics.RegisterObjectStoreMetrics()
	metrics.RegisterDispatchMetrics()
	metrics.RegisterBrokerMetrics()
	if a.Config.CircuitBreaker.Enabled {
		metrics.RegisterCircuitBreakerMetrics()
	}

	if a.Config.Tags.EnsureDefaultsOnStart {
		a.ensureDefaultTags(initCtx)
	}

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.Config.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(a.Config.Server.WriteTimeoutSeconds) * time.Second,
	}
	return nil
}

func (a *App) initDatabase(ctx context.Context) error {
	db, err := a.dbConnector.InitPostgreSQL(ctx)
	if err != nil {
		return err
	}
	if db == nil {
		return fmt.Errorf("database.postgres.host is required")
	}
	a.db = db

	mongoClient, err := a.dbConnector.InitMongoDB(ctx)
	if err != nil {
		return err
	}
	if mongoClient == nil {
		return fmt.Errorf("database.mongodb.uri is required for the activity feed")
	}
	a.mongoClient = mongoClient

	return a.dbConnector.RunMigrations(ctx, a.db, a.mongoDatabase())
}

func (a *App) mongoDatabase() *mongo.Database {
	name := a.Config.Database.MongoDB.Database
	if name == "" {
		name = constants.DefaultMongoDBName
	}
	return a.mongoClient.Database(name)
}

func (a *App) initRouter() error {
	renderer, err := subject.NewRenderer(a.Config.Dispatch.DefaultLanguage)
	if err != nil {
		return fmt.Errorf("failed to load subject catalogs: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if a.Config.Tracing.Enabled {
		router.Use(tracing.GinMiddleware(constants.ServiceNameManagement))
	}

	router.Use(middleware.RecoveryMiddleware(a.Logger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.ActorMiddleware())
	router.Use(middleware.LoggerMiddleware(a.Logger))

	if a.Config.Management.RateLimit.Enabled {
		rateLimitConfig := ratelimit.ConfigFrom(a.Config.Management.RateLimit)
		router.Use(ratelimit.RateLimitMiddleware(rateLimitConfig))
		a.Logger.InfowCtx(context.Background(), "Rate limiting enabled", "rps", rateLimitConfig.RPS, "burst", rateLimitConfig.Burst)
	}

	settingsRepo := settings.NewRepository(a.db)
	settingsSource := settings.NewLayeredSource(settingsRepo, settings.NewStaticSource(a.Config.Pipelinq))

	settingsOpts := []settings.ServiceOption{}
	if topic := a.Config.Broker.Kafka.SettingsTopic; topic != "" {
		settingsOpts = append(settingsOpts, settings.WithEvents(settings.NewEventProducer(a.Producer, topic)))
	}
	settingsService := settings.NewService(settingsRepo, settingsRepo, a.Logger, settingsOpts...)

	a.tagService = tags.NewService(tags.NewPostgresStore(a.db), a.Logger)

	collection := a.Config.Dispatch.ActivityCollection
	if collection == "" {
		collection = constants.DefaultActivityCollection
	}
	activities := dispatch.NewCircuitBreakerActivityRepository(
		dispatch.NewActivityRepository(a.mongoDatabase(), collection),
		a.Config.CircuitBreaker,
	)
	notifications := dispatch.NewCircuitBreakerNotificationSink(
		dispatch.NewKafkaNotificationSink(a.Producer, a.Config.Broker.Kafka.NotificationsTopic, constants.ServiceNameManagement),
		a.Config.CircuitBreaker,
	)
	publisher := dispatch.NewPublisher(activities, notifications, renderer, dispatch.Options{
		AppID:           a.Config.Dispatch.AppID,
		BaseURL:         a.Config.Dispatch.BaseURL,
		DefaultLanguage: renderer.DefaultLanguage(),
	}, a.Logger)

	objects := objectstore.NewClient(a.Config.ObjectStore, a.Config.CircuitBreaker, a.Logger)
	noteEvents := notes.NewEventService(objects, settingsSource, publisher, a.Logger)

	api.Mount(router,
		settings.NewHandler(settingsService, a.Logger),
		tags.NewHandler(a.tagService, a.Logger),
		notes.NewHandler(notes.NewService(notes.NewRepository(a.db), noteEvents, a.Logger), a.Logger),
		pipelines.NewHandler(pipelines.NewService(objects, settingsSource, a.Logger), a.Logger),
		feed.NewHandler(feed.NewService(activities, renderer, a.Logger), a.Logger),
	)

	healthRegistry := health.NewCheckerRegistry()
	healthRegistry.Register(health.NewPostgreSQLChecker(a.db))
	healthRegistry.Register(health.NewMongoDBChecker(a.mongoClient))

	router.GET("/health", func(c *gin.Context) {
		h := healthRegistry.Check(c.Request.Context())
		c.JSON(h.HTTPStatus(), h)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	a.router = router
	return nil
}

func (a *App) ensureDefaultTags(ctx context.Context) {
	defaults := map[tags.Category][]string{
		tags.CategoryLeadSource:     a.Config.Tags.LeadSources,
		tags.CategoryRequestChannel: a.Config.Tags.RequestChannels,
	}
	if len(defaults[tags.CategoryLeadSource]) == 0 {
		defaults[tags.CategoryLeadSource] = tags.DefaultLeadSources
	}
	if len(defaults[tags.CategoryRequestChannel]) == 0 {
		defaults[tags.CategoryRequestChannel] = tags.DefaultRequestChannels
	}

	for _, category := range tags.Categories {
		if err := a.tagService.EnsureDefaults(ctx, category, defaults[category]); err != nil {
			a.Logger.WarnwCtx(logging.WithServiceName(ctx, constants.ServiceNameManagement),
				"Failed to ensure default tags",
				"category", category,
				"error", err,
			)
		}
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		a.Logger.InfowCtx(ctx, "Server listening", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errChan:
		return err
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	a.Logger.InfowCtx(logging.WithServiceName(ctx, constants.ServiceNameManagement), "Shutting down server")

	// Drain requests before the producer closes.
	var serverErr error
	if a.server != nil {
		serverErr = a.server.Shutdown(ctx)
	}

	additionalShutdown := func(ctx context.Context) []error {
		var errs []error

		if serverErr != nil {
			errs = append(errs, fmt.Errorf("server shutdown error: %w", serverErr))
		}

		if a.tracerProvider != nil {
			if err := a.tracerProvider.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
			}
		}

		errs = append(errs, a.dbConnector.ShutdownDatabases(ctx, nil, a.db, a.mongoClient)...)
		return errs
	}

	return a.Base.Shutdown(ctx, additionalShutdown)
}
