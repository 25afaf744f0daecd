package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pablogoliveira/personia-hub/internal/config"
	"github.com/pablogoliveira/personia-hub/internal/handlers"
	"github.com/pablogoliveira/personia-hub/internal/logging"
	"github.com/pablogoliveira/personia-hub/internal/middleware"
	"github.com/pablogoliveira/personia-hub/internal/observability"
	"github.com/pablogoliveira/personia-hub/internal/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	_ "github.com/pablogoliveira/personia-hub/docs"
)

// @title           Personia Cadastro API
// @version         1.0
// @description     API de cadastro de pessoas. Valida CPF, CEP, telefone e e-mail, garante unicidade de CPF e e-mail e oferece listagem paginada com busca.

// @contact.name   Personia
// @contact.email  contato@personia.dev

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /v1

// @tag.name pessoas
// @tag.description Cadastro de pessoas

// @tag.name health
// @tag.description Health check operations

func main() {
	// Initialize logger first
	if err := logging.InitLogger("personia-api"); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logging.Logger.Sync() //nolint:errcheck

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logging.Logger.Fatal("failed to load config", zap.Error(err))
	}

	// Initialize observability
	observability.InitTracer("personia-api")
	defer observability.ShutdownTracer()

	ctx := context.Background()
	checks := map[string]handlers.HealthCheckFunc{}

	// Mongo backs the person store and the audit log
	if config.AppConfig.PersonStore == config.PersonStoreMongo || config.AppConfig.AuditLogsEnabled {
		if err := config.InitMongoDB(ctx); err != nil {
			logging.Logger.Fatal("failed to initialize MongoDB", zap.Error(err))
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := config.CloseMongoDB(closeCtx); err != nil {
				logging.Logger.Error("failed to disconnect MongoDB", zap.Error(err))
			}
		}()
		checks["mongodb"] = func(ctx context.Context) error {
			return config.MongoDB.Client().Ping(ctx, readpref.Primary())
		}
	}

	var repo services.PersonRepository
	switch config.AppConfig.PersonStore {
	case config.PersonStoreMongo:
		repo = services.NewMongoPersonRepository(config.MongoDB.Collection(config.AppConfig.PersonCollection))
	case config.PersonStorePostgres:
		if err := config.InitPostgres(ctx); err != nil {
			logging.Logger.Fatal("failed to initialize Postgres", zap.Error(err))
		}
		defer config.Postgres.Close()

		pgRepo := services.NewPostgresPersonRepository(config.Postgres)
		if err := pgRepo.Migrate(ctx); err != nil {
			logging.Logger.Fatal("failed to migrate persons table", zap.Error(err))
		}
		repo = pgRepo
		checks["postgres"] = func(ctx context.Context) error {
			return config.Postgres.Ping(ctx)
		}
	default:
		logging.Logger.Warn("using in-memory person store, data is lost on restart")
		repo = services.NewMemoryPersonRepository()
	}

	config.InitRedis(ctx)
	defer config.Redis.Close() //nolint:errcheck
	checks["redis"] = func(ctx context.Context) error {
		return config.Redis.Ping(ctx).Err()
	}

	opts := []services.PersonServiceOption{
		services.WithPersonCache(config.Redis, config.AppConfig.PersonCacheTTL),
	}

	// Audit logging goes to Mongo when enabled, to the structured log otherwise
	var auditSink services.AuditSink = services.NewLogAuditSink(logging.Named("audit"))
	if config.AppConfig.AuditLogsEnabled {
		auditSink = services.NewMongoAuditSink(config.MongoDB.Collection(config.AppConfig.AuditLogsCollection))
	}
	auditWorker := services.NewAuditWorker(auditSink,
		config.AppConfig.AuditWorkerCount,
		config.AppConfig.AuditBufferSize,
		logging.Named("audit"))
	auditWorker.Start()
	defer auditWorker.Stop()
	opts = append(opts, services.WithAuditLogger(auditWorker))

	personService := services.NewPersonService(repo, logging.Named("person"), opts...)

	// Set Gin mode
	if config.AppConfig.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router with middleware
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestTiming(),
		middleware.RequestLogger(),
		middleware.RequestTracker(),
		cors.Default(),
	)

	// Metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/v1")
	{
		v1.GET("/health", handlers.NewHealthHandler(checks, logging.Named("health")).HealthCheck)
		handlers.NewPersonHandler(personService, logging.Named("handlers")).Register(v1)
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Create server with timeouts
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.AppConfig.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logging.Logger.Info("starting server",
			zap.Int("port", config.AppConfig.Port),
			zap.String("environment", config.AppConfig.Environment),
			zap.String("person_store", config.AppConfig.PersonStore),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	logging.Logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Logger.Error("server forced to shutdown", zap.Error(err))
		return
	}

	logging.Logger.Info("server exited gracefully")
}
