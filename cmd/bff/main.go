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
	"github.com/pablogoliveira/personia-hub/internal/models"
	"github.com/pablogoliveira/personia-hub/internal/observability"
	"github.com/pablogoliveira/personia-hub/internal/services"
	"github.com/pablogoliveira/personia-hub/internal/utils/httpclient"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	if err := logging.InitLogger("personia-bff"); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logging.Logger.Sync() //nolint:errcheck

	if err := config.LoadConfig(); err != nil {
		logging.Logger.Fatal("failed to load config", zap.Error(err))
	}

	observability.InitTracer("personia-bff")
	defer observability.ShutdownTracer()

	ctx := context.Background()

	// Redis caches CEP lookups
	config.InitRedis(ctx)
	defer config.Redis.Close() //nolint:errcheck

	backend := services.NewBackendClient(
		config.AppConfig.BackendAPIURL,
		httpclient.New(config.AppConfig.BackendTimeout),
		logging.Named("backend"),
	)
	cepService := services.NewCEPService(
		config.AppConfig.ViaCEPBaseURL,
		httpclient.New(config.AppConfig.ViaCEPTimeout),
		logging.Named("cep"),
		services.WithCEPCache(config.Redis, config.AppConfig.CEPCacheTTL),
	)

	sessions := services.NewFormSessionService(backend, cepService, services.FormSessionConfig{
		TTL:        config.AppConfig.FormSessionTTL,
		ResetDelay: config.AppConfig.FormResetDelay,
		FocusDelay: config.AppConfig.FormFocusDelay,
	}, logging.Named("forms"))
	sessions.Start()
	defer sessions.Stop()

	checks := map[string]handlers.HealthCheckFunc{
		"redis": func(ctx context.Context) error {
			return config.Redis.Ping(ctx).Err()
		},
		"backend": func(ctx context.Context) error {
			_, err := backend.ListPersons(ctx, models.PersonFilter{Page: 1, Limit: 1})
			return err
		},
	}

	if config.AppConfig.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestTiming(),
		middleware.RequestLogger(),
		middleware.RequestTracker(),
		cors.Default(),
	)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	{
		v1.GET("/health", handlers.NewHealthHandler(checks, logging.Named("health")).HealthCheck)
		v1.GET("/cep/:cep", handlers.NewCEPHandler(cepService, logging.Named("handlers")).LookupCEP)
		handlers.NewPersonProxyHandler(backend, logging.Named("handlers")).Register(v1)
		handlers.NewFormHandler(sessions, logging.Named("handlers")).Register(v1)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.AppConfig.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logging.Logger.Info("starting bff",
			zap.Int("port", config.AppConfig.Port),
			zap.String("backend", config.AppConfig.BackendAPIURL),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Logger.Info("shutting down bff...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Logger.Error("server forced to shutdown", zap.Error(err))
		return
	}

	logging.Logger.Info("bff exited gracefully")
}
