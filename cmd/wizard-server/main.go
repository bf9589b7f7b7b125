// cmd/wizard-server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"magnet-wizard/internal/api"
	"magnet-wizard/internal/common/camunda"
	"magnet-wizard/internal/common/config"
	"magnet-wizard/internal/common/database"
	"magnet-wizard/internal/common/logger"
	"magnet-wizard/internal/common/observability"
	"magnet-wizard/internal/services"
	"magnet-wizard/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting wizard server...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	obs := observability.New(observability.Options{
		ServiceName:    cfg.Observability.ServiceName,
		JaegerEndpoint: cfg.Observability.JaegerEndpoint,
		SampleRatio:    cfg.Observability.SampleRatio,
	}, log)
	defer obs.Shutdown()

	// --- Session store ---
	redis := database.NewRedis(cfg.Database.Redis)
	defer redis.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redis.Ping(pingCtx); err != nil {
		zapLog.Warn("redis not reachable at startup", zap.Error(err))
	}
	cancelPing()

	store := session.NewRedisStore(redis.Client, cfg.Wizard.SessionKeyPrefix, cfg.Wizard.TTL(), log)

	// --- Lead hand-off ---
	deps := map[string]api.Pinger{"redis": redis}

	var starter services.ProcessStarter
	if cfg.Wizard.StartProcess {
		zc, err := camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		if err != nil {
			zapLog.Fatal("zeebe client failed", zap.Error(err))
		}
		defer zc.Close()
		starter = zc
		deps["zeebe"] = pingerFunc(zc.HealthCheck)
		zapLog.Info("Submissions will start process", zap.String("processId", cfg.Wizard.ProcessID))
	} else {
		zapLog.Info("Process start disabled; submissions are only logged")
	}

	submitter := services.NewLeadSubmissionService(starter, cfg.Wizard.ProcessID, log)
	wizardSvc := services.NewWizardService(store, submitter, obs, log)

	handlers := api.NewHandlers(wizardSvc, deps, log)
	router := api.NewRouter(handlers, cfg.Server.AllowedOrigins, zapLog)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("Wizard API listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http server shutdown failed", zap.Error(err))
	}
	zapLog.Info("Wizard server stopped gracefully")
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }
