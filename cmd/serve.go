package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/neuroscreen/internal/adaptive"
	"github.com/abhisek/neuroscreen/internal/config"
	"github.com/abhisek/neuroscreen/internal/llm"
	"github.com/abhisek/neuroscreen/internal/logging"
	"github.com/abhisek/neuroscreen/internal/screening"
	"github.com/abhisek/neuroscreen/internal/server"
	"github.com/abhisek/neuroscreen/internal/telemetry"
)

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the screening HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := logging.New(logging.Options{
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
			File:    cfg.LogFile,
			Service: "neuroscreen",
		})
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer logger.Sync() //nolint:errcheck

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, logger)
	},
}

func serve(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := telemetry.New(reg)

	be, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer be.close()

	llmCfg := llm.ResolveConfig()
	llmCfg.Retry.OnRetry = func(kind llm.Kind) { metrics.LLMRetry(string(kind)) }
	onFallback := func(purpose string, kind llm.Kind) { metrics.LLMFallback(purpose, string(kind)) }
	var recorder llm.EventRecorder
	if be.events != nil {
		recorder = be.events
	}
	provider, err := llm.NewProvider(ctx, llmCfg, recorder, logger)
	if err != nil {
		logger.Warn("LLM provider not configured, AI features unavailable", zap.Error(err))
		provider = nil
	}

	var completer llm.TextCompleter
	advisorCfg := adaptive.DefaultAdvisorConfig()
	advisorCfg.Timeout = cfg.AdvisorTimeout
	advisorCfg.OnFallback = onFallback
	if provider != nil {
		completer = llm.NewCompleter(provider, logger).WithFallback(onFallback)
		logger.Info("LLM enabled", zap.String("provider", llmCfg.Provider), zap.String("model", provider.ModelID()))
	}

	engine, err := screening.New(screening.Options{
		Store:          be.sessions,
		Advisor:        adaptive.NewAdvisor(provider, advisorCfg, logger),
		Completer:      completer,
		Events:         be.events,
		Metrics:        metrics,
		Logger:         logger,
		TotalQuestions: cfg.TotalQuestions,
		SessionTTL:     cfg.SessionTTL,
	})
	if err != nil {
		return err
	}
	defer engine.Close()

	srv := server.New(engine, server.Options{
		Metrics:  metrics,
		Gatherer: reg,
		Health:   be.health,
		Logger:   logger,
	})
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Addr), zap.String("store", cfg.Store))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return engine.RunSweeper(gctx, cfg.SweepInterval)
	})
	return g.Wait()
}
