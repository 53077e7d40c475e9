package main

import (
	"Forwarder/internal/api/config"
	"Forwarder/internal/pkg/cron"
	"Forwarder/internal/pkg/logger"
	"Forwarder/internal/wire"
	"context"
	"errors"
	"flag"
	"fmt"
	log "log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

func main() {
	configDir := flag.String("config", "", "directory containing config.yaml")
	flag.Parse()

	// 加载配置
	var paths []string
	if *configDir != "" {
		paths = append(paths, *configDir)
	}
	if err := config.LoadConfig(paths...); err != nil {
		log.Error("Fatal error: failed to load configuration", "err", err)
		os.Exit(1)
	}
	cfg := config.Cfg

	// 初始化日志
	logger.InitLogger(cfg.Log)
	defer logger.Close()

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 依赖注入
	app, err := wire.BuildApplication(rootCtx, cfg)
	if err != nil {
		log.Error("Fatal error: failed to create application", "err", err)
		os.Exit(1)
	}

	g, ctx := errgroup.WithContext(rootCtx)

	// 定时任务
	if err = cron.InitCron(app.CronMgr); err != nil {
		log.Error("Fatal error: failed to start cron jobs", "err", err)
		os.Exit(1)
	}

	// Kafka 消费者
	if app.KafkaManager != nil {
		g.Go(func() error {
			log.Info("kafka consumers starting...")
			return app.KafkaManager.Start(ctx)
		})
	}

	// HTTP 服务器
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		log.Info("HTTP server starting...", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// 优雅退出：先停定时任务，再停 HTTP，最后关闭下游连接
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case <-ctx.Done():
		case sig := <-quit:
			log.Info("received signal, shutting down...", "signal", sig.String())
			cancel()
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := app.CronMgr.Stop(shutdownCtx); err != nil {
			log.Error("cron shutdown failed", "err", err)
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown failed", "err", err)
		}
		if err := app.Sinks.Close(); err != nil {
			log.Error("close delivery sinks failed", "err", err)
		}

		stats := app.PostService.Stats(shutdownCtx)
		log.Info("final post stats", "total", stats.Total, "forwarded", stats.Forwarded, "pending", stats.Pending)
		return nil
	})

	if err = g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("app exited with error", "err", err)
		os.Exit(1)
	}
	log.Info("app exited successfully.")
}
