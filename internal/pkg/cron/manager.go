package cron

import (
	"Forwarder/internal/api/config"
	"Forwarder/internal/job"
	"Forwarder/internal/pkg/logger"
	"context"
	log "log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine     *cron.Cron
	sweepJob   *job.ForwardSweepJob
	interval   time.Duration
	runOnStart bool
}

func NewCronManager(sweepJob *job.ForwardSweepJob, cfg config.SchedulerConfig) *Manager {
	interval := cfg.Interval
	if interval <= 0 {
		interval = config.DefaultSweepInterval
	}
	return &Manager{
		engine: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(logger.CronLogger{}),
			cron.WithChain(cron.Recover(logger.CronLogger{})),
		),
		sweepJob:   sweepJob,
		interval:   interval,
		runOnStart: cfg.RunOnStart,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	if _, err := s.engine.AddJob("@every "+s.interval.String(), s.sweepJob); err != nil {
		return err
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("cron engine started", "sweep_interval", s.interval.String())
	s.engine.Start()
	if s.runOnStart {
		go s.sweepJob.Run()
	}
}

// Stop 先停止调度，再等待进行中的清扫
func (s *Manager) Stop(ctx context.Context) error {
	log.Info("cron engine stopping")
	engineDone := s.engine.Stop()

	err := s.sweepJob.Shutdown(ctx)

	select {
	case <-engineDone.Done():
	case <-ctx.Done():
	}
	return err
}
