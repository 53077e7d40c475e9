package job

import (
	"Forwarder/internal/pkg/consts"
	"Forwarder/internal/pkg/logger"
	"Forwarder/internal/service"
	"context"
	log "log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// SweepSummary 一次清扫的汇总
type SweepSummary struct {
	TraceID        string        `json:"trace_id"`
	Dropped        bool          `json:"dropped"`
	Attempted      int           `json:"attempted"`
	Succeeded      int           `json:"succeeded"`
	Failed         int           `json:"failed"`
	Skipped        int           `json:"skipped"`
	Abandoned      int           `json:"abandoned"`
	TotalPosts     int           `json:"total_posts"`
	TotalForwarded int           `json:"total_forwarded"`
	StartedAt      time.Time     `json:"started_at"`
	Duration       time.Duration `json:"duration"`
}

// ForwardSweepJob 定时把未转发的帖子逐条转发；同一时刻只允许一次清扫
type ForwardSweepJob struct {
	postSvc   service.PostService
	forwarder service.Forwarder

	running atomic.Bool
	mu      sync.Mutex
	closed  bool
	wg      sync.WaitGroup

	baseCtx context.Context
	cancel  context.CancelFunc
}

func NewForwardSweepJob(postSvc service.PostService, forwarder service.Forwarder) *ForwardSweepJob {
	ctx, cancel := context.WithCancel(context.Background())
	return &ForwardSweepJob{
		postSvc:   postSvc,
		forwarder: forwarder,
		baseCtx:   ctx,
		cancel:    cancel,
	}
}

// Run cron 回调
func (s *ForwardSweepJob) Run() {
	traceID := consts.SweepJobTracePrefix + uuid.NewString()
	s.Sweep(logger.WithTraceID(context.Background(), traceID))
}

// Sweep 上一次清扫未结束或已关闭时直接丢弃本次，不排队
func (s *ForwardSweepJob) Sweep(ctx context.Context) SweepSummary {
	traceID := logger.TraceID(ctx)
	if traceID == "" {
		traceID = consts.SweepJobTracePrefix + uuid.NewString()
		ctx = logger.WithTraceID(ctx, traceID)
	}
	summary := SweepSummary{TraceID: traceID, StartedAt: time.Now()}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		summary.Dropped = true
		log.InfoContext(ctx, "sweep dropped, scheduler is shutting down")
		return summary
	}
	if !s.running.CompareAndSwap(false, true) {
		s.mu.Unlock()
		summary.Dropped = true
		log.InfoContext(ctx, "sweep dropped, previous sweep still running")
		return summary
	}
	s.wg.Add(1)
	s.mu.Unlock()

	defer func() {
		s.running.Store(false)
		s.wg.Done()
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.baseCtx, cancel)
	defer stop()

	pending := s.postSvc.ListPendingPosts(ctx)
	for i, p := range pending {
		if ctx.Err() != nil {
			summary.Abandoned = len(pending) - i
			log.WarnContext(ctx, "sweep interrupted", "abandoned", summary.Abandoned, "err", ctx.Err())
			break
		}

		summary.Attempted++
		res := s.forwarder.ForwardNow(ctx, p.ID)
		switch res.Outcome {
		case service.OutcomeForwarded:
			summary.Succeeded++
		case service.OutcomeSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
	}

	stats := s.postSvc.Stats(ctx)
	summary.TotalPosts = stats.Total
	summary.TotalForwarded = stats.Forwarded
	summary.Duration = time.Since(summary.StartedAt)

	log.InfoContext(ctx, "forward sweep finished",
		"total_posts", summary.TotalPosts,
		"total_forwarded", summary.TotalForwarded,
		"attempted", summary.Attempted,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"latency", summary.Duration)
	return summary
}

func (s *ForwardSweepJob) Running() bool {
	return s.running.Load()
}

// Shutdown 不再接受新的清扫，等待进行中的清扫结束；超时后取消它并等待其退出
func (s *ForwardSweepJob) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		<-done
		return ctx.Err()
	}
}
