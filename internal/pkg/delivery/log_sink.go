package delivery

import (
	"Forwarder/internal/model"
	"context"
	"errors"
	log "log/slog"
	"math/rand/v2"
	"time"
)

var ErrSimulatedFailure = errors.New("simulated downstream failure")

// LogSink 模拟下游：只记录日志，可配置延迟与失败率
type LogSink struct {
	latency     time.Duration
	failureRate float64
	roll        func() float64
}

func NewLogSink(latency time.Duration, failureRate float64) *LogSink {
	return &LogSink{
		latency:     latency,
		failureRate: failureRate,
		roll:        rand.Float64,
	}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Deliver(ctx context.Context, post *model.Post) error {
	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if s.failureRate > 0 && s.roll() < s.failureRate {
		return ErrSimulatedFailure
	}

	log.InfoContext(ctx, "forwarding post to downstream",
		"post_id", post.ID, "title", post.Title, "author", post.Author, "priority", post.Priority)
	return nil
}
