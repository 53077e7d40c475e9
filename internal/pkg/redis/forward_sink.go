package redis

import (
	"Forwarder/internal/api/config"
	"Forwarder/internal/model"
	"context"
	"errors"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// ForwardSink 将转发的帖子追加到列表，并可选发布到频道
type ForwardSink struct {
	rdb     *redis.Client
	key     string
	channel string
	maxLen  int64
}

func NewForwardSink(ctx context.Context, cfg config.RedisConfig) (*ForwardSink, error) {
	if cfg.ForwardKey == "" {
		return nil, errors.New("redis sink enabled without redis.forward_key")
	}
	rdb, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return newForwardSink(rdb, cfg), nil
}

func newForwardSink(rdb *redis.Client, cfg config.RedisConfig) *ForwardSink {
	return &ForwardSink{
		rdb:     rdb,
		key:     cfg.ForwardKey,
		channel: cfg.Channel,
		maxLen:  cfg.MaxLen,
	}
}

func (s *ForwardSink) Name() string { return "redis" }

func (s *ForwardSink) Deliver(ctx context.Context, post *model.Post) error {
	payload, err := json.Marshal(post)
	if err != nil {
		return err
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, s.key, payload)
		// 只保留最近 maxLen 条
		if s.maxLen > 0 {
			pipe.LTrim(ctx, s.key, -s.maxLen, -1)
		}
		if s.channel != "" {
			pipe.Publish(ctx, s.channel, payload)
		}
		return nil
	})
	return err
}

func (s *ForwardSink) Close() error {
	return s.rdb.Close()
}
