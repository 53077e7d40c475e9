package delivery

import (
	"Forwarder/internal/api/config"
	"Forwarder/internal/model"
	"Forwarder/internal/pkg/logger"
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/go-resty/resty/v2"
)

const TraceHeader = "X-Trace-ID"

// WebhookSink 以 JSON POST 到下游地址，非 2xx 视为失败
type WebhookSink struct {
	url    string
	client *resty.Client
}

func NewWebhookSink(cfg config.WebhookConfig) (*WebhookSink, error) {
	if cfg.URL == "" {
		return nil, errors.New("webhook sink enabled without forwarder.webhook.url")
	}

	client := resty.New().
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal).
		SetHeader("Content-Type", "application/json").
		SetHeaders(cfg.Headers)

	return &WebhookSink{url: cfg.URL, client: client}, nil
}

func (s *WebhookSink) Name() string { return "webhook" }

func (s *WebhookSink) Deliver(ctx context.Context, post *model.Post) error {
	req := s.client.R().SetContext(ctx).SetBody(post)
	if traceID := logger.TraceID(ctx); traceID != "" {
		req.SetHeader(TraceHeader, traceID)
	}

	resp, err := req.Post(s.url)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("webhook responded %d: %s", resp.StatusCode(), truncate(resp.String(), 200))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...[truncated]"
}
