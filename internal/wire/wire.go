package wire

import (
	"Forwarder/internal/api"
	"Forwarder/internal/api/config"
	"Forwarder/internal/api/handler"
	"Forwarder/internal/job"
	"Forwarder/internal/pkg/cron"
	"Forwarder/internal/pkg/delivery"
	"Forwarder/internal/pkg/kafka"
	"Forwarder/internal/pkg/redis"
	"Forwarder/internal/pkg/util"
	"Forwarder/internal/pkg/ws"
	"Forwarder/internal/repository"
	"Forwarder/internal/service"
	"context"
	"fmt"
	log "log/slog"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	SinkLog     = "log"
	SinkWebhook = "webhook"
	SinkKafka   = "kafka"
	SinkRedis   = "redis"
	SinkWS      = "ws"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	PostService  service.PostService
	SweepJob     *job.ForwardSweepJob
	CronMgr      *cron.Manager
	KafkaManager *kafka.ConsumerManager // 未启用 Kafka 摄入时为 nil
	Sinks        *delivery.Multi
}

func BuildApplication(ctx context.Context, cfg *config.Config) (*ApplicationContainer, error) {
	if err := util.RegisterGinValidators(); err != nil {
		return nil, err
	}

	sinks, hub, err := BuildSinks(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store := repository.NewPostStore()
	classifier := service.NewClassifier(cfg.Classifier)
	forwarder := service.NewForwarder(store, sinks, cfg.Forwarder.DeliveryTimeout, cfg.Forwarder.MaxInFlight)
	postService := service.NewPostService(store, classifier, forwarder)

	sweepJob := job.NewForwardSweepJob(postService, forwarder)
	cronMgr := cron.NewCronManager(sweepJob, cfg.Scheduler)

	handlers := &api.HandlersGroup{
		PostHandler:   handler.NewPostHandler(postService),
		StatusHandler: handler.NewStatusHandler(postService, sweepJob),
	}
	if hub != nil {
		handlers.WsHandler = handler.NewWsHandler(hub)
	}
	router := api.SetupRouter(handlers, cfg.Log.Index)

	var kafkaMgr *kafka.ConsumerManager
	if cfg.Kafka.Ingest.Enabled {
		kafkaMgr, err = kafka.NewConsumerManager(cfg.Kafka, postService)
		if err != nil {
			_ = sinks.Close()
			return nil, err
		}
	}

	return &ApplicationContainer{
		Router:       router,
		PostService:  postService,
		SweepJob:     sweepJob,
		CronMgr:      cronMgr,
		KafkaManager: kafkaMgr,
		Sinks:        sinks,
	}, nil
}

// BuildSinks 按配置顺序组装下游；任一下游初始化失败时关闭已建立的连接
func BuildSinks(ctx context.Context, cfg *config.Config) (*delivery.Multi, *ws.Hub, error) {
	names := cfg.Forwarder.Sinks
	if len(names) == 0 {
		names = []string{SinkLog}
	}

	var (
		sinks []delivery.Sink
		hub   *ws.Hub
		seen  = make(map[string]struct{}, len(names))
	)
	fail := func(err error) (*delivery.Multi, *ws.Hub, error) {
		_ = delivery.NewMulti(sinks...).Close()
		return nil, nil, err
	}

	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		switch name {
		case SinkLog:
			sinks = append(sinks, delivery.NewLogSink(cfg.Forwarder.SimulatedLatency, cfg.Forwarder.SimulatedFailureRate))
		case SinkWebhook:
			s, err := delivery.NewWebhookSink(cfg.Forwarder.Webhook)
			if err != nil {
				return fail(err)
			}
			sinks = append(sinks, s)
		case SinkKafka:
			s, err := kafka.NewForwardSink(cfg.Kafka)
			if err != nil {
				return fail(fmt.Errorf("kafka sink: %w", err))
			}
			sinks = append(sinks, s)
		case SinkRedis:
			s, err := redis.NewForwardSink(ctx, cfg.Redis)
			if err != nil {
				return fail(fmt.Errorf("redis sink: %w", err))
			}
			sinks = append(sinks, s)
		case SinkWS:
			hub = ws.NewHub()
			sinks = append(sinks, hub)
		default:
			return fail(fmt.Errorf("unknown sink %q", raw))
		}
	}

	multi := delivery.NewMulti(sinks...)
	log.Info("delivery sinks ready", "sinks", multi.Name())
	return multi, hub, nil
}
