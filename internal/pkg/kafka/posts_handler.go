package kafka

import (
	"Forwarder/internal/api/dto"
	"Forwarder/internal/model"
	"Forwarder/internal/pkg/consts"
	"Forwarder/internal/pkg/logger"
	"Forwarder/internal/pkg/util"
	"Forwarder/internal/service"
	"context"
	"errors"
	log "log/slog"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Ingester 由 service.PostService 实现
type Ingester interface {
	Ingest(ctx context.Context, post *model.Post) (*model.Post, error)
}

// PostsHandler 消费帖子摄入 topic
type PostsHandler struct {
	ingester Ingester
}

func NewPostsHandler(ingester Ingester) *PostsHandler {
	return &PostsHandler{ingester: ingester}
}

func (s *PostsHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("post ingest consumer setup")
	return nil
}

func (s *PostsHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("post ingest consumer cleanup")
	return nil
}

func (s *PostsHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("post ingest consume claim", "topic", claim.Topic(), "partition", claim.Partition())
	if err := pullMessageBatch(session, claim, s.logic); err != nil {
		log.Error("post ingest process batch error", "err", err)
		return err
	}
	return nil
}

// logic 无法解析或校验失败的消息直接丢弃；重复 id 视为已处理，保证重投幂等
func (s *PostsHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	traceID := traceIDFromHeaders(msg.Headers)
	if traceID == "" {
		traceID = consts.KafkaIngestTracePrefix + uuid.NewString()
	}
	ctx = logger.WithTraceID(ctx, traceID)

	var req dto.CreatePostDTO
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		log.WarnContext(ctx, "drop undecodable post message", "offset", msg.Offset, "err", err)
		return nil
	}
	if err := util.ValidateDTO(&req); err != nil {
		log.WarnContext(ctx, "drop invalid post message", "offset", msg.Offset, "err", err)
		return nil
	}

	post, err := s.ingester.Ingest(ctx, req.ToModel())
	if err != nil {
		if errors.Is(err, service.ErrPostExists) {
			log.InfoContext(ctx, "post already ingested, skip", "post_id", req.ID)
			return nil
		}
		return err
	}

	log.InfoContext(ctx, "post ingested from kafka", "post_id", post.ID, "forwarded", post.Forwarded)
	return nil
}

func traceIDFromHeaders(headers []*sarama.RecordHeader) string {
	for _, h := range headers {
		if h != nil && string(h.Key) == logger.TraceIDKey {
			return string(h.Value)
		}
	}
	return ""
}
