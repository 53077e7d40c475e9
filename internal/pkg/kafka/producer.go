package kafka

import (
	"Forwarder/internal/api/config"
	"Forwarder/internal/model"
	"Forwarder/internal/pkg/logger"
	"context"
	"errors"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
)

// ForwardSink 把已转发的帖子写入下游 topic，key 为帖子 id
type ForwardSink struct {
	topic    string
	producer sarama.SyncProducer
}

func NewForwardSink(cfg config.KafkaConfig) (*ForwardSink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka sink enabled without brokers")
	}
	producer, err := sarama.NewSyncProducer(cfg.Brokers, newSaramaConfig(cfg))
	if err != nil {
		return nil, err
	}
	return newForwardSink(cfg.Forward.Topic, producer), nil
}

func newForwardSink(topic string, producer sarama.SyncProducer) *ForwardSink {
	return &ForwardSink{topic: topic, producer: producer}
}

func (s *ForwardSink) Name() string { return "kafka" }

// Deliver SyncProducer 不感知 ctx，超时后返回但消息可能仍被写入
func (s *ForwardSink) Deliver(ctx context.Context, post *model.Post) error {
	value, err := json.Marshal(post)
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(post.ID),
		Value: sarama.ByteEncoder(value),
	}
	if traceID := logger.TraceID(ctx); traceID != "" {
		msg.Headers = []sarama.RecordHeader{{Key: []byte(logger.TraceIDKey), Value: []byte(traceID)}}
	}

	errCh := make(chan error, 1)
	go func() {
		_, _, err := s.producer.SendMessage(msg)
		errCh <- err
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *ForwardSink) Close() error {
	return s.producer.Close()
}
