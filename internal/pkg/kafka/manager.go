package kafka

import (
	"Forwarder/internal/api/config"
	"context"
	"errors"
	log "log/slog"

	"github.com/IBM/sarama"
)

// ConsumerManager 管理帖子摄入消费者
type ConsumerManager struct {
	topic        string
	postConsumer sarama.ConsumerGroup
	postHandler  sarama.ConsumerGroupHandler
}

func NewConsumerManager(cfg config.KafkaConfig, ingester Ingester) (*ConsumerManager, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka ingest enabled without brokers")
	}

	postConsumer, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.Ingest.GroupID, newSaramaConfig(cfg))
	if err != nil {
		return nil, err
	}

	return &ConsumerManager{
		topic:        cfg.Ingest.Topic,
		postConsumer: postConsumer,
		postHandler:  NewPostsHandler(ingester),
	}, nil
}

// Start 阻塞直到 ctx 结束，随后关闭消费者
func (m *ConsumerManager) Start(ctx context.Context) error {
	go func() {
		for err := range m.postConsumer.Errors() {
			log.Error("post consumer error", "err", err)
		}
	}()

	go func() {
		log.Info("post ingest consumer started", "topic", m.topic)
		for {
			if err := m.postConsumer.Consume(ctx, []string{m.topic}, m.postHandler); err != nil {
				if errors.Is(err, sarama.ErrClosedConsumerGroup) {
					return
				}
				log.Error("error from consumer", "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	<-ctx.Done()
	log.Info("kafka consumer manager shutting down...")

	if err := m.postConsumer.Close(); err != nil {
		log.Error("failed to close post consumer", "err", err)
		return err
	}
	return nil
}
