package kafka

import (
	"Forwarder/internal/api/config"
	"time"

	"github.com/IBM/sarama"
)

// newSaramaConfig 统一初始化 sarama.Config，消费与生产共用
func newSaramaConfig(kafkaCfg config.KafkaConfig) *sarama.Config {
	c := sarama.NewConfig()
	c.ClientID = "forwarder"

	if kafkaCfg.Sasl.Enable {
		c.Net.SASL.Enable = true
		c.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		c.Net.SASL.User = kafkaCfg.Sasl.Username
		c.Net.SASL.Password = kafkaCfg.Sasl.Password
	}

	c.Consumer.Return.Errors = true
	c.Consumer.Offsets.Initial = sarama.OffsetNewest
	c.Consumer.Offsets.AutoCommit.Enable = true

	if v := kafkaCfg.Consumer.SessionTimeout; v > 0 {
		c.Consumer.Group.Session.Timeout = time.Duration(v) * time.Second
	}
	if v := kafkaCfg.Consumer.HeartbeatInterval; v > 0 {
		c.Consumer.Group.Heartbeat.Interval = time.Duration(v) * time.Second
	}
	if v := kafkaCfg.Consumer.RebalanceTimeout; v > 0 {
		c.Consumer.Group.Rebalance.Timeout = time.Duration(v) * time.Second
	}
	if v := kafkaCfg.Consumer.MaxProcessingTime; v > 0 {
		c.Consumer.MaxProcessingTime = time.Duration(v) * time.Second
	}

	// SyncProducer 要求 Return.Successes
	c.Producer.Return.Successes = true
	c.Producer.Return.Errors = true
	c.Producer.RequiredAcks = sarama.WaitForAll
	c.Producer.Retry.Max = 3
	c.Producer.Partitioner = sarama.NewHashPartitioner

	return c
}
