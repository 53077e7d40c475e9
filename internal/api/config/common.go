package config

import "time"

// Config 配置主体
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Forwarder  ForwarderConfig  `mapstructure:"forwarder"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level   string `mapstructure:"level"`
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
}

// ClassifierConfig 分类规则
type ClassifierConfig struct {
	PriorityThreshold int      `mapstructure:"priority_threshold"`
	Keywords          []string `mapstructure:"keywords"`
}

// ForwarderConfig 转发配置
type ForwarderConfig struct {
	Sinks                []string      `mapstructure:"sinks"`
	DeliveryTimeout      time.Duration `mapstructure:"delivery_timeout"`
	MaxInFlight          int           `mapstructure:"max_in_flight"`
	SimulatedLatency     time.Duration `mapstructure:"simulated_latency"`
	SimulatedFailureRate float64       `mapstructure:"simulated_failure_rate"`
	Webhook              WebhookConfig `mapstructure:"webhook"`
}

type WebhookConfig struct {
	URL     string            `mapstructure:"url"`
	Headers map[string]string `mapstructure:"headers"`
}

// SchedulerConfig 定时清扫配置
type SchedulerConfig struct {
	Interval   time.Duration `mapstructure:"interval"`
	RunOnStart bool          `mapstructure:"run_on_start"`
}

type RedisConfig struct {
	Addr       string `mapstructure:"addr"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	PoolSize   int    `mapstructure:"pool_size"`
	ForwardKey string `mapstructure:"forward_key"`
	Channel    string `mapstructure:"channel"`
	MaxLen     int64  `mapstructure:"max_len"`
}

type KafkaConfig struct {
	Brokers  []string       `mapstructure:"brokers"`
	Sasl     SaslConfig     `mapstructure:"sasl"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
	Ingest   KafkaIngest    `mapstructure:"ingest"`
	Forward  KafkaForward   `mapstructure:"forward"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ConsumerConfig struct {
	SessionTimeout    int `mapstructure:"session_timeout"`
	HeartbeatInterval int `mapstructure:"heartbeat_interval"`
	RebalanceTimeout  int `mapstructure:"rebalance_timeout"`
	MaxProcessingTime int `mapstructure:"max_processing_time"`
}

// KafkaIngest 从 Kafka 摄入帖子
type KafkaIngest struct {
	Enabled bool   `mapstructure:"enabled"`
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

// KafkaForward 转发到 Kafka
type KafkaForward struct {
	Topic string `mapstructure:"topic"`
}
