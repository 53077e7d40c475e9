package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Cfg 全局可访问的配置实例
var Cfg *Config

// DefaultKeywords 默认的紧急关键词
var DefaultKeywords = []string{"urgent", "important", "breaking", "alert"}

const (
	DefaultPriorityThreshold = 4
	DefaultSweepInterval     = 5 * time.Minute
	envPrefix                = "FORWARDER"
)

// LoadConfig 从文件加载配置并填充到 Cfg，文件缺失时使用默认值
func LoadConfig(paths ...string) error {
	cfg, err := Load(paths...)
	if err != nil {
		return err
	}
	Cfg = cfg
	return nil
}

// Load 读取配置但不修改全局实例
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"./configs"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.address", "")
	v.SetDefault("log.index", "logstash-forwarder")

	v.SetDefault("classifier.priority_threshold", DefaultPriorityThreshold)
	v.SetDefault("classifier.keywords", DefaultKeywords)

	v.SetDefault("forwarder.sinks", []string{"log"})
	v.SetDefault("forwarder.delivery_timeout", 10*time.Second)
	v.SetDefault("forwarder.max_in_flight", 16)
	v.SetDefault("forwarder.simulated_latency", time.Duration(0))
	v.SetDefault("forwarder.simulated_failure_rate", 0.0)
	v.SetDefault("forwarder.webhook.url", "")

	v.SetDefault("scheduler.interval", DefaultSweepInterval)
	v.SetDefault("scheduler.run_on_start", false)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.channel", "")
	v.SetDefault("redis.forward_key", "forwarder:forwarded")
	v.SetDefault("redis.max_len", 10000)

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.sasl.enable", false)
	v.SetDefault("kafka.sasl.username", "")
	v.SetDefault("kafka.sasl.password", "")
	v.SetDefault("kafka.consumer.session_timeout", 10)
	v.SetDefault("kafka.consumer.heartbeat_interval", 3)
	v.SetDefault("kafka.consumer.rebalance_timeout", 60)
	v.SetDefault("kafka.consumer.max_processing_time", 30)
	v.SetDefault("kafka.ingest.enabled", false)
	v.SetDefault("kafka.ingest.topic", "posts.incoming")
	v.SetDefault("kafka.ingest.group_id", "post-forwarder")
	v.SetDefault("kafka.forward.topic", "posts.forwarded")
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d", c.Server.Port)
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("invalid scheduler.interval: %s", c.Scheduler.Interval)
	}
	if c.Forwarder.DeliveryTimeout <= 0 {
		return fmt.Errorf("invalid forwarder.delivery_timeout: %s", c.Forwarder.DeliveryTimeout)
	}
	if c.Forwarder.SimulatedFailureRate < 0 || c.Forwarder.SimulatedFailureRate > 1 {
		return fmt.Errorf("forwarder.simulated_failure_rate must be within [0,1]")
	}
	return nil
}
