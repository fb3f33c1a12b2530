package config

import (
	"errors"
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Cfg 全局可访问的配置实例
var Cfg *Config

// LoadConfig 从文件加载配置并填充到 Cfg
func LoadConfig() error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.SetEnvPrefix("MOSAIC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg, err := unmarshal(v)
	if err != nil {
		return err
	}
	if err = cfg.Validate(); err != nil {
		return pkgerrors.WithStack(err)
	}

	Cfg = cfg
	return nil
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// setDefaults 注册默认值，未出现在配置文件中的键使用这些值
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.default_ttl", 3600)
	v.SetDefault("redis.evict_on_parse_failure", false)

	v.SetDefault("elastic.address", "http://localhost:9200")
	v.SetDefault("elastic.indices.main", "main")
	v.SetDefault("elastic.indices.profiles", "profiles")
	v.SetDefault("elastic.retry.max_retries", 3)
	v.SetDefault("elastic.retry.min_timeout", 100)
	v.SetDefault("elastic.retry.max_timeout", 2000)
	v.SetDefault("elastic.retry.factor", 2.0)

	v.SetDefault("neo4j.uri", "neo4j://localhost:7687")
	v.SetDefault("neo4j.database", "neo4j")

	v.SetDefault("kafka.consumer.session_timeout", 10)
	v.SetDefault("kafka.consumer.heartbeat_interval", 3)
	v.SetDefault("kafka.consumer.rebalance_timeout", 60)
	v.SetDefault("kafka.consumer.max_processing_time", 30)
	v.SetDefault("kafka_media_consumer.topic", "media-processed")
	v.SetDefault("kafka_media_consumer.group_id", "mosaic-media")

	v.SetDefault("cron.cache_health", "@every 30s")
	v.SetDefault("suggestion.default_size", 5)
}

// Validate 校验启动所需的配置项，这是缓存/索引层唯一允许向外抛出的错误
func (c *Config) Validate() error {
	switch {
	case c.Redis.Addr == "":
		return errors.New("redis.addr is required")
	case c.Redis.DefaultTTL <= 0:
		return errors.New("redis.default_ttl must be positive")
	case c.Elastic.Address == "":
		return errors.New("elastic.address is required")
	case c.Elastic.Indices.Main == "" || c.Elastic.Indices.Profiles == "":
		return errors.New("elastic.indices.main and elastic.indices.profiles are required")
	case c.Elastic.Retry.MaxRetries < 0:
		return errors.New("elastic.retry.max_retries must not be negative")
	case c.Elastic.Retry.MinTimeout <= 0 || c.Elastic.Retry.MaxTimeout < c.Elastic.Retry.MinTimeout:
		return errors.New("elastic.retry timeouts must satisfy 0 < min_timeout <= max_timeout")
	case c.Elastic.Retry.Factor < 1:
		return errors.New("elastic.retry.factor must be >= 1")
	case c.Neo4j.URI == "":
		return errors.New("neo4j.uri is required")
	}
	return nil
}
