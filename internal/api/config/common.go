package config

import "time"

// Config 配置主体
type Config struct {
	Server             ServerConfig       `mapstructure:"server"`
	Log                LogConfig          `mapstructure:"log"`
	Logstash           LogstashConfig     `mapstructure:"logstash"`
	Redis              RedisConfig        `mapstructure:"redis"`
	Elastic            ElasticConfig      `mapstructure:"elastic"`
	Neo4j              Neo4jConfig        `mapstructure:"neo4j"`
	Kafka              KafkaConfig        `mapstructure:"kafka"`
	KafkaMediaConsumer KafkaMediaConsumer `mapstructure:"kafka_media_consumer"`
	Cron               CronConfig         `mapstructure:"cron"`
	Suggestion         SuggestionConfig   `mapstructure:"suggestion"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port int `mapstructure:"port"`
	// CorsOrigins 为空时允许任意来源
	CorsOrigins []string `mapstructure:"cors_origins"`
}

// LogConfig 日志级别 debug/info/warn/error
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// LogstashConfig 远程日志，Address 为空时只输出到 stdout
type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

type RedisConfig struct {
	Addr       string `mapstructure:"addr"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	PoolSize   int    `mapstructure:"pool_size"`
	DefaultTTL int    `mapstructure:"default_ttl"` // 秒
	// EvictOnParseFailure 缓存条目解析失败时是否直接删除，默认保留旧值
	EvictOnParseFailure bool `mapstructure:"evict_on_parse_failure"`
}

// TTL 默认过期时间
func (c RedisConfig) TTL() time.Duration {
	return time.Duration(c.DefaultTTL) * time.Second
}

// ElasticConfig Elastic配置
type ElasticConfig struct {
	Address  string         `mapstructure:"address"`
	Username string         `mapstructure:"username"`
	Password string         `mapstructure:"password"`
	Indices  ElasticIndices `mapstructure:"indices"`
	Retry    RetryConfig    `mapstructure:"retry"`
}

// ElasticIndices Elastic索引
type ElasticIndices struct {
	Main     string `mapstructure:"main"`
	Profiles string `mapstructure:"profiles"`
}

// RetryConfig 索引调用的重试参数，时间单位为毫秒
type RetryConfig struct {
	MaxRetries int     `mapstructure:"max_retries"`
	MinTimeout int     `mapstructure:"min_timeout"`
	MaxTimeout int     `mapstructure:"max_timeout"`
	Factor     float64 `mapstructure:"factor"`
}

// Neo4jConfig 图数据库配置
type Neo4jConfig struct {
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

type KafkaConfig struct {
	Brokers  []string       `mapstructure:"brokers"`
	Sasl     SaslConfig     `mapstructure:"sasl"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
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

type KafkaMediaConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

// CronConfig 定时任务表达式
type CronConfig struct {
	CacheHealth string `mapstructure:"cache_health"`
}

type SuggestionConfig struct {
	DefaultSize int `mapstructure:"default_size"`
}
