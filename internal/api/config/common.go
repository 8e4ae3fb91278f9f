package config

import "time"

// Config 配置主体
type Config struct {
	Server             ServerConfig            `mapstructure:"server"`
	JWT                JWTConfig               `mapstructure:"jwt"`
	DB                 DBConfig                `mapstructure:"database"`
	Redis              RedisConfig             `mapstructure:"redis"`
	Mongo              MongoConfig             `mapstructure:"mongo"`
	MinIO              MinIOConfig             `mapstructure:"minio"`
	Elastic            ElasticConfig           `mapstructure:"elastic"`
	Logstash           LogstashConfig          `mapstructure:"logstash"`
	Upload             UploadConfig            `mapstructure:"upload"`
	Kafka              KafkaConfig             `mapstructure:"kafka"`
	KafkaPostConsumer  KafkaPostConsumer       `mapstructure:"kafka_post_consumer"`
	KafkaViewsConsumer KafkaVideoViewsConsumer `mapstructure:"kafka_views_consumer"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port         int `mapstructure:"port"`
	StoreTimeout int `mapstructure:"store_timeout"` // 秒，单次外部存储调用超时
}

// StoreTimeoutDuration 外部调用超时
func (s ServerConfig) StoreTimeoutDuration() time.Duration {
	if s.StoreTimeout <= 0 {
		return 5 * time.Second
	}
	return time.Duration(s.StoreTimeout) * time.Second
}

// JWTConfig 令牌配置
type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	Issuer     string `mapstructure:"issuer"`
	Expiration int    `mapstructure:"expiration"` // 小时
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type MongoConfig struct {
	URL      string `mapstructure:"url"`
	Database string `mapstructure:"database"`
}

// MinIOConfig MinIO配置
type MinIOConfig struct {
	InternalEndpoint string `mapstructure:"internal_endpoint"`
	ExternalEndpoint string `mapstructure:"external_endpoint"`
	AccessKey        string `mapstructure:"access_key"`
	SecretKey        string `mapstructure:"secret_key"`
	MainBucket       string `mapstructure:"main_bucket"`
	InternalUseSSL   bool   `mapstructure:"internal_use_ssl"`
	UsePublicLink    bool   `mapstructure:"use_public_link"`
	SignedURLExpiry  int    `mapstructure:"signed_url_expiry"` // 小时，上限 168
}

// ElasticConfig Elastic配置
type ElasticConfig struct {
	Address  string         `mapstructure:"address"`
	Username string         `mapstructure:"username"`
	Password string         `mapstructure:"password"`
	Indices  ElasticIndices `mapstructure:"indices"`
}

// ElasticIndices Elastic索引
type ElasticIndices struct {
	PostIndex string `mapstructure:"post_index"`
}

type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

// UploadConfig 上传限制
type UploadConfig struct {
	MaxImageSize  int64 `mapstructure:"max_image_size"`
	MaxVideoSize  int64 `mapstructure:"max_video_size"`
	ImageMaxWidth int   `mapstructure:"image_max_width"`
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

type KafkaPostConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

type KafkaVideoViewsConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}
