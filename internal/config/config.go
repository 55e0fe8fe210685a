// Package config loads application settings from YAML and the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Conf holds the settings loaded by Init.
var Conf Config

// Config mirrors configs/config.yaml.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Log           LogConfig           `mapstructure:"log"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
	Embedding     EmbeddingConfig     `mapstructure:"embedding"`
	LLM           LLMConfig           `mapstructure:"llm"`
	Retrieval     RetrievalConfig     `mapstructure:"retrieval"`
	CORS          CORSConfig          `mapstructure:"cors"`
}

type ServerConfig struct {
	Port        string `mapstructure:"port"`
	Mode        string `mapstructure:"mode"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
}

type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret                 string `mapstructure:"secret"`
	AccessTokenExpireHours int    `mapstructure:"access_token_expire_hours"`
	RefreshTokenExpireDays int    `mapstructure:"refresh_token_expire_days"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// KafkaConfig configures the example-ingestion topic.
type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

type ElasticsearchConfig struct {
	Addresses string `mapstructure:"addresses"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	IndexName string `mapstructure:"index_name"`
}

// MinIOConfig points at the bucket holding uploaded trending manifests.
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

type EmbeddingConfig struct {
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	Model      string `mapstructure:"model"`
	Dimensions int    `mapstructure:"dimensions"`
}

// LLMConfig configures the OpenAI-compatible chat completion endpoint.
type LLMConfig struct {
	APIKey         string              `mapstructure:"api_key"`
	BaseURL        string              `mapstructure:"base_url"`
	Model          string              `mapstructure:"model"`
	TimeoutSeconds int                 `mapstructure:"timeout_seconds"`
	MaxRetries     int                 `mapstructure:"max_retries"`
	Generation     LLMGenerationConfig `mapstructure:"generation"`
	Prompt         LLMPromptConfig     `mapstructure:"prompt"`
}

type LLMGenerationConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	TopP        float64 `mapstructure:"top_p"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// LLMPromptConfig overrides pieces of the assembled prompt. Empty values keep
// the built-in defaults.
type LLMPromptConfig struct {
	System       string `mapstructure:"system"`
	RefStart     string `mapstructure:"ref_start"`
	RefEnd       string `mapstructure:"ref_end"`
	NoResultText string `mapstructure:"no_result_text"`
}

type RetrievalConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	TopK            int  `mapstructure:"top_k"`
	CacheTTLSeconds int  `mapstructure:"cache_ttl_seconds"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Init reads configPath into Conf. Environment variables override file
// values, e.g. LLM_API_KEY for llm.api_key. A missing file is tolerated so
// the service can run from the environment alone.
func Init(configPath string) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !isNotExist(err) {
			panic(fmt.Errorf("read config file: %w", err))
		}
	}

	if err := v.Unmarshal(&Conf); err != nil {
		panic(fmt.Errorf("decode config: %w", err))
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.version", "1.0.0")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	// Keys must be known to viper for AutomaticEnv to reach them on Unmarshal.
	for _, key := range []string{
		"database.mysql.dsn", "database.redis.password", "jwt.secret",
		"elasticsearch.username", "elasticsearch.password",
		"minio.endpoint", "minio.access_key_id", "minio.secret_access_key",
		"embedding.api_key", "embedding.base_url", "llm.api_key", "llm.prompt.system",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("database.redis.addr", "localhost:6379")
	v.SetDefault("jwt.access_token_expire_hours", 24)
	v.SetDefault("jwt.refresh_token_expire_days", 7)
	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.topic", "example-ingest")
	v.SetDefault("kafka.group_id", "content-consultant-ingest")
	v.SetDefault("elasticsearch.addresses", "http://localhost:9200")
	v.SetDefault("elasticsearch.index_name", "viral_posts")
	v.SetDefault("minio.bucket_name", "trending-manifests")
	v.SetDefault("embedding.model", "text-embedding-3-small")
	v.SetDefault("embedding.dimensions", 384)
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.timeout_seconds", 30)
	v.SetDefault("llm.max_retries", 1)
	v.SetDefault("llm.generation.temperature", 0.7)
	v.SetDefault("llm.generation.max_tokens", 1000)
	v.SetDefault("retrieval.enabled", true)
	v.SetDefault("retrieval.top_k", 5)
	v.SetDefault("retrieval.cache_ttl_seconds", 600)
	v.SetDefault("cors.allowed_origins", []string{"*"})
}

func isNotExist(err error) bool {
	return strings.Contains(err.Error(), "no such file")
}
