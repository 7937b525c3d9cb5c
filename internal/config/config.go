package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
	Group    string
	Consumer string
}

// LLMConfig points at an OpenAI-compatible chat completions endpoint.
// An empty APIKey switches the classifier to its keyword heuristic.
type LLMConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
}

// AlertsConfig covers both notification channels. Either side left blank
// degrades that channel to logged-only delivery.
type AlertsConfig struct {
	SlackWebhookURL string
	BrevoAPIKey     string
	BrevoEndpoint   string
	SenderName      string
	SenderEmail     string
}

// StorageConfig is optional; an empty Endpoint disables payload archiving.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
}

type JobsConfig struct {
	StaleAfter   time.Duration
	ScanSchedule string
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	LLM              LLMConfig
	Alerts           AlertsConfig
	Storage          StorageConfig
	Jobs             JobsConfig
	AllowCORSOrigins []string
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("MODERATOR")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("postgres.maxopen", 30)
	v.SetDefault("postgres.maxidle", 10)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.stream", "moderation:images")
	v.SetDefault("redis.group", "moderation-workers")
	v.SetDefault("redis.consumer", "worker-1")

	v.SetDefault("llm.baseurl", "https://api.openai.com/v1/chat/completions")
	v.SetDefault("llm.model", "gpt-3.5-turbo")
	v.SetDefault("llm.maxtokens", 50)

	v.SetDefault("alerts.brevoendpoint", "https://api.brevo.com/v3/smtp/email")
	v.SetDefault("alerts.sendername", "Moderator")
	v.SetDefault("alerts.senderemail", "noreply@example.com")

	v.SetDefault("storage.bucket", "moderation-archive")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("jobs.staleafter", "10m")
	v.SetDefault("jobs.scanschedule", "0 */5 * * * *")
}
