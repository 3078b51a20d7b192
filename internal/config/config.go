package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Env          string `mapstructure:"env"`
		Port         string `mapstructure:"port"`
		PublicOrigin string `mapstructure:"public_origin"`
	} `mapstructure:"app"`
	DB struct {
		DSN        string `mapstructure:"dsn"`
		Migrations string `mapstructure:"migrations"`
	} `mapstructure:"db"`
	Redis struct {
		Addr       string        `mapstructure:"addr"`
		Password   string        `mapstructure:"password"`
		SessionTTL time.Duration `mapstructure:"session_ttl"`
	} `mapstructure:"redis"`
	Local struct {
		DataDir string `mapstructure:"data_dir"`
	} `mapstructure:"local"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		GroupID string   `mapstructure:"group_id"`
	} `mapstructure:"kafka"`
	Worker struct {
		SyncInterval time.Duration `mapstructure:"sync_interval"`
		SyncBatch    int           `mapstructure:"sync_batch"`
	} `mapstructure:"worker"`
	Session struct {
		Secret        string        `mapstructure:"secret"`
		TokenLifespan time.Duration `mapstructure:"token_lifespan"`
	} `mapstructure:"session"`
	LLM struct {
		Provider string        `mapstructure:"provider"`
		Timeout  time.Duration `mapstructure:"timeout"`
		OpenAI   struct {
			APIKey  string `mapstructure:"api_key"`
			BaseURL string `mapstructure:"base_url"`
			Model   string `mapstructure:"model"`
		} `mapstructure:"openai"`
		Gemini struct {
			APIKey string `mapstructure:"api_key"`
			Model  string `mapstructure:"model"`
		} `mapstructure:"gemini"`
	} `mapstructure:"llm"`
	Breaker struct {
		MaxRequests      uint32        `mapstructure:"max_requests"`
		Interval         time.Duration `mapstructure:"interval"`
		Timeout          time.Duration `mapstructure:"timeout"`
		MinRequests      uint32        `mapstructure:"min_requests"`
		FailureThreshold float64       `mapstructure:"failure_threshold"`
	} `mapstructure:"breaker"`
	RateLimit struct {
		RequestsPerMinute int `mapstructure:"requests_per_minute"`
		Burst             int `mapstructure:"burst"`
	} `mapstructure:"rate_limit"`
	Cloudinary struct {
		CloudName string `mapstructure:"cloud_name"`
		ApiKey    string `mapstructure:"api_key"`
		ApiSecret string `mapstructure:"api_secret"`
	} `mapstructure:"cloudinary"`
	Tracing struct {
		OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	} `mapstructure:"tracing"`
}

// AIEnabled reports whether any text-generation credentials are configured.
func (c Config) AIEnabled() bool {
	switch c.LLM.Provider {
	case "gemini":
		return c.LLM.Gemini.APIKey != ""
	default:
		return c.LLM.OpenAI.APIKey != ""
	}
}

// RemoteStoreEnabled reports whether the remote snapshot store is configured.
func (c Config) RemoteStoreEnabled() bool {
	return c.DB.DSN != ""
}

func (c Config) UploadsEnabled() bool {
	return c.Cloudinary.CloudName != "" && c.Cloudinary.ApiKey != "" && c.Cloudinary.ApiSecret != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.public_origin", "http://localhost:5173")
	v.SetDefault("db.migrations", "file://migrations")
	v.SetDefault("worker.sync_interval", time.Minute)
	v.SetDefault("worker.sync_batch", 50)
	v.SetDefault("redis.session_ttl", 7*24*time.Hour)
	v.SetDefault("local.data_dir", "./data")
	v.SetDefault("kafka.group_id", "snapshot-sync-group")
	v.SetDefault("session.token_lifespan", 7*24*time.Hour)
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("llm.openai.model", "gpt-4o-mini")
	v.SetDefault("llm.gemini.model", "gemini-2.0-flash")
	v.SetDefault("breaker.max_requests", 1)
	v.SetDefault("breaker.interval", time.Minute)
	v.SetDefault("breaker.timeout", 30*time.Second)
	v.SetDefault("breaker.min_requests", 3)
	v.SetDefault("breaker.failure_threshold", 0.6)
	v.SetDefault("rate_limit.requests_per_minute", 30)
	v.SetDefault("rate_limit.burst", 10)
}

// LoadConfig reads config.yaml from the given paths (default "."), then .env
// and the process environment. Missing files are not an error.
func LoadConfig(paths ...string) (cfg Config, err error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	if err = godotenv.Load(); err != nil {
		log.Println("warning: .env file not found, use default.")
	}

	v := viper.New()
	setDefaults(v)
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err = v.ReadInConfig(); err != nil {
		log.Printf("note: config.yaml not found, read .env only. Error: %v", err)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("app.env", "APP_ENV")
	v.BindEnv("app.port", "APP_PORT")
	v.BindEnv("app.public_origin", "PUBLIC_ORIGIN")
	v.BindEnv("db.dsn", "DB_DSN")
	v.BindEnv("db.migrations", "DB_MIGRATIONS")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.session_ttl", "SESSION_TTL")
	v.BindEnv("local.data_dir", "LOCAL_DATA_DIR")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("kafka.group_id", "KAFKA_GROUP_ID")
	v.BindEnv("worker.sync_interval", "WORKER_SYNC_INTERVAL")
	v.BindEnv("session.secret", "SESSION_SECRET")
	v.BindEnv("session.token_lifespan", "TOKEN_LIFESPAN")
	v.BindEnv("llm.provider", "LLM_PROVIDER")
	v.BindEnv("llm.timeout", "LLM_TIMEOUT")
	v.BindEnv("llm.openai.api_key", "OPENAI_API_KEY")
	v.BindEnv("llm.openai.base_url", "OPENAI_BASE_URL")
	v.BindEnv("llm.openai.model", "OPENAI_MODEL")
	v.BindEnv("llm.gemini.api_key", "GEMINI_API_KEY")
	v.BindEnv("llm.gemini.model", "GEMINI_MODEL")
	v.BindEnv("tracing.otlp_endpoint", "OTLP_ENDPOINT")

	v.BindEnv("cloudinary.cloud_name", "CLOUDINARY_CLOUD_NAME")
	v.BindEnv("cloudinary.api_key", "CLOUDINARY_API_KEY")
	v.BindEnv("cloudinary.api_secret", "CLOUDINARY_API_SECRET")

	if err = v.Unmarshal(&cfg); err != nil {
		return
	}
	err = cfg.applySessionSecret()
	return
}

const devSessionSecret = "skillpath-dev-secret"

var ErrMissingSessionSecret = errors.New("SESSION_SECRET is required in production")

// applySessionSecret falls back to a fixed development secret everywhere
// except production.
func (c *Config) applySessionSecret() error {
	if c.Session.Secret != "" {
		return nil
	}
	if strings.EqualFold(c.App.Env, "production") {
		return ErrMissingSessionSecret
	}
	log.Println("warning: SESSION_SECRET not set, signing sessions with the development secret.")
	c.Session.Secret = devSessionSecret
	return nil
}
