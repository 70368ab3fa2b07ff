// Package config loads the process configuration from the environment, optionally seeded by a .env file.
package config

import (
	"fmt"
	"sync"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// PostgresEndpoint is one side of the read/write split.
type PostgresEndpoint struct {
	Host     string `envconfig:"HOST"`
	Port     string `envconfig:"PORT"`
	Username string `envconfig:"USER"`
	Password string `envconfig:"PASSWORD"`
	Name     string `envconfig:"NAME"`
	Timezone string `envconfig:"TIMEZONE"`
	SSLMode  string `envconfig:"SSL_MODE"`
}

type RedisEndpoint struct {
	Host     string `envconfig:"HOST"`
	Port     string `envconfig:"PORT"`
	Password string `envconfig:"PASSWORD"`
	DB       int    `envconfig:"DB"`
}

// Config mirrors the environment. Nested struct tags compose the variable name, e.g. DB_POSTGRES_WRITE_HOST.
type Config struct {
	Server struct {
		Env      string `envconfig:"ENV"`
		LogLevel string `envconfig:"LOG_LEVEL"`
		Port     string `envconfig:"PORT"`
		Host     string `envconfig:"HOST"`
		Shutdown struct {
			CleanupPeriodSeconds int64 `envconfig:"CLEANUP_PERIOD_SECONDS"`
			GracePeriodSeconds   int64 `envconfig:"GRACE_PERIOD_SECONDS"`
		} `envconfig:"SHUTDOWN"`
	} `envconfig:"SERVER"`

	App struct {
		Name     string `envconfig:"APP_NAME"`
		Timezone string `envconfig:"TIMEZONE"`
		Locale   string `envconfig:"LOCALE"   default:"en"`
		CORS     struct {
			AllowCredentials bool     `envconfig:"ALLOW_CREDENTIALS"`
			AllowedHeaders   []string `envconfig:"ALLOWED_HEADERS"`
			AllowedMethods   []string `envconfig:"ALLOWED_METHODS"`
			AllowedOrigins   []string `envconfig:"ALLOWED_ORIGINS"`
			Enable           bool     `envconfig:"ENABLE"`
			MaxAgeSeconds    int      `envconfig:"MAX_AGE_SECONDS"`
		} `envconfig:"CORS"`
		RateLimiter struct {
			Enable        bool `envconfig:"ENABLE"`
			MaxRequests   int  `envconfig:"MAX_REQUESTS"`
			WindowSeconds int  `envconfig:"WINDOW_SECONDS"`
		} `envconfig:"RATE_LIMITER"`
		APIKey string `envconfig:"API_KEY"`
	} `envconfig:"APP"`

	Cache struct {
		Redis struct {
			Primary RedisEndpoint `envconfig:"PRIMARY"`
		} `envconfig:"REDIS"`
		Local struct {
			MaxSize    int64 `envconfig:"MAX_SIZE"    default:"500"`
			TTLSeconds int   `envconfig:"TTL_SECONDS" default:"30"`
		} `envconfig:"LOCAL"`
		TTL int `envconfig:"TTL"`
	} `envconfig:"CACHE"`

	JWT struct {
		AccessSecret     string `envconfig:"ACCESS_SECRET"`
		RefreshSecret    string `envconfig:"REFRESH_SECRET"`
		AccessExpireMin  int    `envconfig:"ACCESS_EXPIRE_MIN"`
		RefreshExpireMin int    `envconfig:"REFRESH_EXPIRE_MIN"`
	} `envconfig:"JWT"`

	DB struct {
		Postgres struct {
			MaxRetry       int              `envconfig:"MAX_RETRY"`
			RetryWaitTime  int              `envconfig:"RETRY_WAIT_TIME"`
			MigrationTable string           `envconfig:"MIGRATION_TABLE"`
			AutoMigrate    bool             `envconfig:"AUTO_MIGRATE"`
			Prefix         string           `envconfig:"PREFIX"`
			Read           PostgresEndpoint `envconfig:"READ"`
			Write          PostgresEndpoint `envconfig:"WRITE"`
		} `envconfig:"POSTGRES"`
	} `envconfig:"DB"`

	Kafka struct {
		Brokers       []string `envconfig:"BROKERS"`
		ConsumerGroup string   `envconfig:"CONSUMER_GROUP"`
		SASL          struct {
			Username string `envconfig:"USERNAME"`
			Password string `envconfig:"PASSWORD"`
		} `envconfig:"SASL"`
		Topics struct {
			AssetCleanup string `envconfig:"ASSET_CLEANUP" default:"asset.cleanup"`
		} `envconfig:"TOPICS"`
		Cleanup struct {
			MaxAttempts int `envconfig:"MAX_ATTEMPTS" default:"5"`
		} `envconfig:"CLEANUP"`
	} `envconfig:"KAFKA"`

	Image struct {
		Quality struct {
			MinWidth          int      `envconfig:"MIN_WIDTH"          default:"800"`
			MinHeight         int      `envconfig:"MIN_HEIGHT"         default:"600"`
			RecommendedWidth  int      `envconfig:"RECOMMENDED_WIDTH"  default:"1920"`
			RecommendedHeight int      `envconfig:"RECOMMENDED_HEIGHT" default:"1080"`
			MaxBytes          int64    `envconfig:"MAX_BYTES"          default:"10485760"`
			AllowedFormats    []string `envconfig:"ALLOWED_FORMATS"    default:"jpeg,png,webp"`
			AutoReject        bool     `envconfig:"AUTO_REJECT"        default:"false"`
		} `envconfig:"QUALITY"`
		MaxBatchFiles int `envconfig:"MAX_BATCH_FILES" default:"20"`
	} `envconfig:"IMAGE"`

	External struct {
		Otel struct {
			Endpoint string `envconfig:"ENDPOINT"`
		} `envconfig:"OTEL"`
		S3 struct {
			BucketName      string `envconfig:"BUCKET_NAME"`
			APIEndpoint     string `envconfig:"API_ENDPOINT"`
			AccessKeyID     string `envconfig:"ACCESS_KEY_ID"`
			SecretAccessKey string `envconfig:"SECRET_ACCESS_KEY"`
			PublicDomain    string `envconfig:"PUBLIC_DOMAIN"`
			ResizeBaseURL   string `envconfig:"RESIZE_BASE_URL"`
			Folder          string `envconfig:"FOLDER" default:"lodge"`
		} `envconfig:"S3"`
	} `envconfig:"EXTERNAL"`
}

var (
	conf    Config
	once    sync.Once
	loadErr error
)

// Load reads an optional .env file and then the environment into a fresh Config.
func Load(envFile string) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil {
		log.Debug().Err(err).Str("file", envFile).Msg("No env file, using the process environment only")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	return &cfg, nil
}

// Init loads the process-wide Config once.
func Init() error {
	once.Do(func() {
		var cfg *Config

		if cfg, loadErr = Load(".env"); loadErr != nil {
			return
		}

		conf = *cfg

		log.Info().Str("env", conf.Server.Env).Msg("Service configuration loaded")
	})

	return loadErr
}

// Get returns the process-wide Config and exits when the environment cannot be parsed.
func Get() *Config {
	if err := Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	return &conf
}
