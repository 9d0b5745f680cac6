// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultAccessSecret = "access-secret-change-in-production"
const defaultRefreshSecret = "refresh-secret-change-in-production"

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	FeatureFlags   string `mapstructure:"FEATURE_FLAGS"`

	DBHost                   string `mapstructure:"DB_HOST"`
	DBPort                   string `mapstructure:"DB_PORT"`
	DBUser                   string `mapstructure:"DB_USER"`
	DBPassword               string `mapstructure:"DB_PASSWORD"`
	DBName                   string `mapstructure:"DB_NAME"`
	DBSSLMode                string `mapstructure:"DB_SSLMODE"`
	DBReadHost               string `mapstructure:"DB_READ_HOST"`
	DBReadPort               string `mapstructure:"DB_READ_PORT"`
	DBReadUser               string `mapstructure:"DB_READ_USER"`
	DBReadPassword           string `mapstructure:"DB_READ_PASSWORD"`
	DBMaxOpenConns           int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns           int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeMinutes int    `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`

	DBSchemaMode                  string `mapstructure:"DB_SCHEMA_MODE"`
	DBAutoMigrateAllowDestructive bool   `mapstructure:"DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE"`

	RedisURL string `mapstructure:"REDIS_URL"`

	AccessTokenSecret  string        `mapstructure:"ACCESS_TOKEN_SECRET"`
	AccessTokenExpiry  time.Duration `mapstructure:"ACCESS_TOKEN_EXPIRY"`
	RefreshTokenSecret string        `mapstructure:"REFRESH_TOKEN_SECRET"`
	RefreshTokenExpiry time.Duration `mapstructure:"REFRESH_TOKEN_EXPIRY"`

	StorageDriver    string `mapstructure:"STORAGE_DRIVER"`
	StorageLocalDir  string `mapstructure:"STORAGE_LOCAL_DIR"`
	StoragePublicURL string `mapstructure:"STORAGE_PUBLIC_URL"`
	S3Bucket         string `mapstructure:"S3_BUCKET"`
	S3Region         string `mapstructure:"S3_REGION"`
	S3Endpoint       string `mapstructure:"S3_ENDPOINT"`
	S3AccessKey      string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey      string `mapstructure:"S3_SECRET_KEY"`
	UploadTmpDir     string `mapstructure:"UPLOAD_TMP_DIR"`
	MaxUploadSizeMB  int    `mapstructure:"MAX_UPLOAD_SIZE_MB"`

	TracingEnabled  bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint    string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampler  float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	// A local .env never overrides variables already set in the environment.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base config file is optional.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.DBSSLMode = strings.ToLower(strings.TrimSpace(config.DBSSLMode))
	config.StorageDriver = strings.ToLower(strings.TrimSpace(config.StorageDriver))

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("PORT", "8000")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("FEATURE_FLAGS", "")

	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "vidtube")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_READ_HOST", "")
	viper.SetDefault("DB_READ_PORT", "5432")
	viper.SetDefault("DB_READ_USER", "user")
	viper.SetDefault("DB_READ_PASSWORD", "password")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 5)
	viper.SetDefault("DB_SCHEMA_MODE", "hybrid")
	viper.SetDefault("DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE", false)

	viper.SetDefault("REDIS_URL", "localhost:6379")

	viper.SetDefault("ACCESS_TOKEN_SECRET", defaultAccessSecret)
	viper.SetDefault("ACCESS_TOKEN_EXPIRY", "1h")
	viper.SetDefault("REFRESH_TOKEN_SECRET", defaultRefreshSecret)
	viper.SetDefault("REFRESH_TOKEN_EXPIRY", "240h")

	viper.SetDefault("STORAGE_DRIVER", "local")
	viper.SetDefault("STORAGE_LOCAL_DIR", "./data/uploads")
	viper.SetDefault("STORAGE_PUBLIC_URL", "http://localhost:8000/media")
	viper.SetDefault("S3_REGION", "us-east-1")
	viper.SetDefault("UPLOAD_TMP_DIR", "./data/tmp")
	viper.SetDefault("MAX_UPLOAD_SIZE_MB", 512)

	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)
}

// IsProduction reports whether the config targets a production environment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.AccessTokenSecret == "" || c.RefreshTokenSecret == "" {
		return errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET are required")
	}
	if c.AccessTokenExpiry <= 0 || c.RefreshTokenExpiry <= 0 {
		return errors.New("ACCESS_TOKEN_EXPIRY and REFRESH_TOKEN_EXPIRY must be positive durations")
	}
	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}

	switch c.StorageDriver {
	case "", "local":
	case "s3":
		if c.S3Bucket == "" || c.S3Region == "" {
			return errors.New("S3_BUCKET and S3_REGION are required when STORAGE_DRIVER=s3")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.IsProduction() {
		if c.AccessTokenSecret == defaultAccessSecret || c.RefreshTokenSecret == defaultRefreshSecret {
			return errors.New("token secrets must be changed from the default values in production")
		}
		if len(c.AccessTokenSecret) < 32 || len(c.RefreshTokenSecret) < 32 {
			return errors.New("token secrets must be at least 32 characters in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			return errors.New("DB_SSLMODE must not be 'disable' in production")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else if len(c.AccessTokenSecret) < 32 {
		log.Println("WARNING: ACCESS_TOKEN_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
	}

	return nil
}

// MaxUploadBytes returns the multipart upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	if c.MaxUploadSizeMB <= 0 {
		return 512 * 1024 * 1024
	}
	return int64(c.MaxUploadSizeMB) * 1024 * 1024
}
