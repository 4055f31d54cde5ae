package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store backends.
const (
	StoreMongo     = "mongo"
	StoreFirestore = "firestore"
	StoreMemory    = "memory"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	// TrustedProxies lists proxy IPs or CIDRs whose X-Forwarded-For is honoured.
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES"`

	// Slot store.
	StoreBackend string `mapstructure:"STORE_BACKEND"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Firebase (Firestore backend and FCM pushes).
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
	FirebaseProjectID       string `mapstructure:"FIREBASE_PROJECT_ID"`

	// Redis configuration. An empty address disables the cache and the queue.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	DayViewCacheTTL      time.Duration `mapstructure:"DAY_VIEW_CACHE_TTL"`
	NotificationsEnabled bool          `mapstructure:"NOTIFICATIONS_ENABLED"`
	MaxPlanDays          int           `mapstructure:"MAX_PLAN_DAYS"`
	BookingMaxAttempts   int           `mapstructure:"BOOKING_MAX_ATTEMPTS"`
}

var AppConfig Config

// LoadConfig reads config.yaml (if any) and the environment into AppConfig.
func LoadConfig() (*Config, error) {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("TRUSTED_PROXIES", []string{})
	viper.SetDefault("STORE_BACKEND", StoreMongo)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "medislot")
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "")
	viper.SetDefault("FIREBASE_PROJECT_ID", "")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("DAY_VIEW_CACHE_TTL", "5m")
	viper.SetDefault("NOTIFICATIONS_ENABLED", false)
	viper.SetDefault("MAX_PLAN_DAYS", 90)
	viper.SetDefault("BOOKING_MAX_ATTEMPTS", 5)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	AppConfig = cfg
	return &cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case StoreMongo:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required for the mongo store")
		}
	case StoreFirestore:
		if c.FirebaseProjectID == "" && c.FirebaseCredentialsFile == "" {
			return fmt.Errorf("config: FIREBASE_PROJECT_ID or FIREBASE_CREDENTIALS_FILE is required for the firestore store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("config: unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.MaxRequestsPerMin <= 0 {
		return fmt.Errorf("config: MAX_REQUESTS_PER_MIN must be positive")
	}
	if c.MaxPlanDays <= 0 {
		return fmt.Errorf("config: MAX_PLAN_DAYS must be positive")
	}
	if c.BookingMaxAttempts <= 0 {
		return fmt.Errorf("config: BOOKING_MAX_ATTEMPTS must be positive")
	}
	return nil
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
