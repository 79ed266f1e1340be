package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Environment        string `mapstructure:"ENV"`
	LogLevel           string `mapstructure:"LOG_LEVEL"`
	Store              string `mapstructure:"STORE"`
	DBDSN              string `mapstructure:"DB_DSN"`
	HTTPAddr           string `mapstructure:"HTTP_ADDR"`
	TelegramToken      string `mapstructure:"TELEGRAM_TOKEN"`
	RedisAddr          string `mapstructure:"REDIS_ADDR"`
	RedisPassword      string `mapstructure:"REDIS_PASSWORD"`
	KafkaBrokers       string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic         string `mapstructure:"KAFKA_TOPIC"`
	MigrationsDir      string `mapstructure:"MIGRATIONS_DIR"`
	AllowTouchingSlots bool   `mapstructure:"ALLOW_TOUCHING_SLOTS"`
	SlotRetentionDays  int    `mapstructure:"SLOT_RETENTION_DAYS"`
}

var defaults = map[string]any{
	"ENV":                  "development",
	"LOG_LEVEL":            "",
	"STORE":                StorePostgres,
	"DB_DSN":               "",
	"HTTP_ADDR":            ":8080",
	"TELEGRAM_TOKEN":       "",
	"REDIS_ADDR":           "",
	"REDIS_PASSWORD":       "",
	"KAFKA_BROKERS":        "",
	"KAFKA_TOPIC":          "calm.slots",
	"MIGRATIONS_DIR":       "migrations",
	"ALLOW_TOUCHING_SLOTS": true,
	"SLOT_RETENTION_DAYS":  30,
}

// Load читает .env (если есть) и переменные окружения
func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	return FromEnv()
}

// FromEnv собирает конфиг из окружения без чтения .env
func FromEnv() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store {
	case StorePostgres:
		// Проверяем обязательные поля
		if c.DBDSN == "" {
			return fmt.Errorf("DB_DSN is required but not set")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE %q (want %s or %s)", c.Store, StorePostgres, StoreMemory)
	}

	if c.LogLevel != "" {
		if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
	}

	if c.SlotRetentionDays < 0 {
		return fmt.Errorf("SLOT_RETENTION_DAYS must not be negative")
	}

	return nil
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
