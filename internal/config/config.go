// Package config provides configuration management for the wallet referral
// bot. It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Airdrop  AirdropConfig
	Batch    BatchConfig
	Bot      BotConfig
	Storage  StorageConfig
	Logging  LoggingConfig
}

// AirdropConfig holds remote airdrop service configuration
type AirdropConfig struct {
	BaseURL     string
	HTTPTimeout time.Duration // explicit: the service otherwise implies an unbounded wait
}

// BatchConfig holds wallet batch processing configuration
type BatchConfig struct {
	StepDelay        time.Duration // pacing between pipeline steps within one wallet
	WalletDelay      time.Duration // pacing between wallets within one batch
	MaxPerDay        int           // default daily quota; admin can change it at runtime
	ConflictRetries  int           // consecutive 409 responses tolerated before aborting
	ReferralCodeLen  int
}

// BotConfig holds Telegram transport configuration. Token and AdminID may
// be left empty, in which case the entry point prompts for them on stdin.
type BotConfig struct {
	Token           string
	AdminID         int64
	UpdateTimeout   int           // long-poll timeout in seconds
	ConversationTTL time.Duration // idle time after which a half-finished conversation expires
}

// StorageConfig holds flat-file persistence configuration
type StorageConfig struct {
	DataDir string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() (*Config, error) {
	// .env file is optional - environment variables can be set directly
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	config := &Config{
		Airdrop: AirdropConfig{
			BaseURL:     getEnv("AIRDROP_BASE_URL", "https://api.zoro.org"),
			HTTPTimeout: getEnvAsDuration("AIRDROP_HTTP_TIMEOUT", 30*time.Second),
		},
		Batch: BatchConfig{
			StepDelay:       getEnvAsDuration("BATCH_STEP_DELAY", 500*time.Millisecond),
			WalletDelay:     getEnvAsDuration("BATCH_WALLET_DELAY", 1*time.Second),
			MaxPerDay:       getEnvAsInt("BATCH_MAX_PER_DAY", 100),
			ConflictRetries: getEnvAsInt("BATCH_CONFLICT_RETRIES", 3),
			ReferralCodeLen: getEnvAsInt("REFERRAL_CODE_LENGTH", 15),
		},
		Bot: BotConfig{
			Token:           getEnv("TELEGRAM_BOT_TOKEN", ""),
			AdminID:         int64(getEnvAsInt("ADMIN_ID", 0)),
			UpdateTimeout:   getEnvAsInt("BOT_UPDATE_TIMEOUT", 60),
			ConversationTTL: getEnvAsDuration("BOT_CONVERSATION_TTL", 15*time.Minute),
		},
		Storage: StorageConfig{
			DataDir: getEnv("DATA_DIR", "."),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	if config.Batch.MaxPerDay <= 0 {
		return nil, fmt.Errorf("BATCH_MAX_PER_DAY must be positive, got %d", config.Batch.MaxPerDay)
	}
	if config.Batch.ConflictRetries <= 0 {
		return nil, fmt.Errorf("BATCH_CONFLICT_RETRIES must be positive, got %d", config.Batch.ConflictRetries)
	}

	return config, nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
