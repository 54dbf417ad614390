package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	JWTSecret string

	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	DatabaseDSN string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleProjectID    string
	GooglePubSubTopic  string
	GoogleCredentials  string

	FirebaseCredentials string

	// Scheduler behavior
	SchedulerTick   time.Duration
	NightStartHour  int
	NightEndHour    int
	LowPowerMode    bool
	CleanupInterval time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	accessExpiry := 15 * time.Minute
	if exp := os.Getenv("JWT_ACCESS_EXPIRY"); exp != "" {
		if parsed, err := time.ParseDuration(exp); err == nil {
			accessExpiry = parsed
		}
	}

	refreshExpiry := 168 * time.Hour // 7 days
	if exp := os.Getenv("JWT_REFRESH_EXPIRY"); exp != "" {
		if parsed, err := time.ParseDuration(exp); err == nil {
			refreshExpiry = parsed
		}
	}

	schedulerTick := 30 * time.Second
	if tick := os.Getenv("SCHEDULER_TICK"); tick != "" {
		if parsed, err := time.ParseDuration(tick); err == nil {
			schedulerTick = parsed
		}
	}

	cleanupInterval := time.Hour
	if iv := os.Getenv("CLEANUP_INTERVAL"); iv != "" {
		if parsed, err := time.ParseDuration(iv); err == nil {
			cleanupInterval = parsed
		}
	}

	return &Config{
		Port:                getEnv("PORT", "8080"),
		JWTSecret:           getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTAccessExpiry:     accessExpiry,
		JWTRefreshExpiry:    refreshExpiry,
		DatabaseDSN:         getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=mailpilot port=5432 sslmode=disable"),
		GoogleClientID:      getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:  getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleProjectID:     getEnv("GOOGLE_PROJECT_ID", ""),
		GooglePubSubTopic:   getEnv("GOOGLE_PUBSUB_TOPIC", "mailbox-updates"),
		GoogleCredentials:   getEnv("GOOGLE_CREDENTIALS", ""),
		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
		SchedulerTick:       schedulerTick,
		NightStartHour:      getEnvInt("NIGHT_START_HOUR", 22),
		NightEndHour:        getEnvInt("NIGHT_END_HOUR", 6),
		LowPowerMode:        getEnv("LOW_POWER_MODE", "false") == "true",
		CleanupInterval:     cleanupInterval,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
