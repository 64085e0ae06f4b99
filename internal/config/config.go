package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	LogLevel  string
	LogPretty bool
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Market    MarketConfig
	Email     EmailConfig
	Report    ReportConfig
	Schedule  ScheduleConfig
}

// ServerConfig holds HTTP status server configuration (daemon mode only)
type ServerConfig struct {
	Port string
	Host string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrationsPath string
}

// RedisConfig holds the optional market-data cache configuration.
// An empty Addr disables caching.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// KafkaConfig holds event publishing configuration.
// Empty Brokers disables publishing.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// MarketConfig holds market-data fetch configuration
type MarketConfig struct {
	BenchmarkSymbol string
	MaxConcurrent   int
	FetchTimeout    time.Duration
}

// EmailConfig holds report delivery configuration
type EmailConfig struct {
	Provider      string // smtp, mailgun, mock
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPassword  string
	MailgunDomain string
	MailgunAPIKey string
	From          string
	FromName      string
	Recipients    []string
}

// ReportConfig holds the holdings source and report shape configuration
type ReportConfig struct {
	PositionsFile string
	TrendDays     int
}

// ScheduleConfig holds the daemon-mode cron schedule (with seconds field)
type ScheduleConfig struct {
	Cron string
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvBool("LOG_PRETTY", false),
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "portfolio"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MigrationsPath: getEnv("DB_MIGRATIONS_PATH", "db/migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      getEnvDuration("MARKET_CACHE_TTL", 6*time.Hour),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getEnv("KAFKA_BROKERS", "")),
			Topic:   getEnv("KAFKA_TOPIC", "portfolio.snapshots"),
		},
		Market: MarketConfig{
			BenchmarkSymbol: getEnv("BENCHMARK_SYMBOL", "SPY"),
			MaxConcurrent:   getEnvInt("MARKET_MAX_CONCURRENT", 4),
			FetchTimeout:    getEnvDuration("MARKET_FETCH_TIMEOUT", 30*time.Second),
		},
		Email: EmailConfig{
			Provider:      getEnv("EMAIL_PROVIDER", "mock"),
			SMTPHost:      getEnv("SMTP_HOST", ""),
			SMTPPort:      getEnvInt("SMTP_PORT", 587),
			SMTPUser:      getEnv("SMTP_USER", ""),
			SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
			MailgunDomain: getEnv("MAILGUN_DOMAIN", ""),
			MailgunAPIKey: getEnv("MAILGUN_API_KEY", ""),
			From:          getEnv("EMAIL_FROM", ""),
			FromName:      getEnv("EMAIL_FROM_NAME", "Portfolio Report"),
			Recipients:    splitList(getEnv("EMAIL_RECIPIENTS", "")),
		},
		Report: ReportConfig{
			PositionsFile: getEnv("POSITIONS_FILE", "positions.csv"),
			TrendDays:     getEnvInt("REPORT_TREND_DAYS", 90),
		},
		Schedule: ScheduleConfig{
			Cron: getEnv("REPORT_SCHEDULE", "0 30 16 * * 1-5"),
		},
	}
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
