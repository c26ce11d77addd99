package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Scheduler SchedulerConfig
	Insights  InsightsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds token validation settings. Tokens are minted by the
// identity service; this API only verifies them.
type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig bounds the auto-scheduling pipeline.
type SchedulerConfig struct {
	StepMinutes    int
	MaxSuggestions int
	MaxCandidates  int
	RequestTimeout time.Duration
	HorizonDays    int
}

// InsightsConfig governs caching and refresh behaviour for scheduling insights.
type InsightsConfig struct {
	Enabled      bool
	CacheTTL     time.Duration
	WindowDays   int
	RefreshQueue int
	RefreshRetry int
	RefreshDelay time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scheduler = SchedulerConfig{
		StepMinutes:    v.GetInt("SCHEDULER_STEP_MINUTES"),
		MaxSuggestions: v.GetInt("SCHEDULER_MAX_SUGGESTIONS"),
		MaxCandidates:  v.GetInt("SCHEDULER_MAX_CANDIDATES"),
		RequestTimeout: parseDuration(v.GetString("SCHEDULER_REQUEST_TIMEOUT"), 10*time.Second),
		HorizonDays:    v.GetInt("SCHEDULER_HORIZON_DAYS"),
	}

	cfg.Insights = InsightsConfig{
		Enabled:      v.GetBool("ENABLE_INSIGHTS"),
		CacheTTL:     parseDuration(v.GetString("INSIGHTS_CACHE_TTL"), 10*time.Minute),
		WindowDays:   v.GetInt("INSIGHTS_WINDOW_DAYS"),
		RefreshQueue: v.GetInt("INSIGHTS_REFRESH_WORKERS"),
		RefreshRetry: v.GetInt("INSIGHTS_REFRESH_RETRIES"),
		RefreshDelay: parseDuration(v.GetString("INSIGHTS_REFRESH_RETRY_DELAY"), 5*time.Second),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "roadwise")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SCHEDULER_STEP_MINUTES", 15)
	v.SetDefault("SCHEDULER_MAX_SUGGESTIONS", 20)
	v.SetDefault("SCHEDULER_MAX_CANDIDATES", 5000)
	v.SetDefault("SCHEDULER_REQUEST_TIMEOUT", "10s")
	v.SetDefault("SCHEDULER_HORIZON_DAYS", 30)

	v.SetDefault("ENABLE_INSIGHTS", true)
	v.SetDefault("INSIGHTS_CACHE_TTL", "10m")
	v.SetDefault("INSIGHTS_WINDOW_DAYS", 30)
	v.SetDefault("INSIGHTS_REFRESH_WORKERS", 1)
	v.SetDefault("INSIGHTS_REFRESH_RETRIES", 3)
	v.SetDefault("INSIGHTS_REFRESH_RETRY_DELAY", "5s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
