package config

import (
	"errors"
	"io/fs"
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

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Overlay  OverlayConfig
	ICS      ICSConfig
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
	AutoMigrate  bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Issuer     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// OverlayConfig tunes the overlay endpoints.
type OverlayConfig struct {
	CacheEnabled    bool
	CacheTTL        time.Duration
	DefaultTimezone string
}

// ICSConfig controls calendar feed fetching and the periodic refresh.
type ICSConfig struct {
	FetchTimeout   time.Duration
	MaxOccurrences int
	RefreshEnabled bool
	RefreshCron    string
	RefreshWorkers int
	RefreshRetries int
}

// Location resolves DefaultTimezone, falling back to UTC.
func (c OverlayConfig) Location() *time.Location {
	if c.DefaultTimezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
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
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
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
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Issuer:     v.GetString("JWT_ISSUER"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Overlay = OverlayConfig{
		CacheEnabled:    v.GetBool("OVERLAY_CACHE_ENABLED"),
		CacheTTL:        parseDuration(v.GetString("OVERLAY_CACHE_TTL"), 5*time.Minute),
		DefaultTimezone: v.GetString("OVERLAY_DEFAULT_TIMEZONE"),
	}

	maxOccurrences := v.GetInt("ICS_MAX_OCCURRENCES")
	if maxOccurrences <= 0 {
		maxOccurrences = 5000
	}
	cfg.ICS = ICSConfig{
		FetchTimeout:   parseDuration(v.GetString("ICS_FETCH_TIMEOUT"), 15*time.Second),
		MaxOccurrences: maxOccurrences,
		RefreshEnabled: v.GetBool("ICS_REFRESH_ENABLED"),
		RefreshCron:    v.GetString("ICS_REFRESH_CRON"),
		RefreshWorkers: v.GetInt("ICS_REFRESH_WORKERS"),
		RefreshRetries: v.GetInt("ICS_REFRESH_RETRIES"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "availability")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "availability-api")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("OVERLAY_CACHE_ENABLED", true)
	v.SetDefault("OVERLAY_CACHE_TTL", "5m")
	v.SetDefault("OVERLAY_DEFAULT_TIMEZONE", "UTC")

	v.SetDefault("ICS_FETCH_TIMEOUT", "15s")
	v.SetDefault("ICS_MAX_OCCURRENCES", 5000)
	v.SetDefault("ICS_REFRESH_ENABLED", false)
	v.SetDefault("ICS_REFRESH_CRON", "*/15 * * * *")
	v.SetDefault("ICS_REFRESH_WORKERS", 2)
	v.SetDefault("ICS_REFRESH_RETRIES", 3)
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
