// Package config loads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Log level and log type values accepted by LoggerSettings.
const (
	LogLevelDebug   = "debug"
	LogLevelInfo    = "info"
	LogLevelWarning = "warning"
	LogLevelError   = "error"

	LogTypeConsole = "console"
	LogTypeFile    = "file"
)

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is the root configuration of the service.
type Config struct {
	App      AppSettings      `mapstructure:",squash"`
	Database DatabaseSettings `mapstructure:",squash"`
	Redis    RedisSettings    `mapstructure:",squash"`
	JWT      JWTSettings      `mapstructure:",squash"`
	Logger   LoggerSettings   `mapstructure:",squash"`
	Kafka    KafkaSettings    `mapstructure:",squash"`
	Mail     MailSettings     `mapstructure:",squash"`
}

// AppSettings configures the HTTP surface.
type AppSettings struct {
	Env                string `mapstructure:"APP_ENV" validate:"required"`
	Port               int    `mapstructure:"HTTP_PORT" validate:"required,min=1,max=65535"`
	APIPrefix          string `mapstructure:"API_PREFIX" validate:"required,startswith=/"`
	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RateLimitAuth      string `mapstructure:"RATE_LIMIT_AUTH" validate:"required"`
}

// DatabaseSettings selects and configures the SQL database.
type DatabaseSettings struct {
	Driver         string        `mapstructure:"DB_DRIVER" validate:"required,oneof=postgres sqlite"`
	Host           string        `mapstructure:"DB_HOST"`
	Port           string        `mapstructure:"DB_PORT"`
	User           string        `mapstructure:"DB_USER"`
	Password       string        `mapstructure:"DB_PASSWORD"`
	Name           string        `mapstructure:"DB_NAME"`
	SSLMode        string        `mapstructure:"DB_SSLMODE"`
	SQLitePath     string        `mapstructure:"DB_SQLITE_PATH"`
	ConnectTimeout time.Duration `mapstructure:"DB_CONNECT_TIMEOUT" validate:"gt=0"`
	RunMigrations  bool          `mapstructure:"RUN_MIGRATIONS"`
}

// RedisSettings configures Redis. An empty host disables Redis.
type RedisSettings struct {
	Host     string        `mapstructure:"REDIS_HOST"`
	Port     string        `mapstructure:"REDIS_PORT"`
	Password string        `mapstructure:"REDIS_PASSWORD"`
	CacheTTL time.Duration `mapstructure:"CACHE_TTL" validate:"gt=0"`
}

// JWTSettings configures access and refresh tokens.
type JWTSettings struct {
	Secret             string `mapstructure:"JWT_SECRET" validate:"required"`
	RefreshSecret      string `mapstructure:"JWT_REFRESH_SECRET" validate:"required,nefield=Secret"`
	Expiration         string `mapstructure:"JWT_EXPIRATION" validate:"required"`
	RefreshExpiration  string `mapstructure:"JWT_REFRESH_EXPIRATION" validate:"required"`
	MaxSessionsPerUser int    `mapstructure:"MAX_SESSIONS_PER_USER" validate:"min=1"`
}

// LoggerSettings configures the slog logger.
type LoggerSettings struct {
	Level      string `mapstructure:"LOG_LEVEL" validate:"required,oneof=debug info warning error"`
	Type       string `mapstructure:"LOG_TYPE" validate:"required,oneof=console file"`
	FilePath   string `mapstructure:"LOG_FILE_PATH" validate:"required_if=Type file"`
	MaxSize    int    `mapstructure:"LOG_MAX_SIZE" validate:"min=1,max=100"`
	MaxBackups int    `mapstructure:"LOG_MAX_BACKUPS" validate:"min=1,max=10"`
	MaxAge     int    `mapstructure:"LOG_MAX_AGE" validate:"min=1,max=365"`
}

// KafkaSettings configures the domain event producer. Empty brokers disable Kafka.
type KafkaSettings struct {
	Brokers     string `mapstructure:"KAFKA_BROKERS"`
	TopicPrefix string `mapstructure:"KAFKA_TOPIC_PREFIX" validate:"required"`
}

// MailSettings configures the outbound mail relay.
type MailSettings struct {
	WebhookURL       string        `mapstructure:"MAIL_WEBHOOK_URL" validate:"omitempty,url"`
	Timeout          time.Duration `mapstructure:"MAIL_TIMEOUT" validate:"gt=0"`
	PasswordResetURL string        `mapstructure:"PASSWORD_RESET_URL" validate:"required,url"`
}

var defaults = map[string]any{
	"APP_ENV":                "development",
	"HTTP_PORT":              8080,
	"API_PREFIX":             "/api/v1",
	"CORS_ALLOWED_ORIGINS":   "*",
	"RATE_LIMIT_AUTH":        "20-M",
	"DB_DRIVER":              DriverPostgres,
	"DB_HOST":                "localhost",
	"DB_PORT":                "5432",
	"DB_USER":                "postgres",
	"DB_PASSWORD":            "",
	"DB_NAME":                "insurance",
	"DB_SSLMODE":             "disable",
	"DB_SQLITE_PATH":         "insurance.db",
	"DB_CONNECT_TIMEOUT":     "60s",
	"RUN_MIGRATIONS":         false,
	"REDIS_HOST":             "",
	"REDIS_PORT":             "6379",
	"REDIS_PASSWORD":         "",
	"CACHE_TTL":              "300s",
	"JWT_SECRET":             "",
	"JWT_REFRESH_SECRET":     "",
	"JWT_EXPIRATION":         "15m",
	"JWT_REFRESH_EXPIRATION": "7d",
	"MAX_SESSIONS_PER_USER":  5,
	"LOG_LEVEL":              LogLevelInfo,
	"LOG_TYPE":               LogTypeConsole,
	"LOG_FILE_PATH":          "",
	"LOG_MAX_SIZE":           10,
	"LOG_MAX_BACKUPS":        3,
	"LOG_MAX_AGE":            28,
	"KAFKA_BROKERS":          "",
	"KAFKA_TOPIC_PREFIX":     "insurance",
	"MAIL_WEBHOOK_URL":       "",
	"MAIL_TIMEOUT":           "10s",
	"PASSWORD_RESET_URL":     "http://localhost:3000/reset-password",
}

// Load reads .env (when present) and the process environment into a validated Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromViper(viper.New())
}

// FromViper resolves the configuration from v, applying defaults and environment overrides.
func FromViper(v *viper.Viper) (*Config, error) {
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every section of the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validation failed for Config: %w", err)
	}
	if _, err := ParseDuration(c.JWT.Expiration); err != nil {
		return fmt.Errorf("invalid JWT_EXPIRATION: %w", err)
	}
	if _, err := ParseDuration(c.JWT.RefreshExpiration); err != nil {
		return fmt.Errorf("invalid JWT_REFRESH_EXPIRATION: %w", err)
	}
	return nil
}

// AccessTTL returns the parsed access token lifetime.
func (s JWTSettings) AccessTTL() time.Duration {
	d, _ := ParseDuration(s.Expiration)
	return d
}

// RefreshTTL returns the parsed refresh token lifetime.
func (s JWTSettings) RefreshTTL() time.Duration {
	d, _ := ParseDuration(s.RefreshExpiration)
	return d
}

// Enabled reports whether Redis is configured.
func (s RedisSettings) Enabled() bool {
	return s.Host != ""
}

// Addr returns host:port.
func (s RedisSettings) Addr() string {
	return s.Host + ":" + s.Port
}

// BrokerList splits the comma separated broker list.
func (s KafkaSettings) BrokerList() []string {
	return splitList(s.Brokers)
}

// AllowedOrigins splits the comma separated origin list.
func (s AppSettings) AllowedOrigins() []string {
	return splitList(s.CORSAllowedOrigins)
}

// ParseDuration accepts Go durations plus a day suffix ("7d"), the format used for token
// lifetimes.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "d") {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err != nil || days <= 0 {
			return 0, fmt.Errorf("invalid day duration %q", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive: %q", s)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
