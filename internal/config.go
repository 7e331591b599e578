package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env           string              `mapstructure:"env"`
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Security      SecurityConfig      `mapstructure:"security"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig selects where the object store keeps its journal.
// With InMemory set, nothing is written to disk.
type DatabaseConfig struct {
	DataDir   string `mapstructure:"data_dir"`
	InMemory  bool   `mapstructure:"in_memory"`
	QueueSize int    `mapstructure:"queue_size"`
}

type SecurityConfig struct {
	SessionCookieName string `mapstructure:"session_cookie_name"`
	SecureCookies     bool   `mapstructure:"secure_cookies"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

// LoggingConfig holds the initial log switches. Once the database has a
// persisted SystemConfiguration, that one wins.
type LoggingConfig struct {
	Format string `mapstructure:"format"`
	Audit  bool   `mapstructure:"audit"`
	Warn   bool   `mapstructure:"warn"`
	Debug  bool   `mapstructure:"debug"`
	Trace  bool   `mapstructure:"trace"`
}

const (
	DefaultPort              = 12345
	DefaultDataDir           = "db"
	DefaultQueueSize         = 1000
	DefaultSessionCookieName = "sessionId"
)

// ApplyDefaults fills zero values left by a sparse config file.
func (c *Config) ApplyDefaults() {
	if c.Env == "" {
		c.Env = "development"
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ReadHeaderTimeout == 0 {
		c.Server.ReadHeaderTimeout = 5 * time.Second
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 30 * time.Second
	}
	if c.Database.DataDir == "" {
		c.Database.DataDir = DefaultDataDir
	}
	if c.Database.QueueSize == 0 {
		c.Database.QueueSize = DefaultQueueSize
	}
	if c.Security.SessionCookieName == "" {
		c.Security.SessionCookieName = DefaultSessionCookieName
	}
}

// LoadConfigFromEnv builds the config for container deployments where no
// config file is mounted.
func LoadConfigFromEnv() *Config {
	cfg := &Config{
		Env: getEnv("APP_ENV", "production"),
		Server: ServerConfig{
			Port:           getEnvAsInt("HTTP_PORT", DefaultPort),
			BaseURL:        getEnv("BASE_URL", ""),
			AllowedOrigins: getEnv("ALLOWED_ORIGINS", ""),
		},
		Database: DatabaseConfig{
			DataDir:   getEnv("DATA_DIR", DefaultDataDir),
			InMemory:  getEnvAsBool("IN_MEMORY", false),
			QueueSize: getEnvAsInt("DB_QUEUE_SIZE", DefaultQueueSize),
		},
		Security: SecurityConfig{
			SessionCookieName: getEnv("SESSION_COOKIE_NAME", DefaultSessionCookieName),
			SecureCookies:     getEnvAsBool("SECURE_COOKIES", false),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Format: getEnv("LOG_FORMAT", "json"),
				Audit:  getEnvAsBool("LOG_AUDIT", true),
				Warn:   getEnvAsBool("LOG_WARN", true),
				Debug:  getEnvAsBool("LOG_DEBUG", false),
				Trace:  getEnvAsBool("LOG_TRACE", false),
			},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Observability.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if !c.InMemory && strings.TrimSpace(c.DataDir) == "" {
		return errors.New("data_dir is required unless in_memory is set")
	}
	if c.QueueSize < 0 {
		return errors.New("queue_size cannot be negative")
	}
	return nil
}

func (c *LoggingConfig) Validate() error {
	switch c.Format {
	case "", "json", "text":
		return nil
	default:
		return fmt.Errorf("unknown log format %q", c.Format)
	}
}
