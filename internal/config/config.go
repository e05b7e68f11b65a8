package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	defaultAPIBaseURL = "http://localhost:8000"
	defaultSessionTTL = time.Hour
)

// API holds the backend base URL and per-resource path suffixes
type API struct {
	BaseURL         string        `yaml:"base_url" json:"base_url"`
	LoginPath       string        `yaml:"login_path" json:"login_path"`
	LogoutPath      string        `yaml:"logout_path" json:"logout_path"`
	SubmissionsPath string        `yaml:"submissions_path" json:"submissions_path"`
	ExportPath      string        `yaml:"export_path" json:"export_path"`
	PostsPath       string        `yaml:"posts_path" json:"posts_path"`
	ConnectPath     string        `yaml:"connect_path" json:"connect_path"`
	Timeout         time.Duration `yaml:"timeout" json:"timeout"`
}

// URL joins the base URL with a path suffix
func (a API) URL(path string) string {
	return strings.TrimRight(a.BaseURL, "/") + path
}

// Storage selects where the session is persisted
type Storage struct {
	Driver    string `yaml:"driver" json:"driver"` // memory, file, sqlite, postgres, redis
	Path      string `yaml:"path" json:"path"`     // file / sqlite location
	DSN       string `yaml:"dsn" json:"dsn"`       // postgres connection string
	RedisAddr string `yaml:"redis_addr" json:"redis_addr"`
	RedisPass string `yaml:"redis_password" json:"-"`
	RedisDB   int    `yaml:"redis_db" json:"redis_db"`
	Secret    string `yaml:"secret" json:"-"` // encrypts stored values when set
}

// Session holds session guard settings
type Session struct {
	TTL time.Duration `yaml:"ttl" json:"ttl"`
}

// Web holds public site server settings
type Web struct {
	Addr string `yaml:"addr" json:"addr"`
}

// Config holds user preferences
type Config struct {
	Env     string  `yaml:"env" json:"env"`
	API     API     `yaml:"api" json:"api"`
	Storage Storage `yaml:"storage" json:"storage"`
	Session Session `yaml:"session" json:"session"`
	Web     Web     `yaml:"web" json:"web"`

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level"`     // Log level: DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" json:"log_file"`       // Path to log file
	LogConsole bool   `yaml:"log_console" json:"log_console"` // Enable console logging
}

// Dir returns the scic state directory (~/.scic)
func Dir() string {
	if dir := os.Getenv("SCIC_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".scic"
	}
	return filepath.Join(home, ".scic")
}

// DefaultPath returns the default config file location
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	dir := Dir()

	return &Config{
		Env: getEnv("SCIC_ENV", EnvDevelopment),
		API: API{
			BaseURL:         getEnv("SCIC_API_BASE_URL", defaultAPIBaseURL),
			LoginPath:       getEnv("SCIC_LOGIN_API", "/api/v1/user/login"),
			LogoutPath:      getEnv("SCIC_LOGOUT_API", "/api/v1/user/logout"),
			SubmissionsPath: getEnv("SCIC_SUBMISSIONS_API", "/api/v1/submissions"),
			ExportPath:      getEnv("SCIC_SUBMISSIONS_EXPORT_API", "/api/v1/submissions/export"),
			PostsPath:       getEnv("SCIC_POSTS_API", "/api/v1/posts"),
			ConnectPath:     getEnv("SCIC_CONNECT_API", "/api/v1/connect"),
			Timeout:         getDuration("SCIC_API_TIMEOUT", 30*time.Second),
		},
		Storage: Storage{
			Driver:    getEnv("SCIC_STORE", "file"),
			Path:      getEnv("SCIC_STORE_PATH", filepath.Join(dir, "session.json")),
			DSN:       getEnv("SCIC_STORE_DSN", ""),
			RedisAddr: getEnv("SCIC_REDIS_ADDR", "localhost:6379"),
			RedisPass: getEnv("SCIC_REDIS_PASSWORD", ""),
			Secret:    getEnv("SCIC_STORE_SECRET", ""),
		},
		Session: Session{
			TTL: getDuration("SCIC_SESSION_TTL", defaultSessionTTL),
		},
		Web: Web{
			Addr: getEnv("SCIC_WEB_ADDR", ":3000"),
		},
		LogLevel:   getEnv("SCIC_LOG_LEVEL", "INFO"),
		LogFile:    getEnv("SCIC_LOG_FILE", filepath.Join(dir, "logs", "scic.log")),
		LogConsole: getEnv("SCIC_LOG_CONSOLE", "false") == "true",
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// LoadDotEnv loads .env files into the process environment. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load loads config from path, or ~/.scic/config.yaml when path is empty
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := DefaultConfig()

	// Return defaults if no config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv lets environment variables win over file values
func (c *Config) applyEnv() {
	c.Env = getEnv("SCIC_ENV", c.Env)
	c.API.BaseURL = getEnv("SCIC_API_BASE_URL", c.API.BaseURL)
	c.API.LoginPath = getEnv("SCIC_LOGIN_API", c.API.LoginPath)
	c.API.LogoutPath = getEnv("SCIC_LOGOUT_API", c.API.LogoutPath)
	c.API.SubmissionsPath = getEnv("SCIC_SUBMISSIONS_API", c.API.SubmissionsPath)
	c.API.ExportPath = getEnv("SCIC_SUBMISSIONS_EXPORT_API", c.API.ExportPath)
	c.API.PostsPath = getEnv("SCIC_POSTS_API", c.API.PostsPath)
	c.API.ConnectPath = getEnv("SCIC_CONNECT_API", c.API.ConnectPath)
	c.API.Timeout = getDuration("SCIC_API_TIMEOUT", c.API.Timeout)
	c.Storage.Driver = getEnv("SCIC_STORE", c.Storage.Driver)
	c.Storage.Path = getEnv("SCIC_STORE_PATH", c.Storage.Path)
	c.Storage.DSN = getEnv("SCIC_STORE_DSN", c.Storage.DSN)
	c.Storage.RedisAddr = getEnv("SCIC_REDIS_ADDR", c.Storage.RedisAddr)
	c.Storage.RedisPass = getEnv("SCIC_REDIS_PASSWORD", c.Storage.RedisPass)
	c.Storage.Secret = getEnv("SCIC_STORE_SECRET", c.Storage.Secret)
	c.Session.TTL = getDuration("SCIC_SESSION_TTL", c.Session.TTL)
	c.Web.Addr = getEnv("SCIC_WEB_ADDR", c.Web.Addr)
	c.LogLevel = getEnv("SCIC_LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnv("SCIC_LOG_FILE", c.LogFile)
	if v := os.Getenv("SCIC_LOG_CONSOLE"); v != "" {
		c.LogConsole = v == "true"
	}
}

// Validate checks settings that cannot be defaulted
func (c *Config) Validate() error {
	switch c.Env {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("unknown env %q (want %s or %s)", c.Env, EnvDevelopment, EnvProduction)
	}

	if c.API.BaseURL == "" {
		return errors.New("api base url is required")
	}
	if c.Env == EnvProduction && c.API.BaseURL == defaultAPIBaseURL {
		return errors.New("production requires SCIC_API_BASE_URL or api.base_url to be set")
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.Session.TTL)
	}

	switch c.Storage.Driver {
	case "memory", "file", "sqlite", "redis":
	case "postgres":
		if c.Storage.DSN == "" {
			return errors.New("postgres store requires storage.dsn")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	return nil
}

// Save writes config to path, or ~/.scic/config.yaml when path is empty
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
