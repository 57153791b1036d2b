package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App      AppConfig
	Paths    PathsConfig
	Facebook FacebookConfig
	Queue    QueueConfig
	Media    MediaConfig
	Database DatabaseConfig
	Valkey   ValkeyConfig
}

type AppConfig struct {
	Version            string
	Port               string
	Debug              bool
	Environment        string
	BasicAuth          []string
	BasePath           string
	TrustedProxies     []string
	BaseUrl            string
	CorsAllowedOrigins []string
	ServerID           string
}

type PathsConfig struct {
	Storages string
	Statics  string
	Media    string
}

type FacebookConfig struct {
	AppID           string
	AppSecret       string
	PageAccessToken string
	PageID          string
	GraphVersion    string
	RateLimitCalls  int
	RateLimitWindow time.Duration
}

type QueueConfig struct {
	StoragePath string
	MinLeadTime time.Duration
	MaxHorizon  time.Duration
}

type MediaConfig struct {
	MaxImageSize   int64
	AllowedFormats []string
	OptimizeImages bool
	MinDimension   int
	MaxDimension   int
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string // File path for SQLite, DB name for Postgres
}

type ValkeyConfig struct {
	Enabled   bool
	Address   string
	Password  string
	DB        int
	KeyPrefix string
}

// Global provides access to the loaded configuration globally.
var Global *Config

// LoadConfig loads configuration from environment variables or defaults.
func LoadConfig() (*Config, error) {
	debug := false
	if v := os.Getenv("APP_DEBUG"); v == "true" || v == "1" || v == "on" {
		debug = true
	} else if v := os.Getenv("DEBUG"); v == "true" || v == "1" {
		debug = true
	}

	var basicAuth []string
	if v := os.Getenv("APP_BASIC_AUTH"); v != "" {
		basicAuth = strings.Split(v, ",")
	}

	corsOrigins := []string{"http://localhost:3000", "http://localhost:5173"}
	if v := os.Getenv("APP_CORS_ALLOWED_ORIGINS"); v != "" {
		corsOrigins = strings.Split(v, ",")
	}

	appCfg := AppConfig{
		Version:            "v1.0.0",
		Port:               getEnv("APP_PORT", "3000"),
		Debug:              debug,
		Environment:        getEnv("APP_ENV", "development"),
		BasicAuth:          basicAuth,
		BasePath:           getEnv("APP_BASE_PATH", ""),
		BaseUrl:            getEnv("APP_BASE_URL", "http://localhost:3000"),
		CorsAllowedOrigins: corsOrigins,
		ServerID:           getEnv("SERVER_ID", ""),
	}
	if v := os.Getenv("APP_TRUSTED_PROXIES"); v != "" {
		appCfg.TrustedProxies = strings.Split(v, ",")
	}

	pathsCfg := PathsConfig{
		Storages: getEnv("PATH_STORAGES", "storages"),
		Statics:  getEnv("PATH_STATICS", "statics"),
		Media:    getEnv("PATH_MEDIA", filepath.Join("statics", "media")),
	}

	fbCfg := FacebookConfig{
		AppID:           getEnv("FACEBOOK_APP_ID", ""),
		AppSecret:       getEnv("FACEBOOK_APP_SECRET", ""),
		PageAccessToken: getEnv("FACEBOOK_PAGE_ACCESS_TOKEN", ""),
		PageID:          getEnv("FACEBOOK_PAGE_ID", ""),
		GraphVersion:    getEnv("FACEBOOK_API_VERSION", "v18.0"),
		RateLimitCalls:  getEnvInt("FACEBOOK_RATE_LIMIT_CALLS", 200),
		RateLimitWindow: time.Duration(getEnvInt("FACEBOOK_RATE_LIMIT_WINDOW", 3600)) * time.Second,
	}

	queueCfg := QueueConfig{
		StoragePath: getEnv("QUEUE_STORAGE_PATH", filepath.Join(pathsCfg.Storages, "scheduled_posts.json")),
		MinLeadTime: time.Duration(getEnvInt("QUEUE_MIN_LEAD_MINUTES", 10)) * time.Minute,
		MaxHorizon:  time.Duration(getEnvInt("QUEUE_MAX_HORIZON_DAYS", 365)) * 24 * time.Hour,
	}

	allowedFormats := []string{".jpg", ".jpeg", ".png", ".gif"}
	if v := os.Getenv("ALLOWED_IMAGE_FORMATS"); v != "" {
		allowedFormats = strings.Split(v, ",")
		for i := range allowedFormats {
			allowedFormats[i] = strings.TrimSpace(allowedFormats[i])
		}
	}

	mediaCfg := MediaConfig{
		MaxImageSize:   getEnvInt64("MAX_IMAGE_SIZE", 4*1024*1024*1024),
		AllowedFormats: allowedFormats,
		OptimizeImages: getEnvBool("OPTIMIZE_IMAGES", true),
		MinDimension:   getEnvInt("MIN_IMAGE_DIMENSION", 200),
		MaxDimension:   getEnvInt("MAX_IMAGE_DIMENSION", 8000),
	}

	dbCfg := DatabaseConfig{
		Driver:   getEnv("DB_DRIVER", "sqlite"),
		Name:     getEnv("DB_NAME", filepath.Join(pathsCfg.Storages, "history.db")),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
	}

	valkeyCfg := ValkeyConfig{
		Enabled:   getEnvBool("VALKEY_ENABLED", false),
		Address:   getEnv("VALKEY_ADDRESS", "localhost:6379"),
		Password:  getEnv("VALKEY_PASSWORD", ""),
		DB:        getEnvInt("VALKEY_DB", 0),
		KeyPrefix: getEnv("VALKEY_KEY_PREFIX", "fbap:"),
	}

	cfg := &Config{
		App:      appCfg,
		Paths:    pathsCfg,
		Facebook: fbCfg,
		Queue:    queueCfg,
		Media:    mediaCfg,
		Database: dbCfg,
		Valkey:   valkeyCfg,
	}

	Global = cfg
	return cfg, nil
}

// ValidateFacebook checks that the Graph API credentials are usable.
// Returns every problem found, not just the first.
func (c *Config) ValidateFacebook() []string {
	var issues []string
	if c.Facebook.AppID == "" {
		issues = append(issues, "FACEBOOK_APP_ID is required")
	}
	if c.Facebook.AppSecret == "" {
		issues = append(issues, "FACEBOOK_APP_SECRET is required")
	}
	if c.Facebook.PageID == "" {
		issues = append(issues, "FACEBOOK_PAGE_ID is required")
	}
	switch {
	case c.Facebook.PageAccessToken == "":
		issues = append(issues, "FACEBOOK_PAGE_ACCESS_TOKEN is required")
	case len(c.Facebook.PageAccessToken) < 50:
		issues = append(issues, "FACEBOOK_PAGE_ACCESS_TOKEN appears to be invalid (too short)")
	}
	if c.Facebook.RateLimitCalls <= 0 {
		issues = append(issues, "FACEBOOK_RATE_LIMIT_CALLS must be positive")
	}
	if c.Facebook.RateLimitWindow <= 0 {
		issues = append(issues, "FACEBOOK_RATE_LIMIT_WINDOW must be positive")
	}
	return issues
}

// Summary returns non-sensitive configuration information for logging.
func (c *Config) Summary() map[string]any {
	maskedAppID := "not set"
	if c.Facebook.AppID != "" {
		maskedAppID = mask(c.Facebook.AppID)
	}
	maskedPageID := "not set"
	if c.Facebook.PageID != "" {
		maskedPageID = mask(c.Facebook.PageID)
	}
	return map[string]any{
		"app_port":         c.App.Port,
		"app_env":          c.App.Environment,
		"app_debug":        c.App.Debug,
		"facebook_app_id":  maskedAppID,
		"facebook_page_id": maskedPageID,
		"graph_version":    c.Facebook.GraphVersion,
		"has_page_token":   c.Facebook.PageAccessToken != "",
		"queue_storage":    c.Queue.StoragePath,
		"db_driver":        c.Database.Driver,
		"valkey_enabled":   c.Valkey.Enabled,
	}
}

func mask(s string) string {
	if len(s) <= 8 {
		return s[:1] + "..."
	}
	return fmt.Sprintf("%s...", s[:8])
}
