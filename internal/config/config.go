package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	Database DatabaseConfig
	Store    StoreConfig
	JWT      JWTConfig
	Cookie   CookieConfig
	Upstream UpstreamConfig
	Sync     SyncConfig
	Clock    ClockConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// StoreConfig selects the local event store backend
type StoreConfig struct {
	Driver   string // "mysql" or "file"
	FilePath string // events file for the "file" driver
}

// JWTConfig holds JWT configuration for admin sessions
type JWTConfig struct {
	Secret           string
	RefreshSecret    string
	AccessTokenMins  int
	RefreshTokenDays int
}

// CookieConfig holds cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// UpstreamConfig points at the HQ server this kiosk syncs with
type UpstreamConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// SyncConfig controls the background sync cadence and retention window
type SyncConfig struct {
	IntervalSeconds int
	RetentionWeeks  int
}

// ClockConfig holds the auto clock-out closing thresholds (HH:MM, local time)
type ClockConfig struct {
	ClosingWeekday string
	ClosingWeekend string
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	storeDriver := getEnv("STORE_DRIVER", "mysql")
	if storeDriver != "mysql" && storeDriver != "file" {
		return nil, fmt.Errorf("invalid STORE_DRIVER: '%s' (must be 'mysql' or 'file')", storeDriver)
	}

	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		Database: loadDatabaseConfig(appMode),
		Store: StoreConfig{
			Driver:   storeDriver,
			FilePath: getEnv("STORE_FILE", "clockdata/events.json"),
		},
		JWT:    loadJWTConfig(appMode),
		Cookie: loadCookieConfig(appMode),
		Upstream: UpstreamConfig{
			BaseURL:        strings.TrimRight(getEnv("UPSTREAM_BASE_URL", "https://altn.cloud/api"), "/"),
			TimeoutSeconds: getEnvInt("UPSTREAM_TIMEOUT_SECONDS", 10),
		},
		Sync: SyncConfig{
			IntervalSeconds: getEnvInt("SYNC_INTERVAL_SECONDS", 5),
			RetentionWeeks:  getEnvInt("RETENTION_WEEKS", 3),
		},
		Clock: ClockConfig{
			ClosingWeekday: getEnv("CLOSING_WEEKDAY", "18:30"),
			ClosingWeekend: getEnv("CLOSING_WEEKEND", "17:00"),
		},
	}

	// Set global config
	AppConfig = config

	log.Printf("✅ Configuration loaded successfully [MODE: %s, STORE: %s]", appMode, storeDriver)
	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "altn_timeclock"),
	}
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	return JWTConfig{
		Secret:           getEnv(prefix+"JWT_SECRET", "default_secret"),
		RefreshSecret:    getEnv(prefix+"JWT_REFRESH_SECRET", "default_refresh_secret"),
		AccessTokenMins:  getEnvInt("ACCESS_TOKEN_MINUTES", 15),
		RefreshTokenDays: getEnvInt("REFRESH_TOKEN_DAYS", 7),
	}
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	secure, _ := strconv.ParseBool(getEnv(prefix+"COOKIE_SECURE", "false"))

	return CookieConfig{
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with default value
func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return value
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// UseMySQL reports whether the MySQL event store is selected
func (c *Config) UseMySQL() bool {
	return c.Store.Driver == "mysql"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		// Default production origins
		return "https://timeclock.altn.cloud"
	}
	return origins
}

// FallbackAdmin returns the bootstrap admin credentials, if configured.
// Used so the admin section works before the first roster fetch.
func (c *Config) FallbackAdmin() (name, code string, ok bool) {
	name = getEnv("FALLBACK_ADMIN_NAME", "")
	code = getEnv("FALLBACK_ADMIN_PASSCODE", "")
	return name, code, name != "" && code != ""
}
