package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Site     SiteConfig
	Browser  BrowserConfig
	Timing   TimingConfig
	Output   OutputConfig
	Export   ExportConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

type SiteConfig struct {
	BaseURL string
}

type BrowserConfig struct {
	Headless       bool
	InstallDriver  bool
	Timeout        time.Duration
	ViewportWidth  int
	ViewportHeight int
	TimezoneID     string
	Locale         string
}

type TimingConfig struct {
	BootstrapSettle time.Duration
	ClickSettle     time.Duration
	ApplySettle     time.Duration
	ExtractSettle   time.Duration
	ElementTimeout  time.Duration
	NextPageTimeout time.Duration
	PollInterval    time.Duration
}

type OutputConfig struct {
	Dir    string
	LogDir string
}

type ExportConfig struct {
	// Sinks lists the enabled writers: excel, postgres.
	Sinks []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int32
}

type RedisConfig struct {
	// Addr empty disables the stream publisher.
	Addr      string
	Password  string
	DB        int
	LogStream string
	RunStream string
	MaxLen    int64
}

type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", "8080"),
			Host:            getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			AllowedOrigins:  getStringSliceOrDefault("SERVER_ALLOWED_ORIGINS", []string{"http://localhost:*", "https://localhost:*"}),
		},
		Site: SiteConfig{
			BaseURL: getEnvOrDefault("SITE_BASE_URL", "https://www.cenenekretnina.rs/"),
		},
		Browser: BrowserConfig{
			Headless:       getBoolOrDefault("BROWSER_HEADLESS", false),
			InstallDriver:  getBoolOrDefault("BROWSER_INSTALL_DRIVER", false),
			Timeout:        getDurationOrDefault("BROWSER_TIMEOUT", 30*time.Second),
			ViewportWidth:  getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight: getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 1080),
			TimezoneID:     getEnvOrDefault("BROWSER_TIMEZONE", "Europe/Belgrade"),
			Locale:         getEnvOrDefault("BROWSER_LOCALE", "sr-Latn-RS"),
		},
		Timing: TimingConfig{
			BootstrapSettle: getDurationOrDefault("SCRAPER_BOOTSTRAP_SETTLE", 5*time.Second),
			ClickSettle:     getDurationOrDefault("SCRAPER_CLICK_SETTLE", 1*time.Second),
			ApplySettle:     getDurationOrDefault("SCRAPER_APPLY_SETTLE", 2*time.Second),
			ExtractSettle:   getDurationOrDefault("SCRAPER_EXTRACT_SETTLE", 2*time.Second),
			ElementTimeout:  getDurationOrDefault("SCRAPER_ELEMENT_TIMEOUT", 20*time.Second),
			NextPageTimeout: getDurationOrDefault("SCRAPER_NEXT_PAGE_TIMEOUT", 5*time.Second),
			PollInterval:    getDurationOrDefault("SCRAPER_POLL_INTERVAL", 500*time.Millisecond),
		},
		Output: OutputConfig{
			Dir:    getEnvOrDefault("OUTPUT_DIR", "output"),
			LogDir: getEnvOrDefault("LOG_DIR", "logs"),
		},
		Export: ExportConfig{
			Sinks: getStringSliceOrDefault("EXPORT_SINKS", []string{"excel"}),
		},
		Database: DatabaseConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getIntOrDefault("DB_PORT", 5432),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", ""),
			DBName:   getEnvOrDefault("DB_NAME", "price_registry"),
			SSLMode:  getEnvOrDefault("DB_SSL_MODE", "disable"),
			MaxConns: int32(getIntOrDefault("DB_MAX_CONNS", 4)),
		},
		Redis: RedisConfig{
			Addr:      getEnvOrDefault("REDIS_ADDR", ""),
			Password:  getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:        getIntOrDefault("REDIS_DB", 0),
			LogStream: getEnvOrDefault("REDIS_LOG_STREAM", "stream:price_scraper:log"),
			RunStream: getEnvOrDefault("REDIS_RUN_STREAM", "stream:price_scraper:runs"),
			MaxLen:    int64(getIntOrDefault("REDIS_STREAM_MAXLEN", 10000)),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "text"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.Site.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("SITE_BASE_URL must be an absolute URL, got %q", c.Site.BaseURL)
	}

	if c.Browser.ViewportWidth < 1 || c.Browser.ViewportHeight < 1 {
		return fmt.Errorf("BROWSER_VIEWPORT_WIDTH and BROWSER_VIEWPORT_HEIGHT must be positive")
	}

	if c.Timing.ElementTimeout <= 0 || c.Timing.NextPageTimeout <= 0 {
		return fmt.Errorf("SCRAPER_ELEMENT_TIMEOUT and SCRAPER_NEXT_PAGE_TIMEOUT must be positive")
	}
	if c.Timing.PollInterval <= 0 {
		return fmt.Errorf("SCRAPER_POLL_INTERVAL must be positive")
	}
	if c.Timing.PollInterval > c.Timing.ElementTimeout {
		return fmt.Errorf("SCRAPER_POLL_INTERVAL cannot be greater than SCRAPER_ELEMENT_TIMEOUT")
	}
	for name, d := range map[string]time.Duration{
		"SCRAPER_BOOTSTRAP_SETTLE": c.Timing.BootstrapSettle,
		"SCRAPER_CLICK_SETTLE":     c.Timing.ClickSettle,
		"SCRAPER_APPLY_SETTLE":     c.Timing.ApplySettle,
		"SCRAPER_EXTRACT_SETTLE":   c.Timing.ExtractSettle,
	} {
		if d < 0 {
			return fmt.Errorf("%s cannot be negative", name)
		}
	}

	if len(c.Export.Sinks) == 0 {
		return fmt.Errorf("EXPORT_SINKS must name at least one sink")
	}
	for _, s := range c.Export.Sinks {
		if s != SinkExcel && s != SinkPostgres {
			return fmt.Errorf("EXPORT_SINKS: unknown sink %q", s)
		}
	}

	return nil
}

const (
	SinkExcel    = "excel"
	SinkPostgres = "postgres"
)

// HasSink reports whether the named export sink is enabled.
func (c *Config) HasSink(name string) bool {
	for _, s := range c.Export.Sinks {
		if s == name {
			return true
		}
	}
	return false
}

func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getStringSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var out []string
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return defaultValue
}
