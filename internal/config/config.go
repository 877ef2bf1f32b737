package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gookit/validate"

	"instviz/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Upload    UploadConfig
	Report    ReportConfig
	Render    RenderConfig
	Metrics   MetricsConfig
	Log       LogConfig
	Dashboard DashboardConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `validate:"required|numeric"`
	GinMode string `validate:"required|in:debug,release,test"`
}

// UploadConfig limits what the dashboard accepts
type UploadConfig struct {
	MaxMB int `validate:"required|min:1|max:1024"`
}

// ReportConfig holds report store and render fan-out settings
type ReportConfig struct {
	CacheMB int `validate:"min:0|max:4096"`
	TTL     time.Duration
	Workers int `validate:"required|min:1|max:64"`
}

// RenderConfig holds chart tile geometry
type RenderConfig struct {
	Width   int `validate:"required|min:200|max:4000"`
	Height  int `validate:"required|min:150|max:3000"`
	Columns int `validate:"required|min:1|max:7"`
}

// MetricsConfig toggles the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool
}

// LogConfig holds logger settings
type LogConfig struct {
	Level string `validate:"required|in:ERROR,WARN,INFO,DEBUG,TRACE"`
}

// DashboardConfig holds page copy
type DashboardConfig struct {
	Title string `validate:"required"`
	Intro string
}

// DefaultIntro is the markdown shown above the upload form
const DefaultIntro = "Upload your **Excel** dataset to generate key insights."

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := Default()

	config.Server = ServerConfig{
		Port:    getEnvOrDefault("PORT", config.Server.Port),
		GinMode: getEnvOrDefault("GIN_MODE", config.Server.GinMode),
	}
	config.Upload.MaxMB = getEnvIntOrDefault("MAX_UPLOAD_MB", config.Upload.MaxMB)
	config.Report = ReportConfig{
		CacheMB: getEnvIntOrDefault("REPORT_CACHE_MB", config.Report.CacheMB),
		TTL:     getEnvDurationOrDefault("REPORT_TTL", config.Report.TTL),
		Workers: getEnvIntOrDefault("RENDER_WORKERS", config.Report.Workers),
	}
	config.Render = RenderConfig{
		Width:   getEnvIntOrDefault("CHART_WIDTH", config.Render.Width),
		Height:  getEnvIntOrDefault("CHART_HEIGHT", config.Render.Height),
		Columns: getEnvIntOrDefault("CHART_COLUMNS", config.Render.Columns),
	}
	config.Metrics.Enabled = getEnvBoolOrDefault("METRICS_ENABLED", config.Metrics.Enabled)
	config.Log.Level = strings.ToUpper(getEnvOrDefault("LOG_LEVEL", config.Log.Level))
	config.Dashboard = DashboardConfig{
		Title: getEnvOrDefault("DASHBOARD_TITLE", config.Dashboard.Title),
		Intro: getEnvOrDefault("DASHBOARD_INTRO", config.Dashboard.Intro),
	}

	if err := Validate(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Default returns the configuration used when no environment is set
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Port: "8080", GinMode: "release"},
		Upload:  UploadConfig{MaxMB: 50},
		Report:  ReportConfig{CacheMB: 32, TTL: 30 * time.Minute, Workers: 4},
		Render:  RenderConfig{Width: 800, Height: 600, Columns: 4},
		Metrics: MetricsConfig{Enabled: true},
		Log:     LogConfig{Level: "INFO"},
		Dashboard: DashboardConfig{
			Title: "Institution Visual Analysis",
			Intro: DefaultIntro,
		},
	}
}

// Validate checks struct rules and the cross-field constraints
func Validate(config *Config) error {
	v := validate.Struct(config)
	if !v.Validate() {
		return errors.ConfigInvalid(v.Errors.One())
	}
	if config.Report.CacheMB > 0 && config.Report.TTL < time.Second {
		return errors.ConfigInvalid("REPORT_TTL must be at least 1s when the report cache is enabled")
	}
	return nil
}

// UploadLimit returns the upload size limit in bytes
func (c *Config) UploadLimit() int64 {
	return int64(c.Upload.MaxMB) * 1024 * 1024
}

// Addr returns the listen address for the dashboard
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
