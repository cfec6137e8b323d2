package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"debatewatch-server/pkg/errors"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Speaker bounds for a debate session
const (
	MinSpeakers = 2
	MaxSpeakers = 8
)

// Config represents the complete application configuration
type Config struct {
	HTTP      HTTPConfig      `json:"http"`
	Logging   LoggingConfig   `json:"logging"`
	Messaging MessagingConfig `json:"messaging"`
	FactCheck FactCheckConfig `json:"fact_check"`
	Analysis  AnalysisConfig  `json:"analysis"`
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Enabled       bool          `json:"enabled"`
	Port          int           `json:"port"`
	ReadTimeout   time.Duration `json:"read_timeout"`
	WriteTimeout  time.Duration `json:"write_timeout"`
	EnableMetrics bool          `json:"enable_metrics"`
	EnableAPI     bool          `json:"enable_api"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// MessagingConfig holds AMQP configuration
type MessagingConfig struct {
	AMQPUrl       string `json:"amqp_url"`
	AMQPQueueName string `json:"amqp_queue_name"`
}

// FactCheckConfig holds fact-check orchestration configuration
type FactCheckConfig struct {
	// Mode selects the orchestration policy: claimbuster, hybrid, gemini or openai
	Mode string `json:"mode"`

	// TolerancePercent is the numeric-claim tolerance band (0-50)
	TolerancePercent float64 `json:"tolerance_percent"`

	GeminiAPIKey string `json:"-"`
	GeminiModel  string `json:"gemini_model"`
	OpenAIAPIKey string `json:"-"`
	OpenAIModel  string `json:"openai_model"`

	ProviderTimeout time.Duration `json:"provider_timeout"`
	CacheTTL        time.Duration `json:"cache_ttl"`
}

// AnalysisConfig holds transcript analysis configuration
type AnalysisConfig struct {
	// ContinuousAnalysis merges recent context into combined claims
	ContinuousAnalysis bool `json:"continuous_analysis"`

	// ContextWindow is the number of recent non-claim utterances kept per speaker
	ContextWindow int `json:"context_window"`
}

// ValidModes lists the supported fact-check orchestration modes
var ValidModes = []string{"claimbuster", "hybrid", "gemini", "openai"}

// Load loads configuration from .env files and environment variables
func Load(logger *logrus.Logger) (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		logger.WithError(err).Warn("Failed to get current working directory")
		wd = "unknown"
	}

	possibleEnvFiles := []string{
		".env",
		"../.env",
		filepath.Join(wd, ".env"),
	}

	var loadedFrom string
	for _, envFile := range possibleEnvFiles {
		if _, statErr := os.Stat(envFile); statErr == nil {
			if loadErr := godotenv.Load(envFile); loadErr == nil {
				loadedFrom, _ = filepath.Abs(envFile)
				break
			}
		}
	}

	if loadedFrom != "" {
		logger.WithField("path", loadedFrom).Info("Loaded .env file")
	} else {
		logger.WithField("working_dir", wd).Debug("No .env file found, using environment variables only")
	}

	config := &Config{
		HTTP: HTTPConfig{
			Enabled:       getEnvBool("HTTP_ENABLED", true),
			Port:          getEnvInt("HTTP_PORT", 8080),
			ReadTimeout:   getEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:  getEnvDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
			EnableMetrics: getEnvBool("HTTP_ENABLE_METRICS", true),
			EnableAPI:     getEnvBool("HTTP_ENABLE_API", true),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Messaging: MessagingConfig{
			AMQPUrl:       getEnv("AMQP_URL", ""),
			AMQPQueueName: getEnv("AMQP_QUEUE_NAME", "debatewatch-events"),
		},
		FactCheck: FactCheckConfig{
			Mode:             strings.ToLower(getEnv("FACT_CHECK_MODE", "hybrid")),
			TolerancePercent: getEnvFloat("TOLERANCE_PERCENT", 15),
			GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
			GeminiModel:      getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			ProviderTimeout:  getEnvDuration("FACT_CHECK_PROVIDER_TIMEOUT", 30*time.Second),
			CacheTTL:         getEnvDuration("FACT_CHECK_CACHE_TTL", 1*time.Hour),
		},
		Analysis: AnalysisConfig{
			ContinuousAnalysis: getEnvBool("CONTINUOUS_ANALYSIS", true),
			ContextWindow:      getEnvInt("ANALYSIS_CONTEXT_WINDOW", 3),
		},
	}

	if err := config.Validate(logger); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Validate checks configuration values and applies corrections with warnings
func (c *Config) Validate(logger *logrus.Logger) error {
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		return errors.NewInvalidInput("HTTP port out of range", map[string]interface{}{"port": c.HTTP.Port})
	}

	validMode := false
	for _, mode := range ValidModes {
		if c.FactCheck.Mode == mode {
			validMode = true
			break
		}
	}
	if !validMode {
		logger.WithField("mode", c.FactCheck.Mode).Warn("Unknown fact-check mode, falling back to hybrid")
		c.FactCheck.Mode = "hybrid"
	}

	// Tolerance is clamped, not rejected: the UI treats it as a slider
	if c.FactCheck.TolerancePercent < 0 {
		logger.WithField("tolerance", c.FactCheck.TolerancePercent).Warn("Tolerance below 0, clamping")
		c.FactCheck.TolerancePercent = 0
	}
	if c.FactCheck.TolerancePercent > 50 {
		logger.WithField("tolerance", c.FactCheck.TolerancePercent).Warn("Tolerance above 50, clamping")
		c.FactCheck.TolerancePercent = 50
	}

	if c.Analysis.ContextWindow < 1 {
		logger.WithField("context_window", c.Analysis.ContextWindow).Warn("Context window below 1, using default of 3")
		c.Analysis.ContextWindow = 3
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error", "fatal":
	default:
		logger.WithField("level", c.Logging.Level).Warn("Unknown log level, using info")
		c.Logging.Level = "info"
	}

	return nil
}

// ApplyLogging configures the logger from the logging config
func (c *Config) ApplyLogging(logger *logrus.Logger) {
	level, err := logrus.ParseLevel(c.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if c.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
