package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration. It is read once at
// startup and treated as read-only for the duration of every pipeline run.
type Config struct {
	OpenRouter OpenRouterConfig `yaml:"openrouter" mapstructure:"openrouter"`
	Model      ModelConfig      `yaml:"model" mapstructure:"model"`
	Stages     StagesConfig     `yaml:"stages" mapstructure:"stages"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// OpenRouterConfig holds OpenRouter API settings.
type OpenRouterConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	Referer   string  `yaml:"referer" mapstructure:"referer"`
	Title     string  `yaml:"title" mapstructure:"title"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// ModelConfig holds the base model name and the per-stage online flags.
// Each stage derives its own effective model identifier from these.
type ModelConfig struct {
	Base           string `yaml:"base" mapstructure:"base"`
	ResearchOnline bool   `yaml:"research_online" mapstructure:"research_online"`
	GenerateOnline bool   `yaml:"generate_online" mapstructure:"generate_online"`
	RefreshOnline  bool   `yaml:"refresh_online" mapstructure:"refresh_online"`
}

// StagesConfig groups the per-stage completion parameters.
type StagesConfig struct {
	Research StageConfig `yaml:"research" mapstructure:"research"`
	Generate StageConfig `yaml:"generate" mapstructure:"generate"`
	Refresh  StageConfig `yaml:"refresh" mapstructure:"refresh"`
}

// StageConfig holds the completion parameters for a single pipeline stage.
type StageConfig struct {
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// OutputConfig controls question count, the optional refresh pass, and
// where exports land.
type OutputConfig struct {
	Questions int    `yaml:"questions" mapstructure:"questions"`
	Refresh   bool   `yaml:"refresh" mapstructure:"refresh"`
	Dir       string `yaml:"dir" mapstructure:"dir"`
}

// BatchConfig configures concurrent batch processing.
type BatchConfig struct {
	MaxConcurrentRuns int `yaml:"max_concurrent_runs" mapstructure:"max_concurrent_runs"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FORECAST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults mirror the reference configuration of the original tool.
	v.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("openrouter.referer", "http://localhost")
	v.SetDefault("openrouter.title", "Strategic Forecast Question Builder")
	v.SetDefault("model.base", "anthropic/claude-opus-4.1")
	v.SetDefault("model.research_online", true)
	v.SetDefault("model.generate_online", true)
	v.SetDefault("model.refresh_online", true)
	v.SetDefault("stages.research.temperature", 0.2)
	v.SetDefault("stages.research.max_tokens", 1400)
	v.SetDefault("stages.research.timeout_secs", 240)
	v.SetDefault("stages.generate.temperature", 0.35)
	v.SetDefault("stages.generate.max_tokens", 4200)
	v.SetDefault("stages.generate.timeout_secs", 300)
	v.SetDefault("stages.refresh.temperature", 0.15)
	v.SetDefault("stages.refresh.max_tokens", 3200)
	v.SetDefault("stages.refresh.timeout_secs", 240)
	v.SetDefault("output.questions", 24)
	v.SetDefault("output.refresh", true)
	v.SetDefault("output.dir", ".")
	v.SetDefault("batch.max_concurrent_runs", 3)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
