package config

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	LLM     LLMConfig
	Server  ServerConfig
	History HistoryConfig
	Format  FormatConfig
	Log     LogConfig
}

// LLMConfig holds the LLM configuration
type LLMConfig struct {
	Provider  string `mapstructure:"provider"`
	BaseURL   string `mapstructure:"base_url"`
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

// ServerConfig holds the server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

// HistoryConfig selects and configures the transcript store.
type HistoryConfig struct {
	Backend   string `mapstructure:"backend"`
	Path      string `mapstructure:"path"`
	RedisAddr string `mapstructure:"redis_addr"`
	RedisDB   int    `mapstructure:"redis_db"`
	DSN       string `mapstructure:"dsn"`
}

// FormatConfig controls response rendering.
type FormatConfig struct {
	EscapeHTML     bool   `mapstructure:"escape_html"`
	HighlightStyle string `mapstructure:"highlight_style"`
}

// LogConfig holds the logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"

	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendBolt     = "bolt"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", ProviderAnthropic)
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "claude-3-7-sonnet-20250219")
	v.SetDefault("llm.max_tokens", 1000)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "5000")

	v.SetDefault("history.backend", BackendMemory)
	// Empty lets each file backend pick its own default file name.
	v.SetDefault("history.path", "")
	v.SetDefault("history.redis_addr", "localhost:6379")
	v.SetDefault("history.redis_db", 0)
	v.SetDefault("history.dsn", "")

	v.SetDefault("format.escape_html", true)
	v.SetDefault("format.highlight_style", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads config.yaml (or the file named by CONFIG_PATH) and applies
// SCHOOLASSIST_* environment overrides. A missing config file is not an error.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("SCHOOLASSIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("llm.api_key", "SCHOOLASSIST_LLM_API_KEY", "ANTHROPIC_API_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	config.LLM.Provider = strings.ToLower(config.LLM.Provider)
	config.History.Backend = strings.ToLower(config.History.Backend)

	return &config, nil
}
