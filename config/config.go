package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	USDA     USDAConfig
	LLM      LLMConfig
	Store    StoreConfig
	Cache    CacheConfig
	Matching MatchingConfig
	Scanner  ScannerConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// USDAConfig holds USDA FoodData Central API configuration
type USDAConfig struct {
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
	PageSize int    `mapstructure:"page_size"`
}

// LLMConfig holds the OCR-correction LLM configuration
type LLMConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// StoreConfig holds persistence configuration
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// CacheConfig holds the in-memory read cache configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// MatchingConfig holds word-matching configuration
type MatchingConfig struct {
	MatchThreshold float64 `mapstructure:"match_threshold"`
	MinWordLength  int     `mapstructure:"min_word_length"`
}

// ScannerConfig holds the scanner-client configuration
type ScannerConfig struct {
	APIBaseURL       string        `mapstructure:"api_base_url"`
	SyncTTL          time.Duration `mapstructure:"sync_ttl"`
	MinConfidence    float64       `mapstructure:"min_confidence"`
	FinalizeTimeout  time.Duration `mapstructure:"finalize_timeout"`
	ClassifyBatchMax int           `mapstructure:"classify_batch_max"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/foodscan/")

	// Environment variable settings
	v.SetEnvPrefix("FOODSCAN")
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// USDA defaults. Foundation foods are the strictest data tier; 15
	// candidates is enough for primary-food matching.
	v.SetDefault("usda.base_url", "https://api.nal.usda.gov/fdc")
	v.SetDefault("usda.page_size", 15)

	// LLM defaults
	v.SetDefault("llm.model", "gemini-2.5-flash-lite")

	// Store defaults
	v.SetDefault("store.path", "foodscan.db")

	// Cache defaults
	v.SetDefault("cache.ttl", "720h") // 30 days

	// Matching defaults
	v.SetDefault("matching.match_threshold", 0.6)
	v.SetDefault("matching.min_word_length", 3)

	// Scanner defaults
	v.SetDefault("scanner.api_base_url", "http://localhost:8080")
	v.SetDefault("scanner.sync_ttl", "24h")
	v.SetDefault("scanner.min_confidence", 0.5)
	v.SetDefault("scanner.finalize_timeout", "10s")
	v.SetDefault("scanner.classify_batch_max", 20)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Matching.MatchThreshold <= 0 || config.Matching.MatchThreshold > 1 {
		return fmt.Errorf("matching threshold must be in (0, 1], got: %v", config.Matching.MatchThreshold)
	}

	if config.USDA.PageSize <= 0 {
		return fmt.Errorf("usda page size must be positive, got: %d", config.USDA.PageSize)
	}

	if config.Store.Path == "" {
		return fmt.Errorf("store path is required (set FOODSCAN_STORE_PATH)")
	}

	return nil
}
