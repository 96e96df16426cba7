package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/s0up4200/sdgrab/retrier"
	"github.com/s0up4200/sdgrab/schedulesdirect"
)

// Load loads the configuration from file and environment. Without an
// explicit configPath a missing config file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)
	bindEnv(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".sdgrab"))
		}

		// Check /etc
		v.AddConfigPath("/etc/sdgrab/")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Schedules Direct defaults
	v.SetDefault("schedulesdirect.url", schedulesdirect.DefaultBaseURL)
	v.SetDefault("schedulesdirect.api_version", schedulesdirect.DefaultAPIVersion)
	v.SetDefault("schedulesdirect.timeout", schedulesdirect.DefaultTimeout)
	v.SetDefault("schedulesdirect.user_agent", schedulesdirect.DefaultUserAgent)
	v.SetDefault("schedulesdirect.auto_reauth", true)

	// Retry defaults
	policy := retrier.DefaultPolicy()
	v.SetDefault("retry.initial_interval", policy.InitialInterval)
	v.SetDefault("retry.multiplier", policy.Multiplier)
	v.SetDefault("retry.max_interval", policy.MaxInterval)
	v.SetDefault("retry.max_elapsed_time", policy.MaxElapsedTime)

	// Batch defaults
	v.SetDefault("batch.chunk_size", schedulesdirect.DefaultChunkSize)
	v.SetDefault("batch.concurrency", schedulesdirect.DefaultConcurrency)
	v.SetDefault("batch.empty_on_bad_gateway", false)

	v.SetDefault("database.path", "sdgrab.db")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// bindEnv maps SDGRAB_* variables onto config keys. The account settings
// also accept the conventional SD_USER and SD_PWD names.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("sdgrab")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("schedulesdirect.username", "SDGRAB_SCHEDULESDIRECT_USERNAME", "SD_USER")
	_ = v.BindEnv("schedulesdirect.password", "SDGRAB_SCHEDULESDIRECT_PASSWORD", "SD_PWD")
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.SchedulesDirect.URL == "" {
		return fmt.Errorf("schedulesdirect.url is required")
	}
	if cfg.SchedulesDirect.APIVersion == "" {
		return fmt.Errorf("schedulesdirect.api_version is required")
	}
	if cfg.SchedulesDirect.Timeout <= 0 {
		return fmt.Errorf("schedulesdirect.timeout must be positive")
	}

	if err := cfg.Retry.Policy().Validate(); err != nil {
		return fmt.Errorf("retry: %w", err)
	}

	if cfg.Batch.ChunkSize < 1 || cfg.Batch.ChunkSize > schedulesdirect.MaxChunkSize {
		return fmt.Errorf("batch.chunk_size must be between 1 and %d, got %d", schedulesdirect.MaxChunkSize, cfg.Batch.ChunkSize)
	}
	if cfg.Batch.Concurrency < 1 {
		return fmt.Errorf("batch.concurrency must be at least 1, got %d", cfg.Batch.Concurrency)
	}

	if cfg.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	// Validate logging level
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
