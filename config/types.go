package config

import (
	"time"

	"github.com/s0up4200/sdgrab/retrier"
	"github.com/s0up4200/sdgrab/schedulesdirect"
)

// Config represents the complete configuration structure
type Config struct {
	SchedulesDirect SchedulesDirectConfig `mapstructure:"schedulesdirect"`
	Retry           RetryConfig           `mapstructure:"retry"`
	Batch           BatchConfig           `mapstructure:"batch"`
	Database        DatabaseConfig        `mapstructure:"database"`
	Filter          FilterConfig          `mapstructure:"filter"`
	Logging         LoggingConfig         `mapstructure:"logging"`
}

// SchedulesDirectConfig holds API connection details. Username and Password
// are only needed until the credential cache has been populated.
type SchedulesDirectConfig struct {
	URL        string        `mapstructure:"url"`
	APIVersion string        `mapstructure:"api_version"`
	Username   string        `mapstructure:"username"`
	Password   string        `mapstructure:"password"`
	Timeout    time.Duration `mapstructure:"timeout"`
	UserAgent  string        `mapstructure:"user_agent"`
	AutoReauth bool          `mapstructure:"auto_reauth"`
}

// RetryConfig is the backoff schedule applied to every request
type RetryConfig struct {
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	Multiplier      float64       `mapstructure:"multiplier"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	MaxElapsedTime  time.Duration `mapstructure:"max_elapsed_time"`
}

// Policy converts the configuration into a retrier policy
func (r RetryConfig) Policy() retrier.Policy {
	return retrier.Policy{
		InitialInterval: r.InitialInterval,
		Multiplier:      r.Multiplier,
		MaxInterval:     r.MaxInterval,
		MaxElapsedTime:  r.MaxElapsedTime,
	}
}

// BatchConfig controls bulk schedule and program fetches
type BatchConfig struct {
	ChunkSize         int  `mapstructure:"chunk_size"`
	Concurrency       int  `mapstructure:"concurrency"`
	EmptyOnBadGateway bool `mapstructure:"empty_on_bad_gateway"`
}

// Options converts the configuration into batch options
func (b BatchConfig) Options() schedulesdirect.BatchOptions {
	return schedulesdirect.BatchOptions{
		ChunkSize:         b.ChunkSize,
		Concurrency:       b.Concurrency,
		EmptyOnBadGateway: b.EmptyOnBadGateway,
	}
}

// DatabaseConfig locates the SQLite settings cache
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// FilterConfig contains named station filter expressions
type FilterConfig map[string]string

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
