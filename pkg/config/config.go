package config

import (
	"context"
	"time"
)

// Config represents the complete configuration for the agentfs sandbox.
// It provides type-safe access to all configuration values with validation.
type Config struct {
	Runtime RuntimeConfig `koanf:"runtime" validate:"required"`
	Sandbox SandboxConfig `koanf:"sandbox" validate:"required"`
	Limits  LimitsConfig  `koanf:"limits"  validate:"required"`
}

// RuntimeConfig contains runtime behavior configuration.
type RuntimeConfig struct {
	Environment string `koanf:"environment" validate:"oneof=development staging production" env:"RUNTIME_ENVIRONMENT"`
	LogLevel    string `koanf:"log_level"   validate:"oneof=debug info warn error disabled"  env:"RUNTIME_LOG_LEVEL"`
	LogJSON     bool   `koanf:"log_json"                                                     env:"RUNTIME_LOG_JSON"`
}

// SandboxConfig contains the sandbox roots and path policy.
type SandboxConfig struct {
	RootDir         string   `koanf:"root_dir"         validate:"required"                        env:"SANDBOX_ROOT_DIR"`
	AdditionalRoots []string `koanf:"additional_roots"                                            env:"SANDBOX_ADDITIONAL_ROOTS"`
	AllowedPrefixes []string `koanf:"allowed_prefixes"                                            env:"SANDBOX_ALLOWED_PREFIXES"`
	Platform        string   `koanf:"platform"         validate:"omitempty,oneof=posix windows"   env:"SANDBOX_PLATFORM"`
}

// LimitsConfig contains system limits and constraints.
type LimitsConfig struct {
	MaxFileBytes    int64 `koanf:"max_file_bytes"    validate:"min=1" env:"LIMITS_MAX_FILE_BYTES"`
	MaxListEntries  int   `koanf:"max_list_entries"  validate:"min=1" env:"LIMITS_MAX_LIST_ENTRIES"`
	MaxFilesVisited int   `koanf:"max_files_visited" validate:"min=1" env:"LIMITS_MAX_FILES_VISITED"`
}

// Service defines the configuration management service interface.
type Service interface {
	// Load loads configuration from the specified sources with precedence order.
	Load(ctx context.Context, sources ...Source) (*Config, error)
	// Validate checks if the configuration meets all validation requirements.
	Validate(config *Config) error
	// GetSource returns the source type for a specific configuration key.
	// This tracks which source (env, CLI, YAML, default) provided each value,
	// enabling debugging and precedence verification.
	GetSource(key string) SourceType
}

// Source defines the interface for configuration sources.
type Source interface {
	// Load reads configuration from the source as dot-notation keyed values.
	Load() (map[string]any, error)
	// Type returns the source type identifier.
	Type() SourceType
	// Close releases any resources held by the source.
	Close() error
}

// SourceType identifies the type of configuration source.
type SourceType string

const (
	SourceCLI     SourceType = "cli"
	SourceYAML    SourceType = "yaml"
	SourceEnv     SourceType = "env"
	SourceDefault SourceType = "default"
)

// Metadata contains metadata about configuration sources.
type Metadata struct {
	Sources  map[string]SourceType `json:"sources"`
	LoadedAt time.Time             `json:"loaded_at"`
}

// Default returns a Config with default values for development.
func Default() *Config {
	return &Config{
		Runtime: RuntimeConfig{
			Environment: "development",
			LogLevel:    "info",
		},
		Sandbox: SandboxConfig{
			RootDir: ".",
		},
		Limits: LimitsConfig{
			MaxFileBytes:    1 << 20, // 1 MiB
			MaxListEntries:  10000,
			MaxFilesVisited: 10000,
		},
	}
}
