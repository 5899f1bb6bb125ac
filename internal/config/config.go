package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	domainservice "vertextester/internal/domain/service"

	"github.com/spf13/viper"
)

// Config holds the complete application configuration.
type Config struct {
	Dispatch   DispatchConfig   `mapstructure:"dispatch"   yaml:"dispatch"`
	Credential CredentialConfig `mapstructure:"credential" yaml:"credential"`
	Output     OutputConfig     `mapstructure:"output"     yaml:"output"`
	Picker     PickerConfig     `mapstructure:"picker"     yaml:"picker"`
	Gemini     GeminiConfig     `mapstructure:"gemini"     yaml:"gemini"`
	Analyzer   AnalyzerConfig   `mapstructure:"analyzer"   yaml:"analyzer"`
	Log        LogConfig        `mapstructure:"log"        yaml:"log"`
}

// DispatchConfig holds the external collaborator command.
type DispatchConfig struct {
	// Script is a whitespace-separated command prefix, e.g. "python3 main.py".
	// Empty means this executable's own analyze command.
	Script string `mapstructure:"script" yaml:"script"`
}

// ScriptArgs returns the command prefix, or fallback when Script is blank.
func (d DispatchConfig) ScriptArgs(fallback []string) []string {
	if fields := strings.Fields(d.Script); len(fields) > 0 {
		return fields
	}
	return fallback
}

// CredentialConfig locates the plaintext credential file.
type CredentialConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

// OutputConfig holds the default output directory for generated tests.
type OutputConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// PickerConfig holds interactive file picker settings.
type PickerConfig struct {
	Root string `mapstructure:"root" yaml:"root"`
	Size int    `mapstructure:"size" yaml:"size"`
}

// GeminiConfig holds model settings used by the analyze command.
type GeminiConfig struct {
	Backend         string        `mapstructure:"backend"           yaml:"backend"`
	BaseURL         string        `mapstructure:"base_url"          yaml:"base_url"`
	Model           string        `mapstructure:"model"             yaml:"model"`
	Temperature     float32       `mapstructure:"temperature"       yaml:"temperature"`
	TopP            float32       `mapstructure:"top_p"             yaml:"top_p"`
	MaxOutputTokens int32         `mapstructure:"max_output_tokens" yaml:"max_output_tokens"`
	ThinkingBudget  int32         `mapstructure:"thinking_budget"   yaml:"thinking_budget"`
	Timeout         time.Duration `mapstructure:"timeout"           yaml:"timeout"`
	MaxRetries      int           `mapstructure:"max_retries"       yaml:"max_retries"`
	InitialBackoff  time.Duration `mapstructure:"initial_backoff"   yaml:"initial_backoff"`
	MaxBackoff      time.Duration `mapstructure:"max_backoff"       yaml:"max_backoff"`
}

// AnalyzerConfig holds code block batching settings.
type AnalyzerConfig struct {
	MaxTokensPerBatch int `mapstructure:"max_tokens_per_batch" yaml:"max_tokens_per_batch"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("dispatch.script", "")

	v.SetDefault("credential.file", "api_key.txt")

	v.SetDefault("output.dir", "generated_tests")

	v.SetDefault("picker.root", ".")
	v.SetDefault("picker.size", 15)

	v.SetDefault("gemini.backend", "vertex")
	v.SetDefault("gemini.base_url", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.temperature", 1.0)
	v.SetDefault("gemini.top_p", 1.0)
	v.SetDefault("gemini.max_output_tokens", 65535)
	v.SetDefault("gemini.thinking_budget", -1)
	v.SetDefault("gemini.timeout", "10m")
	v.SetDefault("gemini.max_retries", 3)
	v.SetDefault("gemini.initial_backoff", "1s")
	v.SetDefault("gemini.max_backoff", "30s")

	v.SetDefault("analyzer.max_tokens_per_batch", domainservice.DefaultMaxTokensPerBatch)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Credential.File) == "" {
		return errors.New("credential.file is required")
	}
	if strings.TrimSpace(c.Output.Dir) == "" {
		return errors.New("output.dir is required")
	}

	switch c.Gemini.Backend {
	case "vertex", "gemini":
	default:
		return fmt.Errorf("gemini.backend must be vertex or gemini, got %q", c.Gemini.Backend)
	}
	if strings.TrimSpace(c.Gemini.Model) == "" {
		return errors.New("gemini.model is required")
	}
	if c.Gemini.MaxOutputTokens < 1 {
		return errors.New("gemini.max_output_tokens must be at least 1")
	}
	if c.Gemini.MaxRetries < 0 {
		return errors.New("gemini.max_retries cannot be negative")
	}

	if c.Analyzer.MaxTokensPerBatch < 1 {
		return errors.New("analyzer.max_tokens_per_batch must be at least 1")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text, got %q", c.Log.Format)
	}

	return nil
}
