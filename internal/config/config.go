// Package config provides configuration management
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kokjohn0824/financial-researcher/internal/i18n"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	// Model settings
	Model         string `mapstructure:"model"`
	OpenAIAPIKey  string `mapstructure:"openai_api_key"`
	OpenAIBaseURL string `mapstructure:"openai_base_url"`
	UseResponses  bool   `mapstructure:"use_responses"`
	WebSearch     bool   `mapstructure:"web_search"`
	MaxTurns      int    `mapstructure:"max_turns"`
	Timeout       int    `mapstructure:"timeout"` // seconds
	Tracing       bool   `mapstructure:"tracing"`

	// Crew definition; empty means the embedded default
	CrewFile string `mapstructure:"crew_file"`

	// Paths
	ProjectRoot string `mapstructure:"project_root"`
	OutputDir   string `mapstructure:"output_dir"`
	LogsDir     string `mapstructure:"logs_dir"`
	HistoryDir  string `mapstructure:"history_dir"`

	// Transcripts stores every task conversation in <history_dir>/transcripts.db
	Transcripts bool `mapstructure:"transcripts"`

	// Execution settings
	DisableDetailedLog bool `mapstructure:"disable_detailed_log"`
	DryRun             bool `mapstructure:"dry_run"`
	Verbose            bool `mapstructure:"verbose"`
	Debug              bool `mapstructure:"debug"`
	Quiet              bool `mapstructure:"quiet"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	cwd, _ := os.Getwd()
	return &Config{
		Model:        "gpt-4o-mini",
		UseResponses: true,
		WebSearch:    false,
		MaxTurns:     10,
		Timeout:      600,
		Tracing:      false,
		ProjectRoot:  cwd,
		OutputDir:    ".",
		LogsDir:      ".crew-logs",
		HistoryDir:   ".crew-history",
	}
}

// Load loads configuration from the default search paths, .env and environment
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile loads configuration like Load, but reads the given file instead of
// searching for one when path is not empty.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	// .env never overrides variables that are already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env: %w", err)
	}

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".financial-researcher")
		v.SetConfigType("yaml")

		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
		v.AddConfigPath("$HOME/.config/financial-researcher")
	}

	v.SetEnvPrefix("FINANCIAL_RESEARCHER")
	v.AutomaticEnv()

	// Standard OpenAI variables
	v.BindEnv("openai_api_key", "FINANCIAL_RESEARCHER_OPENAI_API_KEY", "OPENAI_API_KEY")
	v.BindEnv("openai_base_url", "FINANCIAL_RESEARCHER_OPENAI_BASE_URL", "OPENAI_BASE_URL")

	v.SetDefault("model", cfg.Model)
	v.SetDefault("use_responses", cfg.UseResponses)
	v.SetDefault("web_search", cfg.WebSearch)
	v.SetDefault("max_turns", cfg.MaxTurns)
	v.SetDefault("timeout", cfg.Timeout)
	v.SetDefault("tracing", cfg.Tracing)
	v.SetDefault("output_dir", cfg.OutputDir)
	v.SetDefault("logs_dir", cfg.LogsDir)
	v.SetDefault("history_dir", cfg.HistoryDir)
	v.SetDefault("transcripts", cfg.Transcripts)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf(i18n.ErrReadConfigFailed, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf(i18n.ErrUnmarshalConfig, err)
	}

	cfg.resolvePaths()

	return cfg, nil
}

// resolvePaths converts relative paths to absolute paths
func (c *Config) resolvePaths() {
	if c.ProjectRoot == "" {
		c.ProjectRoot, _ = os.Getwd()
	}

	c.OutputDir = c.abs(c.OutputDir)
	c.LogsDir = c.abs(c.LogsDir)
	c.HistoryDir = c.abs(c.HistoryDir)
	if c.CrewFile != "" {
		c.CrewFile = c.abs(c.CrewFile)
	}
}

func (c *Config) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.ProjectRoot, path)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.MaxTurns < 1 {
		return errors.New(i18n.ErrConfigMaxTurns)
	}

	if c.Timeout < 1 {
		return errors.New(i18n.ErrConfigTimeout)
	}

	return nil
}

// GetConfigFilePath returns the path to the config file
func GetConfigFilePath() string {
	if _, err := os.Stat(".financial-researcher.yaml"); err == nil {
		return ".financial-researcher.yaml"
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ".financial-researcher.yaml"
	}

	configPath := filepath.Join(home, ".financial-researcher.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return configPath
	}

	xdgConfig := filepath.Join(home, ".config", "financial-researcher", ".financial-researcher.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}

	return ".financial-researcher.yaml"
}

// GenerateDefaultConfigFile creates a default config file.
// The file may later hold an API key, so it is written 0600.
func GenerateDefaultConfigFile(path string) error {
	content := `# Financial Researcher Configuration

# Model settings
model: gpt-4o-mini          # default model for agents without an llm in crew.yaml
# openai_api_key: sk-...    # defaults to $OPENAI_API_KEY (also read from .env)
# openai_base_url: ""       # OpenAI-compatible endpoint
use_responses: true         # use the Responses API (needed for web_search)
web_search: false           # give agents that list web_search a hosted search tool
max_turns: 10               # per task
timeout: 600                # seconds for the whole kickoff
tracing: false              # export traces to the OpenAI dashboard

# Crew definition (agents and tasks); empty uses the built-in crew
# crew_file: crew.yaml

# Paths (relative to the working directory)
output_dir: .               # task output_file paths are resolved here
logs_dir: .crew-logs        # execution logs
history_dir: .crew-history  # recorded runs
transcripts: false          # keep agent conversations in history_dir/transcripts.db (SQLite)
`

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
