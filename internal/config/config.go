package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"jiratools/internal/logging"
)

// DefaultPath is where the CLI looks for configuration when --config is not given.
const DefaultPath = "jiratools.yaml"

// Config holds all jiratools configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Jira REST API access
	Jira JiraConfig `yaml:"jira"`

	// HTTP gateway
	Server ServerConfig `yaml:"server"`

	// Tool selection
	Tools ToolsConfig `yaml:"tools"`

	Logging LoggingConfig `yaml:"logging"`

	// Source is the file the values were read from, empty for defaults.
	Source string `yaml:"-"`
	// EnvOverrides names the environment variables that replaced a value.
	EnvOverrides []string `yaml:"-"`
}

// JiraConfig configures the Jira Cloud REST client.
type JiraConfig struct {
	BaseURL   string `yaml:"base_url"`
	Email     string `yaml:"email"`
	APIToken  string `yaml:"api_token"`
	Timeout   string `yaml:"timeout"`
	UserAgent string `yaml:"user_agent"`
}

// ServerConfig configures the HTTP tool gateway.
type ServerConfig struct {
	HTTPAddr        string `yaml:"http_addr"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
	GinMode         string `yaml:"gin_mode"`        // debug, release, test
	MaxConnections  int    `yaml:"max_connections"` // 0 = unlimited
}

// ToolsConfig selects which registered tools are exposed.
type ToolsConfig struct {
	// Enabled lists tool names to expose. Empty means all.
	Enabled []string `yaml:"enabled"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "jiratools",
		Version: "0.3.0",

		Jira: JiraConfig{
			Timeout:   "30s",
			UserAgent: "jiratools/0.3",
		},

		Server: ServerConfig{
			HTTPAddr:        ":8089",
			ShutdownTimeout: "10s",
			GinMode:         "release",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Dir:    filepath.Join(".jiratools", "logs"),
		},
	}
}

// Load loads configuration from a YAML file.
// A missing file yields the defaults. Environment overrides apply either way,
// after an optional .env file in the working directory has been read.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		cfg.Source = path
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// .env is optional; existing environment variables win over it.
	_ = godotenv.Load()

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	override := func(name string, apply func(v string)) {
		if v := os.Getenv(name); v != "" {
			apply(v)
			c.EnvOverrides = append(c.EnvOverrides, name)
		}
	}

	// JIRA_HOST is accepted as a bare host name for compatibility with
	// other Jira tool servers; JIRA_BASE_URL wins when both are set.
	override("JIRA_HOST", func(v string) { c.Jira.BaseURL = normalizeBaseURL(v) })
	override("JIRA_BASE_URL", func(v string) { c.Jira.BaseURL = normalizeBaseURL(v) })
	override("JIRA_EMAIL", func(v string) { c.Jira.Email = v })
	override("JIRA_API_TOKEN", func(v string) { c.Jira.APIToken = v })
	override("JIRA_TIMEOUT", func(v string) { c.Jira.Timeout = v })

	override("JIRATOOLS_HTTP_ADDR", func(v string) { c.Server.HTTPAddr = v })
	override("JIRATOOLS_DEBUG", func(v string) { c.Logging.DebugMode = v == "1" || strings.EqualFold(v, "true") })
	override("JIRATOOLS_LOG_LEVEL", func(v string) { c.Logging.Level = v })
}

// LogLoaded records where the configuration came from in the config log.
// It must run after logging.Initialize. The API token is never written.
func (c *Config) LogLoaded() {
	if c.Source == "" {
		logging.Config("No config file found, using defaults")
	} else {
		logging.Config("Loaded config from %s", c.Source)
	}
	if len(c.EnvOverrides) > 0 {
		logging.Config("Environment overrides: %s", strings.Join(c.EnvOverrides, ", "))
	}
	logging.Config("Jira %s (basic auth=%v, timeout=%v), tools=%v",
		c.Jira.BaseURL, c.Jira.APIToken != "", c.GetJiraTimeout(), c.Tools.Enabled)
}

func normalizeBaseURL(s string) string {
	s = strings.TrimRight(strings.TrimSpace(s), "/")
	if s != "" && !strings.Contains(s, "://") {
		s = "https://" + s
	}
	return s
}

// GetJiraTimeout returns the Jira request timeout as a duration.
func (c *Config) GetJiraTimeout() time.Duration {
	d, err := time.ParseDuration(c.Jira.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// GetShutdownTimeout returns the gateway graceful shutdown timeout.
func (c *Config) GetShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Jira.BaseURL == "" {
		return fmt.Errorf("jira base URL not configured (set jira.base_url or JIRA_BASE_URL)")
	}
	if !strings.HasPrefix(c.Jira.BaseURL, "http://") && !strings.HasPrefix(c.Jira.BaseURL, "https://") {
		return fmt.Errorf("invalid jira base URL: %s", c.Jira.BaseURL)
	}
	if (c.Jira.Email == "") != (c.Jira.APIToken == "") {
		return fmt.Errorf("jira email and API token must be set together (JIRA_EMAIL, JIRA_API_TOKEN)")
	}
	if _, err := time.ParseDuration(c.Jira.Timeout); c.Jira.Timeout != "" && err != nil {
		return fmt.Errorf("invalid jira timeout %q: %w", c.Jira.Timeout, err)
	}
	return nil
}

// Redacted returns a copy safe to print: the API token is masked.
func (c *Config) Redacted() *Config {
	cp := *c
	cp.Tools.Enabled = append([]string(nil), c.Tools.Enabled...)
	cp.EnvOverrides = append([]string(nil), c.EnvOverrides...)
	if cp.Jira.APIToken != "" {
		cp.Jira.APIToken = "********"
	}
	return &cp
}
