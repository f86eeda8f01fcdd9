package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"jiratools/internal/config"
	"jiratools/internal/jira"
	"jiratools/internal/logging"
	"jiratools/internal/tools"
	"jiratools/internal/tools/projects"
)

var (
	// Global flags
	configPath string
	verbose    bool
	timeout    time.Duration

	// Loaded in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

// errResultFailed signals a tool error result that was already printed.
var errResultFailed = errors.New("tool returned an error result")

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "jira-tools",
	Short: "Jira Cloud tools for LLM clients and the terminal",
	Long: `jira-tools exposes Jira Cloud operations as tools.

The same tool registry is reachable three ways:
  - directly from the terminal (search, tools)
  - as an MCP server over stdio (mcp)
  - as an HTTP gateway (serve)

Credentials come from jiratools.yaml, a .env file, or the JIRA_BASE_URL,
JIRA_EMAIL and JIRA_API_TOKEN environment variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("timeout") {
			cfg.Jira.Timeout = timeout.String()
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}

		if err := logging.Initialize(cfg.Logging.Options()); err != nil {
			return fmt.Errorf("failed to initialize file logging: %w", err)
		}
		logging.Boot("%s %s starting: %s", cfg.Name, cfg.Version, cmd.CommandPath())
		cfg.LogLoaded()
		logger.Debug("Configuration loaded",
			zap.String("path", configPath),
			zap.String("jira", cfg.Jira.BaseURL),
			zap.Strings("tools", cfg.Tools.Enabled))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Jira request timeout (overrides config)")

	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errResultFailed) {
			fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		}
		os.Exit(1)
	}
}

// newJiraClient builds the REST client from the loaded config.
func newJiraClient(c *config.Config) (*jira.Client, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return jira.NewClient(jira.Options{
		BaseURL:   c.Jira.BaseURL,
		Email:     c.Jira.Email,
		APIToken:  c.Jira.APIToken,
		Timeout:   c.GetJiraTimeout(),
		UserAgent: c.Jira.UserAgent,
	})
}

// buildRegistry registers every tool and narrows it to tools.enabled. When
// the Jira client cannot be built and strict is false, the tools are still
// registered and report the missing client as an error result on each call.
func buildRegistry(c *config.Config, strict bool) (*tools.Registry, error) {
	var getter jira.Getter
	client, err := newJiraClient(c)
	switch {
	case err == nil:
		getter = client
	case strict:
		return nil, err
	default:
		logger.Warn("Jira client unavailable", zap.Error(err))
	}

	registry := tools.NewRegistry()
	if err := projects.RegisterAll(registry, getter); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	restricted, err := registry.Restrict(c.Tools.Enabled)
	if err != nil {
		return nil, fmt.Errorf("invalid tools.enabled: %w", err)
	}
	logger.Debug("Tool registry ready", zap.Strings("tools", restricted.Names()))
	return restricted, nil
}
