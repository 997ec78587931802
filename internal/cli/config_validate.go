package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rshade/energyscope/internal/config"
)

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validates the configuration at ~/.energyscope/config.yaml (or $ENERGYSCOPE_HOME)
together with ENERGYSCOPE_* environment overrides.

This includes:
- YAML syntax of the config file
- Output format and precision
- Logging level and format
- Cache TTL bounds
- Timeline bounds and default year`,
		Example: `  # Validate current configuration
  energyscope config validate

  # Validate and show detailed information
  energyscope config validate --verbose`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")

	return cmd
}

// runConfigValidate executes the configuration validation logic.
func runConfigValidate(cmd *cobra.Command, verbose bool) error {
	if err := config.GlobalLoadError(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	cfg := commandConfig(cmd)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	cmd.Printf("✅ Configuration is valid\n")

	if verbose {
		printVerboseDetails(cmd, cfg)
	}

	return nil
}

// printVerboseDetails prints detailed configuration information.
func printVerboseDetails(cmd *cobra.Command, cfg *config.Config) {
	cmd.Println()
	cmd.Println("Configuration details:")
	cmd.Printf("  Data source: %s\n", cfg.Data.Source)
	cmd.Printf("  Output format: %s\n", cfg.Output.DefaultFormat)
	cmd.Printf("  Output precision: %d\n", cfg.Output.Precision)
	cmd.Printf("  Logging level: %s\n", cfg.Logging.Level)
	cmd.Printf("  Log file: %s\n", cfg.Logging.File)
	cmd.Printf("  Timeline: %d-%d (default %d)\n", cfg.Timeline.Start, cfg.Timeline.End, cfg.Timeline.DefaultYear)

	if cfg.Cache.Enabled {
		cmd.Printf("  Cache: %s (ttl %ds)\n", cfg.Cache.Directory, cfg.Cache.TTLSeconds)
	} else {
		cmd.Println("  Cache: disabled")
	}
}

// NewConfigShowCmd creates the config show command, which prints the effective
// configuration as YAML.
func NewConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long:  "Prints the configuration after defaults, the config file, environment variables and flags are applied.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := yaml.Marshal(commandConfig(cmd))
			if err != nil {
				return fmt.Errorf("encoding configuration: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
