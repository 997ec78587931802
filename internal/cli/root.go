package cli

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/energyscope/internal/config"
	"github.com/rshade/energyscope/internal/logging"
)

// Persistent flag names.
const (
	flagData    = "data"
	flagDebug   = "debug"
	flagOutput  = "output"
	flagNoCache = "no-cache"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger = zerolog.Nop() //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the energyscope CLI. It wires up
// logging, tracing and the flag overrides, and registers every subcommand.
func NewRootCmd(ver string) *cobra.Command {
	var logResult *logging.LogPathResult

	cmd := &cobra.Command{
		Use:   "energyscope",
		Short: "Explore national energy consumption by source",
		Long: `energyscope reads a per-year, per-country energy consumption dataset and
derives the views a dashboard draws: a ranked breakdown for one year, the total
consumption series across years, and per-country averages over a year range.`,
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetGlobalConfig().Clone()
			if err := applyFlagOverrides(cmd, cfg); err != nil {
				return err
			}
			cmd.SetContext(config.ContextWithConfig(cmd.Context(), cfg))

			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
	}

	cmd.PersistentFlags().String(flagData, "", "dataset file path or http(s) URL (overrides config and ENERGYSCOPE_DATA)")
	cmd.PersistentFlags().Bool(flagDebug, false, "enable debug logging")
	cmd.PersistentFlags().StringP(flagOutput, "o", "",
		fmt.Sprintf("output format: %s (default from config)", strings.Join(config.OutputFormats(), ", ")))
	cmd.PersistentFlags().Bool(flagNoCache, false, "bypass the cache for remote datasets")

	cmd.AddCommand(
		NewStackCmd(), NewAverageCmd(), NewSeriesCmd(), NewMapCmd(),
		NewTypesCmd(), NewExportCmd(), NewServeCmd(), newConfigCmd(), newCacheCmd(),
	)

	return cmd
}

const rootCmdExample = `  # Rank countries by consumption in 2023
  energyscope stack --year 2023

  # Average each country over 2000-2010
  energyscope average --from 2000 --to 2010

  # Total consumption per year for two countries, as JSON
  energyscope series --country Germany --country France -o json

  # Serve the HTTP API on port 9090
  energyscope serve --addr :9090

  # Read the dataset from a URL
  energyscope stack --data https://example.com/energy_data.json`

// applyFlagOverrides copies explicitly set persistent flags onto cfg, the copy of the
// global configuration owned by one invocation. Flags override both the config file
// and the environment.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed(flagData) {
		data, _ := flags.GetString(flagData)
		cfg.Data.Source = data
	}
	if flags.Changed(flagOutput) {
		output, _ := flags.GetString(flagOutput)
		output = strings.ToLower(strings.TrimSpace(output))
		if !slices.Contains(config.OutputFormats(), output) {
			return fmt.Errorf("%w: %q (want one of %s)",
				ErrInvalidOutputFormat, output, strings.Join(config.OutputFormats(), ", "))
		}
		cfg.Output.DefaultFormat = output
	}
	if noCache, _ := flags.GetBool(flagNoCache); noCache {
		cfg.Cache.Enabled = false
	}
	return nil
}

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(NewConfigShowCmd(), NewConfigValidateCmd())
	return cmd
}
