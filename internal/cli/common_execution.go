package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/rshade/energyscope/internal/cache"
	"github.com/rshade/energyscope/internal/config"
	"github.com/rshade/energyscope/internal/engine"
	"github.com/rshade/energyscope/internal/ingest"
	"github.com/rshade/energyscope/internal/logging"
)

// Errors returned for invalid flag combinations.
var (
	ErrInvalidOutputFormat = errors.New("invalid output format")
	ErrIncompleteRange     = errors.New("--from and --to must be given together")
)

// openCache returns the dataset cache described by cfg, or nil when caching is off.
func openCache(cfg *config.Config) (*cache.FileStore, error) {
	if !cfg.Cache.Enabled {
		return nil, nil //nolint:nilnil // nil store disables caching
	}
	store, err := cache.NewFileStore(cfg.Cache.Directory, true, cfg.Cache.TTLSeconds, cfg.Cache.MaxSizeMB)
	if err != nil {
		return nil, fmt.Errorf("opening dataset cache: %w", err)
	}
	return store, nil
}

// newEngine builds the dataset source from cfg, loads it and returns the engine.
func newEngine(ctx context.Context, cfg *config.Config) (*engine.Engine, error) {
	log := logging.FromContext(ctx)

	store, err := openCache(cfg)
	if err != nil {
		log.Warn().Ctx(ctx).Err(err).Msg("dataset cache unavailable, fetching uncached")
	}

	src, err := ingest.NewSource(cfg.Data.Source, &http.Client{Timeout: cfg.Data.Timeout}, store)
	if err != nil {
		return nil, err
	}

	loadCtx, cancel := context.WithTimeout(ctx, cfg.Data.Timeout)
	defer cancel()

	eng := engine.New(*log)
	if _, err = eng.Load(loadCtx, src); err != nil {
		return nil, fmt.Errorf("loading dataset: %w", err)
	}
	return eng, nil
}

// loadEngine loads the dataset for a command using its invocation configuration.
func loadEngine(cmd *cobra.Command) (*engine.Engine, error) {
	return newEngine(cmd.Context(), commandConfig(cmd))
}

// rangeFlags reads --from/--to. Both absent yields nil; only one of them is an error.
func rangeFlags(cmd *cobra.Command) (*engine.YearRange, error) {
	fromSet, toSet := cmd.Flags().Changed("from"), cmd.Flags().Changed("to")
	switch {
	case !fromSet && !toSet:
		return nil, nil //nolint:nilnil // absent range is a valid result
	case fromSet != toSet:
		return nil, ErrIncompleteRange
	}

	from, _ := cmd.Flags().GetInt("from")
	to, _ := cmd.Flags().GetInt("to")
	r := engine.NewYearRange(from, to)
	return &r, nil
}

// addRangeFlags registers --from and --to on cmd.
func addRangeFlags(cmd *cobra.Command) {
	cmd.Flags().Int("from", 0, "first year of the range (inclusive)")
	cmd.Flags().Int("to", 0, "last year of the range (inclusive)")
}

// yearFlag returns --year, or the configured default year when it was not given.
func yearFlag(cmd *cobra.Command) int {
	if cmd.Flags().Changed("year") {
		year, _ := cmd.Flags().GetInt("year")
		return year
	}
	return commandConfig(cmd).Timeline.DefaultYear
}

// commandConfig returns the configuration of the running invocation, flags applied.
func commandConfig(cmd *cobra.Command) *config.Config {
	return config.FromContext(cmd.Context())
}

// outputFormat returns the effective output format.
func outputFormat(cmd *cobra.Command) string {
	return commandConfig(cmd).Output.DefaultFormat
}

// notifyEmpty tells the user on stderr that a query produced no rows.
func notifyEmpty(cmd *cobra.Command, what string) {
	cmd.PrintErrf("No data for %s.\n", what)
}
