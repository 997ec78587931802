package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/energyscope/internal/cli/pagination"
	"github.com/rshade/energyscope/internal/config"
	"github.com/rshade/energyscope/internal/engine"
)

// NewStackCmd creates the stack command, which ranks countries by total consumption
// for one year.
func NewStackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stack",
		Short: "Rank countries by total consumption for one year",
		Example: `  # Ranking for the configured default year
  energyscope stack

  # Ranking for 1990 as newline-delimited JSON
  energyscope stack --year 1990 -o ndjson

  # Top ten solar producers
  energyscope stack --sort solar --limit 10`,
		Args: cobra.NoArgs,
		RunE: runStack,
	}
	cmd.Flags().Int("year", config.DefaultTimelineEnd, "year to rank (default from timeline.default_year)")
	pagination.AddFlags(cmd)
	return cmd
}

func runStack(cmd *cobra.Command, _ []string) error {
	params, err := pagination.FromCommand(cmd)
	if err != nil {
		return err
	}

	eng, err := loadEngine(cmd)
	if err != nil {
		return err
	}

	year := yearFlag(cmd)
	records := eng.YearData(engine.SingleYear(year))
	if len(records) == 0 {
		notifyEmpty(cmd, fmt.Sprintf("year %d", year))
	}
	return renderRanking(cmd, params, records)
}

// NewAverageCmd creates the average command, which averages each country over a
// year range.
func NewAverageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "average",
		Short: "Average each country's consumption over a year range",
		Long: `Averages each country's total and per-source consumption over the years in
[--from, --to]. The countries considered are those present in the first year of the
range that has data; each mean is taken over the years the country appears in.`,
		Example: `  energyscope average --from 2000 --to 2010`,
		Args:    cobra.NoArgs,
		RunE:    runAverage,
	}
	addRangeFlags(cmd)
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	pagination.AddFlags(cmd)
	return cmd
}

func runAverage(cmd *cobra.Command, _ []string) error {
	r, err := rangeFlags(cmd)
	if err != nil {
		return err
	}

	params, err := pagination.FromCommand(cmd)
	if err != nil {
		return err
	}

	eng, err := loadEngine(cmd)
	if err != nil {
		return err
	}

	records := eng.YearData(engine.Period{Range: r})
	if len(records) == 0 {
		notifyEmpty(cmd, "years "+r.String())
	}
	return renderRanking(cmd, params, records)
}

// renderRanking re-sorts and windows records per the pagination flags, then renders
// them. Table output gets a page footer on stderr when a window was requested.
func renderRanking(cmd *cobra.Command, params pagination.PaginationParams, records []engine.CountryRecord) error {
	sorted, err := pagination.NewCountrySorter().Sort(records, params.SortField, params.SortOrder)
	if err != nil {
		return err
	}

	window := pagination.Apply(params, sorted)
	firstRank := 1
	if len(window) > 0 {
		offset, _ := params.CalculateOffsetLimit()
		if offset >= len(sorted) {
			offset = len(sorted) - len(window)
		}
		firstRank = offset + 1
	}

	cfg := commandConfig(cmd)
	format := outputFormat(cmd)
	if err = RenderCountriesFrom(cmd.OutOrStdout(), format, cfg.Output.Precision, firstRank, window); err != nil {
		return err
	}

	if params.IsEnabled() && format == config.FormatTable && len(sorted) > 0 {
		meta := pagination.NewPaginationMeta(params, len(sorted))
		fmt.Fprintln(cmd.ErrOrStderr(), meta.Footer(len(window), "countries"))
	}
	return nil
}
