package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/rshade/energyscope/internal/engine"
	"github.com/rshade/energyscope/internal/export"
)

// NewExportCmd creates the export command, which writes the views to an .xlsx workbook.
func NewExportCmd() *cobra.Command {
	var (
		out       string
		countries []string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the stack, series and range average to an Excel workbook",
		Example: `  energyscope export --out energy.xlsx --year 2020
  energyscope export --out energy.xlsx --from 2000 --to 2010 --country Germany`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := rangeFlags(cmd)
			if err != nil {
				return err
			}

			eng, err := loadEngine(cmd)
			if err != nil {
				return err
			}

			year := yearFlag(cmd)
			report := export.Report{
				Year:   year,
				Stack:  eng.YearData(engine.SingleYear(year)),
				Series: eng.SeriesFor(engine.NewSelection(countries...)),
				Range:  r,
			}
			if r != nil {
				report.Average = eng.YearData(engine.Period{Range: r})
			}

			if err = export.WriteFile(out, report); err != nil {
				if errors.Is(err, export.ErrEmptyReport) {
					notifyEmpty(cmd, "the export")
					return nil
				}
				return err
			}

			logger.Info().
				Ctx(cmd.Context()).
				Str("operation", "export").
				Str("path", out).
				Int("stack_rows", len(report.Stack)).
				Int("series_rows", len(report.Series)).
				Msg("workbook written")
			cmd.Printf("Wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "energyscope.xlsx", "path of the workbook to write")
	cmd.Flags().Int("year", 0, "year for the Stack sheet (default from timeline.default_year)")
	cmd.Flags().StringArrayVar(&countries, "country", nil, "restrict the Series sheet to a country (repeatable)")
	addRangeFlags(cmd)
	return cmd
}
