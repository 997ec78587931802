package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/rshade/energyscope/internal/energy"
)

// NewSeriesCmd creates the series command, which prints total consumption per year.
func NewSeriesCmd() *cobra.Command {
	var countries []string

	cmd := &cobra.Command{
		Use:   "series",
		Short: "Show total consumption by source for every year",
		Long: `Sums each energy source across the selected countries (all countries when
none are given) for every year in the dataset. Each source is rounded to two
decimals before it is added into the year's total.`,
		Example: `  energyscope series
  energyscope series --country Germany --country France`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := loadEngine(cmd)
			if err != nil {
				return err
			}

			series := eng.SetSelectedCountries(countries)
			if len(series) == 0 {
				notifyEmpty(cmd, "any year")
			}

			cfg := commandConfig(cmd)
			return RenderSeries(cmd.OutOrStdout(), outputFormat(cmd), cfg.Output.Precision, series)
		},
	}
	cmd.Flags().StringArrayVar(&countries, "country", nil, "restrict the series to a country (repeatable)")
	return cmd
}

// NewMapCmd creates the map command, which prints the data a choropleth is drawn from.
func NewMapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "map",
		Short: "Show map data for every year or averaged over a range",
		Long: `Without a range, prints every year of the dataset as loaded. With --from and
--to, prints one synthetic year dated at the range's end holding each country's
averages over the range.`,
		Example: `  energyscope map -o json
  energyscope map --from 2010 --to 2012`,
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

			records := eng.MapData(r)
			if r != nil && len(records[0].Countries) == 0 {
				notifyEmpty(cmd, "years "+r.String())
			}

			cfg := commandConfig(cmd)
			return RenderMap(cmd.OutOrStdout(), outputFormat(cmd), cfg.Output.Precision, records)
		},
	}
	addRangeFlags(cmd)
	return cmd
}

// NewTypesCmd creates the types command, which lists the energy sources.
func NewTypesCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "types",
		Short: "List energy sources with their category, label and color",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			types := energy.Describe()
			if category != "" {
				if !slices.Contains(energy.Categories(), energy.Category(category)) {
					return fmt.Errorf("unknown category %q", category)
				}
				filtered := make([]energy.Descriptor, 0, len(types))
				for _, d := range types {
					if string(d.Category) == category {
						filtered = append(filtered, d)
					}
				}
				types = filtered
			}
			return RenderTypes(cmd.OutOrStdout(), outputFormat(cmd), types)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only list sources in this category (fossil_fuels, nuclear, renewables)")
	return cmd
}
