package engine

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rshade/energyscope/internal/energy"
)

// ConsumptionPoint is the aggregate consumption of the selected countries in one year.
type ConsumptionPoint struct {
	Year int `json:"year"`

	// Energy holds the per-type sums, each rounded to two decimals.
	Energy energy.Mix `json:"energy"`

	// TotalConsumption is the sum of the rounded per-type values in Energy.
	TotalConsumption float64 `json:"totalConsumption"`
}

// BuildSeries sums every energy type across the selected countries for each indexed
// year. Per-type sums are rounded before they are added into TotalConsumption.
// Selected names missing from a year contribute nothing to it. The result has one
// point per year in ascending year order.
func BuildSeries(index YearIndex, sel Selection) []ConsumptionPoint {
	types := energy.Types()
	series := make([]ConsumptionPoint, 0, len(index))

	for year, countries := range index {
		sums := make([]decimal.Decimal, len(types))
		for _, c := range countries {
			if !sel.Includes(c.Country) {
				continue
			}
			for i, t := range types {
				sums[i] = sums[i].Add(decimal.NewFromFloat(c.Get(t)))
			}
		}

		point := ConsumptionPoint{Year: year}
		total := decimal.Zero
		for i, t := range types {
			rounded := sums[i].Round(energy.Precision)
			point.Energy.Set(t, rounded.InexactFloat64())
			total = total.Add(rounded)
		}
		point.TotalConsumption = total.InexactFloat64()
		series = append(series, point)
	}

	// Map iteration order is random; the chronological order is part of the contract.
	sort.Slice(series, func(i, j int) bool { return series[i].Year < series[j].Year })
	return series
}
