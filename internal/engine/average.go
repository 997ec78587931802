package engine

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rshade/energyscope/internal/energy"
)

// AverageRange averages each country's total and energy values over the indexed years
// in [start, end], inclusive.
//
// The countries considered are those of the first indexed year in the range; a
// country that only appears in later years is left out. Each mean is taken over the
// years in which the country appears and rounded to two decimals. The result is
// ranked by averaged total, largest first. No indexed year in range yields an empty
// slice.
func AverageRange(index YearIndex, start, end int) []CountryAverage {
	var years []int
	for _, y := range index.Years() {
		if y >= start && y <= end {
			years = append(years, y)
		}
	}
	if len(years) == 0 {
		return []CountryAverage{}
	}

	types := energy.Types()
	candidates := index[years[0]]
	averages := make([]CountryAverage, 0, len(candidates))

	for _, candidate := range candidates {
		var samples []CountryRecord
		for _, y := range years {
			if rec, ok := find(index[y], candidate.Country); ok {
				samples = append(samples, rec)
			}
		}
		if len(samples) == 0 {
			continue
		}

		n := decimal.NewFromInt(int64(len(samples)))
		mean := func(value func(CountryRecord) float64) float64 {
			sum := decimal.Zero
			for _, s := range samples {
				sum = sum.Add(decimal.NewFromFloat(value(s)))
			}
			return energy.RoundDecimal(sum.Div(n))
		}

		avg := CountryAverage{
			Country: candidate.Country,
			Total:   mean(func(r CountryRecord) float64 { return r.Total }),
		}
		for _, t := range types {
			avg.Set(t, mean(func(r CountryRecord) float64 { return r.Get(t) }))
		}
		averages = append(averages, avg)
	}

	sort.SliceStable(averages, func(i, j int) bool {
		return averages[i].Total > averages[j].Total
	})
	return averages
}
