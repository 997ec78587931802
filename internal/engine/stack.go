package engine

import "sort"

// FormatStack returns the countries of year ranked by total, largest first.
// Equal totals keep their feed order. An unknown year yields an empty slice.
// The index itself is never reordered.
func FormatStack(index YearIndex, year int) []CountryRecord {
	countries, ok := index[year]
	if !ok {
		return []CountryRecord{}
	}

	ranked := make([]CountryRecord, len(countries))
	copy(ranked, countries)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Total > ranked[j].Total
	})
	return ranked
}
