package engine

import (
	"sort"

	"github.com/rshade/energyscope/internal/energy"
	"github.com/rshade/energyscope/internal/ingest"
)

// CountryRecord is one country's figures for one year with every energy type present.
// It serializes flat: {"country": ..., "total": ..., "oil": ..., ...}.
type CountryRecord struct {
	Country string  `json:"country"`
	Total   float64 `json:"total"`
	energy.Mix
}

// CountryAverage is a CountryRecord whose values are means over a year range,
// each rounded to two decimals.
type CountryAverage = CountryRecord

// YearIndex maps a year to its normalized countries in feed order.
type YearIndex map[int][]CountryRecord

// Normalize builds the YearIndex for a raw dataset. Each country's energy mapping is
// completed with zeros for absent types and total is copied as-is. When the feed
// repeats a year, the later record wins.
func Normalize(raw []ingest.YearRecord) YearIndex {
	index := make(YearIndex, len(raw))
	for _, rec := range raw {
		countries := make([]CountryRecord, 0, len(rec.Countries))
		for _, c := range rec.Countries {
			countries = append(countries, CountryRecord{
				Country: c.Name,
				Total:   c.Total,
				Mix:     energy.MixFromMap(c.Energy),
			})
		}
		index[rec.Year] = countries
	}
	return index
}

// Years returns the indexed years in ascending order.
func (idx YearIndex) Years() []int {
	years := make([]int, 0, len(idx))
	for y := range idx {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Countries returns the countries recorded for year and whether the year exists.
func (idx YearIndex) Countries(year int) ([]CountryRecord, bool) {
	c, ok := idx[year]
	return c, ok
}

// find returns the record named country within one year's countries.
func find(countries []CountryRecord, country string) (CountryRecord, bool) {
	for _, c := range countries {
		if c.Country == country {
			return c, true
		}
	}
	return CountryRecord{}, false
}
