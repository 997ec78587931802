package engine

import "github.com/rshade/energyscope/internal/ingest"

// MapData shapes data for geographic rendering, which consumes raw year records.
// Without a range the raw dataset is returned unchanged. With a range the averages
// over it are wrapped as a single record dated at the range's end year, so a range
// is drawn exactly like one year.
func MapData(raw []ingest.YearRecord, index YearIndex, r *YearRange) []ingest.YearRecord {
	if r == nil {
		return raw
	}

	averages := AverageRange(index, r.Start, r.End)
	countries := make([]ingest.CountryRecord, 0, len(averages))
	for _, avg := range averages {
		countries = append(countries, ingest.CountryRecord{
			Name:   avg.Country,
			Total:  avg.Total,
			Energy: avg.Map(),
		})
	}

	return []ingest.YearRecord{{Year: r.End, Countries: countries}}
}
