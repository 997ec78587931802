// Package ingest loads the raw energy dataset: one record per year, each listing the
// countries reported that year with their total and per-source consumption.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rshade/energyscope/internal/energy"
	"github.com/rshade/energyscope/internal/logging"
)

// YearRecord is one year of the raw feed.
type YearRecord struct {
	Year      int             `json:"year"`
	Countries []CountryRecord `json:"countries"`
}

// CountryRecord is one country's raw figures. Energy may omit any type; a missing
// entry means zero. Keys outside the known set are kept as-is.
type CountryRecord struct {
	Name   string                  `json:"name"`
	Total  float64                 `json:"total"`
	Energy map[energy.Type]float64 `json:"energy"`
}

// Parse decodes a dataset document and checks its shape.
// Every failure is returned as a *LoadError.
func Parse(data []byte) ([]YearRecord, error) {
	return ParseWithContext(context.Background(), "", data)
}

// ParseWithContext decodes a dataset document read from source. ctx only carries the logger.
func ParseWithContext(ctx context.Context, source string, data []byte) ([]YearRecord, error) {
	log := logging.FromContext(ctx)
	log.Debug().
		Ctx(ctx).
		Str("component", "ingest").
		Str("operation", "parse").
		Str("source", source).
		Int("data_size_bytes", len(data)).
		Msg("parsing energy dataset")

	var records []YearRecord
	if err := json.Unmarshal(data, &records); err != nil {
		log.Error().
			Ctx(ctx).
			Str("component", "ingest").
			Str("operation", "parse").
			Err(err).
			Msg("failed to parse dataset JSON")
		return nil, &LoadError{Source: source, Err: fmt.Errorf("parsing dataset JSON: %w", err)}
	}

	if err := validate(records); err != nil {
		log.Error().
			Ctx(ctx).
			Str("component", "ingest").
			Str("operation", "validate").
			Err(err).
			Msg("dataset has an unexpected shape")
		return nil, &LoadError{Source: source, Err: err}
	}

	log.Debug().
		Ctx(ctx).
		Str("component", "ingest").
		Int("year_count", len(records)).
		Msg("dataset parsed successfully")

	return records, nil
}

// validate enforces the invariants the engine relies on: a year on every record, a
// name on every country, and unique names within a year.
func validate(records []YearRecord) error {
	for i, rec := range records {
		if rec.Year == 0 {
			return fmt.Errorf("%w: record %d has no year", ErrMalformed, i)
		}
		seen := make(map[string]struct{}, len(rec.Countries))
		for j, c := range rec.Countries {
			if c.Name == "" {
				return fmt.Errorf("%w: year %d country %d has no name", ErrMalformed, rec.Year, j)
			}
			if _, dup := seen[c.Name]; dup {
				return fmt.Errorf("%w: year %d lists %q twice", ErrMalformed, rec.Year, c.Name)
			}
			seen[c.Name] = struct{}{}
		}
	}
	return nil
}
