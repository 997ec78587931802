// Package engine reshapes the energy dataset into the views the presentation layer
// draws: a ranked per-year breakdown, a cross-year consumption series, and a
// range-averaged snapshot for map coloring.
//
// The derivations (Normalize, FormatStack, BuildSeries, AverageRange, MapData) are
// pure functions. Engine holds the loaded dataset and the active country selection
// and is the only place that state changes.
package engine

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/rshade/energyscope/internal/ingest"
	"github.com/rshade/energyscope/internal/logging"
)

// LoadResult is what a successful load derives eagerly.
type LoadResult struct {
	Index  YearIndex
	Series []ConsumptionPoint
}

// Engine serves the derived views of one loaded dataset. It is safe for concurrent
// use; every method observes or replaces state atomically. Slices handed in or out
// are copies, so callers may modify them freely.
type Engine struct {
	mu        sync.RWMutex
	raw       []ingest.YearRecord
	index     YearIndex
	selection Selection
	series    []ConsumptionPoint
	loaded    bool

	logger zerolog.Logger
}

// New returns an empty Engine logging through logger.
func New(logger zerolog.Logger) *Engine {
	return &Engine{
		index:  YearIndex{},
		series: []ConsumptionPoint{},
		logger: logging.ComponentLogger(logger, "engine"),
	}
}

// Load fetches and parses the dataset from src and derives the index and series.
// A failed load returns the *ingest.LoadError and leaves the previous state intact.
func (e *Engine) Load(ctx context.Context, src ingest.Source) (*LoadResult, error) {
	raw, err := ingest.Load(ctx, src)
	if err != nil {
		e.logger.Error().Ctx(ctx).Str("operation", "load").Err(err).Msg("dataset load failed")
		return nil, err
	}

	result := e.LoadRecords(raw)
	e.logger.Info().
		Ctx(ctx).
		Str("operation", "load").
		Str("source", src.String()).
		Int("year_count", len(result.Index)).
		Msg("dataset loaded")
	return result, nil
}

// LoadRecords replaces the dataset with raw, which must already be validated, and
// derives the index and the series for the current selection.
func (e *Engine) LoadRecords(raw []ingest.YearRecord) *LoadResult {
	index := Normalize(raw)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.raw = cloneRecords(raw)
	e.index = index
	e.series = BuildSeries(index, e.selection)
	e.loaded = true

	return &LoadResult{Index: index, Series: slices.Clone(e.series)}
}

// Loaded reports whether a dataset has been loaded.
func (e *Engine) Loaded() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loaded
}

// YearData returns the ranked breakdown for a single year, or the per-country
// averages when p is a range. An empty result is logged as a warning.
func (e *Engine) YearData(p Period) []CountryRecord {
	e.mu.RLock()
	index := e.index
	e.mu.RUnlock()

	var out []CountryRecord
	if p.IsRange() {
		out = AverageRange(index, p.Range.Start, p.Range.End)
	} else {
		out = FormatStack(index, p.Year)
	}

	if len(out) == 0 {
		e.logger.Warn().
			Str("operation", "year_data").
			Str("period", p.String()).
			Err(ErrEmptyRange).
			Msg("no data for the requested period")
	}
	return out
}

// ConsumptionData returns the series for the active selection.
func (e *Engine) ConsumptionData() []ConsumptionPoint {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.series)
}

// SeriesFor returns the series for sel without changing the active selection.
func (e *Engine) SeriesFor(sel Selection) []ConsumptionPoint {
	e.mu.RLock()
	index := e.index
	e.mu.RUnlock()
	return BuildSeries(index, sel)
}

// SetSelectedCountries replaces the active selection (empty means every country)
// and returns the recomputed series.
func (e *Engine) SetSelectedCountries(names []string) []ConsumptionPoint {
	sel := NewSelection(names...)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.selection = sel
	e.series = BuildSeries(e.index, sel)

	e.logger.Debug().
		Str("operation", "set_selection").
		Strs("countries", sel.Names()).
		Int("point_count", len(e.series)).
		Msg("selection updated")
	return slices.Clone(e.series)
}

// HasSelectedCountries reports whether the series is restricted to a subset.
func (e *Engine) HasSelectedCountries() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return !e.selection.IsEmpty()
}

// SelectedCountries returns the active selection in the order it was given.
func (e *Engine) SelectedCountries() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.selection.Names()
}

// MapData returns the raw dataset, or a single synthetic year averaged over r.
func (e *Engine) MapData(r *YearRange) []ingest.YearRecord {
	e.mu.RLock()
	raw, index := e.raw, e.index
	e.mu.RUnlock()

	if r == nil {
		return cloneRecords(raw)
	}
	out := MapData(raw, index, r)
	if len(out[0].Countries) == 0 {
		e.logger.Warn().
			Str("operation", "map_data").
			Str("period", r.String()).
			Err(ErrEmptyRange).
			Msg("no data for the requested range")
	}
	return out
}

// RawData returns the dataset as loaded.
func (e *Engine) RawData() []ingest.YearRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return cloneRecords(e.raw)
}

// Years returns the loaded years in ascending order.
func (e *Engine) Years() []int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.index.Years()
}

// cloneRecords deep-copies raw records down to each country's energy map.
func cloneRecords(raw []ingest.YearRecord) []ingest.YearRecord {
	if raw == nil {
		return nil
	}
	out := make([]ingest.YearRecord, len(raw))
	for i, rec := range raw {
		out[i] = ingest.YearRecord{Year: rec.Year, Countries: slices.Clone(rec.Countries)}
		for j := range out[i].Countries {
			out[i].Countries[j].Energy = maps.Clone(rec.Countries[j].Energy)
		}
	}
	return out
}
