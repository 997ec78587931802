package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/energyscope/internal/energy"
	"github.com/rshade/energyscope/internal/ingest"
)

// sampleRaw has three non-contiguous years, a tie on total in 2000, and a country
// (Xland) that only appears from 2001 on.
func sampleRaw() []ingest.YearRecord {
	return []ingest.YearRecord{
		{Year: 2000, Countries: []ingest.CountryRecord{
			{Name: "Alpha", Total: 100, Energy: map[energy.Type]float64{energy.Oil: 60, energy.Coal: 40}},
			{Name: "Beta", Total: 300, Energy: map[energy.Type]float64{energy.Gas: 200, energy.Nuclear: 100}},
			{Name: "Gamma", Total: 100, Energy: map[energy.Type]float64{energy.Wind: 70, energy.Solar: 30}},
		}},
		{Year: 2001, Countries: []ingest.CountryRecord{
			{Name: "Alpha", Total: 110, Energy: map[energy.Type]float64{energy.Oil: 70, energy.Coal: 40}},
			{Name: "Beta", Total: 310, Energy: map[energy.Type]float64{energy.Gas: 210, energy.Nuclear: 100}},
			{Name: "Xland", Total: 999, Energy: map[energy.Type]float64{energy.Hydro: 999}},
		}},
		{Year: 2002, Countries: []ingest.CountryRecord{
			{Name: "Alpha", Total: 121, Energy: map[energy.Type]float64{energy.Oil: 81, energy.Coal: 40}},
			{Name: "Gamma", Total: 90, Energy: map[energy.Type]float64{energy.Wind: 60, energy.Biofuel: 30}},
			{Name: "Xland", Total: 1001, Energy: map[energy.Type]float64{energy.Hydro: 1001}},
		}},
		{Year: 1998, Countries: []ingest.CountryRecord{
			{Name: "Alpha", Total: 90, Energy: map[energy.Type]float64{energy.Oil: 90}},
		}},
	}
}

func countryNames(records []CountryRecord) []string {
	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, r.Country)
	}
	return names
}

func TestNormalize(t *testing.T) {
	raw := sampleRaw()
	index := Normalize(raw)

	require.Len(t, index, 4)
	assert.Equal(t, []int{1998, 2000, 2001, 2002}, index.Years())

	countries, ok := index.Countries(2000)
	require.True(t, ok)
	assert.Equal(t, []string{"Alpha", "Beta", "Gamma"}, countryNames(countries), "feed order is preserved")

	alpha := countries[0]
	assert.InDelta(t, 100.0, alpha.Total, 1e-9)
	assert.InDelta(t, 60.0, alpha.Oil, 1e-9)
	assert.InDelta(t, 40.0, alpha.Coal, 1e-9)
	for _, typ := range []energy.Type{energy.Gas, energy.Nuclear, energy.Hydro, energy.Wind, energy.Solar, energy.Biofuel} {
		assert.Zero(t, alpha.Get(typ), "absent type %s defaults to zero", typ)
	}

	_, ok = index.Countries(1999)
	assert.False(t, ok)
}

func TestNormalizeKeepsTotalVerbatim(t *testing.T) {
	raw := []ingest.YearRecord{{Year: 2010, Countries: []ingest.CountryRecord{
		{Name: "Mismatch", Total: 5, Energy: map[energy.Type]float64{energy.Oil: 100}},
	}}}

	rec := Normalize(raw)[2010][0]
	assert.InDelta(t, 5.0, rec.Total, 1e-9, "total is authoritative, not the per-type sum")
}

func TestNormalizeDuplicateYearLaterWins(t *testing.T) {
	raw := []ingest.YearRecord{
		{Year: 2010, Countries: []ingest.CountryRecord{{Name: "First", Total: 1}}},
		{Year: 2010, Countries: []ingest.CountryRecord{{Name: "Second", Total: 2}}},
	}
	index := Normalize(raw)
	require.Len(t, index, 1)
	assert.Equal(t, []string{"Second"}, countryNames(index[2010]))
}

func TestNormalizedRecordJSONShape(t *testing.T) {
	rec := Normalize(sampleRaw())[2000][0]
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var flat map[string]any
	require.NoError(t, json.Unmarshal(data, &flat))
	assert.Len(t, flat, 2+len(energy.Types()))
	assert.Equal(t, "Alpha", flat["country"])
	for _, typ := range energy.Types() {
		assert.Contains(t, flat, string(typ))
	}
}

func TestFormatStack(t *testing.T) {
	raw := sampleRaw()
	index := Normalize(raw)

	for _, year := range index.Years() {
		t.Run("permutation sorted by total", func(t *testing.T) {
			stack := FormatStack(index, year)

			var rawYear ingest.YearRecord
			for _, r := range raw {
				if r.Year == year {
					rawYear = r
				}
			}
			require.Len(t, stack, len(rawYear.Countries))

			totals := map[string]float64{}
			for _, c := range rawYear.Countries {
				totals[c.Name] = c.Total
			}
			for i, rec := range stack {
				assert.InDelta(t, totals[rec.Country], rec.Total, 1e-9)
				if i > 0 {
					assert.GreaterOrEqual(t, stack[i-1].Total, rec.Total)
				}
			}
		})
	}

	t.Run("ties keep feed order", func(t *testing.T) {
		stack := FormatStack(index, 2000)
		assert.Equal(t, []string{"Beta", "Alpha", "Gamma"}, countryNames(stack))
	})

	t.Run("index is not reordered", func(t *testing.T) {
		_ = FormatStack(index, 2000)
		assert.Equal(t, []string{"Alpha", "Beta", "Gamma"}, countryNames(index[2000]))
	})

	t.Run("unknown year is empty", func(t *testing.T) {
		stack := FormatStack(index, 1965)
		assert.NotNil(t, stack)
		assert.Empty(t, stack)
	})
}

func TestBuildSeries(t *testing.T) {
	index := Normalize(sampleRaw())

	series := BuildSeries(index, Selection{})
	require.Len(t, series, len(index))
	for i := 1; i < len(series); i++ {
		assert.Less(t, series[i-1].Year, series[i].Year, "strictly ascending by year")
	}

	y2000 := series[1]
	assert.Equal(t, 2000, y2000.Year)
	assert.InDelta(t, 60.0, y2000.Energy.Oil, 1e-9)
	assert.InDelta(t, 200.0, y2000.Energy.Gas, 1e-9)
	assert.InDelta(t, 70.0, y2000.Energy.Wind, 1e-9)
	assert.InDelta(t, 500.0, y2000.TotalConsumption, 1e-9)

	t.Run("filtered", func(t *testing.T) {
		filtered := BuildSeries(index, NewSelection("Alpha", "Nowhere"))
		require.Len(t, filtered, len(index), "one point per year even when nothing matches")

		assert.InDelta(t, 60.0, filtered[1].Energy.Oil, 1e-9)
		assert.Zero(t, filtered[1].Energy.Gas)
		assert.InDelta(t, 100.0, filtered[1].TotalConsumption, 1e-9)
	})

	t.Run("selection absent from every year", func(t *testing.T) {
		for _, p := range BuildSeries(index, NewSelection("Nowhere")) {
			assert.Zero(t, p.TotalConsumption)
		}
	})

	t.Run("empty index", func(t *testing.T) {
		series := BuildSeries(YearIndex{}, Selection{})
		assert.NotNil(t, series)
		assert.Empty(t, series)
	})
}

func TestBuildSeriesRoundsBeforeSumming(t *testing.T) {
	// Per-type sums of 1.005 round to 1.01 each; the total is 2.02, whereas
	// rounding the true sum (2.01) would give 2.01.
	raw := []ingest.YearRecord{{Year: 2020, Countries: []ingest.CountryRecord{
		{Name: "A", Total: 2.01, Energy: map[energy.Type]float64{energy.Oil: 1.005, energy.Coal: 1.005}},
	}}}

	series := BuildSeries(Normalize(raw), Selection{})
	require.Len(t, series, 1)

	p := series[0]
	assert.Equal(t, 1.01, p.Energy.Oil)
	assert.Equal(t, 1.01, p.Energy.Coal)
	assert.Equal(t, 2.02, p.TotalConsumption)
	assert.NotEqual(t, energy.Round(1.005+1.005), p.TotalConsumption)
}

func TestBuildSeriesSumsAcrossCountriesBeforeRounding(t *testing.T) {
	raw := []ingest.YearRecord{{Year: 2020, Countries: []ingest.CountryRecord{
		{Name: "A", Total: 1, Energy: map[energy.Type]float64{energy.Solar: 0.004}},
		{Name: "B", Total: 1, Energy: map[energy.Type]float64{energy.Solar: 0.004}},
	}}}

	p := BuildSeries(Normalize(raw), Selection{})[0]
	assert.Equal(t, 0.01, p.Energy.Solar)
	assert.Equal(t, 0.01, p.TotalConsumption)
}

func TestAverageRange(t *testing.T) {
	index := Normalize(sampleRaw())

	t.Run("candidates come from the first qualifying year", func(t *testing.T) {
		avg := AverageRange(index, 2000, 2002)
		assert.NotContains(t, countryNames(avg), "Xland")
		assert.Equal(t, []string{"Beta", "Alpha", "Gamma"}, countryNames(avg))
	})

	t.Run("means over the years a country appears", func(t *testing.T) {
		avg := AverageRange(index, 2000, 2002)
		byName := map[string]CountryAverage{}
		for _, a := range avg {
			byName[a.Country] = a
		}

		alpha := byName["Alpha"]
		assert.Equal(t, 110.33, alpha.Total) // (100+110+121)/3
		assert.Equal(t, 70.33, alpha.Oil)    // (60+70+81)/3
		assert.Equal(t, 40.0, alpha.Coal)

		beta := byName["Beta"] // 2000 and 2001 only
		assert.Equal(t, 305.0, beta.Total)
		assert.Equal(t, 205.0, beta.Gas)

		gamma := byName["Gamma"] // 2000 and 2002 only
		assert.Equal(t, 95.0, gamma.Total)
		assert.Equal(t, 65.0, gamma.Wind)
		assert.Equal(t, 15.0, gamma.Solar)
		assert.Equal(t, 15.0, gamma.Biofuel)
	})

	t.Run("later start picks a different candidate set", func(t *testing.T) {
		avg := AverageRange(index, 2001, 2002)
		assert.Equal(t, []string{"Xland", "Beta", "Alpha"}, countryNames(avg))
		assert.Equal(t, 1000.0, avg[0].Total)
	})

	t.Run("range spanning a gap", func(t *testing.T) {
		avg := AverageRange(index, 1990, 1999)
		require.Len(t, avg, 1)
		assert.Equal(t, "Alpha", avg[0].Country)
	})

	t.Run("no qualifying year", func(t *testing.T) {
		avg := AverageRange(index, 1965, 1970)
		assert.NotNil(t, avg)
		assert.Empty(t, avg)
	})

	t.Run("inverted bounds match nothing", func(t *testing.T) {
		assert.Empty(t, AverageRange(index, 2002, 2000))
	})
}

func TestAverageRangeSingleYearMatchesStack(t *testing.T) {
	index := Normalize(sampleRaw())
	for _, year := range index.Years() {
		assert.Equal(t, FormatStack(index, year), AverageRange(index, year, year), "year %d", year)
	}
}

func TestAverageRangeRoundsHalfAwayFromZero(t *testing.T) {
	raw := []ingest.YearRecord{
		{Year: 2000, Countries: []ingest.CountryRecord{{Name: "A", Total: 1.00, Energy: map[energy.Type]float64{energy.Gas: 1}}}},
		{Year: 2001, Countries: []ingest.CountryRecord{{Name: "A", Total: 1.01, Energy: map[energy.Type]float64{energy.Gas: 2}}}},
	}
	avg := AverageRange(Normalize(raw), 2000, 2001)
	require.Len(t, avg, 1)
	assert.Equal(t, 1.01, avg[0].Total) // mean 1.005
	assert.Equal(t, 1.5, avg[0].Gas)
}

func TestMapData(t *testing.T) {
	raw := sampleRaw()
	index := Normalize(raw)

	t.Run("no range passes raw through", func(t *testing.T) {
		out := MapData(raw, index, nil)
		assert.Equal(t, raw, out)
		require.NotEmpty(t, out)
		assert.Same(t, &raw[0], &out[0])
	})

	t.Run("range collapses into one synthetic year", func(t *testing.T) {
		r := NewYearRange(2002, 2000)
		out := MapData(raw, index, &r)
		require.Len(t, out, 1)
		assert.Equal(t, 2002, out[0].Year)

		averages := AverageRange(index, 2000, 2002)
		require.Len(t, out[0].Countries, len(averages))
		for i, c := range out[0].Countries {
			assert.Equal(t, averages[i].Country, c.Name)
			assert.Equal(t, averages[i].Total, c.Total)
			assert.Len(t, c.Energy, len(energy.Types()), "every type present")
			assert.Equal(t, averages[i].Oil, c.Energy[energy.Oil])
		}
	})

	t.Run("range without data", func(t *testing.T) {
		r := YearRange{Start: 2010, End: 2012}
		out := MapData(raw, index, &r)
		require.Len(t, out, 1)
		assert.Equal(t, 2012, out[0].Year)
		assert.Empty(t, out[0].Countries)
	})
}

func TestSelection(t *testing.T) {
	var zero Selection
	assert.True(t, zero.IsEmpty())
	assert.True(t, zero.Includes("anything"))
	assert.Empty(t, zero.Names())

	sel := NewSelection("B", "A", "B")
	assert.False(t, sel.IsEmpty())
	assert.Equal(t, []string{"B", "A"}, sel.Names())
	assert.True(t, sel.Includes("A"))
	assert.False(t, sel.Includes("C"))

	names := sel.Names()
	names[0] = "mutated"
	assert.Equal(t, []string{"B", "A"}, sel.Names())

	blank := NewSelection("")
	assert.False(t, blank.IsEmpty(), "a blank name is still a filter")
	assert.False(t, blank.Includes("A"))
	assert.Equal(t, []string{""}, blank.Names())

	assert.True(t, NewSelection().IsEmpty())
}

func TestYearRange(t *testing.T) {
	r := NewYearRange(2012, 2010)
	assert.Equal(t, YearRange{Start: 2010, End: 2012}, r)
	assert.True(t, r.Contains(2011))
	assert.False(t, r.Contains(2013))
	assert.Equal(t, "2010-2012", r.String())

	assert.False(t, SingleYear(2000).IsRange())
	assert.Equal(t, "2000", SingleYear(2000).String())

	p := OverRange(2005, 2001)
	require.True(t, p.IsRange())
	assert.Equal(t, 2001, p.Range.Start)
	assert.Equal(t, 2005, p.Range.End)
}

func newTestEngine(t *testing.T) (*Engine, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	eng := New(zerolog.New(&buf))
	eng.LoadRecords(sampleRaw())
	return eng, &buf
}

func TestEngineSelection(t *testing.T) {
	eng, _ := newTestEngine(t)
	index := Normalize(sampleRaw())

	assert.False(t, eng.HasSelectedCountries())
	assert.Equal(t, BuildSeries(index, Selection{}), eng.ConsumptionData())

	filtered := eng.SetSelectedCountries([]string{"Gamma"})
	assert.True(t, eng.HasSelectedCountries())
	assert.Equal(t, []string{"Gamma"}, eng.SelectedCountries())
	assert.Equal(t, BuildSeries(index, NewSelection("Gamma")), filtered)
	assert.Equal(t, filtered, eng.ConsumptionData())

	// A request-scoped series leaves the active selection alone.
	_ = eng.SeriesFor(NewSelection("Alpha"))
	assert.Equal(t, []string{"Gamma"}, eng.SelectedCountries())

	cleared := eng.SetSelectedCountries([]string{})
	assert.False(t, eng.HasSelectedCountries())
	assert.Equal(t, BuildSeries(index, Selection{}), cleared)
	assert.Equal(t, BuildSeries(index, Selection{}), eng.ConsumptionData())

	eng.SetSelectedCountries(nil)
	assert.False(t, eng.HasSelectedCountries())
}

func TestEngineBlankSelectionMatchesNothing(t *testing.T) {
	eng, _ := newTestEngine(t)
	index := Normalize(sampleRaw())

	series := eng.SetSelectedCountries([]string{""})
	assert.True(t, eng.HasSelectedCountries())
	assert.Equal(t, []string{""}, eng.SelectedCountries())
	require.Len(t, series, len(index))
	for _, p := range series {
		assert.Zero(t, p.TotalConsumption, "year %d", p.Year)
	}
}

func TestEngineResultsAreCopies(t *testing.T) {
	raw := sampleRaw()
	eng := New(zerolog.Nop())
	eng.LoadRecords(raw)
	want := sampleRaw()

	raw[0].Countries[0].Name = "Changed"
	assert.Equal(t, want, eng.RawData(), "loading copies the input")

	got := eng.RawData()
	got[0].Countries[0].Total = -1
	got[0].Countries[0].Energy[energy.Oil] = -1
	assert.Equal(t, want, eng.RawData())

	mapped := eng.MapData(nil)
	mapped[0].Countries = nil
	assert.Equal(t, want, eng.MapData(nil))

	series := eng.ConsumptionData()
	series[0].TotalConsumption = -1
	assert.NotEqual(t, -1.0, eng.ConsumptionData()[0].TotalConsumption)

	selected := eng.SetSelectedCountries([]string{"Alpha"})
	selected[0].Year = 0
	assert.NotZero(t, eng.ConsumptionData()[0].Year)
}

func TestEngineFullSubsetIsStillAFilter(t *testing.T) {
	eng, _ := newTestEngine(t)
	eng.SetSelectedCountries([]string{"Alpha", "Beta", "Gamma", "Xland"})
	assert.True(t, eng.HasSelectedCountries())
}

func TestEngineSelectionSurvivesReload(t *testing.T) {
	eng, _ := newTestEngine(t)
	eng.SetSelectedCountries([]string{"Alpha"})

	result := eng.LoadRecords(sampleRaw())
	assert.Equal(t, BuildSeries(result.Index, NewSelection("Alpha")), result.Series)
}

func TestEngineYearData(t *testing.T) {
	eng, logs := newTestEngine(t)
	index := Normalize(sampleRaw())

	assert.Equal(t, FormatStack(index, 2001), eng.YearData(SingleYear(2001)))
	assert.Equal(t, AverageRange(index, 2000, 2002), eng.YearData(OverRange(2002, 2000)))
	assert.Empty(t, logs.String())

	empty := eng.YearData(SingleYear(1965))
	assert.Empty(t, empty)
	assert.Contains(t, logs.String(), `"level":"warn"`)
	assert.Contains(t, logs.String(), ErrEmptyRange.Error())

	logs.Reset()
	assert.Empty(t, eng.YearData(OverRange(1965, 1970)))
	assert.Contains(t, logs.String(), `"period":"1965-1970"`)
}

func TestEngineMapData(t *testing.T) {
	eng, logs := newTestEngine(t)

	assert.Equal(t, sampleRaw(), eng.MapData(nil))
	assert.Equal(t, sampleRaw(), eng.RawData())

	r := NewYearRange(2010, 2012)
	out := eng.MapData(&r)
	require.Len(t, out, 1)
	assert.Equal(t, 2012, out[0].Year)
	assert.Contains(t, logs.String(), ErrEmptyRange.Error())
}

func TestEngineLoad(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "energy.json")
	payload, err := json.Marshal(sampleRaw())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(good, payload, 0600))

	eng := New(zerolog.Nop())
	assert.False(t, eng.Loaded())
	assert.Empty(t, eng.ConsumptionData())
	assert.Empty(t, eng.Years())

	result, err := eng.Load(context.Background(), ingest.FileSource{Path: good})
	require.NoError(t, err)
	assert.True(t, eng.Loaded())
	assert.Len(t, result.Index, 4)
	assert.Len(t, result.Series, 4)
	assert.Equal(t, []int{1998, 2000, 2001, 2002}, eng.Years())

	t.Run("failure keeps previous state", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{"oops": true}`), 0600))

		_, err := eng.Load(context.Background(), ingest.FileSource{Path: bad})
		require.ErrorIs(t, err, ingest.ErrLoad)
		var loadErr *ingest.LoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Equal(t, bad, loadErr.Source)

		assert.Len(t, eng.Years(), 4)
	})
}

func TestSeriesTotalsAreFinite(t *testing.T) {
	for _, p := range BuildSeries(Normalize(sampleRaw()), Selection{}) {
		assert.False(t, math.IsNaN(p.TotalConsumption))
		assert.False(t, math.IsInf(p.TotalConsumption, 0))
	}
}
