package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/energyscope/internal/config"
	"github.com/rshade/energyscope/internal/energy"
	"github.com/rshade/energyscope/internal/engine"
	"github.com/rshade/energyscope/internal/ingest"
)

// Tabwriter settings shared by every table.
const (
	tabMinWidth = 0
	tabWidth    = 8
	tabPadding  = 2
)

// isWriterTerminal reports whether w is a terminal. Buffers used in tests never are.
func isWriterTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isTerminal(f)
	}
	return false
}

// headerColor returns the Lip Gloss color used for table headers.
func headerColor() lipgloss.Color { return lipgloss.Color("39") }

// table collects rows and writes them aligned. Headers are bold and colored on a
// terminal and plain otherwise.
type table struct {
	header []string
	rows   [][]string
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) render(w io.Writer) error {
	header := t.header
	if isWriterTerminal(w) {
		style := lipgloss.NewStyle().Bold(true).Foreground(headerColor())
		header = make([]string, len(t.header))
		for i, h := range t.header {
			header[i] = style.Render(h)
		}
	}

	tw := tabwriter.NewWriter(w, tabMinWidth, tabWidth, tabPadding, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range t.rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// typeHeaders returns the display label of every energy type in canonical order.
func typeHeaders() []string {
	types := energy.Types()
	headers := make([]string, len(types))
	for i, t := range types {
		headers[i] = strings.ToUpper(t.Label())
	}
	return headers
}

func mixCells(mix energy.Mix, precision int) []string {
	types := energy.Types()
	cells := make([]string, len(types))
	for i, t := range types {
		cells[i] = FormatFloat(mix.Get(t), precision)
	}
	return cells
}

// writeStructured writes items as one JSON document or as newline-delimited JSON.
// It reports whether format was a structured one.
func writeStructured[T any](w io.Writer, format string, items []T) (bool, error) {
	switch format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(items)
	case config.FormatNDJSON:
		enc := json.NewEncoder(w)
		for _, item := range items {
			if err := enc.Encode(item); err != nil {
				return true, err
			}
		}
		return true, nil
	default:
		return false, nil
	}
}

// RenderCountries writes a ranked country breakdown (a stack or a range average).
func RenderCountries(w io.Writer, format string, precision int, records []engine.CountryRecord) error {
	return RenderCountriesFrom(w, format, precision, 1, records)
}

// RenderCountriesFrom is RenderCountries for a window of a longer ranking whose first
// row has rank firstRank.
func RenderCountriesFrom(w io.Writer, format string, precision, firstRank int, records []engine.CountryRecord) error {
	if done, err := writeStructured(w, format, records); done {
		return err
	}

	t := table{header: append([]string{"RANK", "COUNTRY", "TOTAL"}, typeHeaders()...)}
	for i, rec := range records {
		row := []string{strconv.Itoa(firstRank + i), rec.Country, FormatFloat(rec.Total, precision)}
		t.add(append(row, mixCells(rec.Mix, precision)...)...)
	}
	return t.render(w)
}

// RenderSeries writes the consumption series.
func RenderSeries(w io.Writer, format string, precision int, series []engine.ConsumptionPoint) error {
	if done, err := writeStructured(w, format, series); done {
		return err
	}

	t := table{header: append([]string{"YEAR", "TOTAL"}, typeHeaders()...)}
	for _, p := range series {
		row := []string{strconv.Itoa(p.Year), FormatFloat(p.TotalConsumption, precision)}
		t.add(append(row, mixCells(p.Energy, precision)...)...)
	}
	return t.render(w)
}

// RenderMap writes map data, one row per country per year.
func RenderMap(w io.Writer, format string, precision int, records []ingest.YearRecord) error {
	if done, err := writeStructured(w, format, records); done {
		return err
	}

	t := table{header: append([]string{"YEAR", "COUNTRY", "TOTAL"}, typeHeaders()...)}
	for _, rec := range records {
		for _, c := range rec.Countries {
			row := []string{strconv.Itoa(rec.Year), c.Name, FormatFloat(c.Total, precision)}
			t.add(append(row, mixCells(energy.MixFromMap(c.Energy), precision)...)...)
		}
	}
	return t.render(w)
}

// RenderTypes writes the energy type legend.
func RenderTypes(w io.Writer, format string, types []energy.Descriptor) error {
	if done, err := writeStructured(w, format, types); done {
		return err
	}

	t := table{header: []string{"TYPE", "CATEGORY", "LABEL", "COLOR"}}
	for _, d := range types {
		t.add(string(d.Type), string(d.Category), d.Label, d.Color)
	}
	return t.render(w)
}
