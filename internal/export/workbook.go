// Package export writes energyscope views to an Excel workbook.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rshade/energyscope/internal/energy"
	"github.com/rshade/energyscope/internal/engine"
)

// Sheet names.
const (
	SheetStack   = "Stack"
	SheetSeries  = "Series"
	SheetAverage = "Average"

	defaultSheet = "Sheet1"
	columnWidth  = 14
	nameWidth    = 24
)

// ErrEmptyReport is returned when a report has nothing to write.
var ErrEmptyReport = errors.New("report has no data to export")

// Report is the set of views written to one workbook. Average is only written when
// Range is set.
type Report struct {
	Year    int
	Stack   []engine.CountryRecord
	Series  []engine.ConsumptionPoint
	Range   *engine.YearRange
	Average []engine.CountryAverage
}

// Build lays the report out as a workbook. The caller must Close it.
func Build(r Report) (*excelize.File, error) {
	if len(r.Stack) == 0 && len(r.Series) == 0 && len(r.Average) == 0 {
		return nil, ErrEmptyReport
	}

	f := excelize.NewFile()
	b := &builder{f: f}

	if err := f.SetSheetName(defaultSheet, SheetStack); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("naming stack sheet: %w", err)
	}

	b.writeStack(r.Year, r.Stack)
	b.writeSeries(r.Series)
	if r.Range != nil {
		b.writeAverage(*r.Range, r.Average)
	}

	if b.err != nil {
		_ = f.Close()
		return nil, b.err
	}
	return f, nil
}

// Write builds the report and streams it to w as .xlsx.
func Write(w io.Writer, r Report) error {
	f, err := Build(r)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err = f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// WriteFile builds the report and saves it at path.
func WriteFile(path string, r Report) error {
	f, err := Build(r)
	if err != nil {
		return err
	}
	defer f.Close()

	if err = f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook %s: %w", path, err)
	}
	return nil
}

// builder accumulates the first error so the sheet writers stay linear.
type builder struct {
	f   *excelize.File
	err error
}

func (b *builder) writeStack(year int, records []engine.CountryRecord) {
	header := append([]string{"Year", "Country", "Total"}, typeLabels()...)
	b.header(SheetStack, header)

	for i, rec := range records {
		row := []interface{}{year, rec.Country, rec.Total}
		b.row(SheetStack, i+2, appendMix(row, rec.Mix))
	}
	b.widths(SheetStack, len(header), 2)
}

func (b *builder) writeSeries(series []engine.ConsumptionPoint) {
	b.newSheet(SheetSeries)
	header := append([]string{"Year", "Total Consumption"}, typeLabels()...)
	b.header(SheetSeries, header)

	for i, p := range series {
		row := []interface{}{p.Year, p.TotalConsumption}
		b.row(SheetSeries, i+2, appendMix(row, p.Energy))
	}
	b.widths(SheetSeries, len(header), 0)
}

func (b *builder) writeAverage(r engine.YearRange, averages []engine.CountryAverage) {
	b.newSheet(SheetAverage)
	header := append([]string{"Range", "Country", "Total"}, typeLabels()...)
	b.header(SheetAverage, header)

	for i, avg := range averages {
		row := []interface{}{r.String(), avg.Country, avg.Total}
		b.row(SheetAverage, i+2, appendMix(row, avg.Mix))
	}
	b.widths(SheetAverage, len(header), 2)
}

func (b *builder) newSheet(name string) {
	if b.err != nil {
		return
	}
	if _, err := b.f.NewSheet(name); err != nil {
		b.err = fmt.Errorf("creating sheet %s: %w", name, err)
	}
}

// header writes the header row, colors each energy-type column with its legend color
// and freezes the row.
func (b *builder) header(sheet string, header []string) {
	if b.err != nil {
		return
	}

	cells := make([]interface{}, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := b.f.SetSheetRow(sheet, "A1", &cells); err != nil {
		b.err = fmt.Errorf("writing %s header: %w", sheet, err)
		return
	}

	bold, err := b.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		b.err = fmt.Errorf("creating header style: %w", err)
		return
	}
	lead := len(header) - len(energy.Types())
	last, _ := excelize.CoordinatesToCellName(lead, 1)
	if err = b.f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		b.err = fmt.Errorf("styling %s header: %w", sheet, err)
		return
	}

	for i, t := range energy.Types() {
		style, styleErr := b.f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
			Fill: excelize.Fill{
				Type:    "pattern",
				Pattern: 1,
				Color:   []string{strings.TrimPrefix(t.Color(), "#")},
			},
		})
		if styleErr != nil {
			b.err = fmt.Errorf("creating %s style: %w", t, styleErr)
			return
		}
		cell, _ := excelize.CoordinatesToCellName(lead+i+1, 1)
		if err = b.f.SetCellStyle(sheet, cell, cell, style); err != nil {
			b.err = fmt.Errorf("styling %s header: %w", sheet, err)
			return
		}
	}

	if err = b.f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		b.err = fmt.Errorf("freezing %s header: %w", sheet, err)
	}
}

func (b *builder) row(sheet string, row int, values []interface{}) {
	if b.err != nil {
		return
	}
	cell, _ := excelize.CoordinatesToCellName(1, row)
	if err := b.f.SetSheetRow(sheet, cell, &values); err != nil {
		b.err = fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
}

// widths sizes every column, giving the country column (nameCol, 1-based; 0 for
// none) extra room.
func (b *builder) widths(sheet string, columns, nameCol int) {
	if b.err != nil {
		return
	}
	first, _ := excelize.ColumnNumberToName(1)
	last, _ := excelize.ColumnNumberToName(columns)
	if err := b.f.SetColWidth(sheet, first, last, columnWidth); err != nil {
		b.err = fmt.Errorf("sizing %s columns: %w", sheet, err)
		return
	}
	if nameCol > 0 {
		col, _ := excelize.ColumnNumberToName(nameCol)
		if err := b.f.SetColWidth(sheet, col, col, nameWidth); err != nil {
			b.err = fmt.Errorf("sizing %s columns: %w", sheet, err)
		}
	}
}

func typeLabels() []string {
	types := energy.Types()
	labels := make([]string, len(types))
	for i, t := range types {
		labels[i] = t.Label()
	}
	return labels
}

func appendMix(row []interface{}, mix energy.Mix) []interface{} {
	for _, t := range energy.Types() {
		row = append(row, mix.Get(t))
	}
	return row
}
