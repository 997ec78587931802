package pagination

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rshade/energyscope/internal/energy"
	"github.com/rshade/energyscope/internal/engine"
)

// Sort fields that are not energy types.
const (
	FieldCountry = "country"
	FieldTotal   = "total"
)

// DefaultOrder is the order used when a sort expression names no order.
func DefaultOrder(field string) string {
	if field == FieldCountry {
		return SortOrderAsc
	}
	return SortOrderDesc
}

// CountrySorter re-sorts country rows by name, total, one energy type or the
// subtotal of one energy category.
type CountrySorter struct {
	validFields map[string]bool
}

// NewCountrySorter creates a CountrySorter accepting country, total, every energy
// type and every energy category.
func NewCountrySorter() *CountrySorter {
	fields := map[string]bool{FieldCountry: true, FieldTotal: true}
	for _, t := range energy.Types() {
		fields[string(t)] = true
	}
	for _, c := range energy.Categories() {
		fields[string(c)] = true
	}
	return &CountrySorter{validFields: fields}
}

// IsValidField checks if the field is valid for sorting.
func (s *CountrySorter) IsValidField(field string) bool {
	return s.validFields[field]
}

// GetValidFields returns all valid sort fields.
func (s *CountrySorter) GetValidFields() []string {
	fields := make([]string, 0, len(s.validFields))
	for field := range s.validFields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// metric returns the numeric value a field sorts by. An energy type takes precedence
// over a category of the same name.
func (s *CountrySorter) metric(field string) (func(engine.CountryRecord) float64, error) {
	if field == FieldTotal {
		return func(r engine.CountryRecord) float64 { return r.Total }, nil
	}
	if t, err := energy.ParseType(field); err == nil {
		return func(r engine.CountryRecord) float64 { return r.Get(t) }, nil
	}
	if s.IsValidField(field) {
		c := energy.Category(field)
		return func(r engine.CountryRecord) float64 { return r.CategoryTotal(c) }, nil
	}
	return nil, fmt.Errorf("%w: %q (valid: %s)", ErrInvalidSortField, field, strings.Join(s.GetValidFields(), ", "))
}

// Sort returns a copy of records sorted by field in order. Ties keep their incoming
// order. An empty field returns records unchanged.
func (s *CountrySorter) Sort(records []engine.CountryRecord, field, order string) ([]engine.CountryRecord, error) {
	if field == "" {
		return records, nil
	}

	var less func(a, b engine.CountryRecord) bool
	if field == FieldCountry {
		less = func(a, b engine.CountryRecord) bool { return a.Country < b.Country }
	} else {
		value, err := s.metric(field)
		if err != nil {
			return nil, err
		}
		less = func(a, b engine.CountryRecord) bool { return value(a) < value(b) }
	}

	sorted := make([]engine.CountryRecord, len(records))
	copy(sorted, records)

	sort.SliceStable(sorted, func(i, j int) bool {
		if order == SortOrderDesc {
			return less(sorted[j], sorted[i])
		}
		return less(sorted[i], sorted[j])
	})
	return sorted, nil
}
