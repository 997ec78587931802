package engine

import "fmt"

// YearRange is an inclusive [Start, End] interval of years.
type YearRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// NewYearRange returns the range spanning a and b in either order, the way a brushed
// selection is read left to right.
func NewYearRange(a, b int) YearRange {
	if a > b {
		a, b = b, a
	}
	return YearRange{Start: a, End: b}
}

// Contains reports whether year lies within the range.
func (r YearRange) Contains(year int) bool {
	return year >= r.Start && year <= r.End
}

func (r YearRange) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// Period is either a single year or a year range.
type Period struct {
	Year  int
	Range *YearRange
}

// SingleYear selects one year.
func SingleYear(year int) Period {
	return Period{Year: year}
}

// OverRange selects the range spanning a and b.
func OverRange(a, b int) Period {
	r := NewYearRange(a, b)
	return Period{Range: &r}
}

// IsRange reports whether the period spans a range rather than a single year.
func (p Period) IsRange() bool {
	return p.Range != nil
}

func (p Period) String() string {
	if p.IsRange() {
		return p.Range.String()
	}
	return fmt.Sprintf("%d", p.Year)
}
