package engine

// Selection is an immutable set of country names restricting the consumption series.
// The zero value selects every country.
type Selection struct {
	names []string
	set   map[string]struct{}
}

// NewSelection builds a Selection from names. Duplicates are dropped and the
// first-seen order is kept for display. A blank name is kept like any other: it
// restricts the selection and matches no country.
func NewSelection(names ...string) Selection {
	sel := Selection{set: make(map[string]struct{}, len(names))}
	for _, n := range names {
		if _, dup := sel.set[n]; dup {
			continue
		}
		sel.set[n] = struct{}{}
		sel.names = append(sel.names, n)
	}
	return sel
}

// IsEmpty reports whether the selection is unrestricted.
func (s Selection) IsEmpty() bool {
	return len(s.set) == 0
}

// Includes reports whether country takes part in the series. Every country is
// included by an empty selection.
func (s Selection) Includes(country string) bool {
	if s.IsEmpty() {
		return true
	}
	_, ok := s.set[country]
	return ok
}

// Names returns the selected names in first-seen order. It is never nil.
func (s Selection) Names() []string {
	return append([]string{}, s.names...)
}
