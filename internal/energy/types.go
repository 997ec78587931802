// Package energy defines the closed set of energy sources tracked by the dataset.
//
// Every source belongs to exactly one Category. The set, its display labels and its
// legend colors are static configuration; nothing here is derived from data.
package energy

import "fmt"

// Type identifies one energy source. Its string value is the key used in the JSON feed.
type Type string

const (
	// Oil is crude oil and petroleum products.
	Oil Type = "oil"
	// Coal is all coal grades.
	Coal Type = "coal"
	// Gas is natural gas.
	Gas Type = "gas"
	// Nuclear is nuclear fission.
	Nuclear Type = "nuclear"
	// Hydro is hydropower.
	Hydro Type = "hydro"
	// Wind is onshore and offshore wind.
	Wind Type = "wind"
	// Solar is photovoltaic and solar thermal.
	Solar Type = "solar"
	// Biofuel is liquid and solid biofuels.
	Biofuel Type = "biofuel"
)

// Category groups energy types for display and color.
type Category string

const (
	// CategoryFossil groups oil, coal and gas.
	CategoryFossil Category = "fossil_fuels"
	// CategoryNuclear holds nuclear only.
	CategoryNuclear Category = "nuclear"
	// CategoryRenewable groups hydro, wind, solar and biofuel.
	CategoryRenewable Category = "renewables"
)

// typeInfo is the static metadata attached to each Type.
type typeInfo struct {
	category Category
	label    string
	color    string
}

// allTypes is the canonical order: fossil first, then nuclear, then renewables.
//
//nolint:gochecknoglobals // Compile-time constant lookup table.
var allTypes = []Type{Oil, Coal, Gas, Nuclear, Hydro, Wind, Solar, Biofuel}

//nolint:gochecknoglobals // Compile-time constant lookup table.
var allCategories = []Category{CategoryFossil, CategoryNuclear, CategoryRenewable}

//nolint:gochecknoglobals // Compile-time constant lookup table.
var typeTable = map[Type]typeInfo{
	Oil:     {category: CategoryFossil, label: "Oil", color: "#8B4513"},
	Coal:    {category: CategoryFossil, label: "Coal", color: "#2F4F4F"},
	Gas:     {category: CategoryFossil, label: "Natural Gas", color: "#696969"},
	Nuclear: {category: CategoryNuclear, label: "Nuclear", color: "#800080"},
	Hydro:   {category: CategoryRenewable, label: "Hydropower", color: "#4169E1"},
	Wind:    {category: CategoryRenewable, label: "Wind", color: "#87CEEB"},
	Solar:   {category: CategoryRenewable, label: "Solar", color: "#FFD700"},
	Biofuel: {category: CategoryRenewable, label: "Biofuel", color: "#228B22"},
}

// Types returns every energy type in canonical order. The slice is a fresh copy.
func Types() []Type {
	out := make([]Type, len(allTypes))
	copy(out, allTypes)
	return out
}

// Categories returns the three categories in display order.
func Categories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

// TypesIn returns the energy types belonging to c, in canonical order.
func TypesIn(c Category) []Type {
	var out []Type
	for _, t := range allTypes {
		if typeTable[t].category == c {
			out = append(out, t)
		}
	}
	return out
}

// ParseType returns the Type matching s exactly.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
	return t, nil
}

// Valid reports whether t is a member of the closed set.
func (t Type) Valid() bool {
	_, ok := typeTable[t]
	return ok
}

// Category returns the category t belongs to, or "" for an unknown type.
func (t Type) Category() Category {
	return typeTable[t].category
}

// Label returns the human-readable name, falling back to the raw key.
func (t Type) Label() string {
	if info, ok := typeTable[t]; ok {
		return info.label
	}
	return string(t)
}

// Color returns the legend color as a hex string.
func (t Type) Color() string {
	return typeTable[t].color
}

func (t Type) String() string { return string(t) }

// Descriptor is the exported view of one type's static metadata.
type Descriptor struct {
	Type     Type     `json:"type"`
	Category Category `json:"category"`
	Label    string   `json:"label"`
	Color    string   `json:"color"`
}

// Describe returns a Descriptor for every type in canonical order.
func Describe() []Descriptor {
	out := make([]Descriptor, 0, len(allTypes))
	for _, t := range allTypes {
		info := typeTable[t]
		out = append(out, Descriptor{Type: t, Category: info.category, Label: info.label, Color: info.color})
	}
	return out
}
