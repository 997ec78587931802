package energy

// Mix holds one value per energy type. The JSON keys match the feed keys so that a
// struct embedding Mix serializes flat, e.g. {"country": "...", "oil": 1.2, ...}.
type Mix struct {
	Oil     float64 `json:"oil"`
	Coal    float64 `json:"coal"`
	Gas     float64 `json:"gas"`
	Nuclear float64 `json:"nuclear"`
	Hydro   float64 `json:"hydro"`
	Wind    float64 `json:"wind"`
	Solar   float64 `json:"solar"`
	Biofuel float64 `json:"biofuel"`
}

// MixFromMap builds a Mix from a partial mapping. Absent types default to 0 and keys
// outside the closed set are ignored.
func MixFromMap(m map[Type]float64) Mix {
	var mix Mix
	for _, t := range allTypes {
		mix.Set(t, m[t])
	}
	return mix
}

// Get returns the value for t, or 0 for an unknown type.
func (m Mix) Get(t Type) float64 {
	switch t {
	case Oil:
		return m.Oil
	case Coal:
		return m.Coal
	case Gas:
		return m.Gas
	case Nuclear:
		return m.Nuclear
	case Hydro:
		return m.Hydro
	case Wind:
		return m.Wind
	case Solar:
		return m.Solar
	case Biofuel:
		return m.Biofuel
	default:
		return 0
	}
}

// Set stores v for t. Unknown types are ignored.
func (m *Mix) Set(t Type, v float64) {
	switch t {
	case Oil:
		m.Oil = v
	case Coal:
		m.Coal = v
	case Gas:
		m.Gas = v
	case Nuclear:
		m.Nuclear = v
	case Hydro:
		m.Hydro = v
	case Wind:
		m.Wind = v
	case Solar:
		m.Solar = v
	case Biofuel:
		m.Biofuel = v
	}
}

// Map returns a complete mapping with every type present.
func (m Mix) Map() map[Type]float64 {
	out := make(map[Type]float64, len(allTypes))
	for _, t := range allTypes {
		out[t] = m.Get(t)
	}
	return out
}

// CategoryTotal sums the values of every type in c.
func (m Mix) CategoryTotal(c Category) float64 {
	var sum float64
	for _, t := range TypesIn(c) {
		sum += m.Get(t)
	}
	return sum
}
