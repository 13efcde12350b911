package biomass

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
)

// SumTolerance is how far (in percentage points) the ratio sum may drift from
// 100 before CheckSum reports a warning.
const SumTolerance = 0.1

// Component is one by-product and its yield as a fraction of FFB mass.
type Component struct {
	Key   string  `json:"key" yaml:"key"`
	Name  string  `json:"name" yaml:"name"`
	Ratio float64 `json:"ratio" yaml:"ratio"`
}

// RatioTable is an ordered set of components. The zero value is an empty table.
// Tables are values: every method that changes ratios returns a new table.
type RatioTable struct {
	components []Component
}

// NewRatioTable builds a table in the given order. Keys must be unique and
// ratios non-negative.
func NewRatioTable(components ...Component) (RatioTable, error) {
	seen := make(map[string]bool, len(components))
	out := make([]Component, 0, len(components))
	for i, c := range components {
		c.Key = strings.TrimSpace(c.Key)
		if c.Key == "" {
			return RatioTable{}, fmt.Errorf("%w: component %d has no key", ErrInvalidInput, i)
		}
		folded := strings.ToLower(c.Key)
		if seen[folded] {
			return RatioTable{}, fmt.Errorf("%w: duplicate component %q", ErrInvalidInput, c.Key)
		}
		seen[folded] = true
		if !validAmount(c.Ratio) {
			return RatioTable{}, fmt.Errorf("%w: ratio for %q must be a non-negative number, got %v", ErrInvalidInput, c.Key, c.Ratio)
		}
		if c.Name == "" {
			c.Name = c.Key
		}
		out = append(out, c)
	}
	t := RatioTable{components: out}
	if math.IsInf(t.SumPercentage(), 0) {
		return RatioTable{}, fmt.Errorf("%w: ratio sum overflows", ErrInvalidInput)
	}
	return t, nil
}

func mustTable(components ...Component) RatioTable {
	t, err := NewRatioTable(components...)
	if err != nil {
		panic(err)
	}
	return t
}

// Defaults returns a fresh copy of the canonical six-component table.
func Defaults() RatioTable {
	return mustTable(
		Component{Key: "EFB", Name: "Empty Fruit Bunches (EFB)", Ratio: 0.21},
		Component{Key: "PKS", Name: "Palm Kernel Shell (PKS)", Ratio: 0.055},
		Component{Key: "MF", Name: "Mesocarp Fibre", Ratio: 0.144},
		Component{Key: "DC", Name: "Decanter Cake", Ratio: 0.035},
		Component{Key: "POME", Name: "Palm Oil Mill Effluent (POME)", Ratio: 0.583},
		Component{Key: "SPO", Name: "Sludge Palm Oil (SPO)", Ratio: 0.01},
	)
}

func (t RatioTable) Len() int { return len(t.components) }

// Components returns a copy of the table rows in order.
func (t RatioTable) Components() []Component {
	out := make([]Component, len(t.components))
	copy(out, t.components)
	return out
}

func (t RatioTable) Keys() []string {
	keys := make([]string, len(t.components))
	for i, c := range t.components {
		keys[i] = c.Key
	}
	return keys
}

// Ratio looks a component up by key or display name, ignoring case.
func (t RatioTable) Ratio(name string) (float64, bool) {
	i := t.index(name)
	if i < 0 {
		return 0, false
	}
	return t.components[i].Ratio, true
}

// Key returns the canonical key of the component a key or display name refers to.
func (t RatioTable) Key(name string) (string, bool) {
	i := t.index(name)
	if i < 0 {
		return "", false
	}
	return t.components[i].Key, true
}

func (t RatioTable) Clone() RatioTable {
	return RatioTable{components: t.Components()}
}

func (t RatioTable) index(name string) int {
	name = strings.TrimSpace(name)
	for i, c := range t.components {
		if strings.EqualFold(c.Key, name) || strings.EqualFold(c.Name, name) {
			return i
		}
	}
	return -1
}

// WithOverrides returns a copy with each named component set to percentage/100.
// Any unknown name, or two names for the same component, rejects the whole
// override set.
func (t RatioTable) WithOverrides(overrides map[string]float64) (RatioTable, error) {
	out := t.Clone()
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	seen := make(map[int]string, len(names))
	for _, name := range names {
		i := out.index(name)
		if i < 0 {
			candidates := append(t.Keys(), t.names()...)
			return RatioTable{}, &UnknownComponentError{Name: name, Suggestion: suggest(name, candidates)}
		}
		if prev, ok := seen[i]; ok {
			return RatioTable{}, fmt.Errorf("%w: %q and %q both set %s", ErrInvalidInput, prev, name, out.components[i].Key)
		}
		seen[i] = name
		pct := overrides[name]
		if !validAmount(pct) {
			return RatioTable{}, fmt.Errorf("%w: percentage for %q must be a non-negative number, got %v", ErrInvalidInput, name, pct)
		}
		out.components[i].Ratio = pct / 100
	}
	if math.IsInf(out.SumPercentage(), 0) {
		return RatioTable{}, fmt.Errorf("%w: override percentages overflow the ratio sum", ErrInvalidInput)
	}
	return out, nil
}

func (t RatioTable) names() []string {
	names := make([]string, len(t.components))
	for i, c := range t.components {
		names[i] = c.Name
	}
	return names
}

// SumPercentage is the sum of all ratios expressed in percent.
func (t RatioTable) SumPercentage() float64 {
	sum := 0.0
	for _, c := range t.components {
		sum += c.Ratio
	}
	return sum * 100
}

// CheckSum returns a warning when the ratios do not add up to 100% within
// SumTolerance. It never blocks a calculation.
func (t RatioTable) CheckSum() *RatioSumWarning {
	sum := t.SumPercentage()
	if math.Abs(sum-100) <= SumTolerance {
		return nil
	}
	return &RatioSumWarning{
		SumPercentage: sum,
		Message:       fmt.Sprintf("ratios add up to %.2f%% instead of 100%%", sum),
	}
}

func validAmount(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (t RatioTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.components)
}

func (t *RatioTable) UnmarshalJSON(data []byte) error {
	var components []Component
	if err := json.Unmarshal(data, &components); err != nil {
		return err
	}
	parsed, err := NewRatioTable(components...)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
