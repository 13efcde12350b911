package biomass

import (
	"fmt"
	"sort"
	"strings"
)

const (
	PresetLatest        = "latest"
	PresetFiveComponent = "five-component"
	PresetLegacy        = "legacy"
)

// Preset is a named ratio table.
type Preset struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Table       RatioTable `json:"components"`
}

// BuiltinPresets returns the tables used by the different calculator revisions,
// canonical first.
func BuiltinPresets() []Preset {
	five := mustTable(Defaults().components[:5]...)
	legacy := mustTable(
		Component{Key: "EFB", Name: "Empty Fruit Bunches (EFB)", Ratio: 0.21},
		Component{Key: "PKS", Name: "Palm Kernel Shell (PKS)", Ratio: 0.055},
		Component{Key: "MF", Name: "Mesocarp Fibre", Ratio: 0.144},
		Component{Key: "POME", Name: "Palm Oil Mill Effluent (POME)", Ratio: 0.67},
	)
	return []Preset{
		{Name: PresetLatest, Description: "Six components including sludge palm oil", Table: Defaults()},
		{Name: PresetFiveComponent, Description: "Five components, POME 58.3%", Table: five},
		{Name: PresetLegacy, Description: "Four components, POME 67%, no decanter cake", Table: legacy},
	}
}

// Catalog is the read-only set of presets and yields assembled at startup.
// It hands out copies only, so it is safe to share between requests.
type Catalog struct {
	presets     map[string]RatioTable
	info        map[string]string
	order       []string
	defaultName string
	yields      Yields
}

// NewCatalog merges preset lists; a later preset replaces an earlier one with
// the same name. An empty defaultName selects the first preset.
func NewCatalog(defaultName string, yields Yields, sources ...[]Preset) (*Catalog, error) {
	if err := yields.Validate(); err != nil {
		return nil, err
	}
	c := &Catalog{
		presets: make(map[string]RatioTable),
		info:    make(map[string]string),
		yields:  yields,
	}
	for _, presets := range sources {
		for _, p := range presets {
			name := strings.TrimSpace(p.Name)
			if name == "" {
				return nil, fmt.Errorf("%w: preset without a name", ErrInvalidInput)
			}
			if p.Table.Len() == 0 {
				return nil, fmt.Errorf("%w: preset %q has no components", ErrInvalidInput, name)
			}
			if _, ok := c.presets[name]; !ok {
				c.order = append(c.order, name)
			}
			c.presets[name] = p.Table.Clone()
			c.info[name] = p.Description
		}
	}
	if len(c.order) == 0 {
		return nil, fmt.Errorf("%w: no presets", ErrInvalidInput)
	}
	if defaultName == "" {
		defaultName = c.order[0]
	}
	if _, ok := c.presets[defaultName]; !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownPreset, defaultName)
	}
	c.defaultName = defaultName
	return c, nil
}

func (c *Catalog) DefaultName() string { return c.defaultName }

func (c *Catalog) Yields() Yields { return c.yields }

// Default returns a copy of the default preset's table.
func (c *Catalog) Default() RatioTable { return c.presets[c.defaultName].Clone() }

// Preset returns a copy of the named table; "" means the default.
func (c *Catalog) Preset(name string) (RatioTable, error) {
	if name == "" {
		return c.Default(), nil
	}
	t, ok := c.presets[name]
	if !ok {
		names := append([]string(nil), c.order...)
		sort.Strings(names)
		return RatioTable{}, fmt.Errorf("%w %q (available: %s)", ErrUnknownPreset, name, strings.Join(names, ", "))
	}
	return t.Clone(), nil
}

func (c *Catalog) Presets() []Preset {
	out := make([]Preset, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, Preset{Name: name, Description: c.info[name], Table: c.presets[name].Clone()})
	}
	return out
}

// Resolve turns session or request settings into the table and yields to use.
func (c *Catalog) Resolve(s Settings) (RatioTable, Yields, error) {
	table, err := c.Preset(s.Preset)
	if err != nil {
		return RatioTable{}, Yields{}, err
	}
	if len(s.Overrides) > 0 {
		table, err = table.WithOverrides(s.Overrides)
		if err != nil {
			return RatioTable{}, Yields{}, err
		}
	}
	y := c.yields
	if s.FrondMTPerHA != 0 {
		y.FrondMTPerHA = s.FrondMTPerHA
	}
	if s.TrunkMTPerHA != 0 {
		y.TrunkMTPerHA = s.TrunkMTPerHA
	}
	if err := y.Validate(); err != nil {
		return RatioTable{}, Yields{}, err
	}
	return table, y, nil
}
