package biomass

import "fmt"

type MassInput struct {
	FFBMT     float64            `json:"ffb_mt"`
	Preset    string             `json:"preset,omitempty"`
	Overrides map[string]float64 `json:"overrides,omitempty"`
}

type MassResult struct {
	Result
	Preset        string           `json:"preset"`
	TotalMT       float64          `json:"total_mt"`
	SumPercentage float64          `json:"sum_percentage"`
	Warning       *RatioSumWarning `json:"warning,omitempty"`
	Notes         string           `json:"notes"`
}

// CalculateMass resolves the request against the session settings and computes
// the by-products of in.FFBMT.
func CalculateMass(c *Catalog, session Settings, in MassInput) (MassResult, error) {
	s := session.Merge(Settings{Preset: in.Preset, Overrides: in.Overrides})
	table, _, err := c.Resolve(s)
	if err != nil {
		return MassResult{}, err
	}
	res, err := ComputeFromMass(in.FFBMT, table)
	if err != nil {
		return MassResult{}, err
	}
	notes := "By-products estimated as a fixed share of FFB mass."
	if res.IsZero() {
		notes = "No FFB mass given, nothing to estimate."
	}
	return MassResult{
		Preset:        presetName(c, s),
		Result:        res,
		TotalMT:       res.Total(),
		SumPercentage: table.SumPercentage(),
		Warning:       table.CheckSum(),
		Notes:         notes,
	}, nil
}

type AreaInput struct {
	AreaHA       float64 `json:"area_ha"`
	FrondMTPerHA float64 `json:"frond_mt_per_ha,omitempty"`
	TrunkMTPerHA float64 `json:"trunk_mt_per_ha,omitempty"`
}

type AreaResult struct {
	AreaYieldResult
	TotalMT float64 `json:"total_mt"`
	Notes   string  `json:"notes"`
}

func CalculateArea(c *Catalog, session Settings, in AreaInput) (AreaResult, error) {
	s := session.Merge(Settings{FrondMTPerHA: in.FrondMTPerHA, TrunkMTPerHA: in.TrunkMTPerHA})
	_, y, err := c.Resolve(s)
	if err != nil {
		return AreaResult{}, err
	}
	res, err := ComputeFromArea(in.AreaHA, y.FrondMTPerHA, y.TrunkMTPerHA)
	if err != nil {
		return AreaResult{}, err
	}
	notes := "Frond and trunk biomass from per-hectare yields."
	if res.IsZero() {
		notes = "No plantation area given, nothing to estimate."
	}
	return AreaResult{AreaYieldResult: res, TotalMT: res.Total(), Notes: notes}, nil
}

type CompareInput struct {
	FFBMT        float64            `json:"ffb_mt"`
	AreaHA       float64            `json:"area_ha,omitempty"`
	Preset       string             `json:"preset,omitempty"`
	Overrides    map[string]float64 `json:"overrides,omitempty"`
	FrondMTPerHA float64            `json:"frond_mt_per_ha,omitempty"`
	TrunkMTPerHA float64            `json:"trunk_mt_per_ha,omitempty"`
}

func (in CompareInput) settings() Settings {
	return Settings{
		Preset:       in.Preset,
		Overrides:    in.Overrides,
		FrondMTPerHA: in.FrondMTPerHA,
		TrunkMTPerHA: in.TrunkMTPerHA,
	}
}

type CompareResult struct {
	Baseline string           `json:"baseline"`
	Preset   string           `json:"preset"`
	Mass     Comparison       `json:"mass"`
	Area     *AreaComparison  `json:"area,omitempty"`
	Warning  *RatioSumWarning `json:"warning,omitempty"`
}

// CalculateCompare runs the custom setup against the catalog defaults.
func CalculateCompare(c *Catalog, session Settings, in CompareInput) (CompareResult, error) {
	s := session.Merge(in.settings())
	custom, y, err := c.Resolve(s)
	if err != nil {
		return CompareResult{}, err
	}
	mass, err := Compare(in.FFBMT, c.Default(), custom)
	if err != nil {
		return CompareResult{}, err
	}
	out := CompareResult{
		Baseline: c.DefaultName(),
		Preset:   presetName(c, s),
		Mass:     mass,
		Warning:  custom.CheckSum(),
	}
	if in.AreaHA != 0 {
		area, err := CompareArea(in.AreaHA, c.Yields(), y)
		if err != nil {
			return CompareResult{}, err
		}
		out.Area = &area
	}
	return out, nil
}

func presetName(c *Catalog, s Settings) string {
	name := s.Preset
	if name == "" {
		name = c.DefaultName()
	}
	if len(s.Overrides) > 0 {
		return fmt.Sprintf("%s (custom)", name)
	}
	return name
}
