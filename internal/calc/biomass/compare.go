package biomass

import "errors"

// Deviation compares one metric between the baseline and a custom setup.
// PercentDiff is nil when the baseline is zero.
type Deviation struct {
	Metric        string   `json:"metric"`
	Default       float64  `json:"default"`
	Custom        float64  `json:"custom"`
	PercentDiff   *float64 `json:"percent_diff"`
	NotApplicable bool     `json:"not_applicable,omitempty"`
}

func NewDeviation(metric string, custom, baseline float64) Deviation {
	d := Deviation{Metric: metric, Default: baseline, Custom: custom}
	pct, err := PercentDifference(custom, baseline)
	if err != nil {
		d.NotApplicable = errors.Is(err, ErrDivisionByZero)
		return d
	}
	d.PercentDiff = &pct
	return d
}

// Comparison is the result of running the same FFB mass through two tables.
type Comparison struct {
	FFBMT      float64     `json:"ffb_mt"`
	Default    Result      `json:"default"`
	Custom     Result      `json:"custom"`
	Components []Deviation `json:"components"`
	Total      Deviation   `json:"total"`
}

// Compare computes both results and the per-component deviations. Components
// missing from one side count as zero there.
func Compare(ffbMT float64, baseline, custom RatioTable) (Comparison, error) {
	def, err := ComputeFromMass(ffbMT, baseline)
	if err != nil {
		return Comparison{}, err
	}
	cus, err := ComputeFromMass(ffbMT, custom)
	if err != nil {
		return Comparison{}, err
	}

	out := Comparison{FFBMT: ffbMT, Default: def, Custom: cus}
	seen := make(map[string]bool, len(def.Items))
	for _, q := range def.Items {
		seen[q.Key] = true
		c, _ := cus.Get(q.Key)
		out.Components = append(out.Components, NewDeviation(q.Name, c, q.MT))
	}
	for _, q := range cus.Items {
		if seen[q.Key] {
			continue
		}
		out.Components = append(out.Components, NewDeviation(q.Name, q.MT, 0))
	}
	out.Total = NewDeviation("Total", cus.Total(), def.Total())
	return out, nil
}

// AreaComparison holds the frond and trunk deviations for one area.
type AreaComparison struct {
	Default AreaYieldResult `json:"default"`
	Custom  AreaYieldResult `json:"custom"`
	Frond   Deviation       `json:"frond"`
	Trunk   Deviation       `json:"trunk"`
}

func CompareArea(areaHA float64, baseline, custom Yields) (AreaComparison, error) {
	def, err := ComputeFromArea(areaHA, baseline.FrondMTPerHA, baseline.TrunkMTPerHA)
	if err != nil {
		return AreaComparison{}, err
	}
	cus, err := ComputeFromArea(areaHA, custom.FrondMTPerHA, custom.TrunkMTPerHA)
	if err != nil {
		return AreaComparison{}, err
	}
	return AreaComparison{
		Default: def,
		Custom:  cus,
		Frond:   NewDeviation("Oil Palm Frond (OPF)", cus.FrondMT, def.FrondMT),
		Trunk:   NewDeviation("Oil Palm Trunk (OPT)", cus.TrunkMT, def.TrunkMT),
	}, nil
}
