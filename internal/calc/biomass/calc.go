package biomass

import (
	"fmt"
	"math"
	"strings"
)

// Per-hectare yields for oil palm fronds and trunks (MT/ha).
const (
	FrondMTPerHA = 14.47
	TrunkMTPerHA = 74.48
)

// Quantity is one computed by-product amount in metric tons.
type Quantity struct {
	Key   string  `json:"key"`
	Name  string  `json:"name"`
	Ratio float64 `json:"ratio"`
	MT    float64 `json:"mt"`
}

// Result holds the by-products of one FFB mass, in table order.
type Result struct {
	FFBMT float64    `json:"ffb_mt"`
	Items []Quantity `json:"items"`
}

// Get returns the quantity for a key or display name, ignoring case.
func (r Result) Get(name string) (float64, bool) {
	name = strings.TrimSpace(name)
	for _, q := range r.Items {
		if strings.EqualFold(q.Key, name) || strings.EqualFold(q.Name, name) {
			return q.MT, true
		}
	}
	return 0, false
}

func (r Result) Total() float64 {
	total := 0.0
	for _, q := range r.Items {
		total += q.MT
	}
	return total
}

// IsZero reports whether there is nothing to show for this result.
func (r Result) IsZero() bool { return r.FFBMT == 0 }

// ComputeFromMass applies the ratio table to an FFB mass. A zero mass yields
// zero quantities for every component.
func ComputeFromMass(ffbMT float64, ratios RatioTable) (Result, error) {
	if !validAmount(ffbMT) {
		return Result{}, fmt.Errorf("%w: FFB mass must be a non-negative number of metric tons, got %v", ErrInvalidInput, ffbMT)
	}
	items := make([]Quantity, 0, ratios.Len())
	for _, c := range ratios.components {
		items = append(items, Quantity{
			Key:   c.Key,
			Name:  c.Name,
			Ratio: c.Ratio,
			MT:    ffbMT * c.Ratio,
		})
	}
	res := Result{FFBMT: ffbMT, Items: items}
	if math.IsInf(res.Total(), 0) {
		return Result{}, fmt.Errorf("%w: %v MT of FFB overflows the by-product amounts", ErrInvalidInput, ffbMT)
	}
	return res, nil
}

// Yields are the per-hectare frond and trunk constants.
type Yields struct {
	FrondMTPerHA float64 `json:"frond_mt_per_ha" yaml:"frond_mt_per_ha"`
	TrunkMTPerHA float64 `json:"trunk_mt_per_ha" yaml:"trunk_mt_per_ha"`
}

func DefaultYields() Yields {
	return Yields{FrondMTPerHA: FrondMTPerHA, TrunkMTPerHA: TrunkMTPerHA}
}

// Validate requires both yields to be positive.
func (y Yields) Validate() error {
	if !validAmount(y.FrondMTPerHA) || y.FrondMTPerHA == 0 {
		return fmt.Errorf("%w: frond yield must be positive, got %v", ErrInvalidInput, y.FrondMTPerHA)
	}
	if !validAmount(y.TrunkMTPerHA) || y.TrunkMTPerHA == 0 {
		return fmt.Errorf("%w: trunk yield must be positive, got %v", ErrInvalidInput, y.TrunkMTPerHA)
	}
	return nil
}

// AreaYieldResult is the frond and trunk biomass of a plantation area.
type AreaYieldResult struct {
	AreaHA       float64 `json:"area_ha"`
	FrondMTPerHA float64 `json:"frond_mt_per_ha"`
	TrunkMTPerHA float64 `json:"trunk_mt_per_ha"`
	FrondMT      float64 `json:"frond_mt"`
	TrunkMT      float64 `json:"trunk_mt"`
}

func (r AreaYieldResult) Total() float64 { return r.FrondMT + r.TrunkMT }

func (r AreaYieldResult) IsZero() bool { return r.AreaHA == 0 }

// ComputeFromArea multiplies the area by the frond and trunk yields.
func ComputeFromArea(areaHA, frondYield, trunkYield float64) (AreaYieldResult, error) {
	if !validAmount(areaHA) {
		return AreaYieldResult{}, fmt.Errorf("%w: plantation area must be a non-negative number of hectares, got %v", ErrInvalidInput, areaHA)
	}
	if !validAmount(frondYield) || !validAmount(trunkYield) {
		return AreaYieldResult{}, fmt.Errorf("%w: yields must be non-negative numbers, got frond %v trunk %v", ErrInvalidInput, frondYield, trunkYield)
	}
	res := AreaYieldResult{
		AreaHA:       areaHA,
		FrondMTPerHA: frondYield,
		TrunkMTPerHA: trunkYield,
		FrondMT:      areaHA * frondYield,
		TrunkMT:      areaHA * trunkYield,
	}
	if math.IsInf(res.Total(), 0) {
		return AreaYieldResult{}, fmt.Errorf("%w: %v ha overflows the frond and trunk amounts", ErrInvalidInput, areaHA)
	}
	return res, nil
}

// PercentDifference is (custom-baseline)/baseline*100.
func PercentDifference(custom, baseline float64) (float64, error) {
	if baseline == 0 {
		return 0, fmt.Errorf("%w: baseline is zero, percentage difference is not applicable", ErrDivisionByZero)
	}
	if math.IsNaN(custom) || math.IsNaN(baseline) {
		return 0, fmt.Errorf("%w: NaN in percentage difference", ErrInvalidInput)
	}
	pct := (custom - baseline) / baseline * 100
	if math.IsInf(pct, 0) || math.IsNaN(pct) {
		return 0, fmt.Errorf("%w: percentage difference is not a finite number", ErrInvalidInput)
	}
	return pct, nil
}
