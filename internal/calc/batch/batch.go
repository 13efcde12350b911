package batch

import (
	"fmt"

	biomass "PalmBiomass/internal/calc/biomass"
)

type Item struct {
	Label  string  `json:"label,omitempty"`
	FFBMT  float64 `json:"ffb_mt"`
	AreaHA float64 `json:"area_ha,omitempty"`
}

type Input struct {
	Preset    string             `json:"preset,omitempty"`
	Overrides map[string]float64 `json:"overrides,omitempty"`
	Items     []Item             `json:"items"`
}

type Row struct {
	Label string              `json:"label,omitempty"`
	Mass  biomass.MassResult  `json:"mass"`
	Area  *biomass.AreaResult `json:"area,omitempty"`
}

type Result struct {
	Rows    []Row              `json:"rows"`
	TotalMT float64            `json:"total_mt"`
	Totals  []biomass.Quantity `json:"totals"`
}

// Calculate runs every item through the same table. The first failing item
// aborts the batch.
func Calculate(c *biomass.Catalog, session biomass.Settings, in Input) (Result, error) {
	if len(in.Items) == 0 {
		return Result{}, fmt.Errorf("%w: no items", biomass.ErrInvalidInput)
	}
	out := Result{Rows: make([]Row, 0, len(in.Items))}
	for i, item := range in.Items {
		mass, err := biomass.CalculateMass(c, session, biomass.MassInput{
			FFBMT:     item.FFBMT,
			Preset:    in.Preset,
			Overrides: in.Overrides,
		})
		if err != nil {
			return Result{}, fmt.Errorf("item %d: %w", i+1, err)
		}
		row := Row{Label: item.Label, Mass: mass}
		if item.AreaHA != 0 {
			area, err := biomass.CalculateArea(c, session, biomass.AreaInput{AreaHA: item.AreaHA})
			if err != nil {
				return Result{}, fmt.Errorf("item %d: %w", i+1, err)
			}
			row.Area = &area
		}
		out.Rows = append(out.Rows, row)
		out.add(mass.Items)
	}
	return out, nil
}

func (r *Result) add(items []biomass.Quantity) {
	for _, q := range items {
		found := false
		for i := range r.Totals {
			if r.Totals[i].Key == q.Key {
				r.Totals[i].MT += q.MT
				found = true
				break
			}
		}
		if !found {
			q.Ratio = 0
			r.Totals = append(r.Totals, q)
		}
		r.TotalMT += q.MT
	}
}
