package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	biomass "PalmBiomass/internal/calc/biomass"

	"gopkg.in/yaml.v3"
)

type PresetsFile struct {
	Default string         `yaml:"default"`
	Yields  biomass.Yields `yaml:"yields"`
	Presets []PresetEntry  `yaml:"presets"`
}

type PresetEntry struct {
	Name        string              `yaml:"name"`
	Description string              `yaml:"description"`
	Components  []biomass.Component `yaml:"components"`
}

func LoadPresetsFile(path string) (PresetsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PresetsFile{}, fmt.Errorf("read presets: %w", err)
	}
	var f PresetsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return PresetsFile{}, fmt.Errorf("parse presets: %w", err)
	}
	if err := f.Validate(); err != nil {
		return PresetsFile{}, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

func (f PresetsFile) Validate() error {
	var errs []string
	seen := map[string]bool{}
	for i, p := range f.Presets {
		prefix := fmt.Sprintf("presets[%d]", i)
		if strings.TrimSpace(p.Name) == "" {
			errs = append(errs, fmt.Sprintf("%s.name is required", prefix))
		} else if seen[p.Name] {
			errs = append(errs, fmt.Sprintf("%s.name %q is duplicated", prefix, p.Name))
		}
		seen[p.Name] = true
		if len(p.Components) == 0 {
			errs = append(errs, fmt.Sprintf("%s.components must not be empty", prefix))
		}
		for j, c := range p.Components {
			if c.Ratio < 0 {
				errs = append(errs, fmt.Sprintf("%s.components[%d].ratio must not be negative", prefix, j))
			}
		}
	}
	if f.Yields.FrondMTPerHA < 0 || f.Yields.TrunkMTPerHA < 0 {
		errs = append(errs, "yields must not be negative")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Tables converts the entries into ratio tables.
func (f PresetsFile) Tables() ([]biomass.Preset, error) {
	out := make([]biomass.Preset, 0, len(f.Presets))
	for _, p := range f.Presets {
		table, err := biomass.NewRatioTable(p.Components...)
		if err != nil {
			return nil, fmt.Errorf("preset %q: %w", p.Name, err)
		}
		out = append(out, biomass.Preset{Name: p.Name, Description: p.Description, Table: table})
	}
	return out, nil
}
