package biomass

import "context"

// Settings are the per-session choices layered over the catalog. Overrides are
// percentages keyed by component key or name; zero yields mean "use default".
type Settings struct {
	Preset       string             `json:"preset,omitempty"`
	Overrides    map[string]float64 `json:"overrides,omitempty"`
	FrondMTPerHA float64            `json:"frond_mt_per_ha,omitempty"`
	TrunkMTPerHA float64            `json:"trunk_mt_per_ha,omitempty"`
}

// IsZero reports whether no custom setting is present.
func (s Settings) IsZero() bool {
	return s.Preset == "" && len(s.Overrides) == 0 && s.FrondMTPerHA == 0 && s.TrunkMTPerHA == 0
}

// Merge returns s with every field that o sets replaced by o's value.
// Overrides are replaced as a whole, not key by key.
func (s Settings) Merge(o Settings) Settings {
	out := s.Clone()
	if o.Preset != "" {
		out.Preset = o.Preset
		if o.Overrides == nil {
			out.Overrides = nil
		}
	}
	if o.Overrides != nil {
		out.Overrides = cloneOverrides(o.Overrides)
	}
	if o.FrondMTPerHA != 0 {
		out.FrondMTPerHA = o.FrondMTPerHA
	}
	if o.TrunkMTPerHA != 0 {
		out.TrunkMTPerHA = o.TrunkMTPerHA
	}
	return out
}

func (s Settings) Clone() Settings {
	s.Overrides = cloneOverrides(s.Overrides)
	return s
}

func cloneOverrides(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type settingsKey struct{}

func ContextWithSettings(ctx context.Context, s Settings) context.Context {
	return context.WithValue(ctx, settingsKey{}, s.Clone())
}

// SettingsFromContext returns the session settings, or the zero value.
func SettingsFromContext(ctx context.Context) Settings {
	s, _ := ctx.Value(settingsKey{}).(Settings)
	return s.Clone()
}
