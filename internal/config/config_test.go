package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	biomass "PalmBiomass/internal/calc/biomass"
)

func env(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{"TOKEN_KEY": "k"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(cfg.TokenKey) != "k" || cfg.Addr != ":8080" || cfg.RateLimitRPS != 5 || cfg.RateLimitBurst != 10 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestFromEnvErrors(t *testing.T) {
	_, err := FromEnv(env(map[string]string{
		"TLS_CERT":         "server.crt",
		"FROND_MT_PER_HA":  "-1",
		"RATE_LIMIT_BURST": "many",
	}))
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, want := range []string{"TLS_CERT and TLS_KEY", "FROND_MT_PER_HA", "RATE_LIMIT_BURST"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %q", err, want)
		}
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "presets.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

const sample = `default: mill-3
yields:
  frond_mt_per_ha: 15
presets:
  - name: mill-3
    description: Mill 3 survey
    components:
      - {key: EFB, name: Empty Fruit Bunches (EFB), ratio: 0.22}
      - {key: POME, ratio: 0.6}
`

func TestLoadPresetsFile(t *testing.T) {
	f, err := LoadPresetsFile(writeFile(t, sample))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	presets, err := f.Tables()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(presets) != 1 || presets[0].Table.Len() != 2 || f.Default != "mill-3" {
		t.Fatalf("unexpected file %+v", f)
	}
}

func TestLoadPresetsFileInvalid(t *testing.T) {
	path := writeFile(t, `presets:
  - name: ""
    components: []
  - name: x
    components:
      - {key: EFB, ratio: -1}
`)
	_, err := LoadPresetsFile(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, want := range []string{"presets[0].name is required", "presets[0].components", "presets[1].components[0].ratio"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %q", err, want)
		}
	}
	if _, err := LoadPresetsFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

type fakeRepo struct {
	presets []biomass.Preset
	err     error
}

func (f fakeRepo) ListPresets(ctx context.Context) ([]biomass.Preset, error) {
	return f.presets, f.err
}

func TestCatalog(t *testing.T) {
	dbTable, err := biomass.NewRatioTable(biomass.Component{Key: "EFB", Ratio: 0.3})
	if err != nil {
		t.Fatalf("NewRatioTable: %v", err)
	}
	cfg := Config{PresetsFile: writeFile(t, sample), TrunkMTPerHA: 70}
	c, err := cfg.Catalog(context.Background(), fakeRepo{presets: []biomass.Preset{{Name: "db-1", Table: dbTable}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.DefaultName() != "mill-3" {
		t.Fatalf("default=%s, want mill-3", c.DefaultName())
	}
	if y := c.Yields(); y.FrondMTPerHA != 15 || y.TrunkMTPerHA != 70 {
		t.Fatalf("yields=%+v", y)
	}
	if _, err := c.Preset("db-1"); err != nil {
		t.Fatalf("db preset missing: %v", err)
	}
	if _, err := c.Preset(biomass.PresetLegacy); err != nil {
		t.Fatalf("builtin preset missing: %v", err)
	}

	cfg.DefaultPreset = "nope"
	if _, err := cfg.Catalog(context.Background(), nil); !errors.Is(err, biomass.ErrUnknownPreset) {
		t.Fatalf("err=%v, want ErrUnknownPreset", err)
	}

	boom := errors.New("boom")
	if _, err := (Config{}).Catalog(context.Background(), fakeRepo{err: boom}); !errors.Is(err, boom) {
		t.Fatalf("err=%v, want boom", err)
	}
}
