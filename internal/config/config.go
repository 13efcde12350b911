package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"

	biomass "PalmBiomass/internal/calc/biomass"
	repo "PalmBiomass/internal/repo"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr           string
	TLSCert        string
	TLSKey         string
	TokenKey       []byte
	AccessHash     []byte
	DatabaseURL    string
	PresetsFile    string
	DefaultPreset  string
	FrondMTPerHA   float64
	TrunkMTPerHA   float64
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads .env (if present) and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from an environment lookup.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Addr:           getenv("ADDR"),
		TLSCert:        getenv("TLS_CERT"),
		TLSKey:         getenv("TLS_KEY"),
		TokenKey:       []byte(getenv("TOKEN_KEY")),
		AccessHash:     []byte(getenv("ACCESS_CODE_HASH")),
		DatabaseURL:    getenv("DATABASE_URL"),
		PresetsFile:    getenv("PRESETS_FILE"),
		DefaultPreset:  getenv("DEFAULT_PRESET"),
		RateLimitRPS:   5,
		RateLimitBurst: 10,
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}

	var errs []string
	if (cfg.TLSCert == "") != (cfg.TLSKey == "") {
		errs = append(errs, "TLS_CERT and TLS_KEY must be set together")
	}
	floats := []struct {
		name string
		dst  *float64
	}{
		{"FROND_MT_PER_HA", &cfg.FrondMTPerHA},
		{"TRUNK_MT_PER_HA", &cfg.TrunkMTPerHA},
		{"RATE_LIMIT_RPS", &cfg.RateLimitRPS},
	}
	for _, f := range floats {
		raw := strings.TrimSpace(getenv(f.name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be a positive number", f.name))
			continue
		}
		*f.dst = v
	}
	if raw := strings.TrimSpace(getenv("RATE_LIMIT_BURST")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			errs = append(errs, "RATE_LIMIT_BURST must be a positive integer")
		} else {
			cfg.RateLimitBurst = v
		}
	}

	if len(errs) > 0 {
		return Config{}, errors.New(strings.Join(errs, "; "))
	}
	return cfg, nil
}

// Catalog assembles the read-only preset catalog: built-ins, then the YAML
// file, then the database. Environment yields and default win over the file.
func (c Config) Catalog(ctx context.Context, db repo.PresetRepository) (*biomass.Catalog, error) {
	yields := biomass.DefaultYields()
	defaultName := ""
	sources := [][]biomass.Preset{biomass.BuiltinPresets()}

	if c.PresetsFile != "" {
		file, err := LoadPresetsFile(c.PresetsFile)
		if err != nil {
			return nil, err
		}
		presets, err := file.Tables()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.PresetsFile, err)
		}
		sources = append(sources, presets)
		defaultName = file.Default
		if file.Yields.FrondMTPerHA != 0 {
			yields.FrondMTPerHA = file.Yields.FrondMTPerHA
		}
		if file.Yields.TrunkMTPerHA != 0 {
			yields.TrunkMTPerHA = file.Yields.TrunkMTPerHA
		}
		log.Printf("Loaded %d presets from %s", len(presets), c.PresetsFile)
	}

	if db != nil {
		presets, err := db.ListPresets(ctx)
		if err != nil {
			return nil, err
		}
		sources = append(sources, presets)
		log.Printf("Loaded %d presets from database", len(presets))
	}

	if c.DefaultPreset != "" {
		defaultName = c.DefaultPreset
	}
	if c.FrondMTPerHA != 0 {
		yields.FrondMTPerHA = c.FrondMTPerHA
	}
	if c.TrunkMTPerHA != 0 {
		yields.TrunkMTPerHA = c.TrunkMTPerHA
	}
	return biomass.NewCatalog(defaultName, yields, sources...)
}
