package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	biomass "PalmBiomass/internal/calc/biomass"

	_ "github.com/lib/pq"
)

// PresetRepository is a read-only source of named ratio tables.
type PresetRepository interface {
	ListPresets(ctx context.Context) ([]biomass.Preset, error)
}

type PostgresPresetRepository struct {
	db *sql.DB
}

func NewPostgresPresetDB(db *sql.DB) *PostgresPresetRepository {
	return &PostgresPresetRepository{db: db}
}

// InitDB opens the preset database. sslmode=require is added when the
// connection string does not set it.
func InitDB(ctx context.Context, connStr string) (*sql.DB, error) {
	if !strings.Contains(connStr, "sslmode=") {
		switch {
		case strings.HasPrefix(connStr, "postgres://"), strings.HasPrefix(connStr, "postgresql://"):
			sep := "?"
			if strings.Contains(connStr, "?") {
				sep = "&"
			}
			connStr = connStr + sep + "sslmode=require"
		default:
			connStr = connStr + " sslmode=require"
		}
	}
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open preset db: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping preset db: %w", err)
	}
	return db, nil
}

type presetRow struct {
	preset      string
	description string
	component   string
	label       string
	ratio       float64
}

const listPresetsQuery = `SELECT name, COALESCE(description, ''), component, COALESCE(label, ''), ratio
FROM biomass_presets
ORDER BY name, position`

func (r *PostgresPresetRepository) ListPresets(ctx context.Context) ([]biomass.Preset, error) {
	rows, err := r.db.QueryContext(ctx, listPresetsQuery)
	if err != nil {
		return nil, fmt.Errorf("query presets: %w", err)
	}
	defer rows.Close()

	var out []presetRow
	for rows.Next() {
		var row presetRow
		if err := rows.Scan(&row.preset, &row.description, &row.component, &row.label, &row.ratio); err != nil {
			return nil, fmt.Errorf("scan preset: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}
	return groupRows(out)
}

// groupRows folds consecutive rows of the same preset into one table.
func groupRows(rows []presetRow) ([]biomass.Preset, error) {
	var presets []biomass.Preset
	var components []biomass.Component
	current, description := "", ""

	flush := func() error {
		if current == "" {
			return nil
		}
		table, err := biomass.NewRatioTable(components...)
		if err != nil {
			return fmt.Errorf("preset %q: %w", current, err)
		}
		presets = append(presets, biomass.Preset{Name: current, Description: description, Table: table})
		return nil
	}

	for _, row := range rows {
		if row.preset != current {
			if err := flush(); err != nil {
				return nil, err
			}
			current, description, components = row.preset, row.description, nil
		}
		components = append(components, biomass.Component{Key: row.component, Name: row.label, Ratio: row.ratio})
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return presets, nil
}
