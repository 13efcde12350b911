package importer

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	batch "PalmBiomass/internal/calc/batch"
	biomass "PalmBiomass/internal/calc/biomass"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Biomass"

// ReadItems reads the first sheet of a workbook. Expected columns:
// label, ffb_mt, area_ha (optional). The first row is a header.
// Rows that cannot be parsed are skipped and reported.
func ReadItems(r io.Reader) ([]batch.Item, []string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("%w: sheet %q has no data rows", biomass.ErrInvalidInput, sheet)
	}
	items, skipped := parseRows(rows[1:], 2)
	return items, skipped, nil
}

func parseRows(rows [][]string, firstRow int) ([]batch.Item, []string) {
	var items []batch.Item
	var skipped []string
	for i, row := range rows {
		n := firstRow + i
		if blank(row) {
			continue
		}
		item, err := parseRow(row)
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("row %d: %v", n, err))
			continue
		}
		items = append(items, item)
	}
	return items, skipped
}

func parseRow(row []string) (batch.Item, error) {
	if len(row) < 2 {
		return batch.Item{}, fmt.Errorf("ffb_mt column missing")
	}
	ffb, err := toFloat(row[1])
	if err != nil {
		return batch.Item{}, fmt.Errorf("ffb_mt: %w", err)
	}
	area := 0.0
	if len(row) > 2 && strings.TrimSpace(row[2]) != "" {
		area, err = toFloat(row[2])
		if err != nil {
			return batch.Item{}, fmt.Errorf("area_ha: %w", err)
		}
	}
	return batch.Item{Label: strings.TrimSpace(row[0]), FFBMT: ffb, AreaHA: area}, nil
}

// groupedNumber matches thousands grouping such as 1,250 or 12,500.75.
var groupedNumber = regexp.MustCompile(`^[0-9]{1,3}(,[0-9]{3})+(\.[0-9]+)?$`)

// toFloat accepts plain numbers and comma thousands grouping. Any other comma,
// e.g. a decimal comma in "12,5", is rejected rather than guessed.
func toFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		if !groupedNumber.MatchString(s) {
			return 0, fmt.Errorf("ambiguous number %q, use a dot for decimals", s)
		}
		s = strings.ReplaceAll(s, ",", "")
	}
	return strconv.ParseFloat(s, 64)
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// WriteWorkbook lays the batch result out as one row per item plus a totals row.
func WriteWorkbook(w io.Writer, res batch.Result) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	header := []interface{}{"Label", "FFB (MT)"}
	for _, q := range res.Totals {
		header = append(header, q.Name+" (MT)")
	}
	header = append(header, "Total (MT)", "Area (ha)", "OPF (MT)", "OPT (MT)")
	if err := setRow(f, 1, header); err != nil {
		return err
	}

	for i, row := range res.Rows {
		values := []interface{}{row.Label, row.Mass.FFBMT}
		for _, t := range res.Totals {
			v, _ := row.Mass.Get(t.Key)
			values = append(values, v)
		}
		values = append(values, row.Mass.TotalMT)
		if row.Area != nil {
			values = append(values, row.Area.AreaHA, row.Area.FrondMT, row.Area.TrunkMT)
		}
		if err := setRow(f, i+2, values); err != nil {
			return err
		}
	}

	totals := []interface{}{"Total", ""}
	for _, q := range res.Totals {
		totals = append(totals, q.MT)
	}
	totals = append(totals, res.TotalMT)
	if err := setRow(f, len(res.Rows)+2, totals); err != nil {
		return err
	}
	return f.Write(w)
}

func setRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheetName, cell, &values)
}
