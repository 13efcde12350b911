package importer

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	biomass "PalmBiomass/internal/calc/biomass"

	"github.com/xuri/excelize/v2"
)

func catalog(t *testing.T) *biomass.Catalog {
	t.Helper()
	c, err := biomass.NewCatalog("", biomass.DefaultYields(), biomass.BuiltinPresets())
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return c
}

func workbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		r := row
		if err := f.SetSheetRow("Sheet1", cell, &r); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf
}

func TestParseRows(t *testing.T) {
	items, skipped := parseRows([][]string{
		{"mill A", "100", "20"},
		{"mill B", "1,250.5"},
		{},
		{"bad", "abc"},
		{"short"},
		{"bad area", "5", "x"},
	}, 2)
	if len(items) != 2 {
		t.Fatalf("items=%+v", items)
	}
	if items[0].AreaHA != 20 || items[1].FFBMT != 1250.5 {
		t.Fatalf("unexpected items %+v", items)
	}
	if len(skipped) != 3 || !strings.HasPrefix(skipped[0], "row 5:") {
		t.Fatalf("skipped=%v", skipped)
	}
}

func TestToFloat(t *testing.T) {
	good := map[string]float64{
		"100":        100,
		" 12.5 ":     12.5,
		"1,250":      1250,
		"1,250.5":    1250.5,
		"12,345,678": 12345678,
		"1234.567":   1234.567,
	}
	for in, want := range good {
		got, err := toFloat(in)
		if err != nil || got != want {
			t.Fatalf("toFloat(%q)=%v,%v, want %v", in, got, err, want)
		}
	}
	for _, in := range []string{"12,5", "1,2,3", "1,25.5", ",100", "abc"} {
		if _, err := toFloat(in); err == nil {
			t.Fatalf("toFloat(%q) accepted", in)
		}
	}
}

func TestReadItemsUsesStoredValue(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetRow("Sheet1", "A1", &[]interface{}{"label", "ffb_mt", "area_ha"})
	f.SetSheetRow("Sheet1", "A2", &[]interface{}{"mill A", 1234.567, 12.5})
	style, err := f.NewStyle(&excelize.Style{NumFmt: 3})
	if err != nil {
		t.Fatalf("NewStyle: %v", err)
	}
	if err := f.SetCellStyle("Sheet1", "B2", "C2", style); err != nil {
		t.Fatalf("SetCellStyle: %v", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	items, skipped, err := ReadItems(buf)
	if err != nil {
		t.Fatalf("ReadItems: %v", err)
	}
	if len(items) != 1 || len(skipped) != 0 {
		t.Fatalf("items=%+v skipped=%v", items, skipped)
	}
	if items[0].FFBMT != 1234.567 || items[0].AreaHA != 12.5 {
		t.Fatalf("formatted cells read as ffb=%v area=%v", items[0].FFBMT, items[0].AreaHA)
	}
}

func TestImportHandler(t *testing.T) {
	book := workbook(t, [][]interface{}{
		{"label", "ffb_mt", "area_ha"},
		{"mill A", 100, 10},
		{"mill B", "oops"},
	})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "mills.xlsx")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	part.Write(book.Bytes())
	mw.WriteField("preset", biomass.PresetFiveComponent)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	(&Handler{Catalog: catalog(t)}).Import(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var res ImportResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Count != 1 || len(res.Skipped) != 1 {
		t.Fatalf("unexpected import result %+v", res)
	}
	if len(res.Rows[0].Mass.Items) != 5 || res.Rows[0].Area == nil {
		t.Fatalf("unexpected row %+v", res.Rows[0])
	}
}

func TestImportHandlerRequiresFile(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("preset", "latest")
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	(&Handler{Catalog: catalog(t)}).Import(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rec.Code)
	}
}

func TestExportHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"items":[{"label":"A","ffb_mt":100,"area_ha":1},{"label":"B","ffb_mt":10}]}`))
	rec := httptest.NewRecorder()
	(&Handler{Catalog: catalog(t)}).Export(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}

	f, err := excelize.OpenReader(rec.Body)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows=%d, want header + 2 items + totals", len(rows))
	}
	if rows[0][2] != "Empty Fruit Bunches (EFB) (MT)" || rows[3][0] != "Total" {
		t.Fatalf("unexpected layout %v", rows)
	}
	if rows[1][2] != "21" {
		t.Fatalf("EFB cell=%q, want 21", rows[1][2])
	}
}
