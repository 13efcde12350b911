package report

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	biomass "PalmBiomass/internal/calc/biomass"
)

var fixed = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func catalog(t *testing.T) *biomass.Catalog {
	t.Helper()
	c, err := biomass.NewCatalog("", biomass.DefaultYields(), biomass.BuiltinPresets())
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return c
}

func TestBuildOmitsZeroSections(t *testing.T) {
	c := catalog(t)
	cases := []struct {
		name     string
		in       Input
		wantMass bool
		wantArea bool
	}{
		{"both", Input{FFBMT: 100, AreaHA: 100}, true, true},
		{"mass-only", Input{FFBMT: 100}, true, false},
		{"area-only", Input{AreaHA: 5}, false, true},
		{"none", Input{}, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := Build(c, biomass.Settings{}, tc.in, fixed)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (doc.Mass != nil) != tc.wantMass || (doc.Area != nil) != tc.wantArea {
				t.Fatalf("mass=%v area=%v", doc.Mass != nil, doc.Area != nil)
			}
		})
	}
}

func TestMarkdown(t *testing.T) {
	doc, err := Build(catalog(t), biomass.Settings{}, Input{Project: "Mill 7", FFBMT: 100, AreaHA: 100}, fixed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	md := Markdown(doc)
	for _, want := range []string{
		"# Palm Oil Biomass Report",
		"- Project: Mill 7",
		"- Date: 2024-05-01",
		"## Biomass generated for 100 MT of FFB",
		"| Empty Fruit Bunches (EFB) | 21.0% | 21.00 MT |",
		"| **Total** | 103.7% | 103.70 MT |",
		"> Note: ratios add up to 103.70% instead of 100%.",
		"- **Oil Palm Frond (OPF):** 1447.00 MT (14.47 MT/ha)",
		"- **Oil Palm Trunk (OPT):** 7448.00 MT (74.48 MT/ha)",
		"**Decanter Cake:** Solid residue",
		"doi.org/10.1016/j.eti.2023.103050",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestHTML(t *testing.T) {
	doc, err := Build(catalog(t), biomass.Settings{}, Input{FFBMT: 10}, fixed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := HTML(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Contains(out, []byte("<table>")) || !bytes.Contains(out, []byte("<h1>Palm Oil Biomass Report</h1>")) {
		t.Fatalf("unexpected html:\n%s", out)
	}
}

func TestPDF(t *testing.T) {
	doc, err := Build(catalog(t), biomass.Settings{}, Input{FFBMT: 10, AreaHA: 2, Notes: "Wet season sample."}, fixed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var buf bytes.Buffer
	if err := PDF(doc, &buf); err != nil {
		t.Fatalf("PDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output is not a PDF")
	}
}

func TestHandlers(t *testing.T) {
	h := &Handler{Catalog: catalog(t), Now: func() time.Time { return fixed }}
	cases := []struct {
		name        string
		handler     http.HandlerFunc
		body        string
		status      int
		contentType string
	}{
		{"pdf", h.Generate, `{"ffb_mt": 100}`, http.StatusOK, "application/pdf"},
		{"markdown", h.Markdown, `{"ffb_mt": 100}`, http.StatusOK, "text/markdown; charset=utf-8"},
		{"html", h.HTML, `{"area_ha": 3}`, http.StatusOK, "text/html; charset=utf-8"},
		{"bad-json", h.Generate, `nope`, http.StatusBadRequest, ""},
		{"negative", h.Markdown, `{"ffb_mt": -1}`, http.StatusBadRequest, ""},
		{"unknown", h.HTML, `{"ffb_mt": 1, "overrides": {"Foo": 1}}`, http.StatusUnprocessableEntity, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tc.handler(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body)))
			if rec.Code != tc.status {
				t.Fatalf("status=%d, want %d (%s)", rec.Code, tc.status, rec.Body.String())
			}
			if tc.contentType != "" && rec.Header().Get("Content-Type") != tc.contentType {
				t.Fatalf("content-type=%q, want %q", rec.Header().Get("Content-Type"), tc.contentType)
			}
		})
	}
}
