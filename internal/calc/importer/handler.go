package importer

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"

	batch "PalmBiomass/internal/calc/batch"
	biomass "PalmBiomass/internal/calc/biomass"
)

const MaxUploadSize = 10 << 20 // 10MB

type Handler struct {
	Catalog *biomass.Catalog
}

type ImportResult struct {
	Count   int      `json:"count"`
	Skipped []string `json:"skipped,omitempty"`
	batch.Result
}

// Import accepts a multipart upload ("file") and an optional "preset" field.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		http.Error(w, "File too big", http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	items, skipped, err := ReadItems(file)
	if err != nil {
		log.Printf("ReadItems Error: %v", err)
		http.Error(w, "Invalid file", http.StatusBadRequest)
		return
	}
	res, err := batch.Calculate(h.Catalog, biomass.SettingsFromContext(r.Context()), batch.Input{
		Preset: r.FormValue("preset"),
		Items:  items,
	})
	if err != nil {
		biomass.WriteError(w, "Import", err)
		return
	}
	biomass.WriteJSON(w, http.StatusOK, ImportResult{Count: len(res.Rows), Skipped: skipped, Result: res})
}

// Export takes a batch request and returns the results as an XLSX download.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	var input batch.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := batch.Calculate(h.Catalog, biomass.SettingsFromContext(r.Context()), input)
	if err != nil {
		biomass.WriteError(w, "Export", err)
		return
	}
	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, res); err != nil {
		log.Printf("WriteWorkbook Error: %v", err)
		http.Error(w, "Export error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=\"biomass.xlsx\"")
	w.Write(buf.Bytes())
}
