package biomass

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

type Handler struct {
	Catalog *Catalog
}

type PresetsResponse struct {
	Default string          `json:"default"`
	Yields  Yields          `json:"yields"`
	Presets []PresetSummary `json:"presets"`
}

type PresetSummary struct {
	Preset
	SumPercentage float64 `json:"sum_percentage"`
}

func (h *Handler) Presets(w http.ResponseWriter, r *http.Request) {
	resp := PresetsResponse{Default: h.Catalog.DefaultName(), Yields: h.Catalog.Yields()}
	for _, p := range h.Catalog.Presets() {
		resp.Presets = append(resp.Presets, PresetSummary{Preset: p, SumPercentage: p.Table.SumPercentage()})
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Mass(w http.ResponseWriter, r *http.Request) {
	var input MassInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := CalculateMass(h.Catalog, SettingsFromContext(r.Context()), input)
	if err != nil {
		WriteError(w, "CalculateMass", err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Area(w http.ResponseWriter, r *http.Request) {
	var input AreaInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := CalculateArea(h.Catalog, SettingsFromContext(r.Context()), input)
	if err != nil {
		WriteError(w, "CalculateArea", err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	var input CompareInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := CalculateCompare(h.Catalog, SettingsFromContext(r.Context()), input)
	if err != nil {
		WriteError(w, "CalculateCompare", err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

// StatusFor maps calculation errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnknownComponent), errors.Is(err, ErrUnknownPreset), errors.Is(err, ErrDivisionByZero):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// WriteError replies with the error message; unexpected errors are logged and hidden.
func WriteError(w http.ResponseWriter, op string, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s Error: %v", op, err)
		http.Error(w, "Calculation error", status)
		return
	}
	http.Error(w, err.Error(), status)
}

// WriteJSON encodes v before touching the response so an encoding failure
// still yields a 500.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		log.Printf("WriteJSON Error: %v", err)
		http.Error(w, "Calculation error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("WriteJSON Error: %v", err)
	}
}
