package report

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"time"

	biomass "PalmBiomass/internal/calc/biomass"
)

type Handler struct {
	Catalog *biomass.Catalog
	Now     func() time.Time
}

func (h *Handler) build(w http.ResponseWriter, r *http.Request) (Document, bool) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return Document{}, false
	}
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	doc, err := Build(h.Catalog, biomass.SettingsFromContext(r.Context()), input, now())
	if err != nil {
		biomass.WriteError(w, "Report", err)
		return Document{}, false
	}
	return doc, true
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.build(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := PDF(doc, &buf); err != nil {
		log.Printf("PDF Error: %v", err)
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"biomass-report.pdf\"")
	w.Write(buf.Bytes())
}

func (h *Handler) Markdown(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.build(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(Markdown(doc)))
}

func (h *Handler) HTML(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.build(w, r)
	if !ok {
		return
	}
	out, err := HTML(doc)
	if err != nil {
		log.Printf("HTML Error: %v", err)
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(out)
}
