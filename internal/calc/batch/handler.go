package batch

import (
	"encoding/json"
	"net/http"

	biomass "PalmBiomass/internal/calc/biomass"
)

type Handler struct {
	Catalog *biomass.Catalog
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := Calculate(h.Catalog, biomass.SettingsFromContext(r.Context()), input)
	if err != nil {
		biomass.WriteError(w, "Batch", err)
		return
	}
	biomass.WriteJSON(w, http.StatusOK, res)
}
