package settings

import (
	"encoding/json"
	"log"
	"net/http"

	auth "PalmBiomass/internal/auth"
	biomass "PalmBiomass/internal/calc/biomass"
)

// Handler reads and replaces the custom ratios and yields of the caller's
// session. Settings travel in the session token and are never stored.
type Handler struct {
	Auth    *auth.Authenv
	Catalog *biomass.Catalog
}

type Response struct {
	SessionID     string                   `json:"session_id"`
	Settings      biomass.Settings         `json:"settings"`
	Preset        string                   `json:"preset"`
	Components    biomass.RatioTable       `json:"components"`
	Yields        biomass.Yields           `json:"yields"`
	SumPercentage float64                  `json:"sum_percentage"`
	Warning       *biomass.RatioSumWarning `json:"warning,omitempty"`
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s := biomass.SettingsFromContext(r.Context())
	resp, err := h.describe(auth.SessionIDFromContext(r.Context()), s)
	if err != nil {
		biomass.WriteError(w, "GetSettings", err)
		return
	}
	biomass.WriteJSON(w, http.StatusOK, resp)
}

// UpdateSettings replaces the session settings after validating them against
// the catalog, then reissues the session cookie.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var s biomass.Settings
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	h.store(w, r, s)
}

func (h *Handler) ResetSettings(w http.ResponseWriter, r *http.Request) {
	h.store(w, r, biomass.Settings{})
}

func (h *Handler) store(w http.ResponseWriter, r *http.Request, s biomass.Settings) {
	id := auth.SessionIDFromContext(r.Context())
	if id == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	resp, err := h.describe(id, s)
	if err != nil {
		biomass.WriteError(w, "UpdateSettings", err)
		return
	}
	if _, err := h.Auth.IssueToken(w, id, s); err != nil {
		log.Printf("IssueToken Error: %v", err)
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}
	biomass.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) describe(id string, s biomass.Settings) (Response, error) {
	table, y, err := h.Catalog.Resolve(s)
	if err != nil {
		return Response{}, err
	}
	preset := s.Preset
	if preset == "" {
		preset = h.Catalog.DefaultName()
	}
	return Response{
		SessionID:     id,
		Settings:      s,
		Preset:        preset,
		Components:    table,
		Yields:        y,
		SumPercentage: table.SumPercentage(),
		Warning:       table.CheckSum(),
	}, nil
}
