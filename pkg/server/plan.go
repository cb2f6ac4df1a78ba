package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"mgv-hq/ganymede/pkg/plan"
)

// errorResponse is the JSON body for error replies.
type errorResponse struct {
	Error string `json:"error"`
}

// planResponse is the envelope served on /plan.
type planResponse struct {
	Version     string               `json:"version"`
	SpecPath    string               `json:"specPath,omitempty"`
	SpecHash    string               `json:"specHash,omitempty"`
	Revision    string               `json:"revision,omitempty"`
	RunID       string               `json:"runId"`
	GeneratedAt time.Time            `json:"generatedAt"`
	LoadedAt    time.Time            `json:"loadedAt"`
	Genomes     []*plan.ResolvedEntry `json:"genomes"`
	Disabled    []*plan.ResolvedEntry `json:"disabled,omitempty"`
}

// entryResponse is the envelope served on /plan/{genome}.
type entryResponse struct {
	Genome   string              `json:"genome"`
	Disabled bool                `json:"disabled,omitempty"`
	Entry    *plan.ResolvedEntry `json:"entry"`
}

// PlanHandler serves the current build plan from the registry.
//
//	GET /plan                   full plan (add ?include_disabled=1 for
//	                            disabled entries)
//	GET /plan/{genome}          one resolved entry
type PlanHandler struct {
	registry *plan.Registry
}

// NewPlanHandler creates a plan handler over the registry.
func NewPlanHandler(registry *plan.Registry) *PlanHandler {
	return &PlanHandler{registry: registry}
}

// ServeHTTP implements http.Handler.
func (h *PlanHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	current := h.registry.Get()
	if current == nil {
		writeError(w, http.StatusServiceUnavailable, "no plan loaded")
		return
	}

	name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/plan"), "/")
	if name == "" {
		h.servePlan(w, r, current)
		return
	}
	h.serveEntry(w, r, current, name)
}

func (h *PlanHandler) servePlan(w http.ResponseWriter, r *http.Request, current *plan.Plan) {
	resp := planResponse{
		Version:     h.registry.GetVersion(),
		SpecPath:    current.SpecPath,
		SpecHash:    current.SpecHash,
		Revision:    current.Revision,
		RunID:       current.RunID,
		GeneratedAt: current.GeneratedAt,
		LoadedAt:    h.registry.GetLoadTime(),
		Genomes:     current.Active,
	}
	if r.URL.Query().Get("include_disabled") == "1" {
		resp.Disabled = current.Disabled
	}

	writeJSON(w, r, http.StatusOK, resp)
}

func (h *PlanHandler) serveEntry(w http.ResponseWriter, r *http.Request, current *plan.Plan, name string) {
	entry := current.Entry(name)
	if entry == nil {
		writeError(w, http.StatusNotFound, "no such genome: "+name)
		return
	}

	writeJSON(w, r, http.StatusOK, entryResponse{
		Genome:   entry.Name,
		Disabled: entry.Disabled,
		Entry:    entry,
	})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
}
