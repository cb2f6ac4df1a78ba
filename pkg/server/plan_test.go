package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"mgv-hq/ganymede/pkg/gbs/ast"
	"mgv-hq/ganymede/pkg/plan"
)

func serverTestEntry(name string, disabled bool) *plan.ResolvedEntry {
	fields := ast.NewMapping()
	fields.Set("name", ast.NewString(name, ast.Location{}))
	section := ast.NewMapping()
	section.Set("url", ast.NewString("https://ftp.ensembl.org/pub/release-110/"+name+".gff3.gz", ast.Location{}))
	section.Set("release", ast.NewString("110", ast.Location{}))
	fields.Set("models", ast.NewMappingValue(section, ast.Location{}))
	return &plan.ResolvedEntry{Name: name, Disabled: disabled, Fields: fields}
}

func loadedRegistry(t *testing.T) *plan.Registry {
	t.Helper()

	registry := plan.NewRegistry()
	err := registry.Update(&plan.Plan{
		SpecPath: "testdata/genomes.yaml",
		SpecHash: "deadbeef",
		RunID:    "run-test",
		Active: []*plan.ResolvedEntry{
			serverTestEntry("mus_musculus", false),
			serverTestEntry("danio_rerio", false),
		},
		Disabled: []*plan.ResolvedEntry{
			serverTestEntry("old_build", true),
		},
	})
	if err != nil {
		t.Fatalf("registry Update() error = %v", err)
	}
	return registry
}

func planGet(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestPlanHandler_NoPlan(t *testing.T) {
	handler := NewPlanHandler(plan.NewRegistry())

	rr := planGet(t, handler, "/plan")
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}

	var resp errorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if resp.Error == "" {
		t.Error("error body is empty")
	}
}

func TestPlanHandler_FullPlan(t *testing.T) {
	registry := loadedRegistry(t)
	handler := NewPlanHandler(registry)

	rr := planGet(t, handler, "/plan")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var resp struct {
		Version  string           `json:"version"`
		RunID    string           `json:"runId"`
		SpecHash string           `json:"specHash"`
		Genomes  []map[string]any `json:"genomes"`
		Disabled []map[string]any `json:"disabled"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}

	if resp.Version != registry.GetVersion() {
		t.Errorf("version = %q, want %q", resp.Version, registry.GetVersion())
	}
	if resp.RunID != "run-test" {
		t.Errorf("runId = %q, want run-test", resp.RunID)
	}
	if resp.SpecHash != "deadbeef" {
		t.Errorf("specHash = %q, want deadbeef", resp.SpecHash)
	}
	if len(resp.Genomes) != 2 {
		t.Fatalf("len(genomes) = %d, want 2", len(resp.Genomes))
	}
	if got := resp.Genomes[0]["name"]; got != "mus_musculus" {
		t.Errorf("genomes[0].name = %v, want mus_musculus", got)
	}
	if resp.Disabled != nil {
		t.Errorf("disabled present without include_disabled: %v", resp.Disabled)
	}
}

func TestPlanHandler_IncludeDisabled(t *testing.T) {
	handler := NewPlanHandler(loadedRegistry(t))

	rr := planGet(t, handler, "/plan?include_disabled=1")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var resp struct {
		Disabled []map[string]any `json:"disabled"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(resp.Disabled) != 1 {
		t.Fatalf("len(disabled) = %d, want 1", len(resp.Disabled))
	}
	if got := resp.Disabled[0]["name"]; got != "old_build" {
		t.Errorf("disabled[0].name = %v, want old_build", got)
	}
}

func TestPlanHandler_Entry(t *testing.T) {
	handler := NewPlanHandler(loadedRegistry(t))

	rr := planGet(t, handler, "/plan/mus_musculus")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Genome   string         `json:"genome"`
		Disabled bool           `json:"disabled"`
		Entry    map[string]any `json:"entry"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if resp.Genome != "mus_musculus" {
		t.Errorf("genome = %q, want mus_musculus", resp.Genome)
	}
	if resp.Disabled {
		t.Error("disabled = true, want false")
	}
	if _, ok := resp.Entry["models"]; !ok {
		t.Error("entry is missing its models section")
	}
}

func TestPlanHandler_EntryDisabled(t *testing.T) {
	handler := NewPlanHandler(loadedRegistry(t))

	rr := planGet(t, handler, "/plan/old_build")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var resp struct {
		Disabled bool `json:"disabled"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if !resp.Disabled {
		t.Error("disabled = false, want true")
	}
}

func TestPlanHandler_EntryNotFound(t *testing.T) {
	handler := NewPlanHandler(loadedRegistry(t))

	rr := planGet(t, handler, "/plan/homo_sapiens")
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestPlanHandler_TrailingSlash(t *testing.T) {
	handler := NewPlanHandler(loadedRegistry(t))

	// /plan/ with no genome serves the full plan.
	rr := planGet(t, handler, "/plan/")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var resp struct {
		Genomes []map[string]any `json:"genomes"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(resp.Genomes) != 2 {
		t.Errorf("len(genomes) = %d, want 2", len(resp.Genomes))
	}
}

func TestPlanHandler_MethodNotAllowed(t *testing.T) {
	handler := NewPlanHandler(loadedRegistry(t))

	req := httptest.NewRequest(http.MethodPost, "/plan", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusMethodNotAllowed)
	}
}
