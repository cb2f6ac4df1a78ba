package plan

import (
	"crypto/sha256"
	"fmt"
	"time"

	"mgv-hq/ganymede/pkg/gbs/ast"
)

// Plan is the fully resolved build plan for one emission run: every entry
// of the spec expanded to concrete values, split into the active list the
// pipeline consumes and the disabled entries kept for diagnostics.
type Plan struct {
	// SpecPath is the source location the spec was loaded from.
	SpecPath string `json:"specPath,omitempty" yaml:"specPath,omitempty"`

	// SpecHash is the SHA-256 of the raw spec bytes, when known.
	SpecHash string `json:"specHash,omitempty" yaml:"specHash,omitempty"`

	// Revision identifies the spec source revision (git commit SHA) for
	// sources that have one.
	Revision string `json:"revision,omitempty" yaml:"revision,omitempty"`

	// RunID uniquely identifies the emission run that produced this plan.
	RunID string `json:"runId" yaml:"runId"`

	// GeneratedAt is when the plan was emitted.
	GeneratedAt time.Time `json:"generatedAt" yaml:"generatedAt"`

	// Active holds the resolved enabled entries in document order. This is
	// the list handed to the pipeline.
	Active []*ResolvedEntry `json:"genomes" yaml:"genomes"`

	// Disabled holds resolved entries whose disabled flag was set. They are
	// excluded from the build but still resolve, since other entries may
	// alias their fields.
	Disabled []*ResolvedEntry `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// Entry returns the resolved entry with the given name, searching the
// active list first and then the disabled list.
func (p *Plan) Entry(name string) *ResolvedEntry {
	for _, e := range p.Active {
		if e.Name == name {
			return e
		}
	}
	for _, e := range p.Disabled {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// Genomes returns the names of the active entries in plan order.
func (p *Plan) Genomes() []string {
	names := make([]string, 0, len(p.Active))
	for _, e := range p.Active {
		names = append(names, e.Name)
	}
	return names
}

// Fingerprint returns a short stable hash of the plan's resolved content.
// Two plans emitted from the same spec with the same dynamic values have
// the same fingerprint regardless of run id or timestamps.
func (p *Plan) Fingerprint() string {
	h := sha256.New()
	for _, e := range p.Active {
		h.Write([]byte(e.Name))
		h.Write([]byte{0})
		h.Write([]byte(e.render()))
		h.Write([]byte{'\n'})
	}
	for _, e := range p.Disabled {
		h.Write([]byte("disabled:"))
		h.Write([]byte(e.Name))
		h.Write([]byte{0})
		h.Write([]byte(e.render()))
		h.Write([]byte{'\n'})
	}
	return fmt.Sprintf("%x", h.Sum(nil))[:16]
}

// ResolvedEntry is the concrete counterpart of one spec entry: every field
// fully resolved, with zero remaining indirection. It serializes as the
// bare field mapping, in document order.
type ResolvedEntry struct {
	Name     string
	Disabled bool

	// Fields holds every resolved field of the entry in document order,
	// including the identity fields.
	Fields *ast.Mapping

	// Location is where the entry was declared in the spec.
	Location ast.Location
}

// MarshalJSON renders the entry as its resolved field mapping.
func (e *ResolvedEntry) MarshalJSON() ([]byte, error) {
	return e.Fields.MarshalJSON()
}

// MarshalYAML renders the entry as its resolved field mapping, keys in
// document order.
func (e *ResolvedEntry) MarshalYAML() (interface{}, error) {
	return ast.NewMappingValue(e.Fields, e.Location), nil
}

// render produces a deterministic single-line form of the entry's fields,
// used for fingerprinting.
func (e *ResolvedEntry) render() string {
	return ast.NewMappingValue(e.Fields, ast.Location{}).String()
}

// Fingerprint returns a short stable hash of this entry's resolved
// content. It changes when any of the entry's resolved fields change, so
// completion tracking can tell a re-run of the same configuration from a
// run against an edited one.
func (e *ResolvedEntry) Fingerprint() string {
	h := sha256.Sum256([]byte(e.render()))
	return fmt.Sprintf("%x", h)[:16]
}

// Label returns the entry's display label, falling back to the entry name
// when no label was declared.
func (e *ResolvedEntry) Label() string {
	if s := e.stringField(ast.FieldLabel); s != "" {
		return s
	}
	return e.Name
}

// TaxonID returns the entry's NCBI taxon id.
func (e *ResolvedEntry) TaxonID() string {
	return e.stringField(ast.FieldTaxonID)
}

// Build returns the entry's genome build identifier.
func (e *ResolvedEntry) Build() string {
	return e.stringField(ast.FieldBuild)
}

// ChrPattern returns the chromosome-name regular expression, if declared.
func (e *ResolvedEntry) ChrPattern() string {
	return e.stringField(ast.FieldChrRe)
}

// ChrSort returns the chromosome sort order hint, if declared.
func (e *ResolvedEntry) ChrSort() string {
	return e.stringField(ast.FieldChrSort)
}

// Section decodes the named section field (assembly, models, orthology).
// It returns false when the entry has no such field or the field did not
// resolve to a mapping.
func (e *ResolvedEntry) Section(field string) (*SectionConfig, bool) {
	v, ok := e.Fields.Get(field)
	if !ok || !v.IsMapping() {
		return nil, false
	}
	return DecodeSection(field, v.Map), true
}

// Sections decodes every section field the entry declares, in document
// order.
func (e *ResolvedEntry) Sections() []*SectionConfig {
	var out []*SectionConfig
	e.Fields.Range(func(key string, v *ast.Value) bool {
		if ast.SectionFields[key] && v.IsMapping() {
			out = append(out, DecodeSection(key, v.Map))
		}
		return true
	})
	return out
}

func (e *ResolvedEntry) stringField(key string) string {
	v, ok := e.Fields.Get(key)
	if !ok {
		return ""
	}
	s, _ := v.AsString()
	return s
}

// SectionConfig is the decoded form of one resolved section mapping. The
// conventional keys are lifted into typed fields; Raw retains the complete
// mapping for keys this struct does not model.
type SectionConfig struct {
	// Field is the entry field the section came from (assembly, models,
	// orthology).
	Field string

	// Source selects the pipeline adapter. Empty means the default
	// adapter.
	Source string

	// Release identifies the data release to fetch.
	Release string

	// URL is the remote artifact location for URL-driven sources.
	URL string

	// RemotePath is the provider-relative path for listing-driven sources.
	RemotePath string

	// ChunkSize is the feature-batching granularity for downstream import.
	ChunkSize int64

	// Filters names the filter hooks to apply, in order.
	Filters []string

	// ExcludeTypes lists feature types dropped during import.
	ExcludeTypes []string

	// Linkouts are the external hyperlink rules for the section's records.
	Linkouts []Linkout

	// Raw is the complete resolved section mapping.
	Raw *ast.Mapping
}

// Linkout is one external hyperlink rule: Attr's value (optionally with
// its recognized prefix stripped) is substituted into the URL template.
type Linkout struct {
	Text        string `json:"text" yaml:"text"`
	URL         string `json:"url" yaml:"url"`
	Attr        string `json:"attr" yaml:"attr"`
	StripPrefix bool   `json:"stripPrefix,omitempty" yaml:"stripPrefix,omitempty"`
}

// DecodeSection lifts the conventional keys out of a resolved section
// mapping. Missing or differently typed keys leave zero values; shape
// problems are the validator's concern, not the decoder's.
func DecodeSection(field string, m *ast.Mapping) *SectionConfig {
	sc := &SectionConfig{
		Field:      field,
		Source:     mapString(m, "source"),
		Release:    mapString(m, "release"),
		URL:        mapString(m, "url"),
		RemotePath: mapString(m, "remotePath"),
		Raw:        m,
	}
	if v, ok := m.Get("chunkSize"); ok {
		if n, isInt := v.AsInt(); isInt {
			sc.ChunkSize = n
		}
	}
	if v, ok := m.Get("filters"); ok {
		if xs, isList := v.StringList(); isList {
			sc.Filters = xs
		}
	}
	if v, ok := m.Get("exclude_types"); ok {
		if xs, isList := v.StringList(); isList {
			sc.ExcludeTypes = xs
		}
	}
	if v, ok := m.Get("linkouts"); ok && v.IsSequence() {
		for _, item := range v.Items {
			if !item.IsMapping() {
				continue
			}
			sc.Linkouts = append(sc.Linkouts, Linkout{
				Text:        mapString(item.Map, "text"),
				URL:         mapString(item.Map, "url"),
				Attr:        mapString(item.Map, "attr"),
				StripPrefix: mapBool(item.Map, "stripPrefix"),
			})
		}
	}
	return sc
}

func mapString(m *ast.Mapping, key string) string {
	v, ok := m.Get(key)
	if !ok {
		return ""
	}
	s, _ := v.AsString()
	return s
}

func mapBool(m *ast.Mapping, key string) bool {
	v, ok := m.Get(key)
	if !ok {
		return false
	}
	b, _ := v.AsBool()
	return b
}
