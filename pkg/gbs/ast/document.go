package ast

// Well-known entry field names. Name and Disabled are interpreted at load
// time; everything else is raw data interpreted only by the resolver.
const (
	FieldName     = "name"
	FieldLabel    = "label"
	FieldTaxonID  = "taxonid"
	FieldBuild    = "build"
	FieldChrRe    = "chr_re"
	FieldChrSort  = "chr_sort"
	FieldDisabled = "disabled"
	FieldAssembly = "assembly"
	FieldModels   = "models"
	FieldOrtho    = "orthology"
)

// SectionFields lists the entry fields that may legally carry an entry
// alias (`=entry`) as their value. Aliases resolve to the same-named field
// on the target entry.
var SectionFields = map[string]bool{
	FieldAssembly: true,
	FieldModels:   true,
	FieldOrtho:    true,
}

// Document is the root of a parsed GBS spec: a variable table and an
// ordered list of per-genome entries. Documents are immutable after the
// parser builds them.
type Document struct {
	Vars    *VarTable
	Entries []*Entry

	SourceFile string
	Location   Location
}

// Entry is one element of the top-level data list, describing a single
// target genome. Name and Disabled are extracted at load time because the
// emitter and alias lookup need them before resolution; Fields retains
// every raw field (including name and disabled) in document order.
type Entry struct {
	Name     string
	Disabled bool

	Fields   *Mapping
	Location Location
}

// Field returns the raw value of the named field.
func (e *Entry) Field(name string) (*Value, bool) {
	return e.Fields.Get(name)
}

// GetEntry returns the entry with the given name, or nil if not found.
// Disabled entries are returned like any other; disabled-ness affects plan
// emission only, never lookup.
func (d *Document) GetEntry(name string) *Entry {
	for _, e := range d.Entries {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// HasEntry returns true if an entry with the given name exists.
func (d *Document) HasEntry(name string) bool {
	return d.GetEntry(name) != nil
}

// EntryNames returns all entry names in document order.
func (d *Document) EntryNames() []string {
	names := make([]string, 0, len(d.Entries))
	for _, e := range d.Entries {
		names = append(names, e.Name)
	}
	return names
}

// VarTable holds the named variable definitions from the vars section.
// It is read-only after load and rebuilt fresh for every resolution run,
// so per-run caches never leak across runs.
type VarTable struct {
	vars *Mapping
}

// NewVarTable wraps an ordered mapping of variable definitions.
func NewVarTable(vars *Mapping) *VarTable {
	if vars == nil {
		vars = NewMapping()
	}
	return &VarTable{vars: vars}
}

// Lookup returns the raw (unresolved) value of the named variable.
func (t *VarTable) Lookup(name string) (*Value, bool) {
	return t.vars.Get(name)
}

// Has returns true if the named variable is defined.
func (t *VarTable) Has(name string) bool {
	return t.vars.Has(name)
}

// Names returns the variable names in document order.
func (t *VarTable) Names() []string {
	return t.vars.Keys()
}

// Len returns the number of defined variables.
func (t *VarTable) Len() int {
	return t.vars.Len()
}
