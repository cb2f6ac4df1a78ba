package plan

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"mgv-hq/ganymede/pkg/gbs/ast"
	gbserrors "mgv-hq/ganymede/pkg/gbs/errors"
	"mgv-hq/ganymede/pkg/gbs/parser"
	"mgv-hq/ganymede/pkg/gbs/resolver"
)

const (
	genomesSpec = "../../internal/gbs/testdata/valid/genomes.yaml"
	minimalSpec = "../../internal/gbs/testdata/valid/minimal.yaml"
	badRefsSpec = "../../internal/gbs/testdata/invalid/bad-refs.yaml"
)

func loadDoc(t *testing.T, path string) *ast.Document {
	t.Helper()
	doc, err := parser.NewParser().Parse(path)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", path, err)
	}
	return doc
}

func pinnedRegistry(day time.Time) *resolver.Registry {
	return resolver.NewRegistry().WithClock(func() time.Time { return day })
}

func TestEmitter_DisabledExclusion(t *testing.T) {
	doc := loadDoc(t, genomesSpec)

	p, err := NewEmitter().Emit(doc)
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	wantActive := []string{"mus_musculus", "homo_sapiens", "mus_musculus_aj", "mus_caroli", "mus_spretus"}
	got := p.Genomes()
	if len(got) != len(wantActive) {
		t.Fatalf("active entries = %v, want %v", got, wantActive)
	}
	for i, name := range wantActive {
		if got[i] != name {
			t.Errorf("active[%d] = %q, want %q", i, got[i], name)
		}
	}

	if len(p.Disabled) != 1 || p.Disabled[0].Name != "mus_musculus_grcm38" {
		t.Fatalf("disabled entries = %v, want [mus_musculus_grcm38]", p.Disabled)
	}

	grcm38 := p.Entry("mus_musculus_grcm38")
	if grcm38 == nil {
		t.Fatal("Entry(mus_musculus_grcm38) = nil, want resolved entry")
	}
	if !grcm38.Disabled {
		t.Error("grcm38.Disabled = false, want true")
	}
	models, ok := grcm38.Section(ast.FieldModels)
	if !ok {
		t.Fatal("grcm38 has no resolved models section")
	}
	if !strings.Contains(models.URL, "archive/annual") {
		t.Errorf("grcm38 models.URL = %q, want archived URL", models.URL)
	}
}

func TestEmitter_ErrorAccumulation(t *testing.T) {
	doc := loadDoc(t, badRefsSpec)

	p, err := NewEmitter().Emit(doc)
	if p != nil {
		t.Fatalf("Emit() plan = %v, want nil under abort policy", p)
	}
	if err == nil {
		t.Fatal("Emit() error = nil, want accumulated errors")
	}

	list, ok := err.(*gbserrors.ErrorList)
	if !ok {
		t.Fatalf("Emit() error type = %T, want *ErrorList", err)
	}
	if list.Count() != 5 {
		t.Fatalf("error count = %d, want 5\n%v", list.Count(), list)
	}

	wantTypes := map[string]gbserrors.ErrorType{
		"undefined_var":         gbserrors.ErrorTypeUnresolvedReference,
		"unknown_dynamic":       gbserrors.ErrorTypeUnknownDynamicValue,
		"missing_alias_target":  gbserrors.ErrorTypeUnresolvedAlias,
		"bad_merge_base":        gbserrors.ErrorTypeInvalidMergeBase,
		"aliases_missing_field": gbserrors.ErrorTypeUnresolvedAlias,
	}
	for entry, wantType := range wantTypes {
		errs := list.ByEntry(entry)
		if len(errs) != 1 {
			t.Errorf("errors for %q = %d, want 1", entry, len(errs))
			continue
		}
		if errs[0].Type != wantType {
			t.Errorf("%q error type = %q, want %q", entry, errs[0].Type, wantType)
		}
	}
	if errs := list.ByEntry("healthy"); len(errs) != 0 {
		t.Errorf("errors for healthy entry = %v, want none", errs)
	}
}

func TestEmitter_ContinueOnError(t *testing.T) {
	doc := loadDoc(t, badRefsSpec)

	p, err := NewEmitter().WithContinueOnError(true).Emit(doc)
	if err == nil {
		t.Fatal("Emit() error = nil, want accumulated errors alongside partial plan")
	}
	if p == nil {
		t.Fatal("Emit() plan = nil, want partial plan")
	}

	if len(p.Active) != 1 || p.Active[0].Name != "healthy" {
		t.Fatalf("partial plan active = %v, want [healthy]", p.Genomes())
	}
	models, ok := p.Active[0].Section(ast.FieldModels)
	if !ok {
		t.Fatal("healthy entry has no models section")
	}
	if models.Source != "ensembl" || models.Release != "99" {
		t.Errorf("healthy models = source %q release %q, want ensembl/99", models.Source, models.Release)
	}
}

func TestEmitter_FingerprintStable(t *testing.T) {
	day := time.Date(2021, 3, 14, 12, 0, 0, 0, time.UTC)
	doc := loadDoc(t, genomesSpec)

	first, err := NewEmitter().WithRegistry(pinnedRegistry(day)).Emit(doc)
	if err != nil {
		t.Fatalf("first Emit() error = %v", err)
	}
	second, err := NewEmitter().WithRegistry(pinnedRegistry(day)).Emit(doc)
	if err != nil {
		t.Fatalf("second Emit() error = %v", err)
	}

	if first.Fingerprint() != second.Fingerprint() {
		t.Errorf("fingerprints differ for identical content: %q vs %q",
			first.Fingerprint(), second.Fingerprint())
	}
	if first.RunID == second.RunID {
		t.Error("run ids should differ between emissions")
	}

	other, err := NewEmitter().WithRegistry(pinnedRegistry(day)).Emit(loadDoc(t, minimalSpec))
	if err != nil {
		t.Fatalf("minimal Emit() error = %v", err)
	}
	if other.Fingerprint() == first.Fingerprint() {
		t.Error("different specs produced the same fingerprint")
	}

	nextDay := pinnedRegistry(day.AddDate(0, 0, 1))
	shifted, err := NewEmitter().WithRegistry(nextDay).Emit(doc)
	if err != nil {
		t.Fatalf("shifted Emit() error = %v", err)
	}
	if shifted.Fingerprint() == first.Fingerprint() {
		t.Error("dynamic date change should change the fingerprint")
	}
}

func TestResolvedEntry_Fingerprint(t *testing.T) {
	day := time.Date(2021, 3, 14, 12, 0, 0, 0, time.UTC)
	doc := loadDoc(t, genomesSpec)

	first, err := NewEmitter().WithRegistry(pinnedRegistry(day)).Emit(doc)
	if err != nil {
		t.Fatalf("first Emit() error = %v", err)
	}
	second, err := NewEmitter().WithRegistry(pinnedRegistry(day)).Emit(doc)
	if err != nil {
		t.Fatalf("second Emit() error = %v", err)
	}

	for _, e := range first.Active {
		again := second.Entry(e.Name)
		if again == nil {
			t.Fatalf("entry %q missing from second plan", e.Name)
		}
		if e.Fingerprint() != again.Fingerprint() {
			t.Errorf("%s fingerprint differs between identical emissions: %q vs %q",
				e.Name, e.Fingerprint(), again.Fingerprint())
		}
		if len(e.Fingerprint()) != 16 {
			t.Errorf("%s fingerprint length = %d, want 16", e.Name, len(e.Fingerprint()))
		}
	}

	seen := make(map[string]string)
	for _, e := range first.Active {
		if prev, dup := seen[e.Fingerprint()]; dup {
			t.Errorf("entries %q and %q share fingerprint %q", prev, e.Name, e.Fingerprint())
		}
		seen[e.Fingerprint()] = e.Name
	}
}

func TestEmitter_SectionDecode(t *testing.T) {
	day := time.Date(2021, 3, 14, 0, 0, 0, 0, time.UTC)
	doc := loadDoc(t, genomesSpec)

	p, err := NewEmitter().WithRegistry(pinnedRegistry(day)).Emit(doc)
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	t.Run("human models merge", func(t *testing.T) {
		human := p.Entry("homo_sapiens")
		if human == nil {
			t.Fatal("homo_sapiens missing from plan")
		}
		models, ok := human.Section(ast.FieldModels)
		if !ok {
			t.Fatal("homo_sapiens has no models section")
		}

		if models.Source != "alliance" {
			t.Errorf("Source = %q, want alliance", models.Source)
		}
		if models.ChunkSize != 2000000 {
			t.Errorf("ChunkSize = %d, want 2000000", models.ChunkSize)
		}
		if len(models.Filters) != 1 || models.Filters[0] != "rgdGff" {
			t.Errorf("Filters = %v, want [rgdGff]", models.Filters)
		}
		if models.Release != "4.0.0" {
			t.Errorf("Release = %q, want 4.0.0", models.Release)
		}

		provider, _ := models.Raw.Get("provider")
		if s, _ := provider.AsString(); s != "HUMAN" {
			t.Errorf("provider = %v, want HUMAN", provider)
		}

		want := []Linkout{
			{Text: "HGNC", URL: "https://www.genenames.org/data/gene-symbol-report/#!/hgnc_id/%s", Attr: "curie"},
			{Text: "RGD", URL: "https://rgd.mcw.edu/rgdweb/report/gene/main.html?id=%s", Attr: "curie", StripPrefix: true},
		}
		if len(models.Linkouts) != len(want) {
			t.Fatalf("Linkouts = %d entries, want %d", len(models.Linkouts), len(want))
		}
		for i, lo := range want {
			if models.Linkouts[i] != lo {
				t.Errorf("Linkouts[%d] = %+v, want %+v", i, models.Linkouts[i], lo)
			}
		}
	})

	t.Run("mouse models template", func(t *testing.T) {
		mouse := p.Entry("mus_musculus")
		if mouse == nil {
			t.Fatal("mus_musculus missing from plan")
		}
		models, ok := mouse.Section(ast.FieldModels)
		if !ok {
			t.Fatal("mus_musculus has no models section")
		}

		if models.ChunkSize != 4000000 {
			t.Errorf("ChunkSize = %d, want 4000000", models.ChunkSize)
		}
		wantTypes := []string{"biological_region", "chromosome", "scaffold"}
		if len(models.ExcludeTypes) != len(wantTypes) {
			t.Fatalf("ExcludeTypes = %v, want %v", models.ExcludeTypes, wantTypes)
		}
		for i, typ := range wantTypes {
			if models.ExcludeTypes[i] != typ {
				t.Errorf("ExcludeTypes[%d] = %q, want %q", i, models.ExcludeTypes[i], typ)
			}
		}
		if models.Release != "2021-03-14" {
			t.Errorf("Release = %q, want pinned build date", models.Release)
		}
		if len(models.Linkouts) != 4 {
			t.Fatalf("Linkouts = %d entries, want 4", len(models.Linkouts))
		}
		wantOrder := []string{"MGI", "Alliance", "Ensembl", "NCBI"}
		for i, text := range wantOrder {
			if models.Linkouts[i].Text != text {
				t.Errorf("Linkouts[%d].Text = %q, want %q", i, models.Linkouts[i].Text, text)
			}
		}
	})

	t.Run("assembly remote path", func(t *testing.T) {
		mouse := p.Entry("mus_musculus")
		assembly, ok := mouse.Section(ast.FieldAssembly)
		if !ok {
			t.Fatal("mus_musculus has no assembly section")
		}
		if assembly.RemotePath != "mus_musculus" {
			t.Errorf("RemotePath = %q, want mus_musculus", assembly.RemotePath)
		}
		if assembly.Release != "110" {
			t.Errorf("Release = %q, want shared Ensembl release", assembly.Release)
		}
	})
}

func TestResolvedEntry_Accessors(t *testing.T) {
	doc := loadDoc(t, genomesSpec)
	p, err := NewEmitter().Emit(doc)
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	aj := p.Entry("mus_musculus_aj")
	if aj == nil {
		t.Fatal("mus_musculus_aj missing from plan")
	}
	if got := aj.Label(); got != "M. musculus A/J" {
		t.Errorf("Label() = %q, want declared label", got)
	}
	if got := aj.TaxonID(); got != "10090" {
		t.Errorf("TaxonID() = %q, want 10090", got)
	}
	if got := aj.Build(); got != "A_J_v3" {
		t.Errorf("Build() = %q, want A_J_v3", got)
	}
	if got := aj.ChrPattern(); got != "^([0-9]{1,2}|[XY])$" {
		t.Errorf("ChrPattern() = %q", got)
	}
	if got := aj.ChrSort(); got != "standard" {
		t.Errorf("ChrSort() = %q, want standard", got)
	}

	sections := aj.Sections()
	if len(sections) != 2 {
		t.Fatalf("Sections() = %d entries, want 2", len(sections))
	}
	if sections[0].Field != ast.FieldAssembly || sections[1].Field != ast.FieldModels {
		t.Errorf("Sections() order = [%s %s], want [assembly models]",
			sections[0].Field, sections[1].Field)
	}
}

func TestResolvedEntry_LabelFallback(t *testing.T) {
	doc := loadDoc(t, badRefsSpec)
	p, _ := NewEmitter().WithContinueOnError(true).Emit(doc)
	if p == nil || len(p.Active) == 0 {
		t.Fatal("expected partial plan with the healthy entry")
	}
	if got := p.Active[0].Label(); got != "healthy" {
		t.Errorf("Label() = %q, want fallback to entry name", got)
	}
}

func TestPlan_JSONShape(t *testing.T) {
	day := time.Date(2021, 3, 14, 0, 0, 0, 0, time.UTC)
	doc := loadDoc(t, genomesSpec)
	p, err := NewEmitter().WithRegistry(pinnedRegistry(day)).Emit(doc)
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	out := string(b)

	if !strings.Contains(out, `"genomes":[`) {
		t.Error("plan JSON missing genomes list")
	}
	mouse := strings.Index(out, `"name":"mus_musculus"`)
	human := strings.Index(out, `"name":"homo_sapiens"`)
	if mouse == -1 || human == -1 || mouse > human {
		t.Errorf("plan JSON does not preserve document order (mouse at %d, human at %d)", mouse, human)
	}
	if !strings.Contains(out, `"chunkSize":4000000`) {
		t.Error("plan JSON missing resolved chunkSize")
	}
	if strings.Contains(out, "@") {
		t.Error("plan JSON still contains indirection syntax")
	}
}
