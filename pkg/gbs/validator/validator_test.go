package validator

import (
	"testing"

	"mgv-hq/ganymede/pkg/gbs/ast"
	gbserrors "mgv-hq/ganymede/pkg/gbs/errors"
	"mgv-hq/ganymede/pkg/gbs/parser"
	"mgv-hq/ganymede/pkg/gbs/resolver"
)

func parseBytes(t *testing.T, src string) *ast.Document {
	t.Helper()
	doc, err := parser.NewParser().ParseBytes([]byte(src), "memory://validator")
	if err != nil {
		t.Fatalf("ParseBytes() failed: %v", err)
	}
	return doc
}

func TestValidator_ValidDocument(t *testing.T) {
	doc, err := parser.NewParser().Parse("../../../internal/gbs/testdata/valid/genomes.yaml")
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	v := NewValidator().WithRegistry(resolver.NewRegistry())
	if err := v.Validate(doc); err != nil {
		t.Errorf("Validate() failed on a valid document: %v", err)
	}
}

func TestValidator_UndefinedVariable(t *testing.T) {
	doc := parseBytes(t, `
vars:
  release: "110"
data:
  - name: typo
    assembly:
      source: ensembl
      release: "@relaese"
`)

	err := NewValidator().Validate(doc)
	if err == nil {
		t.Fatal("Validate() should report the undefined variable")
	}

	errList := err.(*gbserrors.ErrorList)
	refs := errList.ByType(gbserrors.ErrorTypeUnresolvedReference)
	if len(refs) != 1 {
		t.Fatalf("unresolved reference errors = %d, want 1", len(refs))
	}
	if refs[0].Suggestion == "" {
		t.Error("typo'd reference should come with a suggestion")
	}
	if refs[0].Entry != "typo" {
		t.Errorf("error entry = %q, want %q", refs[0].Entry, "typo")
	}
}

func TestValidator_MissingAliasTarget(t *testing.T) {
	doc := parseBytes(t, `
vars: {}
data:
  - name: lonely
    models: "=imaginary"
`)

	err := NewValidator().Validate(doc)
	if err == nil {
		t.Fatal("Validate() should report the missing alias target")
	}
	errList := err.(*gbserrors.ErrorList)
	if !errList.HasErrorType(gbserrors.ErrorTypeUnresolvedAlias) {
		t.Error("expected an unresolved alias error")
	}
}

func TestValidator_UnknownDynamicValue(t *testing.T) {
	src := `
vars:
  when: "@@yesterday"
data:
  - name: entry
    models:
      source: mgi
      release: "@when"
`

	t.Run("with registry", func(t *testing.T) {
		doc := parseBytes(t, src)
		err := NewValidator().WithRegistry(resolver.NewRegistry()).Validate(doc)
		if err == nil {
			t.Fatal("Validate() should report the unknown dynamic value")
		}
		errList := err.(*gbserrors.ErrorList)
		if !errList.HasErrorType(gbserrors.ErrorTypeUnknownDynamicValue) {
			t.Error("expected an unknown dynamic value error")
		}
	})

	t.Run("without registry", func(t *testing.T) {
		doc := parseBytes(t, src)
		if err := NewValidator().Validate(doc); err != nil {
			t.Errorf("Validate() without a registry should skip dynamic checks, got %v", err)
		}
	})
}

func TestValidator_VariableCycle(t *testing.T) {
	doc, err := parser.NewParser().Parse("../../../internal/gbs/testdata/invalid/var-cycle.yaml")
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	verr := NewValidator().Validate(doc)
	if verr == nil {
		t.Fatal("Validate() should detect the variable cycle")
	}
	errList := verr.(*gbserrors.ErrorList)
	cycles := errList.ByType(gbserrors.ErrorTypeCircularReference)
	if len(cycles) == 0 {
		t.Fatal("expected a circular reference error")
	}
	if len(cycles) > 1 {
		t.Errorf("cycle reported %d times, want once", len(cycles))
	}
	if len(cycles[0].Chain) == 0 {
		t.Error("cycle error should carry the chain")
	}
}

func TestStructuralValidator_BadChrRe(t *testing.T) {
	doc := parseBytes(t, `
vars: {}
data:
  - name: badpattern
    chr_re: "([0-9]"
`)

	err := NewStructuralValidator().Validate(doc)
	if err == nil {
		t.Fatal("Validate() should reject a chr_re that does not compile")
	}
}

func TestStructuralValidator_TaxonID(t *testing.T) {
	tests := []struct {
		name    string
		taxonid string
		wantErr bool
	}{
		{"numeric string", `"10090"`, false},
		{"reference", `"@taxon"`, false},
		{"words", `"mouse"`, true},
		{"unquoted int", `10090`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseBytes(t, `
vars:
  taxon: "10090"
data:
  - name: check
    taxonid: `+tt.taxonid+`
`)
			err := NewStructuralValidator().Validate(doc)
			if tt.wantErr && err == nil {
				t.Errorf("taxonid %s should be rejected", tt.taxonid)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("taxonid %s should be accepted, got %v", tt.taxonid, err)
			}
		})
	}
}

func TestStructuralValidator_SectionShape(t *testing.T) {
	doc := parseBytes(t, `
vars: {}
data:
  - name: scalar_section
    assembly: "just text"
  - name: listy
    models: ["not", "a", "mapping"]
`)

	err := NewStructuralValidator().Validate(doc)
	if err == nil {
		t.Fatal("Validate() should reject non-mapping sections")
	}
	errList := err.(*gbserrors.ErrorList)
	if errList.Count() != 2 {
		t.Errorf("Count() = %d, want 2", errList.Count())
	}
}

func TestValidator_AccumulatesAcrossPasses(t *testing.T) {
	doc := parseBytes(t, `
vars: {}
data:
  - name: multi
    chr_re: "(["
    models: "=nowhere"
`)

	err := NewValidator().Validate(doc)
	if err == nil {
		t.Fatal("Validate() should report both findings")
	}
	errList := err.(*gbserrors.ErrorList)
	if errList.Count() != 2 {
		t.Errorf("Count() = %d, want 2 (one per pass)", errList.Count())
	}
}
