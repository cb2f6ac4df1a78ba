// Package gbs provides parsing, validation, and resolution for the
// Genome Build Spec (GBS) document format.
//
// A GBS document declares, per target genome, which external sources to
// fetch (assemblies, gene models, orthology data) and how to transform
// them. The document is pure data; this package is the engine that
// expands its layered indirection into flat, concrete build plans.
//
// # Architecture
//
// The package is organized into subpackages:
//
// - ast: document tree types (values, mappings, entries, locations)
// - parser: YAML parsing and document construction
// - validator: static validation (structural, semantic)
// - resolver: indirection expansion with cycle detection
// - errors: rich error types with location and suggestions
//
// # Document Structure
//
// A spec document has two sections:
//
//	vars:
//	  ensembl_release: "110"
//	  mouse_models:
//	    source: mgi
//	    url: "http://www.informatics.jax.org/downloads/mgigff3/MGI.gff3.gz"
//	    release: "@@today"
//	    chunkSize: 4000000
//
//	data:
//	  - name: mus_musculus
//	    label: M. musculus (GRCm39)
//	    taxonid: "10090"
//	    assembly:
//	      source: ensembl
//	      release: "@ensembl_release"
//	      remotePath: mus_musculus
//	    models: "@mouse_models"
//
// Four indirection forms appear in string scalars and mappings:
//
//   - "@name"  — variable reference
//   - "@@name" — dynamic value, computed once per resolution run
//   - "=name"  — alias to the same-named field on another entry
//   - a mapping with the reserved "base" key — merge template
//
// # Basic Usage
//
// Parse and validate:
//
//	doc, err := gbs.ParseAndValidate("config/genomes.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Resolve one entry's models:
//
//	run := resolver.New(doc).NewRun()
//	models, err := run.ResolveField("mus_musculus", "models")
//
// # Error Handling
//
// Parsing and validation return rich errors with location and
// suggestions:
//
//	if err := gbs.Validate(doc); err != nil {
//	    if errList, ok := err.(*errors.ErrorList); ok {
//	        for _, e := range errList.Errors {
//	            fmt.Println(e.Error())
//	        }
//	    }
//	}
//
// Error format:
//
//	[unresolved_reference] Undefined variable "relaese"
//	  --> config/genomes.yaml:48:16
//	  = suggestion: Did you mean 'release'?
package gbs
