// Package validator provides static validation for GBS spec documents.
//
// Validation runs after parsing and before resolution, in two passes:
//
//  1. Structural: entry fields have the right shapes. Text fields are
//     strings, taxonid is a quoted numeric id, chr_re compiles as a
//     regular expression, and section fields (assembly, models,
//     orthology) are mappings or references.
//
//  2. Semantic: every reference can be satisfied. Variable references
//     name defined variables, aliases name existing entries, dynamic
//     references name registered providers, and variable definitions do
//     not form cycles.
//
// The passes are static: nothing is resolved, so a document that
// validates cleanly can still fail at resolve time (an alias chain that
// loops, a merge base that resolves to a scalar). Resolution reports
// those with the same error taxonomy.
//
//	v := validator.NewValidator().WithRegistry(resolver.NewRegistry())
//	if err := v.Validate(doc); err != nil {
//	    for _, e := range err.(*errors.ErrorList).Errors {
//	        fmt.Println(e)
//	    }
//	}
package validator
