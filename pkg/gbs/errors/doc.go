// Package errors provides rich error types for GBS parsing, validation,
// and resolution.
//
// Errors carry source location, surrounding context, and suggestions so a
// misconfigured spec can be fixed from the message alone. Resolution
// errors additionally record the entry being resolved and, for circular
// references, the complete reference chain.
//
// # Error Types
//
// ErrorTypeSyntax: malformed YAML
//
// ErrorTypeStructural: document shape violations (missing name, bad data list)
//
// ErrorTypeValidation: lint-level findings
//
// ErrorTypeIO: file access failures
//
// ErrorTypeUnresolvedReference: @name names an undefined variable
//
// ErrorTypeUnresolvedAlias: =name names a nonexistent entry
//
// ErrorTypeCircularReference: a reference chain revisits an in-flight node
//
// ErrorTypeInvalidMergeBase: a merge base resolved to a non-mapping
//
// ErrorTypeUnknownDynamicValue: @@name names an unregistered provider
//
// # Accumulation
//
// ErrorList collects every error found in one pass, so a single run
// surfaces all misconfigurations instead of stopping at the first:
//
//	errList := errors.NewErrorList()
//	errList.AddError(errors.ErrorTypeStructural, "entry missing 'name'", loc)
//	errList.AddError(errors.ErrorTypeUnresolvedReference, "undefined variable 'ensembl'", loc2)
//	return errList.ToError()
package errors
