package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"mgv-hq/ganymede/pkg/cli"
	"mgv-hq/ganymede/pkg/gbs/ast"
	gbserrors "mgv-hq/ganymede/pkg/gbs/errors"
	"mgv-hq/ganymede/pkg/gbs/parser"
	"mgv-hq/ganymede/pkg/gbs/resolver"
	"mgv-hq/ganymede/pkg/gbs/validator"
	"mgv-hq/ganymede/pkg/pipeline"
)

var lintFlags struct {
	file   string
	dir    string
	strict bool
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate build spec files",
	Long: `Validate GBS build spec files for syntax and semantic errors.

The lint command parses spec files and performs comprehensive validation:
  - YAML syntax validation
  - Spec structure validation (vars/data sections, entry fields)
  - Reference validation (@var, @@dynamic, =alias targets)
  - Merge template validation (base discriminators)

Lint never resolves references, so it cannot detect circular references;
use 'mgv plan' for a full resolution pass.

Examples:
  # Lint single file
  mgv lint --file genomes.yaml

  # Lint directory
  mgv lint --dir specs/

  # Strict mode (warnings as errors)
  mgv lint --file genomes.yaml --strict

  # JSON output for CI/CD
  mgv lint --file genomes.yaml --format json`,
	RunE: lintSpecs,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "spec file to validate")
	lintCmd.Flags().StringVarP(&lintFlags.dir, "dir", "d", "", "directory of spec files")
	lintCmd.Flags().BoolVar(&lintFlags.strict, "strict", false, "treat warnings as errors")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

func lintSpecs(cmd *cobra.Command, args []string) error {
	if lintFlags.file == "" && lintFlags.dir == "" {
		return fmt.Errorf("either --file or --dir must be specified")
	}

	var files []string

	if lintFlags.file != "" {
		files = append(files, lintFlags.file)
	}

	if lintFlags.dir != "" {
		matches, err := filepath.Glob(filepath.Join(lintFlags.dir, "*.yaml"))
		if err != nil {
			return fmt.Errorf("failed to list spec files: %w", err)
		}
		ymlMatches, err := filepath.Glob(filepath.Join(lintFlags.dir, "*.yml"))
		if err != nil {
			return fmt.Errorf("failed to list spec files: %w", err)
		}
		files = append(files, matches...)
		files = append(files, ymlMatches...)
	}

	if len(files) == 0 {
		return fmt.Errorf("no spec files found")
	}

	results := make([]ValidationResult, 0, len(files))

	for _, file := range files {
		result := validateSpecFile(file)
		results = append(results, result)
	}

	// Output results
	if lintFlags.format == "json" {
		return outputJSON(results)
	}
	return outputText(results, lintFlags.strict)
}

// ValidationResult represents the validation result for a single spec file.
type ValidationResult struct {
	File     string            `json:"file"`
	Valid    bool              `json:"valid"`
	Errors   []ValidationError `json:"errors,omitempty"`
	Warnings []ValidationError `json:"warnings,omitempty"`
}

// ValidationError represents a single validation error or warning.
type ValidationError struct {
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
	Rule     string `json:"rule,omitempty"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
	Type     string `json:"type,omitempty"`
}

func validateSpecFile(path string) ValidationResult {
	result := ValidationResult{
		File:  path,
		Valid: true,
	}

	// Parse spec
	p := parser.NewParser()
	doc, err := p.Parse(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, collectErrors(err)...)
		return result
	}

	// Validate spec
	v := validator.NewValidator().WithRegistry(resolver.NewRegistry())
	if err := v.Validate(doc); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, collectErrors(err)...)
	}

	result.Warnings = append(result.Warnings, sourceWarnings(doc)...)

	return result
}

// collectErrors converts parse and validation failures to ValidationError
// entries, preserving location and type information where available.
func collectErrors(err error) []ValidationError {
	if errList, ok := err.(*gbserrors.ErrorList); ok {
		out := make([]ValidationError, 0, len(errList.Errors))
		for _, e := range errList.Errors {
			out = append(out, ValidationError{
				Line:     e.Location.Line,
				Column:   e.Location.Column,
				Message:  e.Message,
				Severity: "error",
				Type:     string(e.Type),
			})
		}
		return out
	}
	if gbsErr, ok := err.(*gbserrors.Error); ok {
		return []ValidationError{{
			Line:     gbsErr.Location.Line,
			Column:   gbsErr.Location.Column,
			Message:  gbsErr.Message,
			Severity: "error",
			Type:     string(gbsErr.Type),
		}}
	}
	return []ValidationError{{
		Message:  err.Error(),
		Severity: "error",
	}}
}

// knownSources are the source discriminators the stock tooling recognizes:
// the conventional upstream data sources plus the adapters that ship with
// mgv. Site builds register additional adapters, so an unknown source is a
// warning, not an error.
var knownSources = map[string]bool{
	"alliance":                  true,
	"ensembl":                   true,
	"mgi":                       true,
	"LogAdapter":                true,
	pipeline.DefaultAdapterName: true,
}

// sourceWarnings flags literal section source values that no known adapter
// handles. Sections whose source is a reference are skipped: lint does not
// resolve, so their final value is unknowable here.
func sourceWarnings(doc *ast.Document) []ValidationError {
	var warnings []ValidationError

	sections := []string{ast.FieldAssembly, ast.FieldModels, ast.FieldOrtho}
	for _, entry := range doc.Entries {
		for _, field := range sections {
			value, ok := entry.Field(field)
			if !ok {
				continue
			}
			if resolver.Classify(value).Kind != resolver.TokenPlain || !value.IsMapping() {
				continue
			}
			src, ok := value.Map.Get("source")
			if !ok {
				continue
			}
			name, ok := src.AsString()
			if !ok || resolver.Classify(src).Kind != resolver.TokenPlain {
				continue
			}
			if knownSources[name] {
				continue
			}
			warnings = append(warnings, ValidationError{
				Line:     src.Location.Line,
				Column:   src.Location.Column,
				Rule:     "unknown-source",
				Message:  fmt.Sprintf("%s.%s: unknown source %q (not a stock adapter; site builds must register it)", entry.Name, field, name),
				Severity: "warning",
			})
		}
	}

	return warnings
}

func outputText(results []ValidationResult, strict bool) error {
	totalErrors := 0
	totalWarnings := 0

	for _, result := range results {
		fmt.Printf("Validating %s...\n", result.File)

		if len(result.Errors) == 0 && len(result.Warnings) == 0 {
			fmt.Println("✓ Syntax valid")
			fmt.Println("✓ All references and sections valid")
		}

		for _, err := range result.Errors {
			fmt.Printf("✗ Error: %s", err.Message)
			if err.Line > 0 {
				fmt.Printf(" (line %d", err.Line)
				if err.Column > 0 {
					fmt.Printf(", col %d", err.Column)
				}
				fmt.Print(")")
			}
			if err.Type != "" {
				fmt.Printf(" [%s]", err.Type)
			}
			fmt.Println()
			totalErrors++
		}

		for _, warn := range result.Warnings {
			fmt.Printf("⚠  Warning: %s", warn.Message)
			if warn.Line > 0 {
				fmt.Printf(" (line %d", warn.Line)
				if warn.Column > 0 {
					fmt.Printf(", col %d", warn.Column)
				}
				fmt.Print(")")
			}
			fmt.Println()
			totalWarnings++
		}

		fmt.Println()
	}

	fmt.Println("Summary:")
	fmt.Printf("  %d error(s), %d warning(s)\n", totalErrors, totalWarnings)

	if strict && totalWarnings > 0 {
		fmt.Println("  Strict mode enabled: treating warnings as errors")
		return cli.NewCommandError("lint", fmt.Errorf("validation failed"))
	}

	if totalErrors > 0 {
		return cli.NewCommandError("lint", fmt.Errorf("validation failed"))
	}

	return nil
}

func outputJSON(results []ValidationResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(results); err != nil {
		return err
	}

	for _, result := range results {
		if !result.Valid {
			return cli.NewCommandError("lint", fmt.Errorf("validation failed"))
		}
		if lintFlags.strict && len(result.Warnings) > 0 {
			return cli.NewCommandError("lint", fmt.Errorf("validation failed"))
		}
	}
	return nil
}
