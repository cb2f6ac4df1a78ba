package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	"github.com/spf13/cobra"
	"mgv-hq/ganymede/pkg/cli"
	"mgv-hq/ganymede/pkg/plan"
)

var planFlags struct {
	file            string
	format          string
	genome          string
	includeDisabled bool
	output          string
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Resolve a build spec and emit the build plan",
	Long: `Resolve a GBS build spec and emit the fully resolved build plan.

The plan command runs a complete resolution pass: variables, dynamic
values, merge templates, and entry aliases are all expanded, and the
resulting plan lists every genome with concrete values only. Entries
appear in spec document order.

Examples:
  # Emit the plan for the configured spec
  mgv plan

  # Emit the plan for a specific file
  mgv plan --file genomes.yaml

  # YAML plan for a subset of genomes
  mgv plan --genome 'mus_.*' --format yaml

  # Write the plan to a file, including disabled entries
  mgv plan --include-disabled --format json --output plan.json`,
	RunE: emitPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringVarP(&planFlags.file, "file", "f", "", "spec file to resolve (overrides configured source)")
	planCmd.Flags().StringVar(&planFlags.format, "format", "text", "output format: text, json, yaml")
	planCmd.Flags().StringVar(&planFlags.genome, "genome", "", "regular expression selecting genomes to include")
	planCmd.Flags().BoolVar(&planFlags.includeDisabled, "include-disabled", false, "include disabled entries in the output")
	planCmd.Flags().StringVarP(&planFlags.output, "output", "o", "", "write output to file instead of stdout")
}

func emitPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigOrDefaults()
	if err != nil {
		return err
	}
	if planFlags.file != "" {
		cfg.Spec.Path = planFlags.file
		cfg.Spec.Git.Enabled = false
	}

	format, err := cli.ParseFormat(planFlags.format)
	if err != nil {
		return err
	}
	if format == cli.FormatCSV {
		return fmt.Errorf("unknown output format %q (want text, json, yaml)", planFlags.format)
	}

	var genomeRe *regexp.Regexp
	if planFlags.genome != "" {
		genomeRe, err = regexp.Compile("^(?:" + planFlags.genome + ")$")
		if err != nil {
			return fmt.Errorf("invalid --genome pattern: %w", err)
		}
	}

	// Keep stdout clean for the plan document.
	if !verbose {
		cfg.Telemetry.Logging.Level = "warn"
	}
	if err := initSlog(cfg); err != nil {
		return err
	}

	source, err := newSpecSource(cfg)
	if err != nil {
		return err
	}
	planner, err := newPlanner(cfg, source)
	if err != nil {
		return err
	}

	p, rebuildErr := planner.Rebuild(context.Background())
	if p == nil {
		return cli.NewCommandError("plan", rebuildErr)
	}
	if rebuildErr != nil {
		// Partial plan under continue_on_error: emit it, but fail the
		// command so CI notices.
		fmt.Fprintf(os.Stderr, "⚠  Plan emitted with errors:\n%v\n", rebuildErr)
	}

	doc := buildPlanDocument(p, genomeRe, planFlags.includeDisabled)

	out := io.Writer(os.Stdout)
	if planFlags.output != "" {
		f, err := os.Create(planFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch format {
	case cli.FormatText:
		err = renderPlanText(out, doc)
	default:
		err = cli.NewFormatter(format).FormatTo(out, doc)
	}
	if err != nil {
		return err
	}

	if planFlags.output != "" {
		fmt.Printf("✓ Plan written to %s\n", planFlags.output)
	}
	if rebuildErr != nil {
		return cli.NewCommandError("plan", fmt.Errorf("plan emitted with errors"))
	}
	return nil
}

// planDocument is the serialized form of an emitted plan.
type planDocument struct {
	Version     string                `json:"version" yaml:"version"`
	SpecPath    string                `json:"specPath,omitempty" yaml:"specPath,omitempty"`
	SpecHash    string                `json:"specHash,omitempty" yaml:"specHash,omitempty"`
	Revision    string                `json:"revision,omitempty" yaml:"revision,omitempty"`
	RunID       string                `json:"runId" yaml:"runId"`
	GeneratedAt time.Time             `json:"generatedAt" yaml:"generatedAt"`
	Genomes     []*plan.ResolvedEntry `json:"genomes" yaml:"genomes"`
	Disabled    []*plan.ResolvedEntry `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// buildPlanDocument projects a plan into its output form, applying the
// genome filter without touching the plan itself (the registry holds it).
func buildPlanDocument(p *plan.Plan, genomeRe *regexp.Regexp, includeDisabled bool) *planDocument {
	doc := &planDocument{
		Version:     p.Fingerprint(),
		SpecPath:    p.SpecPath,
		SpecHash:    p.SpecHash,
		Revision:    p.Revision,
		RunID:       p.RunID,
		GeneratedAt: p.GeneratedAt,
		Genomes:     make([]*plan.ResolvedEntry, 0, len(p.Active)),
	}

	for _, entry := range p.Active {
		if genomeRe != nil && !genomeRe.MatchString(entry.Name) {
			continue
		}
		doc.Genomes = append(doc.Genomes, entry)
	}
	if includeDisabled {
		for _, entry := range p.Disabled {
			if genomeRe != nil && !genomeRe.MatchString(entry.Name) {
				continue
			}
			doc.Disabled = append(doc.Disabled, entry)
		}
	}
	return doc
}

func renderPlanText(w io.Writer, doc *planDocument) error {
	fmt.Fprintf(w, "Spec: %s\n", doc.SpecPath)
	if doc.SpecHash != "" {
		fmt.Fprintf(w, "Hash: %s\n", doc.SpecHash)
	}
	if doc.Revision != "" {
		fmt.Fprintf(w, "Revision: %s\n", doc.Revision)
	}
	fmt.Fprintf(w, "Run ID: %s\n", doc.RunID)
	fmt.Fprintf(w, "Generated: %s\n", doc.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Version: %s\n", doc.Version)

	fmt.Fprintf(w, "\nGenomes (%d active", len(doc.Genomes))
	if len(doc.Disabled) > 0 {
		fmt.Fprintf(w, ", %d disabled", len(doc.Disabled))
	}
	fmt.Fprintln(w, "):")

	for _, entry := range doc.Genomes {
		fmt.Fprintf(w, "  %s", entry.Name)
		if label := entry.Label(); label != entry.Name {
			fmt.Fprintf(w, " (%s)", label)
		}
		if taxon := entry.TaxonID(); taxon != "" {
			fmt.Fprintf(w, " taxon=%s", taxon)
		}
		if build := entry.Build(); build != "" {
			fmt.Fprintf(w, " build=%s", build)
		}
		fmt.Fprintln(w)

		for _, section := range entry.Sections() {
			fmt.Fprintf(w, "    %s:", section.Field)
			if section.Source != "" {
				fmt.Fprintf(w, " source=%s", section.Source)
			}
			if section.Release != "" {
				fmt.Fprintf(w, " release=%s", section.Release)
			}
			if section.URL != "" {
				fmt.Fprintf(w, " url=%s", section.URL)
			}
			fmt.Fprintln(w)
		}
	}

	if len(doc.Disabled) > 0 {
		fmt.Fprintln(w, "\nDisabled:")
		for _, entry := range doc.Disabled {
			fmt.Fprintf(w, "  %s\n", entry.Name)
		}
	}
	return nil
}
