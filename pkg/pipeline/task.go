package pipeline

import (
	"fmt"
	"net/url"

	"mgv-hq/ganymede/pkg/config"
	"mgv-hq/ganymede/pkg/plan"
)

// Pipeline phases, in run order. Within one (genome, datatype) unit the
// phases are strictly sequential: a datatype's import consumes what its
// download fetched, and deploy publishes what import produced.
const (
	PhaseDownload = "download"
	PhaseImport   = "import"
	PhaseDeploy   = "deploy"
)

// Data types, in processing order.
const (
	TypeAssembly  = "assembly"
	TypeModels    = "models"
	TypeOrthology = "orthology"
)

// Phases lists the valid pipeline phases in run order.
var Phases = []string{PhaseDownload, PhaseImport, PhaseDeploy}

// Datatypes lists the valid data types in processing order.
var Datatypes = []string{TypeAssembly, TypeModels, TypeOrthology}

// ValidPhase reports whether name is a known pipeline phase.
func ValidPhase(name string) bool {
	for _, p := range Phases {
		if p == name {
			return true
		}
	}
	return false
}

// ValidDatatype reports whether name is a known data type.
func ValidDatatype(name string) bool {
	for _, t := range Datatypes {
		if t == name {
			return true
		}
	}
	return false
}

// Task is one schedulable unit of pipeline work: a single phase of a
// single data type of a single genome, with everything an adapter needs
// resolved ahead of time. Tasks are value carriers; adapters must not
// mutate the shared Entry or Section.
type Task struct {
	// RunID is the plan emission run this task belongs to.
	RunID string

	// Genome is the entry name, Label its display label.
	Genome string
	Label  string

	// Datatype is the section being processed (assembly, models,
	// orthology); Phase is the pipeline stage.
	Datatype string
	Phase    string

	// Adapter is the registry key of the adapter that runs the task,
	// taken from the section's source discriminator.
	Adapter string

	// Section is the resolved section configuration for Datatype.
	Section *plan.SectionConfig

	// Entry is the full resolved entry, for adapters that need fields
	// beyond the section (taxon id, chromosome pattern, linkouts of a
	// sibling section).
	Entry *plan.ResolvedEntry

	// Fingerprint is the entry's resolved-content hash. The state store
	// keys completion on it so an edited entry re-runs.
	Fingerprint string

	// Paths is the filesystem and URL layout handed through from
	// configuration: downloads dir, output dir, web dir, CGI base URL.
	Paths config.PathsConfig

	// DryRun marks a task routed through the logging adapter.
	DryRun bool

	// BytesFetched is set by download adapters to report transfer size.
	// The runner copies it into the build record and metrics.
	BytesFetched int64
}

// Key returns the task's (genome, datatype, phase) identity string.
func (t *Task) Key() string {
	return fmt.Sprintf("%s/%s/%s", t.Genome, t.Datatype, t.Phase)
}

// SourceHost returns the hostname of the section's source URL, or "" when
// the section has no URL or the URL does not parse. The host alone is safe
// to log and record; full URLs can embed credentials.
func (t *Task) SourceHost() string {
	if t.Section == nil || t.Section.URL == "" {
		return ""
	}
	u, err := url.Parse(t.Section.URL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
