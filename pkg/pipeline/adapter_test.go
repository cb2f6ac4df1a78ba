package pipeline

import (
	"context"
	"reflect"
	"testing"

	"mgv-hq/ganymede/pkg/config"
	"mgv-hq/ganymede/pkg/plan"
)

type namedAdapter struct {
	name string
}

func (a *namedAdapter) Name() string { return a.name }

func (a *namedAdapter) Fetch(context.Context, *Task) error  { return nil }
func (a *namedAdapter) Import(context.Context, *Task) error { return nil }
func (a *namedAdapter) Deploy(context.Context, *Task) error { return nil }

func TestRegistry_RegisterAndLookup(t *testing.T) {
	registry := NewRegistry()
	adapter := &namedAdapter{name: "UrlDownloader"}
	registry.Register(adapter)

	got, ok := registry.Lookup("UrlDownloader")
	if !ok {
		t.Fatal("Lookup() did not find registered adapter")
	}
	if got != adapter {
		t.Error("Lookup() returned a different adapter")
	}
}

func TestRegistry_EmptyNameUsesDefault(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&namedAdapter{name: DefaultAdapterName})

	got, ok := registry.Lookup("")
	if !ok {
		t.Fatal("Lookup(\"\") did not fall back to the default adapter")
	}
	if got.Name() != DefaultAdapterName {
		t.Errorf("Lookup(\"\") = %q, want %q", got.Name(), DefaultAdapterName)
	}
}

func TestRegistry_LookupMissing(t *testing.T) {
	registry := NewRegistry()

	if _, ok := registry.Lookup("EnsemblDownloader"); ok {
		t.Error("Lookup() found an adapter in an empty registry")
	}
}

func TestRegistry_ReregisterReplaces(t *testing.T) {
	registry := NewRegistry()
	first := &namedAdapter{name: "UrlDownloader"}
	second := &namedAdapter{name: "UrlDownloader"}

	registry.Register(first)
	registry.Register(second)

	got, _ := registry.Lookup("UrlDownloader")
	if got != second {
		t.Error("second Register() did not replace the first adapter")
	}
}

func TestRegistry_Names(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&namedAdapter{name: "UrlDownloader"})
	registry.Register(&namedAdapter{name: "EnsemblDownloader"})
	registry.Register(&namedAdapter{name: "AllianceDownloader"})

	want := []string{"AllianceDownloader", "EnsemblDownloader", "UrlDownloader"}
	if got := registry.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestLogAdapter_AllPhases(t *testing.T) {
	adapter := NewLogAdapter()
	ctx := context.Background()

	task := &Task{
		RunID:    "run-1",
		Genome:   "mus_musculus",
		Datatype: "models",
		Adapter:  "UrlDownloader",
		Section: &plan.SectionConfig{
			URL:       "https://ftp.ensembl.org/pub/mus.gff3.gz",
			Release:   "110",
			ChunkSize: 2000000,
		},
		Paths: config.PathsConfig{
			DownloadsDir: "/data/downloads",
			OutputDir:    "/data/output",
			WebDir:       "/data/web",
		},
		DryRun: true,
	}

	if err := adapter.Fetch(ctx, task); err != nil {
		t.Errorf("Fetch() error = %v", err)
	}
	if err := adapter.Import(ctx, task); err != nil {
		t.Errorf("Import() error = %v", err)
	}
	if err := adapter.Deploy(ctx, task); err != nil {
		t.Errorf("Deploy() error = %v", err)
	}

	if adapter.Name() != "LogAdapter" {
		t.Errorf("Name() = %q, want LogAdapter", adapter.Name())
	}
}

func TestLogAdapter_NilSection(t *testing.T) {
	adapter := NewLogAdapter()
	task := &Task{Genome: "mus_musculus", Datatype: "orthology"}

	if err := adapter.Fetch(context.Background(), task); err != nil {
		t.Errorf("Fetch() with nil section error = %v", err)
	}
	if err := adapter.Import(context.Background(), task); err != nil {
		t.Errorf("Import() with nil section error = %v", err)
	}
}
