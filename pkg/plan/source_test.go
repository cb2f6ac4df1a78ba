package plan

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func TestFileSource_Fetch(t *testing.T) {
	src := NewFileSource(genomesSpec, nil)

	data, revision, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Fetch() returned no data")
	}
	if revision != "" {
		t.Errorf("revision = %q, want empty for file sources", revision)
	}

	want, err := os.ReadFile(genomesSpec)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(want) {
		t.Error("Fetch() data differs from file contents")
	}

	if got := src.Describe(); got != genomesSpec {
		t.Errorf("Describe() = %q, want %q", got, genomesSpec)
	}
}

func TestFileSource_MissingFile(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "no-such.yaml"), nil)
	if _, _, err := src.Fetch(context.Background()); err == nil {
		t.Error("Fetch() error = nil for missing file")
	}
}

func TestFileSource_SizeLimit(t *testing.T) {
	src := NewFileSource(genomesSpec, nil).WithMaxSize(16)
	if _, _, err := src.Fetch(context.Background()); err == nil {
		t.Error("Fetch() error = nil, want size limit error")
	}
}

func TestNewGitSource_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  GitSourceConfig
	}{
		{"empty repository", GitSourceConfig{Branch: "main", Path: "genomes.yaml"}},
		{"empty branch", GitSourceConfig{Repository: "https://example.org/spec.git", Path: "genomes.yaml"}},
		{"empty path", GitSourceConfig{Repository: "https://example.org/spec.git", Branch: "main"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewGitSource(tt.cfg, nil); err == nil {
				t.Error("NewGitSource() error = nil, want config error")
			}
		})
	}
}

// initSpecRepo creates a local git repository holding one spec file and
// returns the repo directory plus a commit helper.
func initSpecRepo(t *testing.T) (string, func(content string) string) {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit() error = %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}

	commit := func(content string) string {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, "genomes.yaml"), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := wt.Add("genomes.yaml"); err != nil {
			t.Fatal(err)
		}
		hash, err := wt.Commit("update spec", &gogit.CommitOptions{
			Author: &object.Signature{
				Name:  "builder",
				Email: "builder@example.org",
				When:  time.Now(),
			},
		})
		if err != nil {
			t.Fatalf("Commit() error = %v", err)
		}
		return hash.String()
	}

	return dir, commit
}

func TestGitSource_FetchAndPull(t *testing.T) {
	repoDir, commit := initSpecRepo(t)

	firstSpec := "vars:\n  release: \"110\"\ndata:\n  - name: only\n    label: \"@release\"\n"
	firstSHA := commit(firstSpec)

	src, err := NewGitSource(GitSourceConfig{
		Repository: repoDir,
		Branch:     "master",
		Path:       "genomes.yaml",
		LocalPath:  filepath.Join(t.TempDir(), "clone"),
		Timeout:    30 * time.Second,
	}, nil)
	if err != nil {
		t.Fatalf("NewGitSource() error = %v", err)
	}

	data, revision, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != firstSpec {
		t.Errorf("Fetch() data = %q, want committed spec", data)
	}
	if revision != firstSHA {
		t.Errorf("revision = %q, want %q", revision, firstSHA)
	}

	secondSpec := firstSpec + "  - name: second\n    label: also\n"
	secondSHA := commit(secondSpec)

	data, revision, err = src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("second Fetch() error = %v", err)
	}
	if string(data) != secondSpec {
		t.Error("second Fetch() did not pick up the new commit")
	}
	if revision != secondSHA {
		t.Errorf("second revision = %q, want %q", revision, secondSHA)
	}
}

func TestGitSource_Describe(t *testing.T) {
	src, err := NewGitSource(GitSourceConfig{
		Repository: "https://example.org/mgv-spec.git",
		Branch:     "main",
		Path:       "config/genomes.yaml",
		LocalPath:  t.TempDir(),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := "https://example.org/mgv-spec.git@main:config/genomes.yaml"
	if got := src.Describe(); got != want {
		t.Errorf("Describe() = %q, want %q", got, want)
	}
}
