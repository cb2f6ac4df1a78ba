package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestInitialize(t *testing.T) {
	// Reset global state
	globalConfig = nil
	initOnce = *new(sync.Once)

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "mgv.yaml")

	configContent := `
spec:
  path: "./genomes.yaml"

telemetry:
  logging:
    level: "info"
    format: "json"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if err := Initialize(configPath); err != nil {
		t.Fatalf("failed to initialize config: %v", err)
	}

	cfg := GetConfig()
	if cfg == nil {
		t.Fatal("expected non-nil config after initialization")
	}
	if cfg.Spec.Path != "./genomes.yaml" {
		t.Errorf("expected spec path %q, got %q", "./genomes.yaml", cfg.Spec.Path)
	}
}

func TestInitialize_MultipleCallsIgnored(t *testing.T) {
	globalConfig = nil
	initOnce = *new(sync.Once)

	tmpDir := t.TempDir()
	configPath1 := filepath.Join(tmpDir, "mgv1.yaml")
	configPath2 := filepath.Join(tmpDir, "mgv2.yaml")

	if err := os.WriteFile(configPath1, []byte(`
spec:
  path: "./first.yaml"
`), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	if err := os.WriteFile(configPath2, []byte(`
spec:
  path: "./second.yaml"
`), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if err := Initialize(configPath1); err != nil {
		t.Fatalf("first Initialize failed: %v", err)
	}
	if err := Initialize(configPath2); err != nil {
		t.Fatalf("second Initialize failed: %v", err)
	}

	cfg := GetConfig()
	if cfg.Spec.Path != "./first.yaml" {
		t.Errorf("expected first config to win, got spec path %q", cfg.Spec.Path)
	}
}

func TestReloadConfig(t *testing.T) {
	globalConfig = nil
	initOnce = *new(sync.Once)

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "mgv.yaml")

	if err := os.WriteFile(configPath, []byte(`
pipeline:
  workers: 2
`), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if err := Initialize(configPath); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if got := GetConfig().Pipeline.Workers; got != 2 {
		t.Fatalf("expected 2 workers, got %d", got)
	}

	if err := os.WriteFile(configPath, []byte(`
pipeline:
  workers: 6
`), 0644); err != nil {
		t.Fatalf("failed to rewrite config file: %v", err)
	}

	if err := ReloadConfig(configPath); err != nil {
		t.Fatalf("ReloadConfig failed: %v", err)
	}
	if got := GetConfig().Pipeline.Workers; got != 6 {
		t.Errorf("expected 6 workers after reload, got %d", got)
	}
}

func TestReloadConfig_FailureKeepsExisting(t *testing.T) {
	globalConfig = nil
	initOnce = *new(sync.Once)

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "mgv.yaml")

	if err := os.WriteFile(configPath, []byte(`
pipeline:
  workers: 2
`), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if err := Initialize(configPath); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	// Overwrite with an invalid config; the reload must fail and the old
	// config must remain visible.
	if err := os.WriteFile(configPath, []byte(`
telemetry:
  logging:
    level: "loud"
`), 0644); err != nil {
		t.Fatalf("failed to rewrite config file: %v", err)
	}

	if err := ReloadConfig(configPath); err == nil {
		t.Fatal("expected ReloadConfig to fail on invalid config")
	}
	if got := GetConfig().Pipeline.Workers; got != 2 {
		t.Errorf("expected old config to survive failed reload, got %d workers", got)
	}
}

func TestSetConfig(t *testing.T) {
	globalConfig = nil
	initOnce = *new(sync.Once)

	cfg := DefaultConfig()
	cfg.Pipeline.Workers = 99
	SetConfig(cfg)

	if got := GetConfig().Pipeline.Workers; got != 99 {
		t.Errorf("expected 99 workers from SetConfig, got %d", got)
	}
}

func TestMustGetConfig_PanicsWhenUninitialized(t *testing.T) {
	globalConfig = nil
	initOnce = *new(sync.Once)

	defer func() {
		if recover() == nil {
			t.Error("expected MustGetConfig to panic when uninitialized")
		}
	}()
	MustGetConfig()
}

func TestGetConfig_ConcurrentAccess(t *testing.T) {
	globalConfig = nil
	initOnce = *new(sync.Once)

	SetConfig(DefaultConfig())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if cfg := GetConfig(); cfg == nil {
					t.Error("GetConfig returned nil during concurrent access")
					return
				}
			}
		}()
	}
	wg.Wait()
}
