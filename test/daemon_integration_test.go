//go:build integration

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestDaemonStartStop tests daemon startup, the ops endpoints, and
// graceful shutdown
func TestDaemonStartStop(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	tmpDir := t.TempDir()
	binaryPath := buildMgvBinary(t)

	specFile := filepath.Join(tmpDir, "genomes.yaml")
	writeTestFile(t, specFile, validSpec)
	configFile := writeTestConfig(t, tmpDir, specFile, "127.0.0.1:18099")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, binaryPath, "run", "--config", configFile)
	cmd.Dir = tmpDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		t.Fatalf("failed to start daemon: %v", err)
	}
	defer func() {
		if cmd.Process != nil {
			cmd.Process.Kill()
		}
	}()

	base := "http://127.0.0.1:18099"
	if !waitForHealthy(base+"/healthz", 10*time.Second) {
		t.Fatalf("daemon failed to start\nStdout: %s\nStderr: %s", stdout.String(), stderr.String())
	}

	// Readiness requires an installed plan; the valid spec resolves at
	// startup, so it should follow promptly.
	if !waitForHealthy(base+"/readyz", 5*time.Second) {
		t.Fatalf("daemon never became ready\nStdout: %s\nStderr: %s", stdout.String(), stderr.String())
	}

	// The plan endpoint serves the resolved plan
	resp, err := http.Get(base + "/plan")
	if err != nil {
		t.Fatalf("plan request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("plan status = %d, want 200\n%s", resp.StatusCode, body)
	}
	var planDoc struct {
		Genomes []map[string]any `json:"genomes"`
	}
	if err := json.Unmarshal(body, &planDoc); err != nil {
		t.Fatalf("plan response did not parse: %v\n%s", err, body)
	}
	if len(planDoc.Genomes) != 2 {
		t.Errorf("plan genomes = %d, want 2", len(planDoc.Genomes))
	}

	// Version endpoint
	resp, err = http.Get(base + "/version")
	if err != nil {
		t.Fatalf("version request failed: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("version status = %d, want 200", resp.StatusCode)
	}
	if !bytes.Contains(body, []byte("version")) {
		t.Errorf("version response missing version field: %s", body)
	}

	// Graceful shutdown on SIGINT
	if err := cmd.Process.Signal(os.Interrupt); err != nil {
		t.Errorf("failed to send SIGINT: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case err := <-done:
		// Clean exit expected; 130 tolerated if the signal lands
		// before the handler installs.
		if err != nil {
			exitErr, ok := err.(*exec.ExitError)
			if !ok || exitErr.ExitCode() != 130 {
				t.Logf("shutdown output - Stdout: %s\nStderr: %s", stdout.String(), stderr.String())
				t.Errorf("unexpected shutdown error: %v", err)
			}
		}
	case <-time.After(5 * time.Second):
		t.Error("daemon did not shut down within 5 seconds")
	}
}

// TestDaemonDryRun tests the configuration check mode
func TestDaemonDryRun(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	tmpDir := t.TempDir()
	binaryPath := buildMgvBinary(t)

	specFile := filepath.Join(tmpDir, "genomes.yaml")
	writeTestFile(t, specFile, validSpec)
	configFile := writeTestConfig(t, tmpDir, specFile, "127.0.0.1:18100")

	output, err := exec.Command(binaryPath, "run", "--dry-run", "--config", configFile).CombinedOutput()
	if err != nil {
		t.Fatalf("run --dry-run failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(string(output), "Configuration valid") {
		t.Errorf("dry-run output missing config marker:\n%s", output)
	}
	if !strings.Contains(string(output), "Spec resolves") {
		t.Errorf("dry-run output missing resolution marker:\n%s", output)
	}
}

// TestDaemonBadSpecStaysUp verifies a broken spec does not kill the
// daemon: it starts degraded and reports not-ready until a fix lands.
func TestDaemonBadSpecStaysUp(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	tmpDir := t.TempDir()
	binaryPath := buildMgvBinary(t)

	specFile := filepath.Join(tmpDir, "genomes.yaml")
	writeTestFile(t, specFile, invalidSpec)
	configFile := writeTestConfig(t, tmpDir, specFile, "127.0.0.1:18101")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, binaryPath, "run", "--config", configFile)
	cmd.Dir = tmpDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		t.Fatalf("failed to start daemon: %v", err)
	}
	defer func() {
		if cmd.Process != nil {
			cmd.Process.Kill()
		}
	}()

	base := "http://127.0.0.1:18101"
	if !waitForHealthy(base+"/healthz", 10*time.Second) {
		t.Fatalf("daemon failed to start\nStdout: %s\nStderr: %s", stdout.String(), stderr.String())
	}

	// Liveness yes, readiness no: no plan ever resolved.
	resp, err := http.Get(base + "/readyz")
	if err != nil {
		t.Fatalf("readyz request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		t.Error("daemon reports ready with no resolvable spec")
	}

	cmd.Process.Signal(os.Interrupt)
	cmd.Wait()
}

// waitForHealthy polls url until it returns 200 or the timeout passes
func waitForHealthy(url string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	client := &http.Client{Timeout: 1 * time.Second}

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return true
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	return false
}
