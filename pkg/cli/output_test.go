package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestTextFormatter(t *testing.T) {
	formatter := &TextFormatter{}

	output, err := formatter.Format("test message")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if string(output) != "test message\n" {
		t.Errorf("Format() = %q, want %q", string(output), "test message\n")
	}

	buf := &bytes.Buffer{}
	if err := formatter.FormatTo(buf, "test message"); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if buf.String() != "test message\n" {
		t.Errorf("FormatTo() = %q, want %q", buf.String(), "test message\n")
	}
}

func TestJSONFormatter(t *testing.T) {
	data := map[string]any{
		"genome": "mus_musculus",
		"phase":  "download",
	}

	t.Run("compact", func(t *testing.T) {
		formatter := &JSONFormatter{Indent: false}
		output, err := formatter.Format(data)
		if err != nil {
			t.Fatalf("Format() error = %v", err)
		}
		var decoded map[string]any
		if err := json.Unmarshal(output, &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded["genome"] != "mus_musculus" {
			t.Errorf("genome = %v, want mus_musculus", decoded["genome"])
		}
	})

	t.Run("indented", func(t *testing.T) {
		formatter := &JSONFormatter{Indent: true}
		output, err := formatter.Format(data)
		if err != nil {
			t.Fatalf("Format() error = %v", err)
		}
		if !strings.Contains(string(output), "\n  ") {
			t.Errorf("indented output has no indentation: %q", string(output))
		}
	})

	t.Run("writer", func(t *testing.T) {
		buf := &bytes.Buffer{}
		formatter := &JSONFormatter{Indent: true}
		if err := formatter.FormatTo(buf, data); err != nil {
			t.Fatalf("FormatTo() error = %v", err)
		}
		var decoded map[string]any
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
	})
}

func TestYAMLFormatter(t *testing.T) {
	data := map[string]any{
		"genome":  "mus_musculus",
		"release": "110",
	}

	formatter := &YAMLFormatter{}
	output, err := formatter.Format(data)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var decoded map[string]any
	if err := yaml.Unmarshal(output, &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if decoded["genome"] != "mus_musculus" {
		t.Errorf("genome = %v, want mus_musculus", decoded["genome"])
	}

	buf := &bytes.Buffer{}
	if err := formatter.FormatTo(buf, data); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if !strings.Contains(buf.String(), "release:") {
		t.Errorf("FormatTo() output = %q, missing release key", buf.String())
	}
}

func TestCSVFormatter(t *testing.T) {
	formatter := &CSVFormatter{Headers: []string{"genome", "phase", "status"}}

	rows := [][]string{
		{"mus_musculus", "download", "ok"},
		{"danio_rerio", "import", "failed"},
	}

	output, err := formatter.Format(rows)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3 (header + 2 rows)", len(lines))
	}
	if lines[0] != "genome,phase,status" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "mus_musculus,download,ok" {
		t.Errorf("row 1 = %q", lines[1])
	}
}

func TestCSVFormatter_SingleRow(t *testing.T) {
	formatter := &CSVFormatter{}

	output, err := formatter.Format([]string{"mus_musculus", "download"})
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if strings.TrimSpace(string(output)) != "mus_musculus,download" {
		t.Errorf("output = %q", string(output))
	}
}

func TestCSVFormatter_QuotesFields(t *testing.T) {
	formatter := &CSVFormatter{}

	output, err := formatter.Format([][]string{{"mus, musculus", "download"}})
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(string(output), `"mus, musculus"`) {
		t.Errorf("comma-bearing field not quoted: %q", string(output))
	}
}

func TestCSVFormatter_RejectsNonTabular(t *testing.T) {
	formatter := &CSVFormatter{}
	if _, err := formatter.Format(map[string]string{"a": "b"}); err == nil {
		t.Error("Format() accepted non-tabular data")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"json", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"csv", FormatCSV, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON).(*JSONFormatter); !ok {
		t.Error("NewFormatter(json) did not return a JSONFormatter")
	}
	if _, ok := NewFormatter(FormatYAML).(*YAMLFormatter); !ok {
		t.Error("NewFormatter(yaml) did not return a YAMLFormatter")
	}
	if _, ok := NewFormatter(FormatCSV).(*CSVFormatter); !ok {
		t.Error("NewFormatter(csv) did not return a CSVFormatter")
	}
	if _, ok := NewFormatter(FormatText).(*TextFormatter); !ok {
		t.Error("NewFormatter(text) did not return a TextFormatter")
	}
	if _, ok := NewFormatter("unknown").(*TextFormatter); !ok {
		t.Error("NewFormatter(unknown) did not fall back to text")
	}
}
