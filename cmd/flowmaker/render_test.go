package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mercator-hq/flowmaker/pkg/cli"
)

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "read.pseudo"), readSrc)

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{name: "file", args: []string{"render", src}, want: readGraph},
		{name: "stdin", stdin: readSrc, args: []string{"render"}, want: readGraph},
		{name: "dash", stdin: readSrc, args: []string{"render", "-"}, want: readGraph},
		{
			name:  "tree diagram",
			stdin: "a\n    b",
			args:  []string{"render", "--mode", "tree_diagram"},
			want:  "graph TD",
		},
		{
			name: "share link",
			args: []string{"render", src, "--share"},
			want: "http://localhost:3000/flowchart?diagram=cmVhZCBu",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, tt.stdin, tt.args...)
			if err != nil {
				t.Fatalf("render failed: %v", err)
			}
			if !strings.Contains(stdout, tt.want) {
				t.Errorf("output = %q, want it to contain %q", stdout, tt.want)
			}
		})
	}
}

func TestRenderJSON(t *testing.T) {
	stdout, _, err := execute(t, readSrc, "render", "-o", "json", "--share")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	var out struct {
		Mode     string `json:"mode"`
		Graph    string `json:"graph"`
		Nodes    int    `json:"graph_nodes"`
		ShareURL string `json:"share_url"`
	}
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, stdout)
	}
	if out.Mode != "flowchart" {
		t.Errorf("mode = %q, want flowchart", out.Mode)
	}
	if out.Graph != readGraph {
		t.Errorf("graph = %q, want %q", out.Graph, readGraph)
	}
	if out.Nodes != 3 {
		t.Errorf("graph_nodes = %d, want 3", out.Nodes)
	}
	if out.ShareURL == "" {
		t.Error("share_url should be set")
	}
}

func TestRenderOutFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "read.mmd")

	stdout, _, err := execute(t, readSrc, "render", "--out", out)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want empty", stdout)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if string(data) != readGraph {
		t.Errorf("output file = %q, want %q", data, readGraph)
	}
}

func TestRenderCompileError(t *testing.T) {
	stdout, stderr, err := execute(t, badSrc, "render")
	if err == nil {
		t.Fatal("expected compile error")
	}
	if code := cli.ExitCode(err); code != cli.ExitFailure {
		t.Errorf("exit code = %d, want %d", code, cli.ExitFailure)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want no partial output", stdout)
	}
	for _, want := range []string{"[illegal_quote_character]", "--> line 2"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr missing %q:\n%s", want, stderr)
		}
	}
}

func TestRenderConfigErrors(t *testing.T) {
	dir := t.TempDir()
	invalid := writeFile(t, filepath.Join(dir, "invalid.yaml"), "render:\n  default_mode: sequence\n")

	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown output format", args: []string{"render", "-o", "xml"}},
		{name: "missing config file", args: []string{"render", "--config", filepath.Join(dir, "missing.yaml")}},
		{name: "invalid config", args: []string{"render", "--config", invalid}},
		{name: "invalid log level", args: []string{"render", "--log-level", "loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, readSrc, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if code := cli.ExitCode(err); code != cli.ExitConfig {
				t.Errorf("exit code = %d, want %d (err: %v)", code, cli.ExitConfig, err)
			}
		})
	}
}
