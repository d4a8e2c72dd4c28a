package main

import (
	"encoding/json"
	"strings"
	"testing"

	"mercator-hq/flowmaker/pkg/cli"
)

func TestDiagramLifecycle(t *testing.T) {
	cfg := writeConfig(t, t.TempDir())

	// save
	stdout, _, err := execute(t, readSrc, "diagram", "save", "lesson-1", "--config", cfg, "-o", "json")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	var saved DiagramView
	if err := json.Unmarshal([]byte(stdout), &saved); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, stdout)
	}
	if saved.Diagram == nil || saved.ID == "" {
		t.Fatalf("saved diagram has no id: %s", stdout)
	}
	if saved.Graph != readGraph {
		t.Errorf("graph = %q, want %q", saved.Graph, readGraph)
	}
	if !strings.HasSuffix(saved.ShareURL, "/flowchart?diagram=cmVhZCBu") {
		t.Errorf("share_url = %q", saved.ShareURL)
	}

	// resave keeps the id
	stdout, _, err = execute(t, "read m", "diagram", "save", "lesson-1", "--config", cfg, "-o", "json")
	if err != nil {
		t.Fatalf("resave failed: %v", err)
	}
	var resaved DiagramView
	if err := json.Unmarshal([]byte(stdout), &resaved); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if resaved.ID != saved.ID {
		t.Errorf("resave id = %q, want %q", resaved.ID, saved.ID)
	}

	// get by id and by activity
	stdout, _, err = execute(t, "", "diagram", "get", saved.ID, "--config", cfg)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !strings.Contains(stdout, "Activity: lesson-1") || !strings.Contains(stdout, `id1["read m"]`) {
		t.Errorf("unexpected get output:\n%s", stdout)
	}
	if _, _, err := execute(t, "", "diagram", "get", "--activity", "lesson-1", "--config", cfg); err != nil {
		t.Errorf("get --activity failed: %v", err)
	}

	// list
	if _, _, err := execute(t, "a\n    b", "diagram", "save", "lesson-2", "--mode", "tree_diagram", "--config", cfg); err != nil {
		t.Fatalf("save lesson-2 failed: %v", err)
	}
	stdout, _, err = execute(t, "", "diagram", "list", "--config", cfg, "-o", "json")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	var list DiagramList
	if err := json.Unmarshal([]byte(stdout), &list); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if list.Total != 2 || len(list.Diagrams) != 2 {
		t.Errorf("list = %d of %d, want 2 of 2", len(list.Diagrams), list.Total)
	}

	stdout, _, err = execute(t, "", "diagram", "list", "--mode", "tree_diagram", "--config", cfg)
	if err != nil {
		t.Fatalf("list --mode failed: %v", err)
	}
	if !strings.Contains(stdout, "lesson-2") || strings.Contains(stdout, "lesson-1") {
		t.Errorf("unexpected filtered list:\n%s", stdout)
	}

	// delete
	if _, _, err := execute(t, "", "diagram", "delete", saved.ID, "--config", cfg); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, _, err := execute(t, "", "diagram", "get", saved.ID, "--config", cfg); err == nil {
		t.Error("expected get after delete to fail")
	}
	if _, _, err := execute(t, "", "diagram", "delete", saved.ID, "--config", cfg); err == nil {
		t.Error("expected second delete to fail")
	}
}

func TestDiagramSaveRejectsCompileErrors(t *testing.T) {
	cfg := writeConfig(t, t.TempDir())

	_, stderr, err := execute(t, badSrc, "diagram", "save", "lesson-1", "--config", cfg)
	if err == nil {
		t.Fatal("expected save to fail")
	}
	if !strings.Contains(stderr, "--> line 2") {
		t.Errorf("stderr missing compile error detail:\n%s", stderr)
	}

	stdout, _, err := execute(t, "", "diagram", "list", "--config", cfg, "-o", "json")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	var list DiagramList
	if err := json.Unmarshal([]byte(stdout), &list); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if list.Total != 0 {
		t.Errorf("total = %d, want 0", list.Total)
	}
}

func TestDiagramFlagValidation(t *testing.T) {
	cfg := writeConfig(t, t.TempDir())

	tests := []struct {
		name string
		args []string
	}{
		{name: "get without id or activity", args: []string{"diagram", "get"}},
		{name: "get with id and activity", args: []string{"diagram", "get", "x", "--activity", "y"}},
		{name: "bad sort", args: []string{"diagram", "list", "--sort", "sideways"}},
		{name: "negative limit", args: []string{"diagram", "list", "--limit", "-1"}},
		{name: "bad time", args: []string{"diagram", "list", "--updated-after", "yesterday"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, "", append(tt.args, "--config", cfg)...)
			if code := cli.ExitCode(err); code != cli.ExitConfig {
				t.Errorf("exit code = %d, want %d (err: %v)", code, cli.ExitConfig, err)
			}
		})
	}
}

func TestDiagramShare(t *testing.T) {
	stdout, _, err := execute(t, readSrc, "diagram", "share", "--base", "https://flow.example.com/")
	if err != nil {
		t.Fatalf("share failed: %v", err)
	}
	link := strings.TrimSpace(stdout)
	if link != "https://flow.example.com/?diagram=cmVhZCBu" {
		t.Errorf("link = %q", link)
	}

	stdout, _, err = execute(t, readSrc, "diagram", "share", "--mode", "tree_diagram")
	if err != nil {
		t.Fatalf("share --mode failed: %v", err)
	}
	if !strings.Contains(stdout, "/tree_diagram?diagram=") {
		t.Errorf("link = %q, want mode path", stdout)
	}

	for _, value := range []string{link, "cmVhZCBu"} {
		stdout, _, err = execute(t, "", "diagram", "share", "--decode", value)
		if err != nil {
			t.Fatalf("decode %q failed: %v", value, err)
		}
		if strings.TrimSpace(stdout) != readSrc {
			t.Errorf("decode %q = %q, want %q", value, stdout, readSrc)
		}
	}

	if _, _, err := execute(t, "", "diagram", "share", "--decode", "https://flow.example.com/?other=1"); err == nil {
		t.Error("expected error for a link without a diagram parameter")
	}
}

func TestDiagramPrune(t *testing.T) {
	cfg := writeConfig(t, t.TempDir())

	for _, activity := range []string{"a", "b", "c"} {
		if _, _, err := execute(t, readSrc, "diagram", "save", activity, "--config", cfg); err != nil {
			t.Fatalf("save %s failed: %v", activity, err)
		}
	}

	stdout, _, err := execute(t, "", "diagram", "prune", "--max-records", "1", "--config", cfg, "-o", "json")
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	var out PruneOutput
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if out.Pruned != 2 || out.Remaining != 1 {
		t.Errorf("prune = %+v, want 2 pruned, 1 remaining", out)
	}

	// Retention disabled by default: nothing to prune.
	stdout, _, err = execute(t, "", "diagram", "prune", "--config", cfg)
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if !strings.Contains(stdout, "Pruned 0 diagram(s), 1 remaining") {
		t.Errorf("unexpected output: %q", stdout)
	}
}
