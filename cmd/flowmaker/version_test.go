package main

import (
	"encoding/json"
	"runtime"
	"strings"
	"testing"
)

func TestVersionDefaults(t *testing.T) {
	origVersion := Version
	origGitCommit := GitCommit
	origBuildDate := BuildDate
	t.Cleanup(func() {
		Version = origVersion
		GitCommit = origGitCommit
		BuildDate = origBuildDate
	})

	Version = "0.1.0-test"
	GitCommit = "abc123"
	BuildDate = "2026-10-15"

	stdout, _, err := execute(t, "", "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}

	for _, want := range []string{
		"Flowmaker 0.1.0-test",
		"Git Commit: abc123",
		"Build Date: 2026-10-15",
		"Go Version: " + runtime.Version(),
		"OS/Arch: " + runtime.GOOS + "/" + runtime.GOARCH,
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
}

func TestVersionCommandExists(t *testing.T) {
	if versionCmd == nil {
		t.Fatal("versionCmd is nil")
	}

	if versionCmd.Use != "version" {
		t.Errorf("versionCmd.Use = %q, want %q", versionCmd.Use, "version")
	}

	if versionCmd.Short == "" {
		t.Error("versionCmd.Short should not be empty")
	}

	if versionCmd.RunE == nil {
		t.Error("versionCmd.RunE should not be nil")
	}
}

func TestVersionJSON(t *testing.T) {
	stdout, _, err := execute(t, "", "version", "-o", "json")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}

	var out map[string]string
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, stdout)
	}
	if out["version"] != Version {
		t.Errorf("version = %q, want %q", out["version"], Version)
	}
	if out["go_version"] != runtime.Version() {
		t.Errorf("go_version = %q, want %q", out["go_version"], runtime.Version())
	}
}

func TestVersionSkipsConfig(t *testing.T) {
	// A missing config file must not break version.
	if _, _, err := execute(t, "", "version", "--config", "/nonexistent/config.yaml"); err != nil {
		t.Fatalf("version failed: %v", err)
	}
}

func TestCompletion(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			stdout, _, err := execute(t, "", "completion", shell)
			if err != nil {
				t.Fatalf("completion %s failed: %v", shell, err)
			}
			if !strings.Contains(stdout, "flowmaker") {
				t.Errorf("completion script does not mention flowmaker")
			}
		})
	}

	if _, _, err := execute(t, "", "completion", "tcsh"); err == nil {
		t.Error("expected error for unsupported shell")
	}
}
