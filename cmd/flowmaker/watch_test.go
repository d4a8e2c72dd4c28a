package main

import (
	"os"
	"path/filepath"
	"testing"

	"mercator-hq/flowmaker/pkg/cli"
)

func TestWatchOnce(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	writeFile(t, filepath.Join(dir, "read.pseudo"), readSrc)

	if _, _, err := execute(t, "", "watch", dir, "--once", "--out-dir", out); err != nil {
		t.Fatalf("watch --once failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(out, "read.mmd"))
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if string(data) != readGraph {
		t.Errorf("output = %q, want %q", data, readGraph)
	}
}

func TestWatchOnceKeepsOutputOnError(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "algo.pseudo"), readSrc)

	if _, _, err := execute(t, "", "watch", dir, "--once"); err != nil {
		t.Fatalf("watch --once failed: %v", err)
	}

	writeFile(t, src, badSrc)
	_, _, err := execute(t, "", "watch", dir, "--once")
	if code := cli.ExitCode(err); code != cli.ExitFailure {
		t.Errorf("exit code = %d, want %d", code, cli.ExitFailure)
	}

	data, err := os.ReadFile(filepath.Join(dir, "algo.mmd"))
	if err != nil {
		t.Fatalf("previous output missing: %v", err)
	}
	if string(data) != readGraph {
		t.Errorf("output = %q, want previous graph", data)
	}
}
