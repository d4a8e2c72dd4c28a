package pseudo

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	pseudoErrors "mercator-hq/flowmaker/pkg/pseudo/errors"
)

func TestCompile(t *testing.T) {
	got, err := Compile("read n\nwhile (n > 0) {\nn = n - 1\n}\nprint done")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	want := strings.Join([]string{
		"flowchart TD",
		`id0["Start"]`,
		"id0-->id1",
		`id1["read n"]`,
		"id1-->id2",
		`id2{"n > 0"}`,
		"id2-- No -->id4",
		"id2-- Yes -->id3",
		`id3["n = n - 1"]`,
		"id3-->id2",
		`id4["print done"]`,
		"id4--->id5",
		`id5["End"]`,
	}, "\n") + "\n"

	if got != want {
		t.Errorf("Compile() =\n%s\nwant\n%s", got, want)
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantErr error
		wantMsg string
	}{
		{
			name:    "quote",
			source:  "a\nsay \"hi\"",
			wantErr: pseudoErrors.ErrIllegalQuoteCharacter,
			wantMsg: `Illegal quote character: " on line 1.`,
		},
		{
			name:    "unclosed block",
			source:  "if (x) {\na",
			wantErr: pseudoErrors.ErrMismatchedClosingBrace,
			wantMsg: `Mismatched closing "}" on line 1`,
		},
		{
			name:    "stray brace",
			source:  "a\n}",
			wantErr: pseudoErrors.ErrMismatchedOpeningBrace,
			wantMsg: `Mismatched opening "{" on line 1`,
		},
		{
			name:    "empty loop",
			source:  "while (x) {\n}",
			wantErr: pseudoErrors.ErrEmptyLoop,
			wantMsg: "Error: Empty loop.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Compile(tt.source)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Compile() error = %v, want %v", err, tt.wantErr)
			}
			if out != "" {
				t.Errorf("Compile() output = %q, want none", out)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestCompileOutput_Stats(t *testing.T) {
	out, err := CompileOutput("if (a) {\nwhile (b) {\nc\n}\n} else {\nd\n}")
	if err != nil {
		t.Fatalf("CompileOutput() error = %v", err)
	}

	if out.Stats.Nodes != 6 {
		t.Errorf("Stats.Nodes = %d, want 6", out.Stats.Nodes)
	}
	if out.Stats.Conditions != 1 || out.Stats.Loops != 1 {
		t.Errorf("Stats = %+v, want 1 condition and 1 loop", out.Stats)
	}
	if out.Stats.Statements != 4 {
		t.Errorf("Stats.Statements = %d, want 4", out.Stats.Statements)
	}
	if out.Stats.MaxDepth != 2 {
		t.Errorf("Stats.MaxDepth = %d, want 2", out.Stats.MaxDepth)
	}
	if out.Nodes != out.Stats.Nodes {
		t.Errorf("graph Nodes = %d, want %d", out.Nodes, out.Stats.Nodes)
	}
}

func TestCompile_Reentrant(t *testing.T) {
	source := "if (a) {\nb\n} else if (c) {\nd\n}"
	first, err := Compile(source)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	done := make(chan string, 8)
	for i := 0; i < cap(done); i++ {
		go func() {
			out, _ := Compile(source)
			done <- out
		}()
	}
	for i := 0; i < cap(done); i++ {
		if got := <-done; got != first {
			t.Errorf("concurrent Compile() = %q, want %q", got, first)
		}
	}
}

func TestCompileFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.txt")
	if err := os.WriteFile(path, []byte("a\nb"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	out, err := CompileFile(path)
	if err != nil {
		t.Fatalf("CompileFile() error = %v", err)
	}
	if !strings.HasPrefix(out.Graph, "flowchart TD\n") {
		t.Errorf("Graph = %q, want flowchart header", out.Graph)
	}

	if _, err := CompileFile(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("CompileFile() on missing file succeeded")
	}
}
