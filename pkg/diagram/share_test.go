package diagram

import (
	"net/url"
	"strings"
	"testing"
)

func TestEncodeShare(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{name: "empty", source: "", want: ""},
		{name: "plain", source: "read n", want: "cmVhZCBu"},
		{name: "padding is escaped", source: "ab", want: "YWI%3D"},
		{name: "plus and slash are escaped", source: "\xfb\xff", want: "%2B%2F8%3D"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncodeShare(tt.source); got != tt.want {
				t.Errorf("EncodeShare(%q) = %q, want %q", tt.source, got, tt.want)
			}
		})
	}
}

func TestDecodeShare(t *testing.T) {
	source := "while (n > 0) {\nn = n - 1\n}\n\xfb\xff"
	encoded := EncodeShare(source)

	raw, err := url.QueryUnescape(encoded)
	if err != nil {
		t.Fatal(err)
	}

	for name, value := range map[string]string{
		"escaped":           encoded,
		"already unescaped": raw,
		"form decoded":      strings.ReplaceAll(raw, "+", " "),
	} {
		t.Run(name, func(t *testing.T) {
			got, err := DecodeShare(value)
			if err != nil {
				t.Fatalf("DecodeShare() error = %v", err)
			}
			if got != source {
				t.Errorf("DecodeShare() = %q, want %q", got, source)
			}
		})
	}

	if _, err := DecodeShare("not base64!"); err == nil {
		t.Error("expected error for invalid value")
	}
}

func TestShareURL(t *testing.T) {
	got, err := ShareURL("http://localhost:3000/flowchart?old=1", "ab")
	if err != nil {
		t.Fatalf("ShareURL() error = %v", err)
	}
	if got != "http://localhost:3000/flowchart?diagram=YWI%3D" {
		t.Errorf("ShareURL() = %q", got)
	}

	u, _ := url.Parse(got)
	decoded, err := DecodeShare(u.Query().Get(ShareParam))
	if err != nil || decoded != "ab" {
		t.Errorf("round trip through query parsing = %q, %v", decoded, err)
	}
}

func TestShareURLForMode(t *testing.T) {
	got, err := ShareURLForMode("http://localhost:3000/", "tree_diagram", "ab")
	if err != nil {
		t.Fatalf("ShareURLForMode() error = %v", err)
	}
	if got != "http://localhost:3000/tree_diagram?diagram=YWI%3D" {
		t.Errorf("ShareURLForMode() = %q", got)
	}

	if _, err := ShareURL("://bad", "a"); err == nil {
		t.Error("expected error for invalid base URL")
	}
}
