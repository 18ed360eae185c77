package prompts

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestExtractVariables(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"no vars", nil},
		{"{{.Schema}}", []string{"Schema"}},
		{"{{ .B }} {{.A}} {{.B}}", []string{"A", "B"}},
		{"{{.Report.Number}}", []string{"Report.Number"}},
	}
	for _, tt := range tests {
		if got := ExtractVariables(tt.text); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ExtractVariables(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestResolver(t *testing.T) {
	r := NewResolver(nil)
	r.Register(EmbeddedPrompt{Key: "b.key", Text: "hello {{.Schema}}"})
	r.Register(EmbeddedPrompt{Key: "a.key", Text: "plain"})

	got, err := r.Resolve("b.key")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.IsOverride || got.Source != SourceEmbedded || got.Hash != HashText("hello {{.Schema}}") {
		t.Errorf("unexpected embedded resolution: %+v", got)
	}
	if !reflect.DeepEqual(got.Variables, []string{"Schema"}) {
		t.Errorf("Variables = %v", got.Variables)
	}

	if _, err := r.Resolve("missing"); err == nil {
		t.Error("expected error for unknown key")
	}

	all := r.AllEmbedded()
	if len(all) != 2 || all[0].Key != "a.key" {
		t.Errorf("AllEmbedded() = %+v", all)
	}
}

func TestResolver_Override(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.tmpl")
	bad := filepath.Join(dir, "bad.tmpl")
	if err := os.WriteFile(good, []byte("custom {{.Schema}}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("custom {{.Unknown}}"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewResolver(nil)
	r.Register(EmbeddedPrompt{Key: "k", Text: "{{.Schema}}"})

	r.SetOverride("k", good)
	got, err := r.Resolve("k")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !got.IsOverride || got.Source != good || got.Text != "custom {{.Schema}}" {
		t.Errorf("unexpected override resolution: %+v", got)
	}

	r.SetOverride("k", bad)
	if _, err := r.Resolve("k"); err == nil {
		t.Error("expected error for unknown variable")
	}

	r.SetOverride("k", filepath.Join(dir, "missing.tmpl"))
	if _, err := r.Resolve("k"); err == nil {
		t.Error("expected error for missing override file")
	}

	r.SetOverride("k", "")
	if got, err := r.Resolve("k"); err != nil || got.IsOverride {
		t.Errorf("override not cleared: %+v, %v", got, err)
	}
}
