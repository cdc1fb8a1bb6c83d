package presets

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	if len(c.Styles) != 6 {
		t.Fatalf("len(Styles) = %d, want 6", len(c.Styles))
	}
	if len(c.Examples) != 3 {
		t.Fatalf("len(Examples) = %d, want 3", len(c.Examples))
	}
}

func TestLookupIgnoresCase(t *testing.T) {
	c := Default()
	s, ok := c.Lookup("  modern ")
	if !ok {
		t.Fatal("Lookup(modern) not found")
	}
	if s.Name != "Modern" {
		t.Fatalf("Name = %q, want %q", s.Name, "Modern")
	}
	if _, ok := c.Lookup("baroque"); ok {
		t.Fatal("Lookup(baroque) should miss")
	}
	if _, ok := c.Lookup(""); ok {
		t.Fatal("Lookup(\"\") should miss")
	}
}

func TestCompose(t *testing.T) {
	c := Default()
	tests := []struct {
		name   string
		prompt string
		style  string
		want   string
	}{
		{name: "no style", prompt: "on a table", style: "", want: "on a table"},
		{name: "unknown style", prompt: "on a table", style: "Baroque", want: "on a table"},
		{
			name:   "modern",
			prompt: "on a table",
			style:  "Modern",
			want:   "on a table, in a modern style, sleek surfaces, geometric shapes, and a sophisticated look",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.Compose(tc.prompt, tc.style); got != tc.want {
				t.Fatalf("Compose() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestExampleBounds(t *testing.T) {
	c := Default()
	if _, ok := c.Example(-1); ok {
		t.Fatal("Example(-1) should miss")
	}
	if _, ok := c.Example(len(c.Examples)); ok {
		t.Fatal("Example(len) should miss")
	}
	if got, ok := c.Example(2); !ok || got != "floating in a pool of crystal clear water with ripples" {
		t.Fatalf("Example(2) = %q, %v", got, ok)
	}
}

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(c.Styles) != len(Default().Styles) {
		t.Fatalf("len(Styles) = %d, want %d", len(c.Styles), len(Default().Styles))
	}
}

func TestLoadYAMLOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "presets.yaml")
	content := `styles:
  - name: "  coastal "
    description: "by the sea, airy light, pale blues"
  - name: rustic
    description: "rough timber and linen"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write presets: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(c.Styles) != 2 || c.Styles[0].Name != "Coastal" || c.Styles[1].Name != "Rustic" {
		t.Fatalf("Styles = %+v", c.Styles)
	}
	if len(c.Examples) != len(Default().Examples) {
		t.Fatalf("examples should fall back to defaults, got %d", len(c.Examples))
	}
}

func TestLoadRejectsDuplicateStyles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "presets.yaml")
	content := "styles:\n  - name: Modern\n    description: a\n  - name: modern\n    description: b\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write presets: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load should reject duplicate style names")
	}
}
