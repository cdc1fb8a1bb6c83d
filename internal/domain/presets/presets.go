package presets

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// SceneStyle is a named style descriptor appended to the scene prompt.
type SceneStyle struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// Catalog lists the selectable styles and the example scene prompts.
type Catalog struct {
	Styles   []SceneStyle `json:"styles" yaml:"styles"`
	Examples []string     `json:"examples" yaml:"examples"`
}

// Default returns the built-in catalogue.
func Default() Catalog {
	return Catalog{
		Styles: []SceneStyle{
			{Name: "Minimalist", Description: "in a minimalist style, clean lines, simple background, neutral color palette"},
			{Name: "Bohemian", Description: "in a bohemian style, with natural textures, plants, and warm, earthy tones"},
			{Name: "Industrial", Description: "in an industrial style, with exposed brick, metal accents, and a raw, edgy feel"},
			{Name: "Modern", Description: "in a modern style, sleek surfaces, geometric shapes, and a sophisticated look"},
			{Name: "Vintage", Description: "in a vintage style, with retro patterns, muted colors, and a nostalgic atmosphere"},
			{Name: "Surreal", Description: "in a surreal, dreamlike style, with unexpected elements and a fantasy atmosphere"},
		},
		Examples: []string{
			"on a marble countertop, next to a glass of water, with soft morning light",
			"on a wooden table, surrounded by autumn leaves and acorns",
			"floating in a pool of crystal clear water with ripples",
		},
	}
}

// Load reads a YAML catalogue from path. An empty path yields Default. Sections
// missing from the file keep their built-in values.
func Load(path string) (Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("presets: read %s: %w", path, err)
	}
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Catalog{}, fmt.Errorf("presets: parse %s: %w", path, err)
	}
	def := Default()
	if len(c.Styles) == 0 {
		c.Styles = def.Styles
	}
	if len(c.Examples) == 0 {
		c.Examples = def.Examples
	}
	if err := c.Normalize(); err != nil {
		return Catalog{}, fmt.Errorf("presets: %s: %w", path, err)
	}
	return c, nil
}

// Normalize trims entries, title-cases style names and rejects duplicates.
func (c *Catalog) Normalize() error {
	if c == nil {
		return nil
	}
	title := cases.Title(language.Und)
	seen := make(map[string]struct{}, len(c.Styles))
	styles := c.Styles[:0]
	for _, s := range c.Styles {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			continue
		}
		name = title.String(name)
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate style %q", name)
		}
		seen[key] = struct{}{}
		styles = append(styles, SceneStyle{Name: name, Description: strings.TrimSpace(s.Description)})
	}
	c.Styles = styles

	examples := c.Examples[:0]
	for _, e := range c.Examples {
		if e = strings.TrimSpace(e); e != "" {
			examples = append(examples, e)
		}
	}
	c.Examples = examples
	return nil
}

// Lookup finds a style by name, ignoring case.
func (c Catalog) Lookup(name string) (SceneStyle, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return SceneStyle{}, false
	}
	for _, s := range c.Styles {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return SceneStyle{}, false
}

// Example returns the example prompt at index.
func (c Catalog) Example(index int) (string, bool) {
	if index < 0 || index >= len(c.Examples) {
		return "", false
	}
	return c.Examples[index], true
}

// Compose appends the selected style descriptor to the scene description.
// Unknown or empty style names leave the prompt untouched.
func (c Catalog) Compose(prompt, styleName string) string {
	style, ok := c.Lookup(styleName)
	if !ok {
		return prompt
	}
	return fmt.Sprintf("%s, %s", prompt, style.Description)
}
