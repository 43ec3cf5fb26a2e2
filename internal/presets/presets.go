// Package presets loads the catalog of person and clothing images offered in
// the picker.
package presets

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/lehigh-university-libraries/tryon/internal/imagedata"
	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var defaultCatalog []byte

type Catalog struct {
	Person  []string `yaml:"person" json:"person"`
	Clothes []string `yaml:"clothes" json:"clothes"`
}

// Load reads the catalog at path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Parse(defaultCatalog)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse presets: %w", err)
	}

	for _, list := range [][]string{c.Person, c.Clothes} {
		for _, ref := range list {
			img := imagedata.Image(strings.TrimSpace(ref))
			if !img.IsRemote() && !img.IsEmbedded() {
				return nil, fmt.Errorf("invalid preset image %q: must be an http(s) or data URL", ref)
			}
		}
	}

	return &c, nil
}

func (c *Catalog) PersonImages() []imagedata.Image {
	return toImages(c.Person)
}

func (c *Catalog) ClothesImages() []imagedata.Image {
	return toImages(c.Clothes)
}

func toImages(refs []string) []imagedata.Image {
	out := make([]imagedata.Image, 0, len(refs))
	for _, ref := range refs {
		out = append(out, imagedata.Image(strings.TrimSpace(ref)))
	}
	return out
}

// HasPerson reports whether ref is one of the person presets.
func (c *Catalog) HasPerson(ref string) bool {
	return contains(c.Person, ref)
}

// HasClothes reports whether ref is one of the clothing presets.
func (c *Catalog) HasClothes(ref string) bool {
	return contains(c.Clothes, ref)
}

func contains(refs []string, ref string) bool {
	for _, r := range refs {
		if strings.TrimSpace(r) == ref {
			return true
		}
	}
	return false
}
