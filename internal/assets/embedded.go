package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed templates/*.yaml
var templates embed.FS

//go:embed fonts
var fonts embed.FS

// EmbeddedLoader loads the starter templates compiled into the binary.
// Implements Loader interface.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadTemplate loads a template's YAML from embedded assets by name.
func (e *EmbeddedLoader) LoadTemplate(name string) ([]byte, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}

	content, err := templates.ReadFile(path.Join(templatesDir, name+templateExt))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}

	return content, nil
}

// TemplateNames lists the embedded template names.
func (e *EmbeddedLoader) TemplateNames() ([]string, error) {
	entries, err := templates.ReadDir(templatesDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	return templateNames(entries), nil
}

// LoadFonts returns the embedded fonts. The starter set ships none, so
// slides fall back to the browser's fonts unless a custom path adds some.
func (e *EmbeddedLoader) LoadFonts() ([]Font, error) {
	var out []Font
	err := fs.WalkDir(fonts, fontsDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fonts.ReadFile(p)
		if err != nil {
			return err
		}
		if f, ok := newFont(d.Name(), data); ok {
			out = append(out, f)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	return out, nil
}

// templateNames extracts sorted template names from directory entries.
func templateNames(entries []fs.DirEntry) []string {
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), templateExt) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), templateExt)
		if ValidateAssetName(name) == nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Compile-time interface check.
var _ Loader = (*EmbeddedLoader)(nil)
