package assets

import (
	"errors"
	"sort"
)

// Resolver combines custom and embedded loaders with fallback logic.
// When a custom loader is configured, it tries custom first, then falls back
// to embedded if the template is not found in the custom location.
type Resolver struct {
	custom   Loader // nil if no custom path configured
	embedded Loader
}

// NewResolver creates a Resolver.
// If customBasePath is empty, only embedded assets are used.
// Returns error if customBasePath is set but invalid.
func NewResolver(customBasePath string) (*Resolver, error) {
	resolver := &Resolver{
		embedded: NewEmbeddedLoader(),
	}

	if customBasePath != "" {
		fsLoader, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		resolver.custom = fsLoader
	}

	return resolver, nil
}

// LoadTemplate loads a template, trying the custom loader first.
func (r *Resolver) LoadTemplate(name string) ([]byte, error) {
	if r.custom == nil {
		return r.embedded.LoadTemplate(name)
	}

	content, err := r.custom.LoadTemplate(name)
	if err == nil {
		return content, nil
	}

	// Only fall back for "not found", not validation or I/O errors.
	if !errors.Is(err, ErrTemplateNotFound) {
		return nil, err
	}

	return r.embedded.LoadTemplate(name)
}

// TemplateNames returns the union of custom and embedded names, sorted.
func (r *Resolver) TemplateNames() ([]string, error) {
	names, err := r.embedded.TemplateNames()
	if err != nil {
		return nil, err
	}
	if r.custom == nil {
		return names, nil
	}

	custom, err := r.custom.TemplateNames()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(names)+len(custom))
	merged := make([]string, 0, len(names)+len(custom))
	for _, n := range append(custom, names...) {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		merged = append(merged, n)
	}
	sort.Strings(merged)
	return merged, nil
}

// LoadFonts returns custom fonts followed by embedded fonts whose family
// is not already provided by the custom set.
func (r *Resolver) LoadFonts() ([]Font, error) {
	embedded, err := r.embedded.LoadFonts()
	if err != nil {
		return nil, err
	}
	if r.custom == nil {
		return embedded, nil
	}

	custom, err := r.custom.LoadFonts()
	if err != nil {
		return nil, err
	}

	families := make(map[string]struct{}, len(custom))
	for _, f := range custom {
		families[f.Family] = struct{}{}
	}
	out := custom
	for _, f := range embedded {
		if _, ok := families[f.Family]; !ok {
			out = append(out, f)
		}
	}
	return out, nil
}

// HasCustomLoader returns true if a custom asset loader is configured.
func (r *Resolver) HasCustomLoader() bool {
	return r.custom != nil
}

// Compile-time interface check.
var _ Loader = (*Resolver)(nil)
