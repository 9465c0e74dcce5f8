package slidecast

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/alnah/go-slidecast/internal/assets"
	"github.com/alnah/go-slidecast/internal/yamlutil"
)

// TemplateStore looks templates up by ID or name.
// Implementations return an error wrapping ErrTemplateNotFound when the
// reference matches nothing.
type TemplateStore interface {
	Template(ctx context.Context, ref TemplateRef) (*Template, error)
}

// TemplateLister is implemented by stores that can enumerate templates.
type TemplateLister interface {
	Templates(ctx context.Context) ([]Template, error)
}

// Compile-time interface checks
var (
	_ TemplateStore  = (*MemoryStore)(nil)
	_ TemplateLister = (*MemoryStore)(nil)
	_ TemplateStore  = (*AssetStore)(nil)
	_ TemplateLister = (*AssetStore)(nil)
)

// MemoryStore holds templates in memory. Safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[string]Template
	byName map[string]Template
}

// NewMemoryStore creates a store holding templates.
// Returns an error if any template is invalid.
func NewMemoryStore(templates ...Template) (*MemoryStore, error) {
	s := &MemoryStore{
		byID:   make(map[string]Template, len(templates)),
		byName: make(map[string]Template, len(templates)),
	}
	for _, t := range templates {
		if err := s.Put(t); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Put adds or replaces t.
func (s *MemoryStore) Put(t Template) error {
	if err := t.Validate(); err != nil {
		return err
	}
	t.Fields = append([]Field(nil), t.Fields...)

	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID != "" {
		s.byID[t.ID] = t
	}
	if t.Name != "" {
		s.byName[t.Name] = t
	}
	return nil
}

// Template implements TemplateStore.
func (s *MemoryStore) Template(ctx context.Context, ref TemplateRef) (*Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		t  Template
		ok bool
	)
	if ref.ID != "" {
		t, ok = s.byID[ref.ID]
	} else {
		t, ok = s.byName[ref.Name]
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, ref)
	}
	t.Fields = append([]Field(nil), t.Fields...)
	return &t, nil
}

// Templates implements TemplateLister, sorted by name then ID.
func (s *MemoryStore) Templates(ctx context.Context) ([]Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	type key struct{ id, name string }
	seen := make(map[key]bool, len(s.byName)+len(s.byID))
	out := make([]Template, 0, len(s.byName)+len(s.byID))
	for _, m := range []map[string]Template{s.byName, s.byID} {
		for _, t := range m {
			k := key{t.ID, t.Name}
			if seen[k] {
				continue
			}
			seen[k] = true
			t.Fields = append([]Field(nil), t.Fields...)
			out = append(out, t)
		}
	}
	s.mu.RUnlock()

	sortTemplates(out)
	return out, nil
}

// AssetStore serves YAML templates from the embedded starter set and an
// optional directory that overrides it (templates/<name>.yaml).
type AssetStore struct {
	loader assets.Loader
}

// NewAssetStore creates a store over basePath. An empty basePath serves
// the embedded templates only.
func NewAssetStore(basePath string) (*AssetStore, error) {
	resolver, err := assets.NewResolver(basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	}
	return newAssetStore(resolver), nil
}

func newAssetStore(loader assets.Loader) *AssetStore {
	return &AssetStore{loader: loader}
}

// Template implements TemplateStore. Lookup by name reads one file;
// lookup by ID scans every template.
func (s *AssetStore) Template(ctx context.Context, ref TemplateRef) (*Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if ref.ID == "" {
		return s.load(ref.Name)
	}

	names, err := s.loader.TemplateNames()
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := s.load(name)
		if err != nil {
			return nil, err
		}
		if t.ID == ref.ID {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, ref)
}

// Templates implements TemplateLister.
func (s *AssetStore) Templates(ctx context.Context) ([]Template, error) {
	names, err := s.loader.TemplateNames()
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	out := make([]Template, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := s.load(name)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	sortTemplates(out)
	return out, nil
}

// Names lists the template names without decoding them.
func (s *AssetStore) Names() ([]string, error) {
	return s.loader.TemplateNames()
}

// load reads and decodes one template file. A template without a name
// takes its file name.
func (s *AssetStore) load(name string) (*Template, error) {
	data, err := s.loader.LoadTemplate(name)
	if err != nil {
		if errors.Is(err, assets.ErrTemplateNotFound) || errors.Is(err, assets.ErrInvalidAssetName) {
			return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
		}
		return nil, fmt.Errorf("loading template %q: %w", name, err)
	}

	var t Template
	if err := yamlutil.UnmarshalStrict(data, &t); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTemplate, name, err)
	}
	if t.Name == "" {
		t.Name = name
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func sortTemplates(ts []Template) {
	sort.Slice(ts, func(i, j int) bool {
		if ts[i].Name != ts[j].Name {
			return ts[i].Name < ts[j].Name
		}
		return ts[i].ID < ts[j].ID
	})
}
