package assets

// Loader defines the contract for loading slide templates and fonts.
type Loader interface {
	// LoadTemplate returns the raw YAML of a template by name (without .yaml).
	// Returns ErrTemplateNotFound if the template doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadTemplate(name string) ([]byte, error)

	// TemplateNames lists available template names, sorted.
	TemplateNames() ([]string, error)

	// LoadFonts returns every font file the loader knows about.
	LoadFonts() ([]Font, error)
}

// Template and font locations relative to a loader root.
const (
	templatesDir = "templates"
	fontsDir     = "fonts"
	templateExt  = ".yaml"
)
