package assets

import (
	"path/filepath"
	"strings"
)

// Font is one font file ready to be inlined as an @font-face rule.
type Font struct {
	Family string // file name without extension
	Format string // CSS format() hint
	Mime   string
	Data   []byte
}

type fontKind struct {
	format string
	mime   string
}

var fontKinds = map[string]fontKind{
	".woff2": {"woff2", "font/woff2"},
	".woff":  {"woff", "font/woff"},
	".ttf":   {"truetype", "font/ttf"},
	".otf":   {"opentype", "font/otf"},
}

// newFont builds a Font from a file name, reporting false for unsupported
// extensions.
func newFont(fileName string, data []byte) (Font, bool) {
	ext := strings.ToLower(filepath.Ext(fileName))
	kind, ok := fontKinds[ext]
	if !ok {
		return Font{}, false
	}
	return Font{
		Family: strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName)),
		Format: kind.format,
		Mime:   kind.mime,
		Data:   data,
	}, true
}
