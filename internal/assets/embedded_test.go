package assets

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestEmbeddedLoader_LoadTemplate(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()

	tests := []struct {
		name         string
		templateName string
		wantErr      error
		wantContain  string
	}{
		{
			name:         "loads title-card",
			templateName: "title-card",
			wantContain:  "{{title}}",
		},
		{
			name:         "loads quote",
			templateName: "quote",
			wantContain:  "{{author}}",
		},
		{
			name:         "loads caption",
			templateName: "caption",
			wantContain:  "width: 1920",
		},
		{
			name:         "returns ErrTemplateNotFound for nonexistent",
			templateName: "nonexistent-template-xyz",
			wantErr:      ErrTemplateNotFound,
		},
		{
			name:         "returns ErrInvalidAssetName for empty name",
			templateName: "",
			wantErr:      ErrInvalidAssetName,
		},
		{
			name:         "returns ErrInvalidAssetName for traversal",
			templateName: "../embedded",
			wantErr:      ErrInvalidAssetName,
		},
		{
			name:         "returns ErrInvalidAssetName for extension",
			templateName: "quote.yaml",
			wantErr:      ErrInvalidAssetName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := loader.LoadTemplate(tt.templateName)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("LoadTemplate(%q) error = %v, want %v", tt.templateName, err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("LoadTemplate(%q) unexpected error: %v", tt.templateName, err)
			}
			if !strings.Contains(string(got), tt.wantContain) {
				t.Errorf("LoadTemplate(%q) content should contain %q", tt.templateName, tt.wantContain)
			}
		})
	}
}

func TestEmbeddedLoader_TemplateNames(t *testing.T) {
	t.Parallel()

	names, err := NewEmbeddedLoader().TemplateNames()
	if err != nil {
		t.Fatalf("TemplateNames() error = %v", err)
	}

	want := []string{"caption", "quote", "title-card"}
	if !slices.Equal(names, want) {
		t.Errorf("TemplateNames() = %v, want %v", names, want)
	}
}

func TestEmbeddedLoader_LoadFonts(t *testing.T) {
	t.Parallel()

	fonts, err := NewEmbeddedLoader().LoadFonts()
	if err != nil {
		t.Fatalf("LoadFonts() error = %v", err)
	}
	// The fonts directory only carries a README in the starter build.
	if len(fonts) != 0 {
		t.Errorf("LoadFonts() returned %d fonts, want 0", len(fonts))
	}
}

func TestNewFont(t *testing.T) {
	t.Parallel()

	tests := []struct {
		file       string
		wantOK     bool
		wantFamily string
		wantFormat string
		wantMime   string
	}{
		{"Inter.woff2", true, "Inter", "woff2", "font/woff2"},
		{"Inter-Bold.WOFF", true, "Inter-Bold", "woff", "font/woff"},
		{"Roboto.ttf", true, "Roboto", "truetype", "font/ttf"},
		{"Lora.otf", true, "Lora", "opentype", "font/otf"},
		{"README.md", false, "", "", ""},
		{"noext", false, "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			t.Parallel()

			f, ok := newFont(tt.file, []byte{1, 2, 3})
			if ok != tt.wantOK {
				t.Fatalf("newFont(%q) ok = %v, want %v", tt.file, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if f.Family != tt.wantFamily || f.Format != tt.wantFormat || f.Mime != tt.wantMime {
				t.Errorf("newFont(%q) = {%q %q %q}, want {%q %q %q}",
					tt.file, f.Family, f.Format, f.Mime, tt.wantFamily, tt.wantFormat, tt.wantMime)
			}
			if len(f.Data) != 3 {
				t.Errorf("Data length = %d, want 3", len(f.Data))
			}
		})
	}
}
