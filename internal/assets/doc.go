// Package assets provides slide templates and fonts for rendering.
// Assets can be loaded from embedded files or a custom filesystem path.
//
// # Loader Architecture
//
//	Loader (interface)
//	    │
//	    ├── EmbeddedLoader    - starter templates compiled into the binary
//	    ├── FilesystemLoader  - templates and fonts from a directory on disk
//	    └── Resolver          - custom-first lookup with embedded fallback
//
// # Directory Structure
//
//	{basePath}/
//	├── templates/
//	│   └── {name}.yaml      # template record (markup, fields, size)
//	└── fonts/
//	    └── {family}.woff2   # .woff2, .woff, .ttf or .otf
//
// Templates are returned as raw YAML; decoding belongs to the caller.
//
// # Security
//
// Asset names are validated to prevent path traversal. FilesystemLoader
// resolves symlinks and verifies paths stay within basePath.
package assets
