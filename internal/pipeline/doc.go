// Package pipeline implements the text stages that run before rasterization.
//
// This package handles:
//   - placeholder substitution ({{name}} and {{name|default}}) into markup and styling
//   - wrapping substituted markup in a fixed-size document shell
//   - inlining bundled fonts as @font-face data URLs
//   - resolving relative asset references in authored markup to file:// URLs
//
// Rasterization is handled separately by the root slidecast package using
// headless Chrome (go-rod). Everything here is string and markup work with
// no file I/O.
package pipeline
