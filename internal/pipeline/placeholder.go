package pipeline

import "regexp"

// placeholderPattern matches {{name}} and {{name|default}}.
// Names are word characters only; the default runs up to the closing braces.
var placeholderPattern = regexp.MustCompile(`\{\{(\w+)(?:\|([^}]*))?\}\}`)

// Substitute replaces every {{name}} or {{name|default}} placeholder in text.
//
// A value that is present and non-empty wins. An absent or empty value falls
// back to the inline default when one is given, otherwise to "". Text is
// consumed verbatim: nothing is escaped, and malformed placeholders are left
// untouched.
func Substitute(text string, values map[string]string) string {
	if text == "" {
		return text
	}

	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := placeholderPattern.FindStringSubmatch(match)
		name, fallback := groups[1], groups[2]

		if v, ok := values[name]; ok && v != "" {
			return v
		}
		// Present-but-empty and absent both fall through to the inline default.
		return fallback
	})
}

// Placeholders returns the distinct placeholder names in text, in order of
// first appearance.
func Placeholders(text string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(text, -1)
	seen := make(map[string]bool, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		names = append(names, m[1])
	}
	return names
}
