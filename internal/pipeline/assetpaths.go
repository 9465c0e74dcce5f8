package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// assetAttrs lists the attributes that load a file into a rendered frame,
// keyed by element.
var assetAttrs = map[atom.Atom][]string{
	atom.Img:    {"src"},
	atom.Image:  {"href", "xlink:href"}, // SVG <image>
	atom.Link:   {"href"},
	atom.Video:  {"poster"},
	atom.Object: {"data"},
}

// ResolveAssetPaths rewrites relative asset references in markup to
// file:// URLs under baseDir, so slide markup authored next to its images
// renders from the workspace. An empty baseDir returns markup unchanged.
//
// URLs, absolute paths, anchors, placeholders and paths escaping baseDir
// are left alone. Scripts are never rewritten.
func ResolveAssetPaths(markup, baseDir string) (string, error) {
	if baseDir == "" || strings.TrimSpace(markup) == "" {
		return markup, nil
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}

	doc, isFragment, err := parseMarkup(markup)
	if err != nil {
		return "", err
	}
	resolveNode(doc, absBase)
	return renderMarkup(doc, isFragment)
}

// parseMarkup parses a full document or a body fragment.
func parseMarkup(content string) (*html.Node, bool, error) {
	head := strings.ToLower(strings.TrimSpace(content))
	if strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, true, err
	}
	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, true, nil
}

// renderMarkup serializes doc. Fragments render their children only, so
// no <html><body> wrapper is added.
func renderMarkup(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder
	if !isFragment {
		if err := html.Render(&buf, doc); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func resolveNode(n *html.Node, baseDir string) {
	if n.Type == html.ElementNode {
		attrs := assetAttrs[n.DataAtom]
		if n.DataAtom == 0 && n.Data == "image" {
			attrs = assetAttrs[atom.Image]
		}
		for i, a := range n.Attr {
			name := a.Key
			if a.Namespace != "" {
				name = a.Namespace + ":" + a.Key
			}
			for _, want := range attrs {
				if name == want {
					n.Attr[i].Val = resolveAsset(a.Val, baseDir)
				}
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		resolveNode(c, baseDir)
	}
}

// resolveAsset returns the file:// URL for a relative ref inside baseDir,
// or ref unchanged.
func resolveAsset(ref, baseDir string) string {
	if !isRelativeRef(ref) {
		return ref
	}
	abs := filepath.Join(baseDir, ref)
	if !isPathUnderDir(abs, baseDir) {
		return ref
	}
	return fileURL(abs)
}

// isRelativeRef reports whether ref is a path relative to the markup.
func isRelativeRef(ref string) bool {
	// Placeholders are substituted after this pass.
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "//") || strings.Contains(ref, "{{") {
		return false
	}
	if u, err := url.Parse(ref); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		return false // http:, https:, file:, data:, ...
	}
	return !filepath.IsAbs(ref) && !strings.HasPrefix(ref, "/")
}

// isPathUnderDir reports whether absPath is dir or inside it.
func isPathUnderDir(absPath, dir string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(absPath))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// fileURL converts an absolute path to a file:// URL, Windows paths included.
func fileURL(absPath string) string {
	p := filepath.ToSlash(absPath)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p // C:/x -> /C:/x
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String()
}
