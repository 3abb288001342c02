package markdown

import (
	"html"
	"strings"
)

// tags whose end (or self-closing occurrence) forces a line break in
// the flattened text
var blockBreakTags = map[string]bool{
	"p": true, "div": true, "li": true, "br": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true,
}

// Flatten strips markup from HTML and returns the plain-text rendering
// used for search indexing and title derivation. Block-level elements
// become line breaks so line-oriented consumers keep their structure.
// The result is never used to reconstruct markup.
func Flatten(htmlSrc string) string {
	var out strings.Builder
	var tag strings.Builder
	inTag := false

	for _, r := range htmlSrc {
		switch {
		case r == '<':
			inTag = true
			tag.Reset()
		case r == '>' && inTag:
			inTag = false
			if name := tagName(tag.String()); blockBreakTags[name] {
				out.WriteByte('\n')
			}
		case inTag:
			tag.WriteRune(r)
		default:
			out.WriteRune(r)
		}
	}

	text := html.UnescapeString(out.String())

	// Collapse runs of blank lines left by nested block elements.
	lines := strings.Split(text, "\n")
	var kept []string
	blanks := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blanks++
			if blanks > 1 {
				continue
			}
		} else {
			blanks = 0
		}
		kept = append(kept, line)
	}
	return strings.Trim(strings.Join(kept, "\n"), "\n")
}

// tagName extracts the element name from raw tag innards such as
// "/p", "br/" or `a href="x"`.
func tagName(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "/")
	raw = strings.TrimSuffix(raw, "/")
	if i := strings.IndexAny(raw, " \t\n"); i >= 0 {
		raw = raw[:i]
	}
	return strings.ToLower(strings.TrimSpace(raw))
}
