// Package normalize converts raw agenda page markup into the ordered
// sequence of non-empty, whitespace-collapsed text lines the parser
// consumes.
package normalize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockSelector lists the elements whose end should break a text line, the
// same boundaries a browser renders as line breaks on the agenda page.
const blockSelector = "br, p, div, li, h1, h2, h3, h4, tr, td, th"

// Lines strips the markup down to text and returns one entry per rendered
// line. Scripts and styles are removed entirely; entities are decoded by
// the HTML parser. Empty lines and lines starting with one of
// garbagePrefixes are dropped.
func Lines(html string, garbagePrefixes []string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	doc.Find("script, style, noscript").Remove()
	doc.Find(blockSelector).AfterHtml("\n")

	text := strings.ReplaceAll(doc.Text(), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := make([]string, 0, 64)
	for _, raw := range strings.Split(text, "\n") {
		line := CleanSpaces(raw)
		if line == "" || hasGarbagePrefix(line, garbagePrefixes) {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// CleanSpaces replaces NBSP with a plain space, squeezes whitespace runs
// to single spaces and trims.
func CleanSpaces(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

func hasGarbagePrefix(line string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}
