// Package normalize turns a parsed document into cleaned text: repeated
// page headers and footers are removed, short lines are dropped, and the
// remaining lines are joined into paragraphs, one per page.
package normalize

import (
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/dgallion1/quizgest/internal/document"
)

// DefaultMinLineLength is the shortest line, in runes, that survives cleaning.
const DefaultMinLineLength = 20

// Options controls cleaning.
type Options struct {
	MinLineLength int // 0 keeps every non-empty line
}

// DefaultOptions returns the baseline cleaning options.
func DefaultOptions() Options {
	return Options{MinLineLength: DefaultMinLineLength}
}

// Clean picks the cleaning rule for doc. Paginated documents go through
// Normalize so running headers and footers are dropped; everything else is
// cleaned as plain paragraphs with CleanText, one paragraph per section.
func Clean(doc *document.Document, opts Options) string {
	if doc == nil {
		return ""
	}
	if doc.Paginated {
		return Normalize(doc, opts)
	}
	return CleanText(doc.Text(), opts)
}

// Normalize cleans doc into a single string. Lines of a page are joined
// with single spaces and pages with a blank line. A nil or empty document
// yields "".
func Normalize(doc *document.Document, opts Options) string {
	if doc == nil || len(doc.Pages) == 0 {
		return ""
	}
	pages := canonicalPages(doc)
	boiler := repeated(pages)

	var out []string
	for _, lines := range pages {
		var kept []string
		for _, l := range lines {
			if l == "" || boiler[l] {
				continue
			}
			if utf8.RuneCountInString(l) < opts.MinLineLength {
				continue
			}
			kept = append(kept, l)
		}
		if len(kept) > 0 {
			out = append(out, strings.Join(kept, " "))
		}
	}
	return strings.Join(out, "\n\n")
}

// CleanText cleans unpaginated text such as a pasted passage. Blank lines
// separate paragraphs; there are no pages, so nothing counts as a repeated
// header or footer.
func CleanText(text string, opts Options) string {
	var out, para []string
	flush := func() {
		if len(para) > 0 {
			out = append(out, strings.Join(para, " "))
			para = nil
		}
	}
	for _, raw := range document.SplitLines(text) {
		l := CanonicalLine(raw)
		if l == "" {
			flush()
			continue
		}
		if utf8.RuneCountInString(l) >= opts.MinLineLength {
			para = append(para, l)
		}
	}
	flush()
	return strings.Join(out, "\n\n")
}

// Boilerplate returns the lines Normalize would strip as repeated headers
// or footers, sorted.
func Boilerplate(doc *document.Document) []string {
	if doc == nil {
		return nil
	}
	set := repeated(canonicalPages(doc))
	out := make([]string, 0, len(set))
	for l := range set {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// CanonicalLine applies NFKC, which unfolds PDF ligatures such as "ﬁ",
// and collapses runs of whitespace.
func CanonicalLine(s string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}

func canonicalPages(doc *document.Document) [][]string {
	pages := make([][]string, len(doc.Pages))
	for i, p := range doc.Pages {
		lines := make([]string, len(p.Lines))
		for j, l := range p.Lines {
			lines[j] = CanonicalLine(l)
		}
		pages[i] = lines
	}
	return pages
}

// repeated finds first/last lines appearing on strictly more than half
// of all pages, empty pages included.
func repeated(pages [][]string) map[string]bool {
	counts := make(map[string]int)
	for _, lines := range pages {
		first, last := edges(lines)
		if first == "" {
			continue
		}
		counts[first]++
		if last != first {
			counts[last]++
		}
	}
	out := make(map[string]bool)
	for l, n := range counts {
		if n*2 > len(pages) {
			out[l] = true
		}
	}
	return out
}

func edges(lines []string) (first, last string) {
	for _, l := range lines {
		if l != "" {
			first = l
			break
		}
	}
	for i := len(lines) - 1; i >= 0; i-- {
		if lines[i] != "" {
			last = lines[i]
			break
		}
	}
	return first, last
}
