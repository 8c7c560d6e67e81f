package parser

import (
	"strings"

	"github.com/dgallion1/quizgest/internal/document"
)

// sectionPager turns heading-structured formats into pages: every heading
// closes the running section, and each section becomes one page.
type sectionPager struct {
	doc     *document.Document
	current []string
}

func newSectionPager(title string) *sectionPager {
	return &sectionPager{doc: &document.Document{Title: title}}
}

// addText appends a block of text to the running section, one line per line.
func (s *sectionPager) addText(text string) {
	for _, line := range document.SplitLines(text) {
		if line = strings.TrimSpace(line); line != "" {
			s.current = append(s.current, line)
		}
	}
}

// flush closes the running section. Sections with no text are skipped.
func (s *sectionPager) flush() {
	if len(s.current) == 0 {
		return
	}
	s.doc.Pages = append(s.doc.Pages, document.Page{
		Number: len(s.doc.Pages) + 1,
		Lines:  s.current,
	})
	s.current = nil
}

func (s *sectionPager) finish() *document.Document {
	s.flush()
	return s.doc
}
