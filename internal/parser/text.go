package parser

import (
	"io"
	"strings"

	"github.com/dgallion1/quizgest/internal/document"
)

// TextParser handles plain text files. Form feeds separate pages, which is
// how pdftotext and most print-to-text tools mark page breaks.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc := &document.Document{Title: titleFromFilename(filename, ".txt")}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return doc, nil
	}
	pages := splitPages(text)
	for _, page := range pages {
		doc.AddPage(page)
	}
	doc.Paginated = len(pages) > 1
	return doc, nil
}
