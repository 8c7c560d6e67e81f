package document

import "strings"

// Document is a parsed source file as an ordered list of pages.
type Document struct {
	Title string // Document title (from metadata or filename)
	Pages []Page

	// Paginated is set when Pages are real printed pages, so lines that
	// repeat at the same position are running headers or footers. Sections
	// of markdown, html, docx and csv files are not paginated.
	Paginated bool
}

// Page is one page (or section, for formats without pagination).
type Page struct {
	Number int      // 1-based page/section number
	Lines  []string // Lines in reading order; may be empty
}

// AddPage appends a page built from raw text, splitting it into lines.
// Empty text still produces a page so page counts stay faithful.
func (d *Document) AddPage(text string) {
	d.Pages = append(d.Pages, Page{
		Number: len(d.Pages) + 1,
		Lines:  SplitLines(text),
	})
}

// Empty reports whether no page holds any non-blank line.
func (d *Document) Empty() bool {
	for _, p := range d.Pages {
		for _, l := range p.Lines {
			if strings.TrimSpace(l) != "" {
				return false
			}
		}
	}
	return true
}

// Text joins all pages, one line per line and a blank line between pages.
func (d *Document) Text() string {
	var sb strings.Builder
	for i, p := range d.Pages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(strings.Join(p.Lines, "\n"))
	}
	return sb.String()
}

// SplitLines splits text on newlines and carriage returns.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
