package quiz

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is an output encoding for a question list.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat resolves a format name. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	}
	return "text/plain; charset=utf-8"
}

// Write encodes questions to w.
func Write(w io.Writer, questions []Question, f Format) error {
	if questions == nil {
		questions = []Question{}
	}
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(questions)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(questions); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatText, "":
		return WriteText(w, questions)
	}
	return fmt.Errorf("unknown format %q", f)
}

// WriteText writes questions as line-delimited text: a "Q:" line, one
// lettered line per option, an "A:" line when the answer is known, and a
// blank line after each question.
func WriteText(w io.Writer, questions []Question) error {
	bw := bufio.NewWriter(w)
	for _, q := range questions {
		fmt.Fprintf(bw, "Q: %s\n", q.Prompt)
		for i, o := range q.Options {
			fmt.Fprintf(bw, "%c) %s\n", 'a'+rune(i), o)
		}
		if q.Answer != "" {
			fmt.Fprintf(bw, "A: %s\n", q.Answer)
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}
