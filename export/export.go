// Package export renders generated Markdown documents into downloadable
// Markdown, Word, and PDF files.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Format identifies a download format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatDocx     Format = "docx"
	FormatPDF      Format = "pdf"
)

// GeneratorName appears in export footers and front matter so downstream
// readers can tell where a file came from.
const GeneratorName = "Foresight Appendix Generator"

// ParseFormat maps a request parameter to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md":
		return FormatMarkdown, nil
	case "docx", "word":
		return FormatDocx, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// MIMEType returns the Content-Type for HTTP downloads of this format.
func (f Format) MIMEType() string {
	switch f {
	case FormatDocx:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/markdown; charset=utf-8"
	}
}

// Extension returns the file extension, dot included.
func (f Format) Extension() string {
	switch f {
	case FormatDocx:
		return ".docx"
	case FormatPDF:
		return ".pdf"
	default:
		return ".md"
	}
}

// Document is one renderable export: a title, provenance metadata, and the
// generated Markdown body.
type Document struct {
	// Title heads the exported file.
	Title string

	// Source names the originating book, for provenance.
	Source string

	// GeneratedAt is when the content was produced.
	GeneratedAt time.Time

	// Content is the Markdown body.
	Content string
}

// Filename builds a safe download filename for the document.
func (d Document) Filename(format Format) string {
	base := strings.TrimSpace(d.Title)
	if base == "" {
		base = "foresight-appendix"
	}
	base = strings.ToLower(base)
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '.':
			b.WriteRune('-')
		}
	}
	name := strings.Trim(b.String(), "-")
	if name == "" {
		name = "foresight-appendix"
	}
	return name + format.Extension()
}

// Render writes the document to w in the requested format.
func Render(w io.Writer, doc Document, format Format) error {
	if strings.TrimSpace(doc.Content) == "" {
		return NewMalformedContentError(format, "document has no content", nil)
	}
	switch format {
	case FormatMarkdown:
		return RenderMarkdown(w, doc)
	case FormatDocx:
		return RenderDocx(w, doc)
	case FormatPDF:
		return RenderPDF(w, doc)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}
