package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// frontMatter is the YAML header prepended to Markdown exports.
type frontMatter struct {
	Title     string `yaml:"title"`
	Source    string `yaml:"source,omitempty"`
	Generated string `yaml:"generated"`
	Generator string `yaml:"generator"`
}

// RenderMarkdown writes the document as Markdown with a YAML front-matter
// header carrying provenance.
func RenderMarkdown(w io.Writer, doc Document) error {
	header, err := yaml.Marshal(frontMatter{
		Title:     doc.Title,
		Source:    doc.Source,
		Generated: doc.GeneratedAt.UTC().Format(time.RFC3339),
		Generator: GeneratorName,
	})
	if err != nil {
		return NewMalformedContentError(FormatMarkdown, "front matter cannot be serialized", err)
	}

	if _, err := fmt.Fprintf(w, "---\n%s---\n\n", header); err != nil {
		return err
	}
	content := strings.TrimSpace(doc.Content)
	if _, err := io.WriteString(w, content); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}
