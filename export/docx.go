package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fumiama/go-docx"
)

// Heading sizes in half-points, indexed by level-1. Word renders sizes as
// half-points, so "32" is 16pt.
var docxHeadingSizes = []string{"36", "32", "28", "26", "24", "24"}

// RenderDocx writes the document as a Word file. The Markdown body is
// parsed into blocks and rendered with native Word paragraphs and tables.
func RenderDocx(w io.Writer, doc Document) error {
	blocks, err := ParseBlocks([]byte(doc.Content))
	if err != nil {
		return NewMalformedContentError(FormatDocx, "content cannot be parsed", err)
	}
	if len(blocks) == 0 {
		return NewMalformedContentError(FormatDocx, "content produced no renderable blocks", nil)
	}

	file := docx.New().WithDefaultTheme()

	title := file.AddParagraph()
	title.AddText(doc.Title).Size("40").Bold()

	subtitle := file.AddParagraph()
	subtitle.AddText(docxProvenance(doc)).Size("18").Color("666666")
	file.AddParagraph() // spacer

	for _, block := range blocks {
		if err := writeDocxBlock(file, block); err != nil {
			return err
		}
	}

	footer := file.AddParagraph()
	footer.AddText(fmt.Sprintf("Generated by %s on %s",
		GeneratorName, doc.GeneratedAt.UTC().Format(time.RFC3339))).
		Size("16").Color("999999")

	if _, err := file.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

func writeDocxBlock(file *docx.Docx, block Block) error {
	switch block.Kind {
	case BlockHeading:
		para := file.AddParagraph()
		level := block.Level
		if level < 1 {
			level = 1
		}
		if level > len(docxHeadingSizes) {
			level = len(docxHeadingSizes)
		}
		para.AddText(block.PlainText()).Size(docxHeadingSizes[level-1]).Bold()

	case BlockParagraph:
		para := file.AddParagraph()
		writeDocxSpans(para, block.Spans)

	case BlockListItem:
		para := file.AddParagraph()
		indent := strings.Repeat("    ", block.Depth)
		marker := "• "
		if block.Ordered {
			marker = fmt.Sprintf("%d. ", block.Index)
		}
		para.AddText(indent + marker)
		writeDocxSpans(para, block.Spans)

	case BlockTable:
		if len(block.Rows) == 0 {
			return nil
		}
		writeDocxTable(file, block.Rows)

	case BlockCode:
		para := file.AddParagraph()
		para.AddText(block.Literal).Size("18")

	case BlockRule:
		para := file.AddParagraph()
		para.AddText(strings.Repeat("—", 20)).Color("CCCCCC")
	}
	return nil
}

func writeDocxSpans(para *docx.Paragraph, spans []Span) {
	for _, span := range spans {
		run := para.AddText(span.Text)
		if span.Bold {
			run.Bold()
		}
		if span.Italic {
			run.Italic()
		}
	}
}

func writeDocxTable(file *docx.Docx, rows [][]string) {
	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	table := file.AddTable(len(rows), cols, 0, nil)
	for r, row := range rows {
		for c := 0; c < cols && r < len(table.TableRows); c++ {
			cell := table.TableRows[r].TableCells[c]
			text := ""
			if c < len(row) {
				text = row[c]
			}
			run := cell.AddParagraph().AddText(text)
			if r == 0 {
				run.Bold()
			}
		}
	}
}

func docxProvenance(doc Document) string {
	parts := []string{doc.GeneratedAt.UTC().Format("2006-01-02 15:04 MST")}
	if doc.Source != "" {
		parts = append(parts, "Source: "+doc.Source)
	}
	return strings.Join(parts, "  |  ")
}
