package export

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

// Heading sizes in points, indexed by level-1.
var pdfHeadingSizes = []float64{18, 16, 14, 13, 12, 12}

const (
	pdfBodySize   = 11.0
	pdfLineHeight = 6.0
	pdfCellPad    = 2.0
)

// RenderPDF writes the document as a PDF file. The Markdown body is parsed
// into blocks and laid out with a page footer carrying provenance.
func RenderPDF(w io.Writer, doc Document) error {
	blocks, err := ParseBlocks([]byte(doc.Content))
	if err != nil {
		return NewMalformedContentError(FormatPDF, "content cannot be parsed", err)
	}
	if len(blocks) == 0 {
		return NewMalformedContentError(FormatPDF, "content produced no renderable blocks", nil)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 25)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	footerText := fmt.Sprintf("Generated by %s on %s",
		GeneratorName, doc.GeneratedAt.UTC().Format(time.RFC3339))
	pdf.SetFooterFunc(func() {
		pdf.SetY(-18)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 5, tr(footerText), "", 1, "C", false, 0, "")
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.MultiCell(0, 9, tr(doc.Title), "", "L", false)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.MultiCell(0, 5, tr(docxProvenance(doc)), "", "L", false)
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	for _, block := range blocks {
		writePDFBlock(pdf, tr, block)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func writePDFBlock(pdf *fpdf.Fpdf, tr func(string) string, block Block) {
	switch block.Kind {
	case BlockHeading:
		level := block.Level
		if level < 1 {
			level = 1
		}
		if level > len(pdfHeadingSizes) {
			level = len(pdfHeadingSizes)
		}
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", pdfHeadingSizes[level-1])
		pdf.MultiCell(0, pdfLineHeight+1, tr(block.PlainText()), "", "L", false)
		pdf.Ln(1)

	case BlockParagraph:
		writePDFSpans(pdf, tr, block.Spans, 0)
		pdf.Ln(2)

	case BlockListItem:
		indent := float64(block.Depth) * 6
		marker := "- "
		if block.Ordered {
			marker = fmt.Sprintf("%d. ", block.Index)
		}
		pdf.SetX(pdf.GetX() + indent)
		pdf.SetFont("Helvetica", "", pdfBodySize)
		pdf.MultiCell(0, pdfLineHeight, tr(marker+block.PlainText()), "", "L", false)

	case BlockTable:
		writePDFTable(pdf, tr, block.Rows)
		pdf.Ln(2)

	case BlockCode:
		pdf.SetFont("Courier", "", 9)
		pdf.SetFillColor(245, 245, 245)
		pdf.MultiCell(0, 5, tr(block.Literal), "", "L", true)
		pdf.SetFillColor(255, 255, 255)
		pdf.Ln(2)

	case BlockRule:
		x, y := pdf.GetXY()
		pageWidth, _ := pdf.GetPageSize()
		pdf.SetDrawColor(200, 200, 200)
		pdf.Line(x, y+2, pageWidth-20, y+2)
		pdf.SetDrawColor(0, 0, 0)
		pdf.Ln(5)
	}
}

// writePDFSpans renders styled inline runs. fpdf writes runs with Write so
// bold and italic stretches stay on the same line flow.
func writePDFSpans(pdf *fpdf.Fpdf, tr func(string) string, spans []Span, indent float64) {
	if indent > 0 {
		pdf.SetX(pdf.GetX() + indent)
	}
	for _, span := range spans {
		style := ""
		if span.Bold {
			style += "B"
		}
		if span.Italic {
			style += "I"
		}
		family := "Helvetica"
		if span.Code {
			family = "Courier"
		}
		pdf.SetFont(family, style, pdfBodySize)
		pdf.Write(pdfLineHeight, tr(span.Text))
	}
	pdf.Ln(pdfLineHeight)
}

func writePDFTable(pdf *fpdf.Fpdf, tr func(string) string, rows [][]string) {
	if len(rows) == 0 {
		return
	}
	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if cols == 0 {
		return
	}

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colWidth := (pageWidth - left - right) / float64(cols)

	for r, row := range rows {
		style := ""
		fill := false
		if r == 0 {
			style = "B"
			fill = true
			pdf.SetFillColor(235, 235, 235)
		}
		pdf.SetFont("Helvetica", style, 9)

		// Row height grows with the tallest wrapped cell.
		height := pdfLineHeight
		for c := 0; c < cols; c++ {
			text := ""
			if c < len(row) {
				text = row[c]
			}
			lines := pdf.SplitText(tr(text), colWidth-2*pdfCellPad)
			if h := float64(len(lines)) * 4.5; h+2 > height {
				height = h + 2
			}
		}

		x, y := pdf.GetXY()
		for c := 0; c < cols; c++ {
			text := ""
			if c < len(row) {
				text = row[c]
			}
			cellX := x + float64(c)*colWidth
			if fill {
				pdf.Rect(cellX, y, colWidth, height, "FD")
			} else {
				pdf.Rect(cellX, y, colWidth, height, "D")
			}
			pdf.SetXY(cellX+pdfCellPad, y+1)
			pdf.MultiCell(colWidth-2*pdfCellPad, 4.5, tr(text), "", "L", false)
		}
		pdf.SetXY(x, y+height)
	}
	pdf.SetFillColor(255, 255, 255)
}
