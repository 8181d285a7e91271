package export

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// BlockKind classifies a parsed Markdown block.
type BlockKind int

const (
	BlockHeading BlockKind = iota
	BlockParagraph
	BlockListItem
	BlockTable
	BlockCode
	BlockRule
)

// Span is a run of inline text with uniform styling.
type Span struct {
	Text   string
	Bold   bool
	Italic bool
	Code   bool
}

// Block is one renderable unit of a parsed document. Word and PDF renderers
// consume these instead of walking the Markdown AST themselves.
type Block struct {
	Kind BlockKind

	// Level is the heading level for BlockHeading.
	Level int

	// Ordered and Index describe BlockListItem numbering; Depth is the
	// nesting level, zero for top-level items.
	Ordered bool
	Index   int
	Depth   int

	// Spans is the inline content for headings, paragraphs, and list
	// items.
	Spans []Span

	// Rows holds table content for BlockTable, header row first.
	Rows [][]string

	// Literal is the raw text of BlockCode.
	Literal string
}

// PlainText flattens the block's spans into one string.
func (b Block) PlainText() string {
	var sb strings.Builder
	for _, span := range b.Spans {
		sb.WriteString(span.Text)
	}
	return sb.String()
}

// ParseBlocks parses Markdown (with table support) into a flat block list.
func ParseBlocks(source []byte) ([]Block, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(text.NewReader(source))

	var blocks []Block
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		blocks = append(blocks, parseNode(node, source, 0)...)
	}
	return blocks, nil
}

func parseNode(node ast.Node, source []byte, depth int) []Block {
	switch n := node.(type) {
	case *ast.Heading:
		return []Block{{
			Kind:  BlockHeading,
			Level: n.Level,
			Spans: collectSpans(n, source),
		}}

	case *ast.Paragraph, *ast.TextBlock:
		spans := collectSpans(node, source)
		if len(spans) == 0 {
			return nil
		}
		return []Block{{Kind: BlockParagraph, Spans: spans}}

	case *ast.List:
		return parseList(n, source, depth)

	case *ast.FencedCodeBlock:
		return []Block{{Kind: BlockCode, Literal: codeLines(n, source)}}

	case *ast.CodeBlock:
		return []Block{{Kind: BlockCode, Literal: codeLines(n, source)}}

	case *ast.ThematicBreak:
		return []Block{{Kind: BlockRule}}

	case *ast.Blockquote:
		var blocks []Block
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			blocks = append(blocks, parseNode(child, source, depth)...)
		}
		return blocks

	case *extast.Table:
		return []Block{parseTable(n, source)}

	default:
		// Unknown block types degrade to plain paragraphs rather than
		// being dropped.
		spans := collectSpans(node, source)
		if len(spans) == 0 {
			return nil
		}
		return []Block{{Kind: BlockParagraph, Spans: spans}}
	}
}

func parseList(list *ast.List, source []byte, depth int) []Block {
	var blocks []Block
	index := list.Start
	if index == 0 {
		index = 1
	}
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		var nested []Block
		var spans []Span
		for child := item.FirstChild(); child != nil; child = child.NextSibling() {
			if sub, ok := child.(*ast.List); ok {
				nested = append(nested, parseList(sub, source, depth+1)...)
				continue
			}
			spans = append(spans, collectSpans(child, source)...)
		}
		if len(spans) > 0 {
			blocks = append(blocks, Block{
				Kind:    BlockListItem,
				Ordered: list.IsOrdered(),
				Index:   index,
				Depth:   depth,
				Spans:   spans,
			})
		}
		blocks = append(blocks, nested...)
		index++
	}
	return blocks
}

func parseTable(table *extast.Table, source []byte) Block {
	var rows [][]string
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			var sb strings.Builder
			for _, span := range collectSpans(cell, source) {
				sb.WriteString(span.Text)
			}
			cells = append(cells, strings.TrimSpace(sb.String()))
		}
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	}
	return Block{Kind: BlockTable, Rows: rows}
}

// collectSpans flattens the inline children of a block node into styled
// spans, merging nested emphasis.
func collectSpans(node ast.Node, source []byte) []Span {
	var spans []Span
	walkInline(node, source, Span{}, &spans)
	return spans
}

func walkInline(node ast.Node, source []byte, style Span, out *[]Span) {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Text:
			segment := n.Segment
			appendSpan(out, style, string(segment.Value(source)))
			if n.SoftLineBreak() || n.HardLineBreak() {
				appendSpan(out, style, " ")
			}

		case *ast.Emphasis:
			nested := style
			if n.Level >= 2 {
				nested.Bold = true
			} else {
				nested.Italic = true
			}
			walkInline(n, source, nested, out)

		case *ast.CodeSpan:
			nested := style
			nested.Code = true
			walkInline(n, source, nested, out)

		case *ast.Link:
			walkInline(n, source, style, out)

		case *ast.AutoLink:
			appendSpan(out, style, string(n.URL(source)))

		case *ast.Image:
			// Images have no place in a text export; the alt text is
			// kept.
			walkInline(n, source, style, out)

		default:
			walkInline(child, source, style, out)
		}
	}
}

func appendSpan(out *[]Span, style Span, textValue string) {
	if textValue == "" {
		return
	}
	if n := len(*out); n > 0 {
		last := &(*out)[n-1]
		if last.Bold == style.Bold && last.Italic == style.Italic && last.Code == style.Code {
			last.Text += textValue
			return
		}
	}
	style.Text = textValue
	*out = append(*out, style)
}

func codeLines(node ast.Node, source []byte) string {
	var sb strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		sb.Write(segment.Value(source))
	}
	return strings.TrimRight(sb.String(), "\n")
}
