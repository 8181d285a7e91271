// Package pdfprocessor provides PDF text extraction and corpus truncation for
// the foresight pipeline.
//
// extractor.go implements the Extractor that turns an uploaded byte buffer
// into page-ordered text. It uses the ledongthuc/pdf library for parsing and
// composes:
//   - atoms.go: CountNonWhitespace and EstimateTokenCount for quality checks
//   - errors.go: the typed extraction failure taxonomy
package pdfprocessor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PageResult represents extracted text from a single PDF page.
type PageResult struct {
	// PageNumber is the 1-indexed page number
	PageNumber int

	// Text is the extracted text content, whitespace-trimmed
	Text string
}

// ExtractionResult contains the complete result of PDF text extraction.
type ExtractionResult struct {
	// Pages contains per-page extraction results in page order
	Pages []PageResult

	// TotalPages is the number of pages in the PDF
	TotalPages int

	// ExtractedPages is the number of pages that yielded text
	ExtractedPages int

	// WordCount is the total word count across all pages
	WordCount int

	// EstimatedTokens is the estimated total token count
	EstimatedTokens int

	// Warning is set for inputs that were accepted but deserve a caveat,
	// such as files above the soft size cap.
	Warning string
}

// ExtractorConfig holds configuration for PDF text extraction.
type ExtractorConfig struct {
	// MaxFileSize is the hard cap in bytes; larger uploads are rejected.
	MaxFileSize int64

	// SoftFileSize is the soft cap in bytes; larger uploads succeed with a
	// warning attached to the result.
	SoftFileSize int64

	// MinExtractableChars is the minimum non-whitespace character count
	// across all pages. Below it the PDF is treated as image-only.
	MinExtractableChars int
}

// DefaultExtractorConfig returns sensible default configuration.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		MaxFileSize:         100 * 1024 * 1024,
		SoftFileSize:        50 * 1024 * 1024,
		MinExtractableChars: 100,
	}
}

// Extractor extracts text from in-memory PDF bytes. It holds no state beyond
// its configuration; identical bytes always yield identical page texts.
type Extractor struct {
	config ExtractorConfig
}

// NewExtractor creates a new Extractor with the given configuration.
func NewExtractor(config ExtractorConfig) *Extractor {
	if config.MaxFileSize <= 0 {
		config.MaxFileSize = DefaultExtractorConfig().MaxFileSize
	}
	if config.SoftFileSize <= 0 {
		config.SoftFileSize = DefaultExtractorConfig().SoftFileSize
	}
	if config.MinExtractableChars <= 0 {
		config.MinExtractableChars = DefaultExtractorConfig().MinExtractableChars
	}
	return &Extractor{config: config}
}

// NewDefaultExtractor creates an Extractor with default configuration.
func NewDefaultExtractor() *Extractor {
	return NewExtractor(DefaultExtractorConfig())
}

// Extract extracts page-ordered text from an uploaded PDF byte buffer.
// It operates purely on the supplied bytes; nothing is persisted.
//
// Failure modes map to the taxonomy in errors.go: oversized input returns
// TooLarge, undecodable bytes return Corrupted, encrypted files return
// PasswordProtected, and a parseable PDF whose total non-whitespace content
// is below the configured threshold returns NoExtractableText rather than
// succeeding with empty content.
func (e *Extractor) Extract(data []byte) (result *ExtractionResult, err error) {
	size := int64(len(data))
	if size > e.config.MaxFileSize {
		return nil, NewTooLargeError(size, e.config.MaxFileSize)
	}
	if size == 0 {
		return nil, NewNoExtractableTextError()
	}

	// The underlying parser panics on some malformed inputs. Uploads are
	// untrusted, so convert panics into Corrupted.
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = NewCorruptedError(fmt.Errorf("pdf parser panic: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), size)
	if err != nil {
		return nil, classifyOpenError(err)
	}

	totalPages := reader.NumPage()
	result = &ExtractionResult{
		Pages:      make([]PageResult, 0, totalPages),
		TotalPages: totalPages,
	}

	nonWhitespace := 0
	for pageIndex := 1; pageIndex <= totalPages; pageIndex++ {
		p := reader.Page(pageIndex)
		if p.V.IsNull() {
			continue
		}

		text, pageErr := p.GetPlainText(nil)
		if pageErr != nil {
			// A single unreadable page does not fail the book.
			continue
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		result.Pages = append(result.Pages, PageResult{
			PageNumber: pageIndex,
			Text:       text,
		})
		result.ExtractedPages++
		result.WordCount += CountWords(text)
		result.EstimatedTokens += EstimateTokenCount(text)
		nonWhitespace += CountNonWhitespace(text)
	}

	if nonWhitespace < e.config.MinExtractableChars {
		return nil, NewNoExtractableTextError()
	}

	if size > e.config.SoftFileSize {
		result.Warning = fmt.Sprintf("file is %d bytes, above the %d byte soft limit; processing may be slow", size, e.config.SoftFileSize)
	}

	return result, nil
}

// classifyOpenError maps a reader construction failure onto the extraction
// taxonomy. The ledongthuc/pdf library reports encryption in the error text.
func classifyOpenError(err error) *ExtractionError {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "encrypt") || strings.Contains(msg, "password") {
		return NewPasswordProtectedError(err)
	}
	return NewCorruptedError(err)
}

// JoinPages concatenates page texts with "[Page N]" markers, matching the
// layout the analysis prompt expects so chapter references can cite
// locations.
func JoinPages(pages []PageResult) string {
	var builder strings.Builder
	for i, page := range pages {
		if i > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString(fmt.Sprintf("[Page %d]\n", page.PageNumber))
		builder.WriteString(page.Text)
	}
	return builder.String()
}
