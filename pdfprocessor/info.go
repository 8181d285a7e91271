package pdfprocessor

import (
	"bytes"

	"github.com/ledongthuc/pdf"
)

// InfoSamplePages is how many leading pages the probe inspects for text.
const InfoSamplePages = 5

// Info contains a cheap pre-extraction probe of an uploaded PDF, used by the
// upload boundary to warn about scanned documents before the full extraction
// pass runs.
type Info struct {
	// Pages is the page count reported by the PDF
	Pages int

	// HasText is true when the sampled pages carry a usable text layer
	HasText bool

	// EstimatedWords extrapolates the sampled word count to the whole file
	EstimatedWords int
}

// Probe inspects the first few pages of a PDF without running a full
// extraction. Probe failures are reported through the same taxonomy as
// Extract.
func (e *Extractor) Probe(data []byte) (info *Info, err error) {
	size := int64(len(data))
	if size > e.config.MaxFileSize {
		return nil, NewTooLargeError(size, e.config.MaxFileSize)
	}
	if size == 0 {
		return nil, NewNoExtractableTextError()
	}

	defer func() {
		if r := recover(); r != nil {
			info = nil
			err = NewCorruptedError(nil)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), size)
	if err != nil {
		return nil, classifyOpenError(err)
	}

	info = &Info{Pages: reader.NumPage()}

	sample := InfoSamplePages
	if info.Pages < sample {
		sample = info.Pages
	}

	sampleWords := 0
	sampleChars := 0
	for pageIndex := 1; pageIndex <= sample; pageIndex++ {
		p := reader.Page(pageIndex)
		if p.V.IsNull() {
			continue
		}
		text, pageErr := p.GetPlainText(nil)
		if pageErr != nil {
			continue
		}
		sampleWords += CountWords(text)
		sampleChars += CountNonWhitespace(text)
	}

	info.HasText = sampleChars > e.config.MinExtractableChars
	if sample > 0 {
		info.EstimatedWords = sampleWords * info.Pages / sample
	}
	return info, nil
}
