package pdfprocessor

import (
	"errors"
	"fmt"
)

// ExtractionKind classifies extraction failures.
type ExtractionKind int

const (
	// KindTooLarge means the upload exceeds the hard size cap.
	KindTooLarge ExtractionKind = iota
	// KindNoExtractableText means the PDF parsed but yielded no usable text,
	// typically a scanned/image-only document.
	KindNoExtractableText
	// KindCorrupted means the bytes could not be parsed as a PDF.
	KindCorrupted
	// KindPasswordProtected means the PDF is encrypted and cannot be read.
	KindPasswordProtected
)

// String returns the stable name of the extraction failure kind.
func (k ExtractionKind) String() string {
	switch k {
	case KindTooLarge:
		return "TooLarge"
	case KindNoExtractableText:
		return "NoExtractableText"
	case KindCorrupted:
		return "Corrupted"
	case KindPasswordProtected:
		return "PasswordProtected"
	default:
		return "Unknown"
	}
}

// ExtractionError is a typed extraction failure with an actionable
// remediation hint. Extraction errors are terminal for the current upload;
// the user must supply a different file.
type ExtractionError struct {
	Kind    ExtractionKind
	Message string
	Action  string
	Err     error // underlying cause, may be nil
}

func (e *ExtractionError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// NewTooLargeError reports an upload above the hard cap.
func NewTooLargeError(size, limit int64) *ExtractionError {
	return &ExtractionError{
		Kind:    KindTooLarge,
		Message: fmt.Sprintf("PDF is %d bytes, above the %d byte limit", size, limit),
		Action:  "Upload a smaller file or split the book into parts",
	}
}

// NewNoExtractableTextError reports a PDF with no usable text layer.
func NewNoExtractableTextError() *ExtractionError {
	return &ExtractionError{
		Kind:    KindNoExtractableText,
		Message: "No extractable text found in PDF",
		Action:  "The file is likely scanned or image-based. Run OCR on it first, then upload the result",
	}
}

// NewCorruptedError reports bytes that do not parse as a PDF.
func NewCorruptedError(cause error) *ExtractionError {
	return &ExtractionError{
		Kind:    KindCorrupted,
		Message: "PDF could not be parsed",
		Action:  "Re-export the PDF from its source and upload it again",
		Err:     cause,
	}
}

// NewPasswordProtectedError reports an encrypted PDF.
func NewPasswordProtectedError(cause error) *ExtractionError {
	return &ExtractionError{
		Kind:    KindPasswordProtected,
		Message: "PDF is password protected",
		Action:  "Remove the password from the PDF and upload it again",
		Err:     cause,
	}
}

// AsExtractionError extracts an *ExtractionError from an error chain.
func AsExtractionError(err error) (*ExtractionError, bool) {
	var extractionErr *ExtractionError
	if errors.As(err, &extractionErr) {
		return extractionErr, true
	}
	return nil, false
}
