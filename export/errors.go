package export

import (
	"errors"
	"fmt"
)

// ExportError reports a document that could not be rendered into the
// requested format.
type ExportError struct {
	Format  Format
	Message string
	Action  string
	Err     error
}

func (e *ExportError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("export to %s failed: %s. %s", e.Format, e.Message, e.Action)
	}
	return fmt.Sprintf("export to %s failed: %s", e.Format, e.Message)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// NewMalformedContentError reports content that cannot be parsed for
// rendering, typically empty or structurally broken Markdown.
func NewMalformedContentError(format Format, message string, cause error) *ExportError {
	return &ExportError{
		Format:  format,
		Message: message,
		Action:  "Regenerate the document and try the export again",
		Err:     cause,
	}
}

// AsExportError extracts an *ExportError from an error chain.
func AsExportError(err error) (*ExportError, bool) {
	var exportErr *ExportError
	if errors.As(err, &exportErr) {
		return exportErr, true
	}
	return nil, false
}
