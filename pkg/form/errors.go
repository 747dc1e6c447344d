package form

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedWorkbook is the sentinel wrapped by MalformedWorkbookError.
var ErrMalformedWorkbook = errors.New("form: malformed workbook")

var errWorkbookNil = errors.New("form: workbook is nil")

// MalformedWorkbookError reports a structural load failure: a required sheet
// or required columns are absent. It aborts the validation run.
type MalformedWorkbookError struct {
	Sheet   string
	Columns []string
}

func (e *MalformedWorkbookError) Error() string {
	if e == nil {
		return ErrMalformedWorkbook.Error()
	}
	if len(e.Columns) == 0 {
		return fmt.Sprintf("form: missing required sheet %q", e.Sheet)
	}
	quoted := make([]string, 0, len(e.Columns))
	for _, column := range e.Columns {
		quoted = append(quoted, fmt.Sprintf("%q", column))
	}
	return fmt.Sprintf("form: missing required column(s) in %s sheet: %s", e.Sheet, strings.Join(quoted, ", "))
}

// Unwrap allows errors.Is(err, ErrMalformedWorkbook).
func (e *MalformedWorkbookError) Unwrap() error {
	return ErrMalformedWorkbook
}
