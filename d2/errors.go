package d2

import (
	"errors"
	"fmt"
)

// Kinds of load failures. Every error returned by Parse wraps exactly one of these,
// so clients may test with errors.Is.
var (
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrCorruptHeader         = errors.New("corrupt header")
	ErrCorruptDescriptor     = errors.New("corrupt descriptor")
	ErrIntegrity             = errors.New("integrity check failed")
	ErrInvalidTableReference = errors.New("invalid table reference")
)

// FormatError represents an error encountered during font parsing.
// Parsing stops at the first FormatError; no partial font is ever returned.
type FormatError struct {
	Kind    error  // one of the Err… kinds above
	Table   Tag    // the sub-table where the error occurred (e.g., "CMAP"), if any
	Section string // specific section within the table (e.g., "Range 3")
	Issue   string // human-readable description of the issue
	Offset  uint32 // absolute byte offset in the font binary where the error occurred (0 if unknown)
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	kind := "UNKNOWN"
	if e.Kind != nil {
		kind = e.Kind.Error()
	}
	if e.Offset > 0 {
		return fmt.Sprintf("[%s] %s/%s at offset %d: %s", kind, e.Table, e.Section, e.Offset, e.Issue)
	}
	return fmt.Sprintf("[%s] %s/%s: %s", kind, e.Table, e.Section, e.Issue)
}

// Unwrap returns the error kind.
func (e *FormatError) Unwrap() error {
	return e.Kind
}

func formatError(kind error, table Tag, section, issue string, offset int) error {
	if offset < 0 {
		offset = 0
	}
	err := &FormatError{
		Kind:    kind,
		Table:   table,
		Section: section,
		Issue:   issue,
		Offset:  uint32(offset),
	}
	tracer().Errorf("%v", err)
	return err
}

// Warning represents a non-critical issue encountered during font parsing.
// Warnings indicate features of a font this package will not interpret, but
// do not prevent font usage.
type Warning struct {
	Table  Tag    // The sub-table where the warning occurred
	Issue  string // Human-readable description of the warning
	Offset uint32 // Byte offset in the font binary where the warning occurred (0 if unknown)
}

// String returns a human-readable representation of the warning.
func (w Warning) String() string {
	if w.Offset > 0 {
		return fmt.Sprintf("[WARNING] %s at offset %d: %s", w.Table, w.Offset, w.Issue)
	}
	return fmt.Sprintf("[WARNING] %s: %s", w.Table, w.Issue)
}

// warningCollector accumulates warnings during font parsing.
type warningCollector struct {
	warnings []Warning
}

func (wc *warningCollector) addWarning(table Tag, issue string, offset int) {
	tracer().Infof("%s: %s", table, issue)
	wc.warnings = append(wc.warnings, Warning{
		Table:  table,
		Issue:  issue,
		Offset: uint32(offset),
	})
}
