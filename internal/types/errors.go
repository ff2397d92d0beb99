// =============================================================================
// Purchase Order Builder - Error Taxonomy
// =============================================================================
//
// FATAL:
//   - DataShapeError     : a required column is missing or holds the wrong type
//   - MissingTableError  : neither the preferred sheet nor a fallback exists
//
// RECOVERABLE:
//   - ReferenceLookupWarning : an expansion could not be completed for one line
//
// Fatal errors abort the run and bubble up unchanged. Warnings are recorded in
// the run diagnostics and never change the shape of the output.
//
// =============================================================================

package types

import (
	"fmt"
	"strings"
)

// DataShapeError reports a required column that is missing or holds a value of
// the wrong type.
type DataShapeError struct {
	// Sheet is the sheet the problem was found in.
	Sheet string

	// Row is the 1-based row number, 0 when the problem is not row specific.
	Row int

	// Column is the column header (or a positional description).
	Column string

	// Value is the offending cell value, if any.
	Value string

	// Reason is a short human-readable description.
	Reason string

	// Err is the underlying cause, if any.
	Err error
}

func (e *DataShapeError) Error() string {
	var b strings.Builder
	b.WriteString("data shape error")
	if e.Sheet != "" {
		fmt.Fprintf(&b, " in sheet %q", e.Sheet)
	}
	if e.Row > 0 {
		fmt.Fprintf(&b, " at row %d", e.Row)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " column %q", e.Column)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Value != "" {
		fmt.Fprintf(&b, " (value %q)", e.Value)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *DataShapeError) Unwrap() error {
	return e.Err
}

// MissingTableError reports that no usable sheet could be found in a workbook.
type MissingTableError struct {
	// Workbook is the path of the workbook that was searched.
	Workbook string

	// Wanted is the preferred sheet name.
	Wanted string

	// Available lists the sheets present in the workbook.
	Available []string
}

func (e *MissingTableError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("missing table %q in %s: workbook has no sheets", e.Wanted, e.Workbook)
	}
	return fmt.Sprintf("missing table %q in %s (available: %s)",
		e.Wanted, e.Workbook, strings.Join(e.Available, ", "))
}

// LookupKind classifies a ReferenceLookupWarning.
type LookupKind string

const (
	// AnchorNotFound means no header row matched the line's key and tag.
	AnchorNotFound LookupKind = "anchor_not_found"

	// InsufficientParts means the table ended before all parts were read.
	InsufficientParts LookupKind = "insufficient_parts"
)

// ReferenceLookupWarning describes a degraded expansion for one order line.
type ReferenceLookupWarning struct {
	Kind LookupKind

	// CompositeKey and Tag identify the order line being expanded.
	CompositeKey string
	Tag          string

	// SourceRow is the order sheet row of the line.
	SourceRow int

	// Wanted is the number of parts the tag asked for, Got the number found.
	Wanted int
	Got    int
}

func (w ReferenceLookupWarning) Error() string {
	switch w.Kind {
	case AnchorNotFound:
		return fmt.Sprintf("could not find anchor row for %q with tag %q", w.CompositeKey, w.Tag)
	case InsufficientParts:
		return fmt.Sprintf("not enough rows after anchor %q: wanted %d parts, found %d",
			w.CompositeKey, w.Wanted, w.Got)
	default:
		return fmt.Sprintf("reference lookup warning for %q", w.CompositeKey)
	}
}
