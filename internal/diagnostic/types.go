// Package diagnostic collects recoverable problems found during a run so that
// callers can inspect partial failures without parsing log output.
package diagnostic

import (
	"errors"
	"fmt"
	"strings"
)

// Diagnostic codes emitted by the pipeline.
const (
	CodeSheetFallback     = "SHEET_FALLBACK"
	CodeColumnFallback    = "COLUMN_FALLBACK"
	CodeAnchorNotFound    = "ANCHOR_NOT_FOUND"
	CodeInsufficientParts = "INSUFFICIENT_PARTS"
	CodeDuplicateHeader   = "DUPLICATE_HEADER"
	CodeDuplicateAnchor   = "DUPLICATE_ANCHOR"
	CodeDuplicateCatalog  = "DUPLICATE_CATALOG_KEY"
	CodeCatalogMiss       = "CATALOG_MISS"
)

// Diagnostics holds all diagnostic information from one run.
type Diagnostics struct {
	Errors   []Diagnostic `yaml:"errors,omitempty" json:"errors,omitempty"`
	Warnings []Diagnostic `yaml:"warnings,omitempty" json:"warnings,omitempty"`
	Infos    []Diagnostic `yaml:"infos,omitempty" json:"infos,omitempty"`
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	Severity Severity `yaml:"severity" json:"severity"`
	// Code is a stable identifier for this kind of diagnostic.
	Code    string `yaml:"code" json:"code"`
	Message string `yaml:"message" json:"message"`
	// Key is the composite key or group key this relates to (if any).
	Key string `yaml:"key,omitempty" json:"key,omitempty"`
	// Row is the 1-based source row this relates to (if any).
	Row int `yaml:"row,omitempty" json:"row,omitempty"`
}

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalYAML renders the severity by name.
func (s Severity) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// MarshalText renders the severity by name for JSON encoders.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a severity name written by MarshalText.
func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "info":
		*s = SeverityInfo
	case "warning":
		*s = SeverityWarning
	case "error":
		*s = SeverityError
	default:
		return fmt.Errorf("unknown severity %q", text)
	}
	return nil
}

// New returns an empty collector.
func New() *Diagnostics {
	return &Diagnostics{}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, key string, row int) {
	d.Errors = append(d.Errors, Diagnostic{
		Severity: SeverityError,
		Code:     code,
		Message:  message,
		Key:      key,
		Row:      row,
	})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, key string, row int) {
	d.Warnings = append(d.Warnings, Diagnostic{
		Severity: SeverityWarning,
		Code:     code,
		Message:  message,
		Key:      key,
		Row:      row,
	})
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message, key string, row int) {
	d.Infos = append(d.Infos, Diagnostic{
		Severity: SeverityInfo,
		Code:     code,
		Message:  message,
		Key:      key,
		Row:      row,
	})
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// HasWarnings returns true if there are any warning diagnostics.
func (d *Diagnostics) HasWarnings() bool {
	return len(d.Warnings) > 0
}

// Count returns the number of diagnostics with the given code across all
// severities.
func (d *Diagnostics) Count(code string) int {
	n := 0
	for _, group := range [][]Diagnostic{d.Errors, d.Warnings, d.Infos} {
		for _, item := range group {
			if item.Code == code {
				n++
			}
		}
	}
	return n
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other *Diagnostics) {
	if other == nil {
		return
	}
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// Error returns a combined error from all error diagnostics, or nil.
func (d *Diagnostics) Error() error {
	if !d.HasErrors() {
		return nil
	}

	parts := make([]string, 0, len(d.Errors))
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix []string
	if d.Row > 0 {
		prefix = append(prefix, fmt.Sprintf("row %d", d.Row))
	}

	if d.Key != "" {
		prefix = append(prefix, "["+d.Key+"]")
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}
