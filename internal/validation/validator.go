// =============================================================================
// Purchase Order Builder - Cell Validation
// =============================================================================
//
// Cell-level checks applied while workbook rows are read. The loaders declare
// a FieldRule per column and call ValidateField for every cell; numeric cells
// are converted with ParseDecimal.
//
// SUPPORTED DATA TYPES:
//   - string  : any text value
//   - integer : whole numbers, thousands separators allowed ("1,200")
//   - decimal : decimal numbers, thousands separators allowed
//
// Spreadsheets render numbers with their display format, so "12,000" and
// "2.0" are both accepted where they can be read without loss.
//
// =============================================================================

package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// DataType names the type a column must hold.
type DataType string

const (
	TypeString  DataType = "string"
	TypeInteger DataType = "integer"
	TypeDecimal DataType = "decimal"
)

// FieldRule describes the expectations for one column.
type FieldRule struct {
	// Field is the column header used in error messages.
	Field string

	DataType DataType

	// Required rejects blank cells.
	Required bool
}

// ValidationError represents a single failed cell check.
type ValidationError struct {
	// Field is the column that failed validation.
	Field string

	// Value is the cell value that failed validation.
	Value string

	// Rule is the check that was violated ("required" or "data_type").
	Rule string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("field '%s': %s (value: '%s')", e.Field, e.Message, e.Value)
}

// ValidateField checks a cell value against its rule. It returns nil when the
// value is acceptable.
func ValidateField(value string, rule FieldRule) *ValidationError {
	value = strings.TrimSpace(value)

	// =========================================================================
	// REQUIRED FIELD VALIDATION
	// =========================================================================

	if value == "" {
		if rule.Required {
			return &ValidationError{
				Field:   rule.Field,
				Value:   value,
				Rule:    "required",
				Message: "required field is empty",
			}
		}
		return nil
	}

	// =========================================================================
	// DATA TYPE VALIDATION
	// =========================================================================

	if msg := validateDataType(value, rule.DataType); msg != "" {
		return &ValidationError{
			Field:   rule.Field,
			Value:   value,
			Rule:    "data_type",
			Message: msg,
		}
	}
	return nil
}

// ParseDecimal converts a cell value into a nullable decimal. Blank cells are
// null; anything that is not a number is an error.
func ParseDecimal(value string) (decimal.NullDecimal, error) {
	value = stripThousands(value)
	if value == "" {
		return decimal.NullDecimal{}, nil
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("value '%s' is not a valid decimal number", value)
	}
	return decimal.NewNullDecimal(d), nil
}

// =============================================================================
// DATA TYPE VALIDATORS
// =============================================================================

func validateDataType(value string, dataType DataType) string {
	switch dataType {
	case TypeInteger:
		return validateInteger(value)
	case TypeDecimal:
		return validateDecimal(value)
	default:
		// String type accepts any value.
		return ""
	}
}

// validateInteger accepts whole numbers, including integral decimals such as
// "3.0", that fit in an int.
func validateInteger(value string) string {
	d, err := decimal.NewFromString(stripThousands(value))
	if err != nil || !d.IsInteger() {
		return fmt.Sprintf("value '%s' is not a valid integer", value)
	}
	if !FitsInt(d) {
		return fmt.Sprintf("value '%s' is out of range", value)
	}
	return ""
}

// FitsInt reports whether the integer part of d fits in an int.
func FitsInt(d decimal.Decimal) bool {
	return d.Cmp(maxInt) <= 0 && d.Cmp(minInt) >= 0
}

var (
	maxInt = decimal.NewFromInt(math.MaxInt)
	minInt = decimal.NewFromInt(math.MinInt)
)

func validateDecimal(value string) string {
	if _, err := decimal.NewFromString(stripThousands(value)); err != nil {
		return fmt.Sprintf("value '%s' is not a valid decimal number", value)
	}
	return ""
}

func stripThousands(value string) string {
	return strings.ReplaceAll(strings.TrimSpace(value), ",", "")
}
