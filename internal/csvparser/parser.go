// =============================================================================
// Purchase Order Builder - CSV Order Reader
// =============================================================================
//
// Some shopping-mall back offices export the integrated order list as CSV
// instead of a workbook. This module reads such an export into the same
// []types.RawOrderRow the workbook loader produces, using the same order
// schema for column resolution.
//
// FEATURES:
//   - Comma, tab, pipe or semicolon delimiters
//   - UTF-8 (with or without BOM) and CP949/EUC-KR encodings
//   - Variable field counts per row and lazy quotes
//
// =============================================================================

package csvparser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/purchase-order-builder/internal/diagnostic"
	"github.com/ginjaninja78/purchase-order-builder/internal/types"
	"github.com/ginjaninja78/purchase-order-builder/internal/xlsxparser"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Settings controls how a CSV file is read.
type Settings struct {
	// Delimiter is ",", "tab", "|" or ";". Empty means comma.
	Delimiter string

	// Encoding is "UTF-8" (default) or "CP949"/"EUC-KR".
	Encoding string
}

// DefaultSettings returns comma separated UTF-8.
func DefaultSettings() Settings {
	return Settings{Delimiter: ",", Encoding: "UTF-8"}
}

// Validate reports settings ReadRows would reject.
func (s Settings) Validate() error {
	_, err := textEncoding(s.Encoding)
	return err
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ParseOrders reads an order export from filePath.
func ParseOrders(filePath string, schema xlsxparser.Schema, settings Settings, diags *diagnostic.Diagnostics) ([]types.RawOrderRow, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ParseOrdersFrom(file, filepath.Base(filePath), schema, settings, diags)
}

// ParseOrdersFrom reads an order export from r. name labels the rows in
// errors.
func ParseOrdersFrom(r io.Reader, name string, schema xlsxparser.Schema, settings Settings, diags *diagnostic.Diagnostics) ([]types.RawOrderRow, error) {
	rows, err := ReadRows(r, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, &types.MissingTableError{Workbook: name, Wanted: schema.Sheet}
	}

	return xlsxparser.OrdersFromRows(name, rows, schema, diags)
}

// ReadRows reads every record from r.
func ReadRows(r io.Reader, settings Settings) ([][]string, error) {
	reader, err := decode(bufio.NewReader(r), settings.Encoding)
	if err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(reader)
	configureReader(csvReader, settings)

	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return rows, nil
}

// decode wraps r so that it yields UTF-8 without a byte order mark.
func decode(r *bufio.Reader, name string) (io.Reader, error) {
	enc, err := textEncoding(name)
	if err != nil {
		return nil, err
	}
	if enc != nil {
		return transform.NewReader(r, enc.NewDecoder()), nil
	}

	if head, err := r.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = r.Discard(len(utf8BOM))
	}
	return r, nil
}

// textEncoding maps an encoding name to its decoder. UTF-8 maps to nil.
func textEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "_", "-")) {
	case "", "UTF-8", "UTF8":
		return nil, nil
	case "CP949", "EUC-KR", "EUCKR":
		return korean.EUCKR, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings Settings) {
	switch settings.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		reader.Comma = ','
	}

	// Allow variable number of fields per row.
	reader.FieldsPerRecord = -1

	// Allow lazy quotes (quotes that don't follow strict CSV rules).
	reader.LazyQuotes = true
}
