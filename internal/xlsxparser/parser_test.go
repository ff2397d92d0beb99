package xlsxparser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/purchase-order-builder/internal/diagnostic"
	"github.com/ginjaninja78/purchase-order-builder/internal/types"
)

func writeBook(t *testing.T, sheets ...Sheet) *Workbook {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, WriteWorkbook(path, sheets...))

	wb, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { wb.Close() })
	return wb
}

func orderSheet(name string, rows ...[]interface{}) Sheet {
	header := []interface{}{types.ColOrderCode, types.ColOrderName, types.ColOrderOption, types.ColOrderQuantity}
	return Sheet{Name: name, Rows: append([][]interface{}{header}, rows...)}
}

func TestLoadOrders(t *testing.T) {
	wb := writeBook(t, orderSheet(types.SheetOrders,
		[]interface{}{"2370135", "[쿠폰]샤르망 커트러리", "세트", 2},
		[]interface{}{},
		[]interface{}{"100", "머그컵", "", "1,000"},
	))

	diags := diagnostic.New()
	rows, err := LoadOrders(wb, OrderSchema(), diags)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, types.RawOrderRow{
		SourceRow:   2,
		ProductCode: "2370135",
		ProductName: "[쿠폰]샤르망 커트러리",
		OptionText:  "세트",
		Quantity:    "2",
	}, rows[0])
	assert.Equal(t, 4, rows[1].SourceRow)
	assert.Equal(t, "", rows[1].OptionText)
	assert.Empty(t, diags.Infos)
}

func TestLoadOrdersSheetFallback(t *testing.T) {
	wb := writeBook(t, orderSheet("Sheet1", []interface{}{"1", "a", "NO", 1}))

	diags := diagnostic.New()
	rows, err := LoadOrders(wb, OrderSchema(), diags)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, 1, diags.Count(diagnostic.CodeSheetFallback))
}

func TestLoadOrdersPositionalFallback(t *testing.T) {
	wb := writeBook(t, Sheet{Name: types.SheetOrders, Rows: [][]interface{}{
		{"주문번호", "주문일", "고객", "연락처", "주소", "상품번호", "상품명", "옵션", "개수"},
		{"A-1", "2024-01-01", "홍길동", "010", "서울", "555", "접시", "", 3},
	}})

	diags := diagnostic.New()
	rows, err := LoadOrders(wb, OrderSchema(), diags)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "555", rows[0].ProductCode)
	assert.Equal(t, "접시", rows[0].ProductName)
	assert.Equal(t, "3", rows[0].Quantity)
	assert.Equal(t, 4, diags.Count(diagnostic.CodeColumnFallback))
}

func TestLoadOrdersMissingColumn(t *testing.T) {
	wb := writeBook(t, Sheet{Name: types.SheetOrders, Rows: [][]interface{}{
		{types.ColOrderCode, types.ColOrderName, types.ColOrderOption},
		{"1", "a", "NO"},
	}})

	_, err := LoadOrders(wb, OrderSchema(), nil)
	var shapeErr *types.DataShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, types.ColOrderQuantity, shapeErr.Column)
	assert.Equal(t, 1, shapeErr.Row)
}

func TestLoadOrdersBadQuantity(t *testing.T) {
	wb := writeBook(t, orderSheet(types.SheetOrders,
		[]interface{}{"1", "a", "NO", 1},
		[]interface{}{"2", "b", "NO", "두개"},
	))

	_, err := LoadOrders(wb, OrderSchema(), nil)
	var shapeErr *types.DataShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, types.SheetOrders, shapeErr.Sheet)
	assert.Equal(t, 3, shapeErr.Row)
	assert.Equal(t, "두개", shapeErr.Value)
}

func mappingSheet(rows ...[]interface{}) Sheet {
	all := [][]interface{}{
		{"옵션분리"},
		{types.ColGroupKey, types.ColSeparationTag, types.ColPartCode, types.ColPartName, types.ColPartOption},
	}
	return Sheet{Name: types.SheetOptionMapping, Rows: append(all, rows...)}
}

func TestLoadOptionMapping(t *testing.T) {
	wb := writeBook(t, mappingSheet(
		[]interface{}{"2370135샤르망커트러리세트", "OptionGroup3", "2370135", "샤르망커트러리"},
		[]interface{}{"", "", "메모", "무시"},
		[]interface{}{"2370135-1 포크 NO", "", "2370135-1", "포크"},
		[]interface{}{"2370135-2나이프블랙", "", "2370135-2", "나이프", "블랙"},
	))

	entries, err := LoadOptionMapping(wb, OptionMappingSchema(), nil)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.True(t, entries[0].IsHeader())
	assert.Equal(t, 0, entries[0].Position)
	assert.Equal(t, 3, entries[0].SourceRow)

	// the blank-key row is gone and positions stay contiguous
	assert.Equal(t, 1, entries[1].Position)
	assert.Equal(t, 5, entries[1].SourceRow)
	assert.Equal(t, "2370135-1포크NO", entries[1].GroupKey)
	assert.Nil(t, entries[1].PartOption)

	require.NotNil(t, entries[2].PartOption)
	assert.Equal(t, "블랙", *entries[2].PartOption)
}

func catalogHeader() []interface{} {
	return []interface{}{
		types.ColGroupKey, types.ColSupplier, types.ColCatalogCode,
		types.ColERPName, types.ColERPOption, types.ColPOName, types.ColPOOption,
		types.ColListPrice, types.ColUnitCost, types.ColPackMultiplier,
	}
}

func TestLoadMasterCatalog(t *testing.T) {
	wb := writeBook(t,
		mappingSheet(),
		Sheet{Name: types.SheetCatalog, Rows: [][]interface{}{
			{"마스터"},
			catalogHeader(),
			{"2370135-1포크NO", "커트러리상사", "C-1", "포크", "NO", "포크", "", 1000, "600", 2},
			{"", "빈키"},
			{"100머그컵NO", "도자기상사", "C-2", "머그컵", "NO", "머그컵", "", "12,000", "", ""},
		}},
	)

	entries, err := LoadMasterCatalog(wb, CatalogSchema(), nil)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	fork := entries[0]
	assert.Equal(t, "커트러리상사", fork.Supplier)
	assert.Equal(t, "C-1", fork.CatalogCode)
	assert.Equal(t, "1000", fork.ListPrice.Decimal.String())
	assert.Equal(t, "600", fork.UnitCost.Decimal.String())
	assert.Equal(t, "2", fork.PackMultiplier.Decimal.String())

	mug := entries[1]
	assert.Equal(t, 5, mug.SourceRow)
	assert.Equal(t, "12000", mug.ListPrice.Decimal.String())
	assert.False(t, mug.UnitCost.Valid)
	assert.False(t, mug.PackMultiplier.Valid)
}

func TestLoadMasterCatalogSecondSheetFallback(t *testing.T) {
	wb := writeBook(t,
		mappingSheet(),
		Sheet{Name: "Sheet2", Rows: [][]interface{}{
			{"title"},
			catalogHeader(),
			{"k", "s", "c", "", "", "", "", 1, 1, 1},
		}},
	)

	diags := diagnostic.New()
	entries, err := LoadMasterCatalog(wb, CatalogSchema(), diags)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 1, diags.Count(diagnostic.CodeSheetFallback))
}

func TestLoadMasterCatalogBadPrice(t *testing.T) {
	wb := writeBook(t, Sheet{Name: types.SheetCatalog, Rows: [][]interface{}{
		{"마스터"},
		catalogHeader(),
		{"k", "s", "c", "", "", "", "", "문의", 1, 1},
	}})

	_, err := LoadMasterCatalog(wb, CatalogSchema(), nil)
	var shapeErr *types.DataShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, types.ColListPrice, shapeErr.Column)
	assert.Equal(t, 3, shapeErr.Row)
}

func TestResolveSheetMissingTable(t *testing.T) {
	wb := writeBook(t, mappingSheet())
	schema := CatalogSchema()
	schema.Fallbacks = []int{5}

	_, err := LoadMasterCatalog(wb, schema, nil)
	var missing *types.MissingTableError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, types.SheetCatalog, missing.Wanted)
	assert.Equal(t, []string{types.SheetOptionMapping}, missing.Available)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.xlsx"))
	assert.Error(t, err)
}

func TestOpenReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.xlsx")
	require.NoError(t, WriteWorkbook(path, orderSheet(types.SheetOrders, []interface{}{"1", "a", "NO", 1})))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	wb, err := OpenReader(f, "upload.xlsx")
	require.NoError(t, err)
	defer wb.Close()

	rows, err := LoadOrders(wb, OrderSchema(), nil)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestSchemaOverrides(t *testing.T) {
	s := OrderSchema().WithSheet("주문", 3).WithHeaders(map[string]string{FieldQuantity: "qty"})
	assert.Equal(t, "주문", s.Sheet)
	assert.Equal(t, 3, s.HeaderRow)
	assert.Equal(t, "qty", s.Headers()[3])

	// defaults untouched
	assert.Equal(t, types.ColOrderQuantity, OrderSchema().Headers()[3])
}

func TestWriteTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.xlsx")
	require.NoError(t, WriteTemplate(path, OptionMappingSchema(), CatalogSchema()))

	wb, err := Open(path)
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{types.SheetOptionMapping, types.SheetCatalog}, wb.SheetNames())

	entries, err := LoadMasterCatalog(wb, CatalogSchema(), nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
