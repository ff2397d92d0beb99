package csvwriter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/purchase-order-builder/internal/types"
)

func sampleLines() []types.ExpandedOrderLine {
	fork := types.OrderLine{
		ProductCode:   "2370135-1",
		ProductName:   "포크",
		OptionText:    "NO",
		Quantity:      2,
		SeparationTag: types.StringPtr("OptionGroup3"),
	}
	fork.Rekey()

	mug := types.OrderLine{ProductCode: "100", ProductName: "머그컵", OptionText: "NO", Quantity: 1}
	mug.Rekey()

	return []types.ExpandedOrderLine{
		{
			OrderLine: fork,
			Catalog: &types.MasterCatalogEntry{
				Supplier:       "커트러리상사",
				CatalogCode:    "C-1",
				ERPProductName: "포크",
				ERPOptionName:  "NO",
				POProductName:  "포크(은)",
				ListPrice:      decimal.NewNullDecimal(decimal.NewFromInt(1000)),
				PackMultiplier: decimal.NewNullDecimal(decimal.NewFromInt(2)),
			},
			OrderQuantity:  decimal.NewNullDecimal(decimal.NewFromInt(4)),
			ListValueTotal: decimal.NewNullDecimal(decimal.NewFromInt(4000)),
		},
		{OrderLine: mug},
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleLines(), DefaultOptions()))

	raw := buf.Bytes()
	require.True(t, bytes.HasPrefix(raw, utf8BOM))

	records, err := csv.NewReader(bytes.NewReader(raw[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, Header(), records[0])
	assert.Len(t, records[0], 17)
	assert.Equal(t, "상품명_ERP기준\n(빈칸삭제)", records[0][8])

	assert.Equal(t, []string{
		"2370135-1", "포크", "NO", "2", "2370135-1포크NO", "OptionGroup3",
		"커트러리상사", "C-1", "포크", "NO", "포크(은)", "",
		"1000", "", "4", "4000", "",
	}, records[1])

	assert.Equal(t, []string{
		"100", "머그컵", "NO", "1", "100머그컵NO", "",
		"", "", "", "", "", "", "", "", "", "", "",
	}, records[2])
}

func TestWriteWithoutBOM(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil, Options{}))
	assert.False(t, bytes.HasPrefix(buf.Bytes(), utf8BOM))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "결과물.csv")
	require.NoError(t, WriteFile(path, sampleLines(), DefaultOptions()))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, utf8BOM))
	assert.Contains(t, string(content), "2370135-1포크NO")
}

func TestWriteFileBadDir(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "missing", "out.csv"), nil, DefaultOptions())
	assert.Error(t, err)
}
