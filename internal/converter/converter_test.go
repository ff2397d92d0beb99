package converter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ginjaninja78/purchase-order-builder/internal/config"
	"github.com/ginjaninja78/purchase-order-builder/internal/report"
	"github.com/ginjaninja78/purchase-order-builder/internal/types"
	"github.com/ginjaninja78/purchase-order-builder/internal/xlsxparser"
)

func writeMaster(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "master.xlsx")
	require.NoError(t, xlsxparser.WriteWorkbook(path,
		xlsxparser.Sheet{Name: types.SheetOptionMapping, Rows: [][]interface{}{
			{"옵션분리"},
			{types.ColGroupKey, types.ColSeparationTag, types.ColPartCode, types.ColPartName, types.ColPartOption},
			{"2370135샤르망커트러리세트", "OptionGroup3", "2370135", "샤르망커트러리"},
			{"2370135-1포크NO", "", "2370135-1", "포크"},
			{"2370135-2나이프NO", "", "2370135-2", "나이프"},
		}},
		xlsxparser.Sheet{Name: types.SheetCatalog, Rows: [][]interface{}{
			{"마스터"},
			{
				types.ColGroupKey, types.ColSupplier, types.ColCatalogCode,
				types.ColERPName, types.ColERPOption, types.ColPOName, types.ColPOOption,
				types.ColListPrice, types.ColUnitCost, types.ColPackMultiplier,
			},
			{"2370135-1포크NO", "커트러리상사", "C-1", "포크", "NO", "포크", "", 1000, 600, 2},
			{"100머그컵NO", "도자기상사", "C-2", "머그컵", "NO", "머그컵", "", 5000, "", 1},
		}},
	))
	return path
}

func writeOrders(t *testing.T, dir, name string, rows ...[]interface{}) string {
	t.Helper()
	path := filepath.Join(dir, name)
	header := []interface{}{types.ColOrderCode, types.ColOrderName, types.ColOrderOption, types.ColOrderQuantity}
	require.NoError(t, xlsxparser.WriteWorkbook(path, xlsxparser.Sheet{
		Name: types.SheetOrders,
		Rows: append([][]interface{}{header}, rows...),
	}))
	return path
}

func readResult(t *testing.T, path string) [][]string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	content = bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})

	records, err := csv.NewReader(bytes.NewReader(content)).ReadAll()
	require.NoError(t, err)
	return records
}

func newConverter(t *testing.T, cfg *config.Config) *Converter {
	t.Helper()
	c, err := New(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	return c
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Output.Dir = filepath.Join(dir, "out")
	cfg.Output.Report = true

	job := Job{
		OrderPath: writeOrders(t, dir, "orders.xlsx",
			[]interface{}{"2370135", "[쿠폰]샤르망커트러리", "세트", 2},
			[]interface{}{"100", "머그컵", "", 1},
		),
		MasterPath: writeMaster(t, dir),
	}

	result := newConverter(t, cfg).Run(job)
	require.NoError(t, result.Error)
	assert.True(t, result.Success)
	assert.NotEmpty(t, result.ID)
	assert.Regexp(t, regexp.MustCompile(`결과물_[0-9a-f-]{36}\.csv$`), result.OutputFile)
	assert.Equal(t, cfg.Output.Dir, filepath.Dir(result.OutputFile))

	assert.Equal(t, 2, result.Stats.InputRows)
	assert.Equal(t, 2, result.Stats.SynthesizedLines)
	assert.Equal(t, 4, result.Stats.OutputLines)
	assert.Equal(t, 2, result.Stats.UnmatchedLines)
	assert.Empty(t, result.Warnings)

	records := readResult(t, result.OutputFile)
	require.Len(t, records, 5)
	var codes []string
	for _, rec := range records[1:] {
		codes = append(codes, rec[0])
	}
	assert.Equal(t, []string{"100", "2370135", "2370135-1", "2370135-2"}, codes)

	fork := records[3]
	assert.Equal(t, "2370135-1포크NO", fork[4])
	assert.Equal(t, "커트러리상사", fork[6])
	assert.Equal(t, []string{"4", "4000", "2400"}, fork[14:17])

	require.NotEmpty(t, result.ReportFile)
	rep, err := report.Load(result.ReportFile)
	require.NoError(t, err)
	assert.Equal(t, result.Stats.OutputLines, rep.Stats.OutputLines)
	assert.Equal(t, job.OrderPath, rep.Run.OrderFile)
	require.Len(t, rep.Expansions, 2)
	assert.Equal(t, "2370135-1", rep.Expansions[0].ProductCode)
	assert.Equal(t, "2370135-2", rep.Expansions[1].ProductCode)
	assert.Equal(t, 2, rep.Expansions[0].Row)
	assert.Equal(t, 2, rep.Expansions[0].Quantity)
}

func TestRunCSVOrders(t *testing.T) {
	dir := t.TempDir()
	orders := filepath.Join(dir, "orders.csv")
	require.NoError(t, os.WriteFile(orders, []byte(
		types.ColOrderCode+","+types.ColOrderName+","+types.ColOrderOption+","+types.ColOrderQuantity+"\n"+
			"100,머그컵,,3\n"), 0644))

	out := filepath.Join(dir, "result.csv")
	result := newConverter(t, config.Default()).Run(Job{OrderPath: orders, MasterPath: writeMaster(t, dir), OutputPath: out})
	require.NoError(t, result.Error)
	assert.Equal(t, out, result.OutputFile)
	assert.Empty(t, result.ReportFile)

	records := readResult(t, out)
	require.Len(t, records, 2)
	assert.Equal(t, "100머그컵NO", records[1][4])
	assert.Equal(t, "15000", records[1][15])
}

func TestRunFromReaders(t *testing.T) {
	dir := t.TempDir()
	orderBytes, err := os.ReadFile(writeOrders(t, dir, "orders.xlsx",
		[]interface{}{"2370135", "샤르망커트러리", "세트", 1},
	))
	require.NoError(t, err)
	masterBytes, err := os.ReadFile(writeMaster(t, dir))
	require.NoError(t, err)

	out := filepath.Join(dir, "result.csv")
	result := newConverter(t, config.Default()).Run(Job{
		OrderPath:  "주문.xlsx",
		MasterPath: "마스터.xlsx",
		OutputPath: out,
		Order:      bytes.NewReader(orderBytes),
		Master:     bytes.NewReader(masterBytes),
	})
	require.NoError(t, result.Error)
	assert.Equal(t, 3, result.Stats.OutputLines)
	assert.Len(t, readResult(t, out), 4)
}

func TestRunFromCSVReader(t *testing.T) {
	dir := t.TempDir()
	masterBytes, err := os.ReadFile(writeMaster(t, dir))
	require.NoError(t, err)
	orders := types.ColOrderCode + "," + types.ColOrderName + "," + types.ColOrderOption + "," + types.ColOrderQuantity + "\n" +
		"100,머그컵,,2\n"

	out := filepath.Join(dir, "result.csv")
	result := newConverter(t, config.Default()).Run(Job{
		OrderPath:  "orders.csv",
		MasterPath: "master.xlsx",
		OutputPath: out,
		Order:      bytes.NewBufferString(orders),
		Master:     bytes.NewReader(masterBytes),
	})
	require.NoError(t, result.Error)

	records := readResult(t, out)
	require.Len(t, records, 2)
	assert.Equal(t, "10000", records[1][15])
}

func TestRunUnreadableUpload(t *testing.T) {
	dir := t.TempDir()
	masterBytes, err := os.ReadFile(writeMaster(t, dir))
	require.NoError(t, err)

	result := newConverter(t, config.Default()).Run(Job{
		OrderPath:  "orders.xlsx",
		MasterPath: "master.xlsx",
		OutputPath: filepath.Join(dir, "result.csv"),
		Order:      bytes.NewBufferString("not a workbook"),
		Master:     bytes.NewReader(masterBytes),
	})
	assert.False(t, result.Success)
	assert.ErrorContains(t, result.Error, "orders.xlsx")
}

func TestRunIncompleteGroupWarns(t *testing.T) {
	dir := t.TempDir()
	master := filepath.Join(dir, "master.xlsx")
	require.NoError(t, xlsxparser.WriteWorkbook(master,
		xlsxparser.Sheet{Name: types.SheetOptionMapping, Rows: [][]interface{}{
			{"옵션분리"},
			{types.ColGroupKey, types.ColSeparationTag, types.ColPartCode, types.ColPartName, types.ColPartOption},
			{"2370135샤르망커트러리세트", "OptionGroup3", "2370135", "샤르망커트러리"},
			{"2370135-1포크NO", "", "2370135-1", "포크"},
		}},
		xlsxparser.Sheet{Name: types.SheetCatalog, Rows: [][]interface{}{
			{"마스터"},
			{types.ColGroupKey, types.ColSupplier, types.ColCatalogCode, types.ColERPName, types.ColERPOption,
				types.ColPOName, types.ColPOOption, types.ColListPrice, types.ColUnitCost, types.ColPackMultiplier},
		}},
	))

	result := newConverter(t, config.Default()).Run(Job{
		OrderPath:  writeOrders(t, dir, "orders.xlsx", []interface{}{"2370135", "샤르망커트러리", "세트", 1}),
		MasterPath: master,
		OutputPath: filepath.Join(dir, "result.csv"),
	})
	require.NoError(t, result.Error)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, types.InsufficientParts, result.Warnings[0].Kind)
	assert.Equal(t, 2, result.Stats.OutputLines)
}

func TestRunBadQuantity(t *testing.T) {
	dir := t.TempDir()
	result := newConverter(t, config.Default()).Run(Job{
		OrderPath:  writeOrders(t, dir, "orders.xlsx", []interface{}{"100", "머그컵", "", "한개"}),
		MasterPath: writeMaster(t, dir),
		OutputPath: filepath.Join(dir, "result.csv"),
	})

	assert.False(t, result.Success)
	var shapeErr *types.DataShapeError
	require.True(t, errors.As(result.Error, &shapeErr))
	assert.Equal(t, 2, shapeErr.Row)
	assert.NoFileExists(t, filepath.Join(dir, "result.csv"))
}

func TestRunMissingMaster(t *testing.T) {
	dir := t.TempDir()
	result := newConverter(t, config.Default()).Run(Job{
		OrderPath:  writeOrders(t, dir, "orders.xlsx", []interface{}{"100", "머그컵", "", 1}),
		MasterPath: filepath.Join(dir, "missing.xlsx"),
	})
	assert.False(t, result.Success)
	assert.Error(t, result.Error)
}

func TestRunBatch(t *testing.T) {
	dir := t.TempDir()
	master := writeMaster(t, dir)
	cfg := config.Default()
	cfg.Output.Dir = filepath.Join(dir, "out")

	jobs := []Job{
		{OrderPath: writeOrders(t, dir, "a.xlsx", []interface{}{"100", "머그컵", "", 1}), MasterPath: master},
		{OrderPath: filepath.Join(dir, "missing.xlsx"), MasterPath: master},
		{OrderPath: writeOrders(t, dir, "b.xlsx", []interface{}{"2370135", "샤르망커트러리", "세트", 1}), MasterPath: master},
	}

	results := newConverter(t, cfg).RunBatch(jobs)
	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.True(t, results[2].Success)
	assert.Equal(t, jobs[2], results[2].Job)
	assert.Equal(t, 3, results[2].Stats.OutputLines)
	assert.NotEqual(t, results[0].OutputFile, results[2].OutputFile)
}

func TestNewInvalidPolicy(t *testing.T) {
	cfg := config.Default()
	cfg.Processing.DuplicatePolicy = "newest"
	_, err := New(cfg, nil)
	assert.Error(t, err)
}
