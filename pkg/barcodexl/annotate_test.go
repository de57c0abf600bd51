package barcodexl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/barcodexl-go/pkg/barcodexl/models"
	"github.com/ukaji3/barcodexl-go/pkg/barcodexl/parser"
	"github.com/xuri/excelize/v2"
)

// annotateFixture prepares a block of n rows and writes a real image for
// each row listed in withImage.
func annotateFixture(t *testing.T, cfg Config, header []string, n int, withImage map[models.Symbology][]int) (models.Block, models.RenderedImages, BlockPaths) {
	t.Helper()
	table := &models.Table{Name: "articulos.xlsx", Header: header}
	for i := 0; i < n; i++ {
		values := make([]models.Value, len(header))
		for j := range values {
			values[j] = models.StringValue(header[j] + "-" + string(rune('a'+i)))
		}
		table.Rows = append(table.Rows, models.Row{Index: i, Values: values})
	}
	blocks, err := Partition(table, n)
	require.NoError(t, err)

	layout := NewLayout(cfg.ImagesDir, cfg.OutputDir, false, nil)
	paths, err := layout.Prepare(table.Name, 1)
	require.NoError(t, err)

	images := make(models.RenderedImages)
	for kind, rows := range withImage {
		for _, i := range rows {
			payload := samplePayload(kind)
			dest := filepath.Join(paths.SymbologyDir(kind), ImageName(payload, kind, i))
			require.NoError(t, PNGRenderer{}.Render(payload, kind, cfg.Style(kind).Style, dest))
			images.Set(i, kind, dest)
		}
	}
	return blocks[0], images, paths
}

func samplePayload(kind models.Symbology) string {
	if kind == models.EAN13 {
		return "0000000000042"
	}
	return "42"
}

func TestAnnotatePlacesImagesByColumnName(t *testing.T) {
	cfg := testConfig(t)
	cfg.Code128.Enabled = true
	cfg.Code128.EmbedWidth = 120
	cfg.Code128.EmbedHeight = 40

	header := []string{"nombre", "cod_barras", "precio"}
	block, images, paths := annotateFixture(t, cfg, header, 4, map[models.Symbology][]int{
		models.Code128: {0, 1, 3},
		models.EAN13:   {0, 2, 3},
	})

	ann, err := Annotate(block, images, cfg, paths)
	require.NoError(t, err)
	assert.Equal(t, paths.Output, ann.Path)
	assert.Equal(t, 4, ann.Rows)
	assert.Equal(t, 6, ann.Images)
	assert.NoFileExists(t, paths.TempWorkbook)

	rows := readRows(t, paths.Output)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"nombre", "cod_barras", "precio", "code128", "ean13"}, rows[0])
	assert.Equal(t, "precio-c", rows[3][2])

	pictures, err := parser.ExtractPictures(paths.Output)
	require.NoError(t, err)
	got := make(map[string]models.Picture)
	for _, p := range pictures["Sheet1"] {
		got[p.Cell] = p
	}
	assert.Len(t, got, 6)
	for _, cell := range []string{"D2", "D3", "D5"} {
		require.Contains(t, got, cell)
		assert.InDelta(t, 120, got[cell].W, 1)
		assert.InDelta(t, 40, got[cell].H, 1)
	}
	for _, cell := range []string{"E2", "E4", "E5"} {
		require.Contains(t, got, cell)
		assert.InDelta(t, 150, got[cell].W, 1)
		assert.InDelta(t, 45, got[cell].H, 1)
	}
	assert.NotContains(t, got, "D4")
	assert.NotContains(t, got, "E3")
}

func TestAnnotateReusesExistingColumn(t *testing.T) {
	cfg := testConfig(t)
	header := []string{"nombre", "ean13", "cod_barras"}
	block, images, paths := annotateFixture(t, cfg, header, 2, map[models.Symbology][]int{
		models.EAN13: {1},
	})

	_, err := Annotate(block, images, cfg, paths)
	require.NoError(t, err)

	rows := readRows(t, paths.Output)
	assert.Equal(t, header, rows[0])
	// the reused column is blanked, the others are kept
	for _, row := range rows[1:] {
		if len(row) > 1 {
			assert.Empty(t, row[1])
		}
	}
	assert.Equal(t, "cod_barras-b", rows[2][2])

	pictures, err := parser.ExtractPictures(paths.Output)
	require.NoError(t, err)
	require.Len(t, pictures["Sheet1"], 1)
	assert.Equal(t, "B3", pictures["Sheet1"][0].Cell)
}

func TestAnnotateRowHeights(t *testing.T) {
	cfg := testConfig(t)
	block, images, paths := annotateFixture(t, cfg, []string{"cod_barras"}, 3, map[models.Symbology][]int{
		models.EAN13: {0},
	})

	_, err := Annotate(block, images, cfg, paths)
	require.NoError(t, err)

	f, err := excelize.OpenFile(paths.Output)
	require.NoError(t, err)
	defer f.Close()
	for row := 2; row <= 4; row++ {
		h, err := f.GetRowHeight("Sheet1", row)
		require.NoError(t, err)
		assert.Equal(t, 50.0, h, "row %d", row)
	}
}

func TestAnnotateNoSymbologies(t *testing.T) {
	cfg := testConfig(t)
	cfg.EAN13.Enabled = false
	block, images, paths := annotateFixture(t, cfg, []string{"cod_barras", "nombre"}, 2, nil)

	ann, err := Annotate(block, images, cfg, paths)
	require.NoError(t, err)
	assert.Zero(t, ann.Images)
	assert.Equal(t, []string{"cod_barras", "nombre"}, readRows(t, paths.Output)[0])
}

func TestAnnotateMissingImageFile(t *testing.T) {
	cfg := testConfig(t)
	block, images, paths := annotateFixture(t, cfg, []string{"cod_barras"}, 1, nil)
	images.Set(0, models.EAN13, filepath.Join(paths.ImageDir, "gone.png"))

	_, err := Annotate(block, images, cfg, paths)
	require.Error(t, err)
	assert.NoFileExists(t, paths.TempWorkbook)
	assert.NoFileExists(t, paths.Output)
}

func TestAnnotateRemovesIntermediateWorkbookWhenWriteFails(t *testing.T) {
	cfg := testConfig(t)
	block, images, paths := annotateFixture(t, cfg, []string{"cod_barras"}, 1, nil)
	// more columns than a sheet can hold
	block.Header = make([]string, excelize.MaxColumns+1)
	require.NoError(t, os.WriteFile(paths.TempWorkbook, []byte("partial"), 0644))

	_, err := Annotate(block, images, cfg, paths)
	require.Error(t, err)
	assert.NoFileExists(t, paths.TempWorkbook)
	assert.NoFileExists(t, paths.Output)
}

func TestResolveColumnsNotFound(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "cod_barras"))

	_, err := resolveColumns(f, "Sheet1", DefaultConfig())
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestPlanColumns(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Code128.Enabled = true

	plan := planColumns([]string{"code128", "cod_barras"}, cfg)
	assert.Equal(t, []string{"code128", "cod_barras", "ean13"}, plan.header)
	assert.Equal(t, map[int]bool{0: true}, plan.blank)
}

func TestColumnWidth(t *testing.T) {
	assert.InDelta(t, 21.71, columnWidth(150), 0.01)
}
