package barcodexl

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ukaji3/barcodexl-go/pkg/barcodexl/models"
	"github.com/ukaji3/barcodexl-go/pkg/barcodexl/symbol"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// writeWorkbook saves header and rows as the first sheet of a new workbook.
// A nil cell is left empty.
func writeWorkbook(t *testing.T, path string, header []string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	head := make([]interface{}, len(header))
	for i, h := range header {
		head[i] = h
	}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &head))
	for i, row := range rows {
		for j, v := range row {
			if v == nil {
				continue
			}
			name, err := excelize.CoordinatesToCellName(j+1, i+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, name, v))
		}
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, f.SaveAs(path))
}

// readRows returns the values of the first sheet of an xlsx file.
func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	return rows
}

// tinyPNG returns an encoded w x h black image.
func tinyPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.Black)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// fakeRenderer writes a fixed small PNG and records every payload. Payloads
// listed in reject fail as the symbology would.
type fakeRenderer struct {
	png      []byte
	reject   map[string]bool
	ioErr    error
	payloads map[models.Symbology][]string
}

func newFakeRenderer(t *testing.T) *fakeRenderer {
	return &fakeRenderer{
		png:      tinyPNG(t, 30, 9),
		reject:   make(map[string]bool),
		payloads: make(map[models.Symbology][]string),
	}
}

func (r *fakeRenderer) Render(payload string, kind models.Symbology, style symbol.Style, dest string) error {
	if r.ioErr != nil {
		return r.ioErr
	}
	if r.reject[payload] {
		return &RenderError{Kind: kind, Payload: payload, Err: symbol.ErrInvalidPayload}
	}
	r.payloads[kind] = append(r.payloads[kind], payload)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	return os.WriteFile(dest, r.png, 0644)
}

// observedLogger returns a logger that records warnings and above.
func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.WarnLevel)
	return zap.New(core), logs
}

// testConfig returns defaults rooted in a temporary directory.
func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.ImagesDir = filepath.Join(dir, "barcodes")
	cfg.OutputDir = filepath.Join(dir, "out")
	return cfg
}
