package barcodexl

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/ukaji3/barcodexl-go/pkg/barcodexl/models"
	"github.com/xuri/excelize/v2"
)

// Annotation summarizes a written workbook.
type Annotation struct {
	Path   string
	Rows   int
	Images int
}

// columnPlan is the output header plus the source columns whose values are
// blanked because an image column reuses their name.
type columnPlan struct {
	header []string
	blank  map[int]bool
}

// planColumns appends one column per enabled symbology, reusing a source
// column of the same name in place.
func planColumns(header []string, cfg Config) columnPlan {
	plan := columnPlan{
		header: append([]string(nil), header...),
		blank:  make(map[int]bool),
	}
	for _, kind := range cfg.Enabled() {
		name := cfg.Style(kind).Column
		idx := -1
		for i, h := range plan.header {
			if h == name {
				idx = i
				break
			}
		}
		if idx >= 0 {
			plan.blank[idx] = true
			continue
		}
		plan.header = append(plan.header, name)
	}
	return plan
}

// Annotate writes block to paths.Output with each rendered image embedded
// in its row and symbology column. Rows without an image keep an empty cell.
// The intermediate workbook is removed before Annotate returns.
func Annotate(block models.Block, images models.RenderedImages, cfg Config, paths BlockPaths) (*Annotation, error) {
	plan := planColumns(block.Header, cfg)
	defer os.Remove(paths.TempWorkbook)
	if err := writeRows(paths.TempWorkbook, block, plan); err != nil {
		return nil, fmt.Errorf("write intermediate workbook: %w", err)
	}

	f, err := excelize.OpenFile(paths.TempWorkbook)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	columns, err := resolveColumns(f, sheet, cfg)
	if err != nil {
		return nil, err
	}

	result := &Annotation{Path: paths.Output, Rows: block.Len()}
	height := cfg.DataRowHeight()
	for i := range block.Rows {
		rowNum := i + 2 // header is row 1
		if err := f.SetRowHeight(sheet, rowNum, height); err != nil {
			return nil, err
		}

		for _, kind := range cfg.Enabled() {
			path, ok := images.Path(i, kind)
			if !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(columns[kind], rowNum)
			if err != nil {
				return nil, err
			}
			if err := embedImage(f, sheet, cell, path, cfg.Style(kind)); err != nil {
				return nil, fmt.Errorf("embed %s at %s: %w", filepath.Base(path), cell, err)
			}
			result.Images++
		}
	}

	for _, kind := range cfg.Enabled() {
		name, err := excelize.ColumnNumberToName(columns[kind])
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, name, name, columnWidth(cfg.Style(kind).EmbedWidth)); err != nil {
			return nil, err
		}
	}

	if err := f.SaveAs(paths.Output); err != nil {
		return nil, fmt.Errorf("save %s: %w", paths.Output, err)
	}
	return result, nil
}

// writeRows saves the block's values, without images, as a workbook.
func writeRows(path string, block models.Block, plan columnPlan) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := make([]interface{}, len(plan.header))
	for i, h := range plan.header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if len(header) > 0 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return err
		}
		last, _ := excelize.CoordinatesToCellName(len(header), 1)
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return err
		}
	}

	for i, row := range block.Rows {
		values := make([]interface{}, len(block.Header))
		for col := range values {
			if plan.blank[col] {
				continue
			}
			values[col] = row.Value(col).Interface()
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

// resolveColumns reads the header row once and returns the 1-based column
// of each enabled symbology.
func resolveColumns(f *excelize.File, sheet string, cfg Config) (map[models.Symbology]int, error) {
	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var header []string
	if rows.Next() {
		if header, err = rows.Columns(); err != nil {
			return nil, err
		}
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := index[h]; !dup {
			index[h] = i + 1
		}
	}

	columns := make(map[models.Symbology]int)
	for _, kind := range cfg.Enabled() {
		name := cfg.Style(kind).Column
		col, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q in sheet %q", ErrColumnNotFound, name, sheet)
		}
		columns[kind] = col
	}
	return columns, nil
}

// embedImage places the image at cell, scaled to the configured pixel size
// regardless of its aspect ratio.
func embedImage(f *excelize.File, sheet, cell, path string, sc StyleConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	native, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	// Half-pixel bias so excelize's truncation lands on the configured size.
	scaleX := (float64(sc.EmbedWidth) + 0.5) / float64(native.Width)
	scaleY := (float64(sc.EmbedHeight) + 0.5) / float64(native.Height)

	return f.AddPictureFromBytes(sheet, cell, &excelize.Picture{
		Extension: filepath.Ext(path),
		File:      data,
		Format: &excelize.GraphicOptions{
			ScaleX:      scaleX,
			ScaleY:      scaleY,
			Positioning: "oneCell",
		},
	})
}

// columnWidth converts pixels to excelize character width units.
func columnWidth(px int) float64 {
	return float64(px-5)/7 + 1
}
