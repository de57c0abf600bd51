package barcodexl

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ukaji3/barcodexl-go/pkg/barcodexl/models"
	"github.com/ukaji3/barcodexl-go/pkg/barcodexl/parser"
	"go.uber.org/zap"
)

// Summary aggregates the outcome of a run.
type Summary struct {
	Mode Mode
	// FilesProcessed counts the input workbooks found and attempted.
	FilesProcessed int
	// FilesSkipped counts inputs skipped for a missing column or unreadable content.
	FilesSkipped int
	// FilesWritten counts output workbooks (one per block).
	FilesWritten int
	// BlocksFailed counts blocks abandoned on an I/O error.
	BlocksFailed int
	Rows         int
	Images       int
	// SkippedRows counts rows whose code could not be coerced.
	SkippedRows int
	// SkippedImages counts row/symbology pairs rejected for the symbology.
	SkippedImages int
	Outputs       []string
	Elapsed       time.Duration
}

// ElapsedText formats the elapsed time as "N Min S Sec".
func (s *Summary) ElapsedText() string {
	total := int(s.Elapsed / time.Second)
	return fmt.Sprintf("%d Min %d Sec", total/60, total%60)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger (default: no-op).
func WithLogger(log *zap.Logger) Option {
	return func(p *Pipeline) { p.log = log }
}

// WithRenderer replaces the PNG renderer.
func WithRenderer(r Renderer) Option {
	return func(p *Pipeline) { p.renderer = r }
}

// Pipeline converts workbooks into barcode-annotated workbooks, one block
// at a time.
type Pipeline struct {
	cfg      Config
	log      *zap.Logger
	renderer Renderer
}

// New validates cfg and returns a Pipeline.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Pipeline{
		cfg:      cfg,
		log:      zap.NewNop(),
		renderer: PNGRenderer{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = zap.NewNop()
	}
	return p, nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// RunFile processes a single workbook. Images go under the configured
// images directory and workbooks under the output directory.
func (p *Pipeline) RunFile(inputPath string) (*Summary, error) {
	start := time.Now()
	if err := validateInputFile(inputPath); err != nil {
		return nil, err
	}
	if err := checkImagesDir(p.cfg.ImagesDir, inputPath, p.cfg.OutputDir); err != nil {
		return nil, err
	}

	sum := &Summary{Mode: ModeFile, FilesProcessed: 1}
	layout := NewLayout(p.cfg.ImagesDir, p.cfg.OutputDir, false, p.log)
	if err := p.processFile(inputPath, layout, sum); err != nil {
		if errors.Is(err, ErrColumnNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		return nil, err
	}

	sum.Elapsed = time.Since(start)
	p.logSummary(sum)
	return sum, nil
}

// RunDir processes every workbook directly inside inputDir. Outputs go to
// {inputDir}/{ExportDirName}/{stem}/ and images to
// {inputDir}/{ExportDirName}/barcodes/{stem}/. Files lacking the source
// column are skipped with a warning.
func (p *Pipeline) RunDir(inputDir string) (*Summary, error) {
	start := time.Now()
	info, err := os.Stat(inputDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: directory %s", ErrFileNotFound, inputDir)
	}

	exportDir := filepath.Join(inputDir, p.cfg.ExportDirName)
	imagesDir := filepath.Join(exportDir, p.cfg.ImagesDir)
	if err := checkImagesDir(imagesDir, inputDir, exportDir); err != nil {
		return nil, err
	}

	files, err := listWorkbooks(inputDir)
	if err != nil {
		return nil, err
	}

	sum := &Summary{Mode: ModeDir}
	if len(files) == 0 {
		p.log.Warn("no workbooks found", zap.String("dir", inputDir))
		sum.Elapsed = time.Since(start)
		return sum, nil
	}
	p.log.Info("workbooks found", zap.String("dir", inputDir), zap.Int("count", len(files)))

	layout := NewLayout(imagesDir, exportDir, true, p.log)
	for _, file := range files {
		sum.FilesProcessed++
		if err := p.processFile(file, layout, sum); err != nil {
			sum.FilesSkipped++
			p.log.Warn("skipping file", zap.String("file", filepath.Base(file)), zap.Error(err))
		}
	}

	sum.Elapsed = time.Since(start)
	p.logSummary(sum)
	return sum, nil
}

// processFile reads one workbook and writes its blocks. It returns an error
// only when the file cannot be used at all; block failures are counted.
func (p *Pipeline) processFile(path string, layout *Layout, sum *Summary) error {
	table, err := parser.ReadTable(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidFormat, filepath.Base(path), err)
	}

	col := table.ColumnIndex(p.cfg.SourceColumn)
	if col < 0 {
		return fmt.Errorf("%w: %q in %s", ErrColumnNotFound, p.cfg.SourceColumn, table.Name)
	}

	blocks, err := Partition(table, p.cfg.MaxRowsPerFile)
	if err != nil {
		return err
	}
	p.log.Info("processing file",
		zap.String("file", table.Name),
		zap.Int("rows", len(table.Rows)),
		zap.Int("blocks", len(blocks)))

	for _, block := range blocks {
		ann, err := p.processBlock(table.Name, block, col, layout, sum)
		if err != nil {
			sum.BlocksFailed++
			p.log.Error("block failed", zap.Error(err))
			continue
		}
		sum.FilesWritten++
		sum.Rows += ann.Rows
		sum.Outputs = append(sum.Outputs, ann.Path)
		p.log.Info("workbook written",
			zap.String("path", ann.Path),
			zap.Int("rows", ann.Rows),
			zap.Int("images", ann.Images))
	}
	return nil
}

// processBlock renders, annotates and writes one block.
func (p *Pipeline) processBlock(source string, block models.Block, col int, layout *Layout, sum *Summary) (*Annotation, error) {
	paths, err := layout.Prepare(source, block.Number)
	if err != nil {
		return nil, NewBlockError(source, block.Number, "layout", err)
	}

	p.log.Debug("rendering images", zap.String("file", source), zap.Int("block", block.Number))
	images, err := p.renderBlock(source, block, col, paths, sum)
	if err != nil {
		return nil, NewBlockError(source, block.Number, "render", err)
	}

	p.log.Debug("embedding images", zap.String("file", source), zap.Int("block", block.Number))
	ann, err := Annotate(block, images, p.cfg, paths)
	if err != nil {
		return nil, NewBlockError(source, block.Number, "annotate", err)
	}
	return ann, nil
}

// renderBlock derives payloads and renders the images of one block. Row and
// symbology problems are logged and skipped; I/O errors abort the block.
func (p *Pipeline) renderBlock(source string, block models.Block, col int, paths BlockPaths, sum *Summary) (models.RenderedImages, error) {
	images := make(models.RenderedImages)
	for i, row := range block.Rows {
		// Spreadsheet row number within the output workbook (header is row 1).
		sheetRow := i + 2

		payloads, err := Derive(row.Value(col))
		if err != nil {
			sum.SkippedRows++
			p.log.Warn("skipping row",
				zap.String("file", source),
				zap.Int("block", block.Number),
				zap.Int("row", sheetRow),
				zap.Stringer("value", row.Value(col)),
				zap.Error(&RowError{Row: row.Index, Err: err}))
			continue
		}

		for _, kind := range p.cfg.Enabled() {
			payload := payloads.For(kind)
			if payload.Err != nil {
				sum.SkippedImages++
				p.log.Warn("skipping barcode",
					zap.String("file", source),
					zap.Int("block", block.Number),
					zap.Int("row", sheetRow),
					zap.String("symbology", string(kind)),
					zap.Error(&RowError{Row: row.Index, Kind: kind, Err: payload.Err}))
				continue
			}
			if !payload.Present() {
				continue
			}

			dest := filepath.Join(paths.SymbologyDir(kind), ImageName(payload.Value, kind, i))
			err := p.renderer.Render(payload.Value, kind, p.cfg.Style(kind).Style, dest)
			var renderErr *RenderError
			if errors.As(err, &renderErr) {
				sum.SkippedImages++
				p.log.Warn("skipping barcode",
					zap.String("file", source),
					zap.Int("block", block.Number),
					zap.Int("row", sheetRow),
					zap.String("symbology", string(kind)),
					zap.String("payload", payload.Value),
					zap.Error(&RowError{Row: row.Index, Kind: kind, Err: renderErr}))
				continue
			}
			if err != nil {
				return nil, err
			}
			images.Set(i, kind, dest)
			sum.Images++
		}
	}
	return images, nil
}

func (p *Pipeline) logSummary(sum *Summary) {
	p.log.Info("process complete",
		zap.String("mode", string(sum.Mode)),
		zap.Int("files_processed", sum.FilesProcessed),
		zap.Int("files_skipped", sum.FilesSkipped),
		zap.Int("files_written", sum.FilesWritten),
		zap.Int("blocks_failed", sum.BlocksFailed),
		zap.Duration("elapsed", sum.Elapsed))
}

// validateInputFile checks existence and extension before any processing.
func validateInputFile(path string) error {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if !isWorkbookName(filepath.Base(path)) {
		return fmt.Errorf("%w: %s must have extension %s", ErrInvalidFormat, path, InputExtension)
	}
	return nil
}

// listWorkbooks returns the xlsx files directly inside dir, sorted by name.
// Excel lock files ("~$book.xlsx") are ignored.
func listWorkbooks(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !isWorkbookName(e.Name()) || strings.HasPrefix(e.Name(), "~$") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

func isWorkbookName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), InputExtension)
}
