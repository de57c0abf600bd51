package barcodexl

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ukaji3/barcodexl-go/pkg/barcodexl/models"
	"go.uber.org/zap"
)

// tempWorkbookName is the intermediate workbook written inside a block's
// image directory.
const tempWorkbookName = "temp.xlsx"

// BlockPaths are the on-disk locations used by one block.
type BlockPaths struct {
	// ImageDir is {base}/{stem}/bloque_{n}.
	ImageDir string
	// TempWorkbook is the intermediate workbook inside ImageDir.
	TempWorkbook string
	// Output is the final workbook path.
	Output string
}

// SymbologyDir returns the directory holding kind's images.
func (p BlockPaths) SymbologyDir(kind models.Symbology) string {
	return filepath.Join(p.ImageDir, string(kind))
}

// Layout owns the image tree and output naming for one run.
// The image tree is removed and recreated on the first Prepare call.
type Layout struct {
	imagesDir string
	outputDir string
	perSource bool
	log       *zap.Logger

	reset bool
}

// NewLayout creates a Layout that writes images under imagesDir and
// workbooks under outputDir. With perSource, each source gets its own
// output sub-directory named after its stem.
func NewLayout(imagesDir, outputDir string, perSource bool, log *zap.Logger) *Layout {
	if log == nil {
		log = zap.NewNop()
	}
	return &Layout{
		imagesDir: imagesDir,
		outputDir: outputDir,
		perSource: perSource,
		log:       log,
	}
}

// Stem returns the file name without directory and extension.
func Stem(source string) string {
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// OutputName returns "{stem}_barcodes_{n}.xlsx".
func OutputName(source string, block int) string {
	return fmt.Sprintf("%s_barcodes_%d%s", Stem(source), block, InputExtension)
}

// Paths computes the paths for a block without touching the disk.
func (l *Layout) Paths(source string, block int) BlockPaths {
	stem := Stem(source)
	imageDir := filepath.Join(l.imagesDir, stem, fmt.Sprintf("bloque_%d", block))

	outDir := l.outputDir
	if l.perSource {
		outDir = filepath.Join(outDir, stem)
	}

	return BlockPaths{
		ImageDir:     imageDir,
		TempWorkbook: filepath.Join(imageDir, tempWorkbookName),
		Output:       filepath.Join(outDir, OutputName(source, block)),
	}
}

// Prepare resets the image tree on first use, then creates the block's
// image and output directories.
func (l *Layout) Prepare(source string, block int) (BlockPaths, error) {
	if err := l.resetOnce(); err != nil {
		return BlockPaths{}, err
	}

	paths := l.Paths(source, block)
	for _, kind := range models.Symbologies {
		if err := os.MkdirAll(paths.SymbologyDir(kind), 0755); err != nil {
			return BlockPaths{}, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(paths.Output), 0755); err != nil {
		return BlockPaths{}, err
	}
	return paths, nil
}

func (l *Layout) resetOnce() error {
	if l.reset {
		return nil
	}
	if _, err := os.Stat(l.imagesDir); err == nil {
		l.log.Warn("removing images from previous run", zap.String("dir", l.imagesDir))
		if err := os.RemoveAll(l.imagesDir); err != nil {
			return fmt.Errorf("reset image directory: %w", err)
		}
	}
	if err := os.MkdirAll(l.imagesDir, 0755); err != nil {
		return fmt.Errorf("create image directory: %w", err)
	}
	l.reset = true
	return nil
}

// checkImagesDir rejects an image directory whose reset would remove any of
// the protected paths.
func checkImagesDir(imagesDir string, protected ...string) error {
	root, err := filepath.Abs(imagesDir)
	if err != nil {
		return fmt.Errorf("%w: images dir %q: %v", ErrInvalidConfig, imagesDir, err)
	}
	for _, path := range protected {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidConfig, path, err)
		}
		if within(root, abs) {
			return fmt.Errorf("%w: images dir %s contains %s and is wiped on each run", ErrInvalidConfig, imagesDir, path)
		}
	}
	return nil
}

// within reports whether path is root or lies below it.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
