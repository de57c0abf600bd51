// Package barcodexl annotates spreadsheet rows with rendered barcode images.
package barcodexl

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ukaji3/barcodexl-go/pkg/barcodexl/models"
	"github.com/ukaji3/barcodexl-go/pkg/barcodexl/symbol"
	"gopkg.in/yaml.v3"
)

// Mode selects how input files are discovered.
type Mode string

const (
	// ModeFile processes a single workbook.
	ModeFile Mode = "file"
	// ModeDir scans a directory for workbooks.
	ModeDir Mode = "dir"
)

// InputExtension is the only accepted input file extension.
const InputExtension = ".xlsx"

// StyleConfig configures one symbology: whether it is generated, the column
// that holds its images, how it is drawn and how large it is embedded.
type StyleConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Column       string `yaml:"column"`
	symbol.Style `yaml:",inline"`
	// EmbedWidth and EmbedHeight are the displayed size in pixels.
	EmbedWidth  int `yaml:"embed_width"`
	EmbedHeight int `yaml:"embed_height"`
}

// Config holds pipeline configuration.
type Config struct {
	// SourceColumn names the column holding the numeric codes.
	SourceColumn string `yaml:"source_column"`
	// MaxRowsPerFile bounds the rows written to each output workbook.
	MaxRowsPerFile int `yaml:"max_rows_per_file"`
	// ImagesDir is the image tree root in file mode. It is wiped on each run.
	ImagesDir string `yaml:"images_dir"`
	// OutputDir receives the output workbooks in file mode.
	OutputDir string `yaml:"output_dir"`
	// ExportDirName is created inside the input directory in dir mode.
	ExportDirName string `yaml:"export_dir_name"`
	// RowHeight is the data row height in points.
	RowHeight float64 `yaml:"row_height"`

	Code128 StyleConfig `yaml:"code128"`
	EAN13   StyleConfig `yaml:"ean13"`
}

// DefaultConfig returns the default configuration: EAN13 only, 5000 rows
// per workbook.
func DefaultConfig() Config {
	return Config{
		SourceColumn:   "cod_barras",
		MaxRowsPerFile: 5000,
		ImagesDir:      "barcodes",
		OutputDir:      ".",
		ExportDirName:  "Exportación",
		RowHeight:      50,
		Code128: StyleConfig{
			Enabled: false,
			Column:  "code128",
			Style: symbol.Style{
				ModuleWidth:  0.2,
				ModuleHeight: 8,
				FontSize:     8,
				TextDistance: 3.5,
				QuietZone:    4,
				Background:   "white",
				Foreground:   "black",
				WriteText:    true,
				DPI:          200,
			},
			EmbedWidth:  150,
			EmbedHeight: 45,
		},
		EAN13: StyleConfig{
			Enabled: true,
			Column:  "ean13",
			Style: symbol.Style{
				ModuleWidth:  0.2,
				ModuleHeight: 8,
				FontSize:     6,
				TextDistance: 2.5,
				QuietZone:    4,
				Background:   "white",
				Foreground:   "black",
				WriteText:    true,
				DPI:          200,
			},
			EmbedWidth:  150,
			EmbedHeight: 45,
		},
	}
}

// LoadConfig loads configuration from a YAML file on top of the defaults.
// A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Style returns the configuration for kind.
func (c Config) Style(kind models.Symbology) StyleConfig {
	if kind == models.Code128 {
		return c.Code128
	}
	return c.EAN13
}

// Enabled returns the enabled symbologies in column order.
func (c Config) Enabled() []models.Symbology {
	var kinds []models.Symbology
	for _, kind := range models.Symbologies {
		if c.Style(kind).Enabled {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

// DataRowHeight returns the row height in points, raised if needed so the
// tallest enabled embed fits. Pixels are converted at 96 DPI.
func (c Config) DataRowHeight() float64 {
	h := c.RowHeight
	for _, kind := range c.Enabled() {
		if need := float64(c.Style(kind).EmbedHeight) * 72 / 96; need > h {
			h = need
		}
	}
	return h
}

// Validate checks the configuration before any file is touched.
func (c Config) Validate() error {
	if c.MaxRowsPerFile <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidRowLimit, c.MaxRowsPerFile)
	}
	if c.SourceColumn == "" {
		return fmt.Errorf("%w: source column is empty", ErrInvalidConfig)
	}
	if c.ImagesDir == "" {
		return fmt.Errorf("%w: images dir is empty", ErrInvalidConfig)
	}
	if c.RowHeight <= 0 {
		return fmt.Errorf("%w: row height must be positive, got %v", ErrInvalidConfig, c.RowHeight)
	}

	columns := make(map[string]models.Symbology)
	for _, kind := range c.Enabled() {
		sc := c.Style(kind)
		if sc.Column == "" {
			return fmt.Errorf("%w: %s column is empty", ErrInvalidConfig, kind)
		}
		if other, ok := columns[sc.Column]; ok {
			return fmt.Errorf("%w: %s and %s share column %q", ErrInvalidConfig, other, kind, sc.Column)
		}
		columns[sc.Column] = kind
		if sc.Column == c.SourceColumn {
			return fmt.Errorf("%w: %s column %q overwrites the source column", ErrInvalidConfig, kind, sc.Column)
		}
		if sc.EmbedWidth <= 0 || sc.EmbedHeight <= 0 {
			return fmt.Errorf("%w: %s embed size must be positive, got %dx%d",
				ErrInvalidConfig, kind, sc.EmbedWidth, sc.EmbedHeight)
		}
		if err := sc.Style.Validate(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, kind, err)
		}
	}
	return nil
}
