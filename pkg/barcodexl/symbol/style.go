// Package symbol rasterizes Code128 and EAN13 barcodes.
package symbol

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

const mmPerInch = 25.4

// Style configures how a symbol is drawn. Lengths are in millimetres and
// the font size in points, converted to pixels at DPI.
type Style struct {
	ModuleWidth  float64 `yaml:"module_width"`
	ModuleHeight float64 `yaml:"module_height"`
	FontSize     float64 `yaml:"font_size"`
	TextDistance float64 `yaml:"text_distance"`
	QuietZone    float64 `yaml:"quiet_zone"`
	Background   string  `yaml:"background"`
	Foreground   string  `yaml:"foreground"`
	WriteText    bool    `yaml:"write_text"`
	DPI          int     `yaml:"dpi"`
}

// Validate checks that the style can be rendered.
func (s Style) Validate() error {
	var errs []error
	if s.ModuleWidth <= 0 {
		errs = append(errs, fmt.Errorf("module_width must be positive, got %v", s.ModuleWidth))
	}
	if s.ModuleHeight <= 0 {
		errs = append(errs, fmt.Errorf("module_height must be positive, got %v", s.ModuleHeight))
	}
	if s.DPI <= 0 {
		errs = append(errs, fmt.Errorf("dpi must be positive, got %d", s.DPI))
	}
	if s.QuietZone < 0 || s.TextDistance < 0 || s.FontSize < 0 {
		errs = append(errs, errors.New("quiet_zone, text_distance and font_size must not be negative"))
	}
	if _, err := ParseColor(s.Background); err != nil {
		errs = append(errs, fmt.Errorf("background: %w", err))
	}
	if _, err := ParseColor(s.Foreground); err != nil {
		errs = append(errs, fmt.Errorf("foreground: %w", err))
	}
	return errors.Join(errs...)
}

// mmToPixels converts a length in millimetres to whole pixels.
func (s Style) mmToPixels(mm float64) int {
	return int(math.Round(mm * float64(s.DPI) / mmPerInch))
}

// modulePixels is the width of the narrowest bar, never below one pixel.
func (s Style) modulePixels() int {
	return max(1, s.mmToPixels(s.ModuleWidth))
}

// fontPixels is the text height in pixels.
func (s Style) fontPixels() int {
	return int(math.Round(s.FontSize * float64(s.DPI) / 72))
}

// ParseColor accepts an SVG color name ("white") or a "#rrggbb" hex value.
func ParseColor(s string) (color.RGBA, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[name]; ok {
		return c, nil
	}
	if strings.HasPrefix(name, "#") && len(name) == 7 {
		v, err := strconv.ParseUint(name[1:], 16, 32)
		if err == nil {
			return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
		}
	}
	return color.RGBA{}, fmt.Errorf("unknown color %q", s)
}
