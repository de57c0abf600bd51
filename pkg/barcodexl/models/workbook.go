package models

import "fmt"

// Symbology is a barcode encoding scheme.
type Symbology string

const (
	// Code128 is a variable-length linear symbology.
	Code128 Symbology = "code128"
	// EAN13 is a fixed 13-digit linear symbology with a check digit.
	EAN13 Symbology = "ean13"
)

// Symbologies lists the supported kinds in column order.
var Symbologies = []Symbology{Code128, EAN13}

// ParseSymbology converts a name into a Symbology.
func ParseSymbology(s string) (Symbology, error) {
	switch Symbology(s) {
	case Code128, EAN13:
		return Symbology(s), nil
	}
	return "", fmt.Errorf("unknown symbology %q", s)
}

// Block is a contiguous, bounded slice of a table's rows.
type Block struct {
	// Number is the 1-based block number within its source.
	Number int
	// Offset is the source index of the first row in the block.
	Offset int
	// Header is shared with the source table.
	Header []string
	// Rows holds copies of the source rows.
	Rows []Row
}

// Len returns the number of rows in the block.
func (b Block) Len() int { return len(b.Rows) }

// ImageKey identifies one rendered image within a block.
type ImageKey struct {
	// Row is the block-local row position.
	Row  int
	Kind Symbology
}

// RenderedImages maps (row, symbology) to an image path. Absent keys mean
// the combination was skipped.
type RenderedImages map[ImageKey]string

// Path returns the image path for row and kind.
func (r RenderedImages) Path(row int, kind Symbology) (string, bool) {
	p, ok := r[ImageKey{Row: row, Kind: kind}]
	return p, ok
}

// Set records the image path for row and kind.
func (r RenderedImages) Set(row int, kind Symbology, path string) {
	r[ImageKey{Row: row, Kind: kind}] = path
}
