package barcodexl

import (
	"errors"
	"fmt"

	"github.com/ukaji3/barcodexl-go/pkg/barcodexl/models"
	"github.com/ukaji3/barcodexl-go/pkg/barcodexl/symbol"
)

// ErrFileNotFound indicates the input file or directory does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrInvalidFormat indicates the input file is not an xlsx workbook.
var ErrInvalidFormat = errors.New("invalid xlsx format")

// ErrInvalidRowLimit indicates a non-positive rows-per-file setting.
var ErrInvalidRowLimit = errors.New("max rows per file must be a positive integer")

// ErrInvalidConfig indicates any other rejected configuration value.
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrColumnNotFound indicates a required column is missing from a header.
var ErrColumnNotFound = errors.New("column not found")

// ErrNonNumeric indicates a source value that cannot be coerced to an integer.
var ErrNonNumeric = errors.New("non-numeric code")

// ErrInvalidPayload indicates a payload the symbology cannot encode.
var ErrInvalidPayload = symbol.ErrInvalidPayload

// ErrPayloadTooLong indicates a code with more than 13 digits for EAN13.
var ErrPayloadTooLong = errors.New("payload too long")

// IsConfigError reports whether err is a fatal configuration error.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrFileNotFound) ||
		errors.Is(err, ErrInvalidFormat) ||
		errors.Is(err, ErrInvalidRowLimit) ||
		errors.Is(err, ErrInvalidConfig)
}

// RowError represents a recoverable problem with a single row.
type RowError struct {
	Row  int              // 0-based position within the source table
	Kind models.Symbology // empty when the whole row is skipped
	Err  error
}

func (e *RowError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("row %d (%s): %v", e.Row, e.Kind, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// RenderError represents a payload the renderer rejected.
type RenderError struct {
	Kind    models.Symbology
	Payload string
	Err     error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s %q: %v", e.Kind, e.Payload, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// BlockError represents a failure while producing one block's workbook.
type BlockError struct {
	Source string
	Block  int
	Stage  string // "layout", "render", "annotate"
	Err    error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("block %d of %q (%s): %v", e.Block, e.Source, e.Stage, e.Err)
}

func (e *BlockError) Unwrap() error {
	return e.Err
}

// NewBlockError creates a new BlockError.
func NewBlockError(source string, block int, stage string, err error) *BlockError {
	return &BlockError{
		Source: source,
		Block:  block,
		Stage:  stage,
		Err:    err,
	}
}
