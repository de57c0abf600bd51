package barcodexl

import (
	"bufio"
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/ukaji3/barcodexl-go/pkg/barcodexl/models"
	"github.com/ukaji3/barcodexl-go/pkg/barcodexl/symbol"
)

// ImageExtension is the extension of rendered images.
const ImageExtension = ".png"

// Renderer writes a barcode image for payload to dest.
//
// Implementations return a *RenderError for payloads the symbology rejects;
// any other error is an I/O failure.
type Renderer interface {
	Render(payload string, kind models.Symbology, style symbol.Style, dest string) error
}

// ImageName returns "{payload}_{kind}_{row}.png". The row index keeps rows
// with identical payloads apart.
func ImageName(payload string, kind models.Symbology, row int) string {
	return fmt.Sprintf("%s_%s_%d%s", payload, kind, row, ImageExtension)
}

// PNGRenderer draws symbols with the symbol package and encodes them as PNG.
type PNGRenderer struct{}

// Render implements Renderer.
func (PNGRenderer) Render(payload string, kind models.Symbology, style symbol.Style, dest string) error {
	img, err := symbol.Draw(kind, payload, style)
	if err != nil {
		if errors.Is(err, symbol.ErrInvalidPayload) {
			return &RenderError{Kind: kind, Payload: payload, Err: err}
		}
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	if err := png.Encode(w, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", dest, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
