package symbol

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/ean"
	"github.com/ukaji3/barcodexl-go/pkg/barcodexl/models"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ErrInvalidPayload is returned when a payload cannot be encoded by the
// requested symbology.
var ErrInvalidPayload = errors.New("invalid payload")

// Encode validates payload for kind and returns its bar pattern.
// EAN13 payloads must be exactly 13 digits; the first 12 are encoded and
// the check digit is computed by the symbology.
func Encode(kind models.Symbology, payload string) (barcode.Barcode, error) {
	switch kind {
	case models.Code128:
		if payload == "" {
			return nil, fmt.Errorf("%w: empty code128 payload", ErrInvalidPayload)
		}
		bc, err := code128.Encode(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		return bc, nil
	case models.EAN13:
		if len(payload) != 13 || !isDigits(payload) {
			return nil, fmt.Errorf("%w: ean13 requires 13 digits, got %q", ErrInvalidPayload, payload)
		}
		bc, err := ean.Encode(payload[:12])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		return bc, nil
	}
	return nil, fmt.Errorf("%w: unsupported symbology %q", ErrInvalidPayload, kind)
}

// Draw renders payload as kind using style.
func Draw(kind models.Symbology, payload string, style Style) (image.Image, error) {
	bc, err := Encode(kind, payload)
	if err != nil {
		return nil, err
	}
	bg, err := ParseColor(style.Background)
	if err != nil {
		return nil, err
	}
	fg, err := ParseColor(style.Foreground)
	if err != nil {
		return nil, err
	}

	module := style.modulePixels()
	quiet := style.mmToPixels(style.QuietZone)
	barHeight := max(1, style.mmToPixels(style.ModuleHeight))
	margin := 2 * module
	modules := bc.Bounds().Dx()

	width := modules*module + 2*quiet
	height := margin + barHeight + margin

	var label *image.RGBA
	textGap := 0
	if style.WriteText && style.fontPixels() > 0 {
		label = drawLabel(bc.Content(), fg, style.fontPixels(), width)
		textGap = style.mmToPixels(style.TextDistance)
		height += textGap + label.Bounds().Dy()
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	ink := image.NewUniform(fg)
	origin := bc.Bounds().Min
	for x := 0; x < modules; x++ {
		if !isDark(bc.At(origin.X+x, origin.Y)) {
			continue
		}
		bar := image.Rect(quiet+x*module, margin, quiet+(x+1)*module, margin+barHeight)
		draw.Draw(img, bar, ink, image.Point{}, draw.Src)
	}

	if label != nil {
		lb := label.Bounds()
		left := (width - lb.Dx()) / 2
		top := margin + barHeight + textGap
		draw.Draw(img, image.Rect(left, top, left+lb.Dx(), top+lb.Dy()), label, lb.Min, draw.Over)
	}

	return img, nil
}

// drawLabel renders text with the fixed bitmap face and scales it to
// pixelHeight, shrinking further if it would exceed maxWidth.
func drawLabel(text string, fg color.Color, pixelHeight, maxWidth int) *image.RGBA {
	face := basicfont.Face7x13
	d := &font.Drawer{Face: face}
	srcW := max(1, d.MeasureString(text).Ceil())
	srcH := face.Height

	src := image.NewRGBA(image.Rect(0, 0, srcW, srcH))
	d.Dst = src
	d.Src = image.NewUniform(fg)
	d.Dot = fixed.P(0, face.Ascent)
	d.DrawString(text)

	dstH := pixelHeight
	dstW := srcW * dstH / srcH
	if dstW > maxWidth && maxWidth > 0 {
		dstW = maxWidth
		dstH = max(1, srcH*dstW/srcW)
	}
	dst := image.NewRGBA(image.Rect(0, 0, max(1, dstW), max(1, dstH)))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst
}

func isDark(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return (r+g+b)/3 < 0x8000
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
