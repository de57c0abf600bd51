package symbol

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/barcodexl-go/pkg/barcodexl/models"
)

func testStyle() Style {
	return Style{
		ModuleWidth:  0.2,
		ModuleHeight: 8,
		FontSize:     6,
		TextDistance: 2.5,
		QuietZone:    4,
		Background:   "white",
		Foreground:   "black",
		WriteText:    true,
		DPI:          200,
	}
}

func TestEncodeEAN13ComputesCheckDigit(t *testing.T) {
	bc, err := Encode(models.EAN13, "0000000000042")
	require.NoError(t, err)
	// the 13th payload digit is replaced by the computed check digit
	assert.Equal(t, "000000000004", bc.Content()[:12])
	assert.Len(t, bc.Content(), 13)
	assert.Equal(t, 95, bc.Bounds().Dx())
}

func TestEncodeRejectsInvalidPayloads(t *testing.T) {
	tests := []struct {
		name    string
		kind    models.Symbology
		payload string
	}{
		{"ean13 short", models.EAN13, "123456789012"},
		{"ean13 long", models.EAN13, "12345678901234"},
		{"ean13 letters", models.EAN13, "00000000000AB"},
		{"code128 empty", models.Code128, ""},
		{"unknown kind", models.Symbology("qr"), "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.kind, tt.payload)
			assert.ErrorIs(t, err, ErrInvalidPayload)
		})
	}
}

func TestDrawEAN13Dimensions(t *testing.T) {
	style := testStyle()
	img, err := Draw(models.EAN13, "7790001234567", style)
	require.NoError(t, err)

	// 0.2mm at 200dpi rounds to 2px per module, 4mm quiet zone to 31px
	assert.Equal(t, 95*2+2*31, img.Bounds().Dx())
	assert.Greater(t, img.Bounds().Dy(), style.mmToPixels(style.ModuleHeight))

	// quiet zone keeps the background color
	r, g, b, _ := img.At(0, img.Bounds().Dy()/2).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b})
}

func TestDrawUsesForegroundColor(t *testing.T) {
	style := testStyle()
	style.Foreground = "#ff0000"
	style.WriteText = false

	img, err := Draw(models.EAN13, "0000000000042", style)
	require.NoError(t, err)

	quiet := style.mmToPixels(style.QuietZone)
	// EAN13 starts with the 101 guard: first module is a bar
	c := color.RGBAModel.Convert(img.At(quiet, 2*style.modulePixels()+1)).(color.RGBA)
	assert.Equal(t, color.RGBA{R: 0xff, A: 0xff}, c)
}

func TestDrawWithoutTextIsShorter(t *testing.T) {
	style := testStyle()
	withText, err := Draw(models.Code128, "42", style)
	require.NoError(t, err)

	style.WriteText = false
	withoutText, err := Draw(models.Code128, "42", style)
	require.NoError(t, err)

	assert.Equal(t, withText.Bounds().Dx(), withoutText.Bounds().Dx())
	assert.Less(t, withoutText.Bounds().Dy(), withText.Bounds().Dy())
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("White")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, c)

	c, err = ParseColor("#102030")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff}, c)

	_, err = ParseColor("not-a-color")
	assert.Error(t, err)
}

func TestStyleValidate(t *testing.T) {
	assert.NoError(t, testStyle().Validate())

	bad := testStyle()
	bad.DPI = 0
	bad.ModuleWidth = -1
	bad.Foreground = "nope"
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dpi")
	assert.Contains(t, err.Error(), "module_width")
	assert.Contains(t, err.Error(), "foreground")
}
