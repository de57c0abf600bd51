package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueIsMissing(t *testing.T) {
	assert.True(t, Empty().IsMissing())
	assert.True(t, FloatValue(math.NaN()).IsMissing())
	assert.False(t, FloatValue(1.5).IsMissing())
	assert.False(t, IntValue(0).IsMissing())
	assert.False(t, StringValue("").IsMissing())
}

func TestValueInterface(t *testing.T) {
	assert.Equal(t, int64(7), IntValue(7).Interface())
	assert.Equal(t, 2.5, FloatValue(2.5).Interface())
	assert.Equal(t, "x", StringValue("x").Interface())
	assert.Nil(t, Empty().Interface())
	assert.Nil(t, FloatValue(math.Inf(1)).Interface())
}

func TestRowValueOutOfRange(t *testing.T) {
	row := Row{Values: []Value{IntValue(1)}}
	assert.Equal(t, IntValue(1), row.Value(0))
	assert.True(t, row.Value(3).IsMissing())
	assert.True(t, row.Value(-1).IsMissing())
}

func TestTableColumnIndex(t *testing.T) {
	table := &Table{Header: []string{"nombre", "cod_barras"}}
	assert.Equal(t, 1, table.ColumnIndex("cod_barras"))
	assert.Equal(t, -1, table.ColumnIndex("ean13"))
}

func TestRenderedImages(t *testing.T) {
	images := make(RenderedImages)
	images.Set(3, EAN13, "a.png")

	p, ok := images.Path(3, EAN13)
	assert.True(t, ok)
	assert.Equal(t, "a.png", p)

	_, ok = images.Path(3, Code128)
	assert.False(t, ok)
}

func TestParseSymbology(t *testing.T) {
	s, err := ParseSymbology("ean13")
	assert.NoError(t, err)
	assert.Equal(t, EAN13, s)

	_, err = ParseSymbology("qr")
	assert.Error(t, err)
}
