// Package models defines data structures shared by the barcode pipeline.
package models

import (
	"math"
	"strconv"
)

// ValueKind identifies the scalar type held by a Value.
type ValueKind int

const (
	// KindEmpty marks a missing cell.
	KindEmpty ValueKind = iota
	// KindInt is a whole number.
	KindInt
	// KindFloat is a decimal number.
	KindFloat
	// KindString is free text.
	KindString
)

// Value is a single cell value read from a source table.
type Value struct {
	Kind  ValueKind
	Int   int64
	Float float64
	Str   string
}

// Empty returns the missing-value marker.
func Empty() Value { return Value{Kind: KindEmpty} }

// IntValue wraps an integer.
func IntValue(i int64) Value { return Value{Kind: KindInt, Int: i} }

// FloatValue wraps a decimal number.
func FloatValue(f float64) Value { return Value{Kind: KindFloat, Float: f} }

// StringValue wraps text.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// IsMissing reports whether v is empty or a floating-point NaN.
func (v Value) IsMissing() bool {
	switch v.Kind {
	case KindEmpty:
		return true
	case KindFloat:
		return math.IsNaN(v.Float)
	}
	return false
}

// Interface returns the value in a form accepted by excelize SetCellValue.
func (v Value) Interface() interface{} {
	switch v.Kind {
	case KindInt:
		return v.Int
	case KindFloat:
		if math.IsNaN(v.Float) || math.IsInf(v.Float, 0) {
			return nil
		}
		return v.Float
	case KindString:
		return v.Str
	}
	return nil
}

// String renders the value for log output.
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindString:
		return v.Str
	}
	return ""
}
