package barcodexl

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ukaji3/barcodexl-go/pkg/barcodexl/models"
)

// ean13Digits is the fixed EAN13 payload length.
const ean13Digits = 13

// Payload is the string encoded for one symbology, or the reason it is absent.
type Payload struct {
	Value string
	Err   error
}

// Present reports whether the payload can be rendered.
func (p Payload) Present() bool { return p.Value != "" && p.Err == nil }

// Payloads holds the derived payload for each symbology.
type Payloads struct {
	Code128 Payload
	EAN13   Payload
}

// For returns the payload for kind.
func (p Payloads) For(kind models.Symbology) Payload {
	if kind == models.Code128 {
		return p.Code128
	}
	return p.EAN13
}

// Derive turns a raw source value into payloads.
//
// Missing values and NaN yield no payloads and no error. Values that cannot
// be coerced to a non-negative integer yield no payloads and an error
// (ErrNonNumeric or ErrInvalidPayload); the caller skips the row. A code
// longer than 13 digits keeps its Code128 payload and carries
// ErrPayloadTooLong on the EAN13 one.
func Derive(v models.Value) (Payloads, error) {
	if v.IsMissing() {
		return Payloads{}, nil
	}

	code, err := canonicalCode(v)
	if err != nil {
		return Payloads{}, err
	}

	p := Payloads{Code128: Payload{Value: code}}
	if len(code) > ean13Digits {
		p.EAN13 = Payload{Err: fmt.Errorf("%w: %d digits exceed %d for ean13", ErrPayloadTooLong, len(code), ean13Digits)}
	} else {
		p.EAN13 = Payload{Value: strings.Repeat("0", ean13Digits-len(code)) + code}
	}
	return p, nil
}

// canonicalCode coerces v to an integer and returns its decimal digits with
// no sign and no leading zeros. Decimals are truncated toward zero.
func canonicalCode(v models.Value) (string, error) {
	var digits string
	switch v.Kind {
	case models.KindInt:
		digits = strconv.FormatInt(v.Int, 10)
	case models.KindFloat:
		if math.IsInf(v.Float, 0) {
			return "", fmt.Errorf("%w: %v", ErrNonNumeric, v.Float)
		}
		digits = strconv.FormatFloat(math.Trunc(v.Float), 'f', 0, 64)
	case models.KindString:
		s, ok := integerLiteral(v.Str)
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrNonNumeric, v.Str)
		}
		digits = s
	default:
		return "", fmt.Errorf("%w: %v", ErrNonNumeric, v)
	}

	if strings.HasPrefix(digits, "-") {
		if strings.TrimLeft(digits[1:], "0") != "" {
			return "", fmt.Errorf("%w: negative code %s", ErrInvalidPayload, digits)
		}
		digits = "0"
	}
	return digits, nil
}

// integerLiteral accepts an optionally signed run of decimal digits,
// ignoring surrounding spaces and digit-group underscores, and returns its
// canonical form.
func integerLiteral(s string) (string, bool) {
	s = strings.TrimSpace(s)
	sign := ""
	switch {
	case strings.HasPrefix(s, "-"):
		sign, s = "-", s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	if s == "" || strings.HasPrefix(s, "_") || strings.HasSuffix(s, "_") || strings.Contains(s, "__") {
		return "", false
	}
	s = strings.ReplaceAll(s, "_", "")
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	s = strings.TrimLeft(s, "0")
	if s == "" {
		return "0", true
	}
	return sign + s, true
}
