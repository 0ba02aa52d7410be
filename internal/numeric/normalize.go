// Package numeric turns the loosely formatted prices returned by rate providers into float64.
package numeric

import (
	"encoding/json"
	"math"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Unknown is what Normalize returns for input it cannot read.
// A rate of Unknown must never be presented as a real market value.
const Unknown = 0.0

// IsKnown reports whether v carries a real value rather than the Unknown sentinel.
func IsKnown(v float64) bool { return v > 0 }

// Normalize converts v into a finite, non-negative float64 and never fails.
//
// Numbers pass through untouched unless negative; no price is below zero, so negatives
// yield Unknown. Text is read in the es-AR style used by the upstream
// providers: currency symbols and whitespace are dropped, '.' groups thousands and ','
// marks decimals, so "$1.234,56" becomes 1234.56. Anything else yields Unknown.
func Normalize(v any) float64 {
	return nonNegative(convert(v))
}

func convert(v any) float64 {
	switch n := v.(type) {
	case nil:
		return Unknown
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case json.Number:
		return parse(n.String())
	case string:
		return parse(clean(n))
	case []byte:
		return parse(clean(string(n)))
	}
	return Unknown
}

func clean(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsSpace(r), unicode.Is(unicode.Sc, r), r == '.':
			continue
		case r == ',':
			b.WriteByte('.')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func parse(s string) float64 {
	if s == "" {
		return Unknown
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Unknown
	}
	return finite(d.InexactFloat64())
}

func nonNegative(f float64) float64 {
	if f < 0 {
		return Unknown
	}
	return f
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Unknown
	}
	return f
}
