// Package normalize implements per-field canonicalization for raw feed
// values. Every function here is total: malformed input degrades to a
// null value or a best-effort string, never an error, so a bad cell can
// never drop its row.
package normalize

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind declares the semantic field kind that drives normalization.
type Kind int

const (
	KindIdentifier Kind = iota // trimmed, case preserved, numerics stringified
	KindName                   // trimmed only
	KindText                   // trimmed + lower-cased
	KindCode                   // trimmed, upper-cased, non A-Z stripped
	KindAmount                 // exact decimal, null on parse failure
	KindTimestamp              // ordered-fallback UTC parse, null on failure
)

// Apply normalizes v according to kind. The concrete result type is
// string for identifier/name/text/code, decimal.NullDecimal for amount
// and *time.Time for timestamp.
func Apply(kind Kind, v any) any {
	switch kind {
	case KindIdentifier:
		return Identifier(v)
	case KindName:
		return Name(v)
	case KindText:
		return Text(v)
	case KindCode:
		return Code(v)
	case KindAmount:
		return Amount(v)
	case KindTimestamp:
		return Timestamp(v)
	default:
		return Identifier(v)
	}
}

// Identifier coerces v to a trimmed string. Identifiers are never
// case-folded; numeric identifiers are rendered without an exponent so
// an account id that arrives as 1234567 becomes "1234567".
func Identifier(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case int:
		return strconv.Itoa(s)
	case int32:
		return strconv.FormatInt(int64(s), 10)
	case int64:
		return strconv.FormatInt(s, 10)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Name trims surrounding whitespace and preserves case. Non-string
// input is treated as missing.
func Name(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// Text trims and lower-cases freeform enumerable text such as statuses,
// transaction types and payment methods. Non-string input is treated as
// missing.
func Text(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(s))
}

// Code canonicalizes a currency code: trim, upper-case, then drop every
// character outside A-Z, so " php " and "P-H-P" both become "PHP".
// Non-string input is treated as missing.
func Code(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	s = strings.ToUpper(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Amount parses v as an exact decimal. Anything unparseable yields an
// invalid NullDecimal; downstream auditing sees the null instead of a
// fabricated zero.
func Amount(v any) decimal.NullDecimal {
	switch n := v.(type) {
	case nil:
		return decimal.NullDecimal{}
	case decimal.NullDecimal:
		return n
	case decimal.Decimal:
		return decimal.NullDecimal{Decimal: n, Valid: true}
	case *big.Rat:
		if n == nil {
			return decimal.NullDecimal{}
		}
		return decimal.NullDecimal{Decimal: decimal.NewFromBigRat(n, ratScale), Valid: true}
	case float64:
		return decimal.NullDecimal{Decimal: decimal.NewFromFloat(n), Valid: true}
	case float32:
		return decimal.NullDecimal{Decimal: decimal.NewFromFloat32(n), Valid: true}
	case int:
		return decimal.NullDecimal{Decimal: decimal.NewFromInt(int64(n)), Valid: true}
	case int32:
		return decimal.NullDecimal{Decimal: decimal.NewFromInt32(n), Valid: true}
	case int64:
		return decimal.NullDecimal{Decimal: decimal.NewFromInt(n), Valid: true}
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return decimal.NullDecimal{}
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.NullDecimal{}
		}
		return decimal.NullDecimal{Decimal: d, Valid: true}
	default:
		return decimal.NullDecimal{}
	}
}

// ratScale is the decimal scale used when converting *big.Rat values
// coming back from NUMERIC columns; it matches BigQuery's NUMERIC scale.
const ratScale = 9
