package core

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind identifies the concrete type stored in a Mixed.
type Kind uint8

const (
	// KindInvalid represents an invalid kind.
	KindInvalid Kind = iota
	// KindNull represents a null value.
	KindNull
	// KindInt represents a 64-bit integer value.
	KindInt
	// KindBool represents a boolean value.
	KindBool
	// KindFloat represents a 32-bit float value.
	KindFloat
	// KindDouble represents a 64-bit float value.
	KindDouble
	// KindString represents a string value.
	KindString
	// KindBinary represents a byte-slice value.
	KindBinary
	// KindTimestamp represents a timestamp value.
	KindTimestamp
	// KindDecimal represents a decimal value.
	KindDecimal
	// KindObjectID represents an object-id value.
	KindObjectID
	// KindLink represents an object-key link value.
	KindLink
)

// Mixed is a small typed value handed between leaves, predicate nodes and
// aggregate states.
//
// The representation is designed to make predicate evaluation fast and
// predictable: no reflection and no fmt-based stringification.
type Mixed struct {
	Kind Kind
	I64  int64
	F64  float64
	B    bool
	S    string
	Buf  []byte
	TS   Timestamp
	Dec  decimal.Decimal
	OID  ObjectID
}

// Null returns a null value.
func Null() Mixed { return Mixed{Kind: KindNull} }

// Int returns an integer value.
func Int(v int64) Mixed { return Mixed{Kind: KindInt, I64: v} }

// Bool returns a boolean value.
func Bool(v bool) Mixed { return Mixed{Kind: KindBool, B: v} }

// Float returns a 32-bit float value.
func Float(v float32) Mixed { return Mixed{Kind: KindFloat, F64: float64(v)} }

// Double returns a 64-bit float value.
func Double(v float64) Mixed { return Mixed{Kind: KindDouble, F64: v} }

// String returns a string value.
func String(v string) Mixed { return Mixed{Kind: KindString, S: v} }

// Binary returns a byte-slice value. The slice is not copied.
func Binary(v []byte) Mixed { return Mixed{Kind: KindBinary, Buf: v} }

// NewTimestamp returns a timestamp value.
func NewTimestamp(v Timestamp) Mixed { return Mixed{Kind: KindTimestamp, TS: v} }

// Decimal returns a decimal value.
func Decimal(v decimal.Decimal) Mixed { return Mixed{Kind: KindDecimal, Dec: v} }

// NewObjectID returns an object-id value.
func NewObjectID(v ObjectID) Mixed { return Mixed{Kind: KindObjectID, OID: v} }

// Link returns an object-key link value.
func Link(k ObjKey) Mixed { return Mixed{Kind: KindLink, I64: int64(k)} }

// IsNull reports whether the value is null.
func (v Mixed) IsNull() bool { return v.Kind == KindNull }

// Key returns the link value. Valid only for KindLink.
func (v Mixed) Key() ObjKey { return ObjKey(v.I64) }

// IsNumeric reports whether the value is an int, float or double.
func (v Mixed) IsNumeric() bool {
	return v.Kind == KindInt || v.Kind == KindFloat || v.Kind == KindDouble
}

// Float64 returns the numeric value widened to float64.
func (v Mixed) Float64() float64 {
	if v.Kind == KindInt {
		return float64(v.I64)
	}
	return v.F64
}

// Compare orders two values of the same kind. Null sorts before everything;
// numeric kinds compare by widened value. The result is <0, 0 or >0.
// Comparing incomparable kinds returns 0.
func (v Mixed) Compare(o Mixed) int {
	if v.Kind == KindNull || o.Kind == KindNull {
		switch {
		case v.Kind == o.Kind:
			return 0
		case v.Kind == KindNull:
			return -1
		default:
			return 1
		}
	}
	if v.IsNumeric() && o.IsNumeric() {
		if v.Kind == KindInt && o.Kind == KindInt {
			switch {
			case v.I64 < o.I64:
				return -1
			case v.I64 > o.I64:
				return 1
			}
			return 0
		}
		a, b := v.Float64(), o.Float64()
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	}
	if v.Kind != o.Kind {
		return 0
	}
	switch v.Kind {
	case KindBool:
		switch {
		case !v.B && o.B:
			return -1
		case v.B && !o.B:
			return 1
		}
		return 0
	case KindString:
		return strings.Compare(v.S, o.S)
	case KindBinary:
		return bytes.Compare(v.Buf, o.Buf)
	case KindTimestamp:
		return v.TS.Compare(o.TS)
	case KindDecimal:
		return v.Dec.Cmp(o.Dec)
	case KindObjectID:
		return bytes.Compare(v.OID[:], o.OID[:])
	case KindLink:
		switch {
		case v.I64 < o.I64:
			return -1
		case v.I64 > o.I64:
			return 1
		}
		return 0
	default:
		return 0
	}
}

// Equals reports whether two values are equal. Null equals null; float
// kinds additionally treat bit-identical NaN payloads as equal so that a
// stored NaN can be found again.
func (v Mixed) Equals(o Mixed) bool {
	if v.Kind == KindNull || o.Kind == KindNull {
		return v.Kind == o.Kind
	}
	if (v.Kind == KindFloat || v.Kind == KindDouble) && (o.Kind == KindFloat || o.Kind == KindDouble) {
		a, b := v.Float64(), o.Float64()
		return a == b || math.Float64bits(a) == math.Float64bits(b)
	}
	return v.Compare(o) == 0 && comparableKinds(v.Kind, o.Kind)
}

func comparableKinds(a, b Kind) bool {
	if a == b {
		return true
	}
	numeric := func(k Kind) bool { return k == KindInt || k == KindFloat || k == KindDouble }
	return numeric(a) && numeric(b)
}

// String renders the value for query descriptions.
func (v Mixed) String() string {
	switch v.Kind {
	case KindNull:
		return "NULL"
	case KindInt:
		return strconv.FormatInt(v.I64, 10)
	case KindBool:
		if v.B {
			return "true"
		}
		return "false"
	case KindFloat, KindDouble:
		return strconv.FormatFloat(v.F64, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.S)
	case KindBinary:
		return fmt.Sprintf("B64\"%x\"", v.Buf)
	case KindTimestamp:
		return v.TS.String()
	case KindDecimal:
		return v.Dec.String()
	case KindObjectID:
		return v.OID.String()
	case KindLink:
		return fmt.Sprintf("O%d", v.I64)
	default:
		return "invalid"
	}
}
