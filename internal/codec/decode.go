package codec

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
)

var (
	// ErrUnsupportedShape is returned when a value's shape cannot serve the requested type.
	ErrUnsupportedShape = errors.New("codec: unsupported value shape")

	// ErrOutOfRange is returned when an integer does not fit the requested width.
	ErrOutOfRange = errors.New("codec: integer out of range")
)

var one = big.NewInt(1)

// DecodeString returns the text carried by v. Unsupported shapes fall back to
// their raw text instead of failing.
func DecodeString(v Value) string {
	switch x := v.(type) {
	case Plain:
		return x.Text
	case ChunkedBytes:
		return x.String()
	case Number:
		if x.Int == nil {
			return ""
		}
		return string(x.Int.Bytes())
	case SplitWide:
		return DecodeWide(x).String()
	case Bool:
		return strconv.FormatBool(x.Value)
	case Unknown:
		return x.Raw
	default:
		return ""
	}
}

// ParseWide reads v as an unsigned integer of up to 256 bits.
func ParseWide(v Value) (*big.Int, error) {
	switch x := v.(type) {
	case Number:
		if x.Int == nil || x.Int.Sign() < 0 {
			return nil, fmt.Errorf("%w: number %v", ErrOutOfRange, x.Int)
		}
		return new(big.Int).Set(x.Int), nil
	case Plain:
		return parseUnsigned(x.Text, two256)
	case SplitWide:
		return joinWide(x)
	case Unknown:
		return parseUnsigned(x.Raw, two256)
	case nil:
		return nil, fmt.Errorf("%w: nil", ErrUnsupportedShape)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedShape, v.Shape())
	}
}

// DecodeWide reads v as an unsigned integer, yielding zero when it cannot.
func DecodeWide(v Value) *big.Int {
	n, err := ParseWide(v)
	if err != nil {
		return new(big.Int)
	}
	return n
}

// ParseUint64 reads v as an integer that fits in 64 bits.
func ParseUint64(v Value) (uint64, error) {
	n, err := ParseWide(v)
	if err != nil {
		return 0, err
	}
	if !n.IsUint64() {
		return 0, fmt.Errorf("%w: %s exceeds 64 bits", ErrOutOfRange, n)
	}
	return n.Uint64(), nil
}

// ParseInt64 reads v as an integer that fits in a signed 64-bit value.
func ParseInt64(v Value) (int64, error) {
	n, err := ParseWide(v)
	if err != nil {
		return 0, err
	}
	if !n.IsInt64() {
		return 0, fmt.Errorf("%w: %s exceeds int64", ErrOutOfRange, n)
	}
	return n.Int64(), nil
}

// DecodeBool is true only for a native true, the number 1 or the text "1".
func DecodeBool(v Value) bool {
	switch x := v.(type) {
	case Bool:
		return x.Value
	case Number:
		return x.Int != nil && x.Int.Cmp(one) == 0
	case Plain:
		return x.Text == "1"
	case Unknown:
		return x.Raw == "1"
	default:
		return false
	}
}

func joinWide(w SplitWide) (*big.Int, error) {
	if w.Low == nil || w.High == nil {
		return nil, fmt.Errorf("%w: split integer missing a word", ErrUnsupportedShape)
	}
	if w.Low.Sign() < 0 || w.High.Sign() < 0 || w.Low.Cmp(two128) >= 0 || w.High.Cmp(two128) >= 0 {
		return nil, fmt.Errorf("%w: split integer word exceeds 128 bits", ErrOutOfRange)
	}
	if w.High.Sign() == 0 {
		return new(big.Int).Set(w.Low), nil
	}
	n := new(big.Int).Lsh(w.High, 128)
	return n.Add(n, w.Low), nil
}
