// Package codec converts between contract wire encodings and native Go values.
//
// Every contract return value is classified once into a Value variant at the
// RPC boundary; the Decode functions then handle each variant exhaustively.
package codec

import (
	"math/big"
	"strings"
)

// Shape identifies the wire shape a Value was read from.
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapePlain
	ShapeNumber
	ShapeBool
	ShapeChunkedBytes
	ShapeSplitWide
)

func (s Shape) String() string {
	switch s {
	case ShapePlain:
		return "plain"
	case ShapeNumber:
		return "number"
	case ShapeBool:
		return "bool"
	case ShapeChunkedBytes:
		return "chunked_bytes"
	case ShapeSplitWide:
		return "split_wide"
	default:
		return "unknown"
	}
}

// Value is a contract value tagged with its wire shape.
type Value interface {
	Shape() Shape
}

// Plain is native text, either a string or the textual form of a number.
type Plain struct {
	Text string
}

// Number is a single felt or integer.
type Number struct {
	Int *big.Int
}

// Bool is a native boolean.
type Bool struct {
	Value bool
}

// ChunkedBytes is a Cairo ByteArray: full 31-byte words plus a partial word.
type ChunkedBytes struct {
	Words       []*big.Int
	PendingWord *big.Int
	PendingLen  int
}

// SplitWide is a 256-bit unsigned integer carried as two 128-bit words.
type SplitWide struct {
	Low  *big.Int
	High *big.Int
}

// Unknown holds a value whose shape could not be recognised.
type Unknown struct {
	Raw string
}

func (Plain) Shape() Shape        { return ShapePlain }
func (Number) Shape() Shape       { return ShapeNumber }
func (Bool) Shape() Shape         { return ShapeBool }
func (ChunkedBytes) Shape() Shape { return ShapeChunkedBytes }
func (SplitWide) Shape() Shape    { return ShapeSplitWide }
func (Unknown) Shape() Shape      { return ShapeUnknown }

// ShapeOf reports the shape of v, treating nil as unknown.
func ShapeOf(v Value) Shape {
	if v == nil {
		return ShapeUnknown
	}
	return v.Shape()
}

// NumberOf wraps an unsigned integer as a Number.
func NumberOf(n uint64) Number {
	return Number{Int: new(big.Int).SetUint64(n)}
}

// String decodes the byte array back into text.
func (c ChunkedBytes) String() string {
	var sb strings.Builder
	for _, word := range c.Words {
		sb.Write(wordBytes(word, WordBytes))
	}
	if c.PendingWord != nil && c.PendingLen > 0 {
		tail := wordBytes(c.PendingWord, c.PendingLen)
		if len(tail) > c.PendingLen {
			tail = tail[:c.PendingLen]
		}
		sb.Write(tail)
	}
	return sb.String()
}
