package codec

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// WordBytes is the number of bytes packed into one felt of a byte array.
const WordBytes = 31

var (
	// ErrMalformedFelt is returned when text cannot be read as a field element.
	ErrMalformedFelt = errors.New("codec: malformed felt")

	// ErrShortStringTooLong is returned when a short string does not fit in one felt.
	ErrShortStringTooLong = errors.New("codec: short string exceeds 31 bytes")

	// FieldPrime is the Starknet field modulus 2^251 + 17*2^192 + 1.
	FieldPrime = func() *big.Int {
		p := new(big.Int).Lsh(big.NewInt(1), 251)
		p.Add(p, new(big.Int).Lsh(big.NewInt(17), 192))
		return p.Add(p, big.NewInt(1))
	}()

	two128  = new(big.Int).Lsh(big.NewInt(1), 128)
	two256  = new(big.Int).Lsh(big.NewInt(1), 256)
	mask128 = new(big.Int).Sub(two128, big.NewInt(1))
)

// ParseFelt reads a decimal or 0x-prefixed hexadecimal field element.
func ParseFelt(raw string) (*big.Int, error) {
	return parseUnsigned(raw, FieldPrime)
}

func parseUnsigned(raw string, limit *big.Int) (*big.Int, error) {
	text := strings.TrimSpace(raw)
	digits, base := text, 10
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		digits, base = text[2:], 16
	}
	if digits == "" || strings.HasPrefix(digits, "+") || strings.HasPrefix(digits, "-") {
		return nil, fmt.Errorf("%w: %q", ErrMalformedFelt, raw)
	}
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMalformedFelt, raw)
	}
	if n.Cmp(limit) >= 0 {
		return nil, fmt.Errorf("%w: %q out of range", ErrMalformedFelt, raw)
	}
	return n, nil
}

// FormatHex renders n as a 0x-prefixed lowercase hex felt.
func FormatHex(n *big.Int) string {
	if n == nil || n.Sign() == 0 {
		return "0x0"
	}
	return "0x" + n.Text(16)
}

// FormatDec renders n as a decimal felt.
func FormatDec(n *big.Int) string {
	if n == nil {
		return "0"
	}
	return n.String()
}

// ShortString packs s into a single felt.
func ShortString(s string) (*big.Int, error) {
	if len(s) > WordBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortStringTooLong, len(s))
	}
	return new(big.Int).SetBytes([]byte(s)), nil
}

// wordBytes returns the big-endian bytes of n left-padded to size.
func wordBytes(n *big.Int, size int) []byte {
	if n == nil {
		return nil
	}
	b := n.Bytes()
	if len(b) >= size {
		return b
	}
	padded := make([]byte, size)
	copy(padded[size-len(b):], b)
	return padded
}
