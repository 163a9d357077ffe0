package codec

import (
	"fmt"
	"math/big"
	"strings"
)

// ByteArrayOf splits s into 31-byte words and a trailing partial word.
func ByteArrayOf(s string) ChunkedBytes {
	raw := []byte(s)
	full := len(raw) / WordBytes
	words := make([]*big.Int, 0, full)
	for i := 0; i < full; i++ {
		words = append(words, new(big.Int).SetBytes(raw[i*WordBytes:(i+1)*WordBytes]))
	}
	rest := raw[full*WordBytes:]
	return ChunkedBytes{
		Words:       words,
		PendingWord: new(big.Int).SetBytes(rest),
		PendingLen:  len(rest),
	}
}

// Felts returns the calldata form: word count, words, pending word, pending length.
func (c ChunkedBytes) Felts() []string {
	out := make([]string, 0, len(c.Words)+3)
	out = append(out, FormatDec(big.NewInt(int64(len(c.Words)))))
	for _, word := range c.Words {
		out = append(out, FormatDec(word))
	}
	out = append(out, FormatDec(c.PendingWord), FormatDec(big.NewInt(int64(c.PendingLen))))
	return out
}

// EncodeByteArray returns the calldata felts of s as a Cairo ByteArray.
func EncodeByteArray(s string) []string {
	return ByteArrayOf(s).Felts()
}

// SplitU256 splits n at bit 128.
func SplitU256(n *big.Int) (SplitWide, error) {
	if n == nil || n.Sign() < 0 || n.Cmp(two256) >= 0 {
		return SplitWide{}, fmt.Errorf("%w: %v is not a u256", ErrOutOfRange, n)
	}
	return SplitWide{
		Low:  new(big.Int).And(n, mask128),
		High: new(big.Int).Rsh(n, 128),
	}, nil
}

// EncodeU256 returns the calldata felts [low, high] of n.
func EncodeU256(n *big.Int) ([]string, error) {
	wide, err := SplitU256(n)
	if err != nil {
		return nil, err
	}
	return Flatten(wide)
}

// Flatten compiles any value into calldata felts.
func Flatten(v Value) ([]string, error) {
	switch x := v.(type) {
	case Number:
		if x.Int == nil || x.Int.Sign() < 0 || x.Int.Cmp(FieldPrime) >= 0 {
			return nil, fmt.Errorf("%w: %v is not a felt", ErrOutOfRange, x.Int)
		}
		return []string{FormatDec(x.Int)}, nil
	case Plain:
		n, err := ParseFelt(x.Text)
		if err == nil {
			return []string{FormatDec(n)}, nil
		}
		if looksNumeric(x.Text) {
			return nil, err
		}
		n, err = ShortString(x.Text)
		if err != nil {
			return nil, err
		}
		return []string{FormatDec(n)}, nil
	case Bool:
		if x.Value {
			return []string{"1"}, nil
		}
		return []string{"0"}, nil
	case SplitWide:
		if _, err := joinWide(x); err != nil {
			return nil, err
		}
		return []string{FormatDec(x.Low), FormatDec(x.High)}, nil
	case ChunkedBytes:
		if x.PendingLen < 0 || x.PendingLen >= WordBytes {
			return nil, fmt.Errorf("%w: pending length %d", ErrOutOfRange, x.PendingLen)
		}
		return x.Felts(), nil
	case Unknown:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedShape, x.Raw)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedShape, v)
	}
}

// looksNumeric reports whether text was meant as a number: signed, or made
// only of decimal digits.
func looksNumeric(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	if text[0] == '-' || text[0] == '+' {
		return true
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
