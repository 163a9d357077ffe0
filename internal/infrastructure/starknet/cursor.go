package starknet

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/fernetbarato/fernet-barato/api/internal/codec"
)

// ErrShortResult is returned when a result ends before its layout is complete.
var ErrShortResult = errors.New("starknet: result ended early")

// cursor walks the felts of a call result. Structural problems (lengths,
// truncation) are errors; a felt that does not parse is surfaced as
// codec.Unknown so the caller decides whether to default or drop it.
type cursor struct {
	felts []string
	pos   int
}

func newCursor(felts []string) *cursor {
	return &cursor{felts: felts}
}

func (c *cursor) remaining() int {
	return len(c.felts) - c.pos
}

func (c *cursor) next() (string, error) {
	if c.pos >= len(c.felts) {
		return "", fmt.Errorf("%w at felt %d", ErrShortResult, c.pos)
	}
	raw := c.felts[c.pos]
	c.pos++
	return raw, nil
}

// skip advances past n felts.
func (c *cursor) skip(n int) error {
	if n > c.remaining() {
		return fmt.Errorf("%w: need %d felts, have %d", ErrShortResult, n, c.remaining())
	}
	c.pos += n
	return nil
}

func (c *cursor) felt() (codec.Value, error) {
	raw, err := c.next()
	if err != nil {
		return nil, err
	}
	n, err := codec.ParseFelt(raw)
	if err != nil {
		return codec.Unknown{Raw: raw}, nil
	}
	return codec.Number{Int: n}, nil
}

// u256 reads a [low, high] pair.
func (c *cursor) u256() (codec.Value, error) {
	lowRaw, err := c.next()
	if err != nil {
		return nil, err
	}
	highRaw, err := c.next()
	if err != nil {
		return nil, err
	}

	low, lowErr := codec.ParseFelt(lowRaw)
	high, highErr := codec.ParseFelt(highRaw)
	if lowErr != nil || highErr != nil {
		return codec.Unknown{Raw: "[" + lowRaw + "," + highRaw + "]"}, nil
	}
	return codec.SplitWide{Low: low, High: high}, nil
}

// length reads an array or word count, which must fit the remaining felts.
func (c *cursor) length(perItem int) (int, error) {
	raw, err := c.next()
	if err != nil {
		return 0, err
	}
	n, err := codec.ParseFelt(raw)
	if err != nil {
		return 0, fmt.Errorf("length at felt %d: %w", c.pos-1, err)
	}
	if perItem < 1 {
		perItem = 1
	}
	if !n.IsInt64() || n.Int64() > int64(c.remaining()/perItem) {
		return 0, fmt.Errorf("%w: length %s exceeds %d remaining felts", ErrShortResult, n, c.remaining())
	}
	return int(n.Int64()), nil
}

// byteArray reads [data_len, words..., pending_word, pending_len].
func (c *cursor) byteArray() (codec.Value, error) {
	start := c.pos
	count, err := c.length(1)
	if err != nil {
		return nil, err
	}
	if err := c.skip(count + 2); err != nil {
		return nil, err
	}
	raws := c.felts[start:c.pos]

	value := codec.ChunkedBytes{Words: make([]*big.Int, 0, count)}
	for i, raw := range raws[1:] {
		n, err := codec.ParseFelt(raw)
		if err != nil {
			return unknownOf(raws), nil
		}
		switch {
		case i < count:
			value.Words = append(value.Words, n)
		case i == count:
			value.PendingWord = n
		default:
			if !n.IsInt64() || n.Int64() >= codec.WordBytes {
				return unknownOf(raws), nil
			}
			value.PendingLen = int(n.Int64())
		}
	}
	return value, nil
}

func unknownOf(raws []string) codec.Unknown {
	return codec.Unknown{Raw: "[" + strings.Join(raws, ",") + "]"}
}
