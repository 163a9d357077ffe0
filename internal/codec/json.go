package codec

import (
	"fmt"
	"math/big"

	"github.com/tidwall/gjson"
)

// FromJSON classifies a JSON value into one of the known wire shapes.
func FromJSON(r gjson.Result) Value {
	switch r.Type {
	case gjson.String:
		return Plain{Text: r.Str}
	case gjson.Number:
		if n, ok := wholeNumber(r.Raw); ok {
			return Number{Int: n}
		}
	case gjson.True:
		return Bool{Value: true}
	case gjson.False:
		return Bool{Value: false}
	case gjson.JSON:
		if r.IsObject() {
			low, high := r.Get("low"), r.Get("high")
			if low.Exists() && high.Exists() {
				return splitFromJSON(low, high, r.Raw)
			}
			if data := r.Get("data"); data.IsArray() {
				return chunkedFromJSON(r)
			}
		}
		if r.IsArray() {
			if items := r.Array(); len(items) == 2 {
				return splitFromJSON(items[0], items[1], r.Raw)
			}
		}
	}
	return Unknown{Raw: r.Raw}
}

// ParseJSON classifies raw JSON text.
func ParseJSON(raw string) Value {
	if !gjson.Valid(raw) {
		return Unknown{Raw: raw}
	}
	return FromJSON(gjson.Parse(raw))
}

func splitFromJSON(low, high gjson.Result, raw string) Value {
	l, err := jsonInteger(low)
	if err != nil {
		return Unknown{Raw: raw}
	}
	h, err := jsonInteger(high)
	if err != nil {
		return Unknown{Raw: raw}
	}
	return SplitWide{Low: l, High: h}
}

func chunkedFromJSON(r gjson.Result) Value {
	var words []*big.Int
	for _, item := range r.Get("data").Array() {
		word, err := jsonInteger(item)
		if err != nil {
			return Unknown{Raw: r.Raw}
		}
		words = append(words, word)
	}

	out := ChunkedBytes{Words: words, PendingWord: new(big.Int)}
	if pending := r.Get("pending_word"); pending.Exists() {
		word, err := jsonInteger(pending)
		if err != nil {
			return Unknown{Raw: r.Raw}
		}
		out.PendingWord = word
	}
	if pendingLen := r.Get("pending_word_len"); pendingLen.Exists() {
		n, err := jsonInteger(pendingLen)
		if err != nil || !n.IsInt64() || n.Int64() >= WordBytes {
			return Unknown{Raw: r.Raw}
		}
		out.PendingLen = int(n.Int64())
	}
	return out
}

func jsonInteger(r gjson.Result) (*big.Int, error) {
	switch r.Type {
	case gjson.Number:
		if n, ok := wholeNumber(r.Raw); ok && n.Sign() >= 0 {
			return n, nil
		}
	case gjson.String:
		return ParseFelt(r.Str)
	}
	return nil, fmt.Errorf("%w: %s", ErrMalformedFelt, r.Raw)
}

// maxNumberBits bounds JSON numbers written in exponent form; nothing wider
// than a u256 is meaningful calldata.
const maxNumberBits = 256

// wholeNumber reads a JSON number literal such as 1500, 1500.0 or 1.5e3.
// Numbers with a fractional part are rejected.
func wholeNumber(raw string) (*big.Int, bool) {
	if n, ok := new(big.Int).SetString(raw, 10); ok {
		return n, true
	}
	f, _, err := new(big.Float).SetPrec(maxNumberBits+64).Parse(raw, 10)
	if err != nil || f.IsInf() || !f.IsInt() {
		return nil, false
	}
	if f.MantExp(nil) > maxNumberBits {
		return nil, false
	}
	n, _ := f.Int(nil)
	return n, true
}
