package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"
)

// ErrInvalidBody is returned for unreadable or non-JSON request bodies.
var ErrInvalidBody = errors.New("Invalid JSON body")

// ReadJSON reads a size-limited JSON body for shape-tolerant field access.
func ReadJSON(w http.ResponseWriter, r *http.Request) (gjson.Result, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxRequestBody))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, ErrInvalidBody
	}
	return gjson.ParseBytes(raw), nil
}

// DecodeJSON decodes a size-limited JSON body into dst.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestBody))
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return nil
}
