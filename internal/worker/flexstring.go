package worker

import (
	"bytes"
	"fmt"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// flexString decodes a JSON string, number or null into an optional string.
// Spreadsheet exports of the worker file sometimes carry IDs and phone
// numbers as bare numbers.
type flexString struct {
	v *string
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		f.v = nil
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f.v = &s
		return nil
	}

	if _, err := strconv.ParseFloat(string(b), 64); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidValue, b)
	}
	s := string(b)
	f.v = &s
	return nil
}
