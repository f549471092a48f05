package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Monto is a money amount exactly as the operator typed it. It accepts a
// JSON string or number and keeps the raw text: parsing and range checks
// happen in the services so "abc" is reported as a field error instead of
// a malformed request.
type Monto string

func (m *Monto) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*m = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = Monto(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("monto: %w", err)
		}
		*m = Monto(n.String())
	}
	return nil
}

func (m Monto) String() string { return string(m) }
