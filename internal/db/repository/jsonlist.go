package repository

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// TextList is a string list persisted as a JSON array in a TEXT column.
type TextList []string

// Value encodes the list as text. A nil list is stored as "[]".
func (l TextList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode([]string(l)); err != nil {
		return nil, fmt.Errorf("encode text list: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// Scan decodes a JSON array. NULL, empty text and "null" yield an empty list.
func (l *TextList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = TextList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("scan text list: unsupported type %T", src)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*l = TextList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("scan text list: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*l = out
	return nil
}
