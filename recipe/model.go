package recipe

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidName            = errors.New("invalid recipe name")
	ErrMalformedSerialization = errors.New("malformed serialization")
	ErrNotFound               = errors.New("recipe not found")
)

// Config is an ordered list of operation descriptors. Descriptors are kept as
// raw JSON so they round-trip without this package knowing their shape.
type Config []json.RawMessage

// SavedRecipe is a named recipe in the store. Recipe holds the text exactly as
// the user saved it.
type SavedRecipe struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Recipe string `json:"recipe"`
}

// ParseConfig accepts only a JSON array of operation descriptors.
func ParseConfig(text string) (Config, error) {
	trimmed := bytes.TrimSpace([]byte(text))
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, fmt.Errorf("%w: recipe is not a JSON array", ErrMalformedSerialization)
	}
	var cfg Config
	if err := json.Unmarshal(trimmed, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSerialization, err)
	}
	if cfg == nil {
		cfg = Config{}
	}
	return cfg, nil
}

// String returns the compact JSON-array text; an empty Config is "[]".
func (c Config) String() string {
	if len(c) == 0 {
		return "[]"
	}
	b, err := marshalJSON([]json.RawMessage(c))
	if err != nil {
		// Only reachable when a descriptor holds invalid JSON, which
		// ParseConfig and UnmarshalJSON never produce.
		return "[]"
	}
	return string(b)
}

// Pretty is the save-dialog form: one operation per line.
func (c Config) Pretty() string {
	return strings.ReplaceAll(c.String(), "},{", "},\n{")
}

func (c Config) MarshalJSON() ([]byte, error) {
	return []byte(c.String()), nil
}

// marshalJSON encodes v without HTML escaping so the output matches what a
// browser's JSON.stringify produces.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
