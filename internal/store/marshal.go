package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/sdbind/internal/ir"
)

// marshalValue converts a scope value to canonical JSON TEXT for storage.
// Values outside the value model (structs, channels) are stored as their
// display string so that journaling never fails an update.
func marshalValue(v any) (string, error) {
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		data, err = ir.MarshalCanonical(ir.String(v))
		if err != nil {
			return "", fmt.Errorf("marshal value: %w", err)
		}
	}
	return string(data), nil
}

// unmarshalValue parses canonical JSON TEXT back into the value model.
// Numbers are decoded via json.Number so integers above 2^53 keep their
// precision.
func unmarshalValue(data string) (any, error) {
	if data == "" {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("unmarshal value: %w", err)
	}
	return ir.Normalize(v), nil
}

// marshalKeys stores a key list as a canonical JSON array.
func marshalKeys(keys []string) (string, error) {
	if keys == nil {
		keys = []string{}
	}
	data, err := ir.MarshalCanonical(keys)
	if err != nil {
		return "", fmt.Errorf("marshal keys: %w", err)
	}
	return string(data), nil
}

// unmarshalKeys parses a stored key list.
func unmarshalKeys(data string) ([]string, error) {
	keys := []string{}
	if data == "" {
		return keys, nil
	}
	if err := json.Unmarshal([]byte(data), &keys); err != nil {
		return nil, fmt.Errorf("unmarshal keys: %w", err)
	}
	return keys, nil
}
