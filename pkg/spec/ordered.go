// SPDX-License-Identifier: MPL-2.0

package spec

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type (
	// OrderedMap is a JSON object that preserves key insertion order across
	// marshal/unmarshal. The spec file is the publisher's durable record and
	// must serialize byte-identically for unchanged content, so map iteration
	// order cannot be allowed to leak into the file.
	OrderedMap struct {
		keys   []string
		values map[string]json.RawMessage
	}
)

// NewOrderedMap returns an empty OrderedMap.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{values: make(map[string]json.RawMessage)}
}

// Set stores the JSON encoding of value under key. A key set twice keeps its
// original position.
func (m *OrderedMap) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %q: %w", key, err)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = raw
	return nil
}

// Get returns the raw JSON stored under key.
func (m *OrderedMap) Get(key string) (json.RawMessage, bool) {
	raw, ok := m.values[key]
	return raw, ok
}

// Keys returns the keys in insertion order.
func (m *OrderedMap) Keys() []string {
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Len returns the number of stored keys.
func (m *OrderedMap) Len() int { return len(m.keys) }

// MarshalJSON writes the object with keys in insertion order.
func (m *OrderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		buf.Write(m.values[key])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object, recording keys in document order.
func (m *OrderedMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("ordered map: expected object, got %v", tok)
	}

	m.keys = nil
	m.values = make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("ordered map: expected string key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("ordered map: value of %q: %w", key, err)
		}
		if _, exists := m.values[key]; !exists {
			m.keys = append(m.keys, key)
		}
		m.values[key] = raw
	}
	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
