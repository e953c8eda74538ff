package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SpecMap is the open-ended key→value attribute set of a Part.
//
// JSON objects don't guarantee key order, and Go maps don't keep one either,
// so the map is stored as an ordered slice of entries with uniqueness enforced
// at write time. Insertion order is what the user sees in the editor.
type SpecMap []SpecEntry

type SpecEntry struct {
	Key   string
	Value string
}

func (m SpecMap) Len() int { return len(m) }

func (m SpecMap) Get(key string) (string, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Set updates the value for key in place, or appends a new entry.
func (m SpecMap) Set(key, value string) SpecMap {
	for i, e := range m {
		if e.Key == key {
			out := m.Clone()
			out[i].Value = value
			return out
		}
	}
	out := m.Clone()
	return append(out, SpecEntry{Key: key, Value: value})
}

// Remove drops the entry for key, if present.
func (m SpecMap) Remove(key string) SpecMap {
	out := make(SpecMap, 0, len(m))
	for _, e := range m {
		if e.Key != key {
			out = append(out, e)
		}
	}
	return out
}

// Rename moves the value under oldKey to newKey, appending at the end.
// Renaming onto an existing key overwrites that entry and drops the old one
// (last write wins, matching the original editor's behavior).
func (m SpecMap) Rename(oldKey, newKey string) SpecMap {
	if oldKey == newKey {
		return m
	}
	val, ok := m.Get(oldKey)
	if !ok {
		return m
	}
	out := m.Remove(oldKey)
	return out.Set(newKey, val)
}

// NextPlaceholderKey picks the auto-generated key for a freshly added entry,
// bumping the counter past collisions so keys stay unique.
func (m SpecMap) NextPlaceholderKey() string {
	n := len(m) + 1
	for {
		key := fmt.Sprintf("Параметр %d", n)
		if _, ok := m.Get(key); !ok {
			return key
		}
		n++
	}
}

func (m SpecMap) Clone() SpecMap {
	if m == nil {
		return nil
	}
	out := make(SpecMap, len(m))
	copy(out, m)
	return out
}

// MarshalJSON emits a JSON object preserving entry order. An empty map
// marshals as null, which is how the backend represents "no characteristics".
func (m SpecMap) MarshalJSON() ([]byte, error) {
	if len(m) == 0 {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object token-by-token so the server's key order
// is preserved. Numeric values are kept as their literal text.
func (m *SpecMap) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if bytes.Equal(trimmed, []byte("null")) {
		*m = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("specs: expected object, got %v", tok)
	}
	out := SpecMap{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("specs: non-string key %v", keyTok)
		}
		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		var val string
		switch v := valTok.(type) {
		case string:
			val = v
		case json.Number:
			val = v.String()
		case bool:
			if v {
				val = "true"
			} else {
				val = "false"
			}
		case nil:
			val = ""
		default:
			return fmt.Errorf("specs: unsupported value for %q", key)
		}
		out = out.Set(key, val)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}
