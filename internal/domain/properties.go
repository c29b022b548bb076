package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Property is a single user-defined key/value attribute of an item.
type Property struct {
	Key   string
	Value string
}

// Properties is an ordered association list. Order is user-visible: the
// property editor lists entries in this order and renames keep a key at its
// original index. A nil Properties is empty and ready to use.
type Properties []Property

// NewProperties builds Properties from alternating key, value arguments.
// A trailing key without a value gets the empty string.
func NewProperties(kv ...string) Properties {
	var p Properties
	for i := 0; i < len(kv); i += 2 {
		v := ""
		if i+1 < len(kv) {
			v = kv[i+1]
		}
		p = p.Set(kv[i], v)
	}
	return p
}

// Index returns the position of key, or -1.
func (p Properties) Index(key string) int {
	for i, kv := range p {
		if kv.Key == key {
			return i
		}
	}
	return -1
}

// Get returns the value stored under key.
func (p Properties) Get(key string) (string, bool) {
	if i := p.Index(key); i >= 0 {
		return p[i].Value, true
	}
	return "", false
}

// Has reports whether key is present.
func (p Properties) Has(key string) bool {
	return p.Index(key) >= 0
}

// Keys returns the keys in order.
func (p Properties) Keys() []string {
	keys := make([]string, len(p))
	for i, kv := range p {
		keys[i] = kv.Key
	}
	return keys
}

// Set returns a copy of p with key set to value. An existing key keeps its
// position; a new key is appended.
func (p Properties) Set(key, value string) Properties {
	out := p.Clone()
	if i := out.Index(key); i >= 0 {
		out[i].Value = value
		return out
	}
	return append(out, Property{Key: key, Value: value})
}

// Delete returns a copy of p without key.
func (p Properties) Delete(key string) Properties {
	out := make(Properties, 0, len(p))
	for _, kv := range p {
		if kv.Key != key {
			out = append(out, kv)
		}
	}
	return out
}

// Rename returns a copy of p where oldKey is replaced by newKey at the same
// index. If value is non-nil it replaces the stored value, otherwise the old
// value is carried over. The second result is false, and p is returned
// unchanged, when oldKey is absent or newKey already names another entry.
func (p Properties) Rename(oldKey, newKey string, value *string) (Properties, bool) {
	i := p.Index(oldKey)
	if i < 0 {
		return p, false
	}
	if newKey != oldKey && p.Has(newKey) {
		return p, false
	}
	out := p.Clone()
	out[i].Key = newKey
	if value != nil {
		out[i].Value = *value
	}
	return out, true
}

// Clone returns an independent copy.
func (p Properties) Clone() Properties {
	if p == nil {
		return nil
	}
	out := make(Properties, len(p))
	copy(out, p)
	return out
}

// Equal reports whether both lists hold the same pairs in the same order.
func (p Properties) Equal(q Properties) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

func (p Properties) String() string {
	parts := make([]string, len(p))
	for i, kv := range p {
		parts[i] = kv.Key + "=" + kv.Value
	}
	return strings.Join(parts, ",")
}

// MarshalJSON encodes p as a JSON object whose member order follows p.
func (p Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(kv.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(kv.Value)
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

// UnmarshalJSON decodes a JSON object keeping member order. Non-string
// values are kept as their JSON text; null becomes the empty string.
func (p *Properties) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*p = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("properties: expected object, got %v", tok)
	}

	var out Properties
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("properties: expected key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("properties: value for %q: %w", key, err)
		}
		out = out.Set(key, rawString(raw))
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*p = out
	return nil
}

func rawString(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	return string(trimmed)
}
