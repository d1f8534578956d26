package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type MetaKind int

const (
	MetaOther MetaKind = iota
	MetaString
	MetaDate
)

// MetaValue is one metadata value. Content-cloud metadata is loosely typed;
// a value is either a plain string, a date input object carrying
// milliseconds since the epoch, or anything else (kept as raw text).
type MetaValue struct {
	kind MetaKind
	str  string
	ms   int64
}

func StringValue(s string) MetaValue { return MetaValue{kind: MetaString, str: s} }

func DateValue(msSinceEpoch int64) MetaValue { return MetaValue{kind: MetaDate, ms: msSinceEpoch} }

// OtherValue wraps a value of no known shape. raw is its textual form
// (JSON text or YAML scalar).
func OtherValue(raw string) MetaValue { return MetaValue{kind: MetaOther, str: raw} }

func (v MetaValue) Kind() MetaKind { return v.kind }

func (v MetaValue) AsString() (string, bool) {
	if v.kind != MetaString {
		return "", false
	}
	return v.str, true
}

func (v MetaValue) AsDate() (time.Time, bool) {
	if v.kind != MetaDate {
		return time.Time{}, false
	}
	return time.UnixMilli(v.ms).UTC(), true
}

// Text is the display form of the value.
func (v MetaValue) Text() string {
	switch v.kind {
	case MetaDate:
		t, _ := v.AsDate()
		return t.Format(ISOMillis)
	default:
		return v.str
	}
}

// Truthy mirrors the loose truthiness content-cloud clients apply to
// metadata: empty strings, zero, false and null are not set.
func (v MetaValue) Truthy() bool {
	switch v.kind {
	case MetaString:
		return v.str != ""
	case MetaDate:
		return true
	}
	switch strings.TrimSpace(v.str) {
	case "", "null", "~", "false", `""`:
		return false
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64); err == nil {
		return f != 0
	}
	return true
}

// ISOMillis is the ISO-8601 layout with millisecond precision in UTC.
const ISOMillis = "2006-01-02T15:04:05.000Z"

func (v *MetaValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = StringValue(s)
		return nil
	}
	if len(b) > 0 && b[0] == '{' {
		var d struct {
			MsSinceEpoch *json.Number `json:"msSinceEpoch"`
		}
		if err := json.Unmarshal(b, &d); err == nil && d.MsSinceEpoch != nil {
			if ms, err := d.MsSinceEpoch.Int64(); err == nil {
				*v = DateValue(ms)
				return nil
			}
		}
	}
	*v = OtherValue(string(b))
	return nil
}

func (v *MetaValue) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!str" {
			*v = StringValue(n.Value)
			return nil
		}
		*v = OtherValue(n.Value)
		return nil
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			if n.Content[i].Value != "msSinceEpoch" {
				continue
			}
			ms, err := strconv.ParseInt(n.Content[i+1].Value, 10, 64)
			if err == nil {
				*v = DateValue(ms)
				return nil
			}
		}
	case yaml.AliasNode:
		return v.UnmarshalYAML(n.Alias)
	}
	raw, err := yaml.Marshal(n)
	if err != nil {
		return err
	}
	*v = OtherValue(strings.TrimSpace(string(raw)))
	return nil
}

type MetaEntry struct {
	Key   string
	Value MetaValue
}

// Metadata holds metadata entries under their folded key. Built once at
// ingestion. Every entry is kept in document order, so two keys folding to
// the same form both stay visible; Get returns the later one.
type Metadata struct {
	keys   []string
	values map[string][]MetaValue
}

func NewMetadata(entries ...MetaEntry) Metadata {
	m := Metadata{values: make(map[string][]MetaValue, len(entries))}
	for _, e := range entries {
		k := FoldKey(e.Key)
		if _, ok := m.values[k]; !ok {
			m.keys = append(m.keys, k)
		}
		m.values[k] = append(m.values[k], e.Value)
	}
	return m
}

// Get looks key up in folded form and returns its last value.
func (m Metadata) Get(key string) (MetaValue, bool) {
	vs := m.values[FoldKey(key)]
	if len(vs) == 0 {
		return MetaValue{}, false
	}
	return vs[len(vs)-1], true
}

// All returns every value stored under key, in document order.
func (m Metadata) All(key string) []MetaValue {
	vs := m.values[FoldKey(key)]
	out := make([]MetaValue, len(vs))
	copy(out, vs)
	return out
}

// Last returns the last value under key that satisfies ok.
func (m Metadata) Last(key string, ok func(MetaValue) bool) (MetaValue, bool) {
	vs := m.values[FoldKey(key)]
	for i := len(vs) - 1; i >= 0; i-- {
		if ok(vs[i]) {
			return vs[i], true
		}
	}
	return MetaValue{}, false
}

func (m Metadata) Len() int { return len(m.keys) }

// Keys returns the folded keys in first-seen order.
func (m Metadata) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// UnmarshalJSON keeps document order so duplicate folded keys resolve the
// same way a sequential scan would.
func (m *Metadata) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*m = NewMetadata()
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("metadata: expected object, got %v", tok)
	}
	var entries []MetaEntry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("metadata: expected key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("metadata %q: %w", key, err)
		}
		var v MetaValue
		if err := v.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("metadata %q: %w", key, err)
		}
		entries = append(entries, MetaEntry{Key: key, Value: v})
	}
	*m = NewMetadata(entries...)
	return nil
}

func (m *Metadata) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		*m = NewMetadata()
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("metadata: expected mapping at line %d", n.Line)
	}
	entries := make([]MetaEntry, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		var v MetaValue
		if err := v.UnmarshalYAML(n.Content[i+1]); err != nil {
			return err
		}
		entries = append(entries, MetaEntry{Key: n.Content[i].Value, Value: v})
	}
	*m = NewMetadata(entries...)
	return nil
}
