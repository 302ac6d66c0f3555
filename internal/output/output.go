// Package output builds the per-language structured document from segments,
// the header mapping and the key registry.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jackzampolin/langsheet/internal/schema"
	"github.com/jackzampolin/langsheet/internal/segment"
)

// Pair is a mapped segment as it appears in the output.
type Pair struct {
	Header  string `json:"header" yaml:"header"`
	Content string `json:"content" yaml:"content"`
}

// Field is one registry key and its value.
type Field struct {
	Key          string
	Accumulation bool
	Single       Pair   // when !Accumulation
	List         []Pair // when Accumulation; never nil
}

func (f Field) value() any {
	if f.Accumulation {
		return f.List
	}
	return f.Single
}

// Document is the output record for one language. Fields keep registry order
// when encoded.
type Document struct {
	Header string
	Fields []Field
}

// Build produces a fresh document. It is a pure function of its inputs.
//
// Every registry key gets a field: an empty pair for singleton keys and an
// empty list for the accumulation key. The title segment is skipped. Each
// remaining segment whose header maps to a current registry key either
// overwrites that singleton (last one wins) or is appended to the
// accumulation list in document order. Headers mapped to keys no longer in
// the registry contribute nothing.
func Build(doc *segment.Document, m *schema.Mapping, r *schema.Registry, gameName string) *Document {
	out := &Document{Header: gameName}
	index := make(map[string]int, r.Len())
	for _, k := range r.Keys() {
		f := Field{Key: k}
		if r.IsAccumulation(k) {
			f.Accumulation = true
			f.List = []Pair{}
		}
		index[k] = len(out.Fields)
		out.Fields = append(out.Fields, f)
	}

	if doc == nil {
		return out
	}
	segs := doc.Segments(gameName)
	if len(segs) < 2 {
		return out
	}
	for _, s := range segs[1:] {
		key, ok := m.Get(schema.HeaderText(s.Header))
		if !ok {
			continue
		}
		i, ok := index[key]
		if !ok {
			continue
		}
		p := Pair{Header: s.Header, Content: s.Content}
		if out.Fields[i].Accumulation {
			out.Fields[i].List = append(out.Fields[i].List, p)
		} else {
			out.Fields[i].Single = p
		}
	}
	return out
}

// Keys returns the field keys in order, without the header.
func (d *Document) Keys() []string {
	keys := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		keys[i] = f.Key
	}
	return keys
}

// Field looks up a field by key.
func (d *Document) Field(key string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// MarshalJSON writes the header first, then fields in registry order.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"header":`)
	h, err := marshalRaw(d.Header)
	if err != nil {
		return nil, err
	}
	buf.Write(h)

	for _, f := range d.Fields {
		k, err := marshalRaw(f.Key)
		if err != nil {
			return nil, err
		}
		v, err := marshalRaw(f.value())
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Key, err)
		}
		buf.WriteByte(',')
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalRaw encodes v without HTML escaping, so "&" and "<" stay literal.
func marshalRaw(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// UnmarshalJSON reads a document back preserving key order. Array values are
// taken as the accumulation field.
func (d *Document) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("output document: expected object")
	}

	*d = Document{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
		if key == schema.ReservedKey {
			if err := json.Unmarshal(raw, &d.Header); err != nil {
				return fmt.Errorf("header: %w", err)
			}
			continue
		}

		f := Field{Key: key}
		raw = bytes.TrimSpace(raw)
		if len(raw) > 0 && raw[0] == '[' {
			f.Accumulation = true
			f.List = []Pair{}
			if err := json.Unmarshal(raw, &f.List); err != nil {
				return fmt.Errorf("field %s: %w", key, err)
			}
		} else if err := json.Unmarshal(raw, &f.Single); err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
		d.Fields = append(d.Fields, f)
	}
	_, err = dec.Token()
	return err
}

// MarshalYAML emits an ordered mapping node.
func (d *Document) MarshalYAML() (any, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, v any) error {
		var val yaml.Node
		if err := val.Encode(v); err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			&val,
		)
		return nil
	}

	if err := add(schema.ReservedKey, d.Header); err != nil {
		return nil, err
	}
	for _, f := range d.Fields {
		if err := add(f.Key, f.value()); err != nil {
			return nil, err
		}
	}
	return root, nil
}
