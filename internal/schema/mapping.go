package schema

import (
	"maps"
	"slices"
)

// HeaderText is a segment header used as the cross-language join key.
// Mappings are assigned once against the reference language and replayed on
// every other language by exact string equality of headers.
type HeaderText string

// Entry is one header-to-key assignment.
type Entry struct {
	Header HeaderText `json:"header" yaml:"header"`
	Key    string     `json:"key" yaml:"key"`
}

// Mapping assigns segment headers to registry keys.
type Mapping struct {
	entries map[HeaderText]string
}

// NewMapping creates an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{entries: make(map[HeaderText]string)}
}

// Set assigns header to key, replacing any previous assignment.
// An empty key unsets the header.
func (m *Mapping) Set(header HeaderText, key string) {
	if key == "" {
		m.Unset(header)
		return
	}
	m.entries[header] = key
}

// Unset reverts header to unmapped.
func (m *Mapping) Unset(header HeaderText) {
	delete(m.entries, header)
}

// UnsetKey removes every entry whose value is key.
func (m *Mapping) UnsetKey(key string) {
	maps.DeleteFunc(m.entries, func(_ HeaderText, v string) bool { return v == key })
}

// Get returns the key assigned to header.
func (m *Mapping) Get(header HeaderText) (string, bool) {
	k, ok := m.entries[header]
	return k, ok
}

// Len returns the number of entries.
func (m *Mapping) Len() int { return len(m.entries) }

// Entries returns all entries sorted by header.
func (m *Mapping) Entries() []Entry {
	out := make([]Entry, 0, len(m.entries))
	for _, h := range slices.Sorted(maps.Keys(m.entries)) {
		out = append(out, Entry{Header: h, Key: m.entries[h]})
	}
	return out
}

// Map returns a copy as a plain string map.
func (m *Mapping) Map() map[string]string {
	out := make(map[string]string, len(m.entries))
	for h, k := range m.entries {
		out[string(h)] = k
	}
	return out
}

// Replace sets all entries from a plain map.
func (m *Mapping) Replace(entries map[string]string) {
	m.entries = make(map[HeaderText]string, len(entries))
	for h, k := range entries {
		m.Set(HeaderText(h), k)
	}
}
