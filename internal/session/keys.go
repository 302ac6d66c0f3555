package session

import (
	"github.com/jackzampolin/langsheet/internal/schema"
)

// KeyInfo describes one registry key.
type KeyInfo struct {
	Name         string `json:"name" yaml:"name"`
	Essential    bool   `json:"essential" yaml:"essential"`
	Accumulation bool   `json:"accumulation" yaml:"accumulation"`
}

// Keys lists the registry in order.
func (s *Session) Keys() []KeyInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys()
}

func (s *Session) keys() []KeyInfo {
	names := s.registry.Keys()
	out := make([]KeyInfo, len(names))
	for i, k := range names {
		out[i] = KeyInfo{
			Name:         k,
			Essential:    s.registry.IsEssential(k),
			Accumulation: s.registry.IsAccumulation(k),
		}
	}
	return out
}

// AddKey appends a key. It reports false for blanks and duplicates.
func (s *Session) AddKey(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Add(name)
}

// RemoveKey removes a key and the mappings pointing at it.
func (s *Session) RemoveKey(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.registry.Remove(name, s.mapping); err != nil {
		return err
	}
	s.logger.Debug("key removed", "key", name)
	return nil
}

// ReorderKeys moves the key at from to to.
func (s *Session) ReorderKeys(from, to int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Reorder(from, to)
}

// RestoreDefaults resets the key list. Mappings are kept.
func (s *Session) RestoreDefaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry.RestoreDefaults()
}

// Map assigns header to key. An empty key unmaps the header.
func (s *Session) Map(header, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if header == "" {
		return ErrEmptyHeader
	}
	if key != "" && !s.registry.Contains(key) {
		return ErrUnknownKey
	}
	s.mapping.Set(schema.HeaderText(header), key)
	return nil
}

// Unmap reverts header to unmapped.
func (s *Session) Unmap(header string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mapping.Unset(schema.HeaderText(header))
}

// Mapping lists the mapping entries sorted by header.
func (s *Session) Mapping() []schema.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mapping.Entries()
}
