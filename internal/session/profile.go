package session

import (
	"github.com/jackzampolin/langsheet/internal/profile"
)

// Profile captures the game name, key order and mapping.
func (s *Session) Profile() *profile.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &profile.Profile{
		GameName: s.gameName,
		Keys:     s.registry.Keys(),
		Mapping:  s.mapping.Map(),
	}
}

// ApplyProfile replaces the key order and mapping and, when the profile has
// one, the game name. Loaded languages are kept. Empty key lists leave the
// registry as is.
func (s *Session) ApplyProfile(p *profile.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(p.Keys) > 0 {
		s.registry.Replace(p.Keys)
	}
	s.mapping.Replace(p.Mapping)
	if p.GameName != "" {
		s.gameName = p.GameName
	}
	s.logger.Debug("profile applied", "keys", s.registry.Len(), "mappings", s.mapping.Len())
}
