package session

import (
	"time"

	"github.com/jackzampolin/langsheet/internal/segment"
)

// LanguageInfo summarizes one loaded language.
type LanguageInfo struct {
	Lang     string       `json:"lang" yaml:"lang"`
	Mode     segment.Mode `json:"mode" yaml:"mode"`
	Segments int          `json:"segments" yaml:"segments"`
}

// Summary is a read-only view of a session.
type Summary struct {
	ID            string         `json:"id" yaml:"id"`
	CreatedAt     time.Time      `json:"created_at" yaml:"created_at"`
	GameName      string         `json:"game_name" yaml:"game_name"`
	ReferenceLang string         `json:"reference_lang" yaml:"reference_lang"`
	Languages     []LanguageInfo `json:"languages" yaml:"languages"`
	Keys          []KeyInfo      `json:"keys" yaml:"keys"`
	Mappings      int            `json:"mappings" yaml:"mappings"`
}

// Summary snapshots the session.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	langs := make([]LanguageInfo, len(s.docs))
	for i, d := range s.docs {
		langs[i] = LanguageInfo{Lang: d.Lang, Mode: d.Mode(), Segments: len(d.Segments(s.gameName))}
	}
	ref := ""
	if d := s.reference(); d != nil {
		ref = d.Lang
	}
	return Summary{
		ID:            s.ID,
		CreatedAt:     s.CreatedAt,
		GameName:      s.gameName,
		ReferenceLang: ref,
		Languages:     langs,
		Keys:          s.keys(),
		Mappings:      s.mapping.Len(),
	}
}
