// Package schema holds the user-configurable output schema: an ordered set of
// keys and a mapping from segment headers to those keys.
package schema

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// DefaultAccumulationKey collects every segment mapped to it as a list.
const DefaultAccumulationKey = "features"

// ReservedKey is the top-level output field holding the game name. It can
// never be a registry key.
const ReservedKey = "header"

// DefaultKeys is the key list restored by RestoreDefaults.
var DefaultKeys = []string{"game", "rtp", "description", "wins", "wild", "scatter", "features"}

// ErrProtectedKey is matched by errors.Is for every *ProtectedKeyError.
var ErrProtectedKey = errors.New("protected key")

// ProtectedKeyError is returned when removing an essential key.
type ProtectedKeyError struct {
	Key string
}

func (e *ProtectedKeyError) Error() string {
	return fmt.Sprintf("%q is a core key and cannot be removed", e.Key)
}

func (e *ProtectedKeyError) Is(target error) bool { return target == ErrProtectedKey }

// Options configures a Registry.
type Options struct {
	// Defaults is the initial and restored key list. Nil means DefaultKeys.
	Defaults []string
	// Essential keys cannot be removed. Nil means every default key; an empty
	// non-nil slice protects nothing.
	Essential []string
	// Accumulation is the list-valued key. Empty means DefaultAccumulationKey.
	Accumulation string
}

// Registry is the ordered set of output keys.
type Registry struct {
	keys         []string
	defaults     []string
	essential    map[string]bool
	accumulation string
}

// NewRegistry creates a registry seeded with the default keys.
func NewRegistry(opts Options) *Registry {
	defaults := opts.Defaults
	if defaults == nil {
		defaults = DefaultKeys
	}
	defaults = dedupe(defaults)

	essential := opts.Essential
	if essential == nil {
		essential = defaults
	}
	ess := make(map[string]bool, len(essential))
	for _, k := range essential {
		ess[k] = true
	}

	acc := opts.Accumulation
	if acc == "" {
		acc = DefaultAccumulationKey
	}

	return &Registry{
		keys:         slices.Clone(defaults),
		defaults:     defaults,
		essential:    ess,
		accumulation: acc,
	}
}

func dedupe(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" || k == ReservedKey || slices.Contains(out, k) {
			continue
		}
		out = append(out, k)
	}
	return out
}

// Keys returns the keys in display order.
func (r *Registry) Keys() []string { return slices.Clone(r.keys) }

// Len returns the number of keys.
func (r *Registry) Len() int { return len(r.keys) }

// Contains reports whether name is currently a key.
func (r *Registry) Contains(name string) bool { return slices.Contains(r.keys, name) }

// IsAccumulation reports whether name is the list-valued key. Identity is by
// name only, so a removed and re-added key keeps its semantics.
func (r *Registry) IsAccumulation(name string) bool { return name == r.accumulation }

// AccumulationKey returns the name of the list-valued key.
func (r *Registry) AccumulationKey() string { return r.accumulation }

// IsEssential reports whether name is protected from removal.
func (r *Registry) IsEssential(name string) bool { return r.essential[name] }

// Add appends name if it is non-blank and not yet present. It returns false
// for duplicates, blanks and ReservedKey, which are not errors.
func (r *Registry) Add(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || name == ReservedKey || r.Contains(name) {
		return false
	}
	r.keys = append(r.keys, name)
	return true
}

// Remove deletes name from the registry and every mapping entry pointing at
// it. Callers confirm with the user before calling. Removing an essential key
// fails with *ProtectedKeyError and changes nothing. Removing an absent key
// only prunes the mapping.
func (r *Registry) Remove(name string, m *Mapping) error {
	if r.IsEssential(name) {
		return &ProtectedKeyError{Key: name}
	}
	if i := slices.Index(r.keys, name); i >= 0 {
		r.keys = slices.Delete(r.keys, i, i+1)
	}
	if m != nil {
		m.UnsetKey(name)
	}
	return nil
}

// Reorder moves the key at from to to, shifting the keys in between.
// Equal or out-of-range indexes are a no-op; the return reports a change.
func (r *Registry) Reorder(from, to int) bool {
	n := len(r.keys)
	if from == to || from < 0 || to < 0 || from >= n || to >= n {
		return false
	}
	key := r.keys[from]
	r.keys = slices.Delete(r.keys, from, from+1)
	r.keys = slices.Insert(r.keys, to, key)
	return true
}

// RestoreDefaults replaces the keys with the default list. The mapping is
// untouched; entries pointing at keys no longer present become inert.
func (r *Registry) RestoreDefaults() {
	r.keys = slices.Clone(r.defaults)
}

// Replace sets the key list wholesale, dropping blanks and duplicates.
// Essential keys missing from keys are appended in default order, so a
// replace can never remove a protected key. Used when importing a profile.
func (r *Registry) Replace(keys []string) {
	next := dedupe(keys)
	for _, k := range r.defaults {
		if r.essential[k] && !slices.Contains(next, k) {
			next = append(next, k)
		}
	}
	r.keys = next
}
