// Package profile loads and saves reusable key/mapping setups.
//
// A profile is how the command line reuses the work done interactively:
// the key order and header mapping of one game can be applied to the next
// batch of spreadsheets without redoing it.
package profile

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed profile.schema.json
var schemaJSON []byte

// Profile captures a game name, key order and header mapping.
type Profile struct {
	GameName string            `yaml:"game_name,omitempty" json:"game_name,omitempty"`
	Keys     []string          `yaml:"keys,omitempty" json:"keys,omitempty"`
	Mapping  map[string]string `yaml:"mapping,omitempty" json:"mapping,omitempty"`
}

// ValidationError reports a profile document that does not have the
// expected shape.
type ValidationError struct {
	Source string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("invalid profile: %v", e.Err)
	}
	return fmt.Sprintf("invalid profile %s: %v", e.Source, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

var compiled = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("profile.schema.json", bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to load profile schema: %w", err)
	}
	return compiler.Compile("profile.schema.json")
})

// Parse decodes a YAML or JSON profile and validates it.
func Parse(data []byte) (*Profile, error) {
	return parse("", data)
}

// Load reads and validates the profile at path.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	return parse(path, data)
}

func parse(source string, data []byte) (*Profile, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ValidationError{Source: source, Err: err}
	}
	if raw == nil {
		return &Profile{}, nil
	}

	// Round-trip through JSON so the schema sees plain JSON values.
	doc, err := json.Marshal(raw)
	if err != nil {
		return nil, &ValidationError{Source: source, Err: err}
	}
	if err := Validate(doc); err != nil {
		return nil, &ValidationError{Source: source, Err: err}
	}

	var p Profile
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, &ValidationError{Source: source, Err: err}
	}
	return &p, nil
}

// Validate checks a JSON-encoded profile against the profile schema.
func Validate(doc []byte) error {
	schema, err := compiled()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(doc, &v); err != nil {
		return fmt.Errorf("failed to decode profile JSON: %w", err)
	}
	return schema.Validate(v)
}

// Save writes the profile as YAML, creating parent directories.
func Save(path string, p *Profile) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}
