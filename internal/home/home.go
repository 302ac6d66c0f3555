package home

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultDirName is the default name for the langsheet home directory.
	DefaultDirName = ".langsheet"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"

	// LogFileName is the rotating log file inside LogsDir.
	LogFileName = "langsheet.log"
)

// Dir represents the langsheet home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.langsheet).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// ExportsDir returns the directory for exported bundles.
func (d *Dir) ExportsDir() string {
	return filepath.Join(d.path, "exports")
}

// LogsDir returns the directory for log files.
func (d *Dir) LogsDir() string {
	return filepath.Join(d.path, "logs")
}

// LogPath returns the default rotating log file.
func (d *Dir) LogPath() string {
	return filepath.Join(d.LogsDir(), LogFileName)
}

// ProfilesDir returns the directory for saved profiles.
func (d *Dir) ProfilesDir() string {
	return filepath.Join(d.path, "profiles")
}

// ProfilePath resolves a profile name to a file. Names without an extension
// get ".yaml"; paths containing a separator are returned unchanged.
func (d *Dir) ProfilePath(name string) string {
	if strings.ContainsRune(name, os.PathSeparator) || strings.Contains(name, "/") {
		return name
	}
	if filepath.Ext(name) == "" {
		name += ".yaml"
	}
	return filepath.Join(d.ProfilesDir(), name)
}

// UploadsDir returns the directory holding spreadsheets uploaded to the server.
func (d *Dir) UploadsDir() string {
	return filepath.Join(d.path, "uploads")
}

// SessionUploadsDir returns the upload directory of one session.
func (d *Dir) SessionUploadsDir(sessionID string) string {
	return filepath.Join(d.UploadsDir(), sessionID)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	for _, dir := range []string{d.ExportsDir(), d.LogsDir(), d.ProfilesDir(), d.UploadsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Base(dir), err)
		}
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}
