package config

import (
	"net"
	"time"

	"github.com/jackzampolin/langsheet/internal/export"
	"github.com/jackzampolin/langsheet/internal/schema"
	"github.com/jackzampolin/langsheet/internal/session"
	"github.com/jackzampolin/langsheet/internal/sheet"
)

// Config holds langsheet configuration.
// Stored at: {home}/config.yaml
type Config struct {
	Input  InputCfg  `mapstructure:"input" yaml:"input"`
	Schema SchemaCfg `mapstructure:"schema" yaml:"schema"`
	Export ExportCfg `mapstructure:"export" yaml:"export"`
	Server ServerCfg `mapstructure:"server" yaml:"server"`
	Log    LogCfg    `mapstructure:"log" yaml:"log"`
}

// InputCfg selects and opens source spreadsheets.
type InputCfg struct {
	Extension         string        `mapstructure:"extension" yaml:"extension"`                   // e.g. ".xlsx"
	TempPrefix        string        `mapstructure:"temp_prefix" yaml:"temp_prefix"`               // lock files to skip
	ReferenceLanguage string        `mapstructure:"reference_language" yaml:"reference_language"` // mapping is edited against this language
	OpenAttempts      uint          `mapstructure:"open_attempts" yaml:"open_attempts"`
	OpenDelay         time.Duration `mapstructure:"open_delay" yaml:"open_delay"`
}

// SchemaCfg sets up the key registry of new sessions.
type SchemaCfg struct {
	DefaultKeys     []string `mapstructure:"default_keys" yaml:"default_keys"`
	EssentialKeys   []string `mapstructure:"essential_keys" yaml:"essential_keys"` // empty protects nothing
	AccumulationKey string   `mapstructure:"accumulation_key" yaml:"accumulation_key"`
}

// ExportCfg controls bundle naming and JSON layout.
type ExportCfg struct {
	FallbackName string `mapstructure:"fallback_name" yaml:"fallback_name"`
	Indent       int    `mapstructure:"indent" yaml:"indent"`
}

// ServerCfg configures the HTTP session API.
type ServerCfg struct {
	Host       string        `mapstructure:"host" yaml:"host"`
	Port       string        `mapstructure:"port" yaml:"port"`
	SessionTTL time.Duration `mapstructure:"session_ttl" yaml:"session_ttl"`
	// AllowPathLoad enables loading spreadsheets by server-side path.
	// Disable it when the server is reachable by untrusted clients.
	AllowPathLoad bool `mapstructure:"allow_path_load" yaml:"allow_path_load"`
}

// LogCfg configures console and file logging.
type LogCfg struct {
	Level      string `mapstructure:"level" yaml:"level"` // debug, info, warn, error
	File       string `mapstructure:"file" yaml:"file"`   // empty disables the file sink
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Input: InputCfg{
			Extension:         sheet.DefaultFilter.Extension,
			TempPrefix:        sheet.DefaultFilter.TempPrefix,
			ReferenceLanguage: session.DefaultReferenceLanguage,
			OpenAttempts:      3,
			OpenDelay:         200 * time.Millisecond,
		},
		Schema: SchemaCfg{
			DefaultKeys:     append([]string(nil), schema.DefaultKeys...),
			EssentialKeys:   append([]string(nil), schema.DefaultKeys...),
			AccumulationKey: schema.DefaultAccumulationKey,
		},
		Export: ExportCfg{
			FallbackName: export.DefaultFallbackName,
			Indent:       2,
		},
		Server: ServerCfg{
			Host:          "127.0.0.1",
			Port:          "8080",
			SessionTTL:    session.DefaultTTL,
			AllowPathLoad: true,
		},
		Log: LogCfg{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Filter returns the source file filter.
func (c *Config) Filter() sheet.Filter {
	return sheet.Filter{Extension: c.Input.Extension, TempPrefix: c.Input.TempPrefix}
}

// RegistryOptions converts the schema section for schema.NewRegistry.
// The essential list is always non-nil, so an empty list protects nothing.
func (c *Config) RegistryOptions() schema.Options {
	return schema.Options{
		Defaults:     append([]string(nil), c.Schema.DefaultKeys...),
		Essential:    append([]string{}, c.Schema.EssentialKeys...),
		Accumulation: c.Schema.AccumulationKey,
	}
}

// ExportOptions converts the export section.
func (c *Config) ExportOptions() export.Options {
	return export.Options{Indent: c.Export.Indent, FallbackName: c.Export.FallbackName}
}

// SessionOptions builds the options new sessions are created with.
func (c *Config) SessionOptions() session.Options {
	return session.Options{
		Registry:      c.RegistryOptions(),
		ReferenceLang: c.Input.ReferenceLanguage,
		Export:        c.ExportOptions(),
	}
}

// Addr is the server listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}
