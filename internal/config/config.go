package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

// EnvPrefix prefixes environment overrides, e.g. LANGSHEET_SERVER_PORT.
const EnvPrefix = "LANGSHEET"

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	v         *viper.Viper
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a new config manager and loads initial config.
// An empty cfgFile searches "." and homeDir for config.yaml.
func NewManager(cfgFile, homeDir string) (*Manager, error) {
	cm := &Manager{
		v:         viper.New(),
		callbacks: make([]func(*Config), 0),
	}

	if err := cm.initViper(cfgFile, homeDir); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile, homeDir string) error {
	v := cm.v
	d := DefaultConfig()
	v.SetDefault("input.extension", d.Input.Extension)
	v.SetDefault("input.temp_prefix", d.Input.TempPrefix)
	v.SetDefault("input.reference_language", d.Input.ReferenceLanguage)
	v.SetDefault("input.open_attempts", d.Input.OpenAttempts)
	v.SetDefault("input.open_delay", d.Input.OpenDelay)
	v.SetDefault("schema.default_keys", d.Schema.DefaultKeys)
	v.SetDefault("schema.essential_keys", d.Schema.EssentialKeys)
	v.SetDefault("schema.accumulation_key", d.Schema.AccumulationKey)
	v.SetDefault("export.fallback_name", d.Export.FallbackName)
	v.SetDefault("export.indent", d.Export.Indent)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.session_ttl", d.Server.SessionTTL)
	v.SetDefault("server.allow_path_load", d.Server.AllowPathLoad)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
	v.SetDefault("log.compress", d.Log.Compress)

	// Environment variables with LANGSHEET_ prefix
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if homeDir != "" {
			v.AddConfigPath(homeDir)
		}
	}

	// Try to read config file (not required)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a validated Config.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// ConfigFile returns the file in use, or "" when running on defaults.
func (cm *Manager) ConfigFile() string {
	return cm.v.ConfigFileUsed()
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration. An edit that fails to
// parse or validate keeps the previous config.
func (cm *Manager) WatchConfig() {
	cm.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	cm.v.WatchConfig()
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	var errs []error
	if !strings.HasPrefix(c.Input.Extension, ".") {
		errs = append(errs, fmt.Errorf("input.extension must start with a dot: %q", c.Input.Extension))
	}
	if c.Input.OpenAttempts == 0 {
		errs = append(errs, errors.New("input.open_attempts must be at least 1"))
	}
	if strings.TrimSpace(c.Schema.AccumulationKey) == "" {
		errs = append(errs, errors.New("schema.accumulation_key is required"))
	}
	for _, k := range c.Schema.EssentialKeys {
		if !slices.Contains(c.Schema.DefaultKeys, k) {
			errs = append(errs, fmt.Errorf("schema.essential_keys: %q is not a default key", k))
		}
	}
	if c.Export.Indent < 0 || c.Export.Indent > 8 {
		errs = append(errs, fmt.Errorf("export.indent out of range: %d", c.Export.Indent))
	}
	if p, err := strconv.Atoi(c.Server.Port); err != nil || p < 1 || p > 65535 {
		errs = append(errs, fmt.Errorf("server.port is not a valid port: %q", c.Server.Port))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level unknown: %q", c.Log.Level))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// WriteDefault writes the default configuration to the specified path.
// Durations are written in their string form so the file stays editable.
func WriteDefault(path string) error {
	d := DefaultConfig()
	doc := yaml.MapSlice{
		{Key: "input", Value: yaml.MapSlice{
			{Key: "extension", Value: d.Input.Extension},
			{Key: "temp_prefix", Value: d.Input.TempPrefix},
			{Key: "reference_language", Value: d.Input.ReferenceLanguage},
			{Key: "open_attempts", Value: d.Input.OpenAttempts},
			{Key: "open_delay", Value: d.Input.OpenDelay.String()},
		}},
		{Key: "schema", Value: yaml.MapSlice{
			{Key: "default_keys", Value: d.Schema.DefaultKeys},
			{Key: "essential_keys", Value: d.Schema.EssentialKeys},
			{Key: "accumulation_key", Value: d.Schema.AccumulationKey},
		}},
		{Key: "export", Value: yaml.MapSlice{
			{Key: "fallback_name", Value: d.Export.FallbackName},
			{Key: "indent", Value: d.Export.Indent},
		}},
		{Key: "server", Value: yaml.MapSlice{
			{Key: "host", Value: d.Server.Host},
			{Key: "port", Value: d.Server.Port},
			{Key: "session_ttl", Value: d.Server.SessionTTL.String()},
			{Key: "allow_path_load", Value: d.Server.AllowPathLoad},
		}},
		{Key: "log", Value: yaml.MapSlice{
			{Key: "level", Value: d.Log.Level},
			{Key: "file", Value: d.Log.File},
			{Key: "max_size_mb", Value: d.Log.MaxSizeMB},
			{Key: "max_backups", Value: d.Log.MaxBackups},
			{Key: "max_age_days", Value: d.Log.MaxAgeDays},
			{Key: "compress", Value: d.Log.Compress},
		}},
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Langsheet configuration
# Every value can be overridden with LANGSHEET_<SECTION>_<KEY>, e.g. LANGSHEET_SERVER_PORT=9090
# An empty schema.essential_keys list lets every key be removed.

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
