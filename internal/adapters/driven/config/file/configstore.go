package file

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/cadence-hq/cadence-cli/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// envPrefix is prepended to uppercased, underscore-joined config keys to
// form the environment variable that overrides them. The key "engine.top_n"
// is overridden by CADENCE_ENGINE_TOP_N.
const envPrefix = "CADENCE_"

// ConfigStore reads configuration from a TOML file and overlays it with
// environment variables. Values set through the process environment win over
// the file, which keeps secrets and per-run overrides out of config.toml.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]any
}

// NewConfigStore opens the config store rooted at configDir, creating the
// directory if needed. An empty configDir defaults to ~/.cadence.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".cadence")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
		data:     make(map[string]any),
	}
	if err := s.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return s, nil
}

// envKey maps a dot-notation config key to its override variable name.
func envKey(key string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Get retrieves a configuration value by key. Environment overrides are
// returned as strings; typed accessors parse them.
func (s *ConfigStore) Get(key string) (any, bool) {
	if v, ok := os.LookupEnv(envKey(key)); ok {
		return v, true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.data[key]
	return val, ok
}

// GetString retrieves a string configuration value.
func (s *ConfigStore) GetString(key string) string {
	if v, ok := os.LookupEnv(envKey(key)); ok {
		return v
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	str, _ := s.data[key].(string)
	return str
}

// GetInt retrieves an integer configuration value. Environment overrides and
// non-integer file values that fail to parse yield zero.
func (s *ConfigStore) GetInt(key string) int {
	if v, ok := os.LookupEnv(envKey(key)); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return n
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	switch v := s.data[key].(type) {
	case int64: // TOML integers decode as int64
		return int(v)
	case int:
		return v
	}
	return 0
}

// GetBool retrieves a boolean configuration value.
func (s *ConfigStore) GetBool(key string) bool {
	if v, ok := os.LookupEnv(envKey(key)); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	b, _ := s.data[key].(bool)
	return b
}

// GetStringSlice retrieves a string slice configuration value. Environment
// overrides are split on commas.
func (s *ConfigStore) GetStringSlice(key string) []string {
	if v, ok := os.LookupEnv(envKey(key)); ok {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	switch v := s.data[key].(type) {
	case []string:
		return v
	case []any: // TOML arrays decode as []any
		out := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

// Set stores a configuration value and persists immediately. Environment
// overrides are not affected; they keep winning on reads.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return s.save()
}

// Save persists the current configuration to disk.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save writes the TOML file; caller must hold the lock. The file may carry
// API credentials, so it is written owner-only.
func (s *ConfigStore) save() error {
	data, err := toml.Marshal(s.data)
	if err != nil {
		return err
	}
	return os.WriteFile(s.filePath, data, 0600)
}

// Load reads the TOML file and flattens nested tables into dot-notation
// keys. A missing file leaves the store empty rather than failing.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.data = make(map[string]any)
			return nil
		}
		return err
	}

	var parsed map[string]any
	if err := toml.Unmarshal(raw, &parsed); err != nil {
		return err
	}

	flat := make(map[string]any, len(parsed))
	flattenInto(flat, parsed, "")
	s.data = flat
	return nil
}

// flattenInto writes every leaf of a nested map into dst under its
// dot-joined key, so [engine] top_n = 10 lands as "engine.top_n".
func flattenInto(dst map[string]any, src map[string]any, prefix string) {
	for key, value := range src {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			flattenInto(dst, nested, full)
			continue
		}
		dst[full] = value
	}
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
