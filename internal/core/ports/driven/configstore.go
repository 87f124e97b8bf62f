package driven

// ConfigStore exposes typed access to application configuration keyed by
// dot-notation paths (e.g. "engine.top_n"). Implementations decide where
// values live and how overrides layer on top.
type ConfigStore interface {
	// Get returns the raw value for a key and whether it is set.
	Get(key string) (any, bool)

	// GetString returns the string value for a key, or "" when the key
	// is unset or not a string.
	GetString(key string) string

	// GetInt returns the integer value for a key, or 0 when the key is
	// unset or not an integer.
	GetInt(key string) int

	// GetBool returns the boolean value for a key, or false when the
	// key is unset or not a boolean.
	GetBool(key string) bool

	// GetStringSlice returns the string-slice value for a key, or nil
	// when the key is unset or not a slice.
	GetStringSlice(key string) []string

	// Set stores a value and persists it immediately.
	Set(key string, value any) error

	// Save persists the current configuration.
	Save() error

	// Load re-reads configuration from its backing store.
	Load() error

	// Path identifies the backing store location for error messages.
	Path() string
}
