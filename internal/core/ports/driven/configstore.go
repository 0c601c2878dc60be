package driven

// ConfigStore persists application settings as dotted keys
// (embedding.provider, search.vector_weight, storage.data_dir).
// The settings service layers defaults and validation on top; the store
// itself only does persistence and type conversion.
type ConfigStore interface {
	// Get retrieves a raw value by key. The second return reports whether
	// the key is present, so callers can distinguish "unset" from a zero
	// value. Numeric values keep the type the backend parsed them as.
	Get(key string) (any, bool)

	// GetString retrieves a string value. Returns "" when the key is
	// missing or holds a different type.
	GetString(key string) string

	// GetInt retrieves an integer value. Returns 0 when the key is
	// missing or holds a different type.
	GetInt(key string) int

	// Set stores a value and persists it immediately.
	Set(key string, value any) error

	// Save persists the current state to storage.
	Save() error

	// Load reads the stored state, replacing in-memory values.
	Load() error

	// Path identifies the backing location, for display in settings
	// output.
	Path() string
}
