// Package cache provides pattern cache implementations.
//
// A pattern cache maps a normalized pattern key to the translation the
// engine decided to trust for it. Entries never expire; they are only
// removed by an explicit Clear.
package cache

// PatternCache is the interface for the learned pattern cache.
type PatternCache interface {
	// Get retrieves a learned translation. Returns empty string and false if not found.
	Get(key string) (string, bool)

	// Set stores a translation, overwriting any previous value.
	Set(key string, value string) error

	// Entries returns a copy of all stored patterns.
	Entries() (map[string]string, error)

	// Len returns the number of stored patterns.
	Len() int

	// Clear removes every stored pattern.
	Clear() error
}
