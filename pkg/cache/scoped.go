package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// This is useful when several API clients share one Redis or MongoDB
// instance but must not see each other's artifacts.
//
// Example usage:
//
//	// Client-specific keys
//	clientKeyer := NewScopedKeyer(NewDefaultKeyer(), "client:abc123:")
//
//	// Global keys
//	globalKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// CarveKey generates a prefixed key for carved images.
func (k *ScopedKeyer) CarveKey(inputHash string, opts CarveKeyOpts) string {
	return k.prefix + k.inner.CarveKey(inputHash, opts)
}

// EnergyKey generates a prefixed key for energy maps.
func (k *ScopedKeyer) EnergyKey(inputHash string, opts EnergyKeyOpts) string {
	return k.prefix + k.inner.EnergyKey(inputHash, opts)
}
