package cache

// CarveKeyOpts holds every option that changes a carved image.
type CarveKeyOpts struct {
	Columns     int    `json:"columns"`
	Direction   string `json:"direction"`
	Luma        string `json:"luma"`
	Format      string `json:"format"`
	JPEGQuality int    `json:"jpeg_quality,omitempty"`
}

// EnergyKeyOpts holds every option that changes a rendered energy map.
type EnergyKeyOpts struct {
	Luma        string `json:"luma"`
	Format      string `json:"format"`
	JPEGQuality int    `json:"jpeg_quality,omitempty"`
}

// Keyer generates cache keys for pipeline artifacts.
type Keyer interface {
	// CarveKey returns the key of a carved image.
	CarveKey(inputHash string, opts CarveKeyOpts) string

	// EnergyKey returns the key of an energy map.
	EnergyKey(inputHash string, opts EnergyKeyOpts) string
}

// DefaultKeyer hashes artifact options into the key so that any option
// change produces a different entry.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// CarveKey implements Keyer.
func (DefaultKeyer) CarveKey(inputHash string, opts CarveKeyOpts) string {
	return hashKey("carve", inputHash, opts)
}

// EnergyKey implements Keyer.
func (DefaultKeyer) EnergyKey(inputHash string, opts EnergyKeyOpts) string {
	return hashKey("energy", inputHash, opts)
}
