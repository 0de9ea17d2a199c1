package sim

import "fmt"

// Config controls the propagation engine.
type Config struct {
	MaxPasses int  // Pass cap guarding feedback topologies (default: 200)
	FindLoops bool // Report feedback loops when the cap is hit (default: true)
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxPasses: 200,
		FindLoops: true,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.MaxPasses < 1 {
		return fmt.Errorf("sim: max passes must be at least 1, got %d", c.MaxPasses)
	}
	return nil
}
