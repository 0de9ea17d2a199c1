package route

import "fmt"

// Config controls the behavior of the router.
type Config struct {
	// Grid settings
	GridSize    float64 // Cell edge in pixels, also the midline snap (default: 10)
	MarginCells int     // Free cells added around the search region (default: 2)
	MaxCells    int     // Searches over larger grids fall back to a single bend (default: 250000)

	// Obstacles
	Padding float64 // Clearance kept around component bodies (default: 4)
}

// DefaultConfig returns a Config with the editor's grid and clearance.
func DefaultConfig() *Config {
	return &Config{
		GridSize:    10,
		MarginCells: 2,
		MaxCells:    250000,
		Padding:     4,
	}
}

// Validate checks the configuration and fills in unset values.
func (c *Config) Validate() error {
	if c.GridSize <= 0 {
		return fmt.Errorf("route: grid size must be positive, got %v", c.GridSize)
	}
	if c.Padding < 0 {
		return fmt.Errorf("route: padding must not be negative, got %v", c.Padding)
	}
	if c.MarginCells < 1 {
		c.MarginCells = 1
	}
	if c.MaxCells < 1 {
		c.MaxCells = DefaultConfig().MaxCells
	}
	return nil
}
