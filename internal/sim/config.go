package sim

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every Config validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds every simulation tunable. Distances are world units, where
// one tile is TileSize units wide.
type Config struct {
	TileSize float64 `yaml:"tile_size"`

	// Movement state machine.
	ProximityThreshold float64 `yaml:"proximity_threshold"` // squared distance to count a waypoint reached
	Impulse            float64 `yaml:"impulse"`             // velocity gained per second while following

	// Integration.
	VelocityDecay float64 `yaml:"velocity_decay"` // per-frame velocity multiplier
	RestSpeedSq   float64 `yaml:"rest_speed_sq"`  // below this squared speed velocity snaps to zero

	// Collision.
	CollisionRadius  float64 `yaml:"collision_radius"`  // R; werfs closer than 2R collide
	Setback          float64 `yaml:"setback"`           // separation scale, in units of R
	CollisionDamping float64 `yaml:"collision_damping"` // velocity multiplier on contact

	// Animation.
	AnimInterval float64 `yaml:"anim_interval"` // seconds between walk frames
	AnimSpeedSq  float64 `yaml:"anim_speed_sq"` // squared speed that counts as walking

	Seed          int64 `yaml:"seed"`
	AsyncPlanning bool  `yaml:"async_planning"` // plan routes on a worker goroutine
	Verbose       bool  `yaml:"verbose"`        // record per-frame events
	LogCapacity   int   `yaml:"log_capacity"`   // 0 = unbounded event log
	DebugMarks    bool  `yaml:"debug_marks"`    // tag the latest route's tiles; ignored with async planning
}

// DefaultConfig returns the reference tuning.
func DefaultConfig() Config {
	const tile = 16.0
	return Config{
		TileSize:           tile,
		ProximityThreshold: 50,
		Impulse:            4,
		VelocityDecay:      0.96,
		RestSpeedSq:        0.001,
		CollisionRadius:    tile / 4,
		Setback:            1.8,
		CollisionDamping:   0.85,
		AnimInterval:       0.128,
		AnimSpeedSq:        0.005,
		Seed:               1,
	}
}

// MoveParams returns the state machine constants for a grid of the given width.
func (c Config) MoveParams(width int) MoveParams {
	return MoveParams{
		Width:     width,
		TileSize:  c.TileSize,
		Threshold: c.ProximityThreshold,
		Impulse:   c.Impulse,
	}
}

// Validate checks that every tunable is in a usable range.
func (c Config) Validate() error {
	switch {
	case c.TileSize <= 0:
		return fmt.Errorf("%w: tile_size must be > 0, got %v", ErrInvalidConfig, c.TileSize)
	case c.ProximityThreshold <= 0:
		return fmt.Errorf("%w: proximity_threshold must be > 0, got %v", ErrInvalidConfig, c.ProximityThreshold)
	case c.Impulse < 0:
		return fmt.Errorf("%w: impulse must be >= 0, got %v", ErrInvalidConfig, c.Impulse)
	case c.VelocityDecay < 0 || c.VelocityDecay > 1:
		return fmt.Errorf("%w: velocity_decay must be in [0,1], got %v", ErrInvalidConfig, c.VelocityDecay)
	case c.RestSpeedSq < 0:
		return fmt.Errorf("%w: rest_speed_sq must be >= 0, got %v", ErrInvalidConfig, c.RestSpeedSq)
	case c.CollisionRadius < 0:
		return fmt.Errorf("%w: collision_radius must be >= 0, got %v", ErrInvalidConfig, c.CollisionRadius)
	case c.Setback <= 0:
		return fmt.Errorf("%w: setback must be > 0, got %v", ErrInvalidConfig, c.Setback)
	case c.CollisionDamping < 0 || c.CollisionDamping > 1:
		return fmt.Errorf("%w: collision_damping must be in [0,1], got %v", ErrInvalidConfig, c.CollisionDamping)
	case c.AnimInterval <= 0:
		return fmt.Errorf("%w: anim_interval must be > 0, got %v", ErrInvalidConfig, c.AnimInterval)
	case c.LogCapacity < 0:
		return fmt.Errorf("%w: log_capacity must be >= 0, got %d", ErrInvalidConfig, c.LogCapacity)
	}
	return nil
}

// ParseConfig decodes YAML from r over DefaultConfig. Unknown keys are an
// error. Empty input yields the defaults.
func ParseConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := ParseConfig(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
