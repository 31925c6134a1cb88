package sim

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig_EmptyIsDefault(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParseConfig_OverridesDefaults(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(`
impulse: 8
collision_radius: 2.5
async_planning: true
seed: 42
`))
	require.NoError(t, err)
	assert.Equal(t, 8.0, cfg.Impulse)
	assert.Equal(t, 2.5, cfg.CollisionRadius)
	assert.True(t, cfg.AsyncPlanning)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, DefaultConfig().TileSize, cfg.TileSize, "unset keys keep defaults")
}

func TestParseConfig_UnknownKey(t *testing.T) {
	_, err := ParseConfig(strings.NewReader("impulsee: 3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode config")
}

func TestParseConfig_Invalid(t *testing.T) {
	for _, doc := range []string{
		"tile_size: 0",
		"proximity_threshold: -1",
		"velocity_decay: 1.5",
		"setback: 0",
		"collision_damping: -0.1",
		"anim_interval: 0",
		"log_capacity: -3",
	} {
		_, err := ParseConfig(strings.NewReader(doc))
		assert.True(t, errors.Is(err, ErrInvalidConfig), "%q: got %v", doc, err)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "werfs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("verbose: true\nlog_capacity: 500\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, 500, cfg.LogCapacity)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestConfig_MoveParams(t *testing.T) {
	p := DefaultConfig().MoveParams(12)
	assert.Equal(t, MoveParams{Width: 12, TileSize: 16, Threshold: 50, Impulse: 4}, p)
}
