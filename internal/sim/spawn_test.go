package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestSpawnPair(t *testing.T) {
	ctx := NewContext(1, nil)
	reg := NewRegistry(2)
	centre := r2.Vec{X: 320, Y: 160}

	first := SpawnPair(ctx, reg, centre, 16)
	require.Equal(t, 2, reg.Len())
	a, _ := reg.Get(first)
	b, _ := reg.Get(first + 1)
	assert.Equal(t, r2.Vec{X: 192, Y: 160}, a.Pos)
	assert.Equal(t, r2.Vec{X: 448, Y: 160}, b.Pos)
	assert.Equal(t, r2.Vec{}, a.Vel)
	assert.Less(t, a.Sprite, uint8(spriteCount))
	assert.Less(t, b.Sprite, uint8(spriteCount))
}

func TestSpawnMany_OnGround(t *testing.T) {
	ts := NewTestSim(WithLevel(
		"########",
		"#......#",
		"#.####.#",
		"#......#",
		"########",
	))
	t.Cleanup(ts.Close)

	ids := SpawnMany(ts.Context(), ts.Registry(), ts.Tiles(), ts.Config().TileSize, 50)
	require.Len(t, ids, 50)
	for _, id := range ids {
		a, ok := ts.Agent(id)
		require.True(t, ok)
		idx, ok := ts.TileAt(a.Pos)
		require.True(t, ok)
		assert.False(t, ts.Tiles().IsBlocked(idx), "%s spawned in a wall", id.Label())
		assert.LessOrEqual(t, math.Abs(a.Vel.X), 0.7)
		assert.LessOrEqual(t, math.Abs(a.Vel.Y), 0.7)
	}
}

func TestSpawnMany_NoGround(t *testing.T) {
	ts := NewTestSim(WithLevel("##", "##"))
	t.Cleanup(ts.Close)
	assert.Empty(t, SpawnMany(ts.Context(), ts.Registry(), ts.Tiles(), 16, 5))
	assert.Equal(t, 0, ts.Registry().Len())
}
