package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestTiles_IndexAndCell(t *testing.T) {
	tiles := NewGroundTiles(4, 3)
	idx, ok := tiles.Index(3, 2)
	require.True(t, ok)
	assert.Equal(t, 11, idx)
	cx, cy := tiles.Cell(idx)
	assert.Equal(t, [2]int{3, 2}, [2]int{cx, cy})

	for _, c := range [][2]int{{-1, 0}, {4, 0}, {0, 3}, {0, -1}} {
		_, ok := tiles.Index(c[0], c[1])
		assert.False(t, ok, "cell %v", c)
	}
}

func TestTiles_IsBlockedOutOfRange(t *testing.T) {
	tiles := NewGroundTiles(2, 2)
	assert.True(t, tiles.IsBlocked(-1))
	assert.True(t, tiles.IsBlocked(4))
	assert.False(t, tiles.IsBlocked(3))
}

func TestTileKind_Classes(t *testing.T) {
	for k := TileKind(0); k < tileKindCount; k++ {
		assert.NotEqual(t, k.IsWall(), k.IsGround(), "%d must be exactly one of wall or ground", k)
		assert.Equal(t, k.IsWall(), k.IsBlocked())
		assert.NotEqual(t, "unknown", k.String())
	}
	assert.Equal(t, "unknown", tileKindCount.String())
}

func TestTiles_DecoratePreservesBlocking(t *testing.T) {
	rng := rand.New(rand.NewSource(2)) // #nosec G404 -- test
	tiles := GenerateLevel(32, 24, rng)
	before := make([]bool, tiles.Len())
	for i := range before {
		before[i] = tiles.IsBlocked(i)
	}

	tiles.Decorate(rng)
	for i := range before {
		require.Equal(t, before[i], tiles.IsBlocked(i), "tile %d changed blocking", i)
	}

	// A wall directly above open floor is drawn as a wall face.
	for i := 0; i < tiles.Len()-tiles.Width(); i++ {
		below := tiles.At(i + tiles.Width())
		if tiles.At(i).IsWall() && below.IsGround() {
			assert.Contains(t, []TileKind{TileWallSide, TileWallSideCracked, TileWallSideMoss}, tiles.At(i), "tile %d", i)
		}
	}
}

func TestTiles_MarkAndClearRoute(t *testing.T) {
	tiles := NewGroundTiles(5, 1)
	tiles.Set(2, TileWallTop)
	tiles.MarkRoute(Route{0, 1, 2, 3, 9})

	assert.Equal(t, TileMarked, tiles.At(0))
	assert.Equal(t, TileMarked, tiles.At(1))
	assert.Equal(t, TileWallTop, tiles.At(2), "walls are never marked")
	assert.False(t, tiles.IsBlocked(1), "marked tiles stay walkable")

	tiles.ClearMarks()
	for i := 0; i < tiles.Len(); i++ {
		assert.NotEqual(t, TileMarked, tiles.At(i))
	}
}

func TestTileCentreAndCellOf(t *testing.T) {
	c := TileCentre(13, 10, 16)
	assert.Equal(t, r2.Vec{X: 56, Y: 24}, c)

	cx, cy := CellOf(c, 16)
	assert.Equal(t, [2]int{3, 1}, [2]int{cx, cy})

	cx, cy = CellOf(r2.Vec{X: -0.5, Y: 15.99}, 16)
	assert.Equal(t, [2]int{-1, 0}, [2]int{cx, cy})
}
