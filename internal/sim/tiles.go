package sim

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

// Tiles is a row-major grid of tile kinds. It satisfies Grid.
type Tiles struct {
	kinds []TileKind
	width int
}

// NewTiles wraps kinds as a grid of the given width. The slice is owned by
// the returned grid.
func NewTiles(kinds []TileKind, width int) *Tiles {
	return &Tiles{kinds: kinds, width: width}
}

// NewGroundTiles returns a w×h grid of plain ground.
func NewGroundTiles(w, h int) *Tiles {
	return NewTiles(make([]TileKind, w*h), w)
}

// Len returns the number of tiles.
func (t *Tiles) Len() int { return len(t.kinds) }

// Width returns the number of tiles per row.
func (t *Tiles) Width() int { return t.width }

// Height returns the number of rows, counting a trailing partial row.
func (t *Tiles) Height() int {
	if t.width <= 0 {
		return 0
	}
	return (len(t.kinds) + t.width - 1) / t.width
}

// At returns the kind at idx. idx must be in range.
func (t *Tiles) At(idx int) TileKind { return t.kinds[idx] }

// Set overwrites the kind at idx. Navigation results computed earlier are
// not invalidated.
func (t *Tiles) Set(idx int, k TileKind) { t.kinds[idx] = k }

// IsBlocked returns true for wall tiles and for indices outside the grid.
func (t *Tiles) IsBlocked(idx int) bool {
	if idx < 0 || idx >= len(t.kinds) {
		return true
	}
	return t.kinds[idx].IsBlocked()
}

// Index converts cell coordinates to a linear index. ok is false when the
// cell lies outside the grid.
func (t *Tiles) Index(cx, cy int) (idx int, ok bool) {
	if cx < 0 || cy < 0 || cx >= t.width {
		return -1, false
	}
	idx = cx + cy*t.width
	if idx >= len(t.kinds) {
		return -1, false
	}
	return idx, true
}

// Cell converts a linear index back to cell coordinates.
func (t *Tiles) Cell(idx int) (cx, cy int) {
	return idx % t.width, idx / t.width
}

// above returns the tile one row up, if any.
func (t *Tiles) above(idx int) (TileKind, bool) {
	if idx < t.width || idx-t.width >= len(t.kinds) {
		return 0, false
	}
	return t.kinds[idx-t.width], true
}

// below returns the tile one row down, if any.
func (t *Tiles) below(idx int) (TileKind, bool) {
	if idx+t.width >= len(t.kinds) {
		return 0, false
	}
	return t.kinds[idx+t.width], true
}

// SetSquare fills a size×size block with kind, clipped to the grid.
func (t *Tiles) SetSquare(cx, cy, size int, kind TileKind) {
	for y := cy; y < cy+size; y++ {
		for x := cx; x < cx+size; x++ {
			if idx, ok := t.Index(x, y); ok {
				t.kinds[idx] = kind
			}
		}
	}
}

// Decorate re-tags every tile with a cosmetic variant. Wall tiles with
// ground directly below become wall faces; the rest become wall tops.
// Blocking never changes.
func (t *Tiles) Decorate(rng *rand.Rand) {
	for i, k := range t.kinds {
		if k.IsWall() {
			if b, ok := t.below(i); ok && b.IsGround() {
				t.kinds[i] = pickVariant(rng, 85, TileWallSide, TileWallSideCracked, TileWallSideMoss)
			} else {
				t.kinds[i] = pickVariant(rng, 85, TileWallTop, TileWallTopCracked, TileWallTopMoss)
			}
			continue
		}
		if k == TileMarked {
			continue
		}
		t.kinds[i] = pickVariant(rng, 90, TileGround, TileGroundPebbles, TileGroundMoss)
	}
}

// ClearMarks turns debug route markers back into plain ground.
func (t *Tiles) ClearMarks() {
	for i, k := range t.kinds {
		if k == TileMarked {
			t.kinds[i] = TileGround
		}
	}
}

// MarkRoute tags every tile of route as TileMarked.
func (t *Tiles) MarkRoute(route Route) {
	for _, idx := range route {
		if idx >= 0 && idx < len(t.kinds) && !t.kinds[idx].IsBlocked() {
			t.kinds[idx] = TileMarked
		}
	}
}

// pickVariant returns base with probability pct/100, otherwise a uniform
// pick from base and the alternatives.
func pickVariant(rng *rand.Rand, pct int, base TileKind, alts ...TileKind) TileKind {
	if rng.Intn(100) < pct {
		return base
	}
	n := rng.Intn(len(alts) + 1)
	if n == 0 {
		return base
	}
	return alts[n-1]
}

// TileCentre returns the world-space centre of tile idx.
func TileCentre(idx, width int, tileSize float64) r2.Vec {
	cx, cy := idx%width, idx/width
	return r2.Vec{
		X: (float64(cx) + 0.5) * tileSize,
		Y: (float64(cy) + 0.5) * tileSize,
	}
}

// CellOf returns the cell containing world position p. Negative positions
// map to negative cells.
func CellOf(p r2.Vec, tileSize float64) (cx, cy int) {
	return int(math.Floor(p.X / tileSize)), int(math.Floor(p.Y / tileSize))
}
