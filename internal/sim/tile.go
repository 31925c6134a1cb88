package sim

// TileKind identifies what a grid cell is made of. Variants only affect
// appearance; IsBlocked is the single property navigation consults.
type TileKind uint8

const (
	TileGround          TileKind = iota // Plain floor
	TileGroundPebbles                   // Floor with loose stones
	TileGroundMoss                      // Mossy floor
	TileWallTop                         // Wall seen from above
	TileWallTopCracked                  // Damaged wall top
	TileWallTopMoss                     // Overgrown wall top
	TileWallSide                        // Wall face with ground below it
	TileWallSideCracked                 // Damaged wall face
	TileWallSideMoss                    // Overgrown wall face
	TileMarked                          // Debug route marker, walkable
	tileKindCount                       // sentinel
)

func (k TileKind) String() string {
	switch k {
	case TileGround, TileGroundPebbles, TileGroundMoss:
		return "ground"
	case TileWallTop, TileWallTopCracked, TileWallTopMoss:
		return "wall-top"
	case TileWallSide, TileWallSideCracked, TileWallSideMoss:
		return "wall-side"
	case TileMarked:
		return "marked"
	default:
		return "unknown"
	}
}

// IsWall reports whether the tile is any wall variant.
func (k TileKind) IsWall() bool {
	switch k {
	case TileWallTop, TileWallTopCracked, TileWallTopMoss,
		TileWallSide, TileWallSideCracked, TileWallSideMoss:
		return true
	default:
		return false
	}
}

// IsGround reports whether the tile is any floor variant.
func (k TileKind) IsGround() bool {
	switch k {
	case TileGround, TileGroundPebbles, TileGroundMoss, TileMarked:
		return true
	default:
		return false
	}
}

// IsBlocked reports whether werfs can not walk through the tile.
func (k TileKind) IsBlocked() bool { return k.IsWall() }

// tileFromCode maps a level-file code to a tile. 1 is wall; every other
// code, parsable or not, is ground.
func tileFromCode(code int) TileKind {
	if code == 1 {
		return TileWallTop
	}
	return TileGround
}
