package sim

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// spriteCount is the number of werf appearances.
const spriteCount = 4

// SpawnPair adds two resting werfs eight tiles either side of centre and
// returns the first one.
func SpawnPair(ctx *Context, reg *Registry, centre r2.Vec, tileSize float64) AgentID {
	offset := r2.Vec{X: tileSize * 8}
	first := reg.Spawn(r2.Sub(centre, offset), r2.Vec{}, uint8(ctx.Rand.Intn(spriteCount)))
	reg.Spawn(r2.Add(centre, offset), r2.Vec{}, uint8(ctx.Rand.Intn(spriteCount)))
	return first
}

// SpawnMany adds n werfs at random ground tiles with a random drift
// velocity. It returns fewer than n IDs only when the level has no ground.
func SpawnMany(ctx *Context, reg *Registry, tiles *Tiles, tileSize float64, n int) []AgentID {
	var ground []int
	for i := 0; i < tiles.Len(); i++ {
		if !tiles.IsBlocked(i) {
			ground = append(ground, i)
		}
	}
	if len(ground) == 0 {
		return nil
	}

	ids := make([]AgentID, 0, n)
	for i := 0; i < n; i++ {
		idx := ground[ctx.Rand.Intn(len(ground))]
		centre := TileCentre(idx, tiles.Width(), tileSize)
		jitter := r2.Vec{
			X: (ctx.Rand.Float64() - 0.5) * tileSize / 2,
			Y: (ctx.Rand.Float64() - 0.5) * tileSize / 2,
		}
		vel := r2.Vec{
			X: ctx.Rand.Float64()*1.4 - 0.7,
			Y: ctx.Rand.Float64()*1.4 - 0.7,
		}
		ids = append(ids, reg.Spawn(r2.Add(centre, jitter), vel, uint8(ctx.Rand.Intn(spriteCount))))
	}
	return ids
}
