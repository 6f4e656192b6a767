package town

import (
	"math/rand"

	"github.com/reedmace/wildgen/internal/terrain"
	"github.com/reedmace/wildgen/internal/world"
)

// buildDungeonEntrance clears a small patch of wilderness and sinks a
// staircase into it. Everything outside the clearing stays
// transparent, so the entrance sits in whatever terrain surrounds it.
func buildDungeonEntrance(p *world.Place, rng *rand.Rand) *Layout {
	l := newLayout(p.Width*terrain.BlockSize, p.Height*terrain.BlockSize)
	rad := 2 + rng.Intn(3)
	cx := 7 + rng.Intn(2)
	cy := 7 + rng.Intn(2)
	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= rad*rad {
				l.set(x, y, terrain.FeatDirt)
			}
		}
	}
	l.set(cx, cy, terrain.FeatStairs)
	return l
}
