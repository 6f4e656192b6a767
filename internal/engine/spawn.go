package engine

import (
	"github.com/reedmace/wildgen/internal/monster"
	"github.com/reedmace/wildgen/internal/terrain"
	"github.com/reedmace/wildgen/internal/world"
)

// spawnBlock rolls every passable tile of a freshly loaded block against
// the block's rarity divisor and places winners on the roster. Tiles
// holding the player or another actor are skipped. Town blocks draw from
// the town-compatible kinds; blocks under a dungeon lean toward the
// dungeon's population theme.
func (r *Runtime) spawnBlock(bx, by int, g *terrain.Grid, b *world.Block, p *world.Place) int {
	denom := int(b.Rarity) * r.cfg.SpawnStride
	spawned := 0
	for y := 0; y < terrain.BlockSize; y++ {
		for x := 0; x < terrain.BlockSize; x++ {
			t := g.At(x, y)
			if !t.Feature.Passable() {
				continue
			}
			wx, wy := bx*terrain.BlockSize+x, by*terrain.BlockSize+y
			if wx == r.px && wy == r.py {
				continue
			}
			if !r.Spawner.Roll(denom) {
				continue
			}
			site := monster.Site{
				X: wx, Y: wy,
				Level: int(b.Level),
				Water: t.Feature.IsWater(),
			}
			if p != nil {
				switch p.Kind {
				case world.KindTown:
					site.Town = true
				case world.KindDungeon:
					site.Themed = true
					site.Theme = monster.Theme(p.MonsterKind)
				}
			}
			if _, ok := r.Spawner.Spawn(site); ok {
				spawned++
			}
		}
	}
	return spawned
}
