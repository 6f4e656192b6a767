package world

import (
	"math/rand"

	"github.com/reedmace/wildgen/internal/entropy"
)

// layRoads links settlements with routeways: the starting town gets a
// road to every other town in range, and each dungeon gets a track to
// its nearest town. Paths walk block to block toward the target with a
// little jitter, refuse the sea (and, for roads, rough ground), and
// give up when the detour budget runs out. Whatever flags were raised
// before a path died stay: a road that peters out in the hills is
// still a road.
func layRoads(m *Map, cfg GenConfig, table *GenTable) {
	if cfg.RoadDist <= 0 {
		return
	}
	rng := rand.New(rand.NewSource(entropy.PassSeed(m.Seed, passRoads)))
	ocean := taggedIDs(table, TagOcean)
	rough := taggedIDs(table, TagRough)

	towns := m.Towns()
	if len(towns) == 0 {
		return
	}
	start := towns[0]
	for _, t := range towns[1:] {
		if placeDistance(start, t) > cfg.RoadDist {
			continue
		}
		tracePath(m, rng, start, t, FlagRoad, ocean, rough)
	}
	for _, d := range m.Dungeons() {
		t := nearestTown(towns, d)
		if t == nil || placeDistance(d, t) > cfg.RoadDist {
			continue
		}
		tracePath(m, rng, d, t, FlagTrack, ocean, rough)
	}
}

func placeDistance(a, b *Place) int {
	ax, ay := a.CenterBlock()
	bx, by := b.CenterBlock()
	return abs(ax-bx) + abs(ay-by)
}

func nearestTown(towns []*Place, from *Place) *Place {
	var best *Place
	bestD := 0
	for _, t := range towns {
		if d := placeDistance(from, t); best == nil || d < bestD {
			best, bestD = t, d
		}
	}
	return best
}

// tracePath walks from one place center to another, raising flag on
// every block stepped on. Each step prefers the axis with more ground
// to cover, occasionally swapped for jitter; when both steps toward
// the target are blocked it tries the perpendicular directions before
// giving up the turn. The budget bounds total steps, so a walk hemmed
// in by sea or mountains ends partway instead of wandering forever.
func tracePath(m *Map, rng *rand.Rand, from, to *Place, flag BlockFlag, ocean, rough map[uint16]bool) {
	x, y := from.CenterBlock()
	tx, ty := to.CenterBlock()
	budget := (abs(tx-x) + abs(ty-y)) * 3

	m.BlockAt(x, y).Flags |= flag
	for (x != tx || y != ty) && budget > 0 {
		budget--

		sx, sy := sign(tx-x), sign(ty-y)
		prim, sec := [2]int{sx, 0}, [2]int{0, sy}
		if abs(ty-y) > abs(tx-x) {
			prim, sec = sec, prim
		}
		if sec != [2]int{0, 0} && rng.Intn(4) == 0 {
			prim, sec = sec, prim
		}
		steps := [4][2]int{prim, sec, {-sec[0], -sec[1]}, {-prim[0], -prim[1]}}
		if sec == [2]int{0, 0} {
			// Aligned with the target: detour sideways, not backwards.
			perp := [2]int{prim[1], prim[0]}
			steps = [4][2]int{prim, perp, {-perp[0], -perp[1]}, {-prim[0], -prim[1]}}
		}

		moved := false
		for _, st := range steps {
			if st == [2]int{0, 0} {
				continue
			}
			nx, ny := x+st[0], y+st[1]
			b := m.BlockAt(nx, ny)
			if b == nil || blockedFor(flag, b.Type, ocean, rough) {
				continue
			}
			x, y = nx, ny
			b.Flags |= flag
			moved = true
			break
		}
		if !moved {
			return
		}
	}
}

// blockedFor reports whether a block type refuses the routeway. The
// sea blocks everything; rough ground blocks roads but lets tracks
// pick their way through.
func blockedFor(flag BlockFlag, typ uint16, ocean, rough map[uint16]bool) bool {
	if ocean[typ] {
		return true
	}
	return flag == FlagRoad && rough[typ]
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
