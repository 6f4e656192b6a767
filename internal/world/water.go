package world

import (
	"math/rand"

	"github.com/aquilax/go-perlin"

	"github.com/reedmace/wildgen/internal/entropy"
)

// carveRivers runs river walks down the height field. Each river
// starts at the highest of a handful of sampled blocks and descends
// neighbor by neighbor, flagging water as it goes, until it reaches
// the sea, runs off the map, or stalls in a basin. Sources in the
// highest band occasionally run with lava or acid instead. Rivers end
// at settlement edges; a place block is never flooded.
func carveRivers(m *Map, cfg GenConfig, table *GenTable, hgt []uint8) {
	if cfg.Rivers <= 0 {
		return
	}
	rng := rand.New(rand.NewSource(entropy.PassSeed(m.Seed, passRivers)))
	ocean := taggedIDs(table, TagOcean)
	height := func(x, y int) int { return int(hgt[y*m.Size+x]) }

	for i := 0; i < cfg.Rivers; i++ {
		sx, sy, sh := -1, -1, -1
		for k := 0; k < 40; k++ {
			x, y := rng.Intn(m.Size), rng.Intn(m.Size)
			b := m.BlockAt(x, y)
			if b.HasPlace() || ocean[b.Type] {
				continue
			}
			if h := height(x, y); h > sh {
				sx, sy, sh = x, y, h
			}
		}
		if sx < 0 {
			continue
		}
		liquid := FlagWater
		if sh >= 240 {
			switch rng.Intn(6) {
			case 0:
				liquid = FlagLava
			case 1:
				liquid = FlagAcid
			}
		}
		runRiver(m, rng, ocean, height, sx, sy, liquid)
	}
}

func runRiver(m *Map, rng *rand.Rand, ocean map[uint16]bool, height func(int, int) int, x, y int, liquid BlockFlag) {
	px, py := -1, -1
	for steps := m.Size * 4; steps > 0; steps-- {
		b := m.BlockAt(x, y)
		if b == nil || ocean[b.Type] || b.HasPlace() {
			return
		}
		b.Flags |= liquid

		// Descend: any neighbor at most one higher is in play, the
		// lowest wins, near-ties break randomly so rivers meander on
		// the flats. Never step straight back.
		h := height(x, y)
		type cand struct{ x, y, h int }
		var cands []cand
		for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			nx, ny := x+d[0], y+d[1]
			if (nx == px && ny == py) || !m.InBounds(nx, ny) {
				continue
			}
			if nh := height(nx, ny); nh <= h+1 {
				cands = append(cands, cand{nx, ny, nh})
			}
		}
		if len(cands) == 0 {
			return
		}
		low := cands[0].h
		for _, c := range cands[1:] {
			if c.h < low {
				low = c.h
			}
		}
		var pool []cand
		for _, c := range cands {
			if c.h <= low+1 {
				pool = append(pool, c)
			}
		}
		next := pool[rng.Intn(len(pool))]
		px, py = x, y
		x, y = next.x, next.y
	}
}

// floodLakes stamps noise-jittered water discs on open wilderness.
// The perlin field warps each disc boundary so lakes read as ragged
// pools rather than circles.
func floodLakes(m *Map, cfg GenConfig, table *GenTable) {
	if cfg.Lakes <= 0 {
		return
	}
	rng := rand.New(rand.NewSource(entropy.PassSeed(m.Seed, passLakes)))
	ocean := taggedIDs(table, TagOcean)
	noise := perlin.NewPerlin(2, 2, 3, entropy.PassSeed(m.Seed, passLakes))

	for i := 0; i < cfg.Lakes; i++ {
		cx, cy, found := 0, 0, false
		for k := 0; k < 40 && !found; k++ {
			x, y := rng.Intn(m.Size), rng.Intn(m.Size)
			b := m.BlockAt(x, y)
			if !b.HasPlace() && !ocean[b.Type] {
				cx, cy, found = x, y, true
			}
		}
		if !found {
			continue
		}
		r := 2 + rng.Intn(3)
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				x, y := cx+dx, cy+dy
				b := m.BlockAt(x, y)
				if b == nil || b.HasPlace() || ocean[b.Type] {
					continue
				}
				j := noise.Noise2D(float64(x)*0.4+float64(i)*29.0, float64(y)*0.4)
				reach := float64(r) * (0.7 + 0.6*j)
				if float64(dx*dx+dy*dy) <= reach*reach {
					b.Flags |= FlagWater
				}
			}
		}
	}
}
