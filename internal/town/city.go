package town

import (
	"math/rand"

	"github.com/reedmace/wildgen/internal/terrain"
	"github.com/reedmace/wildgen/internal/world"
)

// Walled city geometry: the 48x48 overlay is divided into 4x4-tile
// building slots. A coarse plasma field picks candidate slots, a flood
// fill from the strongest slot keeps one connected interior, and the
// wall hugs that shape one tile thick. Four gates open at the compass
// extremes of the interior.
const citySlot = 4

func buildWalledCity(p *world.Place, rng *rand.Rand) *Layout {
	side := p.Width * terrain.BlockSize
	l := newLayout(side, p.Height*terrain.BlockSize)
	slots := side / citySlot

	f := world.NewPlasmaField(16)
	f.Generate(rng)

	// Candidates keep a one-slot margin so the wall always fits on the
	// layout. The cut keeps roughly the top half of the margin slots.
	margin := make([]int, 0, (slots-2)*(slots-2))
	for sy := 1; sy < slots-1; sy++ {
		for sx := 1; sx < slots-1; sx++ {
			margin = append(margin, f.Value(sx, sy))
		}
	}
	cut := nthHighest(margin, len(margin)/2)

	cand := make([][]bool, slots)
	for sy := range cand {
		cand[sy] = make([]bool, slots)
	}
	bestX, bestY, bestV := 0, 0, -1
	for sy := 1; sy < slots-1; sy++ {
		for sx := 1; sx < slots-1; sx++ {
			v := f.Value(sx, sy)
			if v >= cut {
				cand[sy][sx] = true
				if v > bestV {
					bestX, bestY, bestV = sx, sy, v
				}
			}
		}
	}

	interior := floodSlots(cand, bestX, bestY)

	deal := dealStoreKinds(rng)
	for sy := 0; sy < slots; sy++ {
		for sx := 0; sx < slots; sx++ {
			if interior[sy][sx] {
				stampCitySlot(l, rng, sx, sy, deal())
			}
		}
	}

	raiseWall(l, interior)
	carveGates(l, interior, slots)
	return l
}

// stampCitySlot paves the slot's perimeter ring and raises a 2x2
// building in the middle, one cell of which is the door.
func stampCitySlot(l *Layout, rng *rand.Rand, sx, sy int, kind string) {
	bx, by := sx*citySlot, sy*citySlot
	for y := 0; y < citySlot; y++ {
		for x := 0; x < citySlot; x++ {
			if x == 0 || y == 0 || x == citySlot-1 || y == citySlot-1 {
				l.set(bx+x, by+y, terrain.FeatFloor)
			} else {
				l.set(bx+x, by+y, terrain.FeatWall)
			}
		}
	}
	doors := [4][2]int{{1, 1}, {2, 1}, {1, 2}, {2, 2}}
	d := doors[rng.Intn(4)]
	doorX, doorY := bx+d[0], by+d[1]
	l.set(doorX, doorY, terrain.FeatDoor)
	l.Buildings = append(l.Buildings, Building{Kind: kind, DoorX: doorX, DoorY: doorY})
}

// raiseWall walls every exterior tile touching the interior, including
// diagonally, so the ring has no corner gaps.
func raiseWall(l *Layout, interior [][]bool) {
	inside := func(x, y int) bool {
		if x < 0 || y < 0 || x >= l.Width || y >= l.Height {
			return false
		}
		return interior[y/citySlot][x/citySlot]
	}
	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			if inside(x, y) {
				continue
			}
			touches := false
			for dy := -1; dy <= 1 && !touches; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if (dx != 0 || dy != 0) && inside(x+dx, y+dy) {
						touches = true
						break
					}
				}
			}
			if touches {
				l.set(x, y, terrain.FeatWall)
			}
		}
	}
}

// carveGates opens two-tile gates in the wall at the northmost,
// southmost, westmost, and eastmost interior slots.
func carveGates(l *Layout, interior [][]bool, slots int) {
	type extreme struct {
		better func(sx, sy, bx, by int) bool
		place  func(sx, sy int)
	}
	gate := func(x, y int) {
		if x >= 0 && y >= 0 && x < l.Width && y < l.Height {
			l.set(x, y, terrain.FeatGate)
		}
	}
	extremes := []extreme{
		{ // north
			func(sx, sy, bx, by int) bool { return sy < by || (sy == by && sx < bx) },
			func(sx, sy int) { gate(sx*citySlot+1, sy*citySlot-1); gate(sx*citySlot+2, sy*citySlot-1) },
		},
		{ // south
			func(sx, sy, bx, by int) bool { return sy > by || (sy == by && sx < bx) },
			func(sx, sy int) { gate(sx*citySlot+1, sy*citySlot+citySlot); gate(sx*citySlot+2, sy*citySlot+citySlot) },
		},
		{ // west
			func(sx, sy, bx, by int) bool { return sx < bx || (sx == bx && sy < by) },
			func(sx, sy int) { gate(sx*citySlot-1, sy*citySlot+1); gate(sx*citySlot-1, sy*citySlot+2) },
		},
		{ // east
			func(sx, sy, bx, by int) bool { return sx > bx || (sx == bx && sy < by) },
			func(sx, sy int) { gate(sx*citySlot+citySlot, sy*citySlot+1); gate(sx*citySlot+citySlot, sy*citySlot+2) },
		},
	}
	for _, e := range extremes {
		bx, by, found := 0, 0, false
		for sy := 0; sy < slots; sy++ {
			for sx := 0; sx < slots; sx++ {
				if !interior[sy][sx] {
					continue
				}
				if !found || e.better(sx, sy, bx, by) {
					bx, by, found = sx, sy, true
				}
			}
		}
		if found {
			e.place(bx, by)
		}
	}
}

func floodSlots(cand [][]bool, sx, sy int) [][]bool {
	out := make([][]bool, len(cand))
	for i := range out {
		out[i] = make([]bool, len(cand[i]))
	}
	if !cand[sy][sx] {
		return out
	}
	queue := [][2]int{{sx, sy}}
	out[sy][sx] = true
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			nx, ny := c[0]+d[0], c[1]+d[1]
			if ny < 0 || ny >= len(cand) || nx < 0 || nx >= len(cand[ny]) {
				continue
			}
			if cand[ny][nx] && !out[ny][nx] {
				out[ny][nx] = true
				queue = append(queue, [2]int{nx, ny})
			}
		}
	}
	return out
}

// nthHighest returns the nth highest value (0-based) without sorting
// the caller's slice.
func nthHighest(vals []int, n int) int {
	sorted := make([]int, len(vals))
	copy(sorted, vals)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j] > sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	if n >= len(sorted) {
		n = len(sorted) - 1
	}
	return sorted[n]
}
