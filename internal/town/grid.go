package town

import (
	"math/rand"

	"github.com/reedmace/wildgen/internal/terrain"
	"github.com/reedmace/wildgen/internal/world"
)

// Grid town geometry: a 32x32 overlay with two street rows and two
// street columns, a paved plaza in the middle cell, and a shop in each
// of the eight outer cells. Streets sit at tiles 10,11 and 20,21.
var (
	gridStreets = []int{10, 11, 20, 21}
	gridSpans   = [3][2]int{{1, 9}, {12, 19}, {22, 30}}
)

func buildGridTown(p *world.Place, rng *rand.Rand) *Layout {
	l := newLayout(p.Width*terrain.BlockSize, p.Height*terrain.BlockSize)
	deal := dealStoreKinds(rng)

	for _, s := range gridStreets {
		for i := 0; i < l.Width; i++ {
			l.set(i, s, terrain.FeatDirt)
			l.set(s, i, terrain.FeatDirt)
		}
	}
	for y := 12; y <= 19; y++ {
		for x := 12; x <= 19; x++ {
			l.set(x, y, terrain.FeatFloor)
		}
	}

	cells := [8][2]int{{0, 0}, {1, 0}, {2, 0}, {0, 1}, {2, 1}, {0, 2}, {1, 2}, {2, 2}}
	for _, c := range cells {
		stampShop(l, rng, c, deal())
	}
	return l
}

// stampShop places a 6x6 building inside the cell with a jittered
// offset, opens a door on a street-facing side, and carves a dirt path
// from the door to the street lattice.
func stampShop(l *Layout, rng *rand.Rand, cell [2]int, kind string) {
	xs, ys := gridSpans[cell[0]], gridSpans[cell[1]]
	ox := xs[0] + rng.Intn(xs[1]-xs[0]+1-6+1)
	oy := ys[0] + rng.Intn(ys[1]-ys[0]+1-6+1)

	for y := oy; y < oy+6; y++ {
		for x := ox; x < ox+6; x++ {
			if x == ox || y == oy || x == ox+5 || y == oy+5 {
				l.set(x, y, terrain.FeatWall)
			} else {
				l.set(x, y, terrain.FeatFloor)
			}
		}
	}

	// Sides pointing off the layout never face a street.
	var sides [][2]int
	if cell[0] != 0 {
		sides = append(sides, [2]int{-1, 0})
	}
	if cell[0] != 2 {
		sides = append(sides, [2]int{1, 0})
	}
	if cell[1] != 0 {
		sides = append(sides, [2]int{0, -1})
	}
	if cell[1] != 2 {
		sides = append(sides, [2]int{0, 1})
	}
	s := sides[rng.Intn(len(sides))]

	var doorX, doorY int
	switch {
	case s[0] == -1:
		doorX, doorY = ox, oy+2+rng.Intn(2)
	case s[0] == 1:
		doorX, doorY = ox+5, oy+2+rng.Intn(2)
	case s[1] == -1:
		doorX, doorY = ox+2+rng.Intn(2), oy
	default:
		doorX, doorY = ox+2+rng.Intn(2), oy+5
	}
	l.set(doorX, doorY, terrain.FeatDoor)
	l.Buildings = append(l.Buildings, Building{Kind: kind, DoorX: doorX, DoorY: doorY})

	for x, y := doorX+s[0], doorY+s[1]; ; x, y = x+s[0], y+s[1] {
		if x < 0 || y < 0 || x >= l.Width || y >= l.Height {
			return
		}
		switch l.feature(x, y) {
		case terrain.FeatNone:
			l.set(x, y, terrain.FeatDirt)
		default:
			// Reached the street, the plaza, or anything already built.
			return
		}
	}
}
