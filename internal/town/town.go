// Package town builds settlement layouts: the tile overlays stamped on
// top of rendered wilderness blocks wherever a place's footprint lies.
// Layouts are pure functions of the place's fixed seed, memoized per
// place, so a town looks the same every visit.
package town

import (
	"math/rand"
	"sync"

	"github.com/reedmace/wildgen/internal/terrain"
	"github.com/reedmace/wildgen/internal/world"
)

// Building records one stamped structure and its door tile in layout
// coordinates.
type Building struct {
	Kind  string
	DoorX int
	DoorY int
}

// Layout is a place's tile overlay covering its whole footprint.
// Cells with FeatNone are transparent: the wilderness below shows
// through.
type Layout struct {
	Width  int
	Height int
	Tiles  []terrain.Tile

	Buildings []Building
}

func newLayout(w, h int) *Layout {
	return &Layout{Width: w, Height: h, Tiles: make([]terrain.Tile, w*h)}
}

// At returns the cell at layout coordinates.
func (l *Layout) At(x, y int) terrain.Tile {
	return l.Tiles[y*l.Width+x]
}

func (l *Layout) set(x, y int, f terrain.Feature) {
	l.Tiles[y*l.Width+x] = terrain.Tile{Feature: f}
}

// feature reads just the feature id.
func (l *Layout) feature(x, y int) terrain.Feature {
	return l.Tiles[y*l.Width+x].Feature
}

// Store identities dealt to town buildings in shuffled order; buildings
// past the list are homes.
var storeKinds = []string{
	"general store",
	"armoury",
	"weapon smith",
	"temple",
	"alchemist",
	"magic shop",
	"black market",
	"inn",
}

const homeKind = "home"

// Generator builds and caches layouts by place key. Safe for
// concurrent use; the observation API renders while the runtime walks.
type Generator struct {
	mu      sync.Mutex
	layouts map[string]*Layout
}

func NewGenerator() *Generator {
	return &Generator{layouts: make(map[string]*Layout)}
}

// Layout returns the place's overlay, building it on first request.
// Repeated calls return the identical layout.
func (g *Generator) Layout(p *world.Place) *Layout {
	g.mu.Lock()
	defer g.mu.Unlock()
	if l, ok := g.layouts[p.Key]; ok {
		return l
	}
	l := build(p)
	g.layouts[p.Key] = l
	return l
}

func build(p *world.Place) *Layout {
	rng := rand.New(rand.NewSource(p.Seed))
	switch {
	case p.Kind == world.KindDungeon:
		return buildDungeonEntrance(p, rng)
	case p.Width >= 3:
		return buildWalledCity(p, rng)
	default:
		return buildGridTown(p, rng)
	}
}

// Overlay stamps the layout cells covering block (bx,by) onto the
// rendered grid. Transparent cells leave the wilderness tile alone; a
// stamped cell replaces feature and flags both.
func Overlay(g *terrain.Grid, l *Layout, p *world.Place, bx, by int) {
	if !p.Contains(bx, by) {
		return
	}
	offX := (bx - p.X) * terrain.BlockSize
	offY := (by - p.Y) * terrain.BlockSize
	for y := 0; y < terrain.BlockSize; y++ {
		for x := 0; x < terrain.BlockSize; x++ {
			c := l.At(offX+x, offY+y)
			if c.Feature == terrain.FeatNone {
				continue
			}
			g.Tiles[y][x] = c
		}
	}
}

// dealStoreKinds returns the building identity for ordinal i under a
// seeded shuffle of the store list.
func dealStoreKinds(rng *rand.Rand) func() string {
	order := rng.Perm(len(storeKinds))
	i := 0
	return func() string {
		if i >= len(order) {
			return homeKind
		}
		k := storeKinds[order[i]]
		i++
		return k
	}
}
