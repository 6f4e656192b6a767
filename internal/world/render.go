package world

import (
	"math/rand"

	"github.com/reedmace/wildgen/internal/entropy"
	"github.com/reedmace/wildgen/internal/terrain"
)

// Renderer materializes map blocks into tile grids on demand. Every
// render of the same block is bit-identical: the per-block rng is
// re-derived from the world seed and block coordinates each call, so
// the runtime can evict freely and the observation API can render
// statelessly.
type Renderer struct {
	Table *GenTable
	Seed  int64

	ocean map[uint16]bool
}

// NewRenderer builds a renderer over the table and world seed.
func NewRenderer(table *GenTable, seed int64) *Renderer {
	return &Renderer{
		Table: table,
		Seed:  seed,
		ocean: taggedIDs(table, TagOcean),
	}
}

// Render returns the tiles of block bx, by. Coordinates off the map,
// and block types missing from the table, render as open sea.
func (r *Renderer) Render(m *Map, bx, by int) *terrain.Grid {
	g := &terrain.Grid{}
	if m == nil || !m.InBounds(bx, by) {
		fillOcean(g)
		return g
	}
	b := m.BlockAt(bx, by)
	gt := r.Table.ByID(b.Type)
	if gt == nil {
		fillOcean(g)
		return g
	}
	rng := rand.New(rand.NewSource(entropy.BlockSeed(r.Seed, bx, by)))
	r.renderType(g, gt, rng)
	r.overlayRoutes(g, m, bx, by)
	r.overlayLiquid(g, m, bx, by, rng)
	return g
}

// renderType dispatches the block's render routine. Overlay types
// recurse exactly once; the table validator forbids deeper chains.
func (r *Renderer) renderType(g *terrain.Grid, gt *GenType, rng *rand.Rand) {
	switch gt.Routine {
	case RoutineFractal:
		renderFractal(g, gt, rng)
	case RoutineFlat:
		renderFlat(g, gt, rng)
	case RoutineOverlay:
		base := r.Table.ByID(uint16(gt.Params[0]))
		if base != nil {
			r.renderType(g, base, rng)
		} else {
			fillOcean(g)
		}
		stampDisc(g, gt, rng)
	case RoutineFarm:
		renderFarm(g, gt, rng)
	default:
		fillOcean(g)
	}
}

// renderFractal cuts a fresh plasma field into feature bands.
func renderFractal(g *terrain.Grid, gt *GenType, rng *rand.Rand) {
	f := NewPlasmaField(terrain.BlockSize)
	f.Generate(rng)
	for y := 0; y < terrain.BlockSize; y++ {
		for x := 0; x < terrain.BlockSize; x++ {
			v := f.Value(x, y)
			var feat terrain.Feature
			switch {
			case v <= int(gt.Params[0]):
				feat = terrain.Feature(gt.Params[1])
			case v <= int(gt.Params[2]):
				feat = terrain.Feature(gt.Params[3])
			case v <= int(gt.Params[4]):
				feat = terrain.Feature(gt.Params[5])
			default:
				feat = terrain.Feature(gt.Params[7])
			}
			put(g, x, y, feat)
		}
	}
}

// renderFlat scatters weighted features with no spatial correlation.
func renderFlat(g *terrain.Grid, gt *GenType, rng *rand.Rand) {
	type entry struct {
		feat terrain.Feature
		cum  int
	}
	var entries []entry
	total := 0
	for i := 0; i < 8; i += 2 {
		w := int(gt.Params[i+1])
		if w == 0 {
			continue
		}
		total += w
		entries = append(entries, entry{terrain.Feature(gt.Params[i]), total})
	}
	if total == 0 {
		fillOcean(g)
		return
	}
	for y := 0; y < terrain.BlockSize; y++ {
		for x := 0; x < terrain.BlockSize; x++ {
			roll := rng.Intn(total)
			for _, e := range entries {
				if roll < e.cum {
					put(g, x, y, e.feat)
					break
				}
			}
		}
	}
}

// stampDisc draws the overlay routine's feature circle with a jittered
// center and a radius drawn from the type's range.
func stampDisc(g *terrain.Grid, gt *GenType, rng *rand.Rand) {
	rMin, rMax := int(gt.Params[2]), int(gt.Params[3])
	rad := rMin + rng.Intn(rMax-rMin+1)
	cx := 4 + rng.Intn(8)
	cy := 4 + rng.Intn(8)
	feat := terrain.Feature(gt.Params[1])
	for y := 0; y < terrain.BlockSize; y++ {
		for x := 0; x < terrain.BlockSize; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= rad*rad {
				put(g, x, y, feat)
			}
		}
	}
}

// renderFarm lays crop bands inside a hedge border with gateway gaps,
// and sometimes a farmhouse.
func renderFarm(g *terrain.Grid, gt *GenType, rng *rand.Rand) {
	field := terrain.Feature(gt.Params[0])
	fallow := terrain.Feature(gt.Params[1])
	hedge := terrain.Feature(gt.Params[2])
	building := terrain.Feature(gt.Params[3])
	last := terrain.BlockSize - 1

	for y := 0; y < terrain.BlockSize; y++ {
		for x := 0; x < terrain.BlockSize; x++ {
			border := x == 0 || y == 0 || x == last || y == last
			gap := (x == 7 || x == 8 || y == 7 || y == 8)
			switch {
			case border && !gap:
				put(g, x, y, hedge)
			case (y/3)%2 == 0:
				put(g, x, y, field)
			default:
				put(g, x, y, fallow)
			}
		}
	}

	if rng.Intn(100) < int(gt.Params[4]) {
		ox, oy := 3+rng.Intn(8), 3+rng.Intn(8)
		for y := oy; y < oy+3; y++ {
			for x := ox; x < ox+3; x++ {
				put(g, x, y, building)
			}
		}
		put(g, ox+1, oy+1, terrain.FeatFloor)
		switch rng.Intn(4) {
		case 0:
			put(g, ox+1, oy, terrain.FeatDoor)
		case 1:
			put(g, ox+1, oy+2, terrain.FeatDoor)
		case 2:
			put(g, ox, oy+1, terrain.FeatDoor)
		default:
			put(g, ox+2, oy+1, terrain.FeatDoor)
		}
	}
}

// routeTargets maps the eight neighbor directions to the edge point a
// path from the block center aims at.
var routeTargets = [8]struct{ dx, dy, tx, ty int }{
	{0, -1, 8, 0}, {0, 1, 8, 15}, {-1, 0, 0, 8}, {1, 0, 15, 8},
	{-1, -1, 0, 0}, {1, -1, 15, 0}, {-1, 1, 0, 15}, {1, 1, 15, 15},
}

// overlayRoutes draws road and track tiles. A flagged block sends a
// path from its center toward every flagged neighbor, at the weaker of
// the two levels. An unflagged block still renders pass-through paths
// when at least two orthogonal neighbors carry routes, so a road never
// visibly breaks at a block that merely missed the assembler's walk.
func (r *Renderer) overlayRoutes(g *terrain.Grid, m *Map, bx, by int) {
	b := m.BlockAt(bx, by)
	level := b.RoadLevel()

	if level > 0 {
		linked := false
		for _, t := range routeTargets {
			n := m.BlockAt(bx+t.dx, by+t.dy)
			if n == nil || n.RoadLevel() == 0 {
				continue
			}
			seg := level
			if nl := n.RoadLevel(); nl < seg {
				seg = nl
			}
			drawRoute(g, 8, 8, t.tx, t.ty, seg)
			linked = true
		}
		if !linked {
			// Route stub: a flagged block with no flagged neighbors
			// still shows its waypost patch.
			stampRouteTile(g, 7, 7, level)
			stampRouteTile(g, 8, 7, level)
			stampRouteTile(g, 7, 8, level)
			stampRouteTile(g, 8, 8, level)
		}
		return
	}

	pass := 0
	count := 0
	for _, t := range routeTargets[:4] {
		n := m.BlockAt(bx+t.dx, by+t.dy)
		if n == nil || n.RoadLevel() == 0 {
			continue
		}
		count++
		if nl := n.RoadLevel(); pass == 0 || nl < pass {
			pass = nl
		}
	}
	if count < 2 {
		return
	}
	for _, t := range routeTargets[:4] {
		n := m.BlockAt(bx+t.dx, by+t.dy)
		if n == nil || n.RoadLevel() == 0 {
			continue
		}
		drawRoute(g, 8, 8, t.tx, t.ty, pass)
	}
}

// drawRoute walks a line stamping route tiles; road-level segments are
// two tiles wide, tracks one.
func drawRoute(g *terrain.Grid, x0, y0, x1, y1, level int) {
	line(x0, y0, x1, y1, func(x, y int) {
		stampRouteTile(g, x, y, level)
		if level >= 2 {
			if x+1 < terrain.BlockSize {
				stampRouteTile(g, x+1, y, level)
			}
			if y+1 < terrain.BlockSize {
				stampRouteTile(g, x, y+1, level)
			}
		}
	})
}

// stampRouteTile writes one route tile. Water keeps its feature and
// only gains the flag: that is a ford.
func stampRouteTile(g *terrain.Grid, x, y, level int) {
	feat, fl := terrain.FeatTrack, terrain.TileTrack
	if level >= 2 {
		feat, fl = terrain.FeatRoad, terrain.TileRoad
	}
	t := &g.Tiles[y][x]
	t.Flags |= fl
	if t.Feature.IsWater() {
		return
	}
	t.Feature = feat
}

// overlayLiquid draws the block's river or lake: channels toward every
// neighboring water (or sea) block, or a pond when the block stands
// alone. Lava and acid flags swap the liquid feature. Tiles under a
// route keep their road flags, so crossings become fords.
func (r *Renderer) overlayLiquid(g *terrain.Grid, m *Map, bx, by int, rng *rand.Rand) {
	b := m.BlockAt(bx, by)
	const anyLiquid = FlagWater | FlagLava | FlagAcid
	if b.Flags&anyLiquid == 0 {
		return
	}
	feat := terrain.FeatShallow
	switch {
	case b.Flags.Has(FlagLava):
		feat = terrain.FeatLava
	case b.Flags.Has(FlagAcid):
		feat = terrain.FeatAcid
	}

	linked := false
	for _, t := range routeTargets[:4] {
		n := m.BlockAt(bx+t.dx, by+t.dy)
		if n == nil {
			continue
		}
		if n.Flags&anyLiquid == 0 && !r.ocean[n.Type] {
			continue
		}
		line(8, 8, t.tx, t.ty, func(x, y int) {
			stampLiquidTile(g, x, y, feat)
			if x+1 < terrain.BlockSize {
				stampLiquidTile(g, x+1, y, feat)
			}
		})
		linked = true
	}
	if !linked {
		rad := 3 + rng.Intn(3)
		cx, cy := 6+rng.Intn(4), 6+rng.Intn(4)
		for y := 0; y < terrain.BlockSize; y++ {
			for x := 0; x < terrain.BlockSize; x++ {
				dx, dy := x-cx, y-cy
				if dx*dx+dy*dy <= rad*rad {
					stampLiquidTile(g, x, y, feat)
				}
			}
		}
	}
}

// stampLiquidTile floods one tile, preserving route flags (fords).
func stampLiquidTile(g *terrain.Grid, x, y int, feat terrain.Feature) {
	t := &g.Tiles[y][x]
	t.Feature = feat
	if feat.IsWater() {
		t.Flags |= terrain.TileWater
	} else {
		t.Flags &^= terrain.TileWater
	}
}

// put writes a feature and keeps the water flag honest. Route flags
// never exist yet when put runs; it belongs to the base routines.
func put(g *terrain.Grid, x, y int, f terrain.Feature) {
	t := &g.Tiles[y][x]
	t.Feature = f
	if f.IsWater() {
		t.Flags |= terrain.TileWater
	} else {
		t.Flags &^= terrain.TileWater
	}
}

func fillOcean(g *terrain.Grid) {
	for y := 0; y < terrain.BlockSize; y++ {
		for x := 0; x < terrain.BlockSize; x++ {
			g.Tiles[y][x] = terrain.Tile{Feature: terrain.FeatDeep, Flags: terrain.TileWater}
		}
	}
}

// line visits every point of a Bresenham walk from (x0,y0) to (x1,y1),
// endpoints included.
func line(x0, y0, x1, y1 int, visit func(x, y int)) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	e := dx + dy
	for {
		visit(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}
