package world

import (
	"reflect"
	"testing"

	"github.com/reedmace/wildgen/internal/terrain"
)

func uniformMap(size int, typ uint16, seed int64) *Map {
	m := NewMap(size, seed)
	for i := range m.Blocks {
		m.Blocks[i].Type = typ
	}
	return m
}

func TestRenderDeterministic(t *testing.T) {
	table := DefaultTypeTable()
	m := Generate(testConfig(42), table)
	r := NewRenderer(table, m.Seed)

	for _, c := range [][2]int{{0, 0}, {10, 10}, {31, 17}, {m.Size - 1, m.Size - 1}} {
		a := r.Render(m, c[0], c[1])
		b := r.Render(m, c[0], c[1])
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("block (%d,%d) renders differently on repeat", c[0], c[1])
		}
	}
}

func TestRenderOutOfRange(t *testing.T) {
	table := DefaultTypeTable()
	m := uniformMap(4, 10, 1)
	r := NewRenderer(table, 1)
	for _, c := range [][2]int{{-1, 0}, {0, -1}, {4, 0}, {0, 4}} {
		g := r.Render(m, c[0], c[1])
		for y := 0; y < terrain.BlockSize; y++ {
			for x := 0; x < terrain.BlockSize; x++ {
				tl := g.At(x, y)
				if tl.Feature != terrain.FeatDeep || !tl.Flags.Has(terrain.TileWater) {
					t.Fatalf("off-map block %v tile (%d,%d) = %+v, want deep water", c, x, y, tl)
				}
			}
		}
	}
}

func TestRenderUnknownType(t *testing.T) {
	table := DefaultTypeTable()
	m := uniformMap(2, 999, 5)
	r := NewRenderer(table, 5)
	g := r.Render(m, 0, 0)
	if f := g.At(8, 8).Feature; f != terrain.FeatDeep {
		t.Fatalf("unknown type rendered %v, want deep water", f)
	}
}

func TestRenderFractalBandFeatures(t *testing.T) {
	table := DefaultTypeTable()
	m := uniformMap(3, 10, 9)
	r := NewRenderer(table, 9)
	g := r.Render(m, 1, 1)

	allowed := map[terrain.Feature]bool{
		terrain.FeatGrass:   true,
		terrain.FeatFlowers: true,
		terrain.FeatBush:    true,
	}
	for y := 0; y < terrain.BlockSize; y++ {
		for x := 0; x < terrain.BlockSize; x++ {
			if f := g.At(x, y).Feature; !allowed[f] {
				t.Fatalf("grassland tile (%d,%d) = %v, outside the type's bands", x, y, f)
			}
		}
	}
}

func TestRenderFlatUniformWeight(t *testing.T) {
	table, err := NewGenTable([]GenType{{
		ID: 1, Name: "sands", Routine: RoutineFlat, Icon: terrain.FeatSand,
		Box:    ParamBox{0, 255, 0, 255, 0, 255},
		Params: [8]uint8{uint8(terrain.FeatSand), 3},
	}})
	if err != nil {
		t.Fatalf("NewGenTable: %v", err)
	}
	m := uniformMap(2, 1, 4)
	g := NewRenderer(table, 4).Render(m, 0, 0)
	for y := 0; y < terrain.BlockSize; y++ {
		for x := 0; x < terrain.BlockSize; x++ {
			if f := g.At(x, y).Feature; f != terrain.FeatSand {
				t.Fatalf("tile (%d,%d) = %v, want sand everywhere", x, y, f)
			}
		}
	}
}

func TestRenderOverlayDisc(t *testing.T) {
	table, err := NewGenTable([]GenType{
		{
			ID: 1, Name: "sands", Routine: RoutineFlat, Icon: terrain.FeatSand,
			Box:    ParamBox{0, 127, 0, 255, 0, 255},
			Params: [8]uint8{uint8(terrain.FeatSand), 1},
		},
		{
			ID: 2, Name: "oasis", Routine: RoutineOverlay, Icon: terrain.FeatShallow,
			Box:    ParamBox{128, 255, 0, 255, 0, 255},
			Params: [8]uint8{1, uint8(terrain.FeatShallow), 2, 4},
		},
	})
	if err != nil {
		t.Fatalf("NewGenTable: %v", err)
	}
	m := uniformMap(2, 2, 11)
	g := NewRenderer(table, 11).Render(m, 1, 1)

	water, sand := 0, 0
	for y := 0; y < terrain.BlockSize; y++ {
		for x := 0; x < terrain.BlockSize; x++ {
			switch g.At(x, y).Feature {
			case terrain.FeatShallow:
				water++
				if !g.At(x, y).Flags.Has(terrain.TileWater) {
					t.Fatalf("water tile (%d,%d) missing the water flag", x, y)
				}
			case terrain.FeatSand:
				sand++
			default:
				t.Fatalf("unexpected feature %v at (%d,%d)", g.At(x, y).Feature, x, y)
			}
		}
	}
	if water < 5 {
		t.Errorf("disc produced only %d water tiles", water)
	}
	if sand == 0 {
		t.Error("disc flooded the whole block")
	}
}

func TestRenderFarm(t *testing.T) {
	table := DefaultTypeTable()
	m := uniformMap(3, 11, 13)
	g := NewRenderer(table, 13).Render(m, 1, 1)

	if f := g.At(0, 0).Feature; f != terrain.FeatHedge {
		t.Errorf("corner tile = %v, want hedge", f)
	}
	// Gateway gaps keep the field enterable.
	if f := g.At(7, 0).Feature; f == terrain.FeatHedge {
		t.Error("north gateway blocked by hedge")
	}
	if f := g.At(0, 8).Feature; f == terrain.FeatHedge {
		t.Error("west gateway blocked by hedge")
	}
	allowed := map[terrain.Feature]bool{
		terrain.FeatField: true, terrain.FeatDirt: true, terrain.FeatHedge: true,
		terrain.FeatWall: true, terrain.FeatFloor: true, terrain.FeatDoor: true,
	}
	for y := 0; y < terrain.BlockSize; y++ {
		for x := 0; x < terrain.BlockSize; x++ {
			if f := g.At(x, y).Feature; !allowed[f] {
				t.Fatalf("farm tile (%d,%d) = %v", x, y, f)
			}
		}
	}
}

func TestRenderRoadToFlaggedNeighbor(t *testing.T) {
	table := DefaultTypeTable()
	m := uniformMap(3, 10, 21)
	m.BlockAt(1, 1).Flags |= FlagRoad
	m.BlockAt(2, 1).Flags |= FlagRoad
	g := NewRenderer(table, 21).Render(m, 1, 1)

	tl := g.At(12, 8)
	if tl.Feature != terrain.FeatRoad || !tl.Flags.Has(terrain.TileRoad) {
		t.Fatalf("tile (12,8) = %+v, want a road tile toward the east neighbor", tl)
	}
	if !g.At(12, 9).Flags.Has(terrain.TileRoad) {
		t.Error("road is not two tiles wide")
	}
	if g.At(2, 8).Flags.Has(terrain.TileRoad) {
		t.Error("road tile on the unlinked west side")
	}
}

func TestRenderTrackSingleWidth(t *testing.T) {
	table := DefaultTypeTable()
	m := uniformMap(3, 10, 22)
	m.BlockAt(1, 1).Flags |= FlagRoad
	m.BlockAt(2, 1).Flags |= FlagTrack
	g := NewRenderer(table, 22).Render(m, 1, 1)

	tl := g.At(12, 8)
	if tl.Feature != terrain.FeatTrack || !tl.Flags.Has(terrain.TileTrack) {
		t.Fatalf("tile (12,8) = %+v, want a track tile (weaker end wins)", tl)
	}
	if g.At(12, 9).Flags.Has(terrain.TileTrack) {
		t.Error("track rendered two tiles wide")
	}
}

func TestRenderPassThroughRoad(t *testing.T) {
	table := DefaultTypeTable()
	m := uniformMap(3, 10, 23)
	m.BlockAt(0, 1).Flags |= FlagRoad
	m.BlockAt(2, 1).Flags |= FlagRoad
	g := NewRenderer(table, 23).Render(m, 1, 1)
	if !g.At(3, 8).Flags.Has(terrain.TileRoad) || !g.At(12, 8).Flags.Has(terrain.TileRoad) {
		t.Fatal("unflagged block between two road neighbors has no pass-through road")
	}
}

func TestRenderNoPassThroughForSingleNeighbor(t *testing.T) {
	table := DefaultTypeTable()
	m := uniformMap(3, 10, 24)
	m.BlockAt(2, 1).Flags |= FlagRoad
	g := NewRenderer(table, 24).Render(m, 1, 1)
	for y := 0; y < terrain.BlockSize; y++ {
		for x := 0; x < terrain.BlockSize; x++ {
			if g.At(x, y).Flags.Has(terrain.TileRoad) {
				t.Fatalf("road tile at (%d,%d) with only one flagged neighbor", x, y)
			}
		}
	}
}

func TestRenderFordWhereRiverCrossesRoad(t *testing.T) {
	table := DefaultTypeTable()
	m := uniformMap(3, 10, 25)
	m.BlockAt(1, 1).Flags |= FlagRoad | FlagWater
	m.BlockAt(2, 1).Flags |= FlagRoad
	m.BlockAt(1, 0).Flags |= FlagWater
	g := NewRenderer(table, 25).Render(m, 1, 1)

	tl := g.At(8, 8)
	if tl.Feature != terrain.FeatShallow {
		t.Fatalf("crossing tile feature = %v, want shallow water", tl.Feature)
	}
	if !tl.Flags.Has(terrain.TileRoad) || !tl.Flags.Has(terrain.TileWater) {
		t.Fatalf("crossing tile flags = %v, want road and water (a ford)", tl.Flags)
	}
}

func TestRenderPondWhenIsolated(t *testing.T) {
	table := DefaultTypeTable()
	m := uniformMap(3, 10, 26)
	m.BlockAt(1, 1).Flags |= FlagWater
	g := NewRenderer(table, 26).Render(m, 1, 1)

	water := 0
	for y := 0; y < terrain.BlockSize; y++ {
		for x := 0; x < terrain.BlockSize; x++ {
			if g.At(x, y).Feature == terrain.FeatShallow {
				water++
				if !g.At(x, y).Flags.Has(terrain.TileWater) {
					t.Fatalf("pond tile (%d,%d) missing water flag", x, y)
				}
			}
		}
	}
	if water < 9 {
		t.Fatalf("isolated water block rendered only %d pond tiles", water)
	}
}

func TestRenderLavaChannel(t *testing.T) {
	table := DefaultTypeTable()
	m := uniformMap(3, 10, 27)
	m.BlockAt(1, 1).Flags |= FlagLava
	m.BlockAt(2, 1).Flags |= FlagLava
	g := NewRenderer(table, 27).Render(m, 1, 1)

	tl := g.At(12, 8)
	if tl.Feature != terrain.FeatLava {
		t.Fatalf("channel tile = %v, want lava", tl.Feature)
	}
	if tl.Flags.Has(terrain.TileWater) {
		t.Error("lava tile flagged as water")
	}
}

func TestRenderChannelMeetsSea(t *testing.T) {
	table := DefaultTypeTable()
	m := uniformMap(3, 10, 28)
	m.BlockAt(1, 1).Flags |= FlagWater
	m.BlockAt(2, 1).Type = 1 // deep ocean neighbor, no flag needed
	g := NewRenderer(table, 28).Render(m, 1, 1)
	if f := g.At(14, 8).Feature; f != terrain.FeatShallow {
		t.Fatalf("tile (14,8) = %v, want the channel running into the sea", f)
	}
}
