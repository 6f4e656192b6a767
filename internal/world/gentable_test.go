package world

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/reedmace/wildgen/internal/terrain"
)

func TestDefaultTableShape(t *testing.T) {
	table := DefaultTypeTable()
	if table.Len() != 19 {
		t.Fatalf("Len() = %d, want 19", table.Len())
	}
	if table.Fallback() != 1 {
		t.Fatalf("Fallback() = %d, want 1", table.Fallback())
	}
	routines := map[int]int{}
	for _, g := range table.Types() {
		routines[g.Routine]++
	}
	for r := RoutineFractal; r <= RoutineFarm; r++ {
		if routines[r] == 0 {
			t.Errorf("routine %d unused by the default table", r)
		}
	}
	if g := table.ByID(10); g == nil || g.Name != "grassland" {
		t.Errorf("ByID(10) = %+v, want grassland", g)
	}
	if g := table.ByID(200); g != nil {
		t.Errorf("ByID(200) = %+v, want nil", g)
	}
}

// boundarySamples derives per-axis probe values from the table's own
// box edges plus the values just outside them, so the coverage test
// hits every boundary exactly.
func boundarySamples(types []GenType, lohi func(b ParamBox) (uint8, uint8)) []uint8 {
	seen := map[uint8]bool{0: true, 255: true}
	for _, g := range types {
		lo, hi := lohi(g.Box)
		seen[lo], seen[hi] = true, true
		if lo > 0 {
			seen[lo-1] = true
		}
		if hi < 255 {
			seen[hi+1] = true
		}
	}
	out := make([]uint8, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	return out
}

func TestDefaultTableTilesCube(t *testing.T) {
	table := DefaultTypeTable()
	types := table.Types()
	hs := boundarySamples(types, func(b ParamBox) (uint8, uint8) { return b.HgtLo, b.HgtHi })
	ps := boundarySamples(types, func(b ParamBox) (uint8, uint8) { return b.PopLo, b.PopHi })
	ls := boundarySamples(types, func(b ParamBox) (uint8, uint8) { return b.LawLo, b.LawHi })

	for _, h := range hs {
		for _, p := range ps {
			for _, l := range ls {
				pt := ParameterPoint{h, p, l}
				var ids []uint16
				for _, g := range types {
					if g.Box.Contains(pt) {
						ids = append(ids, g.ID)
					}
				}
				switch {
				case len(ids) == 1:
				case len(ids) == 2 && ids[0] == 6 && ids[1] == 7:
					// The reed marsh / lily pond pair shares one box.
				default:
					t.Fatalf("point %+v covered by %v, want exactly one box (or the 6/7 pair)", pt, ids)
				}
			}
		}
	}
}

func TestNewGenTableRejectsBadTypes(t *testing.T) {
	grass := uint8(terrain.FeatGrass)
	valid := GenType{
		ID: 1, Name: "ok", Routine: RoutineFlat, Icon: terrain.FeatGrass,
		Box:    ParamBox{0, 255, 0, 255, 0, 255},
		Params: [8]uint8{grass, 1},
	}

	cases := []struct {
		name  string
		types []GenType
	}{
		{"zero id", []GenType{{ID: 0, Name: "z", Routine: RoutineFlat, Icon: terrain.FeatGrass, Box: ParamBox{0, 255, 0, 255, 0, 255}, Params: [8]uint8{grass, 1}}}},
		{"duplicate id", []GenType{valid, valid}},
		{"empty name", []GenType{{ID: 2, Routine: RoutineFlat, Icon: terrain.FeatGrass, Box: ParamBox{0, 255, 0, 255, 0, 255}, Params: [8]uint8{grass, 1}}}},
		{"inverted box", []GenType{{ID: 2, Name: "x", Routine: RoutineFlat, Icon: terrain.FeatGrass, Box: ParamBox{200, 100, 0, 255, 0, 255}, Params: [8]uint8{grass, 1}}}},
		{"unknown routine", []GenType{{ID: 2, Name: "x", Routine: 9, Icon: terrain.FeatGrass, Box: ParamBox{0, 255, 0, 255, 0, 255}}}},
		{"descending fractal cuts", []GenType{{ID: 2, Name: "x", Routine: RoutineFractal, Icon: terrain.FeatGrass, Box: ParamBox{0, 255, 0, 255, 0, 255}, Params: [8]uint8{200, grass, 100, grass, 220, grass, 0, grass}}}},
		{"flat all weights zero", []GenType{{ID: 2, Name: "x", Routine: RoutineFlat, Icon: terrain.FeatGrass, Box: ParamBox{0, 255, 0, 255, 0, 255}}}},
		{"overlay base missing", []GenType{{ID: 2, Name: "x", Routine: RoutineOverlay, Icon: terrain.FeatGrass, Box: ParamBox{0, 255, 0, 255, 0, 255}, Params: [8]uint8{42, grass, 2, 5}}}},
		{"overlay zero radius", []GenType{valid, {ID: 2, Name: "x", Routine: RoutineOverlay, Icon: terrain.FeatGrass, Box: ParamBox{0, 255, 0, 255, 0, 255}, Params: [8]uint8{1, grass, 0, 5}}}},
		{"farm chance over 100", []GenType{{ID: 2, Name: "x", Routine: RoutineFarm, Icon: terrain.FeatGrass, Box: ParamBox{0, 255, 0, 255, 0, 255}, Params: [8]uint8{grass, grass, grass, grass, 150}}}},
	}
	for _, tc := range cases {
		if _, err := NewGenTable(tc.types); err == nil {
			t.Errorf("%s: NewGenTable accepted invalid input", tc.name)
		}
	}
}

func TestNewGenTableRejectsOverlayOnOverlay(t *testing.T) {
	grass := uint8(terrain.FeatGrass)
	_, err := NewGenTable([]GenType{
		{ID: 1, Name: "base", Routine: RoutineFlat, Icon: terrain.FeatGrass, Box: ParamBox{0, 127, 0, 255, 0, 255}, Params: [8]uint8{grass, 1}},
		{ID: 2, Name: "over", Routine: RoutineOverlay, Icon: terrain.FeatGrass, Box: ParamBox{128, 200, 0, 255, 0, 255}, Params: [8]uint8{1, grass, 2, 4}},
		{ID: 3, Name: "overover", Routine: RoutineOverlay, Icon: terrain.FeatGrass, Box: ParamBox{201, 255, 0, 255, 0, 255}, Params: [8]uint8{2, grass, 2, 4}},
	})
	if err == nil {
		t.Fatal("NewGenTable accepted an overlay whose base is an overlay")
	}
}

func TestLoadTypeTable(t *testing.T) {
	src := `types:
  - id: 1
    name: meadow
    comment: open grass with clover
    routine: 1
    icon: 1
    height: [0, 200]
    pop: [0, 255]
    law: [0, 255]
    params: [80, 1, 160, 2, 220, 3, 0, 4]
    tags: [lush]
  - id: 2
    name: peaks
    routine: 2
    icon: 11
    height: [201, 255]
    pop: [0, 255]
    law: [0, 255]
    params: [11, 3, 13, 1]
    weight: 2
    tags: [rough]
`
	path := filepath.Join(t.TempDir(), "types.yaml")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	table, err := LoadTypeTable(path)
	if err != nil {
		t.Fatalf("LoadTypeTable: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", table.Len())
	}
	g := table.ByID(1)
	if g == nil {
		t.Fatal("ByID(1) = nil")
	}
	if g.Name != "meadow" || g.Comment != "open grass with clover" || g.Routine != RoutineFractal {
		t.Errorf("row 1 loaded wrong: %+v", g)
	}
	if g.Box.HgtHi != 200 || g.Params[0] != 80 || g.Params[7] != 4 {
		t.Errorf("row 1 box/params loaded wrong: %+v", g)
	}
	if p := table.ByID(2); p == nil || !p.HasTag(TagRough) || p.Weight != 2 {
		t.Errorf("row 2 loaded wrong: %+v", p)
	}
}

func TestLoadTypeTableErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadTypeTable(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing file accepted")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("types:\n  - id: 1\n    name: x\n    routine: 12\n    icon: 1\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadTypeTable(bad); err == nil {
		t.Error("unknown routine accepted")
	}

	garbled := filepath.Join(dir, "garbled.yaml")
	if err := os.WriteFile(garbled, []byte("types: [\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadTypeTable(garbled); err == nil {
		t.Error("garbled yaml accepted")
	}
}
