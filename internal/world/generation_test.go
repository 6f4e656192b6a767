package world

import (
	"reflect"
	"testing"
)

func testConfig(seed int64) GenConfig {
	cfg := DefaultGenConfig()
	cfg.Seed = seed
	return cfg
}

func TestGenerateDeterministic(t *testing.T) {
	table := DefaultTypeTable()
	a := Generate(testConfig(42), table)
	b := Generate(testConfig(42), table)

	if !reflect.DeepEqual(a.Blocks, b.Blocks) {
		t.Fatal("same config produced different blocks")
	}
	if !reflect.DeepEqual(a.Places, b.Places) {
		t.Fatalf("same config produced different places:\n%+v\n%+v", a.Places, b.Places)
	}
}

func TestGenerateSeedsDiffer(t *testing.T) {
	table := DefaultTypeTable()
	a := Generate(testConfig(1), table)
	b := Generate(testConfig(2), table)
	if reflect.DeepEqual(a.Blocks, b.Blocks) {
		t.Fatal("different seeds produced identical blocks")
	}
}

func TestGenerateEdgeIsOcean(t *testing.T) {
	table := DefaultTypeTable()
	m := Generate(testConfig(42), table)
	checkOcean := func(x, y int) {
		b := m.BlockAt(x, y)
		g := table.ByID(b.Type)
		if g == nil || !g.HasTag(TagOcean) {
			t.Errorf("rim block (%d,%d) is %v, want an ocean type", x, y, g)
		}
	}
	for i := 0; i < m.Size; i++ {
		checkOcean(i, 0)
		checkOcean(i, m.Size-1)
		checkOcean(0, i)
		checkOcean(m.Size-1, i)
	}
}

func TestGenerateStartingTown(t *testing.T) {
	table := DefaultTypeTable()
	m := Generate(testConfig(42), table)

	p := m.PlaceByKey(StartingTownKey)
	if p == nil {
		t.Fatal("no starting town")
	}
	if p.Kind != KindTown {
		t.Fatalf("starting town kind = %v", p.Kind)
	}
	if p.Name == "" {
		t.Error("starting town has no name")
	}
	for y := p.Y; y < p.Y+p.Height; y++ {
		for x := p.X; x < p.X+p.Width; x++ {
			if got := m.PlaceAt(x, y); got != p {
				t.Errorf("footprint block (%d,%d) resolves to %v, want the starting town", x, y, got)
			}
		}
	}
}

func TestGenerateTownCountAndSeparation(t *testing.T) {
	cfg := testConfig(42)
	table := DefaultTypeTable()
	m := Generate(cfg, table)

	towns := m.Towns()
	if len(towns) == 0 || len(towns) > cfg.Towns+1 {
		t.Fatalf("%d towns, want 1..%d", len(towns), cfg.Towns+1)
	}
	for i := 0; i < len(towns); i++ {
		for j := i + 1; j < len(towns); j++ {
			d := abs(towns[i].X-towns[j].X) + abs(towns[i].Y-towns[j].Y)
			if d < cfg.TownSep {
				t.Errorf("towns %s and %s only %d apart, want >= %d",
					towns[i].Key, towns[j].Key, d, cfg.TownSep)
			}
		}
	}
	ds := m.Dungeons()
	for i := 0; i < len(ds); i++ {
		for j := i + 1; j < len(ds); j++ {
			d := abs(ds[i].X-ds[j].X) + abs(ds[i].Y-ds[j].Y)
			if d < cfg.DungeonSep {
				t.Errorf("dungeons %s and %s only %d apart, want >= %d",
					ds[i].Key, ds[j].Key, d, cfg.DungeonSep)
			}
		}
	}
}

func TestGeneratePlacesAvoidOcean(t *testing.T) {
	table := DefaultTypeTable()
	m := Generate(testConfig(42), table)
	for _, p := range m.Places {
		for y := p.Y; y < p.Y+p.Height; y++ {
			for x := p.X; x < p.X+p.Width; x++ {
				g := table.ByID(m.BlockAt(x, y).Type)
				if g != nil && g.HasTag(TagOcean) {
					t.Errorf("%s footprint block (%d,%d) sits on %s", p.Key, x, y, g.Name)
				}
			}
		}
	}
}

func TestGenerateWaterAvoidsPlaces(t *testing.T) {
	table := DefaultTypeTable()
	m := Generate(testConfig(42), table)
	const liquid = FlagWater | FlagLava | FlagAcid
	for _, p := range m.Places {
		for y := p.Y; y < p.Y+p.Height; y++ {
			for x := p.X; x < p.X+p.Width; x++ {
				if m.BlockAt(x, y).Flags&liquid != 0 {
					t.Errorf("%s footprint block (%d,%d) carries a liquid flag", p.Key, x, y)
				}
			}
		}
	}
}

func TestGenerateRoadsExist(t *testing.T) {
	table := DefaultTypeTable()
	m := Generate(testConfig(42), table)
	roads := 0
	for i := range m.Blocks {
		if m.Blocks[i].RoadLevel() > 0 {
			roads++
		}
	}
	if roads == 0 {
		t.Fatal("no routeway blocks on a default map")
	}
}

func TestGenerateMonsterFields(t *testing.T) {
	table := DefaultTypeTable()
	m := Generate(testConfig(42), table)

	type sample struct {
		d     int
		level uint8
	}
	var wild []sample
	towns := m.Towns()
	for y := 0; y < m.Size; y++ {
		for x := 0; x < m.Size; x++ {
			b := m.BlockAt(x, y)
			if b.Rarity < 1 {
				t.Fatalf("block (%d,%d) rarity %d, want >= 1", x, y, b.Rarity)
			}
			p := m.PlaceAt(x, y)
			if p != nil && p.Kind == KindTown {
				if b.Level != 0 {
					t.Errorf("town block (%d,%d) level %d, want 0", x, y, b.Level)
				}
				continue
			}
			if b.Level < 1 {
				t.Errorf("block (%d,%d) level %d, want >= 1", x, y, b.Level)
			}
			if p == nil {
				d := m.Size
				for _, tn := range towns {
					cx, cy := tn.CenterBlock()
					if dd := abs(x-cx) + abs(y-cy); dd < d {
						d = dd
					}
				}
				wild = append(wild, sample{d, b.Level})
			}
		}
	}

	// Danger must not decrease with distance from civilization.
	for i := 0; i < len(wild); i += 97 {
		for j := 0; j < len(wild); j += 89 {
			a, b := wild[i], wild[j]
			if a.d < b.d && a.level > b.level {
				t.Fatalf("level falls with distance: d=%d level=%d vs d=%d level=%d",
					a.d, a.level, b.d, b.level)
			}
		}
	}
}

func TestGenerateDegenerateConfig(t *testing.T) {
	table := DefaultTypeTable()
	m := Generate(GenConfig{Size: -5, Towns: -1, Dungeons: -1, Rivers: -1, Lakes: -1}, table)
	if m.Size != 4 {
		t.Fatalf("size clamped to %d, want 4", m.Size)
	}
	if m.PlaceByKey(StartingTownKey) == nil {
		t.Fatal("degenerate config lost the starting town")
	}
}

func TestGenerateNoExtraTowns(t *testing.T) {
	cfg := testConfig(7)
	cfg.Towns = 0
	cfg.Dungeons = 0
	m := Generate(cfg, DefaultTypeTable())
	if got := len(m.Towns()); got != 1 {
		t.Fatalf("%d towns, want exactly the starting town", got)
	}
	if got := len(m.Dungeons()); got != 0 {
		t.Fatalf("%d dungeons, want 0", got)
	}
}

func TestGenerateEmptyTable(t *testing.T) {
	table, err := NewGenTable(nil)
	if err != nil {
		t.Fatalf("NewGenTable(nil): %v", err)
	}
	m := Generate(testConfig(3), table)
	for i := range m.Blocks {
		if m.Blocks[i].Type != 0 {
			t.Fatalf("empty table produced type %d", m.Blocks[i].Type)
		}
	}
	// The starting town still anchors the map, by force if need be.
	if m.PlaceByKey(StartingTownKey) == nil {
		t.Fatal("empty table lost the starting town")
	}
}

func TestGenerateSeedFortyTwoScenario(t *testing.T) {
	table := DefaultTypeTable()
	m := Generate(testConfig(42), table)

	starting := 0
	for i := range m.Places {
		if m.Places[i].Key == StartingTownKey {
			starting++
		}
	}
	if starting != 1 {
		t.Fatalf("%d places keyed %q, want exactly 1", starting, StartingTownKey)
	}
	if len(m.Dungeons()) == 0 {
		t.Fatal("no dungeons on the default seed-42 map")
	}

	again := Generate(testConfig(42), table)
	a, b := m.PlaceByKey(StartingTownKey), again.PlaceByKey(StartingTownKey)
	if a.X != b.X || a.Y != b.Y {
		t.Fatalf("starting town moved between runs: (%d,%d) vs (%d,%d)", a.X, a.Y, b.X, b.Y)
	}
}
