package world

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/reedmace/wildgen/internal/terrain"
)

// Render routines. Every generation type names one of these; the
// renderer dispatches on it when a block of that type is materialized.
const (
	// RoutineFractal fills the block from a plasma field cut into up
	// to four feature bands. Params: [c1 f1 c2 f2 c3 f3 _ f4] with
	// ascending cuts; field values at or below c1 render f1, and so on,
	// values above c3 render f4.
	RoutineFractal = 1
	// RoutineFlat scatters features by weight with no spatial
	// correlation. Params: [f1 w1 f2 w2 f3 w3 f4 w4]; zero-weight
	// entries are skipped.
	RoutineFlat = 2
	// RoutineOverlay renders another generation type as the base, then
	// stamps a feature disc on it. Params: [baseType circleFeat rMin rMax].
	RoutineOverlay = 3
	// RoutineFarm lays out a tended field: crop rows inside a hedge
	// border with a chance of a farm building. Params:
	// [field fallow hedge building buildPct].
	RoutineFarm = 4
)

// Tags understood by the assembler and renderer. Any other tag is
// carried but ignored.
const (
	// TagOcean marks sea types: rivers end here, lakes and roads and
	// settlements avoid these blocks.
	TagOcean = "ocean"
	// TagRough marks terrain roads refuse to cross.
	TagRough = "rough"
)

// ParamBox is an axis-aligned region of the parameter cube, all bounds
// inclusive.
type ParamBox struct {
	HgtLo, HgtHi uint8
	PopLo, PopHi uint8
	LawLo, LawHi uint8
}

// Contains reports whether the point falls inside the box.
func (b ParamBox) Contains(p ParameterPoint) bool {
	return p.Height >= b.HgtLo && p.Height <= b.HgtHi &&
		p.Population >= b.PopLo && p.Population <= b.PopHi &&
		p.Law >= b.LawLo && p.Law <= b.LawHi
}

// GenType is one row of the generation type table: a region of the
// parameter cube plus instructions for rendering blocks of this type.
type GenType struct {
	ID      uint16
	Name    string
	Comment string
	Routine int
	// Icon is the feature shown for this type on the overview map.
	Icon   terrain.Feature
	Box    ParamBox
	Params [8]uint8
	// Weight resolves probabilistic leaves when several types share a
	// box. Zero counts as one.
	Weight int
	Tags   []string
}

// HasTag reports whether the type carries the tag.
func (g *GenType) HasTag(tag string) bool {
	for _, t := range g.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// GenTable holds the generation types and an id index. Tables are
// immutable after construction.
type GenTable struct {
	types []GenType
	byID  map[uint16]int
}

// NewGenTable validates the types and builds the table. An empty table
// is legal: the classifier then resolves every point to the zero
// fallback id.
func NewGenTable(types []GenType) (*GenTable, error) {
	t := &GenTable{
		types: types,
		byID:  make(map[uint16]int, len(types)),
	}
	for i := range types {
		g := &types[i]
		if g.ID == 0 {
			return nil, fmt.Errorf("gen table: type %q: id 0 is reserved", g.Name)
		}
		if _, dup := t.byID[g.ID]; dup {
			return nil, fmt.Errorf("gen table: duplicate id %d", g.ID)
		}
		t.byID[g.ID] = i
		if err := validateGenType(g); err != nil {
			return nil, err
		}
	}
	// Overlay base references can only be checked once all ids are known.
	for i := range types {
		g := &types[i]
		if g.Routine != RoutineOverlay {
			continue
		}
		base, ok := t.byID[uint16(g.Params[0])]
		if !ok {
			return nil, fmt.Errorf("gen table: type %d (%s): overlay base %d not in table", g.ID, g.Name, g.Params[0])
		}
		if t.types[base].Routine == RoutineOverlay {
			return nil, fmt.Errorf("gen table: type %d (%s): overlay base %d is itself an overlay", g.ID, g.Name, g.Params[0])
		}
	}
	return t, nil
}

func validateGenType(g *GenType) error {
	if g.Name == "" {
		return fmt.Errorf("gen table: type %d: empty name", g.ID)
	}
	if !g.Icon.Valid() {
		return fmt.Errorf("gen table: type %d (%s): bad icon %d", g.ID, g.Name, g.Icon)
	}
	b := g.Box
	if b.HgtLo > b.HgtHi || b.PopLo > b.PopHi || b.LawLo > b.LawHi {
		return fmt.Errorf("gen table: type %d (%s): inverted box bounds", g.ID, g.Name)
	}
	if g.Weight < 0 {
		return fmt.Errorf("gen table: type %d (%s): negative weight", g.ID, g.Name)
	}
	switch g.Routine {
	case RoutineFractal:
		if g.Params[0] > g.Params[2] || g.Params[2] > g.Params[4] {
			return fmt.Errorf("gen table: type %d (%s): fractal cuts must ascend", g.ID, g.Name)
		}
		for _, i := range []int{1, 3, 5, 7} {
			if !terrain.Feature(g.Params[i]).Valid() {
				return fmt.Errorf("gen table: type %d (%s): bad feature %d", g.ID, g.Name, g.Params[i])
			}
		}
	case RoutineFlat:
		total := 0
		for i := 0; i < 8; i += 2 {
			if g.Params[i+1] == 0 {
				continue
			}
			if !terrain.Feature(g.Params[i]).Valid() {
				return fmt.Errorf("gen table: type %d (%s): bad feature %d", g.ID, g.Name, g.Params[i])
			}
			total += int(g.Params[i+1])
		}
		if total == 0 {
			return fmt.Errorf("gen table: type %d (%s): all weights zero", g.ID, g.Name)
		}
	case RoutineOverlay:
		if !terrain.Feature(g.Params[1]).Valid() {
			return fmt.Errorf("gen table: type %d (%s): bad circle feature %d", g.ID, g.Name, g.Params[1])
		}
		if g.Params[2] == 0 || g.Params[2] > g.Params[3] {
			return fmt.Errorf("gen table: type %d (%s): bad radius range %d..%d", g.ID, g.Name, g.Params[2], g.Params[3])
		}
	case RoutineFarm:
		for _, i := range []int{0, 1, 2, 3} {
			if !terrain.Feature(g.Params[i]).Valid() {
				return fmt.Errorf("gen table: type %d (%s): bad feature %d", g.ID, g.Name, g.Params[i])
			}
		}
		if g.Params[4] > 100 {
			return fmt.Errorf("gen table: type %d (%s): build chance %d%% over 100", g.ID, g.Name, g.Params[4])
		}
	default:
		return fmt.Errorf("gen table: type %d (%s): unknown routine %d", g.ID, g.Name, g.Routine)
	}
	return nil
}

// ByID returns the type with the id, or nil.
func (t *GenTable) ByID(id uint16) *GenType {
	i, ok := t.byID[id]
	if !ok {
		return nil
	}
	return &t.types[i]
}

// Types returns the table rows in declaration order.
func (t *GenTable) Types() []GenType {
	return t.types
}

// Len returns the number of types.
func (t *GenTable) Len() int {
	return len(t.types)
}

// Fallback returns the id used for parameter points no box claims:
// the first table entry's id, or zero for an empty table.
func (t *GenTable) Fallback() uint16 {
	if len(t.types) == 0 {
		return 0
	}
	return t.types[0].ID
}

// typeFile is the YAML shape of an external type table.
type typeFile struct {
	Types []typeRecord `yaml:"types"`
}

type typeRecord struct {
	ID      uint16   `yaml:"id"`
	Name    string   `yaml:"name"`
	Comment string   `yaml:"comment"`
	Routine int      `yaml:"routine"`
	Icon    uint8    `yaml:"icon"`
	Height  [2]uint8 `yaml:"height"`
	Pop     [2]uint8 `yaml:"pop"`
	Law     [2]uint8 `yaml:"law"`
	Params  []uint8  `yaml:"params"`
	Weight  int      `yaml:"weight"`
	Tags    []string `yaml:"tags"`
}

// LoadTypeTable reads a generation type table from a YAML file.
// Features and icons are referenced by numeric id; params follow the
// per-routine layouts documented on the routine constants.
func LoadTypeTable(path string) (*GenTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read type table: %w", err)
	}
	var f typeFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse type table: %w", err)
	}
	types := make([]GenType, 0, len(f.Types))
	for _, r := range f.Types {
		if len(r.Params) > 8 {
			return nil, fmt.Errorf("parse type table: type %d (%s): %d params, max 8", r.ID, r.Name, len(r.Params))
		}
		g := GenType{
			ID:      r.ID,
			Name:    r.Name,
			Comment: r.Comment,
			Routine: r.Routine,
			Icon:    terrain.Feature(r.Icon),
			Box: ParamBox{
				HgtLo: r.Height[0], HgtHi: r.Height[1],
				PopLo: r.Pop[0], PopHi: r.Pop[1],
				LawLo: r.Law[0], LawHi: r.Law[1],
			},
			Weight: r.Weight,
			Tags:   r.Tags,
		}
		copy(g.Params[:], r.Params)
		types = append(types, g)
	}
	return NewGenTable(types)
}

// DefaultTypeTable returns the built-in table. Its boxes tile the
// whole parameter cube: height bands from deep ocean up to mountains,
// split by population and law where the band supports more than one
// terrain. One box is shared by reed marsh and lily pond, resolved per
// block by weight.
func DefaultTypeTable() *GenTable {
	f := func(feat terrain.Feature) uint8 { return uint8(feat) }
	t, err := NewGenTable([]GenType{
		{
			ID: 1, Name: "deep_ocean", Routine: RoutineFlat, Icon: terrain.FeatDeep,
			Box:    ParamBox{0, 39, 0, 255, 0, 255},
			Params: [8]uint8{f(terrain.FeatDeep), 1},
			Tags:   []string{TagOcean},
		},
		{
			ID: 2, Name: "ocean", Routine: RoutineFlat, Icon: terrain.FeatDeep,
			Box:    ParamBox{40, 63, 0, 255, 0, 255},
			Params: [8]uint8{f(terrain.FeatDeep), 6, f(terrain.FeatShallow), 2},
			Tags:   []string{TagOcean},
		},
		{
			ID: 3, Name: "shore", Routine: RoutineFractal, Icon: terrain.FeatSand,
			Box:    ParamBox{64, 79, 0, 255, 0, 255},
			Params: [8]uint8{84, f(terrain.FeatShallow), 144, f(terrain.FeatSand), 208, f(terrain.FeatGrass), 0, f(terrain.FeatScrub)},
		},
		{
			ID: 4, Name: "mudflats", Routine: RoutineFractal, Icon: terrain.FeatMud,
			Box:    ParamBox{80, 111, 0, 95, 0, 255},
			Params: [8]uint8{90, f(terrain.FeatShallow), 170, f(terrain.FeatMud), 225, f(terrain.FeatReeds), 0, f(terrain.FeatGrass)},
		},
		{
			ID: 5, Name: "swamp", Routine: RoutineFractal, Icon: terrain.FeatSwampPool,
			Box:    ParamBox{80, 111, 96, 191, 0, 127},
			Params: [8]uint8{85, f(terrain.FeatSwampPool), 150, f(terrain.FeatMud), 210, f(terrain.FeatReeds), 0, f(terrain.FeatBush)},
		},
		{
			ID: 6, Name: "reed_marsh", Routine: RoutineFractal, Icon: terrain.FeatReeds,
			Box:    ParamBox{80, 111, 96, 191, 128, 255},
			Params: [8]uint8{80, f(terrain.FeatShallow), 140, f(terrain.FeatReeds), 210, f(terrain.FeatGrass), 0, f(terrain.FeatBush)},
			Weight: 3,
		},
		{
			ID: 7, Name: "lily_pond", Comment: "rare open-water variant of reed marsh", Routine: RoutineOverlay, Icon: terrain.FeatSwampPool,
			Box:    ParamBox{80, 111, 96, 191, 128, 255},
			Params: [8]uint8{6, f(terrain.FeatShallow), 3, 6},
			Weight: 1,
		},
		{
			ID: 8, Name: "salt_grass", Routine: RoutineFlat, Icon: terrain.FeatGrass,
			Box:    ParamBox{80, 111, 192, 255, 0, 255},
			Params: [8]uint8{f(terrain.FeatGrass), 8, f(terrain.FeatReeds), 4, f(terrain.FeatMud), 2, f(terrain.FeatSand), 2},
		},
		{
			ID: 9, Name: "scrubland", Routine: RoutineFractal, Icon: terrain.FeatScrub,
			Box:    ParamBox{112, 159, 0, 63, 0, 255},
			Params: [8]uint8{90, f(terrain.FeatDirt), 150, f(terrain.FeatScrub), 215, f(terrain.FeatGrass), 0, f(terrain.FeatBush)},
		},
		{
			ID: 10, Name: "grassland", Routine: RoutineFractal, Icon: terrain.FeatGrass,
			Box:    ParamBox{112, 159, 64, 191, 0, 191},
			Params: [8]uint8{75, f(terrain.FeatGrass), 150, f(terrain.FeatGrass), 210, f(terrain.FeatFlowers), 0, f(terrain.FeatBush)},
		},
		{
			ID: 11, Name: "farmland", Routine: RoutineFarm, Icon: terrain.FeatField,
			Box:    ParamBox{112, 159, 64, 191, 192, 255},
			Params: [8]uint8{f(terrain.FeatField), f(terrain.FeatDirt), f(terrain.FeatHedge), f(terrain.FeatWall), 20},
		},
		{
			ID: 12, Name: "thicket", Routine: RoutineFractal, Icon: terrain.FeatBush,
			Box:    ParamBox{112, 159, 192, 255, 0, 255},
			Params: [8]uint8{70, f(terrain.FeatGrass), 140, f(terrain.FeatBush), 200, f(terrain.FeatTree), 0, f(terrain.FeatTree)},
		},
		{
			ID: 13, Name: "moor", Routine: RoutineFractal, Icon: terrain.FeatScrub,
			Box:    ParamBox{160, 207, 0, 63, 0, 255},
			Params: [8]uint8{80, f(terrain.FeatScrub), 160, f(terrain.FeatGrass), 225, f(terrain.FeatBush), 0, f(terrain.FeatBoulder)},
		},
		{
			ID: 14, Name: "dense_forest", Routine: RoutineFractal, Icon: terrain.FeatTree,
			Box:    ParamBox{160, 207, 64, 127, 0, 255},
			Params: [8]uint8{50, f(terrain.FeatBush), 120, f(terrain.FeatTree), 200, f(terrain.FeatTree), 0, f(terrain.FeatPine)},
		},
		{
			ID: 15, Name: "forest", Routine: RoutineFractal, Icon: terrain.FeatTree,
			Box:    ParamBox{160, 207, 128, 255, 0, 159},
			Params: [8]uint8{60, f(terrain.FeatGrass), 130, f(terrain.FeatBush), 200, f(terrain.FeatTree), 0, f(terrain.FeatPine)},
		},
		{
			ID: 16, Name: "woods_clearing", Routine: RoutineOverlay, Icon: terrain.FeatGrass,
			Box:    ParamBox{160, 207, 128, 255, 160, 255},
			Params: [8]uint8{15, f(terrain.FeatGrass), 4, 7},
		},
		{
			ID: 17, Name: "rocky_hills", Routine: RoutineFractal, Icon: terrain.FeatRock,
			Box:    ParamBox{208, 239, 0, 255, 0, 127},
			Params: [8]uint8{70, f(terrain.FeatDirt), 140, f(terrain.FeatGrass), 205, f(terrain.FeatRock), 0, f(terrain.FeatBoulder)},
		},
		{
			ID: 18, Name: "pine_hills", Routine: RoutineFractal, Icon: terrain.FeatPine,
			Box:    ParamBox{208, 239, 0, 255, 128, 255},
			Params: [8]uint8{65, f(terrain.FeatGrass), 135, f(terrain.FeatBush), 205, f(terrain.FeatPine), 0, f(terrain.FeatRock)},
		},
		{
			ID: 19, Name: "mountains", Routine: RoutineFractal, Icon: terrain.FeatRock,
			Box:    ParamBox{240, 255, 0, 255, 0, 255},
			Params: [8]uint8{90, f(terrain.FeatBoulder), 160, f(terrain.FeatRock), 220, f(terrain.FeatRock), 0, f(terrain.FeatSnow)},
			Tags:   []string{TagRough},
		},
	})
	if err != nil {
		// The built-in table is fixed at compile time; failing to
		// validate is a programming error.
		panic(err)
	}
	return t
}
