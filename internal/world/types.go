// Package world builds and models the wilderness: a square grid of
// blocks classified from fractal height, population, and law fields,
// decorated with towns, dungeons, roads, and waterways, and rendered
// block by block into tiles on demand.
package world

import (
	"fmt"

	"github.com/reedmace/wildgen/internal/terrain"
)

// ParameterPoint is one sample of the three wilderness parameter
// fields. Every point of the cube maps to exactly one generation type
// (two where a probabilistic leaf splits the decision).
type ParameterPoint struct {
	Height     uint8
	Population uint8
	Law        uint8
}

// BlockFlag carries per-block overlay bits set by the map assembler.
type BlockFlag uint16

const (
	// FlagRoad marks a block crossed by a major road.
	FlagRoad BlockFlag = 1 << iota
	// FlagTrack marks a block crossed by a minor track.
	FlagTrack
	// FlagWater marks a block carrying a river or lake.
	FlagWater
	// FlagLava marks a block whose channel runs with lava instead.
	FlagLava
	// FlagAcid marks a block whose channel runs with acid instead.
	FlagAcid
)

// Has reports whether all bits in mask are set.
func (f BlockFlag) Has(mask BlockFlag) bool {
	return f&mask == mask
}

// Block is one cell of the wilderness map: sixteen by sixteen tiles
// when rendered. It stores classification output and overlay flags,
// never tiles; tiles are regenerated from this record on demand.
type Block struct {
	// Type indexes the generation type table.
	Type uint16
	// Place is the 1-based index into Map.Places of the settlement or
	// dungeon whose footprint covers this block, or zero for open
	// wilderness.
	Place uint16
	// Flags holds road, track, and waterway overlay bits.
	Flags BlockFlag
	// Level is the danger level for monster generation, derived from
	// distance to the nearest town.
	Level uint8
	// Rarity divides spawn frequency. Always at least one.
	Rarity uint8
}

// RoadLevel reports the strength of the routeway crossing the block:
// 2 for a road, 1 for a track, 0 for neither.
func (b *Block) RoadLevel() int {
	switch {
	case b.Flags.Has(FlagRoad):
		return 2
	case b.Flags.Has(FlagTrack):
		return 1
	default:
		return 0
	}
}

// HasPlace reports whether a settlement or dungeon footprint covers
// the block.
func (b *Block) HasPlace() bool {
	return b.Place != 0
}

// PlaceKind distinguishes the kinds of fixed locations on the map.
type PlaceKind uint8

const (
	// KindTown is an inhabited settlement. Small towns render as open
	// building grids, large ones as walled cities.
	KindTown PlaceKind = iota
	// KindDungeon is a wilderness dungeon entrance.
	KindDungeon
)

func (k PlaceKind) String() string {
	switch k {
	case KindTown:
		return "town"
	case KindDungeon:
		return "dungeon"
	default:
		return fmt.Sprintf("place(%d)", uint8(k))
	}
}

// Place is a town or dungeon anchored to the map. X, Y is the top-left
// block of its footprint; Width and Height are in blocks.
type Place struct {
	Key  string    `db:"key"`
	Name string    `db:"name"`
	Kind PlaceKind `db:"kind"`

	X      int `db:"x"`
	Y      int `db:"y"`
	Width  int `db:"width"`
	Height int `db:"height"`

	// Seed drives the place's interior layout, fixed at placement so
	// the layout survives cache eviction and reload.
	Seed int64 `db:"seed"`

	// Population is zero for dungeons.
	Population uint32 `db:"population"`

	// MonsterKind selects the monster population theme of a dungeon.
	// Zero for towns.
	MonsterKind uint8 `db:"monster_kind"`
}

// Contains reports whether block coordinates fall inside the footprint.
func (p *Place) Contains(x, y int) bool {
	return x >= p.X && x < p.X+p.Width && y >= p.Y && y < p.Y+p.Height
}

// CenterBlock returns the block at the middle of the footprint.
func (p *Place) CenterBlock() (int, int) {
	return p.X + p.Width/2, p.Y + p.Height/2
}

// Map is the block-level wilderness. Blocks are stored row-major.
type Map struct {
	Size   int
	Seed   int64
	Blocks []Block
	Places []Place
}

// NewMap allocates an empty map of size by size blocks.
func NewMap(size int, seed int64) *Map {
	return &Map{
		Size:   size,
		Seed:   seed,
		Blocks: make([]Block, size*size),
	}
}

// InBounds reports whether block coordinates lie on the map.
func (m *Map) InBounds(x, y int) bool {
	return x >= 0 && x < m.Size && y >= 0 && y < m.Size
}

// BlockAt returns the block at the coordinates, or nil when they fall
// off the map. Callers step off the edge constantly while tracing
// roads and rivers; the nil return is the contract.
func (m *Map) BlockAt(x, y int) *Block {
	if !m.InBounds(x, y) {
		return nil
	}
	return &m.Blocks[y*m.Size+x]
}

// PlaceAt returns the place whose footprint covers the block, or nil.
func (m *Map) PlaceAt(x, y int) *Place {
	b := m.BlockAt(x, y)
	if b == nil || b.Place == 0 {
		return nil
	}
	return &m.Places[b.Place-1]
}

// PlaceByKey returns the place with the given key, or nil.
func (m *Map) PlaceByKey(key string) *Place {
	for i := range m.Places {
		if m.Places[i].Key == key {
			return &m.Places[i]
		}
	}
	return nil
}

// Towns returns the towns in placement order.
func (m *Map) Towns() []*Place {
	var towns []*Place
	for i := range m.Places {
		if m.Places[i].Kind == KindTown {
			towns = append(towns, &m.Places[i])
		}
	}
	return towns
}

// Dungeons returns the dungeons in placement order.
func (m *Map) Dungeons() []*Place {
	var ds []*Place
	for i := range m.Places {
		if m.Places[i].Kind == KindDungeon {
			ds = append(ds, &m.Places[i])
		}
	}
	return ds
}

// TileSpan returns the world size in tiles along one axis.
func (m *Map) TileSpan() int {
	return m.Size * terrain.BlockSize
}
