// Package terrain provides the tile-level vocabulary of the wilderness:
// feature ids, per-feature attributes, per-tile info flags, and the
// fixed-size tile grid that one world block renders into.
package terrain

// BlockSize is the side of one world block in tiles. Block rendering,
// settlement layouts, and the streaming cache all assume this unit.
const BlockSize = 16

// Feature identifies what occupies a tile.
type Feature uint8

const (
	// FeatNone is the transparent feature. Settlement layouts use it for
	// cells that should let the underlying wilderness show through; it
	// never appears in a fully rendered world tile.
	FeatNone Feature = iota

	FeatGrass
	FeatFlowers
	FeatScrub
	FeatBush
	FeatTree
	FeatPine
	FeatReeds
	FeatSwampPool
	FeatMud
	FeatSand
	FeatDirt
	FeatRock
	FeatBoulder
	FeatSnow
	FeatShallow
	FeatDeep
	FeatLava
	FeatAcid
	FeatField
	FeatHedge
	FeatRoad
	FeatTrack
	FeatWall
	FeatFloor
	FeatDoor
	FeatGate
	FeatStairs

	featCount
)

// attr describes one feature's interaction rules.
type attr struct {
	name        string
	passable    bool
	transparent bool // does line of sight pass through
	water       bool
}

// Trees and reeds are passable (slow going, but walkable) and block
// sight; shallow water is wadeable. This mirrors classic overworld
// roguelike movement rules.
var attrs = [featCount]attr{
	FeatNone:      {"nothing", false, true, false},
	FeatGrass:     {"grass", true, true, false},
	FeatFlowers:   {"flowers", true, true, false},
	FeatScrub:     {"scrubland", true, true, false},
	FeatBush:      {"bush", true, false, false},
	FeatTree:      {"tree", true, false, false},
	FeatPine:      {"pine tree", true, false, false},
	FeatReeds:     {"reeds", true, false, false},
	FeatSwampPool: {"stagnant pool", true, true, true},
	FeatMud:       {"mud", true, true, false},
	FeatSand:      {"sand", true, true, false},
	FeatDirt:      {"bare dirt", true, true, false},
	FeatRock:      {"rock face", false, false, false},
	FeatBoulder:   {"boulder", false, false, false},
	FeatSnow:      {"snow", true, true, false},
	FeatShallow:   {"shallow water", true, true, true},
	FeatDeep:      {"deep water", false, true, true},
	FeatLava:      {"lava", false, true, false},
	FeatAcid:      {"acid pool", false, true, false},
	FeatField:     {"cultivated field", true, true, false},
	FeatHedge:     {"hedgerow", false, false, false},
	FeatRoad:      {"road", true, true, false},
	FeatTrack:     {"track", true, true, false},
	FeatWall:      {"wall", false, false, false},
	FeatFloor:     {"paving", true, true, false},
	FeatDoor:      {"doorway", true, false, false},
	FeatGate:      {"gate", true, true, false},
	FeatStairs:    {"down staircase", true, true, false},
}

// Name returns a human-readable name for the feature.
func (f Feature) Name() string {
	if int(f) >= len(attrs) {
		return "unknown"
	}
	return attrs[f].name
}

// Passable reports whether creatures can occupy a tile with this feature.
func (f Feature) Passable() bool {
	return int(f) < len(attrs) && attrs[f].passable
}

// Transparent reports whether line of sight passes through this feature.
func (f Feature) Transparent() bool {
	return int(f) < len(attrs) && attrs[f].transparent
}

// IsWater reports whether the feature is a water surface.
func (f Feature) IsWater() bool {
	return int(f) < len(attrs) && attrs[f].water
}

// Valid reports whether f is a defined feature id.
func (f Feature) Valid() bool {
	return f < featCount
}

// TileFlag carries per-tile info bits alongside the feature, so later
// passes can test tile roles without re-deriving them from features.
type TileFlag uint8

const (
	TileRoad TileFlag = 1 << iota
	TileTrack
	TileWater
)

// Has reports whether all bits in mask are set.
func (f TileFlag) Has(mask TileFlag) bool {
	return f&mask == mask
}

// Tile is one rendered cell of the world.
type Tile struct {
	Feature Feature
	Flags   TileFlag
}

// Grid is the rendered tile content of one world block.
type Grid struct {
	Tiles [BlockSize][BlockSize]Tile
}

// At returns the tile at local coordinates. Callers index within
// [0, BlockSize); the bounds check belongs to them.
func (g *Grid) At(x, y int) Tile {
	return g.Tiles[y][x]
}

// Set writes the tile feature at local coordinates, preserving flags.
func (g *Grid) Set(x, y int, f Feature) {
	g.Tiles[y][x].Feature = f
}

// SetFlag ors flag bits into the tile at local coordinates.
func (g *Grid) SetFlag(x, y int, fl TileFlag) {
	g.Tiles[y][x].Flags |= fl
}

// Fill sets every tile to the feature and clears all flags.
func (g *Grid) Fill(f Feature) {
	for y := 0; y < BlockSize; y++ {
		for x := 0; x < BlockSize; x++ {
			g.Tiles[y][x] = Tile{Feature: f}
		}
	}
}
