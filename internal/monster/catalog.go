// Package monster holds the spawnable creature catalog and the session
// spawner. The catalog is static; selection filters it by the difficulty
// level of the block being populated, so deep wilderness rolls deep kinds
// while town streets stay with strays and cutpurses.
package monster

import "math/rand"

// Theme groups kinds into dungeon populations. Dungeon places carry a
// theme so the blocks around an entrance lean toward one family.
type Theme uint8

const (
	ThemeBeasts Theme = iota
	ThemeUndead
	ThemeGoblinoid
	ThemeDragons

	themeCount
)

func (t Theme) String() string {
	switch t {
	case ThemeBeasts:
		return "beasts"
	case ThemeUndead:
		return "undead"
	case ThemeGoblinoid:
		return "goblinoid"
	case ThemeDragons:
		return "dragons"
	}
	return "unknown"
}

// Kind is one catalog entry. Depth is the difficulty level the kind is
// native to; Weight is its relative chance among the kinds eligible for a
// roll. Town kinds are the only ones allowed inside town blocks, and
// aquatic kinds spawn only on water tiles (and land kinds never do).
type Kind struct {
	ID      uint16
	Name    string
	Glyph   rune
	Depth   uint8
	Weight  int
	Town    bool
	Aquatic bool
	Theme   Theme
}

// wildSlack lets a roll reach slightly above the block's level, so the
// frontier of a difficulty band is not a hard wall.
const wildSlack = 5

// townSlack is tighter: town streets stay shallow.
const townSlack = 2

var catalog = []Kind{
	{ID: 1, Name: "field mouse", Glyph: 'r', Depth: 0, Weight: 40, Town: true, Theme: ThemeBeasts},
	{ID: 2, Name: "stray dog", Glyph: 'C', Depth: 0, Weight: 30, Town: true, Theme: ThemeBeasts},
	{ID: 3, Name: "raven", Glyph: 'B', Depth: 1, Weight: 30, Town: true, Theme: ThemeBeasts},
	{ID: 4, Name: "cutpurse", Glyph: 'p', Depth: 2, Weight: 20, Town: true, Theme: ThemeGoblinoid},
	{ID: 5, Name: "giant rat", Glyph: 'r', Depth: 1, Weight: 40, Theme: ThemeBeasts},
	{ID: 6, Name: "wild boar", Glyph: 'q', Depth: 3, Weight: 30, Theme: ThemeBeasts},
	{ID: 7, Name: "river eel", Glyph: 'J', Depth: 4, Weight: 25, Aquatic: true, Theme: ThemeBeasts},
	{ID: 8, Name: "kobold scavenger", Glyph: 'k', Depth: 4, Weight: 30, Theme: ThemeGoblinoid},
	{ID: 9, Name: "grey wolf", Glyph: 'C', Depth: 5, Weight: 30, Theme: ThemeBeasts},
	{ID: 10, Name: "marsh viper", Glyph: 'J', Depth: 6, Weight: 20, Theme: ThemeBeasts},
	{ID: 11, Name: "goblin raider", Glyph: 'k', Depth: 8, Weight: 25, Theme: ThemeGoblinoid},
	{ID: 12, Name: "black bear", Glyph: 'q', Depth: 9, Weight: 20, Theme: ThemeBeasts},
	{ID: 13, Name: "restless shade", Glyph: 'G', Depth: 12, Weight: 15, Theme: ThemeUndead},
	{ID: 14, Name: "orc warband", Glyph: 'o', Depth: 14, Weight: 20, Theme: ThemeGoblinoid},
	{ID: 15, Name: "dire wolf", Glyph: 'C', Depth: 16, Weight: 18, Theme: ThemeBeasts},
	{ID: 16, Name: "barrow wight", Glyph: 'W', Depth: 18, Weight: 12, Theme: ThemeUndead},
	{ID: 17, Name: "lake serpent", Glyph: 'J', Depth: 20, Weight: 6, Aquatic: true, Theme: ThemeDragons},
	{ID: 18, Name: "cave troll", Glyph: 'T', Depth: 22, Weight: 12, Theme: ThemeGoblinoid},
	{ID: 19, Name: "swamp drake", Glyph: 'd', Depth: 26, Weight: 10, Theme: ThemeDragons},
	{ID: 20, Name: "stone giant", Glyph: 'P', Depth: 30, Weight: 8, Theme: ThemeGoblinoid},
	{ID: 21, Name: "wyvern", Glyph: 'd', Depth: 34, Weight: 8, Theme: ThemeDragons},
	{ID: 22, Name: "ghoul pack", Glyph: 'z', Depth: 28, Weight: 10, Theme: ThemeUndead},
	{ID: 23, Name: "elder lich", Glyph: 'L', Depth: 45, Weight: 4, Theme: ThemeUndead},
	{ID: 24, Name: "mountain dragon", Glyph: 'D', Depth: 52, Weight: 3, Theme: ThemeDragons},
}

// Catalog returns the full kind table in id order.
func Catalog() []Kind {
	return catalog
}

// ByID returns the kind with the given id, or nil.
func ByID(id uint16) *Kind {
	for i := range catalog {
		if catalog[i].ID == id {
			return &catalog[i]
		}
	}
	return nil
}

// pick rolls one kind from the catalog entries that pass the filter,
// weighted by Kind.Weight. Returns false when nothing is eligible.
func pick(rng *rand.Rand, allow func(Kind) bool) (Kind, bool) {
	total := 0
	for _, k := range catalog {
		if allow(k) {
			total += k.Weight
		}
	}
	if total <= 0 {
		return Kind{}, false
	}
	roll := rng.Intn(total)
	for _, k := range catalog {
		if !allow(k) {
			continue
		}
		roll -= k.Weight
		if roll < 0 {
			return k, true
		}
	}
	return Kind{}, false
}

// PickWild selects a kind for an open wilderness tile of the given
// difficulty level. Water tiles draw from the aquatic kinds, land tiles
// from everything else.
func PickWild(rng *rand.Rand, level int, water bool) (Kind, bool) {
	return pick(rng, func(k Kind) bool {
		return int(k.Depth) <= level+wildSlack && k.Aquatic == water
	})
}

// PickTown selects from the town-compatible subset.
func PickTown(rng *rand.Rand, level int) (Kind, bool) {
	return pick(rng, func(k Kind) bool {
		return k.Town && int(k.Depth) <= level+townSlack
	})
}

// PickThemed prefers kinds of the dungeon's population theme and falls
// back to a plain wilderness roll when the theme has nothing shallow
// enough for the level.
func PickThemed(rng *rand.Rand, level int, th Theme, water bool) (Kind, bool) {
	if k, ok := pick(rng, func(k Kind) bool {
		return k.Theme == th && int(k.Depth) <= level+wildSlack && k.Aquatic == water
	}); ok {
		return k, true
	}
	return PickWild(rng, level, water)
}
