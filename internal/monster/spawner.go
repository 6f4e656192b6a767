package monster

import (
	"math/rand"

	"github.com/google/uuid"
)

// Actor is one live monster instance on the shared actor list. UID is
// unique per instance; KindID points back into the catalog.
type Actor struct {
	UID    string
	KindID uint16
	Name   string
	Glyph  rune
	Level  uint8
	X, Y   int
}

// Roster is the actor list shared with downstream consumers. One tile
// holds at most one actor.
type Roster struct {
	actors []Actor
	byTile map[[2]int]int
}

func NewRoster() *Roster {
	return &Roster{byTile: map[[2]int]int{}}
}

// Occupied reports whether a world tile already holds an actor.
func (r *Roster) Occupied(x, y int) bool {
	_, ok := r.byTile[[2]int{x, y}]
	return ok
}

// At returns the actor on a tile, or nil.
func (r *Roster) At(x, y int) *Actor {
	i, ok := r.byTile[[2]int{x, y}]
	if !ok {
		return nil
	}
	return &r.actors[i]
}

func (r *Roster) add(a Actor) {
	r.byTile[[2]int{a.X, a.Y}] = len(r.actors)
	r.actors = append(r.actors, a)
}

// All returns the live actor slice. Callers treat it as read-only.
func (r *Roster) All() []Actor {
	return r.actors
}

func (r *Roster) Len() int {
	return len(r.actors)
}

// Spawner mints actors onto a roster. It owns a dedicated rng so spawn
// randomness never perturbs the deterministic terrain streams.
type Spawner struct {
	rng    *rand.Rand
	roster *Roster
}

func NewSpawner(seed int64) *Spawner {
	return &Spawner{
		rng:    rand.New(rand.NewSource(seed)),
		roster: NewRoster(),
	}
}

func (s *Spawner) Roster() *Roster {
	return s.roster
}

// Roll draws the one-in-denom spawn lottery for a single tile.
func (s *Spawner) Roll(denom int) bool {
	return denom > 0 && s.rng.Intn(denom) == 0
}

// Site describes the tile a successful roll is about to populate.
type Site struct {
	X, Y  int
	Level int
	Town  bool
	Water bool
	// Themed narrows selection to Theme, for blocks holding a dungeon.
	Themed bool
	Theme  Theme
}

// Spawn picks a kind for the site and places a new actor there. It
// returns false when the tile is occupied or no kind fits the site.
func (s *Spawner) Spawn(site Site) (Actor, bool) {
	if s.roster.Occupied(site.X, site.Y) {
		return Actor{}, false
	}
	var (
		k  Kind
		ok bool
	)
	switch {
	case site.Town:
		k, ok = PickTown(s.rng, site.Level)
	case site.Themed:
		k, ok = PickThemed(s.rng, site.Level, site.Theme, site.Water)
	default:
		k, ok = PickWild(s.rng, site.Level, site.Water)
	}
	if !ok {
		return Actor{}, false
	}
	a := Actor{
		UID:    uuid.NewString(),
		KindID: k.ID,
		Name:   k.Name,
		Glyph:  k.Glyph,
		Level:  k.Depth,
		X:      site.X,
		Y:      site.Y,
	}
	s.roster.add(a)
	return a, true
}
