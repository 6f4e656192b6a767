// Package engine streams rendered terrain around a moving player. It owns
// the only mutable play-time state: a viewport-following block cache and
// the monster roster. The logical map underneath is read-only.
package engine

import (
	"log/slog"

	"github.com/reedmace/wildgen/internal/monster"
	"github.com/reedmace/wildgen/internal/terrain"
	"github.com/reedmace/wildgen/internal/town"
	"github.com/reedmace/wildgen/internal/world"
)

// Config sizes the viewport and the spawn lottery.
type Config struct {
	// ViewRadius is the number of block rings kept loaded around the
	// player's block.
	ViewRadius int
	// EvictMargin is the extra ring a cached block may drift before it
	// is pruned.
	EvictMargin int
	// SpawnStride multiplies a block's rarity divisor into the per-tile
	// spawn denominator.
	SpawnStride int
}

func DefaultConfig() Config {
	return Config{ViewRadius: 2, EvictMargin: 1, SpawnStride: 48}
}

func (c Config) sanitized() Config {
	if c.ViewRadius < 1 {
		c.ViewRadius = 1
	}
	if c.EvictMargin < 0 {
		c.EvictMargin = 0
	}
	if c.SpawnStride < 1 {
		c.SpawnStride = 1
	}
	return c
}

// Stats counts runtime activity since construction.
type Stats struct {
	Shifts    int
	Loads     int
	Evictions int
	Spawns    int
}

// Runtime materializes blocks on demand while a player walks the map.
type Runtime struct {
	Map      *world.Map
	Renderer *world.Renderer
	Towns    *town.Generator
	Spawner  *monster.Spawner

	cfg   Config
	stats Stats

	cache   map[uint32]*terrain.Grid
	spawned map[uint32]bool

	px, py   int
	pbx, pby int
	moved    bool
}

// NewRuntime wires a runtime over a finished map. The renderer and the
// runtime must share the map's seed or streamed terrain will not match
// regeneration.
func NewRuntime(m *world.Map, r *world.Renderer, towns *town.Generator, sp *monster.Spawner, cfg Config) *Runtime {
	return &Runtime{
		Map:      m,
		Renderer: r,
		Towns:    towns,
		Spawner:  sp,
		cfg:      cfg.sanitized(),
		cache:    map[uint32]*terrain.Grid{},
		spawned:  map[uint32]bool{},
	}
}

func packKey(bx, by int) uint32 {
	return uint32(uint16(bx))<<16 | uint32(uint16(by))
}

// Player returns the player's current world tile position.
func (r *Runtime) Player() (int, int) {
	return r.px, r.py
}

func (r *Runtime) Stats() Stats {
	return r.stats
}

// CachedBlocks returns the number of blocks currently materialized.
func (r *Runtime) CachedBlocks() int {
	return len(r.cache)
}

// MoveTo places the player at a world tile and follows with the
// viewport: when the player's block changes, every viewport block is
// loaded and cached blocks beyond the viewport plus margin are evicted.
// Coordinates are clamped to the map.
func (r *Runtime) MoveTo(wx, wy int) {
	span := r.Map.TileSpan()
	r.px = clampInt(wx, 0, span-1)
	r.py = clampInt(wy, 0, span-1)

	bx, by := r.px/terrain.BlockSize, r.py/terrain.BlockSize
	if r.moved && bx == r.pbx && by == r.pby {
		return
	}
	r.moved = true
	r.pbx, r.pby = bx, by
	r.stats.Shifts++

	for y := by - r.cfg.ViewRadius; y <= by+r.cfg.ViewRadius; y++ {
		for x := bx - r.cfg.ViewRadius; x <= bx+r.cfg.ViewRadius; x++ {
			if !r.Map.InBounds(x, y) {
				continue
			}
			if _, ok := r.cache[packKey(x, y)]; ok {
				continue
			}
			r.loadBlock(x, y, true)
		}
	}

	keep := r.cfg.ViewRadius + r.cfg.EvictMargin
	for key := range r.cache {
		kx, ky := int(key>>16), int(key&0xffff)
		if abs(kx-bx) > keep || abs(ky-by) > keep {
			delete(r.cache, key)
			r.stats.Evictions++
		}
	}

	slog.Debug("viewport shifted",
		"block_x", bx, "block_y", by,
		"cached", len(r.cache),
		"actors", r.Spawner.Roster().Len(),
	)
}

// Tile returns the tile at a world coordinate. Outside the map it
// returns (zero, false). Evicted blocks are re-rendered transparently;
// regeneration is deterministic so the caller cannot tell.
func (r *Runtime) Tile(wx, wy int) (terrain.Tile, bool) {
	span := r.Map.TileSpan()
	if wx < 0 || wy < 0 || wx >= span || wy >= span {
		return terrain.Tile{}, false
	}
	bx, by := wx/terrain.BlockSize, wy/terrain.BlockSize
	g, ok := r.cache[packKey(bx, by)]
	if !ok {
		g = r.loadBlock(bx, by, false)
	}
	return g.At(wx-bx*terrain.BlockSize, wy-by*terrain.BlockSize), true
}

// loadBlock renders a block, overlays its settlement if it holds one,
// and caches the result. Spawning happens only on viewport loads, and
// only the first time a block is seen this session.
func (r *Runtime) loadBlock(bx, by int, spawn bool) *terrain.Grid {
	g := r.Renderer.Render(r.Map, bx, by)

	b := r.Map.BlockAt(bx, by)
	var p *world.Place
	if b != nil && b.HasPlace() {
		p = &r.Map.Places[b.Place-1]
		town.Overlay(g, r.Towns.Layout(p), p, bx, by)
	}

	key := packKey(bx, by)
	r.cache[key] = g
	r.stats.Loads++

	if spawn && b != nil && !r.spawned[key] {
		r.spawned[key] = true
		r.stats.Spawns += r.spawnBlock(bx, by, g, b, p)
	}
	return g
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
