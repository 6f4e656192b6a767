package world

import (
	"log/slog"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/reedmace/wildgen/internal/entropy"
)

// Generation pass identifiers for sub-seed derivation. Each pass gets
// its own rng so a change in one pass never perturbs the others.
const (
	passHeight uint64 = iota
	passPopulation
	passLaw
	passContinent
	passClassify
	passPlaces
	passRoads
	passRivers
	passLakes
)

// GenConfig controls world generation. The zero value is unusable;
// start from DefaultGenConfig and override.
type GenConfig struct {
	// Size is the map side in blocks.
	Size int
	Seed int64

	// Towns is the number of towns placed beyond the mandatory
	// starting town.
	Towns    int
	Dungeons int
	Rivers   int
	Lakes    int

	// TownSep and DungeonSep are minimum Manhattan distances between
	// origins of places of the same kind, in blocks.
	TownSep    int
	DungeonSep int

	// RoadDist is the maximum Manhattan distance a road or track link
	// will span. Zero disables routeways.
	RoadDist int

	// PlaceAttempts bounds random placement attempts per place before
	// falling back to a deterministic scan.
	PlaceAttempts int
}

// DefaultGenConfig returns the tuning used by the demo world.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Size:          64,
		Seed:          1,
		Towns:         5,
		Dungeons:      4,
		Rivers:        6,
		Lakes:         4,
		TownSep:       10,
		DungeonSep:    6,
		RoadDist:      48,
		PlaceAttempts: 200,
	}
}

// sanitized clamps degenerate values instead of failing; a tiny or
// hostile config still yields a usable map.
func (c GenConfig) sanitized() GenConfig {
	if c.Size < 4 {
		c.Size = 4
	}
	if c.Size > 1024 {
		c.Size = 1024
	}
	if c.Towns < 0 {
		c.Towns = 0
	}
	if c.Dungeons < 0 {
		c.Dungeons = 0
	}
	if c.Rivers < 0 {
		c.Rivers = 0
	}
	if c.Lakes < 0 {
		c.Lakes = 0
	}
	if c.TownSep < 1 {
		c.TownSep = 1
	}
	if c.DungeonSep < 1 {
		c.DungeonSep = 1
	}
	if c.RoadDist < 0 {
		c.RoadDist = 0
	}
	if c.PlaceAttempts < 1 {
		c.PlaceAttempts = 200
	}
	return c
}

// Generate builds the whole wilderness from the config and type table:
// parameter fields, block classification, settlements, routeways,
// waterways, and monster difficulty. It is a pure function of its
// arguments; the same inputs reproduce the same map bit for bit.
func Generate(cfg GenConfig, table *GenTable) *Map {
	cfg = cfg.sanitized()
	m := NewMap(cfg.Size, cfg.Seed)

	hgt, pop, law := parameterFields(cfg)
	classifyBlocks(m, table, hgt, pop, law)
	placeSettlements(m, cfg, table)
	layRoads(m, cfg, table)
	carveRivers(m, cfg, table, hgt)
	floodLakes(m, cfg, table)
	finalizeMonsters(m, table)

	slog.Info("generated world",
		"seed", cfg.Seed,
		"size", cfg.Size,
		"places", len(m.Places))
	return m
}

// parameterFields synthesizes the three block-level fields. Population
// and law are raw plasma; height is plasma scaled by a continental
// factor (edge falloff times low-frequency simplex shape), which
// forces an ocean rim and carves the landmass into regions.
func parameterFields(cfg GenConfig) (hgt, pop, law []uint8) {
	span := nextPow2(cfg.Size)
	sample := func(pass uint64) *PlasmaField {
		f := NewPlasmaField(span)
		f.Generate(rand.New(rand.NewSource(entropy.PassSeed(cfg.Seed, pass))))
		return f
	}
	hf := sample(passHeight)
	pf := sample(passPopulation)
	lf := sample(passLaw)
	shape := opensimplex.NewNormalized(entropy.PassSeed(cfg.Seed, passContinent))

	n := cfg.Size
	hgt = make([]uint8, n*n)
	pop = make([]uint8, n*n)
	law = make([]uint8, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			i := y*n + x
			factor := edgeFalloff(x, y, n) * (0.55 + 0.45*continentShape(shape, x, y, n))
			h := int(float64(hf.Value(x, y)) * factor)
			if h > 255 {
				h = 255
			}
			hgt[i] = uint8(h)
			pop[i] = uint8(pf.Value(x, y))
			law[i] = uint8(lf.Value(x, y))
		}
	}
	return hgt, pop, law
}

// edgeFalloff ramps from zero at the map rim to one a quarter map in,
// so border blocks always classify as ocean.
func edgeFalloff(x, y, size int) float64 {
	d := x
	if y < d {
		d = y
	}
	if size-1-x < d {
		d = size - 1 - x
	}
	if size-1-y < d {
		d = size - 1 - y
	}
	t := float64(d) / (float64(size) * 0.25)
	if t > 1 {
		t = 1
	}
	return t
}

func continentShape(n opensimplex.Noise, x, y, size int) float64 {
	fx := float64(x) / float64(size)
	fy := float64(y) / float64(size)
	var sum, norm float64
	amp, freq := 1.0, 2.0
	for i := 0; i < 3; i++ {
		sum += amp * n.Eval2(fx*freq, fy*freq)
		norm += amp
		amp *= 0.5
		freq *= 2
	}
	return sum / norm
}

func classifyBlocks(m *Map, table *GenTable, hgt, pop, law []uint8) {
	cls := NewClassifier(table)
	rng := rand.New(rand.NewSource(entropy.PassSeed(m.Seed, passClassify)))
	for y := 0; y < m.Size; y++ {
		for x := 0; x < m.Size; x++ {
			i := y*m.Size + x
			pt := ParameterPoint{Height: hgt[i], Population: pop[i], Law: law[i]}
			m.Blocks[i].Type = cls.Classify(pt, rng)
		}
	}
}

// finalizeMonsters derives per-block danger from distance to the
// nearest town: levels rise with distance, spawn rarity is highest in
// civilized blocks and relaxes in the deep wilds. Oceans spawn rarely
// regardless.
func finalizeMonsters(m *Map, table *GenTable) {
	towns := m.Towns()
	for y := 0; y < m.Size; y++ {
		for x := 0; x < m.Size; x++ {
			b := m.BlockAt(x, y)
			d := m.Size
			for _, t := range towns {
				cx, cy := t.CenterBlock()
				if dd := abs(x-cx) + abs(y-cy); dd < d {
					d = dd
				}
			}

			if p := m.PlaceAt(x, y); p != nil {
				if p.Kind == KindTown {
					b.Level = 0
					b.Rarity = 12
				} else {
					b.Level = uint8(clampInt(30+d, 1, 60))
					b.Rarity = 2
				}
				continue
			}

			b.Level = uint8(clampInt(d*2, 1, 60))
			if g := table.ByID(b.Type); g != nil && g.HasTag(TagOcean) {
				b.Rarity = 8
				continue
			}
			r := 6 - d/3
			if r < 1 {
				r = 1
			}
			b.Rarity = uint8(r)
		}
	}
}

func nextPow2(n int) int {
	p := 2
	for p < n {
		p *= 2
	}
	return p
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
