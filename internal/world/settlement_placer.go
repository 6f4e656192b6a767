package world

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/reedmace/wildgen/internal/entropy"
)

// StartingTownKey names the mandatory town every map carries. The
// streaming runtime and demo both begin the session there.
const StartingTownKey = "starting_town"

// Towns at or above this population get a walled 3x3-block footprint;
// smaller ones get an open 2x2 grid.
const cityPopulation = 1500

const (
	townMinPop = 120
	townMaxPop = 4000
)

// placeSettlements runs the placement pass: the starting town by
// center-out spiral, then the configured towns and dungeons by bounded
// random attempts with a deterministic scan fallback. Every claimed
// block gets a back-reference to its place.
func placeSettlements(m *Map, cfg GenConfig, table *GenTable) {
	rng := rand.New(rand.NewSource(entropy.PassSeed(m.Seed, passPlaces)))
	blocked := taggedIDs(table, TagOcean)
	names := newNamer(rng)

	placeStartingTown(m, rng, blocked, names)

	for i := 2; i <= cfg.Towns+1; i++ {
		pop := uint32(townMinPop + rng.Intn(townMaxPop-townMinPop+1))
		side := 2
		if pop >= cityPopulation {
			side = 3
		}
		p := Place{
			Key:        fmt.Sprintf("town_%d", i),
			Kind:       KindTown,
			Width:      side,
			Height:     side,
			Population: pop,
		}
		if !placeAt(m, cfg, rng, blocked, &p, townOrigins(m, cfg.TownSep)) {
			slog.Warn("no room for town, skipping", "key", p.Key)
			continue
		}
		p.Name = names.town()
		commitPlace(m, p)
	}

	for i := 1; i <= cfg.Dungeons; i++ {
		p := Place{
			Key:         fmt.Sprintf("dungeon_%d", i),
			Kind:        KindDungeon,
			Width:       1,
			Height:      1,
			MonsterKind: uint8(rng.Intn(4)),
		}
		if !placeAt(m, cfg, rng, blocked, &p, dungeonOrigins(m, cfg.DungeonSep)) {
			slog.Warn("no room for dungeon, skipping", "key", p.Key)
			continue
		}
		p.Name = names.dungeon()
		commitPlace(m, p)
	}
}

// placeStartingTown walks a center-out spiral for the first legal
// origin. The height pass guarantees inland land exists, but if a
// degenerate table floods the whole map the town claims the center
// blocks anyway rather than leave the map without an anchor.
func placeStartingTown(m *Map, rng *rand.Rand, blocked map[uint16]bool, names *namer) {
	p := Place{
		Key:        StartingTownKey,
		Kind:       KindTown,
		Width:      2,
		Height:     2,
		Population: uint32(400 + rng.Intn(800)),
	}
	cx, cy := m.Size/2-1, m.Size/2-1
	found := false
	for r := 0; r <= m.Size && !found; r++ {
		for _, o := range ring(cx, cy, r) {
			if fits(m, o[0], o[1], p.Width, p.Height, blocked) {
				p.X, p.Y = o[0], o[1]
				found = true
				break
			}
		}
	}
	if !found {
		p.X, p.Y = clampInt(cx, 0, m.Size-p.Width), clampInt(cy, 0, m.Size-p.Height)
		slog.Warn("no legal origin for starting town, forcing map center", "x", p.X, "y", p.Y)
	}
	p.Name = names.town()
	commitPlace(m, p)
}

// placeAt tries random origins, then a row-major scan. It fills in
// p.X and p.Y and reports whether a legal origin was found.
func placeAt(m *Map, cfg GenConfig, rng *rand.Rand, blocked map[uint16]bool, p *Place, sep separation) bool {
	span := m.Size - p.Width + 1
	if span < 1 {
		return false
	}
	for i := 0; i < cfg.PlaceAttempts; i++ {
		x, y := rng.Intn(span), rng.Intn(span)
		if fits(m, x, y, p.Width, p.Height, blocked) && sep.ok(x, y) {
			p.X, p.Y = x, y
			return true
		}
	}
	for y := 0; y < span; y++ {
		for x := 0; x < span; x++ {
			if fits(m, x, y, p.Width, p.Height, blocked) && sep.ok(x, y) {
				p.X, p.Y = x, y
				return true
			}
		}
	}
	return false
}

// commitPlace appends the place, fixes its layout seed, and writes the
// block back-references.
func commitPlace(m *Map, p Place) {
	p.Seed = entropy.PlaceSeed(m.Seed, len(m.Places)+1, p.X, p.Y)
	m.Places = append(m.Places, p)
	ref := uint16(len(m.Places))
	for y := p.Y; y < p.Y+p.Height; y++ {
		for x := p.X; x < p.X+p.Width; x++ {
			m.BlockAt(x, y).Place = ref
		}
	}
	slog.Info("placed "+p.Kind.String(),
		"key", p.Key, "name", p.Name, "x", p.X, "y", p.Y, "size", p.Width)
}

// fits reports whether the footprint lies on the map with every block
// unclaimed and of an unblocked type.
func fits(m *Map, x, y, w, h int, blocked map[uint16]bool) bool {
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			b := m.BlockAt(xx, yy)
			if b == nil || b.Place != 0 || blocked[b.Type] {
				return false
			}
		}
	}
	return true
}

// separation is a minimum Manhattan distance from a set of origins.
type separation struct {
	origins [][2]int
	min     int
}

func (s separation) ok(x, y int) bool {
	for _, o := range s.origins {
		if abs(x-o[0])+abs(y-o[1]) < s.min {
			return false
		}
	}
	return true
}

func townOrigins(m *Map, min int) separation {
	s := separation{min: min}
	for _, t := range m.Towns() {
		s.origins = append(s.origins, [2]int{t.X, t.Y})
	}
	return s
}

func dungeonOrigins(m *Map, min int) separation {
	s := separation{min: min}
	for _, d := range m.Dungeons() {
		s.origins = append(s.origins, [2]int{d.X, d.Y})
	}
	return s
}

// ring lists the cells at Chebyshev radius r around the center, top
// row first, then bottom, then the side columns. r zero is the center
// itself.
func ring(cx, cy, r int) [][2]int {
	if r == 0 {
		return [][2]int{{cx, cy}}
	}
	var out [][2]int
	for x := cx - r; x <= cx+r; x++ {
		out = append(out, [2]int{x, cy - r})
	}
	for x := cx - r; x <= cx+r; x++ {
		out = append(out, [2]int{x, cy + r})
	}
	for y := cy - r + 1; y < cy+r; y++ {
		out = append(out, [2]int{cx - r, y})
	}
	for y := cy - r + 1; y < cy+r; y++ {
		out = append(out, [2]int{cx + r, y})
	}
	return out
}

// taggedIDs collects the type ids carrying a tag.
func taggedIDs(table *GenTable, tag string) map[uint16]bool {
	ids := make(map[uint16]bool)
	for _, g := range table.Types() {
		if g.HasTag(tag) {
			ids[g.ID] = true
		}
	}
	return ids
}

// namer builds settlement names from syllable pools, keeping them
// unique within one map.
type namer struct {
	rng  *rand.Rand
	used map[string]bool
}

func newNamer(rng *rand.Rand) *namer {
	return &namer{rng: rng, used: make(map[string]bool)}
}

var (
	townHeads = []string{
		"Ald", "Bren", "Cal", "Dun", "El", "Fen", "Gol", "Har",
		"Kel", "Lor", "Mar", "Nor", "Or", "Pel", "Ros", "Sil",
		"Tor", "Ul", "Ver", "Wil",
	}
	townMids = []string{"", "", "a", "e", "o", "en", "er", "in"}
	townTails = []string{
		"ford", "ham", "ton", "wick", "bury", "dale", "stead",
		"haven", "marsh", "holt", "field", "bridge",
	}
	dungeonHeads = []string{
		"Black", "Broken", "Howling", "Sunken", "Forgotten",
		"Crumbling", "Silent", "Wyrm",
	}
	dungeonTails = []string{
		" Barrow", " Warren", " Delve", " Catacombs", " Pit", " Lair",
	}
)

func (n *namer) town() string {
	return n.unique(func() string {
		return pick(n.rng, townHeads) + pick(n.rng, townMids) + pick(n.rng, townTails)
	})
}

func (n *namer) dungeon() string {
	return n.unique(func() string {
		return "The " + pick(n.rng, dungeonHeads) + pick(n.rng, dungeonTails)
	})
}

func (n *namer) unique(gen func() string) string {
	name := gen()
	for i := 0; i < 8 && n.used[name]; i++ {
		name = gen()
	}
	base := name
	for i := 2; n.used[name]; i++ {
		name = fmt.Sprintf("%s %d", base, i)
	}
	n.used[name] = true
	return name
}

func pick(rng *rand.Rand, pool []string) string {
	return pool[rng.Intn(len(pool))]
}
