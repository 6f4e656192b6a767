package world

import "math/rand"

const plasmaUnset = -1

// PlasmaField is a midpoint-displacement height field over a square
// grid of span+1 samples per side. Cells seeded before Generate keep
// their values; Generate fills the rest, halving the step and shrinking
// the random displacement along with it.
type PlasmaField struct {
	span int
	grid []int16
}

// NewPlasmaField allocates a field. span must be a power of two, at
// least two; the sample grid is one wider per side so the field has
// true corner samples.
func NewPlasmaField(span int) *PlasmaField {
	if span < 2 || span&(span-1) != 0 {
		panic("plasma: span must be a power of two >= 2")
	}
	p := &PlasmaField{span: span, grid: make([]int16, (span+1)*(span+1))}
	for i := range p.grid {
		p.grid[i] = plasmaUnset
	}
	return p
}

// Span returns the field span (one less than the grid side).
func (p *PlasmaField) Span() int { return p.span }

// Value returns the sample at x, y in [0,255], or -1 for a cell that
// has not been seeded or generated.
func (p *PlasmaField) Value(x, y int) int {
	return int(p.grid[y*(p.span+1)+x])
}

func (p *PlasmaField) set(x, y, v int) {
	if v < 0 {
		v = 0
	} else if v > 255 {
		v = 255
	}
	p.grid[y*(p.span+1)+x] = int16(v)
}

func (p *PlasmaField) isUnset(x, y int) bool {
	return p.grid[y*(p.span+1)+x] == plasmaUnset
}

// Seed fixes the four corners and the center ahead of Generate.
// Negative arguments leave that cell free for Generate to fill.
func (p *PlasmaField) Seed(c00, c10, c01, c11, center int) {
	s := p.span
	if c00 >= 0 {
		p.set(0, 0, c00)
	}
	if c10 >= 0 {
		p.set(s, 0, c10)
	}
	if c01 >= 0 {
		p.set(0, s, c01)
	}
	if c11 >= 0 {
		p.set(s, s, c11)
	}
	if center >= 0 {
		p.set(s/2, s/2, center)
	}
}

// Generate fills every unset cell. Corners left unseeded draw uniform
// values from rng first, so a completely unseeded field is noise shaped
// only by the displacement schedule. Seeded cells are never rewritten,
// and identical seeds with an identical rng stream reproduce the grid
// bit for bit.
func (p *PlasmaField) Generate(rng *rand.Rand) {
	s := p.span
	for _, c := range [4][2]int{{0, 0}, {s, 0}, {0, s}, {s, s}} {
		if p.isUnset(c[0], c[1]) {
			p.set(c[0], c[1], rng.Intn(256))
		}
	}
	for step := s; step > 1; step /= 2 {
		half := step / 2
		// Midpoints along rows of the coarser lattice.
		for y := 0; y <= s; y += step {
			for x := half; x < s; x += step {
				if p.isUnset(x, y) {
					v := (p.Value(x-half, y) + p.Value(x+half, y)) / 2
					p.set(x, y, v+displace(rng, step))
				}
			}
		}
		// Midpoints along columns.
		for x := 0; x <= s; x += step {
			for y := half; y < s; y += step {
				if p.isUnset(x, y) {
					v := (p.Value(x, y-half) + p.Value(x, y+half)) / 2
					p.set(x, y, v+displace(rng, step))
				}
			}
		}
		// Cell centers from the four diagonal neighbors.
		for y := half; y < s; y += step {
			for x := half; x < s; x += step {
				if p.isUnset(x, y) {
					v := (p.Value(x-half, y-half) + p.Value(x+half, y-half) +
						p.Value(x-half, y+half) + p.Value(x+half, y+half)) / 4
					p.set(x, y, v+displace(rng, step))
				}
			}
		}
	}
}

// displace draws an offset roughly in [-step/2, step/2].
func displace(rng *rand.Rand, step int) int {
	return rng.Intn(step+1) - step/2
}
