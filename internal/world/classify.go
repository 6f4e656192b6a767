package world

import "math/rand"

type axis uint8

const (
	axisHeight axis = iota
	axisPopulation
	axisLaw
)

func (p ParameterPoint) on(a axis) uint8 {
	switch a {
	case axisHeight:
		return p.Height
	case axisPopulation:
		return p.Population
	default:
		return p.Law
	}
}

type nodeKind uint8

const (
	nodeLeaf nodeKind = iota
	nodeSplit
	nodeProb
)

// classNode is a tagged union: a leaf resolves to a type id, a split
// compares one parameter axis against a cut, and a probabilistic node
// picks a branch by weight.
type classNode struct {
	kind nodeKind

	id uint16 // leaf

	axis axis  // split: left covers values <= cut
	cut  uint8

	wL, wR int // prob branch weights

	left, right *classNode
}

// Classifier resolves parameter points to generation type ids through
// a decision tree compiled once from the table's bounding boxes.
// Shared box boundaries become shared splits, so the tree stays small
// even though the cube has sixteen million points.
type Classifier struct {
	root     *classNode
	fallback uint16
}

// NewClassifier compiles the table. An empty table compiles to a
// single fallback leaf.
func NewClassifier(t *GenTable) *Classifier {
	c := &Classifier{fallback: t.Fallback()}
	c.root = c.build(ParamBox{0, 255, 0, 255, 0, 255}, t.Types())
	return c
}

// Classify resolves a parameter point. rng is consulted only when the
// walk reaches a probabilistic node; points no box claims resolve to
// the table's fallback id.
func (c *Classifier) Classify(p ParameterPoint, rng *rand.Rand) uint16 {
	n := c.root
	for {
		switch n.kind {
		case nodeSplit:
			if p.on(n.axis) <= n.cut {
				n = n.left
			} else {
				n = n.right
			}
		case nodeProb:
			if rng.Intn(n.wL+n.wR) < n.wL {
				n = n.left
			} else {
				n = n.right
			}
		default:
			return n.id
		}
	}
}

// build partitions the region recursively. A region no box touches is
// a fallback leaf; a region every remaining candidate covers entirely
// terminates in a leaf or a weight chain; otherwise some candidate has
// an edge strictly inside the region and we split there.
func (c *Classifier) build(r ParamBox, types []GenType) *classNode {
	var cands []GenType
	for _, g := range types {
		if boxesIntersect(g.Box, r) {
			cands = append(cands, g)
		}
	}
	if len(cands) == 0 {
		return &classNode{kind: nodeLeaf, id: c.fallback}
	}
	whole := true
	for _, g := range cands {
		if !boxCovers(g.Box, r) {
			whole = false
			break
		}
	}
	if whole {
		return probChain(cands)
	}
	a, cut, ok := findCut(r, cands)
	if !ok {
		return &classNode{kind: nodeLeaf, id: c.fallback}
	}
	lo, hi := splitBox(r, a, cut)
	return &classNode{
		kind:  nodeSplit,
		axis:  a,
		cut:   cut,
		left:  c.build(lo, cands),
		right: c.build(hi, cands),
	}
}

// probChain folds candidates sharing a region into a chain of weighted
// picks. A single candidate is a plain leaf.
func probChain(cands []GenType) *classNode {
	last := cands[len(cands)-1]
	n := &classNode{kind: nodeLeaf, id: last.ID}
	total := weightOf(last)
	for i := len(cands) - 2; i >= 0; i-- {
		w := weightOf(cands[i])
		n = &classNode{
			kind:  nodeProb,
			wL:    w,
			wR:    total,
			left:  &classNode{kind: nodeLeaf, id: cands[i].ID},
			right: n,
		}
		total += w
	}
	return n
}

func weightOf(g GenType) int {
	if g.Weight <= 0 {
		return 1
	}
	return g.Weight
}

// findCut returns the first candidate box edge lying strictly inside
// the region, scanning candidates in table order and axes in
// height, population, law order.
func findCut(r ParamBox, cands []GenType) (axis, uint8, bool) {
	for _, g := range cands {
		b := g.Box
		if b.HgtLo > r.HgtLo {
			return axisHeight, b.HgtLo - 1, true
		}
		if b.HgtHi < r.HgtHi {
			return axisHeight, b.HgtHi, true
		}
		if b.PopLo > r.PopLo {
			return axisPopulation, b.PopLo - 1, true
		}
		if b.PopHi < r.PopHi {
			return axisPopulation, b.PopHi, true
		}
		if b.LawLo > r.LawLo {
			return axisLaw, b.LawLo - 1, true
		}
		if b.LawHi < r.LawHi {
			return axisLaw, b.LawHi, true
		}
	}
	return 0, 0, false
}

func splitBox(r ParamBox, a axis, cut uint8) (lo, hi ParamBox) {
	lo, hi = r, r
	switch a {
	case axisHeight:
		lo.HgtHi, hi.HgtLo = cut, cut+1
	case axisPopulation:
		lo.PopHi, hi.PopLo = cut, cut+1
	default:
		lo.LawHi, hi.LawLo = cut, cut+1
	}
	return lo, hi
}

func boxesIntersect(a, b ParamBox) bool {
	return a.HgtLo <= b.HgtHi && a.HgtHi >= b.HgtLo &&
		a.PopLo <= b.PopHi && a.PopHi >= b.PopLo &&
		a.LawLo <= b.LawHi && a.LawHi >= b.LawLo
}

// boxCovers reports whether a contains all of b.
func boxCovers(a, b ParamBox) bool {
	return a.HgtLo <= b.HgtLo && a.HgtHi >= b.HgtHi &&
		a.PopLo <= b.PopLo && a.PopHi >= b.PopHi &&
		a.LawLo <= b.LawLo && a.LawHi >= b.LawHi
}
