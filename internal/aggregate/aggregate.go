// Package aggregate joins building statistics onto routing-graph nodes.
// Building centroids go into an R-tree once; every node then sums the
// population and jobs of buildings within a fixed radius. Query radii
// overlap on purpose: a building counts toward every node in range, which
// smooths the per-node "nearby demand" signal.
package aggregate

import (
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
)

// Building is one indexed centroid with its synthetic stats.
type Building struct {
	Centroid   geom.Point
	Population int
	Jobs       int
}

// entry embeds the centroid point, which already carries the geometry
// methods the R-tree needs.
type entry struct {
	geom.Point
	pop  int
	jobs int
}

// Index is an immutable spatial index over building centroids. A nil or
// empty index answers every query with zeros.
type Index struct {
	tree *rtree.Rtree
	n    int
}

// NewIndex builds the index in one pass. It must be complete before any
// node aggregation starts; afterwards it is read-only and safe for
// concurrent queries.
func NewIndex(buildings []Building) *Index {
	ix := &Index{tree: rtree.NewTree(25, 50)}
	for _, b := range buildings {
		ix.tree.Insert(&entry{Point: b.Centroid, pop: b.Population, jobs: b.Jobs})
		ix.n++
	}
	return ix
}

// Len returns the number of indexed buildings.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return ix.n
}

// Near sums population and jobs of all buildings whose centroid lies
// within radius of p, boundary inclusive. The R-tree narrows candidates
// to the bounding square; the exact circle test runs on those only, so a
// query stays sub-linear in building count.
func (ix *Index) Near(p geom.Point, radius float64) (pop, jobs int) {
	if ix == nil || ix.n == 0 {
		return 0, 0
	}

	box := &geom.Bounds{
		Min: geom.Point{X: p.X - radius, Y: p.Y - radius},
		Max: geom.Point{X: p.X + radius, Y: p.Y + radius},
	}
	for _, hit := range ix.tree.SearchIntersect(box) {
		e := hit.(*entry)
		if math.Hypot(e.X-p.X, e.Y-p.Y) <= radius {
			pop += e.pop
			jobs += e.jobs
		}
	}
	return pop, jobs
}
