// Package roadsurface merges every road centerline into one flattened
// surface geometry. Each edge is buffered by half its estimated width and
// all buffers are unioned, so overlapping segments at junctions collapse
// into a single layer and enclosed blocks become holes. Per-edge identity
// does not survive: the output is a surface, not a set of roads.
package roadsurface

import (
	"github.com/ctessum/geom"

	"github.com/urbanforge/osm2scene/internal/estimate"
	"github.com/urbanforge/osm2scene/internal/geo"
	"github.com/urbanforge/osm2scene/internal/params"
)

// Road is one centerline with the tags that drive width estimation.
type Road struct {
	Tags map[string]string
	Line geom.LineString
}

// Stats reports what the builder did with its input.
type Stats struct {
	Roads   int // centerlines seen
	Skipped int // degenerate centerlines that produced no buffer
	Shapes  int // merged surface shapes emitted
}

// Build buffers and unions the given roads into recentred surface shapes.
// An empty input produces no shapes.
func Build(roads []Road, prm *params.Params, c geo.Center) ([]geo.Shape, Stats) {
	stats := Stats{Roads: len(roads)}

	var pieces []geom.Polygon
	for _, r := range roads {
		width := estimate.RoadWidth(r.Tags, prm)
		buf := geo.BufferLine(r.Line, width/2)
		if len(buf) == 0 {
			stats.Skipped++
			continue
		}
		pieces = append(pieces, buf...)
	}
	if len(pieces) == 0 {
		return nil, stats
	}

	merged := unionAll(pieces)
	shapes := geo.ExtractPolygons(groupRings(merged), c)
	stats.Shapes = len(shapes)
	return shapes, stats
}

// unionAll merges polygons pairwise in a balanced tree, keeping the
// intermediate operands small instead of folding everything into one
// ever-growing accumulator.
func unionAll(polys []geom.Polygon) geom.Polygon {
	for len(polys) > 1 {
		next := make([]geom.Polygon, 0, (len(polys)+1)/2)
		for i := 0; i+1 < len(polys); i += 2 {
			next = append(next, polys[i].Union(polys[i+1]).(geom.Polygon))
		}
		if len(polys)%2 == 1 {
			next = append(next, polys[len(polys)-1])
		}
		polys = next
	}
	return polys[0]
}

// ring carries one union output ring with its containment bookkeeping.
type ring struct {
	pts   []geom.Point
	area  float64 // absolute
	depth int     // number of larger rings containing this one
	shape int     // index into the output slice, -1 for holes
}

// groupRings splits the mixed ring list of a unioned polygon into proper
// polygons: rings contained by an odd number of other rings are holes of
// their immediate parent, the rest start a new polygon. A road loop
// around a block yields the block as a hole this way.
func groupRings(p geom.Polygon) []geom.Polygon {
	rings := make([]*ring, 0, len(p))
	for _, r := range p {
		if len(r) < 3 {
			continue
		}
		a := geo.RingArea(r)
		if a < 0 {
			a = -a
		}
		if a == 0 {
			continue
		}
		rings = append(rings, &ring{pts: r, area: a, shape: -1})
	}

	for i, ri := range rings {
		for j, rj := range rings {
			if i != j && rj.area > ri.area && geo.PointInRing(ri.pts[0], rj.pts) {
				ri.depth++
			}
		}
	}

	var out []geom.Polygon
	for _, ri := range rings {
		if ri.depth%2 == 0 {
			out = append(out, geom.Polygon{ri.pts})
			ri.shape = len(out) - 1
		}
	}
	for _, hole := range rings {
		if hole.depth%2 == 0 {
			continue
		}
		if p := parentOf(hole, rings); p != nil && p.shape >= 0 {
			out[p.shape] = append(out[p.shape], hole.pts)
		}
	}
	return out
}

// parentOf finds the tightest outer ring enclosing a hole.
func parentOf(hole *ring, rings []*ring) *ring {
	var best *ring
	for _, r := range rings {
		if r == hole || r.depth%2 != 0 || r.area <= hole.area {
			continue
		}
		if !geo.PointInRing(hole.pts[0], r.pts) {
			continue
		}
		if best == nil || r.area < best.area {
			best = r
		}
	}
	return best
}
