package geo

import (
	"math"

	"github.com/ctessum/geom"
)

// miterLimit caps the miter length at sharp corners, in multiples of the
// buffer distance. Past the limit the join falls back to a bevel.
const miterLimit = 3.0

// BufferLine expands a centerline into buffer pieces at distance d on
// both sides, square-capped at the line ends and miter-joined at interior
// vertices. The result is a set of convex pieces (one quad per segment
// plus one join wedge per bend) meant to be unioned with the rest of the
// road surface; returning pieces instead of a single traced ring keeps
// every input to the union simple even at reflex corners.
func BufferLine(l geom.LineString, d float64) []geom.Polygon {
	if d <= 0 {
		return nil
	}
	pts := dedup(l)
	if len(pts) < 2 {
		return nil
	}

	var pieces []geom.Polygon

	// One quad per segment. Square caps extend the first and last
	// segment by d beyond the line ends.
	for i := 0; i < len(pts)-1; i++ {
		dir := unit(pts[i], pts[i+1])
		a, b := pts[i], pts[i+1]
		if i == 0 {
			a = translate(a, dir, -d)
		}
		if i == len(pts)-2 {
			b = translate(b, dir, d)
		}
		n := geom.Point{X: -dir.Y * d, Y: dir.X * d}
		ring := []geom.Point{
			{X: a.X - n.X, Y: a.Y - n.Y},
			{X: b.X - n.X, Y: b.Y - n.Y},
			{X: b.X + n.X, Y: b.Y + n.Y},
			{X: a.X + n.X, Y: a.Y + n.Y},
		}
		pieces = append(pieces, geom.Polygon{ensureCCW(ring)})
	}

	// One wedge per interior vertex, filling the outer corner of the
	// bend with a mitered (or beveled) join.
	for i := 1; i < len(pts)-1; i++ {
		if w, ok := joinWedge(pts[i-1], pts[i], pts[i+1], d); ok {
			pieces = append(pieces, w)
		}
	}

	return pieces
}

// joinWedge builds the join polygon at vertex b of the bend a-b-c.
func joinWedge(a, b, c geom.Point, d float64) (geom.Polygon, bool) {
	da := unit(a, b)
	db := unit(b, c)

	cross := da.X*db.Y - da.Y*db.X
	if math.Abs(cross) < 1e-12 {
		// Collinear or a spike; the segment quads already cover it.
		return nil, false
	}

	// Outward normals on the outer side of the turn.
	var na, nb geom.Point
	if cross < 0 { // right turn, outer corner on the left
		na = geom.Point{X: -da.Y, Y: da.X}
		nb = geom.Point{X: -db.Y, Y: db.X}
	} else {
		na = geom.Point{X: da.Y, Y: -da.X}
		nb = geom.Point{X: db.Y, Y: -db.X}
	}

	pa := geom.Point{X: b.X + na.X*d, Y: b.Y + na.Y*d}
	pb := geom.Point{X: b.X + nb.X*d, Y: b.Y + nb.Y*d}

	// Miter direction bisects the outward normals; its length grows as
	// 1/cos(half angle) and is capped by the miter limit.
	mx, my := na.X+nb.X, na.Y+nb.Y
	mlen := math.Hypot(mx, my)
	if mlen < 1e-12 {
		return geom.Polygon{ensureCCW([]geom.Point{b, pa, pb})}, true
	}
	mx, my = mx/mlen, my/mlen
	cosHalf := mx*na.X + my*na.Y
	if cosHalf < 1.0/miterLimit {
		// Too sharp for a miter, bevel instead.
		return geom.Polygon{ensureCCW([]geom.Point{b, pa, pb})}, true
	}

	tip := geom.Point{X: b.X + mx*d/cosHalf, Y: b.Y + my*d/cosHalf}
	return geom.Polygon{ensureCCW([]geom.Point{b, pa, tip, pb})}, true
}

// dedup drops consecutive duplicate vertices.
func dedup(l geom.LineString) []geom.Point {
	out := make([]geom.Point, 0, len(l))
	for _, p := range l {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	return out
}

func unit(a, b geom.Point) geom.Point {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return geom.Point{X: 1}
	}
	return geom.Point{X: dx / l, Y: dy / l}
}

func translate(p, dir geom.Point, d float64) geom.Point {
	return geom.Point{X: p.X + dir.X*d, Y: p.Y + dir.Y*d}
}

// ensureCCW returns the ring in counterclockwise order.
func ensureCCW(ring []geom.Point) []geom.Point {
	if RingArea(ring) >= 0 {
		return ring
	}
	rev := make([]geom.Point, len(ring))
	for i, p := range ring {
		rev[len(ring)-1-i] = p
	}
	return rev
}
