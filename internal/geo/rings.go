package geo

import "github.com/ctessum/geom"

// RingArea is the signed area of a ring, positive for counterclockwise.
func RingArea(r []geom.Point) float64 {
	var s float64
	for i := 0; i < len(r); i++ {
		j := (i + 1) % len(r)
		s += r[i].X*r[j].Y - r[j].X*r[i].Y
	}
	return s / 2
}

// PointInRing is an even-odd ray cast. Boundary points count as inside
// or outside depending on the half-open edge rule, which is stable
// enough for containment bookkeeping.
func PointInRing(p geom.Point, r []geom.Point) bool {
	in := false
	for i, j := 0, len(r)-1; i < len(r); j, i = i, i+1 {
		if (r[i].Y > p.Y) != (r[j].Y > p.Y) {
			x := r[i].X + (p.Y-r[i].Y)/(r[j].Y-r[i].Y)*(r[j].X-r[i].X)
			if p.X < x {
				in = !in
			}
		}
	}
	return in
}
