package geo

import "github.com/ctessum/geom"

// Shape is one recentred output polygon: an outer ring plus its holes.
// Rings are open (no repeated closing vertex) lists of [x, y] meters
// relative to the dataset Center.
type Shape struct {
	Outer [][2]float64   `json:"outer"`
	Holes [][][2]float64 `json:"holes,omitempty"`
}

// ExtractPolygons flattens an area geometry into independent shape
// records, one per polygon part. Interior rings become holes of their
// part. Multi-part features lose cross-part grouping here: each part
// stands alone in the output, and the caller re-uses the parent feature's
// derived attributes for every part. Empty geometry yields no shapes,
// never an error.
func ExtractPolygons(polys []geom.Polygon, c Center) []Shape {
	var shapes []Shape
	for _, p := range polys {
		if len(p) == 0 || len(p[0]) < 3 {
			continue
		}
		s := Shape{Outer: extractRing(p[0], c)}
		for _, hole := range p[1:] {
			if len(hole) < 3 {
				continue
			}
			s.Holes = append(s.Holes, extractRing(hole, c))
		}
		shapes = append(shapes, s)
	}
	return shapes
}

// ExtractLine recenters a line geometry into a point sequence. Empty
// lines yield nil.
func ExtractLine(l geom.LineString, c Center) [][2]float64 {
	if len(l) == 0 {
		return nil
	}
	pts := make([][2]float64, len(l))
	for i, p := range l {
		pts[i] = c.Rel(p)
	}
	return pts
}

// extractRing recenters one ring, dropping a repeated closing vertex.
func extractRing(ring []geom.Point, c Center) [][2]float64 {
	if n := len(ring); n > 1 && ring[0] == ring[n-1] {
		ring = ring[:n-1]
	}
	out := make([][2]float64, len(ring))
	for i, p := range ring {
		out[i] = c.Rel(p)
	}
	return out
}

// PolygonArea returns the total area of a multi-part footprint in m2.
func PolygonArea(polys []geom.Polygon) float64 {
	var a float64
	for _, p := range polys {
		a += p.Area()
	}
	return a
}

// PolygonCentroid returns the centroid of one polygon part, falling back
// to the vertex mean when the part is degenerate (zero area).
func PolygonCentroid(p geom.Polygon) geom.Point {
	if len(p) == 0 || len(p[0]) == 0 {
		return geom.Point{}
	}
	if p.Area() > 0 {
		return p.Centroid()
	}
	var sx, sy float64
	for _, pt := range p[0] {
		sx += pt.X
		sy += pt.Y
	}
	n := float64(len(p[0]))
	return geom.Point{X: sx / n, Y: sy / n}
}
