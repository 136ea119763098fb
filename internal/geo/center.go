// Package geo holds the planar geometry helpers of the pipeline:
// the shared recentring origin, polygon/line shape extraction, and
// centerline buffering.
//
// All coordinates entering this package are already projected to local
// meters. Every emitted coordinate is relative to one Center computed
// from the whole dataset; scene and routing outputs must share that
// Center or the spatial join between them breaks.
package geo

import (
	"math"

	"github.com/ctessum/geom"
)

// Coordinate rounding applied to every emitted value: centimeters for
// positions, decimeters for scalar attributes like heights and lengths.
const (
	coordPrecision  = 100
	scalarPrecision = 10
)

// Center is the global recentring origin, the mean of all feature
// centroids. It is computed once and passed by value; nothing mutates it.
type Center struct {
	X, Y float64
}

// CenterAccum builds the mean of feature centroids incrementally.
type CenterAccum struct {
	sumX, sumY float64
	n          int
}

// NewCenterAccum returns an accumulator for computing the dataset center.
func NewCenterAccum() *CenterAccum {
	return &CenterAccum{}
}

// AddPolygon folds one area feature's centroid into the mean.
func (a *CenterAccum) AddPolygon(p geom.Polygon) {
	if len(p) == 0 || len(p[0]) == 0 {
		return
	}
	c := p.Centroid()
	a.add(c.X, c.Y)
}

// AddLine folds one line feature's centroid (vertex mean) into the mean.
func (a *CenterAccum) AddLine(l geom.LineString) {
	if len(l) == 0 {
		return
	}
	var sx, sy float64
	for _, pt := range l {
		sx += pt.X
		sy += pt.Y
	}
	a.add(sx/float64(len(l)), sy/float64(len(l)))
}

func (a *CenterAccum) add(x, y float64) {
	a.sumX += x
	a.sumY += y
	a.n++
}

// Center returns the accumulated mean. An empty dataset centers at the
// origin.
func (a *CenterAccum) Center() Center {
	if a.n == 0 {
		return Center{}
	}
	return Center{X: a.sumX / float64(a.n), Y: a.sumY / float64(a.n)}
}

// Rel recenters a point and rounds it to output precision.
func (c Center) Rel(p geom.Point) [2]float64 {
	return [2]float64{RoundCoord(p.X - c.X), RoundCoord(p.Y - c.Y)}
}

// RoundCoord rounds a coordinate to output precision (2 decimals).
func RoundCoord(v float64) float64 {
	return math.Round(v*coordPrecision) / coordPrecision
}

// RoundScalar rounds a scalar attribute to output precision (1 decimal).
func RoundScalar(v float64) float64 {
	return math.Round(v*scalarPrecision) / scalarPrecision
}
