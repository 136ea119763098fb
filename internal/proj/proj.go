// Package proj converts WGS84 coordinates to a local planar grid in
// meters. An equirectangular projection about the extract's midpoint is
// accurate to well under a meter across a city-sized extent, which is all
// the downstream geometry needs; geodetic fidelity beyond that is out of
// scope.
package proj

import "math"

// Semi-major axis of the WGS84 ellipsoid in meters.
const earthRadius = 6378137.0

// Planar projects WGS84 (lon, lat) to local (x, y) meters around a fixed
// origin. The instance is immutable and safe for concurrent use.
type Planar struct {
	lon0, lat0 float64
	scaleX     float64 // meters per degree longitude at the origin latitude
	scaleY     float64 // meters per degree latitude
}

// NewPlanar creates a projection centered on the given origin, typically
// the midpoint of the extract's node bounds.
func NewPlanar(lon0, lat0 float64) *Planar {
	degToRad := math.Pi / 180.0
	return &Planar{
		lon0:   lon0,
		lat0:   lat0,
		scaleX: earthRadius * degToRad * math.Cos(lat0*degToRad),
		scaleY: earthRadius * degToRad,
	}
}

// Project converts one coordinate to local meters. East is +x, north +y.
func (p *Planar) Project(lon, lat float64) (x, y float64) {
	return (lon - p.lon0) * p.scaleX, (lat - p.lat0) * p.scaleY
}
