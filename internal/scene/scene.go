// Package scene defines the renderer-facing output document: buildings
// with their derived attributes plus water, park, and road surface
// shapes, all in recentred meters.
package scene

import "github.com/urbanforge/osm2scene/internal/geo"

// Document is the sole rendering artifact of a run.
type Document struct {
	Buildings []Building `json:"buildings"`
	Water     []Area     `json:"water"`
	Parks     []Area     `json:"parks"`
	Roads     []Area     `json:"roads"`
}

// Building is one extracted footprint with height and use data. A
// building classified as non-occupiable carries no Data block.
type Building struct {
	Shape  geo.Shape     `json:"shape"`
	Height float64       `json:"height"`
	Data   *BuildingData `json:"data,omitempty"`
}

// BuildingData is the derived use classification of a building.
type BuildingData struct {
	Type    string  `json:"type"`
	Density float64 `json:"density"`
	Pop     int     `json:"pop"`
	Jobs    int     `json:"jobs"`
}

// Area is a shape-only record (water, parks, road surface).
type Area struct {
	Shape geo.Shape `json:"shape"`
}

// Assemble groups the per-category lists into the output document. Nil
// slices become empty lists so the document always carries all four keys.
func Assemble(buildings []Building, water, parks, roads []Area) *Document {
	return &Document{
		Buildings: orEmptyBuildings(buildings),
		Water:     orEmptyAreas(water),
		Parks:     orEmptyAreas(parks),
		Roads:     orEmptyAreas(roads),
	}
}

// AreasFromShapes wraps raw shapes as shape-only records.
func AreasFromShapes(shapes []geo.Shape) []Area {
	areas := make([]Area, len(shapes))
	for i, s := range shapes {
		areas[i] = Area{Shape: s}
	}
	return areas
}

func orEmptyBuildings(b []Building) []Building {
	if b == nil {
		return []Building{}
	}
	return b
}

func orEmptyAreas(a []Area) []Area {
	if a == nil {
		return []Area{}
	}
	return a
}
