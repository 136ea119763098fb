package estimate

import (
	"github.com/urbanforge/osm2scene/internal/params"
	"github.com/urbanforge/osm2scene/internal/tagval"
)

const feetToMeters = 0.3048

// widthKeys in priority order. est_width is the mapper's guess and ranks
// last.
var widthKeys = []string{"width", "width:carriageway", "est_width"}

// RoadWidth derives the full road surface width in meters. Policy order:
// an explicit width-like tag (with feet conversion when the value carries
// an imperial marker or exceeds the sanity threshold), then lane count
// times a fixed lane width, then a lookup by highway class. The class
// table is approximate by construction; callers wanting a buffer distance
// halve the result.
func RoadWidth(tags map[string]string, p *params.Params) float64 {
	for _, key := range widthKeys {
		raw, ok := tags[key]
		if !ok {
			continue
		}
		v, ok := tagval.Parse(raw)
		if !ok {
			continue
		}
		// A 60-meter residential street does not exist; values past the
		// threshold mean the mapper dropped a feet unit.
		if tagval.IsFeet(raw) || v > p.Width.FeetThreshold {
			v *= feetToMeters
		}
		return v
	}

	if lanes, ok := tagval.Number(tags, "lanes"); ok {
		n := int(lanes)
		if n < p.Width.MinLanes {
			n = p.Width.MinLanes
		}
		if n > p.Width.MaxLanes {
			n = p.Width.MaxLanes
		}
		return float64(n) * p.Width.LaneWidth
	}

	if class, ok := tagval.Raw(tags, "highway"); ok {
		if w, ok := p.Width.ClassWidths[tagval.First(class)]; ok {
			return w
		}
	}
	return p.Width.DefaultWidth
}
