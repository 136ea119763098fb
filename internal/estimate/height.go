// Package estimate derives building and road attributes from raw tags.
// Every estimator is total: malformed or missing tags fall through to the
// next rule and finally to a default, so callers never see an error.
package estimate

import (
	"math"

	"github.com/urbanforge/osm2scene/internal/params"
	"github.com/urbanforge/osm2scene/internal/tagval"
)

// Height derives a building height in meters. Policy order: an explicit
// height tag, then building:levels times the per-floor height, then the
// default. Result is rounded to one decimal.
func Height(tags map[string]string, p *params.Params) float64 {
	h := p.Height.Default
	if v, ok := tagval.Number(tags, "height"); ok {
		h = v
	} else if levels, ok := tagval.Number(tags, "building:levels"); ok {
		h = levels * p.Height.MetersPerLevel
	}
	return math.Round(h*10) / 10
}
