package estimate

import (
	"math"
	"strings"

	"github.com/urbanforge/osm2scene/internal/params"
)

// Building use categories.
const (
	UseResidential = "residential"
	UseCommercial  = "commercial"
	UseNone        = "none"
)

// BuildingClass is the derived use of a building with its synthetic
// demographic estimates. Density is a saturating [0,1] score used for
// render color intensity.
type BuildingClass struct {
	Type       string
	Density    float64
	Population int
	Jobs       int
}

// Classify determines a building's use and estimates population or jobs
// from its volume (footprint area times height, m3).
//
// Membership is decided by substring match of the building tag value
// against the keyword sets; failing that, presence of amenity/office/shop
// marks it commercial. A bare building=yes carries no semantic signal at
// all, so volume is the only remaining proxy: big generic boxes are
// commercial, the rest residential.
func Classify(tags map[string]string, height, area float64, p *params.Params) BuildingClass {
	volume := area * height
	btype := strings.ToLower(tags["building"])

	switch {
	case matchAny(btype, p.Classify.NonOccupiable):
		return BuildingClass{Type: UseNone}
	// Commercial keywords first: "warehouse" must not substring-match
	// the residential "house".
	case matchAny(btype, p.Classify.CommercialKeywords):
		return commercial(volume, p)
	case matchAny(btype, p.Classify.ResidentialKeywords):
		return residential(volume, p)
	case tags["amenity"] != "" || tags["office"] != "" || tags["shop"] != "":
		return commercial(volume, p)
	case volume > p.Classify.VolumeTiebreak:
		return commercial(volume, p)
	default:
		return residential(volume, p)
	}
}

func residential(volume float64, p *params.Params) BuildingClass {
	pop := int(math.Round(volume * p.Classify.PopPerCubicMeter))
	return BuildingClass{
		Type:       UseResidential,
		Population: pop,
		Density:    saturate(float64(pop) / p.Classify.PopDensityCap),
	}
}

func commercial(volume float64, p *params.Params) BuildingClass {
	jobs := int(math.Round(volume * p.Classify.JobsPerCubicMeter))
	return BuildingClass{
		Type:    UseCommercial,
		Jobs:    jobs,
		Density: saturate(float64(jobs) / p.Classify.JobsDensityCap),
	}
}

// matchAny reports whether value contains any keyword as a substring.
func matchAny(value string, keywords []string) bool {
	if value == "" {
		return false
	}
	for _, kw := range keywords {
		if strings.Contains(value, kw) {
			return true
		}
	}
	return false
}

func saturate(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
