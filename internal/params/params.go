// Package params holds the tunable constants behind the scene heuristics.
// None of these numbers are measured reality: heights, widths, and the
// population/job factors are approximations chosen to look right in a
// renderer, so they load from YAML rather than living as code literals.
package params

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Height controls building height estimation.
type Height struct {
	Default        float64 `yaml:"default"`          // meters, when no usable tag exists
	MetersPerLevel float64 `yaml:"meters_per_level"` // multiplier for building:levels
}

// Width controls road width estimation.
type Width struct {
	LaneWidth     float64            `yaml:"lane_width"`     // meters per lane
	MinLanes      int                `yaml:"min_lanes"`
	MaxLanes      int                `yaml:"max_lanes"`
	FeetThreshold float64            `yaml:"feet_threshold"` // unitless widths above this are assumed feet
	ClassWidths   map[string]float64 `yaml:"class_widths"`   // full width by highway class
	DefaultWidth  float64            `yaml:"default_width"`  // unrecognized highway class
}

// Classify controls building use classification and the synthetic
// population/job estimates.
type Classify struct {
	PopPerCubicMeter  float64 `yaml:"pop_per_m3"`
	JobsPerCubicMeter float64 `yaml:"jobs_per_m3"`
	PopDensityCap     float64 `yaml:"pop_density_cap"`  // population at which density saturates
	JobsDensityCap    float64 `yaml:"jobs_density_cap"` // jobs at which density saturates
	VolumeTiebreak    float64 `yaml:"volume_tiebreak"`  // m3; generic buildings above this are commercial

	ResidentialKeywords []string `yaml:"residential_keywords"`
	CommercialKeywords  []string `yaml:"commercial_keywords"`
	NonOccupiable       []string `yaml:"non_occupiable"`
}

// Aggregate controls the building-to-node spatial join.
type Aggregate struct {
	Radius float64 `yaml:"radius"` // meters, boundary inclusive
}

// Params is the full set of heuristic constants.
type Params struct {
	Height    Height    `yaml:"height"`
	Width     Width     `yaml:"width"`
	Classify  Classify  `yaml:"classify"`
	Aggregate Aggregate `yaml:"aggregate"`
}

// Default returns the built-in constants.
func Default() *Params {
	return &Params{
		Height: Height{
			Default:        8.0,
			MetersPerLevel: 3.5,
		},
		Width: Width{
			LaneWidth:     3.5,
			MinLanes:      1,
			MaxLanes:      6,
			FeetThreshold: 50,
			ClassWidths: map[string]float64{
				"motorway":     12,
				"trunk":        11,
				"primary":      10,
				"secondary":    9,
				"tertiary":     8,
				"residential":  6,
				"unclassified": 5,
				"service":      4,
				"cycleway":     2,
				"footway":      1.5,
				"path":         1.5,
			},
			DefaultWidth: 4.0,
		},
		Classify: Classify{
			PopPerCubicMeter:  0.05,
			JobsPerCubicMeter: 0.08,
			PopDensityCap:     500,
			JobsDensityCap:    1000,
			VolumeTiebreak:    5000,
			ResidentialKeywords: []string{
				"residential", "apartments", "house", "detached",
				"semidetached", "terrace", "dormitory", "bungalow",
				"cabin", "static_caravan",
			},
			CommercialKeywords: []string{
				"commercial", "retail", "office", "industrial",
				"warehouse", "supermarket", "hotel", "kiosk",
			},
			NonOccupiable: []string{
				"roof", "garage", "garages", "shed", "carport",
				"hut", "greenhouse", "ruins",
			},
		},
		Aggregate: Aggregate{
			Radius: 100,
		},
	}
}

// Load reads a params YAML file layered over the defaults: keys absent
// from the file keep their built-in values.
func Load(path string) (*Params, error) {
	p := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read params file: %w", err)
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse params YAML: %w", err)
	}
	return p, nil
}
