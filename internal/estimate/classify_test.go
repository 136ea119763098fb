package estimate

import (
	"testing"

	"github.com/urbanforge/osm2scene/internal/params"
)

func TestClassify(t *testing.T) {
	p := params.Default()

	tests := []struct {
		name     string
		tags     map[string]string
		height   float64
		area     float64
		wantType string
		wantPop  int
		wantJobs int
	}{
		{
			name:     "apartments",
			tags:     map[string]string{"building": "apartments"},
			height:   10,
			area:     20, // volume 200
			wantType: UseResidential,
			wantPop:  10,
		},
		{
			name:     "retail",
			tags:     map[string]string{"building": "retail"},
			height:   10,
			area:     100, // volume 1000
			wantType: UseCommercial,
			wantJobs: 80,
		},
		{
			name:     "warehouse is commercial despite house substring",
			tags:     map[string]string{"building": "warehouse"},
			height:   10,
			area:     100,
			wantType: UseCommercial,
			wantJobs: 80,
		},
		{
			name:     "amenity implies commercial",
			tags:     map[string]string{"building": "yes", "amenity": "school"},
			height:   10,
			area:     50, // volume 500
			wantType: UseCommercial,
			wantJobs: 40,
		},
		{
			name:     "generic yes big volume tiebreak",
			tags:     map[string]string{"building": "yes"},
			height:   10,
			area:     600, // volume 6000 > 5000
			wantType: UseCommercial,
			wantJobs: 480,
		},
		{
			name:     "generic yes small volume tiebreak",
			tags:     map[string]string{"building": "yes"},
			height:   10,
			area:     100, // volume 1000
			wantType: UseResidential,
			wantPop:  50,
		},
		{
			name:     "garage is none",
			tags:     map[string]string{"building": "garage"},
			height:   3,
			area:     20,
			wantType: UseNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.tags, tt.height, tt.area, p)
			if got.Type != tt.wantType {
				t.Fatalf("Type = %q, want %q", got.Type, tt.wantType)
			}
			if got.Population != tt.wantPop {
				t.Errorf("Population = %d, want %d", got.Population, tt.wantPop)
			}
			if got.Jobs != tt.wantJobs {
				t.Errorf("Jobs = %d, want %d", got.Jobs, tt.wantJobs)
			}
		})
	}
}

func TestClassifyDensity(t *testing.T) {
	p := params.Default()

	// volume 200 -> pop 10 -> density 10/500
	got := Classify(map[string]string{"building": "apartments"}, 10, 20, p)
	if got.Density != 0.02 {
		t.Errorf("Density = %v, want 0.02", got.Density)
	}

	// Density saturates at 1.0 for huge volumes
	got = Classify(map[string]string{"building": "apartments"}, 100, 10000, p)
	if got.Density != 1.0 {
		t.Errorf("Density = %v, want saturation at 1.0", got.Density)
	}

	// Category none carries no stats
	got = Classify(map[string]string{"building": "roof"}, 10, 1000, p)
	if got.Density != 0 || got.Population != 0 || got.Jobs != 0 {
		t.Errorf("none category should carry zero stats, got %+v", got)
	}
}
