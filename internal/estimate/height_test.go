package estimate

import (
	"testing"

	"github.com/urbanforge/osm2scene/internal/params"
)

func TestHeight(t *testing.T) {
	p := params.Default()

	tests := []struct {
		name string
		tags map[string]string
		want float64
	}{
		{"explicit height", map[string]string{"height": "12 m"}, 12.0},
		{"height wins over levels", map[string]string{"height": "20", "building:levels": "3"}, 20.0},
		{"levels fallback", map[string]string{"building:levels": "3"}, 10.5},
		{"garbage height falls to levels", map[string]string{"height": "tall", "building:levels": "2"}, 7.0},
		{"no tags", map[string]string{}, 8.0},
		{"nil tags", nil, 8.0},
		{"rounding", map[string]string{"height": "12.34"}, 12.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Height(tt.tags, p); got != tt.want {
				t.Errorf("Height = %v, want %v", got, tt.want)
			}
		})
	}
}
