package script

import (
	"testing"

	"github.com/urbanforge/osm2scene/internal/estimate"
)

func TestClassifyOverride(t *testing.T) {
	h, err := LoadString(`
		function classify(building)
			if building.tags["building"] == "church" then
				return { type = "none", population = 0, jobs = 0, density = 0 }
			end
			return nil
		end
	`)
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	defer h.Close()

	builtin := estimate.BuildingClass{Type: estimate.UseResidential, Population: 12, Density: 0.024}

	got, err := h.Classify(map[string]string{"building": "church"}, 10, 200, builtin)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got.Type != "none" || got.Population != 0 {
		t.Errorf("override not applied: %+v", got)
	}

	got, err = h.Classify(map[string]string{"building": "apartments"}, 10, 200, builtin)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got != builtin {
		t.Errorf("nil return should keep builtin, got %+v", got)
	}
}

func TestClassifyPartialOverride(t *testing.T) {
	// Overriding only jobs keeps the other built-in fields.
	h, err := LoadString(`
		function classify(building)
			return { jobs = 99 }
		end
	`)
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	defer h.Close()

	builtin := estimate.BuildingClass{Type: estimate.UseCommercial, Jobs: 10, Density: 0.01}
	got, err := h.Classify(nil, 8, 100, builtin)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got.Jobs != 99 || got.Type != estimate.UseCommercial || got.Density != 0.01 {
		t.Errorf("partial override wrong: %+v", got)
	}
}

func TestHelpers(t *testing.T) {
	h, err := LoadString(`
		function classify(building)
			if has_tag(building.tags, "industrial") and parse_bool(building.tags["industrial"]) then
				return { type = "commercial" }
			end
			return nil
		end
	`)
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	defer h.Close()

	builtin := estimate.BuildingClass{Type: estimate.UseResidential}
	got, err := h.Classify(map[string]string{"industrial": "yes"}, 8, 100, builtin)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got.Type != estimate.UseCommercial {
		t.Errorf("helper-based override failed: %+v", got)
	}
}

func TestNoClassifyFunction(t *testing.T) {
	h, err := LoadString(`x = 1`)
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	defer h.Close()

	if h.HasClassify() {
		t.Error("HasClassify should be false")
	}
	builtin := estimate.BuildingClass{Type: estimate.UseResidential, Population: 3}
	got, err := h.Classify(nil, 8, 100, builtin)
	if err != nil || got != builtin {
		t.Errorf("Classify without callback = %+v, %v", got, err)
	}
}
