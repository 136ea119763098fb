package osmload

// Category is the single derived class of a feature. Dispatch happens
// exactly once per feature with a fixed priority, so a feature carrying
// both a water and a leisure tag cannot silently land in two lists.
type Category int

const (
	CategoryNone Category = iota
	CategoryBuilding
	CategoryWater
	CategoryPark
	CategoryRoad
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryBuilding:
		return "building"
	case CategoryWater:
		return "water"
	case CategoryPark:
		return "park"
	case CategoryRoad:
		return "road"
	default:
		return "none"
	}
}

var (
	waterLanduse = map[string]bool{
		"reservoir": true,
		"basin":     true,
	}
	parkLeisure = map[string]bool{
		"park":        true,
		"garden":      true,
		"pitch":       true,
		"playground":  true,
		"golf_course": true,
		"common":      true,
		"dog_park":    true,
	}
	parkLanduse = map[string]bool{
		"grass":             true,
		"forest":            true,
		"meadow":            true,
		"recreation_ground": true,
		"village_green":     true,
		"cemetery":          true,
	}
)

// Categorize classifies a feature by its tags. Priority order: building,
// water, park, road. Closed highway ways (roundabouts, circular service
// roads) stay roads unless explicitly tagged area=yes.
func Categorize(tags map[string]string) Category {
	switch {
	case tags["building"] != "":
		return CategoryBuilding
	case tags["natural"] == "water" ||
		waterLanduse[tags["landuse"]] ||
		tags["leisure"] == "swimming_pool" ||
		tags["waterway"] == "riverbank":
		return CategoryWater
	case parkLeisure[tags["leisure"]] || parkLanduse[tags["landuse"]]:
		return CategoryPark
	case tags["highway"] != "" && tags["area"] != "yes":
		return CategoryRoad
	default:
		return CategoryNone
	}
}
