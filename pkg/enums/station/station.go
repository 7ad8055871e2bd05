package station

import "strings"

type Station struct {
	Name string
}

func (s Station) Code() string {
	return s.Name
}

type Enum struct {
	Kitchen Station
	Grill   Station
	Dessert Station
	Bar     Station
	Coffee  Station
}

var Stations = Enum{
	Kitchen: Station{Name: "kitchen"},
	Grill:   Station{Name: "grill"},
	Dessert: Station{Name: "dessert"},
	Bar:     Station{Name: "bar"},
	Coffee:  Station{Name: "coffee"},
}

// ForCategory routes a menu category to the station that prepares it.
// Unknown categories go to the main kitchen.
func ForCategory(category string) Station {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "drink", "drinks", "beverage", "cocktail":
		return Stations.Bar
	case "coffee", "tea":
		return Stations.Coffee
	case "dessert", "pastry":
		return Stations.Dessert
	case "grill", "steak", "bbq":
		return Stations.Grill
	default:
		return Stations.Kitchen
	}
}
