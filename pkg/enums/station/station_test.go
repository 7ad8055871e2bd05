package station

import "testing"

func TestForCategory(t *testing.T) {
	tests := []struct {
		category string
		want     Station
	}{
		{category: "Cocktail", want: Stations.Bar},
		{category: " tea ", want: Stations.Coffee},
		{category: "pastry", want: Stations.Dessert},
		{category: "BBQ", want: Stations.Grill},
		{category: "main", want: Stations.Kitchen},
		{category: "", want: Stations.Kitchen},
	}

	for _, tt := range tests {
		if got := ForCategory(tt.category); got != tt.want {
			t.Errorf("ForCategory(%q) = %v, want %v", tt.category, got.Code(), tt.want.Code())
		}
	}
}
