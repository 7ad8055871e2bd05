package validate

import (
	"reflect"
	"strings"
	"testing"
)

const timingYAML = `
version: 2
stations:
  grill:
    - category: mains
      target_min: 12
      warning_min: 10
      critical_min: 20
  bar:
    - category: drinks
      target_min: 3
      warning_min: 5
`

func TestLoadTimingFile(t *testing.T) {
	f, err := LoadTimingFile(strings.NewReader(timingYAML))
	if err != nil {
		t.Fatalf("LoadTimingFile() error = %v", err)
	}

	if f.Version != 2 {
		t.Errorf("Version = %d, want 2", f.Version)
	}
	if got := f.StationIDs(); !reflect.DeepEqual(got, []string{"bar", "grill"}) {
		t.Errorf("StationIDs() = %v", got)
	}
	grill := f.Stations["grill"][0]
	if grill.WarningMin == nil || *grill.WarningMin != 10 || grill.CriticalMin == nil || *grill.CriticalMin != 20 {
		t.Errorf("grill rule = %+v", grill)
	}
	if f.Stations["bar"][0].CriticalMin != nil {
		t.Error("absent critical_min should stay nil")
	}
}

func TestLoadTimingFileDefaultsVersion(t *testing.T) {
	f, err := LoadTimingFile(strings.NewReader("stations:\n  bar:\n    - category: drinks\n      target_min: 3\n"))
	if err != nil {
		t.Fatalf("LoadTimingFile() error = %v", err)
	}
	if f.Version != 1 {
		t.Errorf("Version = %d, want 1", f.Version)
	}
}

func TestLoadTimingFileErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "criticalBelowWarning", yaml: "stations:\n  grill:\n    - category: mains\n      warning_min: 10\n      critical_min: 5\n"},
		{name: "unknownField", yaml: "stations:\n  grill:\n    - category: mains\n      warn: 10\n"},
		{name: "missingCategory", yaml: "stations:\n  grill:\n    - target_min: 10\n"},
		{name: "notYAML", yaml: "stations: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadTimingFile(strings.NewReader(tt.yaml)); err == nil {
				t.Error("LoadTimingFile() expected error")
			}
		})
	}
}
