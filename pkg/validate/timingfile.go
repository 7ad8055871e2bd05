package validate

import (
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

// TimingFile is the YAML layout of station timing rules:
//
//	version: 1
//	stations:
//	  kitchen:
//	    - category: mains
//	      target_min: 12
//	      warning_min: 10
//	      critical_min: 20
type TimingFile struct {
	Version  int                          `yaml:"version"`
	Stations map[string][]TimingRuleInput `yaml:"stations"`
}

// LoadTimingFile decodes and validates a timing file. Unknown keys are
// rejected so typos do not silently drop thresholds.
func LoadTimingFile(r io.Reader) (*TimingFile, error) {
	var f TimingFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("cannot parse timing rules: %w", err)
	}
	if f.Version == 0 {
		f.Version = 1
	}

	for stationID, rules := range f.Stations {
		for i, rule := range rules {
			if err := rule.Validate().Err(); err != nil {
				return nil, fmt.Errorf("station %s rule %d: %w", stationID, i, err)
			}
		}
	}
	return &f, nil
}

// StationIDs returns the stations of the file in a stable order.
func (f *TimingFile) StationIDs() []string {
	ids := make([]string, 0, len(f.Stations))
	for id := range f.Stations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
