package config

import (
	"math"
	"sort"
)

// Presets maps temperament name to tuning scheme. Each entry is a full
// config: mapping and subgroup from the temperament, norm and
// enforcement from the scheme.
var Presets = map[string]map[string]*Config{
	"meantone": {
		"te": {
			Mapping: [][]int{{1, 0, -4}, {0, 1, 4}}, Subgroup: "2.3.5",
		},
		"cte": {
			Mapping: [][]int{{1, 0, -4}, {0, 1, 4}}, Subgroup: "2.3.5",
			Enforce: "c1",
		},
		"top": {
			Mapping: [][]int{{1, 0, -4}, {0, 1, 4}}, Subgroup: "2.3.5",
			Order: math.Inf(1),
		},
		"pote": {
			Mapping: [][]int{{1, 0, -4}, {0, 1, 4}}, Subgroup: "2.3.5",
			Enforce: "d1",
		},
	},
	"porcupine": {
		"te": {
			Mapping: [][]int{{1, 2, 3}, {0, 3, 5}}, Subgroup: "2.3.5",
		},
		"cte": {
			Mapping: [][]int{{1, 2, 3}, {0, 3, 5}}, Subgroup: "2.3.5",
			Enforce: "c1",
		},
	},
	"magic": {
		"te": {
			Mapping: [][]int{{1, 0, 2}, {0, 5, 1}}, Subgroup: "2.3.5",
		},
	},
	"hanson": {
		"te": {
			Mapping: [][]int{{1, 0, 1}, {0, 6, 5}}, Subgroup: "2.3.5",
		},
	},
	"superpyth": {
		"te": {
			Mapping: [][]int{{1, 0, -12}, {0, 1, 9}}, Subgroup: "2.3.5",
		},
		"top": {
			Mapping: [][]int{{1, 0, -12}, {0, 1, 9}}, Subgroup: "2.3.5",
			Order: math.Inf(1),
		},
	},
	"tetracot": {
		"te": {
			Mapping: [][]int{{1, 1, 1}, {0, 4, 9}}, Subgroup: "2.3.5",
		},
	},
	"blackwood": {
		"te": {
			Mapping: [][]int{{5, 8, 0}, {0, 0, 1}}, Subgroup: "2.3.5",
		},
		"cte": {
			Mapping: [][]int{{5, 8, 0}, {0, 0, 1}}, Subgroup: "2.3.5",
			Enforce: "c1",
		},
	},
	"orwell": {
		"te": {
			Mapping: [][]int{{1, 0, 3}, {0, 7, -3}}, Subgroup: "2.3.5",
		},
	},
	"pajara": {
		"te": {
			Mapping: [][]int{{2, 3, 5, 6}, {0, 1, -2, -2}}, Subgroup: "2.3.5.7",
		},
		"cte": {
			Mapping: [][]int{{2, 3, 5, 6}, {0, 1, -2, -2}}, Subgroup: "2.3.5.7",
			Enforce: "c1",
		},
	},
	"miracle": {
		"te": {
			Mapping: [][]int{{1, 1, 3, 3}, {0, 6, -7, -2}}, Subgroup: "2.3.5.7",
		},
		"pote": {
			Mapping: [][]int{{1, 1, 3, 3}, {0, 6, -7, -2}}, Subgroup: "2.3.5.7",
			Enforce: "d1",
		},
	},
}

// GetPreset fills the named scheme of the named temperament onto the
// defaults, or returns nil when either name is unknown.
func GetPreset(name, scheme string) *Config {
	schemes, ok := Presets[name]
	if !ok {
		return nil
	}
	preset, ok := schemes[scheme]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Mapping = preset.Mapping
	cfg.Subgroup = preset.Subgroup
	if preset.Weighting != "" {
		cfg.Weighting = preset.Weighting
	}
	if preset.WeightAmount != 0 {
		cfg.WeightAmount = preset.WeightAmount
	}
	cfg.Skew = preset.Skew
	if preset.Order != 0 {
		cfg.Order = preset.Order
	}
	cfg.Enforce = preset.Enforce
	return cfg
}

// ListPresets names the schemes of one temperament, sorted.
func ListPresets(name string) []string {
	schemes, ok := Presets[name]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(schemes))
	for scheme := range schemes {
		out = append(out, scheme)
	}
	sort.Strings(out)
	return out
}

// ListTemperaments names every preset temperament, sorted.
func ListTemperaments() []string {
	out := make([]string, 0, len(Presets))
	for name := range Presets {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
