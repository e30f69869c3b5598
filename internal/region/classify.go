// Package region maps a province and municipality, as returned by reverse
// geocoding, onto the three school-holiday regions.
package region

import "strings"

type Macro string

const (
	North  Macro = "North"
	Middle Macro = "Middle"
	South  Macro = "South"
)

// Default is returned when no rule recognises the province.
const Default = Middle

type rule struct {
	match  func(province, municipality string) bool
	result func(municipality string) Macro
}

var northProvinces = []string{"groningen", "friesland", "drenthe", "overijssel", "noord-holland"}

var southProvinces = []string{"limburg", "zeeland"}

// Order is significant: the first matching rule decides.
var rules = []rule{
	{match: provinceIn(northProvinces...), result: always(North)},
	{match: provinceIn(southProvinces...), result: always(South)},
	{match: provinceIn("flevoland"), result: func(m string) Macro {
		if containsAny(m, "zeewolde") {
			return Middle
		}
		return North
	}},
	{match: provinceIn("utrecht"), result: func(m string) Macro {
		if containsAny(m, "eemnes", "abcoude") {
			return North
		}
		return Middle
	}},
	{match: provinceIn("zuid-holland"), result: always(Middle)},
	{match: provinceIn("gelderland"), result: func(m string) Macro {
		if containsAny(m, "hattem") {
			return North
		}
		if containsAny(m, "arnhem", "nijmegen") {
			return South
		}
		return Middle
	}},
	{match: provinceIn("noord-brabant"), result: func(m string) Macro {
		if containsAny(m, "altena") {
			return Middle
		}
		return South
	}},
}

// Classify always returns a region; unknown or empty provinces fall back to
// Middle.
func Classify(province, municipality string) Macro {
	p := strings.ToLower(strings.TrimSpace(province))
	m := strings.ToLower(strings.TrimSpace(municipality))

	for _, r := range rules {
		if r.match(p, m) {
			return r.result(m)
		}
	}
	return Default
}

func ParseMacro(value string) (Macro, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "north":
		return North, true
	case "middle":
		return Middle, true
	case "south":
		return South, true
	default:
		return "", false
	}
}

func provinceIn(names ...string) func(province, municipality string) bool {
	return func(province, _ string) bool {
		for _, name := range names {
			if province == name {
				return true
			}
		}
		return false
	}
}

func always(result Macro) func(string) Macro {
	return func(string) Macro { return result }
}

func containsAny(value string, tokens ...string) bool {
	for _, token := range tokens {
		if strings.Contains(value, token) {
			return true
		}
	}
	return false
}
