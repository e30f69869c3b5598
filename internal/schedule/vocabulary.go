package schedule

import "strings"

type kindRule struct {
	token string
	kind  Kind
}

type regionRule struct {
	tokens []string
	region Region
}

// Evaluated top to bottom; the first token found in the lowercased source
// text wins.
var kindRules = []kindRule{
	{token: "herfst", kind: KindAutumn},
	{token: "kerst", kind: KindChristmas},
	{token: "voorjaar", kind: KindSpring},
	{token: "mei", kind: KindMayBreak},
	{token: "zomer", kind: KindSummer},
}

// "heel Nederland" is checked before the compass tokens so a country-wide
// label never lands in a single region.
var regionRules = []regionRule{
	{tokens: []string{"heel"}, region: RegionAll},
	{tokens: []string{"noord"}, region: RegionNorth},
	{tokens: []string{"midden", "centraal"}, region: RegionMiddle},
	{tokens: []string{"zuid"}, region: RegionSouth},
}

func ClassifyKind(text string) Kind {
	lowered := strings.ToLower(text)
	for _, rule := range kindRules {
		if strings.Contains(lowered, rule.token) {
			return rule.kind
		}
	}
	return KindUnknown
}

// ClassifyRegion maps source region text onto a Region. Unrecognised text is
// treated as country-wide so the period is not lost.
func ClassifyRegion(text string) Region {
	lowered := strings.ToLower(text)
	for _, rule := range regionRules {
		for _, token := range rule.tokens {
			if strings.Contains(lowered, token) {
				return rule.region
			}
		}
	}
	return RegionAll
}
