package schedule

import (
	"sort"
	"strings"
	"time"
	_ "time/tzdata"
)

// SourceLocation is the zone the open-data timestamps are interpreted in
// before the calendar date is taken.
var SourceLocation = mustLoadLocation("Europe/Amsterdam")

// node is one step of a traversal through an untyped JSON value. Every
// accessor on an absent node yields another absent node.
type node struct {
	value   any
	present bool
}

func root(value any) node {
	return node{value: value, present: value != nil}
}

func (n node) field(name string) node {
	if !n.present {
		return node{}
	}
	object, ok := n.value.(map[string]any)
	if !ok {
		return node{}
	}
	value, ok := object[name]
	if !ok || value == nil {
		return node{}
	}
	return node{value: value, present: true}
}

// first unwraps an array to its first element and leaves objects alone.
func (n node) first() node {
	if !n.present {
		return node{}
	}
	list, ok := n.value.([]any)
	if !ok {
		return n
	}
	if len(list) == 0 || list[0] == nil {
		return node{}
	}
	return node{value: list[0], present: true}
}

func (n node) items() []node {
	if !n.present {
		return nil
	}
	list, ok := n.value.([]any)
	if !ok {
		return nil
	}
	items := make([]node, 0, len(list))
	for _, value := range list {
		items = append(items, root(value))
	}
	return items
}

func (n node) text() (string, bool) {
	if !n.present {
		return "", false
	}
	value, ok := n.value.(string)
	return value, ok
}

func (n node) or(other node) node {
	if n.present {
		return n
	}
	return other
}

// Normalize turns a decoded open-data payload into a schedule sorted by start
// date. Shapes it does not recognise produce an empty result.
func Normalize(raw any) []Period {
	top := root(raw).first()
	content := top.field("content").first()
	vacations := content.field("vacations").or(top.field("vacations"))

	periods := make([]Period, 0, 16)
	for _, vacation := range vacations.items() {
		typeText, _ := vacation.field("type").text()
		kind := ClassifyKind(typeText)

		for _, entry := range vacation.field("regions").items() {
			regionText, _ := entry.field("region").text()
			start, ok := parseSourceDate(entry.field("startdate"))
			if !ok {
				continue
			}
			end, ok := parseSourceDate(entry.field("enddate"))
			if !ok || end.Before(start) {
				continue
			}
			periods = append(periods, NewPeriod(kind, ClassifyRegion(regionText), start, end))
		}
	}

	SortPeriods(periods)
	return periods
}

func SortPeriods(periods []Period) {
	sort.SliceStable(periods, func(i, j int) bool {
		return periods[i].Start.Before(periods[j].Start)
	})
}

var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
}

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseSourceDate(n node) (time.Time, bool) {
	text, ok := n.text()
	if !ok {
		return time.Time{}, false
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return time.Time{}, false
	}

	for _, layout := range zonedLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return DateOf(parsed.In(SourceLocation)), true
		}
	}
	for _, layout := range localLayouts {
		if parsed, err := time.ParseInLocation(layout, trimmed, SourceLocation); err == nil {
			return DateOf(parsed), true
		}
	}
	return time.Time{}, false
}

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
