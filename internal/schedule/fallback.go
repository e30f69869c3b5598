package schedule

import (
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// weekSpan is a holiday running from the Saturday of one ISO week to the
// Sunday of a later one. Weeks are counted in the school year's first
// calendar year unless the flag says otherwise.
type weekSpan struct {
	kind          Kind
	region        Region
	startWeek     int
	startNextYear bool
	endWeek       int
	endNextYear   bool
}

var fallbackSpans = []weekSpan{
	{kind: KindAutumn, region: RegionSouth, startWeek: 41, endWeek: 42},
	{kind: KindAutumn, region: RegionNorth, startWeek: 42, endWeek: 43},
	{kind: KindAutumn, region: RegionMiddle, startWeek: 42, endWeek: 43},
	{kind: KindChristmas, region: RegionAll, startWeek: 51, endWeek: 1, endNextYear: true},
	{kind: KindSpring, region: RegionMiddle, startWeek: 7, startNextYear: true, endWeek: 8, endNextYear: true},
	{kind: KindSpring, region: RegionSouth, startWeek: 7, startNextYear: true, endWeek: 8, endNextYear: true},
	{kind: KindSpring, region: RegionNorth, startWeek: 8, startNextYear: true, endWeek: 9, endNextYear: true},
	{kind: KindMayBreak, region: RegionAll, startWeek: 17, startNextYear: true, endWeek: 18, endNextYear: true},
	{kind: KindSummer, region: RegionSouth, startWeek: 27, startNextYear: true, endWeek: 33, endNextYear: true},
	{kind: KindSummer, region: RegionNorth, startWeek: 28, startNextYear: true, endWeek: 34, endNextYear: true},
	{kind: KindSummer, region: RegionMiddle, startWeek: 29, startNextYear: true, endWeek: 35, endNextYear: true},
}

// LoadFallback builds the static schedule for a "YYYY-YYYY" school year.
// Anything else yields an empty schedule.
func LoadFallback(schoolYear string) []Period {
	startYear, ok := ParseSchoolYear(schoolYear)
	if !ok {
		return nil
	}

	periods := make([]Period, 0, len(fallbackSpans))
	for _, span := range fallbackSpans {
		start, ok := isoWeekday(yearFor(startYear, span.startNextYear), span.startWeek, rrule.SA)
		if !ok {
			continue
		}
		end, ok := isoWeekday(yearFor(startYear, span.endNextYear), span.endWeek, rrule.SU)
		if !ok || end.Before(start) {
			continue
		}
		periods = append(periods, NewPeriod(span.kind, span.region, start, end))
	}

	SortPeriods(periods)
	return periods
}

// ParseSchoolYear returns the first calendar year of "YYYY-YYYY" when the two
// years are consecutive.
func ParseSchoolYear(value string) (int, bool) {
	first, second, ok := strings.Cut(strings.TrimSpace(value), "-")
	if !ok || len(first) != 4 || len(second) != 4 {
		return 0, false
	}
	start, err := strconv.Atoi(first)
	if err != nil {
		return 0, false
	}
	end, err := strconv.Atoi(second)
	if err != nil || end != start+1 {
		return 0, false
	}
	return start, true
}

func yearFor(startYear int, nextYear bool) int {
	if nextYear {
		return startYear + 1
	}
	return startYear
}

func isoWeekday(year, week int, weekday rrule.Weekday) (time.Time, bool) {
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.YEARLY,
		Dtstart:   yearStart,
		Wkst:      rrule.MO,
		Byweekno:  []int{week},
		Byweekday: []rrule.Weekday{weekday},
	})
	if err != nil {
		return time.Time{}, false
	}

	matches := rule.Between(yearStart, yearStart.AddDate(1, 0, 0), true)
	if len(matches) == 0 {
		return time.Time{}, false
	}
	return DateOf(matches[0]), true
}
