package schedule

import (
	"math"
	"strconv"
	"time"
)

const day = 24 * time.Hour

func FilterByRegion(periods []Period, region Region) []Period {
	if len(periods) == 0 {
		return nil
	}

	filtered := make([]Period, 0, len(periods))
	for _, period := range periods {
		if period.Region != region && period.Region != RegionAll {
			continue
		}
		filtered = append(filtered, period)
	}
	return filtered
}

// Resolve finds the holiday that follows ref for a region. When ref lies in a
// holiday the answer is the first period starting after that holiday ends,
// not the holiday already in progress.
func Resolve(periods []Period, region Region, ref time.Time) Resolution {
	applicable := FilterByRegion(periods, region)
	today := DateOf(ref)

	for _, period := range applicable {
		if !period.Contains(today) {
			continue
		}
		next, found := firstStartingAfter(applicable, period.End)
		return Resolution{Phase: PhaseInHoliday, Current: period, Next: next, Found: found}
	}

	next, found := firstStartingAfter(applicable, today)
	return Resolution{Phase: PhaseBetween, Next: next, Found: found}
}

func ResolveNext(periods []Period, region Region, ref time.Time) (Period, bool) {
	resolution := Resolve(periods, region, ref)
	return resolution.Next, resolution.Found
}

func firstStartingAfter(periods []Period, after time.Time) (Period, bool) {
	for _, period := range periods {
		if period.Start.After(after) {
			return period, true
		}
	}
	return Period{}, false
}

// Upcoming lists applicable periods that have not ended by ref, capped at
// maxItems.
func Upcoming(periods []Period, region Region, ref time.Time, maxItems int) []Period {
	if len(periods) == 0 || maxItems <= 0 {
		return nil
	}

	today := DateOf(ref)
	items := make([]Period, 0, maxItems)
	for _, period := range FilterByRegion(periods, region) {
		if period.End.Before(today) {
			continue
		}
		items = append(items, period)
		if len(items) == maxItems {
			break
		}
	}
	return items
}

// DaysUntil counts whole calendar days from ref to target and never goes
// below zero.
func DaysUntil(target, ref time.Time) int {
	diff := DateOf(target).Sub(DateOf(ref))
	days := int(math.Ceil(float64(diff) / float64(day)))
	if days < 0 {
		return 0
	}
	return days
}

func CountdownText(days int) string {
	switch {
	case days <= 0:
		return "today"
	case days == 1:
		return "1 day"
	default:
		return strconv.Itoa(days) + " days"
	}
}
