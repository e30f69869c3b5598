package schedule

import "time"

type Kind string

const (
	KindAutumn    Kind = "autumn"
	KindChristmas Kind = "christmas"
	KindSpring    Kind = "spring"
	KindMayBreak  Kind = "mayBreak"
	KindSummer    Kind = "summer"
	KindUnknown   Kind = "unknown"
)

// Label is the display name for a kind; unknown kinds read "Holiday".
func (k Kind) Label() string {
	switch k {
	case KindAutumn:
		return "Autumn Holiday"
	case KindChristmas:
		return "Christmas Holiday"
	case KindSpring:
		return "Spring Holiday"
	case KindMayBreak:
		return "May Holiday"
	case KindSummer:
		return "Summer Holiday"
	default:
		return "Holiday"
	}
}

type Region string

const (
	RegionNorth  Region = "North"
	RegionMiddle Region = "Middle"
	RegionSouth  Region = "South"
	RegionAll    Region = "All"
)

// Period is one holiday window. Start and End are civil dates stored at
// 00:00 UTC, with Start <= End.
type Period struct {
	Kind   Kind      `json:"kind"`
	Label  string    `json:"label"`
	Region Region    `json:"region"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

func NewPeriod(kind Kind, region Region, start, end time.Time) Period {
	return Period{
		Kind:   kind,
		Label:  kind.Label(),
		Region: region,
		Start:  DateOf(start),
		End:    DateOf(end),
	}
}

// Contains reports whether the civil date of ref falls inside [Start, End].
func (p Period) Contains(ref time.Time) bool {
	day := DateOf(ref)
	return !day.Before(p.Start) && !day.After(p.End)
}

type Phase int

const (
	PhaseBetween Phase = iota
	PhaseInHoliday
)

// Resolution is the answer to "which holiday comes next". Current is only
// meaningful when Phase is PhaseInHoliday; Next only when Found is true.
type Resolution struct {
	Phase   Phase
	Current Period
	Next    Period
	Found   bool
}

type PublicHoliday struct {
	Name string    `json:"name"`
	Date time.Time `json:"date"`
}

// DateOf keeps the calendar date of t as seen in t's own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
