package schedule

import (
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/nl"
)

var publicCalendar = newPublicCalendar()

func newPublicCalendar() *cal.BusinessCalendar {
	c := cal.NewBusinessCalendar()
	c.AddHoliday(nl.Holidays...)
	return c
}

// SchoolDaysUntil counts weekdays in [ref, target) that are not Dutch public
// holidays.
func SchoolDaysUntil(target, ref time.Time) int {
	end := DateOf(target)
	count := 0
	for current := DateOf(ref); current.Before(end); current = current.AddDate(0, 0, 1) {
		if publicCalendar.IsWorkday(current) {
			count++
		}
	}
	return count
}

func PublicHolidaysBetween(start, end time.Time) []PublicHoliday {
	last := DateOf(end)
	var holidays []PublicHoliday
	for current := DateOf(start); !current.After(last); current = current.AddDate(0, 0, 1) {
		actual, _, holiday := publicCalendar.IsHoliday(current)
		if !actual || holiday == nil {
			continue
		}
		holidays = append(holidays, PublicHoliday{Name: holiday.Name, Date: current})
	}
	return holidays
}
