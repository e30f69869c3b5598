// Package calexport renders a holiday schedule as an iCalendar feed so it can
// be subscribed to from a desktop calendar.
package calexport

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/rbright/waybar-schoolholidays/internal/schedule"
	"github.com/rbright/waybar-schoolholidays/internal/state"
)

const productID = "-//rbright//waybar-schoolholidays//EN"

var uidNamespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte("schoolholidays.waybar.rbright.github.com"))

// Build returns the calendar for the given periods. Events are all-day with
// an exclusive DTEND, and UIDs are derived from the period so re-exports
// update rather than duplicate subscribed events.
func Build(periods []schedule.Period, schoolYear string, stamp time.Time) *ics.Calendar {
	calendar := ics.NewCalendar()
	calendar.SetMethod(ics.MethodPublish)
	calendar.SetProductId(productID)

	for _, period := range periods {
		event := calendar.AddEvent(EventUID(period))
		event.SetDtStampTime(stamp.UTC())
		event.SetAllDayStartAt(period.Start)
		event.SetAllDayEndAt(period.End.AddDate(0, 0, 1))
		event.SetSummary(period.Label)
		event.SetDescription(describe(period, schoolYear))
		event.AddProperty(ics.ComponentPropertyCategories, string(period.Kind))
		event.SetProperty(ics.ComponentPropertyTransp, "TRANSPARENT")
	}
	return calendar
}

func Write(w io.Writer, periods []schedule.Period, schoolYear string, stamp time.Time) error {
	if err := Build(periods, schoolYear, stamp).SerializeTo(w); err != nil {
		return fmt.Errorf("serialize calendar: %w", err)
	}
	return nil
}

func WriteFile(path string, periods []schedule.Period, schoolYear string, stamp time.Time) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	var b strings.Builder
	if err := Write(&b, periods, schoolYear, stamp); err != nil {
		return err
	}
	return state.WriteFileAtomically(path, []byte(b.String()))
}

func EventUID(period schedule.Period) string {
	key := strings.Join([]string{
		string(period.Kind),
		string(period.Region),
		period.Start.Format("2006-01-02"),
		period.End.Format("2006-01-02"),
	}, "|")
	return uuid.NewSHA1(uidNamespace, []byte(key)).String() + "@waybar-schoolholidays"
}

func describe(period schedule.Period, schoolYear string) string {
	regionText := "all regions"
	if period.Region != schedule.RegionAll {
		regionText = "region " + string(period.Region)
	}
	if strings.TrimSpace(schoolYear) == "" {
		return fmt.Sprintf("School holiday for %s", regionText)
	}
	return fmt.Sprintf("School holiday %s for %s", schoolYear, regionText)
}
