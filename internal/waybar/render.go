package waybar

import (
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/rbright/waybar-schoolholidays/internal/schedule"
	"github.com/rbright/waybar-schoolholidays/internal/state"
)

const maxTooltipPublicHolidays = 3

type Output struct {
	Text    string `json:"text"`
	Tooltip string `json:"tooltip"`
	Class   string `json:"class"`
}

// View is everything the bar needs to describe one resolution.
type View struct {
	Resolution schedule.Resolution
	Ref        time.Time
	Region     schedule.Region
	SchoolYear string
	Source     string
	FetchedAt  time.Time
	StaleError string
}

func Render(view View) Output {
	resolution := view.Resolution

	text := "—"
	classes := []string{"none"}
	if resolution.Found {
		text = schedule.CountdownText(schedule.DaysUntil(resolution.Next.Start, view.Ref))
		classes = []string{string(resolution.Next.Kind)}
	}
	if resolution.Phase == schedule.PhaseInHoliday {
		classes = append(classes, "holiday")
	}
	if strings.TrimSpace(view.StaleError) != "" {
		classes = append(classes, "stale")
	}

	return Output{
		Text:    text,
		Tooltip: tooltip(view),
		Class:   strings.Join(classes, " "),
	}
}

func RenderError(message string) Output {
	return Output{
		Text:    "!",
		Tooltip: strings.TrimSpace(message),
		Class:   "error",
	}
}

func Encode(output Output) ([]byte, error) {
	payload, err := json.Marshal(output)
	if err != nil {
		return nil, fmt.Errorf("marshal waybar output: %w", err)
	}
	return payload, nil
}

func tooltip(view View) string {
	resolution := view.Resolution
	lines := make([]string, 0, 12)

	if resolution.Phase == schedule.PhaseInHoliday {
		lines = append(lines, fmt.Sprintf("Currently: %s (until %s)", resolution.Current.Label, resolution.Current.End.Format("Mon 2 Jan")))
	}

	if resolution.Found {
		next := resolution.Next
		days := schedule.DaysUntil(next.Start, view.Ref)
		lines = append(lines,
			fmt.Sprintf("Next: %s", next.Label),
			fmt.Sprintf("Dates: %s", state.FormatRange(next)),
			fmt.Sprintf("Starts in: %s (%d school days)", schedule.CountdownText(days), schedule.SchoolDaysUntil(next.Start, view.Ref)),
		)

		if holidays := schedule.PublicHolidaysBetween(view.Ref, next.Start.AddDate(0, 0, -1)); len(holidays) > 0 {
			lines = append(lines, "", "Public holidays before then:")
			for i, holiday := range holidays {
				if i == maxTooltipPublicHolidays {
					lines = append(lines, fmt.Sprintf("… and %d more", len(holidays)-i))
					break
				}
				lines = append(lines, fmt.Sprintf("%s  %s", holiday.Date.Format("Mon 2 Jan"), holiday.Name))
			}
		}
	} else {
		lines = append(lines, fmt.Sprintf("No upcoming holidays in %s", fallback(view.SchoolYear, "this school year")))
	}

	lines = append(lines, "", fmt.Sprintf("Region: %s · %s", view.Region, fallback(view.SchoolYear, "—")))
	lines = append(lines, sourceLine(view))

	if strings.TrimSpace(view.StaleError) != "" {
		lines = append(lines, "", fmt.Sprintf("Cached data (refresh failed): %s", strings.TrimSpace(view.StaleError)))
	}

	lines = append(lines, "Click to open dropdown")
	return strings.Join(lines, "\n")
}

func sourceLine(view View) string {
	source := fallback(view.Source, "live")
	if view.FetchedAt.IsZero() {
		return fmt.Sprintf("Source: %s", source)
	}
	return fmt.Sprintf("Source: %s (updated %s)", source, view.FetchedAt.In(view.Ref.Location()).Format("2 Jan 15:04"))
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}
