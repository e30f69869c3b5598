package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"strings"
	"time"

	"github.com/rbright/waybar-schoolholidays/internal/calexport"
	"github.com/rbright/waybar-schoolholidays/internal/config"
	"github.com/rbright/waybar-schoolholidays/internal/geo"
	"github.com/rbright/waybar-schoolholidays/internal/httpx"
	"github.com/rbright/waybar-schoolholidays/internal/opendata"
	"github.com/rbright/waybar-schoolholidays/internal/region"
	"github.com/rbright/waybar-schoolholidays/internal/schedule"
	"github.com/rbright/waybar-schoolholidays/internal/selector"
	"github.com/rbright/waybar-schoolholidays/internal/settings"
	"github.com/rbright/waybar-schoolholidays/internal/state"
	"github.com/rbright/waybar-schoolholidays/internal/waybar"
)

const (
	notifyTitle = "School Holidays"
	desktopID   = "waybar-schoolholidays"
	usage       = "usage: waybar-schoolholidays <status|refresh|list|classify PROVINCE [MUNICIPALITY]|locate|set-region REGION|set-year YYYY-YYYY|set-source live|fallback|select-region|export-ics [PATH]>"
)

func Run(ctx context.Context, args []string, cfg config.Runtime, stdout io.Writer) error {
	cmd, params, err := parseArgs(args)
	if err != nil {
		return err
	}
	return execute(ctx, cmd, params, cfg, stdout, time.Now().In(cfg.Location))
}

func execute(ctx context.Context, cmd string, params []string, cfg config.Runtime, stdout io.Writer, now time.Time) error {
	switch cmd {
	case "status":
		out, err := buildStatus(ctx, cfg, now)
		if err != nil {
			return err
		}
		return writeOutput(stdout, out)
	case "refresh":
		_, err := buildStatus(ctx, cfg, now)
		return err
	case "list":
		return listSchedule(ctx, cfg, stdout, now)
	case "classify":
		municipality := ""
		if len(params) > 1 {
			municipality = params[1]
		}
		_, err := fmt.Fprintln(stdout, region.Classify(params[0], municipality))
		return err
	case "locate":
		return locate(ctx, cfg, stdout, now)
	case "set-region":
		return updateSettings(ctx, cfg, stdout, now, func(s *settings.Settings) { s.Region = params[0] })
	case "set-year":
		return updateSettings(ctx, cfg, stdout, now, func(s *settings.Settings) { s.SchoolYear = params[0] })
	case "set-source":
		return updateSettings(ctx, cfg, stdout, now, func(s *settings.Settings) { s.Source = params[0] })
	case "select-region":
		return selectRegion(ctx, cfg, stdout, now)
	case "export-ics":
		path := cfg.ExportPath
		if len(params) > 0 {
			path = params[0]
		}
		return exportCalendar(ctx, cfg, stdout, now, path)
	default:
		return fmt.Errorf("unsupported command %q", cmd)
	}
}

func parseArgs(args []string) (command string, params []string, err error) {
	if len(args) == 0 {
		return "status", nil, nil
	}

	command = strings.TrimSpace(args[0])
	params = args[1:]

	switch command {
	case "status", "refresh", "list", "locate", "select-region":
		if len(params) > 0 {
			return "", nil, fmt.Errorf("unexpected argument %q", params[0])
		}
	case "classify":
		if len(params) < 1 || len(params) > 2 {
			return "", nil, fmt.Errorf("usage: waybar-schoolholidays classify <province> [municipality]")
		}
	case "set-region", "set-year", "set-source":
		if len(params) != 1 || strings.TrimSpace(params[0]) == "" {
			return "", nil, fmt.Errorf("usage: waybar-schoolholidays %s <value>", command)
		}
	case "export-ics":
		if len(params) > 1 {
			return "", nil, fmt.Errorf("unexpected argument %q", params[1])
		}
	default:
		return "", nil, errors.New(usage)
	}
	return command, params, nil
}

func settingsStore(cfg config.Runtime) *settings.Store {
	return settings.NewStore(cfg.SettingsPath, settings.Settings{
		Region:     cfg.DefaultRegion,
		SchoolYear: cfg.DefaultSchoolYear,
		Source:     cfg.DefaultSource,
	})
}

type loadedSchedule struct {
	periods    []schedule.Period
	fetchedAt  time.Time
	staleError string
}

// loadSchedule returns the schedule for the configured source. A failed live
// fetch falls back to the last good snapshot for the same school year and
// only errors when there is none.
func loadSchedule(ctx context.Context, cfg config.Runtime, prefs settings.Settings, now time.Time) (loadedSchedule, error) {
	if prefs.Source == settings.SourceFallback {
		return loadedSchedule{periods: schedule.LoadFallback(prefs.SchoolYear)}, nil
	}

	client := opendata.Client{BaseURL: cfg.APIURL, UserAgent: cfg.UserAgent, Timeout: cfg.Timeout}
	cache := state.NewStore(cfg.CacheDir)

	periods, fetchErr := client.FetchSchedule(ctx, prefs.SchoolYear)
	if httpx.IsStatus(fetchErr, http.StatusNotFound) {
		fetchErr = fmt.Errorf("school year %s is not published yet: %w", prefs.SchoolYear, fetchErr)
	}
	if fetchErr == nil && len(periods) == 0 {
		fetchErr = fmt.Errorf("no holidays found for %s", prefs.SchoolYear)
	}
	if fetchErr == nil {
		if err := cache.Save(prefs.SchoolYear, periods, now); err != nil {
			return loadedSchedule{}, err
		}
		return loadedSchedule{periods: periods, fetchedAt: now}, nil
	}

	snapshot, err := cache.Load(prefs.SchoolYear)
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return loadedSchedule{}, fetchErr
		}
		return loadedSchedule{}, fmt.Errorf("%w (cache: %v)", fetchErr, err)
	}
	return loadedSchedule{
		periods:    snapshot.Periods,
		fetchedAt:  snapshot.FetchedAt,
		staleError: fetchErr.Error(),
	}, nil
}

func buildStatus(ctx context.Context, cfg config.Runtime, now time.Time) (waybar.Output, error) {
	if err := state.EnsureDirs(cfg.StateDir, cfg.MenuDir); err != nil {
		return waybar.Output{}, err
	}

	prefs, err := settingsStore(cfg).Load()
	if err != nil {
		return waybar.Output{}, err
	}
	activeRegion := schedule.Region(prefs.Region)

	loaded, err := loadSchedule(ctx, cfg, prefs, now)
	if err != nil {
		return renderErrorState(cfg, prefs, fmt.Sprintf("School holidays unavailable: %s", err.Error()))
	}

	resolution := schedule.Resolve(loaded.periods, activeRegion, now)
	upcoming := schedule.Upcoming(loaded.periods, activeRegion, now, cfg.MaxItems)

	statusLine := "No upcoming holidays"
	if resolution.Found {
		statusLine = fmt.Sprintf("Next: %s in %s", resolution.Next.Label, schedule.CountdownText(schedule.DaysUntil(resolution.Next.Start, now)))
	}
	menuData := state.MenuData{
		StatusLine: statusLine,
		Region:     fmt.Sprintf("%s · %s", prefs.Region, prefs.SchoolYear),
		Items:      upcoming,
	}
	if err := state.WriteMenu(cfg.MenuPath, menuData); err != nil {
		return waybar.Output{}, err
	}

	return waybar.Render(waybar.View{
		Resolution: resolution,
		Ref:        now,
		Region:     activeRegion,
		SchoolYear: prefs.SchoolYear,
		Source:     prefs.Source,
		FetchedAt:  loaded.fetchedAt,
		StaleError: loaded.staleError,
	}), nil
}

func listSchedule(ctx context.Context, cfg config.Runtime, stdout io.Writer, now time.Time) error {
	prefs, err := settingsStore(cfg).Load()
	if err != nil {
		return err
	}

	loaded, err := loadSchedule(ctx, cfg, prefs, now)
	if err != nil {
		return err
	}

	for _, period := range schedule.FilterByRegion(loaded.periods, schedule.Region(prefs.Region)) {
		if _, err := fmt.Fprintf(stdout, "%-26s  %-17s  %s\n", state.FormatRange(period), period.Label, period.Region); err != nil {
			return fmt.Errorf("write schedule: %w", err)
		}
	}
	return nil
}

func locate(ctx context.Context, cfg config.Runtime, stdout io.Writer, now time.Time) error {
	place, err := detectPlace(ctx, cfg)
	if err != nil {
		notify(ctx, fmt.Sprintf("Region detection failed: %s", err.Error()))
		return err
	}

	macro := region.Classify(place.Province, place.Municipality)
	if _, err := settingsStore(cfg).Update(func(s *settings.Settings) { s.Region = string(macro) }); err != nil {
		return err
	}

	if _, err := buildStatus(ctx, cfg, now); err != nil {
		return err
	}

	message := fmt.Sprintf("Region set to %s (%s)", macro, describePlace(place))
	notify(ctx, message)
	_, _ = fmt.Fprintln(stdout, message)
	return nil
}

func detectPlace(ctx context.Context, cfg config.Runtime) (geo.Place, error) {
	locator, err := geo.NewLocator(ctx, desktopID)
	if err != nil {
		return geo.Place{}, err
	}
	defer func() {
		_ = locator.Close()
	}()

	position, err := locator.Locate(ctx)
	if err != nil {
		return geo.Place{}, err
	}

	geocoder := geo.Geocoder{BaseURL: cfg.GeocodeURL, UserAgent: cfg.UserAgent, Timeout: cfg.Timeout}
	return geocoder.Reverse(ctx, position)
}

func describePlace(place geo.Place) string {
	parts := make([]string, 0, 2)
	for _, part := range []string{place.Municipality, place.Province} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return "unknown location"
	}
	return strings.Join(parts, ", ")
}

func updateSettings(ctx context.Context, cfg config.Runtime, stdout io.Writer, now time.Time, apply func(*settings.Settings)) error {
	updated, err := settingsStore(cfg).Update(apply)
	if err != nil {
		return err
	}

	if _, err := buildStatus(ctx, cfg, now); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(stdout, "Saved region=%s school_year=%s source=%s\n", updated.Region, updated.SchoolYear, updated.Source)
	return nil
}

func selectRegion(ctx context.Context, cfg config.Runtime, stdout io.Writer, now time.Time) error {
	store := settingsStore(cfg)
	current, err := store.Load()
	if err != nil {
		return err
	}

	currentMacro, _ := region.ParseMacro(current.Region)
	selected, err := selector.SelectRegion(ctx, currentMacro)
	if err != nil {
		if errors.Is(err, selector.ErrSelectionCancelled) {
			return nil
		}
		notify(ctx, err.Error())
		return err
	}

	return updateSettings(ctx, cfg, stdout, now, func(s *settings.Settings) { s.Region = string(selected) })
}

func exportCalendar(ctx context.Context, cfg config.Runtime, stdout io.Writer, now time.Time, path string) error {
	prefs, err := settingsStore(cfg).Load()
	if err != nil {
		return err
	}

	loaded, err := loadSchedule(ctx, cfg, prefs, now)
	if err != nil {
		notify(ctx, fmt.Sprintf("Calendar export failed: %s", err.Error()))
		return err
	}

	periods := schedule.FilterByRegion(loaded.periods, schedule.Region(prefs.Region))
	if err := calexport.WriteFile(path, periods, prefs.SchoolYear, now); err != nil {
		notify(ctx, fmt.Sprintf("Calendar export failed: %s", err.Error()))
		return err
	}

	message := fmt.Sprintf("Exported %d holiday(s) to %s", len(periods), path)
	notify(ctx, message)
	_, _ = fmt.Fprintln(stdout, message)
	return nil
}

func notify(ctx context.Context, message string) {
	if _, err := exec.LookPath("notify-send"); err != nil {
		return
	}
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return
	}
	cmd := exec.CommandContext(ctx, "notify-send", notifyTitle, trimmed)
	_ = cmd.Start()
}

func renderErrorState(cfg config.Runtime, prefs settings.Settings, tooltip string) (waybar.Output, error) {
	menuData := state.MenuData{
		StatusLine: "School holidays unavailable",
		Region:     fmt.Sprintf("%s · %s", prefs.Region, prefs.SchoolYear),
	}
	if err := state.WriteMenu(cfg.MenuPath, menuData); err != nil {
		return waybar.Output{}, err
	}
	return waybar.RenderError(tooltip), nil
}

func writeOutput(w io.Writer, output waybar.Output) error {
	payload, err := waybar.Encode(output)
	if err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		return fmt.Errorf("write trailing newline: %w", err)
	}
	return nil
}
