package state

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rbright/waybar-schoolholidays/internal/schedule"
)

func TestWriteMenu_ContainsExpectedActions(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	menuPath := filepath.Join(tmp, "schoolholidays.xml")

	items := []schedule.Period{
		schedule.NewPeriod(schedule.KindChristmas, schedule.RegionAll,
			time.Date(2025, time.December, 20, 0, 0, 0, 0, time.UTC),
			time.Date(2026, time.January, 4, 0, 0, 0, 0, time.UTC)),
	}

	if err := WriteMenu(menuPath, MenuData{StatusLine: "Upcoming holidays", Region: "North", Items: items}); err != nil {
		t.Fatalf("write menu: %v", err)
	}

	raw, err := os.ReadFile(menuPath)
	if err != nil {
		t.Fatalf("read menu: %v", err)
	}
	text := string(raw)

	for _, expected := range []string{"holiday_1", "select_region", "locate", "export_ics", "refresh", "20 Dec 2025 – 4 Jan 2026"} {
		if !strings.Contains(text, expected) {
			t.Fatalf("missing menu entry %q", expected)
		}
	}
}

func TestWriteMenu_EmptyShowsStatusLine(t *testing.T) {
	t.Parallel()

	menuPath := filepath.Join(t.TempDir(), "menus", "schoolholidays.xml")
	if err := WriteMenu(menuPath, MenuData{StatusLine: "No data <offline>"}); err != nil {
		t.Fatalf("write menu: %v", err)
	}

	raw, err := os.ReadFile(menuPath)
	if err != nil {
		t.Fatalf("read menu: %v", err)
	}
	if !strings.Contains(string(raw), "No data &lt;offline&gt;") {
		t.Fatalf("expected escaped status line, got %s", raw)
	}
}

func TestFormatRange_SameYear(t *testing.T) {
	t.Parallel()

	period := schedule.NewPeriod(schedule.KindAutumn, schedule.RegionNorth,
		time.Date(2025, time.October, 18, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.October, 26, 0, 0, 0, 0, time.UTC))
	if got := FormatRange(period); got != "18 Oct – 26 Oct 2025" {
		t.Fatalf("FormatRange() = %q", got)
	}
}
