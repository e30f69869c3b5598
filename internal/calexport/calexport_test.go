package calexport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/rbright/waybar-schoolholidays/internal/schedule"
)

func TestWrite_ParsesBackAsAllDayEvents(t *testing.T) {
	t.Parallel()

	periods := schedule.FilterByRegion(schedule.LoadFallback("2025-2026"), schedule.RegionNorth)
	stamp := time.Date(2025, time.September, 1, 12, 0, 0, 0, time.UTC)

	var b strings.Builder
	if err := Write(&b, periods, "2025-2026", stamp); err != nil {
		t.Fatalf("write calendar: %v", err)
	}

	parsed, err := ics.ParseCalendar(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("parse calendar: %v", err)
	}

	events := parsed.Events()
	if len(events) != len(periods) {
		t.Fatalf("expected %d events, got %d", len(periods), len(events))
	}

	christmas := events[1]
	if summary := christmas.GetProperty(ics.ComponentPropertySummary); summary == nil || summary.Value != "Christmas Holiday" {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if start := christmas.GetProperty(ics.ComponentPropertyDtStart); start == nil || start.Value != "20251220" {
		t.Fatalf("unexpected DTSTART: %+v", start)
	}
	if end := christmas.GetProperty(ics.ComponentPropertyDtEnd); end == nil || end.Value != "20260105" {
		t.Fatalf("DTEND should be the day after the last holiday day: %+v", end)
	}
}

func TestEventUID_StableAndDistinct(t *testing.T) {
	t.Parallel()

	periods := schedule.LoadFallback("2025-2026")
	seen := make(map[string]bool, len(periods))
	for _, period := range periods {
		uid := EventUID(period)
		if uid != EventUID(period) {
			t.Fatalf("uid not stable for %+v", period)
		}
		if seen[uid] {
			t.Fatalf("duplicate uid %s", uid)
		}
		seen[uid] = true
	}
}

func TestWriteFile_CreatesDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "export", "schoolholidays.ics")
	if err := WriteFile(path, schedule.LoadFallback("2025-2026"), "2025-2026", time.Now()); err != nil {
		t.Fatalf("write file: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.HasPrefix(string(raw), "BEGIN:VCALENDAR") {
		t.Fatalf("unexpected export content: %.40q", raw)
	}
}
