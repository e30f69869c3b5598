package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rbright/waybar-schoolholidays/internal/config"
	"github.com/rbright/waybar-schoolholidays/internal/settings"
)

const livePayload = `[{"content":[{"schoolyear":"2025-2026","vacations":[
  {"type":"Herfstvakantie","regions":[
    {"region":"noord","startdate":"2025-10-17T22:00:00.000Z","enddate":"2025-10-25T23:00:00.000Z"},
    {"region":"zuid","startdate":"2025-10-10T22:00:00.000Z","enddate":"2025-10-18T22:00:00.000Z"}
  ]},
  {"type":"Kerstvakantie","regions":[
    {"region":"heel Nederland","startdate":"2025-12-19T23:00:00.000Z","enddate":"2026-01-03T23:00:00.000Z"}
  ]}
]}]}]`

var october1 = time.Date(2025, time.October, 1, 9, 0, 0, 0, time.UTC)

func testConfig(t *testing.T, source, apiURL string) config.Runtime {
	t.Helper()

	dir := t.TempDir()
	stateDir := filepath.Join(dir, "state")
	menuDir := filepath.Join(dir, "menus")
	return config.Runtime{
		APIURL:            apiURL,
		UserAgent:         "waybar-schoolholidays-test",
		Location:          time.UTC,
		MaxItems:          6,
		Timeout:           5 * time.Second,
		DefaultRegion:     "North",
		DefaultSchoolYear: "2025-2026",
		DefaultSource:     source,
		StateDir:          stateDir,
		MenuDir:           menuDir,
		MenuPath:          filepath.Join(menuDir, "schoolholidays.xml"),
		CacheDir:          filepath.Join(stateDir, "cache"),
		ExportPath:        filepath.Join(stateDir, "schoolholidays.ics"),
		SettingsPath:      filepath.Join(dir, "config", "schoolholidays.ini"),
	}
}

func TestParseArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{name: "default", args: nil, want: "status"},
		{name: "refresh", args: []string{"refresh"}, want: "refresh"},
		{name: "classify province only", args: []string{"classify", "Drenthe"}, want: "classify"},
		{name: "classify with municipality", args: []string{"classify", "Utrecht", "Eemnes"}, want: "classify"},
		{name: "classify without args", args: []string{"classify"}, wantErr: true},
		{name: "set region", args: []string{"set-region", "South"}, want: "set-region"},
		{name: "set year missing value", args: []string{"set-year"}, wantErr: true},
		{name: "export default path", args: []string{"export-ics"}, want: "export-ics"},
		{name: "export too many", args: []string{"export-ics", "a", "b"}, wantErr: true},
		{name: "status extra arg", args: []string{"status", "now"}, wantErr: true},
		{name: "unknown", args: []string{"join-next"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := parseArgs(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %v", tt.args)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseArgs returned error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestStatus_FallbackSource(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, settings.SourceFallback, "")
	var stdout bytes.Buffer
	if err := execute(context.Background(), "status", nil, cfg, &stdout, october1); err != nil {
		t.Fatalf("status: %v", err)
	}

	out := stdout.String()
	if !strings.HasPrefix(out, `{"text":"17 days",`) || !strings.Contains(out, `"class":"autumn"`) {
		t.Fatalf("unexpected status output: %s", out)
	}

	menu, err := os.ReadFile(cfg.MenuPath)
	if err != nil {
		t.Fatalf("read menu: %v", err)
	}
	for _, want := range []string{`id="holiday_1"`, "Region: North · 2025-2026", "18 Oct – 26 Oct 2025"} {
		if !strings.Contains(string(menu), want) {
			t.Fatalf("menu missing %q:\n%s", want, menu)
		}
	}
}

func TestStatus_LiveSourceServesCacheWhenFetchFails(t *testing.T) {
	t.Parallel()

	var failing atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/schoolyear/2025-2026" || r.URL.Query().Get("output") != "json" {
			http.NotFound(w, r)
			return
		}
		if failing.Load() {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(livePayload))
	}))
	defer server.Close()

	cfg := testConfig(t, settings.SourceLive, server.URL+"/schoolyear")

	var first bytes.Buffer
	if err := execute(context.Background(), "status", nil, cfg, &first, october1); err != nil {
		t.Fatalf("first status: %v", err)
	}
	if !strings.Contains(first.String(), `"class":"autumn"`) {
		t.Fatalf("unexpected live output: %s", first.String())
	}
	if _, err := os.Stat(filepath.Join(cfg.CacheDir, "schedule-2025-2026.json")); err != nil {
		t.Fatalf("expected cache file: %v", err)
	}

	failing.Store(true)

	var second bytes.Buffer
	if err := execute(context.Background(), "status", nil, cfg, &second, october1.Add(time.Hour)); err != nil {
		t.Fatalf("second status: %v", err)
	}
	out := second.String()
	if !strings.Contains(out, `"class":"autumn stale"`) || !strings.Contains(out, "Cached data (refresh failed)") {
		t.Fatalf("expected stale output, got %s", out)
	}
}

func TestStatus_LiveSourceWithoutCacheRendersError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<?xml version="1.0"?><vacations/>`))
	}))
	defer server.Close()

	cfg := testConfig(t, settings.SourceLive, server.URL)

	var stdout bytes.Buffer
	if err := execute(context.Background(), "status", nil, cfg, &stdout, october1); err != nil {
		t.Fatalf("status: %v", err)
	}
	out := stdout.String()
	if !strings.HasPrefix(out, `{"text":"!",`) || !strings.Contains(out, "API returned XML instead of JSON (check output=json)") {
		t.Fatalf("unexpected error output: %s", out)
	}

	menu, err := os.ReadFile(cfg.MenuPath)
	if err != nil {
		t.Fatalf("read menu: %v", err)
	}
	if !strings.Contains(string(menu), "School holidays unavailable") {
		t.Fatalf("menu missing status line:\n%s", menu)
	}
}

func TestStatus_UnpublishedSchoolYear(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	cfg := testConfig(t, settings.SourceLive, server.URL)

	var stdout bytes.Buffer
	if err := execute(context.Background(), "status", nil, cfg, &stdout, october1); err != nil {
		t.Fatalf("status: %v", err)
	}
	out := stdout.String()
	if !strings.HasPrefix(out, `{"text":"!",`) || !strings.Contains(out, "school year 2025-2026 is not published yet") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestClassifyCommand(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, settings.SourceFallback, "")
	tests := []struct {
		params []string
		want   string
	}{
		{params: []string{"Gelderland", "Arnhem"}, want: "South\n"},
		{params: []string{"Flevoland"}, want: "North\n"},
		{params: []string{"Atlantis"}, want: "Middle\n"},
	}

	for _, tt := range tests {
		var stdout bytes.Buffer
		if err := execute(context.Background(), "classify", tt.params, cfg, &stdout, october1); err != nil {
			t.Fatalf("classify %v: %v", tt.params, err)
		}
		if stdout.String() != tt.want {
			t.Fatalf("classify %v = %q, want %q", tt.params, stdout.String(), tt.want)
		}
	}
}

func TestSetRegion_PersistsAndRejectsUnknown(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, settings.SourceFallback, "")

	var stdout bytes.Buffer
	if err := execute(context.Background(), "set-region", []string{"south"}, cfg, &stdout, october1); err != nil {
		t.Fatalf("set-region: %v", err)
	}
	if stdout.String() != "Saved region=South school_year=2025-2026 source=fallback\n" {
		t.Fatalf("unexpected output: %q", stdout.String())
	}

	loaded, err := settingsStore(cfg).Load()
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if loaded.Region != "South" {
		t.Fatalf("region not persisted: %+v", loaded)
	}

	if err := execute(context.Background(), "set-region", []string{"East"}, cfg, &bytes.Buffer{}, october1); err == nil {
		t.Fatalf("expected error for unknown region")
	}
}

func TestListCommand(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, settings.SourceFallback, "")
	var stdout bytes.Buffer
	if err := execute(context.Background(), "list", nil, cfg, &stdout, october1); err != nil {
		t.Fatalf("list: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 North holidays, got %d:\n%s", len(lines), stdout.String())
	}
	if !strings.HasPrefix(lines[0], "18 Oct – 26 Oct 2025") || !strings.Contains(lines[0], "Autumn Holiday") {
		t.Fatalf("unexpected first line: %q", lines[0])
	}
}

func TestExportCommand(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, settings.SourceFallback, "")
	path := filepath.Join(t.TempDir(), "holidays.ics")

	var stdout bytes.Buffer
	if err := execute(context.Background(), "export-ics", []string{path}, cfg, &stdout, october1); err != nil {
		t.Fatalf("export-ics: %v", err)
	}
	if stdout.String() != "Exported 5 holiday(s) to "+path+"\n" {
		t.Fatalf("unexpected output: %q", stdout.String())
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if got := strings.Count(string(raw), "BEGIN:VEVENT"); got != 5 {
		t.Fatalf("expected 5 events, got %d", got)
	}
}
