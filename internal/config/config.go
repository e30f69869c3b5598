package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/rbright/waybar-schoolholidays/internal/region"
	"github.com/rbright/waybar-schoolholidays/internal/schedule"
)

const (
	maxMenuItems = 12

	defaultAPIURL     = "https://opendata.rijksoverheid.nl/v1/sources/rijksoverheid/infotypes/schoolholidays/schoolyear"
	defaultGeocodeURL = "https://nominatim.openstreetmap.org/reverse"
	defaultUserAgent  = "waybar-schoolholidays/1.0 (+https://github.com/rbright/waybar-modules)"
	defaultTimezone   = "Europe/Amsterdam"
)

type Runtime struct {
	ConfigFile string

	APIURL     string
	GeocodeURL string
	UserAgent  string
	Location   *time.Location
	MaxItems   int
	Timeout    time.Duration

	DefaultRegion     string
	DefaultSchoolYear string
	DefaultSource     string

	StateDir     string
	MenuDir      string
	MenuPath     string
	CacheDir     string
	ExportPath   string
	SettingsPath string
}

func Load() (Runtime, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Runtime{}, fmt.Errorf("resolve home dir: %w", err)
	}

	xdgConfig := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME"))
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}

	xdgState := strings.TrimSpace(os.Getenv("XDG_STATE_HOME"))
	if xdgState == "" {
		xdgState = filepath.Join(home, ".local", "state")
	}

	defaultConfig := filepath.Join(xdgConfig, "waybar", "schoolholidays.env")
	configFile := strings.TrimSpace(os.Getenv("WAYBAR_SCHOOLHOLIDAYS_CONFIG_FILE"))
	if configFile == "" {
		configFile = defaultConfig
	}

	// Values already present in the environment win over the file.
	if err := godotenv.Load(configFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Runtime{}, fmt.Errorf("load env file %s: %w", configFile, err)
	}

	v := viper.New()
	v.SetEnvPrefix("WAYBAR_SCHOOLHOLIDAYS")
	v.AutomaticEnv()

	_ = v.BindEnv("api_url", "WAYBAR_SCHOOLHOLIDAYS_API_URL", "API_URL")
	_ = v.BindEnv("geocode_url", "WAYBAR_SCHOOLHOLIDAYS_GEOCODE_URL", "GEOCODE_URL")
	_ = v.BindEnv("user_agent", "WAYBAR_SCHOOLHOLIDAYS_USER_AGENT")
	_ = v.BindEnv("timezone", "WAYBAR_SCHOOLHOLIDAYS_TIMEZONE", "TIMEZONE")
	_ = v.BindEnv("max_items", "WAYBAR_SCHOOLHOLIDAYS_MAX_ITEMS", "MAX_ITEMS")
	_ = v.BindEnv("timeout_seconds", "WAYBAR_SCHOOLHOLIDAYS_TIMEOUT_SECONDS")
	_ = v.BindEnv("default_region", "WAYBAR_SCHOOLHOLIDAYS_DEFAULT_REGION", "REGION")
	_ = v.BindEnv("default_school_year", "WAYBAR_SCHOOLHOLIDAYS_DEFAULT_SCHOOL_YEAR", "SCHOOL_YEAR")
	_ = v.BindEnv("default_source", "WAYBAR_SCHOOLHOLIDAYS_DEFAULT_SOURCE", "SOURCE")
	_ = v.BindEnv("state_dir", "WAYBAR_SCHOOLHOLIDAYS_STATE_DIR")
	_ = v.BindEnv("menu_dir", "WAYBAR_SCHOOLHOLIDAYS_MENU_DIR")
	_ = v.BindEnv("settings_file", "WAYBAR_SCHOOLHOLIDAYS_SETTINGS_FILE")

	v.SetDefault("api_url", defaultAPIURL)
	v.SetDefault("geocode_url", defaultGeocodeURL)
	v.SetDefault("user_agent", defaultUserAgent)
	v.SetDefault("timezone", defaultTimezone)
	v.SetDefault("max_items", 6)
	v.SetDefault("timeout_seconds", 15)
	v.SetDefault("default_region", "North")
	v.SetDefault("default_source", "live")
	v.SetDefault("state_dir", filepath.Join(xdgState, "waybar", "schoolholidays"))
	v.SetDefault("menu_dir", filepath.Join(xdgState, "waybar", "menus"))
	v.SetDefault("settings_file", filepath.Join(xdgConfig, "waybar", "schoolholidays.ini"))

	location, err := time.LoadLocation(strings.TrimSpace(v.GetString("timezone")))
	if err != nil {
		return Runtime{}, fmt.Errorf("load timezone %q: %w", v.GetString("timezone"), err)
	}

	maxItems := v.GetInt("max_items")
	if maxItems < 1 {
		maxItems = 1
	}
	if maxItems > maxMenuItems {
		maxItems = maxMenuItems
	}

	timeoutSeconds := v.GetInt("timeout_seconds")
	if timeoutSeconds <= 0 {
		timeoutSeconds = 15
	}

	defaultRegion, ok := region.ParseMacro(v.GetString("default_region"))
	if !ok {
		return Runtime{}, fmt.Errorf("invalid default region %q (want North, Middle or South)", v.GetString("default_region"))
	}

	defaultSource := strings.ToLower(strings.TrimSpace(v.GetString("default_source")))
	if defaultSource != "live" && defaultSource != "fallback" {
		return Runtime{}, fmt.Errorf("invalid default source %q (want live or fallback)", v.GetString("default_source"))
	}

	schoolYear := strings.TrimSpace(v.GetString("default_school_year"))
	if schoolYear == "" {
		schoolYear = SchoolYearAt(time.Now().In(location))
	}
	if _, ok := schedule.ParseSchoolYear(schoolYear); !ok {
		return Runtime{}, fmt.Errorf("invalid default school year %q (want YYYY-YYYY)", schoolYear)
	}

	stateDir := strings.TrimSpace(v.GetString("state_dir"))
	if stateDir == "" {
		stateDir = filepath.Join(xdgState, "waybar", "schoolholidays")
	}

	menuDir := strings.TrimSpace(v.GetString("menu_dir"))
	if menuDir == "" {
		menuDir = filepath.Join(xdgState, "waybar", "menus")
	}

	settingsPath := strings.TrimSpace(v.GetString("settings_file"))
	if settingsPath == "" {
		settingsPath = filepath.Join(xdgConfig, "waybar", "schoolholidays.ini")
	}

	return Runtime{
		ConfigFile:        configFile,
		APIURL:            strings.TrimRight(strings.TrimSpace(v.GetString("api_url")), "/"),
		GeocodeURL:        strings.TrimSpace(v.GetString("geocode_url")),
		UserAgent:         strings.TrimSpace(v.GetString("user_agent")),
		Location:          location,
		MaxItems:          maxItems,
		Timeout:           time.Duration(timeoutSeconds) * time.Second,
		DefaultRegion:     string(defaultRegion),
		DefaultSchoolYear: schoolYear,
		DefaultSource:     defaultSource,
		StateDir:          stateDir,
		MenuDir:           menuDir,
		MenuPath:          filepath.Join(menuDir, "schoolholidays.xml"),
		CacheDir:          filepath.Join(stateDir, "cache"),
		ExportPath:        filepath.Join(stateDir, "schoolholidays.ics"),
		SettingsPath:      settingsPath,
	}, nil
}

// SchoolYearAt returns the "YYYY-YYYY" school year containing t. School
// years roll over on 1 August.
func SchoolYearAt(t time.Time) string {
	start := t.Year()
	if t.Month() < time.August {
		start--
	}
	return fmt.Sprintf("%d-%d", start, start+1)
}
