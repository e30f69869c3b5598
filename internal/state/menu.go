package state

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/rbright/waybar-schoolholidays/internal/schedule"
)

type MenuData struct {
	StatusLine string
	Region     string
	Items      []schedule.Period
}

func WriteMenu(path string, data MenuData) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create menu dir: %w", err)
	}

	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	b.WriteString("<interface>\n")
	b.WriteString("  <object class=\"GtkMenu\" id=\"menu\">\n")

	if strings.TrimSpace(data.Region) != "" {
		writeMenuItem(&b, "region", "Region: "+data.Region)
		writeSeparator(&b, "separator_region")
	}

	if len(data.Items) > 0 {
		for idx, item := range data.Items {
			label := fmt.Sprintf("%s — %s", FormatRange(item), fallback(item.Label, "Holiday"))
			writeMenuItem(&b, fmt.Sprintf("holiday_%d", idx+1), label)
		}
	} else {
		writeMenuItem(&b, "noop", fallback(data.StatusLine, "No upcoming holidays"))
	}

	writeSeparator(&b, "separator_actions")
	writeMenuItem(&b, "select_region", "Select Region…")
	writeMenuItem(&b, "locate", "Detect Region")
	writeMenuItem(&b, "export_ics", "Export Calendar")
	writeMenuItem(&b, "refresh", "Refresh")

	b.WriteString("  </object>\n")
	b.WriteString("</interface>\n")

	return WriteFileAtomically(path, []byte(b.String()))
}

func writeMenuItem(b *strings.Builder, id, label string) {
	b.WriteString("    <child>\n")
	_, _ = fmt.Fprintf(b, "      <object class=\"GtkMenuItem\" id=\"%s\">\n", html.EscapeString(id))
	_, _ = fmt.Fprintf(b, "        <property name=\"label\">%s</property>\n", html.EscapeString(label))
	b.WriteString("      </object>\n")
	b.WriteString("    </child>\n")
}

func writeSeparator(b *strings.Builder, id string) {
	b.WriteString("    <child>\n")
	_, _ = fmt.Fprintf(b, "      <object class=\"GtkSeparatorMenuItem\" id=\"%s\" />\n", html.EscapeString(id))
	b.WriteString("    </child>\n")
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}

// FormatRange renders a period as "18 Oct – 26 Oct 2025", adding the year
// to the start only when the period crosses into a new year.
func FormatRange(period schedule.Period) string {
	if period.Start.Year() != period.End.Year() {
		return fmt.Sprintf("%s – %s", period.Start.Format("2 Jan 2006"), period.End.Format("2 Jan 2006"))
	}
	return fmt.Sprintf("%s – %s", period.Start.Format("2 Jan"), period.End.Format("2 Jan 2006"))
}
