package selector

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rbright/waybar-schoolholidays/internal/region"
)

var ErrSelectionCancelled = errors.New("region selection cancelled")

type choice struct {
	macro     region.Macro
	provinces string
}

var choices = []choice{
	{macro: region.North, provinces: "Groningen, Friesland, Drenthe, Overijssel, Noord-Holland, most of Flevoland"},
	{macro: region.Middle, provinces: "Utrecht, Zuid-Holland, most of Gelderland"},
	{macro: region.South, provinces: "Limburg, Zeeland, Noord-Brabant, Arnhem and Nijmegen"},
}

func SelectRegion(ctx context.Context, current region.Macro) (region.Macro, error) {
	if !hasGraphicalSession() {
		return "", fmt.Errorf("region selection requires a graphical session")
	}

	if _, err := exec.LookPath("zenity"); err != nil {
		return "", fmt.Errorf("zenity is required for region selection")
	}

	return selectWithZenity(ctx, current)
}

func hasGraphicalSession() bool {
	return strings.TrimSpace(os.Getenv("WAYLAND_DISPLAY")) != "" || strings.TrimSpace(os.Getenv("DISPLAY")) != ""
}

func selectWithZenity(ctx context.Context, current region.Macro) (region.Macro, error) {
	cmd := exec.CommandContext(ctx, "zenity", buildArgs(current)...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			if exitErr.ExitCode() == 1 {
				return "", ErrSelectionCancelled
			}
		}
		return "", fmt.Errorf("zenity selector failed: %w", err)
	}

	selected, ok := parseSelectionOutput(string(out))
	if !ok {
		return "", ErrSelectionCancelled
	}
	return selected, nil
}

func buildArgs(current region.Macro) []string {
	args := []string{
		"--list",
		"--radiolist",
		"--title=School Holiday Region",
		"--text=Select the region your school follows",
		"--modal",
		"--width=640",
		"--height=320",
		"--print-column=2",
		"--column=Use",
		"--column=Region",
		"--column=Covers",
	}

	for _, c := range choices {
		checked := "FALSE"
		if c.macro == current {
			checked = "TRUE"
		}
		args = append(args, checked, string(c.macro), c.provinces)
	}
	return args
}

func parseSelectionOutput(raw string) (region.Macro, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}

	parts := strings.FieldsFunc(trimmed, func(r rune) bool {
		return r == '\n' || r == '|'
	})
	for _, part := range parts {
		if value := strings.TrimSpace(part); value != "" {
			return region.ParseMacro(value)
		}
	}
	return "", false
}
