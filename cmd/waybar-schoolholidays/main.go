package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rbright/waybar-schoolholidays/internal/app"
	"github.com/rbright/waybar-schoolholidays/internal/config"
)

func main() {
	args := os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "-h", "--help", "help":
			printUsage()
			return
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Location lookups and the zenity picker wait on the user.
	timeout := cfg.Timeout + 5*time.Second
	switch commandName(args) {
	case "locate":
		timeout += 30 * time.Second
	case "select-region":
		timeout = 5 * time.Minute
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := app.Run(ctx, args, cfg, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func commandName(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func printUsage() {
	fmt.Println("waybar-schoolholidays <command>")
	fmt.Println()
	fmt.Println("  status                          print Waybar JSON (default)")
	fmt.Println("  refresh                         update cache and menu")
	fmt.Println("  list                            print the schedule for the current region")
	fmt.Println("  classify PROVINCE [MUNICIPALITY] print the holiday region")
	fmt.Println("  locate                          detect the region via GeoClue")
	fmt.Println("  set-region North|Middle|South")
	fmt.Println("  set-year YYYY-YYYY")
	fmt.Println("  set-source live|fallback")
	fmt.Println("  select-region                   pick the region in a dialog")
	fmt.Println("  export-ics [PATH]               write the schedule as iCalendar")
}
