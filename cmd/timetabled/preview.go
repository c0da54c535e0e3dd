package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/patrickspencer/timetable/internal/config"
	"github.com/patrickspencer/timetable/pkg/timetable"
)

// runPreview implements the "preview" subcommand: print the upcoming
// occurrences of a single schedule file without starting the daemon.
func runPreview(args []string) int {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	file := fs.String("file", "", "path to a schedule YAML file")
	count := fs.Int("count", 10, "number of occurrences to print")
	fromStr := fs.String("from", "", "compute occurrences after this RFC3339 instant (default now)")
	tz := fs.String("timezone", timetable.DefaultTimeZone, "default timezone for schedules that set none")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *file == "" {
		fmt.Fprintln(os.Stderr, "preview: -file is required")
		fs.Usage()
		return 2
	}
	if *count <= 0 {
		fmt.Fprintln(os.Stderr, "preview: -count must be positive")
		return 2
	}

	from := time.Now().UTC()
	if *fromStr != "" {
		t, err := time.Parse(time.RFC3339, *fromStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "preview: bad -from %q: %v\n", *fromStr, err)
			return 2
		}
		from = t
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "preview: %v\n", err)
		return 1
	}
	def, err := config.ParseScheduleYAML(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "preview: parsing %s: %v\n", *file, err)
		return 1
	}
	def.FilePath = *file

	rs, err := buildRuntime(def, *tz)
	if err != nil {
		fmt.Fprintf(os.Stderr, "preview: %v\n", err)
		return 1
	}

	if rs.rule != nil {
		fmt.Printf("%s: %s\n", def.Name, rs.rule.Description())
	} else {
		fmt.Printf("%s: crontab %s\n", def.Name, def.Spec)
	}

	occs, err := nextOccurrences(rs, from, *count)
	if err != nil {
		fmt.Fprintf(os.Stderr, "preview: %v\n", err)
		return 1
	}
	if len(occs) == 0 {
		fmt.Println("no upcoming occurrences")
		return 0
	}

	loc := time.UTC
	if rs.rule != nil {
		loc = rs.rule.Location()
	}
	for _, occ := range occs {
		fmt.Printf("  %s  (%s)\n", occ.UTC().Format(time.RFC3339), occ.In(loc).Format("Mon 2006-01-02 15:04 MST"))
	}
	return 0
}
