package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/picatz/foundry/internal/catalog"
)

// locationSummary is "All regions" for a global model, or how many of the
// scanned regions offer it.
func locationSummary(m catalog.Model, scanned int) string {
	if m.Global {
		return "All regions"
	}
	return fmt.Sprintf("%d/%d regions", len(m.Locations()), scanned)
}

func printModels(w io.Writer, models []catalog.Model, scanned int, label string, breakdown bool) {
	if len(models) == 0 {
		fmt.Fprintf(w, "No %s found.\n", label)
		return
	}

	fmt.Fprintf(w, "Found %s model(s):\n\n", styleNumber.Render(fmt.Sprint(len(models))))
	fmt.Fprintln(w, styleBold.Render(fmt.Sprintf("  %-35s %-15s %-20s %s", "Model", "Format", "Versions", "Locations")))
	fmt.Fprintf(w, "  %s %s %s %s\n", strings.Repeat("-", 35), strings.Repeat("-", 15), strings.Repeat("-", 20), strings.Repeat("-", 20))

	for _, m := range models {
		versions := strings.Join(m.SortedVersions(), ", ")
		fmt.Fprintf(w, "  %-35s %-15s %-20s %s\n", m.Name, m.Format, versions, locationSummary(m, scanned))
	}

	if breakdown {
		fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 90))
		fmt.Fprintln(w, "Detailed location breakdown (models not available in all regions):")
		fmt.Fprintln(w)

		printed := false
		for _, m := range models {
			if m.Global {
				continue
			}
			printed = true
			fmt.Fprintf(w, "  %s (%s)\n", styleBold.Render(m.Name), m.Format)
			for _, v := range m.SortedVersions() {
				fmt.Fprintf(w, "    %s: %s\n", v, strings.Join(m.Versions[v], ", "))
			}
			if len(m.SKUs) > 0 {
				fmt.Fprintf(w, "    %s\n", styleFaint.Render("SKUs: "+strings.Join(m.SKUs, ", ")))
			}
		}
		if !printed {
			fmt.Fprintln(w, "  All models are available in every region.")
		}
	}

	fmt.Fprintf(w, "\nTotal: %d model(s) across %d locations\n", len(models), scanned)
}

func printSnapshots(w io.Writer, snaps []catalog.Snapshot, now time.Time) {
	if len(snaps) == 0 {
		fmt.Fprintln(w, "No cached scans.")
		return
	}

	fmt.Fprintln(w, styleBold.Render(fmt.Sprintf("  %-38s %-27s %-12s %s", "Subscription", "Snapshot", "Age", "Entries")))
	for _, s := range snaps {
		age := s.Age(now).Round(time.Minute)
		fmt.Fprintf(w, "  %-38s %-27s %-12s %d\n", s.Subscription, s.ID, age, len(s.Entries))
	}
}
