package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/piwi3910/boardcut/internal/model"
)

var (
	heading = color.New(color.Bold)
	good    = color.New(color.FgGreen)
	warn    = color.New(color.FgYellow)
)

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResult writes a human readable summary of result.
func printResult(w io.Writer, result model.Result, details bool) {
	source := "computed"
	if result.Cached {
		source = "cached"
	}
	heading.Fprintf(w, "Result %s (%s)\n", result.Hash, source)
	if result.ProjectName != "" {
		fmt.Fprintf(w, "Project:     %s\n", result.ProjectName)
	}
	fmt.Fprintf(w, "Split rule:  %s\n", result.SplitRule)
	fmt.Fprintf(w, "Sheets:      %d\n", result.SheetsUsed)
	fmt.Fprintf(w, "Total cost:  %.2f\n", result.TotalCost)
	fmt.Fprintf(w, "Utilization: %.1f%% (waste %.1f%%)\n", result.Utilization*100, result.WastePercent)
	fmt.Fprintf(w, "Placed:      %d\n", result.PlacedCount())

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-16s %7s %7s %10s %10s %7s\n", "MATERIAL", "SHEETS", "MIN", "PRICE", "COST", "UTIL%")
	for _, c := range result.Costs {
		fmt.Fprintf(w, "%-16s %7d %7d %10.2f %10.2f %7.1f\n",
			c.MaterialCode, c.SheetsUsed, c.MinSheets, c.UnitPrice, c.TotalCost, c.Utilization*100)
	}

	if details {
		for _, l := range result.Layouts {
			fmt.Fprintln(w)
			heading.Fprintf(w, "%s sheet %d: %.1f%% used\n", l.MaterialCode, l.SheetIndex, l.Utilization()*100)
			for _, p := range l.Placements {
				rot := ""
				if p.Rotated {
					rot = " (rotated)"
				}
				fmt.Fprintf(w, "  %-20s #%-3d at (%.1f, %.1f) %.1f x %.1f%s\n",
					p.Piece.Label, p.Instance, p.X, p.Y, p.Width, p.Height, rot)
			}
		}
	}

	fmt.Fprintln(w)
	if len(result.Unplaced) == 0 {
		good.Fprintln(w, "All pieces placed.")
		return
	}
	warn.Fprintf(w, "%d piece units not placed:\n", len(result.Unplaced))
	for _, u := range result.Unplaced {
		warn.Fprintf(w, "  %s #%d (%s %.0f x %.0f): %s\n",
			u.Piece.Label, u.Instance, u.Piece.Material, u.Piece.Width, u.Piece.Height, u.Reason)
	}
}
