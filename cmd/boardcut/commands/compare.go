package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/piwi3910/boardcut/internal/engine"
)

// compare <file>: pack with every split rule.
func compareCmd(e *env) *cobra.Command {
	var (
		rf     requestFlags
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "compare <request.json|cutlist.csv|cutlist.xlsx>",
		Short: "Pack with every split rule and compare sheets, cost and waste",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := e.loadRequest(cmd, args[0], &rf)
			if err != nil {
				return err
			}

			ctx, cancel := e.context(cmd)
			defer cancel()
			results, err := e.svc.Compare(ctx, req)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(e.out, results)
			}
			printComparison(e, results)
			return nil
		},
	}
	rf.add(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the comparison as JSON")
	return cmd
}

func printComparison(e *env, results []engine.ComparisonResult) {
	best := engine.Best(results)
	fmt.Fprintf(e.out, "%-20s %7s %10s %8s %8s %9s\n", "RULE", "SHEETS", "COST", "UTIL%", "WASTE%", "UNPLACED")
	for i, r := range results {
		line := fmt.Sprintf("%-20s %7d %10.2f %8.1f %8.1f %9d",
			r.Rule, r.SheetsUsed, r.TotalCost, r.Utilization*100, r.WastePercent, r.UnplacedCount)
		if i == best {
			color.New(color.FgGreen, color.Bold).Fprintln(e.out, line+"  best")
			continue
		}
		fmt.Fprintln(e.out, line)
	}
}
