package commands

import (
	"github.com/spf13/cobra"
)

// optimize <file>: pack a request and print the result.
func optimizeCmd(e *env) *cobra.Command {
	var (
		rf      requestFlags
		ef      exportFlags
		asJSON  bool
		details bool
	)
	cmd := &cobra.Command{
		Use:   "optimize <request.json|cutlist.csv|cutlist.xlsx>",
		Short: "Pack a request and print the layout summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := e.loadRequest(cmd, args[0], &rf)
			if err != nil {
				return err
			}

			ctx, cancel := e.context(cmd)
			defer cancel()
			result, err := e.svc.Optimize(ctx, req)
			if err != nil {
				return err
			}

			if err := ef.write(e, result, req.Materials); err != nil {
				return err
			}
			if asJSON {
				return printJSON(e.out, result)
			}
			printResult(e.out, result, details)
			return nil
		},
	}
	rf.add(cmd)
	ef.add(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result as JSON")
	cmd.Flags().BoolVar(&details, "details", false, "List every placement")
	return cmd
}
