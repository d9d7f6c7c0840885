package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// recent: list recently computed hashes.
func recentCmd(e *env) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently computed result hashes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return fmt.Errorf("limit must be positive, got %d", limit)
			}
			ctx, cancel := e.context(cmd)
			defer cancel()

			recent := e.svc.Recent(ctx, limit)
			if len(recent) == 0 {
				fmt.Fprintln(e.out, "no cached results")
				return nil
			}
			for _, r := range recent {
				fmt.Fprintf(e.out, "%s  %s\n", r.Hash, r.CreatedAt.Local().Format(time.DateTime))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of hashes to list")
	return cmd
}
