package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/boardcut/internal/model"
)

// get <hash>: print a cached result.
func getCmd(e *env) *cobra.Command {
	var asJSON, details bool
	cmd := &cobra.Command{
		Use:   "get <hash>",
		Short: "Print a previously computed result by hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := e.lookup(cmd, args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(e.out, result)
			}
			printResult(e.out, result, details)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result as JSON")
	cmd.Flags().BoolVar(&details, "details", false, "List every placement")
	return cmd
}

func (e *env) lookup(cmd *cobra.Command, hash string) (model.Result, error) {
	ctx, cancel := e.context(cmd)
	defer cancel()
	result, err := e.svc.Lookup(ctx, hash)
	if errors.Is(err, model.ErrNotFound) {
		return model.Result{}, fmt.Errorf("no result for %s (never computed, expired or cache unavailable)", hash)
	}
	return result, err
}
