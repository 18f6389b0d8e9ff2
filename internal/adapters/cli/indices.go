package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	industryCommands "github.com/andrescamacho/industry-go/internal/application/industry/commands"
)

// NewIndicesCommand creates the indices command with subcommands
func NewIndicesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "indices",
		Short: "Manage industry cost indices",
	}

	cmd.AddCommand(newIndicesUpdateCommand())

	return cmd
}

func newIndicesUpdateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update [system]...",
		Short: "Fetch and store the current industry cost indices",
		Long: `Fetch the cost index of every activity from the market feed and store them.
With no arguments every reported solar system is stored.

Examples:
  industry indices update
  industry indices update 30000142 30002187`,
		RunE: func(cmd *cobra.Command, args []string) error {
			systemIDs := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid solar system ID %q", arg)
				}
				systemIDs = append(systemIDs, id)
			}

			return withApp(cmd, func(ctx context.Context, app *App) error {
				resp, err := app.Mediator.Send(ctx, &industryCommands.UpdateIndicesCommand{SystemIDs: systemIDs})
				if err != nil {
					return err
				}
				result := resp.(*industryCommands.UpdateIndicesResponse)
				if jsonOutput {
					return printJSON(cmd.OutOrStdout(), result)
				}
				if len(systemIDs) > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Requested systems: %s\n", joinIDs(systemIDs))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stored %d indices for %d solar systems\n", result.Indices, result.Systems)
				return nil
			})
		},
	}

	return cmd
}
