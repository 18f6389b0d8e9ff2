package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	industryQueries "github.com/andrescamacho/industry-go/internal/application/industry/queries"
)

// NewProcessCommand creates the process command with subcommands
func NewProcessCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Inspect recorded process trees",
		Long: `Show process trees stored with --record.

Examples:
  industry react 17945 --cycles 720 --record "alchemy run"
  industry process list
  industry process show <record-id>`,
	}

	cmd.AddCommand(newProcessShowCommand())
	cmd.AddCommand(newProcessListCommand())

	return cmd
}

func newProcessShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <record-id>",
		Short: "Show a recorded process tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *App) error {
				resp, err := app.Mediator.Send(ctx, &industryQueries.GetProcessRecordQuery{RecordID: args[0]})
				if err != nil {
					return err
				}
				record := resp.(*industryQueries.GetProcessRecordResponse).Records[0]
				out := cmd.OutOrStdout()
				if jsonOutput {
					return printJSON(out, record)
				}

				f := NewTreeFormatter(app.Static, false)
				fmt.Fprintf(out, "%s %q recorded %s\n\n", record.ID, record.Label, record.CreatedAt.Format(time.RFC3339))
				fmt.Fprintln(out, f.FormatTree(record.Tree))
				fmt.Fprintln(out, f.FormatTreeSummary(record.Tree))
				fmt.Fprintln(out)
				fmt.Fprint(out, f.FormatNodeDetails(record.Tree, record.Tree.Root()))
				return nil
			})
		},
	}

	return cmd
}

func newProcessListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded process trees, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *App) error {
				resp, err := app.Mediator.Send(ctx, &industryQueries.GetProcessRecordQuery{Limit: limit})
				if err != nil {
					return err
				}
				records := resp.(*industryQueries.GetProcessRecordResponse).Records
				out := cmd.OutOrStdout()
				if jsonOutput {
					return printJSON(out, records)
				}
				if len(records) == 0 {
					fmt.Fprintln(out, "No process records")
					return nil
				}

				w := newTabWriter(out)
				fmt.Fprintln(w, "ID\tLABEL\tCREATED\tNODES\tTIME\tCOST")
				for _, record := range records {
					root := record.Tree.Root()
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
						record.ID, record.Label, record.CreatedAt.Format(time.RFC3339), record.Tree.Len(),
						formatSeconds(record.Tree.TotalTime(root)), formatISK(record.Tree.TotalCost(root)))
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum records to list, 0 for all")

	return cmd
}
