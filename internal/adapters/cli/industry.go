package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	industryCommands "github.com/andrescamacho/industry-go/internal/application/industry/commands"
	industryQueries "github.com/andrescamacho/industry-go/internal/application/industry/queries"
	"github.com/andrescamacho/industry-go/internal/application/industry/services"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

// processOutput prints a computed process, optionally valued at market prices and stored
type processOutput struct {
	record string
	value  bool
	strict bool
	region int64
}

func (o *processOutput) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.record, "record", "", "Store the computed tree under this label")
	cmd.Flags().BoolVar(&o.value, "value", false, "Value materials and outputs at stored market prices")
	cmd.Flags().BoolVar(&o.strict, "strict", false, "With --value, fail on missing or stale prices")
	cmd.Flags().Int64Var(&o.region, "region", 0, "With --value, price region (default: the location's region)")
}

// valuedProcess is the JSON shape of a process printed with --value
type valuedProcess struct {
	*industryQueries.ProcessResponse
	Valuation *industryQueries.ValuationResponse `json:"valuation"`
}

func (o *processOutput) print(ctx context.Context, cmd *cobra.Command, app *App, loc services.Location, resp *industryQueries.ProcessResponse) error {
	out := cmd.OutOrStdout()

	var valuation *industryQueries.ValuationResponse
	if o.value {
		valued, err := app.Mediator.Send(ctx, &industryQueries.ValueProcessQuery{
			Location: loc,
			Tree:     resp.Tree,
			RegionID: o.region,
			Strict:   o.strict,
		})
		if err != nil {
			return fmt.Errorf("failed to value process: %w", err)
		}
		valuation = valued.(*industryQueries.ValuationResponse)
	}

	var recordID string
	if o.record != "" {
		stored, err := app.Mediator.Send(ctx, &industryCommands.RecordProcessCommand{Label: o.record, Tree: resp.Tree})
		if err != nil {
			return fmt.Errorf("failed to record process: %w", err)
		}
		recordID = stored.(*industryCommands.RecordProcessResponse).RecordID
	}

	if jsonOutput {
		if valuation != nil {
			return printJSON(out, valuedProcess{ProcessResponse: resp, Valuation: valuation})
		}
		return printJSON(out, resp)
	}

	writeProcess(out, NewTreeFormatter(app.Static, false), resp)
	if valuation != nil {
		writeValuation(out, app, valuation)
	}
	if recordID != "" {
		fmt.Fprintf(out, "\nRecorded as %s\n", recordID)
	}
	return nil
}

func writeProcess(out io.Writer, f *TreeFormatter, resp *industryQueries.ProcessResponse) {
	fmt.Fprintln(out, f.FormatTree(resp.Tree))
	fmt.Fprintln(out, f.FormatTreeSummary(resp.Tree))
	fmt.Fprintln(out)
	fmt.Fprint(out, f.FormatLedger("Materials", resp.TotalMaterial))
	fmt.Fprint(out, f.FormatSkills(resp.TotalSkills))
}

func writeValuation(out io.Writer, app *App, v *industryQueries.ValuationResponse) {
	fmt.Fprintf(out, "\nValuation (region %d, market station %d):\n", v.RegionID, v.MarketStationID)
	w := newTabWriter(out)
	fmt.Fprintln(w, "  SIDE\tITEM\tQUANTITY\tUNIT PRICE\tVALUE")
	for _, q := range v.Inputs {
		fmt.Fprintf(w, "  buy\t%s\t%.2f\t%.2f\t%.2f\n", itemName(app.Static, q.ItemID), q.Quantity, q.UnitPrice, q.Value)
	}
	for _, q := range v.Outputs {
		fmt.Fprintf(w, "  sell\t%s\t%.2f\t%.2f\t%.2f\n", itemName(app.Static, q.ItemID), q.Quantity, q.UnitPrice, q.Value)
	}
	w.Flush()
	fmt.Fprintf(out, "  Material cost:   %s\n", formatISK(v.MaterialCost))
	fmt.Fprintf(out, "  Job cost:        %s\n", formatISK(v.JobCost))
	fmt.Fprintf(out, "  Output value:    %s\n", formatISK(v.OutputValue))
	fmt.Fprintf(out, "  Profit:          %s\n", formatISK(v.Profit))
	if len(v.Unpriced) > 0 {
		names := make([]string, len(v.Unpriced))
		for i, id := range v.Unpriced {
			names[i] = itemName(app.Static, id)
		}
		fmt.Fprintf(out, "  Unpriced:        %s\n", strings.Join(names, ", "))
	}
}

// depthFlag defaults to the configured recursion depth when unset
func depthFlag(cmd *cobra.Command, value int, app *App) int {
	if cmd.Flags().Changed("depth") || app.Config == nil {
		return value
	}
	return app.Config.Industry.RecursionDepth
}

// NewReactCommand creates the react command
func NewReactCommand() *cobra.Command {
	var (
		loc       locationFlags
		output    processOutput
		cycles    float64
		reprocess bool
		feedback  bool
		depth     int
	)

	cmd := &cobra.Command{
		Use:   "react <reaction>",
		Short: "Compute a reaction for a number of cycles",
		Long: `Compute the inputs, outputs, time and cost of running a reaction.

Intermediate inputs that are themselves reaction products are expanded into
sub-reactions up to --depth levels. For alchemy reactions, --reprocess turns the
unrefined output into its refined materials and --feedback offsets them against
the reaction's own inputs.

Examples:
  industry react 17945 --cycles 720 --system 30000142 --installation 16869 --reprocess --feedback
  industry react "Platinum Technite Reaction" --cycles 24 --station 60003760`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			location, err := loc.resolve(cmd)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, app *App) error {
				reactionID, err := resolveTypeID(app.Static, args[0])
				if err != nil {
					return err
				}
				resp, err := app.Mediator.Send(ctx, &industryQueries.ReactQuery{
					Location:       location,
					ReactionID:     reactionID,
					Cycles:         cycles,
					Reprocess:      reprocess,
					Feedback:       feedback,
					RecursionDepth: depthFlag(cmd, depth, app),
				})
				if err != nil {
					return err
				}
				return output.print(ctx, cmd, app, location, resp.(*industryQueries.ProcessResponse))
			})
		},
	}

	loc.bind(cmd)
	output.bind(cmd)
	cmd.Flags().Float64Var(&cycles, "cycles", 1, "Reaction cycles, may be fractional")
	cmd.Flags().BoolVar(&reprocess, "reprocess", false, "Reprocess alchemy output")
	cmd.Flags().BoolVar(&feedback, "feedback", false, "Feed reprocessed alchemy output back into the inputs")
	cmd.Flags().IntVar(&depth, "depth", 0, "Sub-reaction recursion depth (default from config)")

	return cmd
}

// NewReactExactCommand creates the react-exact command
func NewReactExactCommand() *cobra.Command {
	var (
		loc     locationFlags
		output  processOutput
		product string
		units   float64
		depth   int
	)

	cmd := &cobra.Command{
		Use:   "react-exact <reaction>",
		Short: "Compute the reaction cycles for an exact output quantity",
		Long: `Compute the fractional number of cycles a reaction needs to produce exactly
--units of its product, or of --product for reactions with several outputs.

Examples:
  industry react-exact 17961 --units 2000 --station 60003760`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			location, err := loc.resolve(cmd)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, app *App) error {
				reactionID, err := resolveTypeID(app.Static, args[0])
				if err != nil {
					return err
				}
				var productID int64
				if product != "" {
					if productID, err = resolveTypeID(app.Static, product); err != nil {
						return err
					}
				}
				resp, err := app.Mediator.Send(ctx, &industryQueries.ReactExactQuery{
					Location:       location,
					ReactionID:     reactionID,
					ProductID:      productID,
					Units:          units,
					RecursionDepth: depthFlag(cmd, depth, app),
				})
				if err != nil {
					return err
				}
				return output.print(ctx, cmd, app, location, resp.(*industryQueries.ProcessResponse))
			})
		},
	}

	loc.bind(cmd)
	output.bind(cmd)
	cmd.Flags().StringVar(&product, "product", "", "Product item, defaults to the reaction's product")
	cmd.Flags().Float64Var(&units, "units", 0, "Units of product to make")
	cmd.Flags().IntVar(&depth, "depth", 0, "Sub-reaction recursion depth (default from config)")
	_ = cmd.MarkFlagRequired("units")

	return cmd
}

// NewManufactureCommand creates the manufacture command
func NewManufactureCommand() *cobra.Command {
	var (
		loc    locationFlags
		output processOutput
		runs   int64
		depth  int
	)

	cmd := &cobra.Command{
		Use:   "manufacture <blueprint>",
		Short: "Compute a manufacturing job",
		Long: `Compute the materials, time and cost of manufacturing runs of a blueprint.

Components that have their own blueprint are expanded into sub-jobs up to --depth levels.

Examples:
  industry manufacture 691 --runs 10 --station 60003760
  industry manufacture "Rifter Blueprint" --runs 1 --depth 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			location, err := loc.resolve(cmd)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, app *App) error {
				blueprintID, err := resolveTypeID(app.Static, args[0])
				if err != nil {
					return err
				}
				resp, err := app.Mediator.Send(ctx, &industryQueries.ManufactureQuery{
					Location:       location,
					BlueprintID:    blueprintID,
					Runs:           runs,
					RecursionDepth: depthFlag(cmd, depth, app),
				})
				if err != nil {
					return err
				}
				return output.print(ctx, cmd, app, location, resp.(*industryQueries.ProcessResponse))
			})
		},
	}

	loc.bind(cmd)
	output.bind(cmd)
	cmd.Flags().Int64Var(&runs, "runs", 1, "Job runs")
	cmd.Flags().IntVar(&depth, "depth", 0, "Component recursion depth (default from config)")

	return cmd
}

// NewCopyCommand creates the copy command
func NewCopyCommand() *cobra.Command {
	var (
		loc         locationFlags
		output      processOutput
		copies      int64
		runsPerCopy int64
	)

	cmd := &cobra.Command{
		Use:   "copy <blueprint>",
		Short: "Compute a blueprint copy job",
		Long: `Compute the time, cost and materials of copying a blueprint.

Example:
  industry copy 691 --copies 10 --runs-per-copy 5 --station 60003760`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			location, err := loc.resolve(cmd)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, app *App) error {
				blueprintID, err := resolveTypeID(app.Static, args[0])
				if err != nil {
					return err
				}
				resp, err := app.Mediator.Send(ctx, &industryQueries.CopyQuery{
					Location:    location,
					BlueprintID: blueprintID,
					Copies:      copies,
					RunsPerCopy: runsPerCopy,
				})
				if err != nil {
					return err
				}
				return output.print(ctx, cmd, app, location, resp.(*industryQueries.ProcessResponse))
			})
		},
	}

	loc.bind(cmd)
	output.bind(cmd)
	cmd.Flags().Int64Var(&copies, "copies", 1, "Number of copies")
	cmd.Flags().Int64Var(&runsPerCopy, "runs-per-copy", 1, "Runs on each copy")

	return cmd
}

// NewInventCommand creates the invent command
func NewInventCommand() *cobra.Command {
	var (
		loc    locationFlags
		output processOutput
	)

	cmd := &cobra.Command{
		Use:   "invent <blueprint>",
		Short: "Compute an invention attempt and its expected cost per success",
		Long: `Compute one invention attempt from a blueprint, including the copy it consumes,
and the materials, time and cost expected per successful attempt.

Example:
  industry invent 11479 --station 60003760`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			location, err := loc.resolve(cmd)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, app *App) error {
				blueprintID, err := resolveTypeID(app.Static, args[0])
				if err != nil {
					return err
				}
				resp, err := app.Mediator.Send(ctx, &industryQueries.InventQuery{
					Location:    location,
					BlueprintID: blueprintID,
				})
				if err != nil {
					return err
				}
				invented := resp.(*industryQueries.InventResponse)
				if jsonOutput {
					return printJSON(cmd.OutOrStdout(), invented)
				}
				if err := output.print(ctx, cmd, app, location, invented.ProcessResponse); err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				f := NewTreeFormatter(app.Static, false)
				fmt.Fprintf(out, "\nSuccess chance:    %.2f%%\n", invented.Probability*100)
				fmt.Fprintf(out, "Per success:       %s, %s\n", formatSeconds(invented.Expected.Seconds), formatISK(invented.Expected.Cost))
				fmt.Fprint(out, f.FormatLedger("Materials per success", invented.Expected.Material))
				return nil
			})
		},
	}

	loc.bind(cmd)
	output.bind(cmd)

	return cmd
}

// NewReprocessCommand creates the reprocess command
func NewReprocessCommand() *cobra.Command {
	var (
		loc   locationFlags
		units int64
	)

	cmd := &cobra.Command{
		Use:   "reprocess <item>",
		Short: "Compute the materials recovered by reprocessing",
		Long: `Compute the materials recovered from reprocessing units of an item at the
best reprocessing station of the location.

Example:
  industry reprocess "Compressed Veldspar" --units 1000 --system 30000142`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			location, err := loc.resolve(cmd)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, app *App) error {
				itemID, err := resolveTypeID(app.Static, args[0])
				if err != nil {
					return err
				}
				resp, err := app.Mediator.Send(ctx, &industryQueries.ReprocessQuery{
					Location: location,
					ItemID:   itemID,
					Units:    units,
				})
				if err != nil {
					return err
				}
				result := resp.(*industryQueries.ReprocessResponse)
				out := cmd.OutOrStdout()
				if jsonOutput {
					return printJSON(out, result)
				}

				fmt.Fprintf(out, "Station:           %d\n", result.StationID)
				fmt.Fprintf(out, "Yield:             %.4f\n", result.Yield)
				fmt.Fprint(out, NewTreeFormatter(app.Static, false).FormatLedger("Materials", result.Materials))
				return nil
			})
		},
	}

	loc.bind(cmd)
	cmd.Flags().Int64Var(&units, "units", 1, "Units to reprocess")

	return cmd
}

// NewFacilityCommand creates the facility command with subcommands
func NewFacilityCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "facility",
		Short: "Inspect facilities and modifiers",
	}

	cmd.AddCommand(newFacilityBestCommand())

	return cmd
}

func newFacilityBestCommand() *cobra.Command {
	var (
		loc      locationFlags
		activity string
		subject  string
	)

	cmd := &cobra.Command{
		Use:   "best",
		Short: "Show the assembly line an activity would use",
		Long: `Show the assembly line chosen for an activity at a location together with its
facility modifier and the fully resolved modifier.

The subject is the reaction for reactions and the blueprint for every other activity.

Example:
  industry facility best --activity manufacturing --subject 691 --station 60003760`,
		RunE: func(cmd *cobra.Command, args []string) error {
			act, err := shared.ParseActivity(activity)
			if err != nil {
				return err
			}
			location, err := loc.resolve(cmd)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, app *App) error {
				subjectID, err := resolveTypeID(app.Static, subject)
				if err != nil {
					return err
				}
				resp, err := app.Mediator.Send(ctx, &industryQueries.BestFacilityQuery{
					Location:  location,
					Activity:  act,
					SubjectID: subjectID,
				})
				if err != nil {
					return err
				}
				best := resp.(*industryQueries.BestFacilityResponse)
				out := cmd.OutOrStdout()
				if jsonOutput {
					return printJSON(out, best)
				}

				fmt.Fprintf(out, "Assembly line:     %d %s\n", best.AssemblyLineID, best.AssemblyLineName)
				fmt.Fprintf(out, "Facility modifier: %s\n", best.FacilityModifier)
				fmt.Fprintf(out, "Resolved modifier: %s\n", best.Resolved.Modifier)
				fmt.Fprintf(out, "Solar system:      %d\n", best.Resolved.SolarSystemID)
				return nil
			})
		},
	}

	loc.bind(cmd)
	cmd.Flags().StringVar(&activity, "activity", "manufacturing", "Activity name, e.g. manufacturing, reaction, copying, invention")
	cmd.Flags().StringVar(&subject, "subject", "", "Reaction or blueprint")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}
