package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	pricingCommands "github.com/andrescamacho/industry-go/internal/application/pricing/commands"
	pricingQueries "github.com/andrescamacho/industry-go/internal/application/pricing/queries"
	"github.com/andrescamacho/industry-go/internal/domain/market"
	"github.com/andrescamacho/industry-go/internal/infrastructure/pidfile"
)

const dateLayout = "2006-01-02"

// NewPriceCommand creates the price command with subcommands
func NewPriceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Update and query market price estimates",
		Long: `Estimate buy and sell prices from the regional order books and query the
stored estimates.

The region defaults to the user preference (industry config set-region), then
to industry.region_id from the config file.

Examples:
  industry price update 34 35 36 --region 10000002
  industry price get Tritanium
  industry price history 34 --from 2026-01-01
  industry price estimate orders.json --avg-volume 250000`,
	}

	cmd.AddCommand(newPriceUpdateCommand())
	cmd.AddCommand(newPriceGetCommand())
	cmd.AddCommand(newPriceHistoryCommand())
	cmd.AddCommand(newPriceEstimateCommand())

	return cmd
}

func newPriceUpdateCommand() *cobra.Command {
	var (
		regionID    int64
		concurrency int
		interval    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "update <item>...",
		Short: "Fetch order books and store new price estimates",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *App) error {
				itemIDs, err := resolveTypeIDs(app.Static, args)
				if err != nil {
					return err
				}
				if concurrency == 0 && app.Config != nil {
					concurrency = app.Config.Market.Concurrency
				}
				command := &pricingCommands.UpdatePriceStatsCommand{
					RegionID:    resolveRegion(regionID, app.Config),
					ItemIDs:     itemIDs,
					Concurrency: concurrency,
				}

				if interval <= 0 {
					return runPriceUpdate(ctx, cmd, app, command)
				}

				if app.Config != nil && app.Config.Market.LockFile != "" {
					lock := pidfile.New(app.Config.Market.LockFile)
					if err := lock.Acquire(); err != nil {
						return err
					}
					defer lock.Release()
				}

				ticker := time.NewTicker(interval)
				defer ticker.Stop()
				for {
					if err := runPriceUpdate(ctx, cmd, app, command); err != nil {
						if ctx.Err() != nil {
							return nil
						}
						return err
					}
					select {
					case <-ctx.Done():
						return nil
					case <-ticker.C:
					}
				}
			})
		},
	}

	cmd.Flags().Int64Var(&regionID, "region", 0, "Region ID")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Items estimated in parallel (default from config)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Repeat the update at this interval until interrupted")

	return cmd
}

func runPriceUpdate(ctx context.Context, cmd *cobra.Command, app *App, command *pricingCommands.UpdatePriceStatsCommand) error {
	resp, err := app.Mediator.Send(ctx, command)
	if err != nil {
		return err
	}
	result := resp.(*pricingCommands.UpdatePriceStatsResponse)
	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, result)
	}

	fmt.Fprintf(out, "Run %s: %d updated, %d failed in %s\n\n",
		result.RunID, len(result.Updated), len(result.Failures), result.Duration.Round(time.Millisecond))
	w := newTabWriter(out)
	fmt.Fprintln(w, "ITEM\tSELL\tBUY\tAVG VOLUME")
	for _, stat := range result.Updated {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\n",
			itemName(app.Static, stat.ItemID), formatOptionalPrice(stat.SellPrice), formatOptionalPrice(stat.BuyPrice), stat.AvgVolume)
	}
	w.Flush()

	for _, failure := range result.Failures {
		fmt.Fprintf(out, "failed: %s: %s\n", itemName(app.Static, failure.ItemID), failure.Error)
	}
	return nil
}

func newPriceGetCommand() *cobra.Command {
	var (
		regionID int64
		maxAge   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "get <item>",
		Short: "Show the latest price estimate of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *App) error {
				itemID, err := resolveTypeID(app.Static, args[0])
				if err != nil {
					return err
				}
				if !cmd.Flags().Changed("max-age") && app.Config != nil {
					maxAge = app.Config.Industry.MaxPriceDataAge
				}

				resp, err := app.Mediator.Send(ctx, &pricingQueries.GetPriceQuery{
					ItemID:   itemID,
					RegionID: resolveRegion(regionID, app.Config),
					MaxAge:   maxAge,
				})
				if err != nil {
					return err
				}
				result := resp.(*pricingQueries.GetPriceResponse)
				out := cmd.OutOrStdout()
				if jsonOutput {
					return printJSON(out, result)
				}

				printPriceStat(out, itemName(app.Static, result.Stat.ItemID), result.Stat, result.Source)
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&regionID, "region", 0, "Region ID")
	cmd.Flags().DurationVar(&maxAge, "max-age", 0, "Reject estimates older than this (minimum 5m, default from config)")

	return cmd
}

func newPriceHistoryCommand() *cobra.Command {
	var (
		regionID int64
		from     string
		to       string
	)

	cmd := &cobra.Command{
		Use:   "history <item>",
		Short: "Show daily price estimates of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fromDay, err := parseDay(from)
			if err != nil {
				return fmt.Errorf("invalid --from: %w", err)
			}
			toDay, err := parseDay(to)
			if err != nil {
				return fmt.Errorf("invalid --to: %w", err)
			}

			return withApp(cmd, func(ctx context.Context, app *App) error {
				itemID, err := resolveTypeID(app.Static, args[0])
				if err != nil {
					return err
				}
				resp, err := app.Mediator.Send(ctx, &pricingQueries.GetPriceHistoryQuery{
					ItemID:   itemID,
					RegionID: resolveRegion(regionID, app.Config),
					From:     fromDay,
					To:       toDay,
				})
				if err != nil {
					return err
				}
				result := resp.(*pricingQueries.GetPriceHistoryResponse)
				out := cmd.OutOrStdout()
				if jsonOutput {
					return printJSON(out, result)
				}

				fmt.Fprintf(out, "%s from %s to %s\n\n", itemName(app.Static, itemID), result.From.Format(dateLayout), result.To.Format(dateLayout))
				if len(result.Stats) == 0 {
					fmt.Fprintln(out, "No price estimates stored")
					return nil
				}
				w := newTabWriter(out)
				fmt.Fprintln(w, "DATE\tSELL\tBUY\tAVG VOLUME")
				for _, stat := range result.Stats {
					fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\n",
						stat.Date.Format(dateLayout), formatOptionalPrice(stat.SellPrice), formatOptionalPrice(stat.BuyPrice), stat.AvgVolume)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().Int64Var(&regionID, "region", 0, "Region ID")
	cmd.Flags().StringVar(&from, "from", "", "First day, YYYY-MM-DD (default 90 days before --to)")
	cmd.Flags().StringVar(&to, "to", "", "Last day, YYYY-MM-DD (default today)")

	return cmd
}

func parseDay(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, value)
}

func printPriceStat(out io.Writer, name string, stat *market.PriceStat, source string) {
	fmt.Fprintf(out, "%s in region %d\n", name, stat.RegionID)
	fmt.Fprintf(out, "  Generated:        %s (%s)\n", stat.GeneratedAt.Format(time.RFC3339), source)
	fmt.Fprintf(out, "  Sell:             %s\n", formatOptionalPrice(stat.SellPrice))
	fmt.Fprintf(out, "  Buy:              %s\n", formatOptionalPrice(stat.BuyPrice))
	fmt.Fprintf(out, "  Supply in 5%%:     %s\n", formatOptionalInt(stat.SupplyIn5))
	fmt.Fprintf(out, "  Demand in 5%%:     %s\n", formatOptionalInt(stat.DemandIn5))
	fmt.Fprintf(out, "  Avg volume:       %.2f\n", stat.AvgVolume)
	fmt.Fprintf(out, "  Avg transactions: %.2f\n", stat.AvgTransactions)
}

// newPriceEstimateCommand estimates prices from an order book file without loading the app
func newPriceEstimateCommand() *cobra.Command {
	var (
		avgVolume       float64
		avgTransactions float64
	)

	cmd := &cobra.Command{
		Use:   "estimate <orders.json>",
		Short: "Estimate prices from an order book snapshot file",
		Long: `Estimate prices from a JSON order book snapshot with the fields
type_id, region_id, generated_at and orders (price, volume_remaining,
min_volume, is_buy_order, issued). Nothing is stored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read order book: %w", err)
			}
			var snapshot market.OrderSnapshot
			if err := json.Unmarshal(data, &snapshot); err != nil {
				return fmt.Errorf("failed to parse order book %s: %w", args[0], err)
			}
			if err := snapshot.Validate(); err != nil {
				return fmt.Errorf("invalid order book %s: %w", args[0], err)
			}

			stat := market.EstimatePrices(snapshot, market.Baseline{
				AvgVolume:       avgVolume,
				AvgTransactions: avgTransactions,
			})
			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, stat)
			}
			printPriceStat(out, fmt.Sprintf("Item %d", stat.ItemID), stat, args[0])
			return nil
		},
	}

	cmd.Flags().Float64Var(&avgVolume, "avg-volume", 1, "Average daily traded volume")
	cmd.Flags().Float64Var(&avgTransactions, "avg-transactions", 1, "Average daily transactions")

	return cmd
}
