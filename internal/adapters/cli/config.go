package cli

import (
	"context"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/industry-go/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage industry configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (IND_* prefix)
2. Config file (config.yaml)
3. Default values

User preferences (default station and region) are stored in ~/.industry/config.json

Examples:
  industry config show
  industry config set-station 60003760
  industry config set-region 10000002
  industry config clear`,
	}

	// Add subcommands
	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetStationCommand())
	cmd.AddCommand(newConfigSetRegionCommand())
	cmd.AddCommand(newConfigClearCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				fmt.Fprintf(out, "Warning: Failed to load config: %v\n", err)
				fmt.Fprintln(out, "Using default configuration.")
				cfg = config.LoadConfigOrDefault(configPath)
			}

			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			userCfg, err := userConfigHandler.Load()
			if err != nil {
				fmt.Fprintf(out, "Warning: Failed to load user config: %v\n\n", err)
				userCfg = &config.UserConfig{}
			}

			if jsonOutput {
				return printJSON(out, map[string]interface{}{"config": cfg, "user": userCfg})
			}

			fmt.Fprintln(out, "Industry Configuration")
			fmt.Fprintln(out, "======================")

			fmt.Fprintln(out, "User Preferences:")
			fmt.Fprintf(out, "  Config file:      %s\n", userConfigHandler.GetConfigPath())
			fmt.Fprintf(out, "  Default station:  %s\n", orUnset(userCfg.DefaultStationID))
			fmt.Fprintf(out, "  Default region:   %s\n", orUnset(userCfg.DefaultRegionID))

			fmt.Fprintln(out, "\nDatabase:")
			fmt.Fprintf(out, "  Type:             %s\n", cfg.Database.Type)
			switch {
			case cfg.Database.URL != "":
				fmt.Fprintf(out, "  URL:              %s\n", maskPassword(cfg.Database.URL))
			case cfg.Database.Type == "sqlite":
				fmt.Fprintf(out, "  Path:             %s\n", cfg.Database.Path)
			default:
				fmt.Fprintf(out, "  Host:             %s:%d\n", cfg.Database.Host, cfg.Database.Port)
				fmt.Fprintf(out, "  Database:         %s\n", cfg.Database.Name)
			}

			fmt.Fprintln(out, "\nStatic Data:")
			fmt.Fprintf(out, "  Driver:           %s\n", cfg.StaticData.Driver)
			fmt.Fprintf(out, "  Source:           %s\n", maskPassword(cfg.StaticData.Source()))

			fmt.Fprintln(out, "\nIndustry:")
			fmt.Fprintf(out, "  Default tax:      %.2f%%\n", cfg.Industry.TaxRate()*100)
			fmt.Fprintf(out, "  Price max age:    %s\n", cfg.Industry.MaxPriceDataAge)
			if cfg.Industry.IndustryIndexMaxAge > 0 {
				fmt.Fprintf(out, "  Index max age:    %s\n", cfg.Industry.IndustryIndexMaxAge)
			} else {
				fmt.Fprintln(out, "  Index max age:    unlimited")
			}
			fmt.Fprintf(out, "  Recursion depth:  %d\n", cfg.Industry.RecursionDepth)
			fmt.Fprintf(out, "  Region:           %d\n", cfg.Industry.RegionID)

			fmt.Fprintln(out, "\nMarket Feed:")
			fmt.Fprintf(out, "  Base URL:         %s\n", cfg.Market.BaseURL)
			fmt.Fprintf(out, "  Timeout:          %s\n", cfg.Market.Timeout)
			fmt.Fprintf(out, "  Rate Limit:       %d req/s (burst: %d)\n", cfg.Market.RateLimit.Requests, cfg.Market.RateLimit.Burst)
			fmt.Fprintf(out, "  Max Retries:      %d\n", cfg.Market.Retry.MaxAttempts)
			fmt.Fprintf(out, "  Concurrency:      %d\n", cfg.Market.Concurrency)
			fmt.Fprintf(out, "  Lock file:        %s\n", cfg.Market.LockFile)

			fmt.Fprintln(out, "\nPrice Cache:")
			if cfg.Cache.RedisEnabled() {
				fmt.Fprintf(out, "  Redis:            %s (db %d)\n", cfg.Cache.RedisAddr, cfg.Cache.RedisDB)
			} else {
				fmt.Fprintln(out, "  Redis:            (disabled)")
			}
			fmt.Fprintf(out, "  TTL:              %s\n", cfg.Cache.TTL)
			fmt.Fprintf(out, "  Local entries:    %d\n", cfg.Cache.LocalSize)

			fmt.Fprintln(out, "\nLogging:")
			fmt.Fprintf(out, "  Level:            %s\n", cfg.Logging.Level)
			fmt.Fprintf(out, "  Format:           %s\n", cfg.Logging.Format)
			fmt.Fprintf(out, "  Output:           %s\n", cfg.Logging.Output)

			return nil
		},
	}

	return cmd
}

func newConfigSetStationCommand() *cobra.Command {
	var stationID int64

	cmd := &cobra.Command{
		Use:   "set-station <station-id>",
		Short: "Set the default station",
		Long: `Set the station used by computations that name no --station or --system.
The station must exist in the static data.

Example:
  industry config set-station 60003760`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := fmt.Sscan(args[0], &stationID); err != nil {
				return fmt.Errorf("invalid station ID %q", args[0])
			}

			return withApp(cmd, func(ctx context.Context, app *App) error {
				station, err := app.Static.Station(stationID)
				if err != nil {
					return fmt.Errorf("station %d not found: %w", stationID, err)
				}

				userConfigHandler, err := config.NewUserConfigHandler()
				if err != nil {
					return fmt.Errorf("failed to create user config handler: %w", err)
				}
				if err := userConfigHandler.SetDefaultStation(stationID); err != nil {
					return fmt.Errorf("failed to set default station: %w", err)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "✓ Default station set to %d %s\n", station.ID(), station.Name())
				return nil
			})
		},
	}

	return cmd
}

func newConfigSetRegionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-region <region-id>",
		Short: "Set the default region for price lookups",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var regionID int64
			if _, err := fmt.Sscan(args[0], &regionID); err != nil || regionID <= 0 {
				return fmt.Errorf("invalid region ID %q", args[0])
			}

			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := userConfigHandler.SetDefaultRegion(regionID); err != nil {
				return fmt.Errorf("failed to set default region: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Default region set to %d\n", regionID)
			return nil
		},
	}

	return cmd
}

func newConfigClearCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the default station and region",
		RunE: func(cmd *cobra.Command, args []string) error {
			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := userConfigHandler.Clear(); err != nil {
				return fmt.Errorf("failed to clear user config: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✓ User preferences cleared")
			return nil
		},
	}

	return cmd
}

func orUnset(id int64) string {
	if id == 0 {
		return "(not set)"
	}
	return fmt.Sprintf("%d", id)
}

// maskPassword hides the password of URL-style connection strings
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
