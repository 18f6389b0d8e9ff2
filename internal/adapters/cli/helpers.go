package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/industry-go/internal/application/industry/services"
	"github.com/andrescamacho/industry-go/internal/domain/industry"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
	"github.com/andrescamacho/industry-go/internal/infrastructure/config"
)

// locationFlags select where a computation runs
type locationFlags struct {
	stationID          int64
	systemID           int64
	installationTypeID int64
	taxRate            float64
}

func (l *locationFlags) bind(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&l.stationID, "station", 0, "NPC station or outpost ID")
	cmd.Flags().Int64Var(&l.systemID, "system", 0, "Solar system ID (all NPC stations, or the installation's system)")
	cmd.Flags().Int64Var(&l.installationTypeID, "installation", 0, "Installation type ID, requires --system")
	cmd.Flags().Float64Var(&l.taxRate, "tax", 0, "Facility tax rate override, 0..1")
}

// resolve builds the location from flags, falling back to the default station
// from the user config
func (l *locationFlags) resolve(cmd *cobra.Command) (services.Location, error) {
	loc := services.Location{
		StationID:          l.stationID,
		SystemID:           l.systemID,
		InstallationTypeID: l.installationTypeID,
	}
	if cmd.Flags().Changed("tax") {
		tax := l.taxRate
		loc.TaxRate = &tax
	}
	if loc.InstallationTypeID > 0 && loc.SystemID == 0 {
		return loc, fmt.Errorf("--installation requires --system")
	}
	if loc.StationID > 0 || loc.SystemID > 0 {
		return loc, nil
	}

	userCfg, err := loadUserConfig()
	if err != nil {
		return loc, err
	}
	if userCfg.DefaultStationID == 0 {
		return loc, fmt.Errorf("no location specified: use --station or --system, or set a default with 'industry config set-station'")
	}
	loc.StationID = userCfg.DefaultStationID
	return loc, nil
}

func loadUserConfig() (*config.UserConfig, error) {
	handler, err := config.NewUserConfigHandler()
	if err != nil {
		return nil, err
	}
	return handler.Load()
}

// resolveRegion returns the --region flag, then the user default, then the configured region
func resolveRegion(flagValue int64, cfg *config.Config) int64 {
	if flagValue > 0 {
		return flagValue
	}
	if userCfg, err := loadUserConfig(); err == nil && userCfg.DefaultRegionID > 0 {
		return userCfg.DefaultRegionID
	}
	if cfg != nil {
		return cfg.Industry.RegionID
	}
	return 0
}

// resolveTypeID accepts a numeric type ID or an exact item name
func resolveTypeID(static industry.StaticData, arg string) (int64, error) {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return id, nil
	}
	id, err := static.ItemIDByName(arg)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return 0, fmt.Errorf("unknown item %q", arg)
		}
		return 0, err
	}
	return id, nil
}

func resolveTypeIDs(static industry.StaticData, args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := resolveTypeID(static, arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// itemName returns the item's name, or its ID when unknown
func itemName(static industry.StaticData, typeID int64) string {
	if static != nil {
		if item, err := static.Item(typeID); err == nil {
			return item.Name()
		}
	}
	return strconv.FormatInt(typeID, 10)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func formatSeconds(seconds float64) string {
	return time.Duration(seconds * float64(time.Second)).Round(time.Second).String()
}

func formatISK(value float64) string {
	return fmt.Sprintf("%s ISK", strconv.FormatFloat(value, 'f', 2, 64))
}

func formatOptionalPrice(p *float64) string {
	if p == nil {
		return "-"
	}
	return strconv.FormatFloat(*p, 'f', 2, 64)
}

func formatOptionalInt(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}
