package sde

import (
	"context"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/andrescamacho/industry-go/internal/domain/industry"
	"github.com/andrescamacho/industry-go/internal/domain/material"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

const encryptionSkillSuffix = "encryption methods"

// SQLLoader reads a static data dump with the standard table layout
type SQLLoader struct {
	db *sqlx.DB
}

// OpenSQL connects to a dump. driver is "sqlite" or "mysql".
func OpenSQL(driver, dsn string) (*SQLLoader, error) {
	switch driver {
	case "sqlite", "mysql":
	default:
		return nil, fmt.Errorf("unsupported static data driver: %s", driver)
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open static data: %w", err)
	}
	return &SQLLoader{db: db}, nil
}

// NewSQLLoader wraps an existing connection
func NewSQLLoader(db *sqlx.DB) *SQLLoader {
	return &SQLLoader{db: db}
}

func (l *SQLLoader) Close() error {
	return l.db.Close()
}

type typeRow struct {
	TypeID        int64   `db:"type_id"`
	GroupID       int64   `db:"group_id"`
	CategoryID    int64   `db:"category_id"`
	Name          string  `db:"name"`
	Volume        float64 `db:"volume"`
	PortionSize   int64   `db:"portion_size"`
	BasePrice     float64 `db:"base_price"`
	MarketGroupID int64   `db:"market_group_id"`
}

type quantityRow struct {
	TypeID     int64   `db:"type_id"`
	ActivityID int     `db:"activity_id"`
	OtherID    int64   `db:"other_id"`
	Quantity   float64 `db:"quantity"`
}

type activityRow struct {
	TypeID     int64   `db:"type_id"`
	ActivityID int     `db:"activity_id"`
	Seconds    float64 `db:"seconds"`
}

type blueprintRow struct {
	TypeID  int64 `db:"type_id"`
	MaxRuns int64 `db:"max_runs"`
}

type systemRow struct {
	ID       int64   `db:"id"`
	Name     string  `db:"name"`
	RegionID int64   `db:"region_id"`
	Security float64 `db:"security"`
}

type stationRow struct {
	ID                     int64   `db:"id"`
	Name                   string  `db:"name"`
	SolarSystemID          int64   `db:"solar_system_id"`
	CorporationID          int64   `db:"corporation_id"`
	FactionID              int64   `db:"faction_id"`
	OperationID            int64   `db:"operation_id"`
	ReprocessingEfficiency float64 `db:"reprocessing_efficiency"`
}

type lineRow struct {
	ID         int64   `db:"id"`
	Name       string  `db:"name"`
	ActivityID int     `db:"activity_id"`
	Time       float64 `db:"time_multiplier"`
	Material   float64 `db:"material_multiplier"`
	Cost       float64 `db:"cost_multiplier"`
}

type lineDetailRow struct {
	LineID   int64   `db:"line_id"`
	ClassID  int64   `db:"class_id"`
	Time     float64 `db:"time_multiplier"`
	Material float64 `db:"material_multiplier"`
	Cost     float64 `db:"cost_multiplier"`
}

type pairRow struct {
	OwnerID int64 `db:"owner_id"`
	OtherID int64 `db:"other_id"`
}

// activity key of the industry tables
type activityKey struct {
	typeID     int64
	activityID int
}

// Load reads every table and builds the catalog
func (l *SQLLoader) Load(ctx context.Context) (*industry.Catalog, error) {
	var types []typeRow
	if err := l.db.SelectContext(ctx, &types, `
		SELECT t.typeID AS type_id, t.groupID AS group_id, g.categoryID AS category_id,
		       t.typeName AS name, COALESCE(t.volume, 0) AS volume,
		       COALESCE(t.portionSize, 1) AS portion_size, COALESCE(t.basePrice, 0) AS base_price,
		       COALESCE(t.marketGroupID, 0) AS market_group_id
		FROM invTypes t JOIN invGroups g ON g.groupID = t.groupID`); err != nil {
		return nil, fmt.Errorf("failed to load types: %w", err)
	}

	var typeMaterials []quantityRow
	if err := l.db.SelectContext(ctx, &typeMaterials, `
		SELECT typeID AS type_id, 0 AS activity_id, materialTypeID AS other_id, quantity
		FROM invTypeMaterials`); err != nil {
		return nil, fmt.Errorf("failed to load reprocessing materials: %w", err)
	}

	industryData, err := l.loadIndustry(ctx)
	if err != nil {
		return nil, err
	}

	b := industry.NewCatalogBuilder()
	reprocessing := make(map[int64]map[int64]float64)
	for _, row := range typeMaterials {
		if reprocessing[row.TypeID] == nil {
			reprocessing[row.TypeID] = make(map[int64]float64)
		}
		reprocessing[row.TypeID][row.OtherID] = row.Quantity
	}
	typesByID := make(map[int64]typeRow, len(types))
	for _, t := range types {
		typesByID[t.TypeID] = t
		b.AddItem(industry.ItemAttributes{
			TypeID:                t.TypeID,
			GroupID:               t.GroupID,
			CategoryID:            t.CategoryID,
			Name:                  t.Name,
			Volume:                t.Volume,
			PortionSize:           t.PortionSize,
			BasePrice:             t.BasePrice,
			ReprocessingMaterials: reprocessing[t.TypeID],
		}, t.MarketGroupID)
	}

	if err := industryData.addTo(b, typesByID); err != nil {
		return nil, err
	}
	if err := l.loadLocations(ctx, b); err != nil {
		return nil, err
	}

	return b.Build()
}

type industryTables struct {
	blueprints    []blueprintRow
	activities    map[activityKey]float64
	materials     map[activityKey]map[int64]float64
	products      map[activityKey]map[int64]float64
	skills        map[activityKey]map[int64]int
	probabilities map[activityKey]float64
}

func (l *SQLLoader) loadIndustry(ctx context.Context) (*industryTables, error) {
	t := &industryTables{
		activities:    make(map[activityKey]float64),
		materials:     make(map[activityKey]map[int64]float64),
		products:      make(map[activityKey]map[int64]float64),
		skills:        make(map[activityKey]map[int64]int),
		probabilities: make(map[activityKey]float64),
	}

	if err := l.db.SelectContext(ctx, &t.blueprints, `
		SELECT typeID AS type_id, COALESCE(maxProductionLimit, 1) AS max_runs FROM industryBlueprints`); err != nil {
		return nil, fmt.Errorf("failed to load blueprints: %w", err)
	}

	var activities []activityRow
	if err := l.db.SelectContext(ctx, &activities, `
		SELECT typeID AS type_id, activityID AS activity_id, time AS seconds FROM industryActivity`); err != nil {
		return nil, fmt.Errorf("failed to load activities: %w", err)
	}
	for _, row := range activities {
		t.activities[activityKey{row.TypeID, row.ActivityID}] = row.Seconds
	}

	tables := []struct {
		query  string
		target map[activityKey]map[int64]float64
	}{
		{`SELECT typeID AS type_id, activityID AS activity_id, materialTypeID AS other_id, quantity
		  FROM industryActivityMaterials`, t.materials},
		{`SELECT typeID AS type_id, activityID AS activity_id, productTypeID AS other_id, quantity
		  FROM industryActivityProducts`, t.products},
	}
	for _, table := range tables {
		var rows []quantityRow
		if err := l.db.SelectContext(ctx, &rows, table.query); err != nil {
			return nil, fmt.Errorf("failed to load activity ledgers: %w", err)
		}
		for _, row := range rows {
			key := activityKey{row.TypeID, row.ActivityID}
			if table.target[key] == nil {
				table.target[key] = make(map[int64]float64)
			}
			table.target[key][row.OtherID] += row.Quantity
		}
	}

	var skills []quantityRow
	if err := l.db.SelectContext(ctx, &skills, `
		SELECT typeID AS type_id, activityID AS activity_id, skillID AS other_id, level AS quantity
		FROM industryActivitySkills`); err != nil {
		return nil, fmt.Errorf("failed to load activity skills: %w", err)
	}
	for _, row := range skills {
		key := activityKey{row.TypeID, row.ActivityID}
		if t.skills[key] == nil {
			t.skills[key] = make(map[int64]int)
		}
		t.skills[key][row.OtherID] = int(row.Quantity)
	}

	var probabilities []quantityRow
	if err := l.db.SelectContext(ctx, &probabilities, `
		SELECT typeID AS type_id, activityID AS activity_id, productTypeID AS other_id, probability AS quantity
		FROM industryActivityProbabilities`); err != nil {
		return nil, fmt.Errorf("failed to load activity probabilities: %w", err)
	}
	for _, row := range probabilities {
		t.probabilities[activityKey{row.TypeID, row.ActivityID}] = row.Quantity
	}

	return t, nil
}

func (t *industryTables) activityData(typeID int64, activity shared.Activity) (industry.ActivityData, bool, error) {
	key := activityKey{typeID, int(activity)}
	seconds, ok := t.activities[key]
	if !ok {
		return industry.ActivityData{}, false, nil
	}
	materials, err := material.LedgerFrom(t.materials[key])
	if err != nil {
		return industry.ActivityData{}, false, fmt.Errorf("blueprint %d %s materials: %w", typeID, activity, err)
	}
	skills, err := skillMap(t.skills[key])
	if err != nil {
		return industry.ActivityData{}, false, fmt.Errorf("blueprint %d %s skills: %w", typeID, activity, err)
	}
	return industry.ActivityData{Seconds: seconds, Materials: materials, Skills: skills}, true, nil
}

// addTo registers reaction formulas and blueprints. A blueprint with a reaction activity
// is a reaction; one with a manufacturing product is a manufacturing blueprint.
func (t *industryTables) addTo(b *industry.CatalogBuilder, types map[int64]typeRow) error {
	for _, row := range t.blueprints {
		info := types[row.TypeID]
		reactionKey := activityKey{row.TypeID, int(shared.ActivityReaction)}
		if _, ok := t.activities[reactionKey]; ok {
			b.AddReaction(industry.ReactionAttributes{
				TypeID:     row.TypeID,
				GroupID:    info.GroupID,
				CategoryID: info.CategoryID,
				Name:       info.Name,
				Inputs:     t.materials[reactionKey],
				Outputs:    t.products[reactionKey],
				Skills:     t.skills[reactionKey],
			})
			continue
		}

		manufacturingKey := activityKey{row.TypeID, int(shared.ActivityManufacturing)}
		productID, quantity := singleProduct(t.products[manufacturingKey])
		if productID == 0 {
			continue
		}
		manufacturing, _, err := t.activityData(row.TypeID, shared.ActivityManufacturing)
		if err != nil {
			return err
		}

		attrs := industry.BlueprintAttributes{
			TypeID:          row.TypeID,
			GroupID:         info.GroupID,
			CategoryID:      info.CategoryID,
			Name:            info.Name,
			ProductID:       productID,
			ProductQuantity: int64(quantity),
			MaxRuns:         row.MaxRuns,
			BaseJobValue:    baseJobValue(manufacturing.Materials, types),
			Manufacturing:   manufacturing,
		}

		copying, ok, err := t.activityData(row.TypeID, shared.ActivityCopying)
		if err != nil {
			return err
		}
		if ok {
			attrs.Copying = &copying
		}

		invention, ok, err := t.activityData(row.TypeID, shared.ActivityInvention)
		if err != nil {
			return err
		}
		if ok {
			inventionKey := activityKey{row.TypeID, int(shared.ActivityInvention)}
			productBlueprintID, runs := singleProduct(t.products[inventionKey])
			encryptionSkillID, datacoreSkillIDs := splitInventionSkills(t.skills[inventionKey], types)
			attrs.Invention = &industry.InventionData{
				ActivityData:       invention,
				BaseChance:         t.probabilities[inventionKey],
				ProductBlueprintID: productBlueprintID,
				ProductRuns:        int64(runs),
				EncryptionSkillID:  encryptionSkillID,
				DatacoreSkillIDs:   datacoreSkillIDs,
			}
		}

		b.AddBlueprint(attrs)
	}
	return nil
}

// singleProduct returns the lowest product ID and its quantity
func singleProduct(products map[int64]float64) (int64, float64) {
	var id int64
	for productID := range products {
		if id == 0 || productID < id {
			id = productID
		}
	}
	return id, products[id]
}

// baseJobValue values one run's materials at base price
func baseJobValue(materials *material.Ledger, types map[int64]typeRow) float64 {
	value := 0.0
	for _, entry := range materials.Entries() {
		value += types[entry.ItemID].BasePrice * entry.Quantity
	}
	return value
}

// splitInventionSkills separates the encryption skill from the datacore skills
func splitInventionSkills(skills map[int64]int, types map[int64]typeRow) (int64, []int64) {
	var encryption int64
	var datacores []int64
	for _, id := range sortedSkillIDs(skills) {
		if strings.HasSuffix(strings.ToLower(types[id].Name), encryptionSkillSuffix) {
			encryption = id
			continue
		}
		datacores = append(datacores, id)
	}
	return encryption, datacores
}

func (l *SQLLoader) loadLocations(ctx context.Context, b *industry.CatalogBuilder) error {
	var systems []systemRow
	if err := l.db.SelectContext(ctx, &systems, `
		SELECT solarSystemID AS id, solarSystemName AS name, regionID AS region_id, security
		FROM mapSolarSystems`); err != nil {
		return fmt.Errorf("failed to load solar systems: %w", err)
	}

	var stations []stationRow
	if err := l.db.SelectContext(ctx, &stations, `
		SELECT s.stationID AS id, s.stationName AS name, s.solarSystemID AS solar_system_id,
		       s.corporationID AS corporation_id, COALESCE(c.factionID, 0) AS faction_id,
		       COALESCE(s.operationID, 0) AS operation_id,
		       COALESCE(s.reprocessingEfficiency, 0) AS reprocessing_efficiency
		FROM staStations s LEFT JOIN crpNPCCorporations c ON c.corporationID = s.corporationID`); err != nil {
		return fmt.Errorf("failed to load stations: %w", err)
	}

	var services []pairRow
	if err := l.db.SelectContext(ctx, &services, `
		SELECT operationID AS owner_id, serviceID AS other_id FROM staOperationServices`); err != nil {
		return fmt.Errorf("failed to load station services: %w", err)
	}
	serviceMask := make(map[int64]int64)
	for _, row := range services {
		serviceMask[row.OwnerID] |= row.OtherID
	}

	lines, err := l.loadAssemblyLines(ctx)
	if err != nil {
		return err
	}
	for _, line := range lines {
		b.AddAssemblyLine(line)
	}

	var stationLines []pairRow
	if err := l.db.SelectContext(ctx, &stationLines, `
		SELECT stationID AS owner_id, assemblyLineTypeID AS other_id FROM ramAssemblyLineStations`); err != nil {
		return fmt.Errorf("failed to load station assembly lines: %w", err)
	}
	linesByStation := groupLines(stationLines, lines)

	var installationLines []pairRow
	if err := l.db.SelectContext(ctx, &installationLines, `
		SELECT installationTypeID AS owner_id, assemblyLineTypeID AS other_id FROM ramInstallationTypeContents`); err != nil {
		return fmt.Errorf("failed to load installation assembly lines: %w", err)
	}
	for installationTypeID, byActivity := range groupLines(installationLines, lines) {
		b.AddInstallation(installationTypeID, byActivity)
	}

	stationsBySystem := make(map[int64][]int64)
	for _, st := range stations {
		stationsBySystem[st.SolarSystemID] = append(stationsBySystem[st.SolarSystemID], st.ID)
		b.AddStation(industry.StationAttributes{
			ID:                     st.ID,
			Name:                   st.Name,
			SolarSystemID:          st.SolarSystemID,
			CorporationID:          st.CorporationID,
			FactionID:              st.FactionID,
			Services:               serviceMask[st.OperationID],
			ReprocessingEfficiency: st.ReprocessingEfficiency,
			AssemblyLineIDs:        linesByStation[st.ID],
		})
	}

	// Cost indices are not part of the dump; they come from the index repository
	for _, s := range systems {
		b.AddSolarSystem(industry.NewSolarSystem(s.ID, s.Name, s.RegionID, s.Security, stationsBySystem[s.ID], nil))
	}
	return nil
}

func (l *SQLLoader) loadAssemblyLines(ctx context.Context) (map[int64]*industry.AssemblyLine, error) {
	var rows []lineRow
	if err := l.db.SelectContext(ctx, &rows, `
		SELECT assemblyLineTypeID AS id, assemblyLineTypeName AS name, activityID AS activity_id,
		       baseTimeMultiplier AS time_multiplier, baseMaterialMultiplier AS material_multiplier,
		       COALESCE(baseCostMultiplier, 1) AS cost_multiplier
		FROM ramAssemblyLineTypes`); err != nil {
		return nil, fmt.Errorf("failed to load assembly lines: %w", err)
	}

	details := make(map[string]map[int64]map[int64]industry.Modifier)
	for table, classColumn := range map[string]string{
		"ramAssemblyLineTypeDetailPerGroup":    "groupID",
		"ramAssemblyLineTypeDetailPerCategory": "categoryID",
	} {
		var detailRows []lineDetailRow
		query := fmt.Sprintf(`
			SELECT assemblyLineTypeID AS line_id, %s AS class_id, timeMultiplier AS time_multiplier,
			       materialMultiplier AS material_multiplier, COALESCE(costMultiplier, 1) AS cost_multiplier
			FROM %s`, classColumn, table)
		if err := l.db.SelectContext(ctx, &detailRows, query); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", table, err)
		}
		byLine := make(map[int64]map[int64]industry.Modifier)
		for _, d := range detailRows {
			if byLine[d.LineID] == nil {
				byLine[d.LineID] = make(map[int64]industry.Modifier)
			}
			byLine[d.LineID][d.ClassID] = industry.Modifier{M: d.Material, T: d.Time, C: d.Cost}
		}
		details[table] = byLine
	}

	lines := make(map[int64]*industry.AssemblyLine, len(rows))
	for _, row := range rows {
		line, err := industry.NewAssemblyLine(
			row.ID,
			row.Name,
			shared.Activity(row.ActivityID),
			industry.Modifier{M: row.Material, T: row.Time, C: row.Cost},
			details["ramAssemblyLineTypeDetailPerGroup"][row.ID],
			details["ramAssemblyLineTypeDetailPerCategory"][row.ID],
		)
		if err != nil {
			return nil, err
		}
		lines[row.ID] = line
	}
	return lines, nil
}

// groupLines groups assembly line IDs per owner and activity, skipping unknown lines
func groupLines(pairs []pairRow, lines map[int64]*industry.AssemblyLine) map[int64]map[shared.Activity][]int64 {
	grouped := make(map[int64]map[shared.Activity][]int64)
	for _, pair := range pairs {
		line, ok := lines[pair.OtherID]
		if !ok {
			continue
		}
		if grouped[pair.OwnerID] == nil {
			grouped[pair.OwnerID] = make(map[shared.Activity][]int64)
		}
		grouped[pair.OwnerID][line.Activity()] = append(grouped[pair.OwnerID][line.Activity()], line.ID())
	}
	return grouped
}
