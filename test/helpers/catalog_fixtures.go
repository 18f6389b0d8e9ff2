package helpers

import (
	"testing"
	"time"

	"github.com/andrescamacho/industry-go/internal/domain/industry"
	"github.com/andrescamacho/industry-go/internal/domain/material"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

// Item IDs of the fixture catalog
const (
	Tritanium          int64 = 34
	Pyerite            int64 = 35
	Mexallon           int64 = 36
	Rifter             int64 = 587
	Platinum           int64 = 16640
	Technetium         int64 = 16644
	PlatinumTechnite   int64 = 16662
	Fullerides         int64 = 16679
	UnrefinedTechnite  int64 = 17960
	RAMStarshipTech    int64 = 11478
	CompressedVeldspar int64 = 28430
	CompressedScordite int64 = 28429
	MechanicalDatacore int64 = 20424
)

// Blueprint, reaction and location IDs of the fixture catalog
const (
	RifterBlueprint      int64 = 691
	RAMBlueprint         int64 = 11479
	JaguarBlueprint      int64 = 11401
	AlchemyReaction      int64 = 17945
	TechniteReaction     int64 = 17961
	FulleridesReaction   int64 = 17972
	Jita                 int64 = 30000142
	TheForge             int64 = 10000002
	Jita44               int64 = 60003760
	JitaCaldariBusiness  int64 = 60003757
	JitaOutpost          int64 = 61000500
	CaldariNavy          int64 = 1000035
	CaldariBusiness      int64 = 1000036
	CaldariState         int64 = 500001
	ReactorArray         int64 = 16869
	ManufacturingLine    int64 = 1
	EquipmentLine        int64 = 2
	ReactionLine         int64 = 10
	CopyLine             int64 = 20
	InventionLine        int64 = 30
	OutpostLine          int64 = 40
	MaterialsCategory    int64 = 4
	ShipCategory         int64 = 6
	CommodityCategory    int64 = 17
	ReactionCategory     int64 = 24
	BlueprintCategory    int64 = 9
	MoonMaterialGroup    int64 = 427
	IntermediateGroup    int64 = 428
	CompositeGroup       int64 = 429
	FrigateGroup         int64 = 25
	ToolGroup            int64 = 332
	SimpleReactionGroup  int64 = 436
	ComplexReactionGroup int64 = 484
	FrigateBPGroup       int64 = 105
	ToolBPGroup          int64 = 332001
)

// FixtureTime is the observation time of the fixture industry indices
var FixtureTime = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

// FixedCharacter is a CharacterModifier returning fixed factors, or Err for every call when set
type FixedCharacter struct {
	TimeFactor      float64
	ReprocessingTax float64
	Specialization  float64
	Broker          float64
	SalesTax        float64
	InventionFactor float64
	Err             error
}

// NeutralCharacter applies no bonuses, no reprocessing tax and a 3% broker / 2% sales tax
func NeutralCharacter() *FixedCharacter {
	return &FixedCharacter{TimeFactor: 1, ReprocessingTax: 1, Specialization: 1, Broker: 0.03, SalesTax: 0.02, InventionFactor: 1}
}

func (f *FixedCharacter) SkillTimeFactor(shared.Activity) (float64, error) {
	return f.TimeFactor, f.Err
}

func (f *FixedCharacter) ImplantTimeFactor(shared.Activity) (float64, error) {
	return 1, f.Err
}

func (f *FixedCharacter) ReprocessingTaxFactor(int64) (float64, error) {
	return f.ReprocessingTax, f.Err
}

func (f *FixedCharacter) ReprocessingSpecializationFactor(int64) (float64, error) {
	return f.Specialization, f.Err
}

func (f *FixedCharacter) BrokerTax(int64, int64) (float64, error) {
	return f.Broker, f.Err
}

func (f *FixedCharacter) SellTaxFactor(int64, int64) (float64, error) {
	return 1 - f.Broker - f.SalesTax, f.Err
}

func (f *FixedCharacter) BuyTaxFactor(int64, int64) (float64, error) {
	return 1 + f.Broker, f.Err
}

func (f *FixedCharacter) InventionChanceFactor(int64, []int64) (float64, error) {
	return f.InventionFactor, f.Err
}

func mustLine(t testing.TB, id int64, name string, activity shared.Activity, groups, categories map[int64]industry.Modifier) *industry.AssemblyLine {
	line, err := industry.NewAssemblyLine(id, name, activity, industry.NeutralModifier(), groups, categories)
	if err != nil {
		t.Fatalf("failed to create assembly line %d: %v", id, err)
	}
	return line
}

func tax(v float64) *float64 {
	return &v
}

// NewFixtureCatalog builds a small catalog covering moon reactions (including an alchemy
// reaction), a two-level manufacturing chain, invention and reprocessable ores.
//
// Alchemy reaction, per cycle: 200 Platinum + 10 Technetium -> 1 Unrefined Platinum Technite,
// which reprocesses into 40 Platinum Technite + 200 Platinum.
func NewFixtureCatalog(t testing.TB) *industry.Catalog {
	t.Helper()
	neutral := industry.NeutralModifier()

	b := industry.NewCatalogBuilder()
	b.AddItem(industry.ItemAttributes{TypeID: Tritanium, GroupID: 18, CategoryID: MaterialsCategory, Name: "Tritanium", Volume: 0.01, BasePrice: 2}, 1857)
	b.AddItem(industry.ItemAttributes{TypeID: Pyerite, GroupID: 18, CategoryID: MaterialsCategory, Name: "Pyerite", Volume: 0.01, BasePrice: 8}, 1857)
	b.AddItem(industry.ItemAttributes{TypeID: Mexallon, GroupID: 18, CategoryID: MaterialsCategory, Name: "Mexallon", Volume: 0.01, BasePrice: 32}, 1857)
	b.AddItem(industry.ItemAttributes{TypeID: Platinum, GroupID: MoonMaterialGroup, CategoryID: MaterialsCategory, Name: "Platinum", Volume: 0.05}, 501)
	b.AddItem(industry.ItemAttributes{TypeID: Technetium, GroupID: MoonMaterialGroup, CategoryID: MaterialsCategory, Name: "Technetium", Volume: 0.05}, 501)
	b.AddItem(industry.ItemAttributes{TypeID: PlatinumTechnite, GroupID: IntermediateGroup, CategoryID: MaterialsCategory, Name: "Platinum Technite", Volume: 1}, 500)
	b.AddItem(industry.ItemAttributes{TypeID: Fullerides, GroupID: CompositeGroup, CategoryID: MaterialsCategory, Name: "Fullerides", Volume: 0.15}, 499)
	b.AddItem(industry.ItemAttributes{
		TypeID: UnrefinedTechnite, GroupID: IntermediateGroup, CategoryID: MaterialsCategory,
		Name: "Unrefined Platinum Technite", Volume: 1, PortionSize: 1,
		ReprocessingMaterials: map[int64]float64{PlatinumTechnite: 40, Platinum: 200},
	}, 0)
	b.AddItem(industry.ItemAttributes{TypeID: RAMStarshipTech, GroupID: ToolGroup, CategoryID: CommodityCategory, Name: "R.A.M.- Starship Tech", Volume: 0.04}, 1908)
	b.AddItem(industry.ItemAttributes{TypeID: Rifter, GroupID: FrigateGroup, CategoryID: ShipCategory, Name: "Rifter", Volume: 27289}, 64)
	b.AddItem(industry.ItemAttributes{TypeID: MechanicalDatacore, GroupID: 333, CategoryID: CommodityCategory, Name: "Datacore - Mechanical Engineering", Volume: 0.1}, 1880)
	b.AddItem(industry.ItemAttributes{
		TypeID: CompressedVeldspar, GroupID: 462, CategoryID: 25, Name: "Compressed Veldspar", Volume: 0.1, PortionSize: 1,
		ReprocessingMaterials: map[int64]float64{Tritanium: 400},
	}, 512)
	b.AddItem(industry.ItemAttributes{
		TypeID: CompressedScordite, GroupID: 460, CategoryID: 25, Name: "Compressed Scordite", Volume: 0.19, PortionSize: 1,
		ReprocessingMaterials: map[int64]float64{Tritanium: 150, Pyerite: 90},
	}, 512)

	b.AddReaction(industry.ReactionAttributes{
		TypeID: AlchemyReaction, GroupID: SimpleReactionGroup, CategoryID: ReactionCategory,
		Name:      "Unrefined Platinum Technite Reaction",
		Inputs:    map[int64]float64{Platinum: 200, Technetium: 10},
		Outputs:   map[int64]float64{UnrefinedTechnite: 1},
		ProductID: PlatinumTechnite,
	})
	b.AddReaction(industry.ReactionAttributes{
		TypeID: TechniteReaction, GroupID: SimpleReactionGroup, CategoryID: ReactionCategory,
		Name:    "Platinum Technite Reaction",
		Inputs:  map[int64]float64{Platinum: 100, Technetium: 100},
		Outputs: map[int64]float64{PlatinumTechnite: 200},
		Skills:  map[int64]int{industry.SkillReactions: 1},
	})
	b.AddReaction(industry.ReactionAttributes{
		TypeID: FulleridesReaction, GroupID: ComplexReactionGroup, CategoryID: ReactionCategory,
		Name:    "Fullerides Reaction",
		Inputs:  map[int64]float64{PlatinumTechnite: 100, Technetium: 50},
		Outputs: map[int64]float64{Fullerides: 3000},
		Skills:  map[int64]int{industry.SkillReactions: 3},
	})

	industrySkill := material.NewSkillMap()
	_ = industrySkill.Require(industry.SkillIndustry, 1)
	b.AddBlueprint(industry.BlueprintAttributes{
		TypeID: RAMBlueprint, GroupID: ToolBPGroup, CategoryID: BlueprintCategory, Name: "R.A.M.- Starship Tech Blueprint",
		ProductID: RAMStarshipTech, ProductQuantity: 100, MaxRuns: 200, BaseJobValue: 25000,
		Manufacturing: industry.ActivityData{
			Seconds:   600,
			Materials: material.MustLedger(map[int64]float64{Tritanium: 500, Fullerides: 20}),
			Skills:    industrySkill,
		},
	})
	b.AddBlueprint(industry.BlueprintAttributes{
		TypeID: RifterBlueprint, GroupID: FrigateBPGroup, CategoryID: BlueprintCategory, Name: "Rifter Blueprint",
		ProductID: Rifter, ProductQuantity: 1, MaxRuns: 10, BaseJobValue: 400000,
		Manufacturing: industry.ActivityData{
			Seconds:   6000,
			Materials: material.MustLedger(map[int64]float64{Tritanium: 32000, Pyerite: 6000, Mexallon: 2500, RAMStarshipTech: 2}),
			Skills:    industrySkill,
		},
		Copying: &industry.ActivityData{Seconds: 4800, Materials: material.NewLedger(), Skills: industrySkill},
		Invention: &industry.InventionData{
			ActivityData: industry.ActivityData{
				Seconds:   63900,
				Materials: material.MustLedger(map[int64]float64{MechanicalDatacore: 2}),
				Skills:    industrySkill,
			},
			BaseChance:         0.3,
			ProductBlueprintID: JaguarBlueprint,
			ProductRuns:        10,
			EncryptionSkillID:  21791,
			DatacoreSkillIDs:   []int64{11452},
		},
	})

	b.AddAssemblyLine(mustLine(t, ManufacturingLine, "Station manufacturing", shared.ActivityManufacturing, nil,
		map[int64]industry.Modifier{ShipCategory: neutral, CommodityCategory: neutral}))
	b.AddAssemblyLine(mustLine(t, EquipmentLine, "Equipment assembly array", shared.ActivityManufacturing, nil,
		map[int64]industry.Modifier{CommodityCategory: {M: 0.98, T: 0.75, C: 1}}))
	b.AddAssemblyLine(mustLine(t, ReactionLine, "Reactor array", shared.ActivityReaction, nil,
		map[int64]industry.Modifier{ReactionCategory: neutral}))
	b.AddAssemblyLine(mustLine(t, CopyLine, "Station copying", shared.ActivityCopying, nil,
		map[int64]industry.Modifier{BlueprintCategory: neutral}))
	b.AddAssemblyLine(mustLine(t, InventionLine, "Station invention", shared.ActivityInvention, nil,
		map[int64]industry.Modifier{BlueprintCategory: neutral}))
	b.AddAssemblyLine(mustLine(t, OutpostLine, "Outpost manufacturing", shared.ActivityManufacturing, nil,
		map[int64]industry.Modifier{ShipCategory: {M: 1, T: 0.8, C: 1}}))

	b.AddSolarSystem(industry.NewSolarSystem(Jita, "Jita", TheForge, 0.95,
		[]int64{Jita44, JitaCaldariBusiness, JitaOutpost},
		map[shared.Activity]industry.IndustryIndex{
			shared.ActivityManufacturing: {Value: 0.05, ObservedAt: FixtureTime},
			shared.ActivityReaction:      {Value: 0.02, ObservedAt: FixtureTime},
			shared.ActivityCopying:       {Value: 0.01, ObservedAt: FixtureTime},
			shared.ActivityInvention:     {Value: 0.03, ObservedAt: FixtureTime},
		}))

	b.AddStation(industry.StationAttributes{
		ID: Jita44, Name: "Jita IV - Moon 4 - Caldari Navy Assembly Plant", SolarSystemID: Jita,
		CorporationID: CaldariNavy, FactionID: CaldariState,
		Services:               industry.ServiceMarket | industry.ServiceReprocessing,
		ReprocessingEfficiency: 0.5,
		AssemblyLineIDs: map[shared.Activity][]int64{
			shared.ActivityManufacturing: {ManufacturingLine},
			shared.ActivityCopying:       {CopyLine},
			shared.ActivityInvention:     {InventionLine},
		},
	})
	b.AddStation(industry.StationAttributes{
		ID: JitaCaldariBusiness, Name: "Jita IV - Moon 5 - Caldari Business Tribunal", SolarSystemID: Jita,
		CorporationID: CaldariBusiness, FactionID: CaldariState,
		Services:               industry.ServiceReprocessing,
		ReprocessingEfficiency: 0.3,
		Tax:                    tax(0.05),
		AssemblyLineIDs: map[shared.Activity][]int64{
			shared.ActivityManufacturing: {EquipmentLine, ManufacturingLine},
		},
	})
	b.AddStation(industry.StationAttributes{
		ID: JitaOutpost, Name: "Jita outpost", SolarSystemID: Jita,
		CorporationID: 98000001,
		AssemblyLineIDs: map[shared.Activity][]int64{
			shared.ActivityManufacturing: {OutpostLine},
		},
	})

	b.AddInstallation(ReactorArray, map[shared.Activity][]int64{shared.ActivityReaction: {ReactionLine}})

	catalog, err := b.Build()
	if err != nil {
		t.Fatalf("failed to build fixture catalog: %v", err)
	}
	return catalog
}

// NewReactionContext returns a context at the fixture reactor array in Jita with no
// facility tax and a character without bonuses or reprocessing tax
func NewReactionContext(t testing.TB, catalog *industry.Catalog) *industry.Context {
	t.Helper()
	ctx, err := industry.NewContextForInstallation(catalog, Jita, ReactorArray, 0, industry.Providers{
		Character: NeutralCharacter(),
		Clock:     shared.NewMockClock(FixtureTime),
	})
	if err != nil {
		t.Fatalf("failed to create reaction context: %v", err)
	}
	return ctx
}

// NewStationContext returns a context for the fixture station Jita 4-4
func NewStationContext(t testing.TB, catalog *industry.Catalog, blueprints industry.BlueprintModifier) *industry.Context {
	t.Helper()
	ctx, err := industry.NewContextForStation(catalog, Jita44, 0, industry.Providers{
		Character:  NeutralCharacter(),
		Blueprints: blueprints,
		Clock:      shared.NewMockClock(FixtureTime),
	})
	if err != nil {
		t.Fatalf("failed to create station context: %v", err)
	}
	return ctx
}
