package sde

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/industry-go/internal/domain/industry"
	"github.com/andrescamacho/industry-go/internal/domain/material"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

// yamlCatalog is the document layout of a hand-written static data catalog
type yamlCatalog struct {
	Items         []yamlItem         `yaml:"items"`
	Reactions     []yamlReaction     `yaml:"reactions"`
	Blueprints    []yamlBlueprint    `yaml:"blueprints"`
	AssemblyLines []yamlAssemblyLine `yaml:"assembly_lines"`
	SolarSystems  []yamlSolarSystem  `yaml:"solar_systems"`
	Stations      []yamlStation      `yaml:"stations"`
	Installations []yamlInstallation `yaml:"installations"`
}

type yamlItem struct {
	ID            int64             `yaml:"id"`
	Name          string            `yaml:"name"`
	GroupID       int64             `yaml:"group_id"`
	CategoryID    int64             `yaml:"category_id"`
	Volume        float64           `yaml:"volume"`
	PortionSize   int64             `yaml:"portion_size"`
	BasePrice     float64           `yaml:"base_price"`
	MarketGroupID int64             `yaml:"market_group_id"`
	Reprocessing  map[int64]float64 `yaml:"reprocessing"`
}

type yamlReaction struct {
	ID         int64             `yaml:"id"`
	Name       string            `yaml:"name"`
	GroupID    int64             `yaml:"group_id"`
	CategoryID int64             `yaml:"category_id"`
	Inputs     map[int64]float64 `yaml:"inputs"`
	Outputs    map[int64]float64 `yaml:"outputs"`
	ProductID  int64             `yaml:"product_id"`
	Skills     map[int64]int     `yaml:"skills"`
}

type yamlActivity struct {
	Seconds   float64           `yaml:"seconds"`
	Materials map[int64]float64 `yaml:"materials"`
	Skills    map[int64]int     `yaml:"skills"`
}

type yamlInvention struct {
	yamlActivity       `yaml:",inline"`
	BaseChance         float64 `yaml:"base_chance"`
	ProductBlueprintID int64   `yaml:"product_blueprint_id"`
	ProductRuns        int64   `yaml:"product_runs"`
	EncryptionSkillID  int64   `yaml:"encryption_skill_id"`
	DatacoreSkillIDs   []int64 `yaml:"datacore_skill_ids"`
}

type yamlBlueprint struct {
	ID              int64          `yaml:"id"`
	Name            string         `yaml:"name"`
	GroupID         int64          `yaml:"group_id"`
	CategoryID      int64          `yaml:"category_id"`
	ProductID       int64          `yaml:"product_id"`
	ProductQuantity int64          `yaml:"product_quantity"`
	MaxRuns         int64          `yaml:"max_runs"`
	BaseJobValue    float64        `yaml:"base_job_value"`
	Manufacturing   yamlActivity   `yaml:"manufacturing"`
	Copying         *yamlActivity  `yaml:"copying"`
	Invention       *yamlInvention `yaml:"invention"`
}

type yamlModifier struct {
	M float64 `yaml:"m"`
	T float64 `yaml:"t"`
	C float64 `yaml:"c"`
}

type yamlAssemblyLine struct {
	ID         int64                  `yaml:"id"`
	Name       string                 `yaml:"name"`
	Activity   string                 `yaml:"activity"`
	Base       *yamlModifier          `yaml:"base"`
	Groups     map[int64]yamlModifier `yaml:"groups"`
	Categories map[int64]yamlModifier `yaml:"categories"`
}

type yamlSolarSystem struct {
	ID         int64              `yaml:"id"`
	Name       string             `yaml:"name"`
	RegionID   int64              `yaml:"region_id"`
	Security   float64            `yaml:"security"`
	StationIDs []int64            `yaml:"station_ids"`
	Indices    map[string]float64 `yaml:"indices"`
	ObservedAt time.Time          `yaml:"observed_at"`
}

type yamlStation struct {
	ID                     int64              `yaml:"id"`
	Name                   string             `yaml:"name"`
	SolarSystemID          int64              `yaml:"solar_system_id"`
	CorporationID          int64              `yaml:"corporation_id"`
	FactionID              int64              `yaml:"faction_id"`
	Services               int64              `yaml:"services"`
	ReprocessingEfficiency float64            `yaml:"reprocessing_efficiency"`
	Tax                    *float64           `yaml:"tax"`
	AssemblyLines          map[string][]int64 `yaml:"assembly_lines"`
}

type yamlInstallation struct {
	TypeID        int64              `yaml:"type_id"`
	AssemblyLines map[string][]int64 `yaml:"assembly_lines"`
}

// LoadYAMLFile reads a catalog from a YAML file
func LoadYAMLFile(path string) (*industry.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	return LoadYAML(f)
}

// LoadYAML decodes a catalog document and builds it
func LoadYAML(r io.Reader) (*industry.Catalog, error) {
	var doc yamlCatalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	b := industry.NewCatalogBuilder()
	for _, it := range doc.Items {
		b.AddItem(industry.ItemAttributes{
			TypeID:                it.ID,
			GroupID:               it.GroupID,
			CategoryID:            it.CategoryID,
			Name:                  it.Name,
			Volume:                it.Volume,
			PortionSize:           it.PortionSize,
			BasePrice:             it.BasePrice,
			ReprocessingMaterials: it.Reprocessing,
		}, it.MarketGroupID)
	}

	for _, r := range doc.Reactions {
		b.AddReaction(industry.ReactionAttributes{
			TypeID:     r.ID,
			GroupID:    r.GroupID,
			CategoryID: r.CategoryID,
			Name:       r.Name,
			Inputs:     r.Inputs,
			Outputs:    r.Outputs,
			ProductID:  r.ProductID,
			Skills:     r.Skills,
		})
	}

	for _, bp := range doc.Blueprints {
		attrs, err := bp.attributes()
		if err != nil {
			return nil, err
		}
		b.AddBlueprint(attrs)
	}

	for _, l := range doc.AssemblyLines {
		line, err := l.assemblyLine()
		if err != nil {
			return nil, err
		}
		b.AddAssemblyLine(line)
	}

	for _, s := range doc.SolarSystems {
		indices, err := s.indices()
		if err != nil {
			return nil, err
		}
		b.AddSolarSystem(industry.NewSolarSystem(s.ID, s.Name, s.RegionID, s.Security, s.StationIDs, indices))
	}

	for _, st := range doc.Stations {
		lines, err := activityLines(st.AssemblyLines)
		if err != nil {
			return nil, fmt.Errorf("station %d: %w", st.ID, err)
		}
		b.AddStation(industry.StationAttributes{
			ID:                     st.ID,
			Name:                   st.Name,
			SolarSystemID:          st.SolarSystemID,
			CorporationID:          st.CorporationID,
			FactionID:              st.FactionID,
			Services:               st.Services,
			ReprocessingEfficiency: st.ReprocessingEfficiency,
			Tax:                    st.Tax,
			AssemblyLineIDs:        lines,
		})
	}

	for _, inst := range doc.Installations {
		lines, err := activityLines(inst.AssemblyLines)
		if err != nil {
			return nil, fmt.Errorf("installation %d: %w", inst.TypeID, err)
		}
		b.AddInstallation(inst.TypeID, lines)
	}

	return b.Build()
}

func (a yamlActivity) data() (industry.ActivityData, error) {
	materials, err := material.LedgerFrom(a.Materials)
	if err != nil {
		return industry.ActivityData{}, err
	}
	skills, err := skillMap(a.Skills)
	if err != nil {
		return industry.ActivityData{}, err
	}
	return industry.ActivityData{Seconds: a.Seconds, Materials: materials, Skills: skills}, nil
}

func (bp yamlBlueprint) attributes() (industry.BlueprintAttributes, error) {
	manufacturing, err := bp.Manufacturing.data()
	if err != nil {
		return industry.BlueprintAttributes{}, fmt.Errorf("blueprint %d manufacturing: %w", bp.ID, err)
	}
	attrs := industry.BlueprintAttributes{
		TypeID:          bp.ID,
		GroupID:         bp.GroupID,
		CategoryID:      bp.CategoryID,
		Name:            bp.Name,
		ProductID:       bp.ProductID,
		ProductQuantity: bp.ProductQuantity,
		MaxRuns:         bp.MaxRuns,
		BaseJobValue:    bp.BaseJobValue,
		Manufacturing:   manufacturing,
	}
	if bp.Copying != nil {
		copying, err := bp.Copying.data()
		if err != nil {
			return industry.BlueprintAttributes{}, fmt.Errorf("blueprint %d copying: %w", bp.ID, err)
		}
		attrs.Copying = &copying
	}
	if bp.Invention != nil {
		invention, err := bp.Invention.data()
		if err != nil {
			return industry.BlueprintAttributes{}, fmt.Errorf("blueprint %d invention: %w", bp.ID, err)
		}
		attrs.Invention = &industry.InventionData{
			ActivityData:       invention,
			BaseChance:         bp.Invention.BaseChance,
			ProductBlueprintID: bp.Invention.ProductBlueprintID,
			ProductRuns:        bp.Invention.ProductRuns,
			EncryptionSkillID:  bp.Invention.EncryptionSkillID,
			DatacoreSkillIDs:   bp.Invention.DatacoreSkillIDs,
		}
	}
	return attrs, nil
}

func (m *yamlModifier) modifier() industry.Modifier {
	if m == nil {
		return industry.NeutralModifier()
	}
	return industry.Modifier{M: m.M, T: m.T, C: m.C}
}

func (l yamlAssemblyLine) assemblyLine() (*industry.AssemblyLine, error) {
	activity, err := shared.ParseActivity(l.Activity)
	if err != nil {
		return nil, fmt.Errorf("assembly line %d: %w", l.ID, err)
	}
	groups := make(map[int64]industry.Modifier, len(l.Groups))
	for id, m := range l.Groups {
		groups[id] = m.modifier()
	}
	categories := make(map[int64]industry.Modifier, len(l.Categories))
	for id, m := range l.Categories {
		categories[id] = m.modifier()
	}
	return industry.NewAssemblyLine(l.ID, l.Name, activity, l.Base.modifier(), groups, categories)
}

func (s yamlSolarSystem) indices() (map[shared.Activity]industry.IndustryIndex, error) {
	indices := make(map[shared.Activity]industry.IndustryIndex, len(s.Indices))
	for name, value := range s.Indices {
		activity, err := shared.ParseActivity(name)
		if err != nil {
			return nil, fmt.Errorf("solar system %d: %w", s.ID, err)
		}
		indices[activity] = industry.IndustryIndex{Value: value, ObservedAt: s.ObservedAt}
	}
	return indices, nil
}

func activityLines(byName map[string][]int64) (map[shared.Activity][]int64, error) {
	lines := make(map[shared.Activity][]int64, len(byName))
	for name, ids := range byName {
		activity, err := shared.ParseActivity(name)
		if err != nil {
			return nil, err
		}
		lines[activity] = ids
	}
	return lines, nil
}

func skillMap(levels map[int64]int) (*material.SkillMap, error) {
	skills := material.NewSkillMap()
	for id, level := range levels {
		if err := skills.Require(id, level); err != nil {
			return nil, err
		}
	}
	return skills, nil
}
