package industry

import (
	"fmt"
	"math"

	"github.com/andrescamacho/industry-go/internal/domain/material"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

// CharacterModifier supplies the character-dependent factors of industry and trade:
// skills, implants and standings. Implementations may return errors wrapping
// shared.ErrDataUnavailable; callers propagate them unchanged.
type CharacterModifier interface {
	SkillTimeFactor(activity shared.Activity) (float64, error)
	ImplantTimeFactor(activity shared.Activity) (float64, error)
	// ReprocessingTaxFactor is 1 minus the reprocessing tax charged by the station owner
	ReprocessingTaxFactor(corporationID int64) (float64, error)
	ReprocessingSpecializationFactor(groupID int64) (float64, error)
	BrokerTax(factionID, corporationID int64) (float64, error)
	SellTaxFactor(factionID, corporationID int64) (float64, error)
	BuyTaxFactor(factionID, corporationID int64) (float64, error)
	InventionChanceFactor(encryptionSkillID int64, datacoreSkillIDs []int64) (float64, error)
}

// ResearchLevels are the material and time efficiency research of a blueprint, in percent
type ResearchLevels struct {
	ME int `json:"me"`
	TE int `json:"te"`
}

const (
	MaxMaterialEfficiency = 10
	MaxTimeEfficiency     = 20
)

func (r ResearchLevels) Validate() error {
	if r.ME < 0 || r.ME > MaxMaterialEfficiency {
		return shared.NewValidationError("me", fmt.Sprintf("%d outside 0..%d", r.ME, MaxMaterialEfficiency))
	}
	if r.TE < 0 || r.TE > MaxTimeEfficiency {
		return shared.NewValidationError("te", fmt.Sprintf("%d outside 0..%d", r.TE, MaxTimeEfficiency))
	}
	return nil
}

// MaterialFactor is the per-material multiplier of the ME level
func (r ResearchLevels) MaterialFactor() float64 {
	return 1 - float64(r.ME)/100
}

// TimeFactor is the time multiplier of the TE level
func (r ResearchLevels) TimeFactor() float64 {
	return 1 - float64(r.TE)/100
}

// BlueprintModifier supplies research levels of blueprints
type BlueprintModifier interface {
	ResearchLevels(blueprintID int64) (ResearchLevels, error)
}

// StaticBlueprintModifier returns fixed research levels, with optional per-blueprint overrides
type StaticBlueprintModifier struct {
	Default      ResearchLevels
	PerBlueprint map[int64]ResearchLevels
}

func (s StaticBlueprintModifier) ResearchLevels(blueprintID int64) (ResearchLevels, error) {
	if levels, ok := s.PerBlueprint[blueprintID]; ok {
		return levels, levels.Validate()
	}
	return s.Default, s.Default.Validate()
}

// Skill IDs consulted by SkilledCharacter
const (
	SkillIndustry               int64 = 3380
	SkillAdvancedIndustry       int64 = 3388
	SkillReprocessing           int64 = 3385
	SkillReprocessingEfficiency int64 = 3389
	SkillBrokerRelations        int64 = 3446
	SkillAccounting             int64 = 16622
	SkillReactions              int64 = 45746
)

const (
	baseBrokerTax      = 0.03
	baseSalesTax       = 0.08
	baseReprocessTax   = 0.05
	reprocessTaxPerStd = 0.0075
)

// SkilledCharacter derives modifiers from trained skill levels, implant bonuses and standings.
// Missing skills count as untrained and missing standings as neutral.
type SkilledCharacter struct {
	Skills *material.SkillMap
	// ImplantTimeBonus holds a time multiplier per activity, e.g. 0.96 for a 4% implant
	ImplantTimeBonus map[shared.Activity]float64
	// Standings by faction or corporation ID, -10..10
	Standings map[int64]float64
}

// NewSkilledCharacter creates a character with the given trained skills.
// A nil skill map means no skills trained.
func NewSkilledCharacter(skills *material.SkillMap) *SkilledCharacter {
	if skills == nil {
		skills = material.NewSkillMap()
	}
	return &SkilledCharacter{
		Skills:           skills,
		ImplantTimeBonus: make(map[shared.Activity]float64),
		Standings:        make(map[int64]float64),
	}
}

func (c *SkilledCharacter) level(skillID int64) float64 {
	level, _ := c.Skills.Level(skillID)
	return float64(level)
}

func (c *SkilledCharacter) standing(id int64) float64 {
	return c.Standings[id]
}

func (c *SkilledCharacter) SkillTimeFactor(activity shared.Activity) (float64, error) {
	switch activity {
	case shared.ActivityManufacturing:
		return (1 - 0.04*c.level(SkillIndustry)) * (1 - 0.03*c.level(SkillAdvancedIndustry)), nil
	case shared.ActivityReaction:
		return 1 - 0.04*c.level(SkillReactions), nil
	case shared.ActivityResearchTE, shared.ActivityResearchME, shared.ActivityCopying, shared.ActivityInvention:
		return 1 - 0.03*c.level(SkillAdvancedIndustry), nil
	default:
		return 1, nil
	}
}

func (c *SkilledCharacter) ImplantTimeFactor(activity shared.Activity) (float64, error) {
	if bonus, ok := c.ImplantTimeBonus[activity]; ok {
		return bonus, nil
	}
	return 1, nil
}

func (c *SkilledCharacter) ReprocessingTaxFactor(corporationID int64) (float64, error) {
	tax := math.Max(0, baseReprocessTax-reprocessTaxPerStd*c.standing(corporationID))
	return 1 - tax, nil
}

func (c *SkilledCharacter) ReprocessingSpecializationFactor(groupID int64) (float64, error) {
	return (1 + 0.03*c.level(SkillReprocessing)) * (1 + 0.02*c.level(SkillReprocessingEfficiency)), nil
}

func (c *SkilledCharacter) BrokerTax(factionID, corporationID int64) (float64, error) {
	tax := baseBrokerTax - 0.003*c.level(SkillBrokerRelations) - 0.0003*c.standing(factionID) - 0.0002*c.standing(corporationID)
	return math.Max(0, tax), nil
}

func (c *SkilledCharacter) salesTax() float64 {
	return baseSalesTax * (1 - 0.11*c.level(SkillAccounting))
}

func (c *SkilledCharacter) SellTaxFactor(factionID, corporationID int64) (float64, error) {
	broker, err := c.BrokerTax(factionID, corporationID)
	if err != nil {
		return 0, err
	}
	return 1 - broker - c.salesTax(), nil
}

func (c *SkilledCharacter) BuyTaxFactor(factionID, corporationID int64) (float64, error) {
	broker, err := c.BrokerTax(factionID, corporationID)
	if err != nil {
		return 0, err
	}
	return 1 + broker, nil
}

func (c *SkilledCharacter) InventionChanceFactor(encryptionSkillID int64, datacoreSkillIDs []int64) (float64, error) {
	datacoreLevels := 0.0
	for _, skillID := range datacoreSkillIDs {
		datacoreLevels += c.level(skillID)
	}
	return 1 + c.level(encryptionSkillID)/40 + datacoreLevels/30, nil
}
