package industry

import (
	"fmt"

	"github.com/andrescamacho/industry-go/internal/domain/material"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

// ActivityData is the base requirement of one run of a blueprint activity
type ActivityData struct {
	Seconds   float64
	Materials *material.Ledger
	Skills    *material.SkillMap
}

func (d ActivityData) clone() ActivityData {
	return ActivityData{Seconds: d.Seconds, Materials: d.Materials.Clone(), Skills: d.Skills.Clone()}
}

// InventionData describes turning a blueprint copy into a copy of an improved blueprint
type InventionData struct {
	ActivityData
	BaseChance         float64
	ProductBlueprintID int64
	ProductRuns        int64
	EncryptionSkillID  int64
	DatacoreSkillIDs   []int64
}

// BlueprintAttributes describes a blueprint as loaded from static data
type BlueprintAttributes struct {
	TypeID          int64
	GroupID         int64
	CategoryID      int64
	Name            string
	ProductID       int64
	ProductQuantity int64
	MaxRuns         int64
	BaseJobValue    float64
	Manufacturing   ActivityData
	Copying         *ActivityData
	Invention       *InventionData
}

// Blueprint holds the per-run requirements for manufacturing an item and the
// copying and invention activities performed on the blueprint itself.
type Blueprint struct {
	typeID          int64
	groupID         int64
	categoryID      int64
	name            string
	productID       int64
	productQuantity int64
	maxRuns         int64
	baseJobValue    float64
	manufacturing   ActivityData
	copying         *ActivityData
	invention       *InventionData
}

func NewBlueprint(attrs BlueprintAttributes) (*Blueprint, error) {
	if attrs.ProductID <= 0 {
		return nil, shared.NewValidationError("product_id", fmt.Sprintf("blueprint %d has no product", attrs.TypeID))
	}
	productQuantity := attrs.ProductQuantity
	if productQuantity <= 0 {
		productQuantity = 1
	}
	maxRuns := attrs.MaxRuns
	if maxRuns <= 0 {
		maxRuns = 1
	}

	bp := &Blueprint{
		typeID:          attrs.TypeID,
		groupID:         attrs.GroupID,
		categoryID:      attrs.CategoryID,
		name:            attrs.Name,
		productID:       attrs.ProductID,
		productQuantity: productQuantity,
		maxRuns:         maxRuns,
		baseJobValue:    attrs.BaseJobValue,
		manufacturing:   attrs.Manufacturing.clone(),
	}
	if attrs.Copying != nil {
		copying := attrs.Copying.clone()
		bp.copying = &copying
	}
	if attrs.Invention != nil {
		if attrs.Invention.BaseChance <= 0 || attrs.Invention.BaseChance > 1 {
			return nil, shared.NewValidationError("base_chance", fmt.Sprintf("blueprint %d invention chance %g outside (0, 1]", attrs.TypeID, attrs.Invention.BaseChance))
		}
		invention := *attrs.Invention
		invention.ActivityData = attrs.Invention.ActivityData.clone()
		invention.DatacoreSkillIDs = append([]int64(nil), attrs.Invention.DatacoreSkillIDs...)
		bp.invention = &invention
	}
	return bp, nil
}

func (b *Blueprint) TypeID() int64          { return b.typeID }
func (b *Blueprint) GroupID() int64         { return b.groupID }
func (b *Blueprint) CategoryID() int64      { return b.categoryID }
func (b *Blueprint) Name() string           { return b.name }
func (b *Blueprint) ProductID() int64       { return b.productID }
func (b *Blueprint) ProductQuantity() int64 { return b.productQuantity }
func (b *Blueprint) MaxRuns() int64         { return b.maxRuns }
func (b *Blueprint) BaseJobValue() float64  { return b.baseJobValue }

// Manufacturing returns a copy of the manufacturing requirements per run
func (b *Blueprint) Manufacturing() ActivityData {
	return b.manufacturing.clone()
}

// Copying returns the copy requirements per run, if the blueprint can be copied
func (b *Blueprint) Copying() (ActivityData, bool) {
	if b.copying == nil {
		return ActivityData{}, false
	}
	return b.copying.clone(), true
}

// Invention returns the invention data, if the blueprint can be invented from
func (b *Blueprint) Invention() (InventionData, bool) {
	if b.invention == nil {
		return InventionData{}, false
	}
	inv := *b.invention
	inv.ActivityData = b.invention.ActivityData.clone()
	inv.DatacoreSkillIDs = append([]int64(nil), b.invention.DatacoreSkillIDs...)
	return inv, true
}
