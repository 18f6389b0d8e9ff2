package config

import (
	"strconv"
	"time"
)

// IndustryConfig holds the defaults applied to every industry context
type IndustryConfig struct {
	// Tax charged at player-owned installations when none is given per request.
	// Unset means DefaultInstallationTax; an explicit 0 is a tax-free facility.
	DefaultTaxRate *float64 `mapstructure:"default_tax_rate" validate:"omitempty,min=0,max=1"`

	// Oldest acceptable price data. Values below 300s are raised to 300s.
	MaxPriceDataAge time.Duration `mapstructure:"max_price_data_age"`

	// Oldest acceptable system cost index. Zero disables the check.
	IndustryIndexMaxAge time.Duration `mapstructure:"industry_index_max_age"`

	// Default recursion depth for reaction and manufacturing trees
	RecursionDepth int `mapstructure:"recursion_depth" validate:"min=0,max=16"`

	// Region used for price lookups when none is given
	RegionID int64 `mapstructure:"region_id"`

	Character CharacterConfig `mapstructure:"character"`
	Research  ResearchConfig  `mapstructure:"research"`
}

// DefaultInstallationTax is the tax rate used when none is configured
const DefaultInstallationTax = 0.1

// TaxRate returns the configured default tax rate
func (c IndustryConfig) TaxRate() float64 {
	if c.DefaultTaxRate == nil {
		return DefaultInstallationTax
	}
	return *c.DefaultTaxRate
}

// CharacterConfig describes the character whose skills and standings apply.
// Keys are skill or NPC entity IDs.
type CharacterConfig struct {
	Skills           map[string]int     `mapstructure:"skills"`
	Standings        map[string]float64 `mapstructure:"standings"`
	ImplantTimeBonus map[string]float64 `mapstructure:"implant_time_bonus"`
}

// ResearchConfig holds default blueprint research levels
type ResearchConfig struct {
	ME int `mapstructure:"me" validate:"min=0,max=10"`
	TE int `mapstructure:"te" validate:"min=0,max=20"`
}

// SkillLevels returns the configured skills keyed by numeric ID, skipping malformed keys
func (c CharacterConfig) SkillLevels() map[int64]int {
	levels := make(map[int64]int, len(c.Skills))
	for key, level := range c.Skills {
		if id, err := strconv.ParseInt(key, 10, 64); err == nil {
			levels[id] = level
		}
	}
	return levels
}

// StandingsByID returns the configured standings keyed by numeric ID, skipping malformed keys
func (c CharacterConfig) StandingsByID() map[int64]float64 {
	standings := make(map[int64]float64, len(c.Standings))
	for key, standing := range c.Standings {
		if id, err := strconv.ParseInt(key, 10, 64); err == nil {
			standings[id] = standing
		}
	}
	return standings
}
