package material

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

const MaxSkillLevel = 5

// SkillLevel is a required (skill, level) pair
type SkillLevel struct {
	SkillID int64 `json:"skill_id"`
	Level   int   `json:"level"`
}

// SkillMap holds skill requirements. When the same skill is required more than
// once, the highest level wins.
type SkillMap struct {
	levels map[int64]int
}

func NewSkillMap() *SkillMap {
	return &SkillMap{levels: make(map[int64]int)}
}

// Require records a skill requirement, keeping the maximum level per skill
func (s *SkillMap) Require(skillID int64, level int) error {
	if level < 0 || level > MaxSkillLevel {
		return shared.NewValidationError("level", fmt.Sprintf("skill %d level %d outside 0..%d", skillID, level, MaxSkillLevel))
	}
	if s.levels == nil {
		s.levels = make(map[int64]int)
	}
	if current, ok := s.levels[skillID]; !ok || level > current {
		s.levels[skillID] = level
	}
	return nil
}

// Merge unions other into s, keeping the maximum level per skill
func (s *SkillMap) Merge(other *SkillMap) {
	if other == nil {
		return
	}
	for skillID, level := range other.levels {
		_ = s.Require(skillID, level)
	}
}

// Level returns the required level for a skill and whether it is required at all
func (s *SkillMap) Level(skillID int64) (int, bool) {
	if s == nil {
		return 0, false
	}
	level, ok := s.levels[skillID]
	return level, ok
}

func (s *SkillMap) Len() int {
	if s == nil {
		return 0
	}
	return len(s.levels)
}

func (s *SkillMap) Clone() *SkillMap {
	c := NewSkillMap()
	c.Merge(s)
	return c
}

// Entries returns the requirements in ascending skill ID order
func (s *SkillMap) Entries() []SkillLevel {
	if s == nil {
		return []SkillLevel{}
	}
	entries := make([]SkillLevel, 0, len(s.levels))
	for skillID, level := range s.levels {
		entries = append(entries, SkillLevel{SkillID: skillID, Level: level})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].SkillID < entries[j].SkillID })
	return entries
}

func (s *SkillMap) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Entries())
}

func (s *SkillMap) UnmarshalJSON(data []byte) error {
	var entries []SkillLevel
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	s.levels = make(map[int64]int, len(entries))
	for _, entry := range entries {
		if err := s.Require(entry.SkillID, entry.Level); err != nil {
			return err
		}
	}
	return nil
}
