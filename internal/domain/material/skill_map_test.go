package material_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/industry-go/internal/domain/material"
)

func TestSkillMap_KeepsMaximumLevel(t *testing.T) {
	s := material.NewSkillMap()

	require.NoError(t, s.Require(3380, 1))
	require.NoError(t, s.Require(3380, 4))
	require.NoError(t, s.Require(3380, 2))

	level, ok := s.Level(3380)
	assert.True(t, ok)
	assert.Equal(t, 4, level)
}

func TestSkillMap_MergeUnions(t *testing.T) {
	a := material.NewSkillMap()
	require.NoError(t, a.Require(1, 3))
	b := material.NewSkillMap()
	require.NoError(t, b.Require(1, 5))
	require.NoError(t, b.Require(2, 1))

	a.Merge(b)

	assert.Equal(t, []material.SkillLevel{{SkillID: 1, Level: 5}, {SkillID: 2, Level: 1}}, a.Entries())
}

func TestSkillMap_RejectsOutOfRangeLevel(t *testing.T) {
	s := material.NewSkillMap()

	assert.Error(t, s.Require(1, 6))
	assert.Error(t, s.Require(1, -1))
	assert.Equal(t, 0, s.Len())
}
