package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/industry-go/internal/domain/industry"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

// GormIndustryIndexRepository implements industry.IndexRepository using GORM
type GormIndustryIndexRepository struct {
	db *gorm.DB
}

func NewGormIndustryIndexRepository(db *gorm.DB) *GormIndustryIndexRepository {
	return &GormIndustryIndexRepository{db: db}
}

// SaveIndex stores an index unless a newer one is already stored for the system and activity
func (r *GormIndustryIndexRepository) SaveIndex(ctx context.Context, systemID int64, activity shared.Activity, index industry.IndustryIndex) error {
	if !activity.IsValid() || activity == shared.ActivityNone {
		return shared.NewValidationError("activity", fmt.Sprintf("unsupported activity %d", activity))
	}

	model := &IndustryIndexModel{
		SystemID:   systemID,
		Activity:   int(activity),
		Value:      index.Value,
		ObservedAt: index.ObservedAt.UTC(),
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "system_id"}, {Name: "activity"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "observed_at"}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "industry_indices.observed_at <= excluded.observed_at"},
			}},
		}).
		Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to save industry index: %w", result.Error)
	}
	return nil
}

func (r *GormIndustryIndexRepository) FindBySystem(ctx context.Context, systemID int64) (map[shared.Activity]industry.IndustryIndex, error) {
	var models []IndustryIndexModel
	result := r.db.WithContext(ctx).
		Where("system_id = ?", systemID).
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to find industry indices: %w", result.Error)
	}

	indices := make(map[shared.Activity]industry.IndustryIndex, len(models))
	for _, model := range models {
		indices[shared.Activity(model.Activity)] = industry.IndustryIndex{
			Value:      model.Value,
			ObservedAt: model.ObservedAt.UTC(),
		}
	}
	return indices, nil
}
