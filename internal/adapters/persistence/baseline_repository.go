package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/industry-go/internal/domain/market"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

// GormBaselineRepository implements market.BaselineRepository using GORM
type GormBaselineRepository struct {
	db *gorm.DB
}

func NewGormBaselineRepository(db *gorm.DB) *GormBaselineRepository {
	return &GormBaselineRepository{db: db}
}

func (r *GormBaselineRepository) GetBaseline(ctx context.Context, itemID, regionID int64) (market.Baseline, error) {
	var model BaselineModel
	result := r.db.WithContext(ctx).
		Where("item_id = ? AND region_id = ?", itemID, regionID).
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return market.Baseline{}, shared.NewNotFoundError(fmt.Sprintf("baseline in region %d for item", regionID), itemID)
		}
		return market.Baseline{}, fmt.Errorf("failed to find baseline: %w", result.Error)
	}

	return market.Baseline{AvgVolume: model.AvgVolume, AvgTransactions: model.AvgTransactions}, nil
}

// SaveBaseline replaces the stored baseline of an item in a region
func (r *GormBaselineRepository) SaveBaseline(ctx context.Context, itemID, regionID int64, baseline market.Baseline, asOf time.Time) error {
	model := &BaselineModel{
		ItemID:          itemID,
		RegionID:        regionID,
		AvgVolume:       baseline.AvgVolume,
		AvgTransactions: baseline.AvgTransactions,
		AsOf:            asOf.UTC(),
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "item_id"}, {Name: "region_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"avg_volume", "avg_transactions", "as_of"}),
		}).
		Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to save baseline: %w", result.Error)
	}
	return nil
}
