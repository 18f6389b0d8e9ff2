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

// GormPriceStatRepository implements market.PriceStatRepository using GORM
type GormPriceStatRepository struct {
	db *gorm.DB
}

// NewGormPriceStatRepository creates a new GORM price stat repository
func NewGormPriceStatRepository(db *gorm.DB) *GormPriceStatRepository {
	return &GormPriceStatRepository{db: db}
}

// Save upserts the stat of its item, region and day
func (r *GormPriceStatRepository) Save(ctx context.Context, stat *market.PriceStat) error {
	model := priceStatToModel(stat)

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "item_id"}, {Name: "region_id"}, {Name: "date"}},
			UpdateAll: true,
		}).
		Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to save price stat: %w", result.Error)
	}

	return nil
}

// FindLatest returns the most recent stat of an item in a region
func (r *GormPriceStatRepository) FindLatest(ctx context.Context, itemID, regionID int64) (*market.PriceStat, error) {
	var model PriceStatModel
	result := r.db.WithContext(ctx).
		Where("item_id = ? AND region_id = ?", itemID, regionID).
		Order("date DESC").
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(fmt.Sprintf("price stat in region %d for item", regionID), itemID)
		}
		return nil, fmt.Errorf("failed to find price stat: %w", result.Error)
	}

	return modelToPriceStat(&model), nil
}

// FindRange returns the stats between two days inclusive, oldest first
func (r *GormPriceStatRepository) FindRange(ctx context.Context, itemID, regionID int64, from, to time.Time) ([]*market.PriceStat, error) {
	var models []PriceStatModel
	result := r.db.WithContext(ctx).
		Where("item_id = ? AND region_id = ?", itemID, regionID).
		Where("date >= ? AND date <= ?", market.Day(from), market.Day(to)).
		Order("date ASC").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to find price history: %w", result.Error)
	}

	stats := make([]*market.PriceStat, 0, len(models))
	for i := range models {
		stats = append(stats, modelToPriceStat(&models[i]))
	}
	return stats, nil
}

func priceStatToModel(stat *market.PriceStat) *PriceStatModel {
	return &PriceStatModel{
		ItemID:          stat.ItemID,
		RegionID:        stat.RegionID,
		Date:            market.Day(stat.Date),
		GeneratedAt:     stat.GeneratedAt.UTC(),
		SellPrice:       stat.SellPrice,
		BuyPrice:        stat.BuyPrice,
		AvgSellOrderAge: stat.AvgSellOrderAge,
		AvgBuyOrderAge:  stat.AvgBuyOrderAge,
		SupplyIn5:       stat.SupplyIn5,
		DemandIn5:       stat.DemandIn5,
		AvgVolume:       stat.AvgVolume,
		AvgTransactions: stat.AvgTransactions,
	}
}

func modelToPriceStat(model *PriceStatModel) *market.PriceStat {
	return &market.PriceStat{
		ItemID:          model.ItemID,
		RegionID:        model.RegionID,
		Date:            model.Date.UTC(),
		GeneratedAt:     model.GeneratedAt.UTC(),
		SellPrice:       model.SellPrice,
		BuyPrice:        model.BuyPrice,
		AvgSellOrderAge: model.AvgSellOrderAge,
		AvgBuyOrderAge:  model.AvgBuyOrderAge,
		SupplyIn5:       model.SupplyIn5,
		DemandIn5:       model.DemandIn5,
		AvgVolume:       model.AvgVolume,
		AvgTransactions: model.AvgTransactions,
	}
}
