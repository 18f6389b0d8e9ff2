package persistence

import (
	"time"
)

// PriceStatModel represents the price_stats table, one row per item, region and day
type PriceStatModel struct {
	ItemID          int64     `gorm:"column:item_id;primaryKey;autoIncrement:false"`
	RegionID        int64     `gorm:"column:region_id;primaryKey;autoIncrement:false"`
	Date            time.Time `gorm:"column:date;primaryKey"`
	GeneratedAt     time.Time `gorm:"column:generated_at;not null"`
	SellPrice       *float64  `gorm:"column:sell_price"`
	BuyPrice        *float64  `gorm:"column:buy_price"`
	AvgSellOrderAge *int64    `gorm:"column:avg_sell_order_age"`
	AvgBuyOrderAge  *int64    `gorm:"column:avg_buy_order_age"`
	SupplyIn5       *int64    `gorm:"column:supply_in_5"`
	DemandIn5       *int64    `gorm:"column:demand_in_5"`
	AvgVolume       float64   `gorm:"column:avg_volume;not null;default:1"`
	AvgTransactions float64   `gorm:"column:avg_transactions;not null;default:1"`
}

func (PriceStatModel) TableName() string {
	return "price_stats"
}

// BaselineModel represents the market_baselines table
type BaselineModel struct {
	ItemID          int64     `gorm:"column:item_id;primaryKey;autoIncrement:false"`
	RegionID        int64     `gorm:"column:region_id;primaryKey;autoIncrement:false"`
	AvgVolume       float64   `gorm:"column:avg_volume;not null"`
	AvgTransactions float64   `gorm:"column:avg_transactions;not null"`
	AsOf            time.Time `gorm:"column:as_of;not null"`
}

func (BaselineModel) TableName() string {
	return "market_baselines"
}

// IndustryIndexModel represents the industry_indices table
type IndustryIndexModel struct {
	SystemID   int64     `gorm:"column:system_id;primaryKey;autoIncrement:false"`
	Activity   int       `gorm:"column:activity;primaryKey;autoIncrement:false"`
	Value      float64   `gorm:"column:value;not null"`
	ObservedAt time.Time `gorm:"column:observed_at;not null"`
}

func (IndustryIndexModel) TableName() string {
	return "industry_indices"
}

// ProcessRecordModel represents the process_records table
type ProcessRecordModel struct {
	ID           string    `gorm:"column:id;primaryKey"`
	Label        string    `gorm:"column:label"`
	RootActivity int       `gorm:"column:root_activity;not null"`
	SubjectID    int64     `gorm:"column:subject_id;not null"`
	Tree         string    `gorm:"column:tree;type:text;not null"` // JSON as text
	CreatedAt    time.Time `gorm:"column:created_at;not null;index"`
}

func (ProcessRecordModel) TableName() string {
	return "process_records"
}

// Models lists every persisted model, for migrations
func Models() []interface{} {
	return []interface{}{
		&PriceStatModel{},
		&BaselineModel{},
		&IndustryIndexModel{},
		&ProcessRecordModel{},
	}
}
