package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/industry-go/internal/domain/process"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

// GormProcessRecordRepository implements process.RecordRepository using GORM.
// Trees are stored as their JSON encoding.
type GormProcessRecordRepository struct {
	db *gorm.DB
}

func NewGormProcessRecordRepository(db *gorm.DB) *GormProcessRecordRepository {
	return &GormProcessRecordRepository{db: db}
}

func (r *GormProcessRecordRepository) Save(ctx context.Context, record *process.Record) error {
	model, err := recordToModel(record)
	if err != nil {
		return err
	}

	if result := r.db.WithContext(ctx).Save(model); result.Error != nil {
		return fmt.Errorf("failed to save process record: %w", result.Error)
	}
	return nil
}

func (r *GormProcessRecordRepository) FindByID(ctx context.Context, id string) (*process.Record, error) {
	var model ProcessRecordModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("process record %s: %w", id, shared.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find process record: %w", result.Error)
	}

	return modelToRecord(&model)
}

func (r *GormProcessRecordRepository) List(ctx context.Context, limit int) ([]*process.Record, error) {
	var models []ProcessRecordModel
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if result := query.Find(&models); result.Error != nil {
		return nil, fmt.Errorf("failed to list process records: %w", result.Error)
	}

	records := make([]*process.Record, 0, len(models))
	for i := range models {
		record, err := modelToRecord(&models[i])
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func recordToModel(record *process.Record) (*ProcessRecordModel, error) {
	tree, err := json.Marshal(record.Tree)
	if err != nil {
		return nil, fmt.Errorf("failed to encode process tree: %w", err)
	}
	root := record.Tree.MustNode(record.Tree.Root())

	return &ProcessRecordModel{
		ID:           record.ID,
		Label:        record.Label,
		RootActivity: int(root.Activity),
		SubjectID:    root.SubjectID,
		Tree:         string(tree),
		CreatedAt:    record.CreatedAt.UTC(),
	}, nil
}

func modelToRecord(model *ProcessRecordModel) (*process.Record, error) {
	tree := process.NewTree()
	if err := json.Unmarshal([]byte(model.Tree), tree); err != nil {
		return nil, fmt.Errorf("failed to decode process tree of record %s: %w", model.ID, err)
	}
	return process.NewRecord(model.ID, model.Label, model.CreatedAt.UTC(), tree)
}
