package process

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Record is a computed tree stored for later inspection
type Record struct {
	ID        string
	Label     string
	CreatedAt time.Time
	Tree      *Tree
}

func NewRecord(id, label string, createdAt time.Time, tree *Tree) (*Record, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("record id cannot be empty")
	}
	if tree == nil || tree.Root() == NoNode {
		return nil, fmt.Errorf("record %s has no process tree", id)
	}
	return &Record{ID: id, Label: label, CreatedAt: createdAt, Tree: tree}, nil
}

// RecordRepository persists process records
type RecordRepository interface {
	Save(ctx context.Context, record *Record) error
	FindByID(ctx context.Context, id string) (*Record, error)
	// List returns the most recent records first, at most limit when limit > 0
	List(ctx context.Context, limit int) ([]*Record, error)
}
