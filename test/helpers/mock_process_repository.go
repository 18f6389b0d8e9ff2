package helpers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/andrescamacho/industry-go/internal/domain/industry"
	"github.com/andrescamacho/industry-go/internal/domain/process"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

// MockRecordRepository is an in-memory process.RecordRepository
type MockRecordRepository struct {
	mu      sync.Mutex
	records map[string]*process.Record
}

func NewMockRecordRepository() *MockRecordRepository {
	return &MockRecordRepository{records: make(map[string]*process.Record)}
}

func (m *MockRecordRepository) Save(ctx context.Context, record *process.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.ID] = record
	return nil
}

func (m *MockRecordRepository) FindByID(ctx context.Context, id string) (*process.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("process record %s: %w", id, shared.ErrNotFound)
	}
	return record, nil
}

func (m *MockRecordRepository) List(ctx context.Context, limit int) ([]*process.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*process.Record, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MockIndexRepository is an in-memory industry.IndexRepository
type MockIndexRepository struct {
	mu      sync.Mutex
	indices map[int64]map[shared.Activity]industry.IndustryIndex
}

func NewMockIndexRepository() *MockIndexRepository {
	return &MockIndexRepository{indices: make(map[int64]map[shared.Activity]industry.IndustryIndex)}
}

func (m *MockIndexRepository) SaveIndex(ctx context.Context, systemID int64, activity shared.Activity, index industry.IndustryIndex) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indices[systemID] == nil {
		m.indices[systemID] = make(map[shared.Activity]industry.IndustryIndex)
	}
	m.indices[systemID][activity] = index
	return nil
}

func (m *MockIndexRepository) FindBySystem(ctx context.Context, systemID int64) (map[shared.Activity]industry.IndustryIndex, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[shared.Activity]industry.IndustryIndex, len(m.indices[systemID]))
	for a, idx := range m.indices[systemID] {
		out[a] = idx
	}
	return out, nil
}

// MockIndexFeed serves a fixed set of system indices
type MockIndexFeed struct {
	Indices map[int64]map[shared.Activity]industry.IndustryIndex
	Err     error
}

func (f *MockIndexFeed) FetchIndices(ctx context.Context) (map[int64]map[shared.Activity]industry.IndustryIndex, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Indices, nil
}
