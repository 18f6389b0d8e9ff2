package industry

import (
	"context"

	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

// IndexRepository stores the industry cost indices observed for solar systems
type IndexRepository interface {
	SaveIndex(ctx context.Context, systemID int64, activity shared.Activity, index IndustryIndex) error
	// FindBySystem returns the latest index per activity; an unknown system yields an empty map
	FindBySystem(ctx context.Context, systemID int64) (map[shared.Activity]IndustryIndex, error)
}

// IndexFeed reports the current cost indices of every solar system with industry activity
type IndexFeed interface {
	FetchIndices(ctx context.Context) (map[int64]map[shared.Activity]IndustryIndex, error)
}
