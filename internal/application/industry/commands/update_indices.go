package commands

import (
	"context"
	"fmt"
	"sort"

	"github.com/andrescamacho/industry-go/internal/application/common"
	"github.com/andrescamacho/industry-go/internal/domain/industry"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

// UpdateIndicesCommand refreshes the stored industry cost indices from the index feed.
// An empty SystemIDs stores every system the feed reports.
type UpdateIndicesCommand struct {
	SystemIDs []int64
}

type UpdateIndicesResponse struct {
	Systems int
	Indices int
}

// UpdateIndicesHandler handles the UpdateIndices command
type UpdateIndicesHandler struct {
	feed    industry.IndexFeed
	indices industry.IndexRepository
}

func NewUpdateIndicesHandler(feed industry.IndexFeed, indices industry.IndexRepository) *UpdateIndicesHandler {
	return &UpdateIndicesHandler{feed: feed, indices: indices}
}

func (h *UpdateIndicesHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*UpdateIndicesCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *UpdateIndicesCommand")
	}

	fetched, err := h.feed.FetchIndices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch industry indices: %w", err)
	}

	systemIDs := cmd.SystemIDs
	if len(systemIDs) == 0 {
		for id := range fetched {
			systemIDs = append(systemIDs, id)
		}
		sort.Slice(systemIDs, func(i, j int) bool { return systemIDs[i] < systemIDs[j] })
	}

	resp := &UpdateIndicesResponse{}
	for _, systemID := range systemIDs {
		byActivity, ok := fetched[systemID]
		if !ok {
			common.LoggerFromContext(ctx).Log(common.LevelWarn, "Index feed has no data for system", map[string]interface{}{
				"system_id": systemID,
			})
			continue
		}

		activities := make([]shared.Activity, 0, len(byActivity))
		for a := range byActivity {
			activities = append(activities, a)
		}
		sort.Slice(activities, func(i, j int) bool { return activities[i] < activities[j] })

		for _, activity := range activities {
			if err := h.indices.SaveIndex(ctx, systemID, activity, byActivity[activity]); err != nil {
				return nil, fmt.Errorf("failed to store %s index of system %d: %w", activity, systemID, err)
			}
			resp.Indices++
		}
		resp.Systems++
	}

	common.LoggerFromContext(ctx).Log(common.LevelInfo, "Industry indices updated", map[string]interface{}{
		"systems": resp.Systems,
		"indices": resp.Indices,
	})
	return resp, nil
}
