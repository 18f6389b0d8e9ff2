package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/industry-go/internal/application/common"
	"github.com/andrescamacho/industry-go/internal/application/industry/services"
	"github.com/andrescamacho/industry-go/internal/domain/industry"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

// BestFacilityQuery finds the assembly line an activity would use. SubjectID is the
// reaction for reactions and the blueprint for every other activity.
type BestFacilityQuery struct {
	Location  services.Location
	Activity  shared.Activity
	SubjectID int64
}

type BestFacilityResponse struct {
	AssemblyLineID   int64
	AssemblyLineName string
	FacilityModifier industry.Modifier
	Resolved         industry.ResolvedModifier
}

type BestFacilityHandler struct {
	contexts *services.ContextFactory
}

func NewBestFacilityHandler(contexts *services.ContextFactory) *BestFacilityHandler {
	return &BestFacilityHandler{contexts: contexts}
}

func (h *BestFacilityHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*BestFacilityQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *BestFacilityQuery")
	}
	if !query.Activity.IsValid() || query.Activity == shared.ActivityNone {
		return nil, shared.NewValidationError("activity", fmt.Sprintf("unsupported activity %d", query.Activity))
	}

	ictx, err := h.contexts.Build(ctx, query.Location)
	if err != nil {
		return nil, err
	}

	subject, err := resolveSubject(ictx.Static(), query.Activity, query.SubjectID)
	if err != nil {
		return nil, err
	}

	line, facility, err := ictx.BestAssemblyLine(query.Activity, subject)
	if err != nil {
		return nil, err
	}
	resolved, err := industry.ResolveModifier(query.Activity, subject, line, ictx)
	if err != nil {
		return nil, err
	}

	return &BestFacilityResponse{
		AssemblyLineID:   line.ID(),
		AssemblyLineName: line.Name(),
		FacilityModifier: facility,
		Resolved:         resolved,
	}, nil
}

// resolveSubject returns what the facility classifies: the reaction, the manufactured
// product, or the blueprint itself
func resolveSubject(static industry.StaticData, activity shared.Activity, subjectID int64) (industry.Classified, error) {
	if activity == shared.ActivityReaction {
		return static.Reaction(subjectID)
	}
	bp, err := static.Blueprint(subjectID)
	if err != nil {
		return nil, err
	}
	if activity == shared.ActivityManufacturing {
		return static.Item(bp.ProductID())
	}
	return bp, nil
}
