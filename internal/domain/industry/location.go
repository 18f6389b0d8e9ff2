package industry

import (
	"fmt"
	"time"

	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

// Station services, as bit flags of the static data service mask
const (
	ServiceReprocessing = 16
	ServiceMarket       = 64
)

// OutpostIDThreshold separates NPC station IDs from player-built outposts
const OutpostIDThreshold = 61000000

// DefaultStationTax is the facility tax applied at NPC stations without an explicit rate
const DefaultStationTax = 0.1

// IndustryIndex is a system cost index for one activity, stamped with the time it was observed
type IndustryIndex struct {
	Value      float64
	ObservedAt time.Time
}

// SolarSystem is a location with per-activity industry cost indices
type SolarSystem struct {
	id         int64
	name       string
	regionID   int64
	security   float64
	stationIDs []int64
	indices    map[shared.Activity]IndustryIndex
}

func NewSolarSystem(id int64, name string, regionID int64, security float64, stationIDs []int64, indices map[shared.Activity]IndustryIndex) *SolarSystem {
	copied := make(map[shared.Activity]IndustryIndex, len(indices))
	for activity, idx := range indices {
		copied[activity] = idx
	}
	return &SolarSystem{
		id:         id,
		name:       name,
		regionID:   regionID,
		security:   security,
		stationIDs: append([]int64(nil), stationIDs...),
		indices:    copied,
	}
}

func (s *SolarSystem) ID() int64         { return s.id }
func (s *SolarSystem) Name() string      { return s.name }
func (s *SolarSystem) RegionID() int64   { return s.regionID }
func (s *SolarSystem) Security() float64 { return s.security }

func (s *SolarSystem) StationIDs() []int64 {
	return append([]int64(nil), s.stationIDs...)
}

// HasStation reports whether a station belongs to the system
func (s *SolarSystem) HasStation(stationID int64) bool {
	for _, id := range s.stationIDs {
		if id == stationID {
			return true
		}
	}
	return false
}

// IndustryIndex returns the cost index for an activity. A positive maxAge opts in to a
// staleness check against now.
func (s *SolarSystem) IndustryIndex(activity shared.Activity, maxAge time.Duration, now time.Time) (float64, error) {
	idx, ok := s.indices[activity]
	if !ok {
		return 0, &shared.NotFoundError{Kind: fmt.Sprintf("%s industry index for system", activity), ID: s.id}
	}
	if maxAge > 0 && idx.ObservedAt.Add(maxAge).Before(now) {
		return 0, shared.NewStaleDataError(fmt.Sprintf("%s industry index of system %d", activity, s.id), now.Sub(idx.ObservedAt), maxAge)
	}
	return idx.Value, nil
}

// WithIndustryIndices returns a copy of the system with the given indices replacing existing ones
func (s *SolarSystem) WithIndustryIndices(indices map[shared.Activity]IndustryIndex) *SolarSystem {
	merged := make(map[shared.Activity]IndustryIndex, len(s.indices)+len(indices))
	for activity, idx := range s.indices {
		merged[activity] = idx
	}
	for activity, idx := range indices {
		merged[activity] = idx
	}
	return NewSolarSystem(s.id, s.name, s.regionID, s.security, s.stationIDs, merged)
}

// StationAttributes describes a station as loaded from static data
type StationAttributes struct {
	ID                     int64
	Name                   string
	SolarSystemID          int64
	CorporationID          int64
	FactionID              int64
	Services               int64
	ReprocessingEfficiency float64
	// Tax is the facility tax; nil selects DefaultStationTax
	Tax             *float64
	AssemblyLineIDs map[shared.Activity][]int64
}

// Station is an NPC station or player outpost hosting assembly lines and services
type Station struct {
	id                     int64
	name                   string
	solarSystemID          int64
	corporationID          int64
	factionID              int64
	services               int64
	reprocessingEfficiency float64
	tax                    float64
	assemblyLineIDs        map[shared.Activity][]int64
}

func NewStation(attrs StationAttributes) (*Station, error) {
	if attrs.ReprocessingEfficiency < 0 || attrs.ReprocessingEfficiency > 1 {
		return nil, shared.NewValidationError("reprocessing_efficiency", fmt.Sprintf("station %d efficiency %g outside [0, 1]", attrs.ID, attrs.ReprocessingEfficiency))
	}
	tax := DefaultStationTax
	if attrs.Tax != nil {
		tax = *attrs.Tax
	}
	lines := make(map[shared.Activity][]int64, len(attrs.AssemblyLineIDs))
	for activity, ids := range attrs.AssemblyLineIDs {
		lines[activity] = append([]int64(nil), ids...)
	}
	return &Station{
		id:                     attrs.ID,
		name:                   attrs.Name,
		solarSystemID:          attrs.SolarSystemID,
		corporationID:          attrs.CorporationID,
		factionID:              attrs.FactionID,
		services:               attrs.Services,
		reprocessingEfficiency: attrs.ReprocessingEfficiency,
		tax:                    tax,
		assemblyLineIDs:        lines,
	}, nil
}

func (s *Station) ID() int64                       { return s.id }
func (s *Station) Name() string                    { return s.name }
func (s *Station) SolarSystemID() int64            { return s.solarSystemID }
func (s *Station) CorporationID() int64            { return s.corporationID }
func (s *Station) ReprocessingEfficiency() float64 { return s.reprocessingEfficiency }
func (s *Station) Tax() float64                    { return s.tax }

// IsOutpost reports whether the station is player built
func (s *Station) IsOutpost() bool {
	return s.id > OutpostIDThreshold
}

// FactionID returns the owning NPC faction. Outposts have none.
func (s *Station) FactionID() (int64, error) {
	if s.IsOutpost() || s.factionID == 0 {
		return 0, shared.NewDataUnavailableError(fmt.Sprintf("faction of station %d", s.id))
	}
	return s.factionID, nil
}

func (s *Station) HasService(service int64) bool {
	return s.services&service != 0
}

// AssemblyLineIDs returns the station's assembly line IDs per activity
func (s *Station) AssemblyLineIDs() map[shared.Activity][]int64 {
	out := make(map[shared.Activity][]int64, len(s.assemblyLineIDs))
	for activity, ids := range s.assemblyLineIDs {
		out[activity] = append([]int64(nil), ids...)
	}
	return out
}
