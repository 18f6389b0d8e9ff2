package shared

import (
	"fmt"
	"strings"
)

// Activity identifies an industrial operation. Values match the static data activity IDs.
type Activity int

const (
	ActivityNone               Activity = 0
	ActivityManufacturing      Activity = 1
	ActivityResearchTE         Activity = 3
	ActivityResearchME         Activity = 4
	ActivityCopying            Activity = 5
	ActivityReverseEngineering Activity = 7
	ActivityInvention          Activity = 8
	ActivityReaction           Activity = 11
)

var activityNames = map[Activity]string{
	ActivityManufacturing:      "manufacturing",
	ActivityResearchTE:         "research-te",
	ActivityResearchME:         "research-me",
	ActivityCopying:            "copying",
	ActivityReverseEngineering: "reverse-engineering",
	ActivityInvention:          "invention",
	ActivityReaction:           "reaction",
}

func (a Activity) String() string {
	if name, ok := activityNames[a]; ok {
		return name
	}
	return fmt.Sprintf("activity(%d)", int(a))
}

// IsValid returns true for the known activity kinds
func (a Activity) IsValid() bool {
	_, ok := activityNames[a]
	return ok
}

// Activities returns all known activities in ID order
func Activities() []Activity {
	return []Activity{
		ActivityManufacturing,
		ActivityResearchTE,
		ActivityResearchME,
		ActivityCopying,
		ActivityReverseEngineering,
		ActivityInvention,
		ActivityReaction,
	}
}

// ParseActivity converts a name such as "manufacturing" or "reaction" to an Activity
func ParseActivity(name string) (Activity, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for activity, activityName := range activityNames {
		if activityName == normalized {
			return activity, nil
		}
	}
	return ActivityNone, NewValidationError("activity", fmt.Sprintf("unknown activity %q", name))
}
