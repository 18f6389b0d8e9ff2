package sde

import (
	"context"
	"fmt"
	"sort"

	"github.com/andrescamacho/industry-go/internal/domain/industry"
)

// Load builds a catalog from the given driver: yaml reads the file at source,
// sqlite and mysql read the dump behind the DSN.
func Load(ctx context.Context, driver, source string) (*industry.Catalog, error) {
	if source == "" {
		return nil, fmt.Errorf("no static data source configured for driver %s", driver)
	}
	if driver == "yaml" {
		return LoadYAMLFile(source)
	}

	loader, err := OpenSQL(driver, source)
	if err != nil {
		return nil, err
	}
	defer loader.Close()

	return loader.Load(ctx)
}

func sortedSkillIDs(skills map[int64]int) []int64 {
	ids := make([]int64, 0, len(skills))
	for id := range skills {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
