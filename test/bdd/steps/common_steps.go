package steps

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
	messages "github.com/cucumber/messages/go/v21"

	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

// number matches integers and decimals in step patterns
const number = `(-?\d+(?:\.\d+)?)`

// sharedErr holds the last error of a step so any context can assert on it
var sharedErr error

// errorsByName maps the wording used in features to domain sentinels
var errorsByName = map[string]error{
	"invalid quantity":       shared.ErrInvalidQuantity,
	"no compatible facility": shared.ErrNoCompatibleFacility,
	"no output defined":      shared.ErrNoOutputDefined,
	"not found":              shared.ErrNotFound,
	"stale data":             shared.ErrStaleData,
	"data unavailable":       shared.ErrDataUnavailable,
}

const tolerance = 1e-6

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return v, nil
}

func parseItemID(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid item id %q: %w", s, err)
	}
	return v, nil
}

// dataRows returns the rows of a table after its header
func dataRows(table *godog.Table) []*messages.PickleTableRow {
	if table == nil || len(table.Rows) < 2 {
		return nil
	}
	return table.Rows[1:]
}

// splitList splits "34, 35 and 36" style lists
func splitList(s string) []string {
	var out []string
	for _, field := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
		if field != "and" {
			out = append(out, field)
		}
	}
	return out
}

func expectClose(what string, expected, actual float64) error {
	if math.Abs(expected-actual) > tolerance {
		return fmt.Errorf("expected %s to be %g, got %g", what, expected, actual)
	}
	return nil
}

func theOperationShouldFailWith(name string) error {
	sentinel, ok := errorsByName[name]
	if !ok {
		return fmt.Errorf("unknown error name %q", name)
	}
	if sharedErr == nil {
		return fmt.Errorf("expected a %s error, but the operation succeeded", name)
	}
	if !errors.Is(sharedErr, sentinel) {
		return fmt.Errorf("expected a %s error, got: %v", name, sharedErr)
	}
	return nil
}

func theOperationShouldSucceed() error {
	if sharedErr != nil {
		return fmt.Errorf("expected success, got: %v", sharedErr)
	}
	return nil
}

// InitializeCommonSteps registers the error assertions shared by every feature
func InitializeCommonSteps(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		sharedErr = nil
		return ctx, nil
	})

	sc.Step(`^the operation should fail with an? (.+) error$`, theOperationShouldFailWith)
	sc.Step(`^the operation should succeed$`, theOperationShouldSucceed)
}
