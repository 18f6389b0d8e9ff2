package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/industry-go/internal/domain/material"
)

type ledgerContext struct {
	ledgers   map[string]*material.Ledger
	cancelled *material.Ledger
}

func (lc *ledgerContext) reset() {
	lc.ledgers = make(map[string]*material.Ledger)
	lc.cancelled = nil
}

func (lc *ledgerContext) ledger(name string) *material.Ledger {
	l, ok := lc.ledgers[name]
	if !ok {
		l = material.NewLedger()
		lc.ledgers[name] = l
	}
	return l
}

func (lc *ledgerContext) anEmptyLedger(name string) error {
	lc.ledger(name)
	return nil
}

func (lc *ledgerContext) ledgerWithItems(name string, table *godog.Table) error {
	l := lc.ledger(name)
	for i, row := range dataRows(table) {
		if len(row.Cells) != 2 {
			return fmt.Errorf("row %d: expected item and quantity columns", i+1)
		}
		itemID, err := parseItemID(row.Cells[0].Value)
		if err != nil {
			return err
		}
		qty, err := parseNumber(row.Cells[1].Value)
		if err != nil {
			return err
		}
		if err := l.Add(itemID, qty); err != nil {
			return err
		}
	}
	return nil
}

func (lc *ledgerContext) iAdd(qtyStr string, itemID int64, name string) error {
	qty, err := parseNumber(qtyStr)
	if err != nil {
		return err
	}
	sharedErr = lc.ledger(name).Add(itemID, qty)
	return nil
}

func (lc *ledgerContext) iSubtract(qtyStr string, itemID int64, name string) error {
	qty, err := parseNumber(qtyStr)
	if err != nil {
		return err
	}
	sharedErr = lc.ledger(name).Subtract(itemID, qty)
	return nil
}

func (lc *ledgerContext) iScale(name, factorStr string) error {
	factor, err := parseNumber(factorStr)
	if err != nil {
		return err
	}
	sharedErr = lc.ledger(name).Scale(factor)
	return nil
}

func (lc *ledgerContext) iCancelCommonQuantities(a, b string) error {
	lc.cancelled = material.SymmetricDifference(lc.ledger(a), lc.ledger(b))
	return nil
}

func (lc *ledgerContext) ledgerShouldHold(name, qtyStr string, itemID int64) error {
	expected, err := parseNumber(qtyStr)
	if err != nil {
		return err
	}
	return expectClose(fmt.Sprintf("%s quantity of item %d", name, itemID), expected, lc.ledger(name).Quantity(itemID))
}

func (lc *ledgerContext) ledgerShouldNotContain(name string, itemID int64) error {
	if lc.ledger(name).Has(itemID) {
		return fmt.Errorf("expected %s not to contain item %d, it holds %g", name, itemID, lc.ledger(name).Quantity(itemID))
	}
	return nil
}

func (lc *ledgerContext) ledgerShouldHaveEntries(name string, count int) error {
	if got := lc.ledger(name).Len(); got != count {
		return fmt.Errorf("expected %s to have %d entries, got %d", name, count, got)
	}
	return nil
}

func (lc *ledgerContext) cancelledShouldHold(qtyStr string, itemID int64) error {
	if lc.cancelled == nil {
		return fmt.Errorf("no quantities were cancelled")
	}
	expected, err := parseNumber(qtyStr)
	if err != nil {
		return err
	}
	return expectClose(fmt.Sprintf("cancelled quantity of item %d", itemID), expected, lc.cancelled.Quantity(itemID))
}

// InitializeLedgerScenario registers material ledger steps
func InitializeLedgerScenario(sc *godog.ScenarioContext) {
	lc := &ledgerContext{}

	sc.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		lc.reset()
		return ctx, nil
	})

	sc.Step(`^an empty ledger "([^"]*)"$`, lc.anEmptyLedger)
	sc.Step(`^a ledger "([^"]*)" with:$`, lc.ledgerWithItems)
	sc.Step(`^I add `+number+` units of item (\d+) to "([^"]*)"$`, lc.iAdd)
	sc.Step(`^I subtract `+number+` units of item (\d+) from "([^"]*)"$`, lc.iSubtract)
	sc.Step(`^I scale "([^"]*)" by `+number+`$`, lc.iScale)
	sc.Step(`^I cancel the quantities common to "([^"]*)" and "([^"]*)"$`, lc.iCancelCommonQuantities)
	sc.Step(`^"([^"]*)" should hold `+number+` units of item (\d+)$`, lc.ledgerShouldHold)
	sc.Step(`^"([^"]*)" should not contain item (\d+)$`, lc.ledgerShouldNotContain)
	sc.Step(`^"([^"]*)" should have (\d+) entries$`, lc.ledgerShouldHaveEntries)
	sc.Step(`^the cancelled amount should hold `+number+` units of item (\d+)$`, lc.cancelledShouldHold)
}
