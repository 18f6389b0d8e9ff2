package steps

import (
	"context"
	"fmt"
	"testing"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/industry-go/internal/application/common"
	industryCommands "github.com/andrescamacho/industry-go/internal/application/industry/commands"
	industryQueries "github.com/andrescamacho/industry-go/internal/application/industry/queries"
	"github.com/andrescamacho/industry-go/internal/application/industry/services"
	"github.com/andrescamacho/industry-go/internal/application/setup"
	"github.com/andrescamacho/industry-go/internal/domain/industry"
	"github.com/andrescamacho/industry-go/internal/domain/material"
	"github.com/andrescamacho/industry-go/internal/domain/process"
	"github.com/andrescamacho/industry-go/internal/domain/production"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
	"github.com/andrescamacho/industry-go/test/helpers"
)

type industryContext struct {
	t        testing.TB
	mediator common.Mediator
	records  *helpers.MockRecordRepository
	location services.Location

	process   *industryQueries.ProcessResponse
	recovered *material.Ledger
	recordID  string
}

func (ic *industryContext) reset() error {
	clock := shared.NewMockClock(helpers.FixtureTime)
	factory := services.NewContextFactory(helpers.NewFixtureCatalog(ic.t), nil, industry.Providers{
		Character: helpers.NeutralCharacter(),
		Clock:     clock,
	}, services.ContextDefaults{TaxRate: 0.1})
	ic.records = helpers.NewMockRecordRepository()

	registry := setup.NewHandlerRegistry(factory, production.NewEngine(0), setup.Repositories{
		Records: ic.records,
	}, setup.Feeds{}, setup.PricingOptions{}, clock)

	ic.mediator = common.NewMediator()
	if err := registry.RegisterIndustryHandlers(ic.mediator); err != nil {
		return err
	}

	ic.location = services.Location{}
	ic.process = nil
	ic.recovered = nil
	ic.recordID = ""
	return nil
}

func (ic *industryContext) send(request common.Request) common.Response {
	resp, err := ic.mediator.Send(context.Background(), request)
	sharedErr = err
	return resp
}

func (ic *industryContext) aReactorArrayInJitaWithoutFacilityTax() error {
	noTax := 0.0
	ic.location = services.Location{SystemID: helpers.Jita, InstallationTypeID: helpers.ReactorArray, TaxRate: &noTax}
	return nil
}

func (ic *industryContext) theStationJita44() error {
	ic.location = services.Location{StationID: helpers.Jita44}
	return nil
}

func (ic *industryContext) iRunCyclesOfReaction(cyclesStr string, reactionID int64, options string) error {
	cycles, err := parseNumber(cyclesStr)
	if err != nil {
		return err
	}
	query := &industryQueries.ReactQuery{
		Location:   ic.location,
		ReactionID: reactionID,
		Cycles:     cycles,
	}
	switch options {
	case "":
	case "reprocessing":
		query.Reprocess = true
	case "feedback":
		query.Feedback = true
	case "reprocessing and feedback":
		query.Reprocess = true
		query.Feedback = true
	default:
		return fmt.Errorf("unknown reaction options %q", options)
	}
	ic.storeProcess(ic.send(query))
	return nil
}

func (ic *industryContext) iRequestUnitsFromReaction(unitsStr string, productID, reactionID int64) error {
	units, err := parseNumber(unitsStr)
	if err != nil {
		return err
	}
	ic.storeProcess(ic.send(&industryQueries.ReactExactQuery{
		Location:   ic.location,
		ReactionID: reactionID,
		ProductID:  productID,
		Units:      units,
	}))
	return nil
}

func (ic *industryContext) iManufactureRunsOfBlueprint(runs, blueprintID int64, depth int) error {
	ic.storeProcess(ic.send(&industryQueries.ManufactureQuery{
		Location:       ic.location,
		BlueprintID:    blueprintID,
		Runs:           runs,
		RecursionDepth: depth,
	}))
	return nil
}

func (ic *industryContext) storeProcess(resp common.Response) {
	ic.process = nil
	if resp != nil {
		ic.process = resp.(*industryQueries.ProcessResponse)
	}
}

func (ic *industryContext) iReprocessUnitsOfItem(units, itemID int64) error {
	resp := ic.send(&industryQueries.ReprocessQuery{
		Location: ic.location,
		ItemID:   itemID,
		Units:    units,
	})
	ic.recovered = nil
	if resp != nil {
		ic.recovered = resp.(*industryQueries.ReprocessResponse).Materials
	}
	return nil
}

func (ic *industryContext) iRecordTheProcessAs(label string) error {
	if err := ic.requireProcess(); err != nil {
		return err
	}
	resp := ic.send(&industryCommands.RecordProcessCommand{Label: label, Tree: ic.process.Tree})
	if resp != nil {
		ic.recordID = resp.(*industryCommands.RecordProcessResponse).RecordID
	}
	return nil
}

func (ic *industryContext) requireProcess() error {
	if ic.process == nil {
		return fmt.Errorf("no process was computed (last error: %v)", sharedErr)
	}
	return nil
}

func (ic *industryContext) rootNode() (*process.Node, error) {
	if err := ic.requireProcess(); err != nil {
		return nil, err
	}
	return ic.process.Tree.MustNode(ic.process.Tree.Root()), nil
}

func (ic *industryContext) theProcessShouldConsume(qtyStr string, itemID int64) error {
	root, err := ic.rootNode()
	if err != nil {
		return err
	}
	expected, err := parseNumber(qtyStr)
	if err != nil {
		return err
	}
	return expectClose(fmt.Sprintf("input of item %d", itemID), expected, root.Input.Quantity(itemID))
}

func (ic *industryContext) theProcessShouldProduce(qtyStr string, itemID int64) error {
	root, err := ic.rootNode()
	if err != nil {
		return err
	}
	expected, err := parseNumber(qtyStr)
	if err != nil {
		return err
	}
	return expectClose(fmt.Sprintf("output of item %d", itemID), expected, root.Output.Quantity(itemID))
}

func (ic *industryContext) theProcessShouldNotProduce(itemID int64) error {
	root, err := ic.rootNode()
	if err != nil {
		return err
	}
	if root.Output.Has(itemID) {
		return fmt.Errorf("expected no output of item %d, got %g", itemID, root.Output.Quantity(itemID))
	}
	return nil
}

func (ic *industryContext) theProcessShouldTake(secondsStr string) error {
	root, err := ic.rootNode()
	if err != nil {
		return err
	}
	expected, err := parseNumber(secondsStr)
	if err != nil {
		return err
	}
	return expectClose("process seconds", expected, root.Seconds)
}

func (ic *industryContext) theProcessShouldRunCycles(runsStr string) error {
	root, err := ic.rootNode()
	if err != nil {
		return err
	}
	expected, err := parseNumber(runsStr)
	if err != nil {
		return err
	}
	return expectClose("runs", expected, root.Runs)
}

func (ic *industryContext) theProcessFlag(negated, flag string) error {
	root, err := ic.rootNode()
	if err != nil {
		return err
	}
	var actual bool
	switch flag {
	case "reprocessed":
		actual = root.Reprocessed
	case "fed back":
		actual = root.Feedback
	default:
		return fmt.Errorf("unknown process flag %q", flag)
	}
	if expected := negated == ""; actual != expected {
		return fmt.Errorf("expected %s to be %t, got %t", flag, expected, actual)
	}
	return nil
}

func (ic *industryContext) theProcessShouldHaveChildren(count int) error {
	root, err := ic.rootNode()
	if err != nil {
		return err
	}
	if got := len(root.Children()); got != count {
		return fmt.Errorf("expected %d sub-processes, got %d", count, got)
	}
	return nil
}

func (ic *industryContext) theTotalMaterialsShouldInclude(qtyStr string, itemID int64) error {
	if err := ic.requireProcess(); err != nil {
		return err
	}
	expected, err := parseNumber(qtyStr)
	if err != nil {
		return err
	}
	return expectClose(fmt.Sprintf("total material of item %d", itemID), expected, ic.process.TotalMaterial.Quantity(itemID))
}

func (ic *industryContext) theRecoveredMaterialsShouldContain(qtyStr string, itemID int64) error {
	if ic.recovered == nil {
		return fmt.Errorf("nothing was reprocessed (last error: %v)", sharedErr)
	}
	expected, err := parseNumber(qtyStr)
	if err != nil {
		return err
	}
	return expectClose(fmt.Sprintf("recovered item %d", itemID), expected, ic.recovered.Quantity(itemID))
}

func (ic *industryContext) theRecordShouldBeStoredWithLabel(label string) error {
	if ic.recordID == "" {
		return fmt.Errorf("no record was stored (last error: %v)", sharedErr)
	}
	record, err := ic.records.FindByID(context.Background(), ic.recordID)
	if err != nil {
		return err
	}
	if record.Label != label {
		return fmt.Errorf("expected label %q, got %q", label, record.Label)
	}
	if record.Tree.Len() != ic.process.Tree.Len() {
		return fmt.Errorf("expected %d stored nodes, got %d", ic.process.Tree.Len(), record.Tree.Len())
	}
	return nil
}

// InitializeIndustryScenario registers reaction, manufacturing and reprocessing steps
// against the fixture catalog
func InitializeIndustryScenario(sc *godog.ScenarioContext, t testing.TB) {
	ic := &industryContext{t: t}

	sc.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, ic.reset()
	})

	sc.Step(`^a reactor array in Jita without facility tax$`, ic.aReactorArrayInJitaWithoutFacilityTax)
	sc.Step(`^the station Jita 4-4$`, ic.theStationJita44)
	sc.Step(`^I run `+number+` cycles of reaction (\d+)(?: with (reprocessing and feedback|reprocessing|feedback))?$`, ic.iRunCyclesOfReaction)
	sc.Step(`^I request `+number+` units of item (\d+) from reaction (\d+)$`, ic.iRequestUnitsFromReaction)
	sc.Step(`^I manufacture (\d+) runs? of blueprint (\d+) with recursion depth (\d+)$`, ic.iManufactureRunsOfBlueprint)
	sc.Step(`^I reprocess (\d+) units of item (\d+)$`, ic.iReprocessUnitsOfItem)
	sc.Step(`^I record the process as "([^"]*)"$`, ic.iRecordTheProcessAs)

	sc.Step(`^the process should consume `+number+` units of item (\d+)$`, ic.theProcessShouldConsume)
	sc.Step(`^the process should produce `+number+` units of item (\d+)$`, ic.theProcessShouldProduce)
	sc.Step(`^the process should not produce item (\d+)$`, ic.theProcessShouldNotProduce)
	sc.Step(`^the process should take `+number+` seconds$`, ic.theProcessShouldTake)
	sc.Step(`^the process should run `+number+` cycles$`, ic.theProcessShouldRunCycles)
	sc.Step(`^the process should (not )?be (reprocessed|fed back)$`, ic.theProcessFlag)
	sc.Step(`^the process should have (\d+) sub-process(?:es)?$`, ic.theProcessShouldHaveChildren)
	sc.Step(`^the total materials should include `+number+` units of item (\d+)$`, ic.theTotalMaterialsShouldInclude)
	sc.Step(`^the recovered materials should contain `+number+` units of item (\d+)$`, ic.theRecoveredMaterialsShouldContain)
	sc.Step(`^the record should be stored with label "([^"]*)"$`, ic.theRecordShouldBeStoredWithLabel)
}
