package bdd

import (
	"os"
	"testing"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/industry-go/test/bdd/steps"
	"github.com/andrescamacho/industry-go/test/helpers"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: func(sc *godog.ScenarioContext) {
			InitializeScenario(sc, t)
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/domain", "features/application"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

func InitializeScenario(sc *godog.ScenarioContext, t testing.TB) {
	// Common error assertions first so every feature shares one wording
	steps.InitializeCommonSteps(sc)
	steps.InitializeLedgerScenario(sc)
	steps.InitializeIndustryScenario(sc, t)
	steps.InitializePriceScenario(sc)
}

func TestMain(m *testing.M) {
	// Price scenarios share one in-memory database, truncated before each scenario
	if err := helpers.InitializeSharedTestDB(); err != nil {
		panic("Failed to initialize shared test database: " + err.Error())
	}

	code := m.Run()
	helpers.CloseSharedTestDB()
	os.Exit(code)
}
