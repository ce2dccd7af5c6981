package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"

	"github.com/stellardrift/stellardrift-go/internal/domain/capitalship"
	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
)

type buildProgressContext struct {
	progress *capitalship.BuildProgress
	accepted shared.Amounts
	finished bool
	now      time.Time
}

func (bc *buildProgressContext) reset() {
	bc.progress = nil
	bc.accepted = nil
	bc.finished = false
	bc.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func (bc *buildProgressContext) aBuildPhaseRequiring(carbon, titanium int) error {
	required := shared.Amounts{
		shared.ResourceCarbon:   carbon,
		shared.ResourceTitanium: titanium,
	}
	bc.progress = capitalship.NewBuildProgress(required, 1, false)
	return nil
}

func (bc *buildProgressContext) iDonate(amount int, resource string) error {
	if bc.progress == nil {
		return fmt.Errorf("no build in progress")
	}
	offer := shared.Amounts{shared.Resource(resource): amount}
	bc.accepted = bc.progress.Accept(offer, bc.now)
	return nil
}

func (bc *buildProgressContext) isAccepted(amount int, resource string) error {
	got := bc.accepted.Get(shared.Resource(resource))
	if got != amount {
		return fmt.Errorf("expected %d %s accepted, got %d", amount, resource, got)
	}
	return nil
}

func (bc *buildProgressContext) thePhaseStillNeeds(amount int, resource string) error {
	got := bc.progress.StillNeeded(shared.Resource(resource))
	if got != amount {
		return fmt.Errorf("expected %d %s still needed, got %d", amount, resource, got)
	}
	return nil
}

func (bc *buildProgressContext) thePhaseIsComplete() error {
	if !bc.progress.PhaseComplete() {
		return fmt.Errorf("phase is not complete")
	}
	return nil
}

func (bc *buildProgressContext) thePhaseIsNotComplete() error {
	if bc.progress.PhaseComplete() {
		return fmt.Errorf("phase is unexpectedly complete")
	}
	return nil
}

func (bc *buildProgressContext) thePhaseAdvances() error {
	bc.finished = bc.progress.AdvancePhase(nil)
	return nil
}

func (bc *buildProgressContext) theBuildIsFinished() error {
	if !bc.finished {
		return fmt.Errorf("build is not finished")
	}
	return nil
}

func InitializeBuildProgressScenario(sc *godog.ScenarioContext) {
	bc := &buildProgressContext{}

	sc.Before(func(ctx context.Context, scenario *godog.Scenario) (context.Context, error) {
		bc.reset()
		return ctx, nil
	})

	sc.Step(`^a build phase requiring (\d+) carbon and (\d+) titanium$`, bc.aBuildPhaseRequiring)
	sc.Step(`^I donate (\d+) (carbon|titanium)$`, bc.iDonate)
	sc.Step(`^(\d+) (carbon|titanium) is accepted$`, bc.isAccepted)
	sc.Step(`^the phase still needs (\d+) (carbon|titanium)$`, bc.thePhaseStillNeeds)
	sc.Step(`^the phase is complete$`, bc.thePhaseIsComplete)
	sc.Step(`^the phase is not complete$`, bc.thePhaseIsNotComplete)
	sc.Step(`^the phase advances$`, bc.thePhaseAdvances)
	sc.Step(`^the build is finished$`, bc.theBuildIsFinished)
}
