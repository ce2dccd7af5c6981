package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/stellardrift/stellardrift-go/internal/domain/player"
)

type progressionContext struct {
	user   *player.User
	result player.AddXPResult
	err    error
}

func (pc *progressionContext) reset() {
	pc.user = nil
	pc.result = player.AddXPResult{}
	pc.err = nil
}

func (pc *progressionContext) aLevelCommanderWithXP(level, xp int) error {
	pc.user = &player.User{ID: 1, Name: "commander", Level: level, XP: xp}
	return nil
}

func (pc *progressionContext) aCommanderWithCredits(credits float64) error {
	pc.user = &player.User{ID: 1, Name: "commander", Level: 1, Credits: credits}
	return nil
}

func (pc *progressionContext) theCommanderEarnsXP(amount int) error {
	pc.result = pc.user.AddXP(amount)
	return nil
}

func (pc *progressionContext) theCommanderSpendsCredits(amount float64) error {
	pc.err = pc.user.SpendCredits(amount)
	return nil
}

func (pc *progressionContext) theCommanderIsLevel(level int) error {
	if pc.user.Level != level {
		return fmt.Errorf("expected level %d, got %d", level, pc.user.Level)
	}
	return nil
}

func (pc *progressionContext) theSpendIsRejected() error {
	if pc.err == nil {
		return fmt.Errorf("expected the spend to fail")
	}
	return nil
}

func (pc *progressionContext) theBalanceIsCredits(credits float64) error {
	if pc.user.Credits != credits {
		return fmt.Errorf("expected %v credits, got %v", credits, pc.user.Credits)
	}
	return nil
}

func InitializeProgressionScenario(sc *godog.ScenarioContext) {
	pc := &progressionContext{}

	sc.Before(func(ctx context.Context, scenario *godog.Scenario) (context.Context, error) {
		pc.reset()
		return ctx, nil
	})

	sc.Step(`^a level (\d+) commander with (\d+) XP$`, pc.aLevelCommanderWithXP)
	sc.Step(`^a commander with (\d+\.?\d*) credits$`, pc.aCommanderWithCredits)
	sc.Step(`^the commander earns (\d+) XP$`, pc.theCommanderEarnsXP)
	sc.Step(`^the commander spends (\d+\.?\d*) credits$`, pc.theCommanderSpendsCredits)
	sc.Step(`^the commander is level (\d+)$`, pc.theCommanderIsLevel)
	sc.Step(`^the spend is rejected$`, pc.theSpendIsRejected)
	sc.Step(`^the balance is (\d+\.?\d*) credits$`, pc.theBalanceIsCredits)
}
