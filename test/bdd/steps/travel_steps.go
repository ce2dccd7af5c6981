package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"

	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
)

type travelContext struct {
	origin      shared.Position
	destination shared.Position
	duration    time.Duration
}

func (tc *travelContext) reset() {
	tc.origin = shared.Position{}
	tc.destination = shared.Position{}
	tc.duration = 0
}

func (tc *travelContext) aFleetAtCoordinates(x, y float64) error {
	tc.origin = shared.Position{X: x, Y: y}
	return nil
}

func (tc *travelContext) aDestinationAtCoordinates(x, y float64) error {
	tc.destination = shared.Position{X: x, Y: y}
	return nil
}

func (tc *travelContext) theFleetTravelsAt(speedPerHour float64) error {
	distance := tc.origin.DistanceTo(tc.destination)
	tc.duration = shared.TravelTime(distance, speedPerHour)
	return nil
}

func (tc *travelContext) theTripTakesMinutes(minutes int) error {
	expected := time.Duration(minutes) * time.Minute
	if tc.duration != expected {
		return fmt.Errorf("expected trip of %s, got %s", expected, tc.duration)
	}
	return nil
}

func InitializeTravelScenario(sc *godog.ScenarioContext) {
	tc := &travelContext{}

	sc.Before(func(ctx context.Context, scenario *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	sc.Step(`^a fleet at coordinates (-?\d+\.?\d*), (-?\d+\.?\d*)$`, tc.aFleetAtCoordinates)
	sc.Step(`^a destination at coordinates (-?\d+\.?\d*), (-?\d+\.?\d*)$`, tc.aDestinationAtCoordinates)
	sc.Step(`^the fleet travels at (\d+\.?\d*) per hour$`, tc.theFleetTravelsAt)
	sc.Step(`^the trip takes (\d+) minutes$`, tc.theTripTakesMinutes)
}
