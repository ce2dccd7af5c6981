package capitalship_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcapitalship "github.com/stellardrift/stellardrift-go/internal/application/capitalship"
	"github.com/stellardrift/stellardrift-go/internal/domain/capitalship"
	"github.com/stellardrift/stellardrift-go/internal/domain/scheduler"
)

func (f *shipFixture) taskHandlers() *appcapitalship.TaskHandlers {
	return appcapitalship.NewTaskHandlers(f.ships, f.notifications, f.sched, f.game, f.clock)
}

func (f *shipFixture) shipTask(t *testing.T, kind scheduler.Kind, shipID string) *scheduler.Task {
	task, err := scheduler.NewTask(kind, scheduler.CapitalShipPayload{CapitalShipID: shipID}, f.clock.Now(), f.clock.Now())
	require.NoError(t, err)
	return task
}

func TestHandleArrival_DeploysAndBooksCommitmentEnd(t *testing.T) {
	// Arrange
	f := newShipFixture(t)
	ship := f.addShip(t, capitalship.StatusTraveling)
	ship.TargetPlanetID = 7
	ship.CommitmentDays = 3
	require.NoError(t, f.ships.Update(context.Background(), ship))

	// Act
	err := f.taskHandlers().HandleArrival(context.Background(), f.shipTask(t, scheduler.KindCapitalShipArrival, ship.ID))

	// Assert - the commitment window starts at actual arrival
	require.NoError(t, err)
	stored := f.storedShip(t, ship.ID)
	assert.Equal(t, capitalship.StatusDeployed, stored.Status)
	require.NotNil(t, stored.CommitmentEndsAt)
	assert.Equal(t, baseTime.Add(3*24*time.Hour), *stored.CommitmentEndsAt)
	assert.Equal(t, 1, f.pendingCount(t, scheduler.KindCommitmentEnd))

	notes, err := f.notifications.ListByUser(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "capitalShip.arrived", notes[0].Kind)
}

func TestHandleArrival_StaleAfterRecallSkips(t *testing.T) {
	// Arrange - the owner recalled before the arrival task fired
	f := newShipFixture(t)
	ship := f.addShip(t, capitalship.StatusReady)

	// Act
	err := f.taskHandlers().HandleArrival(context.Background(), f.shipTask(t, scheduler.KindCapitalShipArrival, ship.ID))

	// Assert - the gate absorbs the task without effect
	require.NoError(t, err)
	assert.Equal(t, capitalship.StatusReady, f.storedShip(t, ship.ID).Status)
	assert.Zero(t, f.pendingCount(t, scheduler.KindCommitmentEnd))
}

func TestHandleReturn_DocksShip(t *testing.T) {
	// Arrange
	f := newShipFixture(t)
	ship := f.addShip(t, capitalship.StatusReturning)

	// Act
	err := f.taskHandlers().HandleReturn(context.Background(), f.shipTask(t, scheduler.KindCapitalShipReturn, ship.ID))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, capitalship.StatusReady, f.storedShip(t, ship.ID).Status)
}

func TestHandleCommitmentEnd_FlagsRecallEligible(t *testing.T) {
	// Arrange
	f := newShipFixture(t)
	ship := f.addShip(t, capitalship.StatusDeployed)

	// Act
	err := f.taskHandlers().HandleCommitmentEnd(context.Background(), f.shipTask(t, scheduler.KindCommitmentEnd, ship.ID))

	// Assert - the ship stays on station until the owner recalls it
	require.NoError(t, err)
	stored := f.storedShip(t, ship.ID)
	assert.Equal(t, capitalship.StatusDeployed, stored.Status)
	assert.True(t, stored.RecallEligible)

	notes, err := f.notifications.ListByUser(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "capitalShip.commitmentEnded", notes[0].Kind)
}

func TestHandleReturn_MissingShipSkips(t *testing.T) {
	// Arrange - the ship was salvaged while the task sat in the queue
	f := newShipFixture(t)

	// Act
	err := f.taskHandlers().HandleReturn(context.Background(), f.shipTask(t, scheduler.KindCapitalShipReturn, "no-such-ship"))

	// Assert
	require.NoError(t, err)
}
