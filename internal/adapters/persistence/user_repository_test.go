package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellardrift/stellardrift-go/internal/adapters/persistence"
	"github.com/stellardrift/stellardrift-go/internal/domain/player"
	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
	"github.com/stellardrift/stellardrift-go/test/helpers"
)

func TestUserRepository_RoundTrip(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormUserRepository(db)
	u := &player.User{Name: "Calder", Credits: 1200.5, DarkMatter: 30, XP: 2500, Level: 3}
	require.NoError(t, repo.Add(context.Background(), u))
	require.NotZero(t, u.ID)

	// Act
	u.Credits = 900
	u.AddXP(750)
	require.NoError(t, repo.Update(context.Background(), u))
	loaded, err := repo.FindByID(context.Background(), u.ID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Calder", loaded.Name)
	assert.Equal(t, 900.0, loaded.Credits)
	assert.Equal(t, 30.0, loaded.DarkMatter)
	assert.Equal(t, 3250, loaded.XP)
	assert.Equal(t, 3, loaded.Level)
}

func TestUserRepository_VersionConflict(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormUserRepository(db)
	u := &player.User{Name: "Calder", Credits: 100}
	require.NoError(t, repo.Add(context.Background(), u))

	first, err := repo.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(context.Background(), u.ID)
	require.NoError(t, err)

	// Act - both copies try to spend from the same balance
	require.NoError(t, first.SpendCredits(60))
	require.NoError(t, repo.Update(context.Background(), first))
	require.NoError(t, second.SpendCredits(60))
	err = repo.Update(context.Background(), second)

	// Assert - the stale copy loses and the first debit stands
	var conflict *shared.VersionConflictError
	require.ErrorAs(t, err, &conflict)
	loaded, err := repo.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 40.0, loaded.Credits)
}

func TestUserRepository_FindMissing(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormUserRepository(db)

	_, err := repo.FindByID(context.Background(), 404)

	assert.True(t, shared.IsNotFound(err))
}

func TestNotificationRepository_ListNewestFirst(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormNotificationRepository(db)
	older := &player.Notification{UserID: 1, Kind: "fleet.returned", Message: "Fleet home", CreatedAt: updateTime.Unix()}
	newer := &player.Notification{UserID: 1, Kind: "capitalShip.arrived", Message: "On station", CreatedAt: updateTime.Unix() + 60}
	other := &player.Notification{UserID: 2, Kind: "fleet.destroyed", Message: "Lost", CreatedAt: updateTime.Unix()}
	require.NoError(t, repo.Append(context.Background(), older))
	require.NoError(t, repo.Append(context.Background(), newer))
	require.NoError(t, repo.Append(context.Background(), other))
	require.NotZero(t, older.ID)

	// Act
	listed, err := repo.ListByUser(context.Background(), 1, 10)

	// Assert
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "capitalShip.arrived", listed[0].Kind)
	assert.Equal(t, "fleet.returned", listed[1].Kind)
}

func TestNotificationRepository_LimitCapsResults(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormNotificationRepository(db)
	for i := 0; i < 5; i++ {
		n := &player.Notification{UserID: 1, Kind: "fleet.returned", CreatedAt: updateTime.Unix() + int64(i)}
		require.NoError(t, repo.Append(context.Background(), n))
	}

	// Act
	listed, err := repo.ListByUser(context.Background(), 1, 2)

	// Assert
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, updateTime.Unix()+4, listed[0].CreatedAt)
}
