package shared_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stellardrift/stellardrift-go/internal/domain/shared"
)

func TestAmounts_AddReturnsCopy(t *testing.T) {
	// Arrange
	a := shared.Amounts{shared.ResourceCarbon: 100}
	b := shared.Amounts{shared.ResourceCarbon: 50, shared.ResourceTitanium: 25}

	// Act
	sum := a.Add(b)

	// Assert
	assert.Equal(t, 150, sum.Get(shared.ResourceCarbon))
	assert.Equal(t, 25, sum.Get(shared.ResourceTitanium))
	assert.Equal(t, 100, a.Get(shared.ResourceCarbon), "receiver must stay untouched")
}

func TestAmounts_ScaleTruncatesTowardZero(t *testing.T) {
	a := shared.Amounts{shared.ResourceCarbon: 10, shared.ResourceTitanium: 3}

	scaled := a.Scale(0.5)

	assert.Equal(t, 5, scaled.Get(shared.ResourceCarbon))
	assert.Equal(t, 1, scaled.Get(shared.ResourceTitanium))
}

func TestAmounts_Covers(t *testing.T) {
	have := shared.Amounts{shared.ResourceCarbon: 100, shared.ResourceTitanium: 50}

	assert.True(t, have.Covers(shared.Amounts{shared.ResourceCarbon: 100}))
	assert.False(t, have.Covers(shared.Amounts{shared.ResourceCarbon: 101}))
	assert.False(t, have.Covers(shared.Amounts{shared.ResourceFood: 1}))
	assert.True(t, have.Covers(nil))
}

func TestAmounts_NilReadsAsZero(t *testing.T) {
	var a shared.Amounts

	assert.Equal(t, 0, a.Get(shared.ResourceCarbon))
	assert.True(t, a.IsZero())
	assert.Equal(t, 0, a.Total())
}

func TestResource_IsPlanetResource(t *testing.T) {
	assert.True(t, shared.ResourceCarbon.IsPlanetResource())
	assert.True(t, shared.ResourceFood.IsPlanetResource())
	assert.False(t, shared.ResourceCredits.IsPlanetResource())
	assert.False(t, shared.ResourceDarkMatter.IsPlanetResource())
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 5.0, shared.Clamp(5, 0, 10))
	assert.Equal(t, 0.0, shared.Clamp(-1, 0, 10))
	assert.Equal(t, 10.0, shared.Clamp(11, 0, 10))
}

func TestTravelTime(t *testing.T) {
	// Arrange
	origin := shared.Position{X: 0, Y: 0}
	target := shared.Position{X: 30, Y: 40}

	// Act
	distance := origin.DistanceTo(target)
	travel := shared.TravelTime(distance, 40)

	// Assert
	assert.Equal(t, 50.0, distance)
	assert.Equal(t, 75*time.Minute, travel)
}
