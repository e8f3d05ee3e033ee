package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	assert.Equal(t, 0.0, DistanceKm(6.9271, 79.8612, 6.9271, 79.8612))

	// One degree of latitude is about 111.19 km on a 6371 km sphere.
	assert.InDelta(t, 111.19, DistanceKm(0, 0, 1, 0), 0.01)

	// Colombo City Center to Independence Square.
	d := DistanceKm(6.9271, 79.8612, 6.9022, 79.8607)
	assert.InDelta(t, 2.77, d, 0.01)
	assert.Equal(t, d, DistanceKm(6.9022, 79.8607, 6.9271, 79.8612))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 2.77, Round2(2.7693))
	assert.Equal(t, 50.0, Round2(49.999))
	assert.Equal(t, -1.24, Round2(-1.235001))
}

func TestValidCoordinate(t *testing.T) {
	assert.True(t, ValidCoordinate(90, 180))
	assert.True(t, ValidCoordinate(-90, -180))
	assert.False(t, ValidCoordinate(90.1, 0))
	assert.False(t, ValidCoordinate(0, -180.5))
}
