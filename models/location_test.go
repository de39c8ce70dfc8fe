package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationNormalize(t *testing.T) {
	loc := Location{Address: "  Rua A, 10 ", City: " Araçuaí ", State: "mg"}
	loc.Normalize()

	assert.Equal(t, "Rua A, 10", loc.Address)
	assert.Equal(t, "Araçuaí", loc.City)
	assert.Equal(t, "MG", loc.State)
}

func TestLocationValidate(t *testing.T) {
	valid := func() Location {
		coords := []float64{-42.07, -16.85}
		return Location{City: "Araçuaí", State: "MG", Coordinates: &coords}
	}

	t.Run("valid location passes", func(t *testing.T) {
		loc := valid()
		require.NoError(t, loc.Validate())
	})

	t.Run("coordinates are optional", func(t *testing.T) {
		loc := Location{City: "Araçuaí", State: "MG"}
		require.NoError(t, loc.Validate())
	})

	t.Run("city required", func(t *testing.T) {
		loc := valid()
		loc.City = ""
		assert.Error(t, loc.Validate())
	})

	t.Run("state must be two letters", func(t *testing.T) {
		for _, state := range []string{"", "M", "MGG", "M1", "1G"} {
			loc := valid()
			loc.State = state
			assert.Error(t, loc.Validate(), "state %q should fail", state)
		}
	})

	t.Run("coordinate pair length", func(t *testing.T) {
		loc := valid()
		coords := []float64{-42.07}
		loc.Coordinates = &coords
		assert.Error(t, loc.Validate())
	})

	t.Run("coordinate bounds", func(t *testing.T) {
		cases := [][]float64{
			{-180.5, 0},
			{180.5, 0},
			{0, -90.5},
			{0, 90.5},
		}
		for _, coords := range cases {
			loc := valid()
			c := coords
			loc.Coordinates = &c
			assert.Error(t, loc.Validate(), "coords %v should fail", coords)
		}

		edge := []float64{-180, 90}
		loc := valid()
		loc.Coordinates = &edge
		assert.NoError(t, loc.Validate())
	})

	t.Run("non-finite coordinates", func(t *testing.T) {
		cases := [][]float64{
			{math.NaN(), 0},
			{0, math.Inf(1)},
			{math.Inf(-1), 0},
		}
		for _, coords := range cases {
			loc := valid()
			c := coords
			loc.Coordinates = &c
			assert.Error(t, loc.Validate())
		}
	})
}
