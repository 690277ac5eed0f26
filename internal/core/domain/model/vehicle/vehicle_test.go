package vehicle_test

import (
	"testing"

	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/domain/model/vehicle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVehicle(t *testing.T) {
	t.Run("should create vehicle and normalize plate", func(t *testing.T) {
		id := kernel.NewUUID()

		v, err := vehicle.NewVehicle(id, " abc-1234 ", "Carlos", 500)

		require.NoError(t, err)
		require.NoError(t, v.Validate())
		assert.True(t, v.ID().IsEqual(id))
		assert.Equal(t, "ABC-1234", v.Plate())
		assert.Equal(t, "Carlos", v.DriverName())
		assert.Equal(t, 500, v.CapacityLiters())
	})

	t.Run("should report every invalid field", func(t *testing.T) {
		v, err := vehicle.NewVehicle(kernel.UUID{}, "", " ", 0)

		require.Error(t, err)
		assert.Nil(t, v)
		assert.Contains(t, err.Error(), "UUID must be created")
		assert.Contains(t, err.Error(), "plate")
		assert.Contains(t, err.Error(), "driver name")
		assert.Contains(t, err.Error(), "0 is not greater than 0")
	})

	t.Run("should fail validation for nil vehicle", func(t *testing.T) {
		var v *vehicle.Vehicle

		assert.ErrorIs(t, v.Validate(), vehicle.ErrVehicleIsNotConstructed)
	})
}
