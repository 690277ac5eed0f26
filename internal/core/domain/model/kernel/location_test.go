package kernel_test

import (
	"math"
	"testing"

	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocation(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{name: "depot origin", lat: 0, lng: 0},
		{name: "map percent coordinates", lat: 20, lng: 30},
		{name: "real world coordinates", lat: -23.5505, lng: -46.6333},
		{name: "latitude boundaries", lat: 90, lng: -180},
		{name: "latitude too high", lat: 90.01, lng: 0, wantErr: true},
		{name: "longitude too low", lat: 0, lng: -180.5, wantErr: true},
		{name: "NaN latitude", lat: math.NaN(), lng: 0, wantErr: true},
		{name: "infinite longitude", lat: 0, lng: math.Inf(1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := kernel.NewLocation(tt.lat, tt.lng)

			if tt.wantErr {
				require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
				assert.Equal(t, kernel.Location{}, loc)
				return
			}
			require.NoError(t, err)
			require.NoError(t, loc.Validate())
			assert.InDelta(t, tt.lat, loc.Lat(), 1e-12)
			assert.InDelta(t, tt.lng, loc.Lng(), 1e-12)
		})
	}

	t.Run("reports both coordinates when both are invalid", func(t *testing.T) {
		_, err := kernel.NewLocation(100, 200)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "is lat")
		assert.Contains(t, err.Error(), "is lng")
	})
}

func TestLocation_Validate(t *testing.T) {
	var zero kernel.Location

	require.ErrorIs(t, zero.Validate(), kernel.ErrLocationIsNotConstructed)
}

func TestLocation_String(t *testing.T) {
	assert.Equal(t, "Location(1.5,2)", kernel.MustNewLocation(1.5, 2).String())
}

func TestDistanceMetric_Distance(t *testing.T) {
	origin := kernel.MustNewLocation(0, 0)

	t.Run("euclidean on planar grid", func(t *testing.T) {
		d, err := kernel.Euclidean.Distance(origin, kernel.MustNewLocation(3, 4))

		require.NoError(t, err)
		assert.InDelta(t, 5.0, d, 1e-9)
	})

	t.Run("haversine one degree of latitude", func(t *testing.T) {
		d, err := kernel.Haversine.Distance(origin, kernel.MustNewLocation(1, 0))

		require.NoError(t, err)
		assert.InDelta(t, 111.19, d, 0.01)
	})

	t.Run("symmetric and zero on identity", func(t *testing.T) {
		a := kernel.MustNewLocation(20, 30)
		b := kernel.MustNewLocation(60, 50)

		for _, metric := range []kernel.DistanceMetric{kernel.Euclidean, kernel.Haversine} {
			ab, err := metric.Distance(a, b)
			require.NoError(t, err)
			ba, err := metric.Distance(b, a)
			require.NoError(t, err)
			aa, err := metric.Distance(a, a)
			require.NoError(t, err)

			assert.InDelta(t, ab, ba, 1e-9, metric.String())
			assert.InDelta(t, 0, aa, 1e-9, metric.String())
		}
	})

	t.Run("rejects unconstructed locations", func(t *testing.T) {
		_, err := kernel.Euclidean.Distance(origin, kernel.Location{})

		require.ErrorIs(t, err, kernel.ErrLocationIsNotConstructed)
	})
}

func TestParseDistanceMetric(t *testing.T) {
	m, err := kernel.ParseDistanceMetric("")
	require.NoError(t, err)
	assert.Equal(t, kernel.Euclidean, m)

	m, err = kernel.ParseDistanceMetric("haversine")
	require.NoError(t, err)
	assert.Equal(t, kernel.Haversine, m)

	_, err = kernel.ParseDistanceMetric("manhattan")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}
