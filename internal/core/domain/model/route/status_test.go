package route_test

import (
	"errors"
	"testing"

	"routeplanner/internal/core/domain/model/route"
	"routeplanner/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Transitions(t *testing.T) {
	tests := []struct {
		name  string
		from  route.Status
		apply func(route.Status) (route.Status, error)
		want  route.Status
	}{
		{"assembling_finalize", route.Assembling, route.Status.Finalize, route.Active},
		{"active_finalize", route.Active, route.Status.Finalize, route.Unknown},
		{"active_complete", route.Active, route.Status.Complete, route.Completed},
		{"assembling_complete", route.Assembling, route.Status.Complete, route.Unknown},
		{"assembling_cancel", route.Assembling, route.Status.Cancel, route.Cancelled},
		{"active_cancel", route.Active, route.Status.Cancel, route.Cancelled},
		{"completed_cancel", route.Completed, route.Status.Cancel, route.Unknown},
		{"cancelled_finalize", route.Cancelled, route.Status.Finalize, route.Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.apply(tt.from)

			if tt.want == route.Unknown {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errs.ErrInvalidTransition))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range []route.Status{route.Assembling, route.Active, route.Completed, route.Cancelled} {
		got, err := route.ParseStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := route.ParseStatus("UNKNOWN")
	assert.Error(t, err)
	assert.True(t, route.Completed.IsTerminal())
	assert.False(t, route.Active.IsTerminal())
}

func TestTravelPolicy(t *testing.T) {
	p, err := route.NewTravelPolicy(0, 60)
	require.NoError(t, err)
	assert.Equal(t, "1h0m0s", p.StopDuration(60).String())

	_, err = route.NewTravelPolicy(-1, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stop allowance")
	assert.Contains(t, err.Error(), "average speed")

	assert.Equal(t, route.DefaultStopAllowance, route.DefaultTravelPolicy().StopDuration(0))
}
