package order_test

import (
	"errors"
	"testing"

	"routeplanner/internal/core/domain/model/order"
	"routeplanner/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    order.Status
		apply   func(order.Status) (order.Status, error)
		want    order.Status
		wantErr bool
	}{
		{"pending_assign", order.Pending, order.Status.Assign, order.Assigned, false},
		{"assigned_assign", order.Assigned, order.Status.Assign, 0, true},
		{"assigned_release", order.Assigned, order.Status.Release, order.Pending, false},
		{"pending_release", order.Pending, order.Status.Release, 0, true},
		{"assigned_deliver", order.Assigned, order.Status.Deliver, order.Delivered, false},
		{"pending_deliver", order.Pending, order.Status.Deliver, 0, true},
		{"delivered_release", order.Delivered, order.Status.Release, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.apply(tt.from)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errs.ErrInvalidTransition))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "PENDING", order.Pending.String())
	assert.Equal(t, "ASSIGNED", order.Assigned.String())
	assert.Equal(t, "DELIVERED", order.Delivered.String())
	assert.Equal(t, "UNKNOWN", order.Status(42).String())
	assert.Error(t, order.Status(42).Validate())
	assert.Error(t, order.Unknown.Validate())
}

func TestParsePeriodAndPriority(t *testing.T) {
	p, err := order.ParsePeriod("afternoon")
	require.NoError(t, err)
	assert.Equal(t, order.Afternoon, p)

	_, err = order.ParsePeriod("night")
	assert.Error(t, err)

	pr, err := order.ParsePriority("")
	require.NoError(t, err)
	assert.Equal(t, order.Normal, pr)

	pr, err = order.ParsePriority("URGENT")
	require.NoError(t, err)
	assert.True(t, pr.Outranks(order.Normal))
	assert.False(t, order.Normal.Outranks(order.Urgent))
}
