package route

import (
	"errors"
	"fmt"
	"math"
	"time"

	"routeplanner/internal/pkg/errs"
)

const (
	DefaultStopAllowance   = 15 * time.Minute
	DefaultAverageSpeedKmh = 30.0
)

// TravelPolicy converts an order's drive distance into planned route time:
// a fixed allowance per stop plus the distance driven at the average speed.
type TravelPolicy struct {
	stopAllowance   time.Duration
	averageSpeedKmh float64
}

func NewTravelPolicy(stopAllowance time.Duration, averageSpeedKmh float64) (TravelPolicy, error) {
	var problems []error
	if stopAllowance < 0 {
		problems = append(problems, errs.NewValueIsOutOfRangeError("stop allowance", stopAllowance, 0, "unbounded"))
	}
	if averageSpeedKmh <= 0 || math.IsNaN(averageSpeedKmh) || math.IsInf(averageSpeedKmh, 0) {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("average speed",
			fmt.Errorf("%v is not greater than 0", averageSpeedKmh)))
	}
	if err := errors.Join(problems...); err != nil {
		return TravelPolicy{}, err
	}
	return TravelPolicy{stopAllowance: stopAllowance, averageSpeedKmh: averageSpeedKmh}, nil
}

func DefaultTravelPolicy() TravelPolicy {
	return TravelPolicy{stopAllowance: DefaultStopAllowance, averageSpeedKmh: DefaultAverageSpeedKmh}
}

func (p TravelPolicy) StopAllowance() time.Duration { return p.stopAllowance }

func (p TravelPolicy) AverageSpeedKmh() float64 { return p.averageSpeedKmh }

// StopDuration is the time a stop adds to the route, rounded to the second.
func (p TravelPolicy) StopDuration(distanceKm float64) time.Duration {
	speed := p.averageSpeedKmh
	if speed <= 0 {
		speed = DefaultAverageSpeedKmh
	}
	drive := time.Duration(distanceKm / speed * float64(time.Hour))
	return (p.stopAllowance + drive).Round(time.Second)
}
