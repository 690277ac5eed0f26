package vehicle

import (
	"errors"
	"fmt"
	"strings"

	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/pkg/errs"
	"routeplanner/internal/pkg/guard"
)

var ErrVehicleIsNotConstructed = errors.New("Vehicle must be created via NewVehicle constructor")

// Vehicle pairs a truck with the driver who runs it. It is reference data
// owned by the fleet master data; the planner only reads it.
type Vehicle struct {
	id             kernel.UUID
	plate          string
	driverName     string
	capacityLiters int
	guard          guard.ConstructorGuard
}

func NewVehicle(id kernel.UUID, plate, driverName string, capacityLiters int) (*Vehicle, error) {
	v := &Vehicle{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		v.setID(id),
		v.setPlate(plate),
		v.setDriverName(driverName),
		v.setCapacity(capacityLiters),
	); err != nil {
		return nil, err
	}

	return v, nil
}

func (v *Vehicle) Validate() error {
	if v == nil {
		return ErrVehicleIsNotConstructed
	}
	return v.guard.Validate(ErrVehicleIsNotConstructed)
}

func (v *Vehicle) ID() kernel.UUID { return v.id }

func (v *Vehicle) Plate() string { return v.plate }

func (v *Vehicle) DriverName() string { return v.driverName }

// CapacityLiters is the maximum cumulative order volume the vehicle carries.
func (v *Vehicle) CapacityLiters() int { return v.capacityLiters }

func (v *Vehicle) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	v.id = id
	return nil
}

func (v *Vehicle) setPlate(plate string) error {
	plate = strings.ToUpper(strings.TrimSpace(plate))
	if plate == "" {
		return errs.NewValueIsRequiredError("plate")
	}
	v.plate = plate
	return nil
}

func (v *Vehicle) setDriverName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.NewValueIsRequiredError("driver name")
	}
	v.driverName = name
	return nil
}

func (v *Vehicle) setCapacity(capacity int) error {
	if capacity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("capacity is invalid",
			fmt.Errorf("%d is not greater than 0", capacity))
	}
	v.capacityLiters = capacity
	return nil
}
