// Package fleetfile serves fleet master data from a YAML document:
//
//	vehicles:
//	  - id: 7d1c7d0e-8a4c-4f51-9a0b-2f0d8c3f2b11
//	    plate: ABC-1234
//	    driver: Carlos
//	    capacityLiters: 500
//
// The file is read once; the planner never writes it.
package fleetfile

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/domain/model/vehicle"
	"routeplanner/internal/core/ports"
	"routeplanner/internal/pkg/errs"

	"gopkg.in/yaml.v3"
)

var _ ports.VehicleRepository = &Repository{}

type document struct {
	Vehicles []vehicleEntry `yaml:"vehicles"`
}

type vehicleEntry struct {
	ID             string `yaml:"id"`
	Plate          string `yaml:"plate"`
	Driver         string `yaml:"driver"`
	CapacityLiters int    `yaml:"capacityLiters"`
}

// Repository is an immutable, sorted-by-plate vehicle list.
type Repository struct {
	vehicles []*vehicle.Vehicle
	byID     map[kernel.UUID]*vehicle.Vehicle
}

// Load reads the fleet file at path.
func Load(path string) (*Repository, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fleet file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse decodes a fleet document. Every entry is validated; the first
// invalid one fails the whole document, as do duplicate ids or plates.
func Parse(r io.Reader) (*Repository, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode fleet file: %w", err)
	}

	repo := &Repository{byID: make(map[kernel.UUID]*vehicle.Vehicle, len(doc.Vehicles))}
	plates := make(map[string]struct{}, len(doc.Vehicles))

	for i, entry := range doc.Vehicles {
		id, err := kernel.UUIDFromString(entry.ID)
		if err != nil {
			return nil, fmt.Errorf("vehicle #%d: %w", i+1, err)
		}
		v, err := vehicle.NewVehicle(id, entry.Plate, entry.Driver, entry.CapacityLiters)
		if err != nil {
			return nil, fmt.Errorf("vehicle #%d: %w", i+1, err)
		}

		if _, dup := repo.byID[id]; dup {
			return nil, errs.NewValueIsInvalidErrorWithCause("fleet file",
				fmt.Errorf("vehicle id %s listed twice", id))
		}
		if _, dup := plates[v.Plate()]; dup {
			return nil, errs.NewValueIsInvalidErrorWithCause("fleet file",
				fmt.Errorf("plate %s listed twice", v.Plate()))
		}

		plates[v.Plate()] = struct{}{}
		repo.byID[id] = v
		repo.vehicles = append(repo.vehicles, v)
	}

	slices.SortFunc(repo.vehicles, func(a, b *vehicle.Vehicle) int {
		return strings.Compare(a.Plate(), b.Plate())
	})
	return repo, nil
}

func (r *Repository) Get(_ context.Context, id kernel.UUID) (*vehicle.Vehicle, error) {
	v, ok := r.byID[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("vehicle", id.String())
	}
	return v, nil
}

func (r *Repository) GetAll(_ context.Context) ([]*vehicle.Vehicle, error) {
	return slices.Clone(r.vehicles), nil
}
