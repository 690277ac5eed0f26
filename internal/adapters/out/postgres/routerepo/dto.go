// Package routerepo persists routes with their ordered stop lists. Stops live
// in their own table keyed by route and position and are rewritten whenever
// the route is.
package routerepo

import (
	"time"

	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/domain/model/order"
	"routeplanner/internal/core/domain/model/route"

	"github.com/google/uuid"
)

type RouteDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	VehicleID    uuid.UUID `gorm:"type:uuid;not null;index:idx_routes_slot,priority:1"`
	Plate        string    `gorm:"not null"`
	DriverName   string    `gorm:"not null"`
	Date         time.Time `gorm:"type:date;not null;index:idx_routes_slot,priority:2"`
	Period       int       `gorm:"not null;index:idx_routes_slot,priority:3"`
	Capacity     int       `gorm:"not null"`
	Status       int       `gorm:"not null;index"`
	Tracking     int       `gorm:"not null"`
	DispatchedAt *time.Time
	ClosedAt     *time.Time
	DelaySeconds int64
	Version      int       `gorm:"not null"`
	Stops        []StopDTO `gorm:"foreignKey:RouteID;constraint:OnDelete:CASCADE"`
}

func (RouteDTO) TableName() string {
	return "routes"
}

type StopDTO struct {
	RouteID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Position        int       `gorm:"primaryKey;autoIncrement:false"`
	OrderID         uuid.UUID `gorm:"type:uuid;not null;index"`
	Client          string
	Volume          int
	DistanceKm      float64
	DurationSeconds int64
	Priority        int
	Lat             float64
	Lng             float64
	Completed       bool
}

func (StopDTO) TableName() string {
	return "route_stops"
}

func fromDomain(r *route.Route) RouteDTO {
	s := r.Snapshot()

	dto := RouteDTO{
		ID:           s.ID.Bytes(),
		VehicleID:    s.VehicleID.Bytes(),
		Plate:        s.Plate,
		DriverName:   s.DriverName,
		Date:         s.Date,
		Period:       int(s.Period),
		Capacity:     s.Capacity,
		Status:       int(s.Status),
		Tracking:     int(s.Tracking),
		DispatchedAt: s.DispatchedAt,
		ClosedAt:     s.ClosedAt,
		DelaySeconds: int64(s.Delay / time.Second),
		Version:      s.Version,
		Stops:        make([]StopDTO, 0, len(s.Stops)),
	}

	for i, stop := range s.Stops {
		dto.Stops = append(dto.Stops, StopDTO{
			RouteID:         dto.ID,
			Position:        i,
			OrderID:         stop.OrderID.Bytes(),
			Client:          stop.Client,
			Volume:          stop.Volume,
			DistanceKm:      stop.DistanceKm,
			DurationSeconds: int64(stop.Duration / time.Second),
			Priority:        int(stop.Priority),
			Lat:             stop.Location.Lat(),
			Lng:             stop.Location.Lng(),
			Completed:       stop.Completed,
		})
	}

	return dto
}

// toDomain expects dto.Stops ordered by position.
func toDomain(dto RouteDTO) (*route.Route, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	vehicleID, err := kernel.UUIDFromBytes(dto.VehicleID[:])
	if err != nil {
		return nil, err
	}

	s := route.State{
		ID:           id,
		VehicleID:    vehicleID,
		Plate:        dto.Plate,
		DriverName:   dto.DriverName,
		Date:         dto.Date,
		Period:       order.Period(dto.Period),
		Capacity:     dto.Capacity,
		Status:       route.Status(dto.Status),
		Tracking:     route.Tracking(dto.Tracking),
		DispatchedAt: dto.DispatchedAt,
		ClosedAt:     dto.ClosedAt,
		Delay:        time.Duration(dto.DelaySeconds) * time.Second,
		Version:      dto.Version,
		Stops:        make([]route.Stop, 0, len(dto.Stops)),
	}

	for _, stopDTO := range dto.Stops {
		orderID, idErr := kernel.UUIDFromBytes(stopDTO.OrderID[:])
		if idErr != nil {
			return nil, idErr
		}
		loc, locErr := kernel.NewLocation(stopDTO.Lat, stopDTO.Lng)
		if locErr != nil {
			return nil, locErr
		}
		s.Stops = append(s.Stops, route.Stop{
			OrderID:    orderID,
			Client:     stopDTO.Client,
			Volume:     stopDTO.Volume,
			DistanceKm: stopDTO.DistanceKm,
			Duration:   time.Duration(stopDTO.DurationSeconds) * time.Second,
			Priority:   order.Priority(stopDTO.Priority),
			Location:   loc,
			Completed:  stopDTO.Completed,
		})
	}

	return route.RestoreRoute(s)
}
