// Package orderrepo persists the order catalog. Items, returnables and the
// delivery annotation are small value lists stored as jsonb columns next to
// the order row.
package orderrepo

import (
	"time"

	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
type OrderDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Client      string    `gorm:"not null"`
	Address     string
	Items       []LineItemDTO   `gorm:"serializer:json;type:jsonb"`
	Returnables []ReturnableDTO `gorm:"serializer:json;type:jsonb"`
	Volume      int             `gorm:"not null"`
	Period      int             `gorm:"not null;index:idx_orders_pending,priority:2"`
	Priority    int             `gorm:"not null;index:idx_orders_pending,priority:3"`
	DistanceKm  float64
	Location    LocationDTO  `gorm:"embedded;embeddedPrefix:location_"`
	Status      int          `gorm:"not null;index:idx_orders_pending,priority:1"`
	RouteID     *uuid.UUID   `gorm:"type:uuid;index"`
	Delivery    *DeliveryDTO `gorm:"serializer:json;type:jsonb"`
	Version     int          `gorm:"not null"`
	CreatedAt   time.Time    `gorm:"autoCreateTime"`
}

// TableName overrides GORM's default naming convention.
func (OrderDTO) TableName() string {
	return "orders"
}

type LocationDTO struct {
	Lat float64
	Lng float64
}

type LineItemDTO struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName,omitempty"`
	Quantity    int    `json:"quantity"`
}

type ReturnableDTO struct {
	AssetType string `json:"assetType"`
	Expected  int    `json:"expected"`
}

type DeliveredLineDTO struct {
	ProductID string `json:"productId"`
	Ordered   int    `json:"ordered"`
	Delivered int    `json:"delivered"`
}

type CollectedAssetDTO struct {
	AssetType string `json:"assetType"`
	Expected  int    `json:"expected"`
	Counted   int    `json:"counted"`
}

type DeliveryDTO struct {
	Lines         []DeliveredLineDTO  `json:"lines"`
	Returnables   []CollectedAssetDTO `json:"returnables"`
	RecipientName string              `json:"recipientName"`
	ProofRef      string              `json:"proofRef"`
}

// FromAnnotation converts a delivery annotation; the delivery records share
// the encoding.
func FromAnnotation(a order.DeliveryAnnotation) DeliveryDTO {
	dto := DeliveryDTO{RecipientName: a.RecipientName, ProofRef: a.ProofRef}
	for _, l := range a.Lines {
		dto.Lines = append(dto.Lines, DeliveredLineDTO(l))
	}
	for _, r := range a.Returnables {
		dto.Returnables = append(dto.Returnables, CollectedAssetDTO(r))
	}
	return dto
}

func (dto DeliveryDTO) ToAnnotation() order.DeliveryAnnotation {
	a := order.DeliveryAnnotation{RecipientName: dto.RecipientName, ProofRef: dto.ProofRef}
	for _, l := range dto.Lines {
		a.Lines = append(a.Lines, order.DeliveredLine(l))
	}
	for _, r := range dto.Returnables {
		a.Returnables = append(a.Returnables, order.CollectedAsset(r))
	}
	return a
}

func fromDomain(o *order.Order) OrderDTO {
	var routeID *uuid.UUID
	if id := o.RouteID(); id != nil {
		raw := id.Bytes()
		routeID = &raw
	}

	var annotation *DeliveryDTO
	if d := o.Delivery(); d != nil {
		dto := FromAnnotation(*d)
		annotation = &dto
	}

	items := make([]LineItemDTO, 0, len(o.Items()))
	for _, item := range o.Items() {
		items = append(items, LineItemDTO(item))
	}
	returnables := make([]ReturnableDTO, 0, len(o.Returnables()))
	for _, r := range o.Returnables() {
		returnables = append(returnables, ReturnableDTO(r))
	}

	return OrderDTO{
		ID:          o.ID().Bytes(),
		Client:      o.Client(),
		Address:     o.Address(),
		Items:       items,
		Returnables: returnables,
		Volume:      o.Volume(),
		Period:      int(o.Period()),
		Priority:    int(o.Priority()),
		DistanceKm:  o.DistanceKm(),
		Location: LocationDTO{
			Lat: o.Location().Lat(),
			Lng: o.Location().Lng(),
		},
		Status:   int(o.Status()),
		RouteID:  routeID,
		Delivery: annotation,
		Version:  o.Version(),
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var routeID *kernel.UUID
	if dto.RouteID != nil {
		rID, routeErr := kernel.UUIDFromBytes((*dto.RouteID)[:])
		if routeErr != nil {
			return nil, routeErr
		}
		routeID = &rID
	}

	loc, err := kernel.NewLocation(dto.Location.Lat, dto.Location.Lng)
	if err != nil {
		return nil, err
	}

	details := order.Details{
		Client:     dto.Client,
		Address:    dto.Address,
		Volume:     dto.Volume,
		Period:     order.Period(dto.Period),
		Priority:   order.Priority(dto.Priority),
		DistanceKm: dto.DistanceKm,
		Location:   loc,
	}
	for _, item := range dto.Items {
		details.Items = append(details.Items, order.LineItem(item))
	}
	for _, r := range dto.Returnables {
		details.Returnables = append(details.Returnables, order.ReturnableAsset(r))
	}

	var annotation *order.DeliveryAnnotation
	if dto.Delivery != nil {
		a := dto.Delivery.ToAnnotation()
		annotation = &a
	}

	return order.RestoreOrder(id, details, order.Status(dto.Status), routeID, annotation, dto.Version)
}
