// Package deliveryrepo persists open delivery attempts and the audit records
// of confirmed stops.
package deliveryrepo

import (
	"time"

	"routeplanner/internal/adapters/out/postgres/orderrepo"
	"routeplanner/internal/core/domain/model/delivery"
	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/domain/model/order"

	"github.com/google/uuid"
)

type AttemptDTO struct {
	ID            uuid.UUID                     `gorm:"type:uuid;primaryKey"`
	RouteID       uuid.UUID                     `gorm:"type:uuid;not null;uniqueIndex:idx_attempts_stop,priority:1"`
	OrderID       uuid.UUID                     `gorm:"type:uuid;not null;uniqueIndex:idx_attempts_stop,priority:2"`
	Phase         int                           `gorm:"not null"`
	Ordered       []orderrepo.LineItemDTO       `gorm:"serializer:json;type:jsonb"`
	Expected      []orderrepo.ReturnableDTO     `gorm:"serializer:json;type:jsonb"`
	Lines         []orderrepo.DeliveredLineDTO  `gorm:"serializer:json;type:jsonb"`
	Returnables   []orderrepo.CollectedAssetDTO `gorm:"serializer:json;type:jsonb"`
	RecipientName string
	ProofRef      string
	StartedAt     time.Time `gorm:"not null"`
}

func (AttemptDTO) TableName() string {
	return "delivery_attempts"
}

type RecordDTO struct {
	Seq         int64                 `gorm:"primaryKey;autoIncrement"`
	AttemptID   uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex"`
	RouteID     uuid.UUID             `gorm:"type:uuid;not null;index"`
	OrderID     uuid.UUID             `gorm:"type:uuid;not null"`
	Annotation  orderrepo.DeliveryDTO `gorm:"serializer:json;type:jsonb"`
	StartedAt   time.Time             `gorm:"not null"`
	ConfirmedAt time.Time             `gorm:"not null"`
}

func (RecordDTO) TableName() string {
	return "delivery_records"
}

func attemptFromDomain(a *delivery.Attempt) AttemptDTO {
	s := a.Snapshot()
	dto := AttemptDTO{
		ID:            s.ID.Bytes(),
		RouteID:       s.RouteID.Bytes(),
		OrderID:       s.OrderID.Bytes(),
		Phase:         int(s.Phase),
		RecipientName: s.RecipientName,
		ProofRef:      s.ProofRef,
		StartedAt:     s.StartedAt,
	}
	for _, item := range s.Ordered {
		dto.Ordered = append(dto.Ordered, orderrepo.LineItemDTO(item))
	}
	for _, r := range s.Expected {
		dto.Expected = append(dto.Expected, orderrepo.ReturnableDTO(r))
	}
	for _, l := range s.Lines {
		dto.Lines = append(dto.Lines, orderrepo.DeliveredLineDTO(l))
	}
	for _, r := range s.Returnables {
		dto.Returnables = append(dto.Returnables, orderrepo.CollectedAssetDTO(r))
	}
	return dto
}

func attemptToDomain(dto AttemptDTO) (*delivery.Attempt, error) {
	ids, err := parseIDs(dto.ID, dto.RouteID, dto.OrderID)
	if err != nil {
		return nil, err
	}

	s := delivery.State{
		ID:            ids[0],
		RouteID:       ids[1],
		OrderID:       ids[2],
		Phase:         delivery.Phase(dto.Phase),
		RecipientName: dto.RecipientName,
		ProofRef:      dto.ProofRef,
		StartedAt:     dto.StartedAt,
	}
	for _, item := range dto.Ordered {
		s.Ordered = append(s.Ordered, order.LineItem(item))
	}
	for _, r := range dto.Expected {
		s.Expected = append(s.Expected, order.ReturnableAsset(r))
	}
	for _, l := range dto.Lines {
		s.Lines = append(s.Lines, order.DeliveredLine(l))
	}
	for _, r := range dto.Returnables {
		s.Returnables = append(s.Returnables, order.CollectedAsset(r))
	}
	return delivery.RestoreAttempt(s)
}

func recordFromDomain(r delivery.Record) RecordDTO {
	return RecordDTO{
		AttemptID:   r.AttemptID.Bytes(),
		RouteID:     r.RouteID.Bytes(),
		OrderID:     r.OrderID.Bytes(),
		Annotation:  orderrepo.FromAnnotation(r.Annotation),
		StartedAt:   r.StartedAt,
		ConfirmedAt: r.ConfirmedAt,
	}
}

func recordToDomain(dto RecordDTO) (delivery.Record, error) {
	ids, err := parseIDs(dto.AttemptID, dto.RouteID, dto.OrderID)
	if err != nil {
		return delivery.Record{}, err
	}
	return delivery.Record{
		AttemptID:   ids[0],
		RouteID:     ids[1],
		OrderID:     ids[2],
		Annotation:  dto.Annotation.ToAnnotation(),
		StartedAt:   dto.StartedAt,
		ConfirmedAt: dto.ConfirmedAt,
	}, nil
}

func parseIDs(raw ...uuid.UUID) ([]kernel.UUID, error) {
	ids := make([]kernel.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := kernel.UUIDFromBytes(r[:])
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
