// Package orderrepo provides data transfer objects and mapping functions for
// order persistence. It implements the repository pattern for the order
// aggregate, handling conversion between domain entities and database rows.
package orderrepo

import (
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Status columns are stored as text so the guarded-write predicates read
// naturally in SQL and in provider dashboards.
type OrderDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	CustomerID     string    `gorm:"index"`
	AmountCentavos int64

	// DeliveryLat/DeliveryLng are null together when the order has no
	// usable delivery coordinates.
	DeliveryLat *float64 `gorm:"type:double precision"`
	DeliveryLng *float64 `gorm:"type:double precision"`

	AdminStatus    string     `gorm:"index"`
	DispatchStatus string     `gorm:"index"`
	Status         string     `gorm:"index"`
	CourierID      *uuid.UUID `gorm:"type:uuid;index"`

	PaymentStatus   string `gorm:"index"`
	PaymentProvider string
	PaymentIntentID string `gorm:"index"`
	PaymentRef      string

	UpdatedAt time.Time
	PaidAt    *time.Time
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// fromDomain converts an order domain aggregate to its database representation.
func fromDomain(aggregate *order.Order) OrderDTO {
	var courierID *uuid.UUID
	if id := aggregate.Courier(); id != nil {
		raw := id.Bytes()
		courierID = &raw
	}

	var lat, lng *float64
	if location := aggregate.DeliveryLocation(); location != nil {
		latValue, lngValue := location.Lat(), location.Lng()
		lat, lng = &latValue, &lngValue
	}

	return OrderDTO{
		ID:              aggregate.ID().Bytes(),
		CustomerID:      aggregate.CustomerID(),
		AmountCentavos:  aggregate.AmountCentavos(),
		DeliveryLat:     lat,
		DeliveryLng:     lng,
		AdminStatus:     string(aggregate.AdminStatus()),
		DispatchStatus:  string(aggregate.DispatchStatus()),
		Status:          string(aggregate.Status()),
		CourierID:       courierID,
		PaymentStatus:   string(aggregate.PaymentStatus()),
		PaymentProvider: aggregate.PaymentProvider(),
		PaymentIntentID: aggregate.PaymentIntentID(),
		PaymentRef:      aggregate.PaymentRef(),
		UpdatedAt:       aggregate.UpdatedAt(),
		PaidAt:          aggregate.PaidAt(),
	}
}

// toDomain converts a database DTO to an order domain aggregate.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var courierID *kernel.UUID
	if dto.CourierID != nil {
		cID, courierErr := kernel.UUIDFromBytes((*dto.CourierID)[:])
		if courierErr != nil {
			return nil, courierErr
		}
		courierID = &cID
	}

	var location *kernel.GeoPoint
	if dto.DeliveryLat != nil && dto.DeliveryLng != nil {
		point, locErr := kernel.NewGeoPoint(*dto.DeliveryLat, *dto.DeliveryLng)
		if locErr != nil {
			return nil, locErr
		}
		location = &point
	}

	return order.RestoreOrder(
		id,
		dto.CustomerID,
		dto.AmountCentavos,
		location,
		order.AdminStatus(dto.AdminStatus),
		order.DispatchStatus(dto.DispatchStatus),
		order.Status(dto.Status),
		courierID,
		order.PaymentStatus(dto.PaymentStatus),
		dto.PaymentProvider,
		dto.PaymentIntentID,
		dto.PaymentRef,
		dto.UpdatedAt,
		dto.PaidAt,
	)
}
