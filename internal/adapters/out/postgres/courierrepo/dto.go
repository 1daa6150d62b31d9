// Package courierrepo provides data transfer objects and mapping functions
// for courier persistence.
package courierrepo

import (
	"time"

	"orderflow/internal/core/domain/model/courier"
	"orderflow/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// CourierDTO represents the database structure for persisting courier aggregates.
type CourierDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string
	RiderStatus string `gorm:"index"`

	// Lat/Lng are null together before the courier's first location report.
	Lat *float64 `gorm:"type:double precision"`
	Lng *float64 `gorm:"type:double precision"`

	UpdatedAt time.Time
}

// TableName specifies the database table name for courier entities.
func (CourierDTO) TableName() string {
	return "couriers"
}

// fromDomain converts a courier domain aggregate to its database representation.
func fromDomain(aggregate *courier.Courier) CourierDTO {
	var lat, lng *float64
	if location := aggregate.Location(); location != nil {
		latValue, lngValue := location.Lat(), location.Lng()
		lat, lng = &latValue, &lngValue
	}

	return CourierDTO{
		ID:          aggregate.ID().Bytes(),
		Name:        aggregate.Name(),
		RiderStatus: string(aggregate.Status()),
		Lat:         lat,
		Lng:         lng,
		UpdatedAt:   aggregate.UpdatedAt(),
	}
}

// toDomain converts a database DTO to a courier domain aggregate.
func toDomain(dto CourierDTO) (*courier.Courier, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var location *kernel.GeoPoint
	if dto.Lat != nil && dto.Lng != nil {
		point, locErr := kernel.NewGeoPoint(*dto.Lat, *dto.Lng)
		if locErr != nil {
			return nil, locErr
		}
		location = &point
	}

	return courier.RestoreCourier(
		id,
		dto.Name,
		courier.RiderStatus(dto.RiderStatus),
		location,
		dto.UpdatedAt,
	)
}
