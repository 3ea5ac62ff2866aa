package models

import "time"

// DeliveryOffer represents a trip with spare carrying capacity
type DeliveryOffer struct {
	ID                uint        `gorm:"primaryKey" json:"id"`
	DelivererID       uint        `gorm:"not null;index" json:"deliverer_id"`
	Deliverer         User        `gorm:"foreignKey:DelivererID" json:"deliverer"`
	DepartureTime     time.Time   `gorm:"not null" json:"departure_time"`
	ReturnTime        time.Time   `gorm:"not null" json:"return_time"`
	DepartureLocation string      `gorm:"not null" json:"departure_location"`
	ReturnLocation    string      `gorm:"not null" json:"return_location"`
	MaxCapacity       int         `gorm:"not null;default:1;check:max_capacity > 0" json:"max_capacity"`
	ServiceFee        *float64    `json:"service_fee"`
	Status            OfferStatus `gorm:"not null;default:'ACTIVE';index" json:"status"`
	Matches           []Match     `gorm:"foreignKey:OfferID" json:"matches,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

func (DeliveryOffer) TableName() string {
	return "delivery_offers"
}
