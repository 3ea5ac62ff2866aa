package models

import (
	"time"
)

// Order represents an item a buyer needs transported
type Order struct {
	ID                  uint        `gorm:"primaryKey" json:"id"`
	CreatorID           uint        `gorm:"not null;index" json:"creator_id"` // foreign key to users table
	Creator             User        `gorm:"foreignKey:CreatorID" json:"creator"`
	Title               string      `gorm:"not null" json:"title"`
	Description         string      `gorm:"type:text;not null" json:"description"`
	PickupLocation      string      `gorm:"not null" json:"pickup_location"`
	DeliveryLocation    string      `gorm:"not null" json:"delivery_location"`
	Budget              float64     `gorm:"not null;check:budget > 0" json:"budget"`
	Deadline            *time.Time  `json:"deadline"`
	SpecialInstructions *string     `gorm:"type:text" json:"special_instructions"`
	Status              OrderStatus `gorm:"not null;default:'ACTIVE';index" json:"status"`
	Matches             []Match     `gorm:"foreignKey:OrderID" json:"matches,omitempty"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}
