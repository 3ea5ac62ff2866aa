package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a marketplace member; the same user may post orders and offers
type User struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Subject        string         `gorm:"uniqueIndex;not null" json:"-"` // token 'sub' claim
	Name           string         `gorm:"not null" json:"name"`
	Email          string         `gorm:"uniqueIndex;not null" json:"email,omitempty"`
	Phone          *string        `json:"phone,omitempty"`
	Campus         *string        `gorm:"index" json:"campus,omitempty"`
	RolePreference RolePreference `gorm:"not null;default:'BOTH'" json:"role_preference,omitempty"`
	Rating         float64        `gorm:"not null;default:0" json:"rating"` // mean of all received reviews
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// UserSummary narrows a preloaded user to the fields shown next to orders, offers and messages
func UserSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "phone", "campus", "rating", "created_at")
}
