package models

import (
	"fmt"
	"time"
)

// Match pairs exactly one Order with exactly one DeliveryOffer.
// The composite unique index is the authoritative one-match-per-pair guard.
type Match struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	OrderID     uint          `gorm:"not null;uniqueIndex:idx_match_order_offer" json:"order_id"`
	Order       Order         `gorm:"foreignKey:OrderID" json:"order"`
	OfferID     uint          `gorm:"not null;uniqueIndex:idx_match_order_offer;index" json:"offer_id"`
	Offer       DeliveryOffer `gorm:"foreignKey:OfferID" json:"offer"`
	Status      MatchStatus   `gorm:"not null;default:'PENDING'" json:"status"`
	MatchedAt   time.Time     `gorm:"not null" json:"matched_at"`
	CompletedAt *time.Time    `json:"completed_at"`
	Messages    []Message     `gorm:"foreignKey:MatchID" json:"messages,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// TableName specifies the table name for the Match model
func (Match) TableName() string {
	return "matches"
}

// Room is the broadcast channel key for realtime events about this match
func (m Match) Room() string {
	return MatchRoom(m.ID)
}

// MatchRoom returns the broadcast channel key for a match id
func MatchRoom(matchID uint) string {
	return fmt.Sprintf("match-%d", matchID)
}
