package models

import (
	"time"
)

// Message represents a chat line between the two parties of a match.
// Messages are immutable once created.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MatchID   uint      `gorm:"not null;index" json:"match_id"`  // foreign key to matches table
	SenderID  uint      `gorm:"not null;index" json:"sender_id"` // foreign key to users table
	Sender    User      `gorm:"foreignKey:SenderID" json:"sender"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the Message model
func (Message) TableName() string {
	return "messages"
}
