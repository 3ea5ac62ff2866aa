package models

import "time"

// Review is a post-completion rating one match party leaves for the other
type Review struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	MatchID    uint      `gorm:"not null;uniqueIndex:idx_review_match_reviewer" json:"match_id"`
	Match      *Match    `gorm:"foreignKey:MatchID" json:"match,omitempty"`
	ReviewerID uint      `gorm:"not null;uniqueIndex:idx_review_match_reviewer" json:"reviewer_id"`
	Reviewer   User      `gorm:"foreignKey:ReviewerID" json:"reviewer"`
	RevieweeID uint      `gorm:"not null;index" json:"reviewee_id"`
	Reviewee   *User     `gorm:"foreignKey:RevieweeID" json:"reviewee,omitempty"`
	Rating     int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment    *string   `gorm:"type:text" json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for the Review model
func (Review) TableName() string {
	return "reviews"
}

// All returns every model in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&Order{},
		&DeliveryOffer{},
		&Match{},
		&Message{},
		&Review{},
	}
}
