package models

import "time"

// Message is one chat message scoped to a match. IsRead transitions once,
// unread to read, by the receiving participant; rows are never deleted.
type Message struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	MatchID     uint      `gorm:"not null;index;index:idx_messages_match_token,unique" json:"match_id"`
	SenderPetID uint      `gorm:"not null;index" json:"sender_pet_id"`
	Content     string    `gorm:"size:500;not null" json:"content"`
	ClientToken *string   `gorm:"size:36;index:idx_messages_match_token,unique" json:"-"` // client idempotency key; nil when the sender supplies none
	IsRead      bool      `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`

	Match  Match `gorm:"foreignKey:MatchID" json:"-"`
	Sender Pet   `gorm:"foreignKey:SenderPetID" json:"-"`
}

func (Message) TableName() string {
	return "messages"
}
