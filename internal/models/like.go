package models

import "time"

// Like is a directed judgment from one pet toward another. Rows are immutable;
// the composite unique index rejects a second judgment for the same ordered pair.
type Like struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	LikerPetID uint      `gorm:"not null;index:idx_likes_liker_liked,unique" json:"liker_pet_id"`
	LikedPetID uint      `gorm:"not null;index:idx_likes_liker_liked,unique" json:"liked_pet_id"`
	IsLike     bool      `gorm:"not null" json:"is_like"` // true = like, false = pass
	CreatedAt  time.Time `json:"created_at"`

	Liker Pet `gorm:"foreignKey:LikerPetID" json:"-"`
	Liked Pet `gorm:"foreignKey:LikedPetID" json:"-"`
}

func (Like) TableName() string {
	return "likes"
}
