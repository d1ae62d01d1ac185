package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Pet is one animal's dating profile. An account keeps at most one active pet;
// creating a new profile deactivates the previous one in the same transaction.
type Pet struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          uint           `gorm:"not null;index:idx_pets_user_active" json:"user_id"`
	Name            string         `gorm:"size:100;not null" json:"name"`
	Species         string         `gorm:"size:20;not null" json:"species"`
	Breed           string         `gorm:"size:100" json:"breed"`
	Gender          string         `gorm:"size:10" json:"gender"`
	Age             int            `json:"age"`
	Bio             string         `gorm:"type:text" json:"bio"`
	PersonalityTags string         `gorm:"size:512" json:"-"` // JSON array of tags
	Intent          string         `gorm:"size:20;index" json:"intent"` // breeding | playdates | open
	HasPedigree     bool           `json:"has_pedigree"`
	IsNeutered      bool           `json:"is_neutered"`
	Latitude        float64        `json:"latitude"`
	Longitude       float64        `json:"longitude"`
	IsActive        bool           `gorm:"not null;default:true;index:idx_pets_user_active" json:"is_active"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	User   User       `gorm:"foreignKey:UserID" json:"-"`
	Photos []PetPhoto `gorm:"foreignKey:PetID" json:"photos,omitempty"`
}

func (Pet) TableName() string {
	return "pets"
}

// Tags decodes the personality tag list. Empty or malformed storage yields nil.
func (p *Pet) Tags() []string {
	if p.PersonalityTags == "" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(p.PersonalityTags), &tags); err != nil {
		return nil
	}
	return tags
}

// SetTags encodes the personality tag list for storage.
func (p *Pet) SetTags(tags []string) {
	if len(tags) == 0 {
		p.PersonalityTags = ""
		return
	}
	b, _ := json.Marshal(tags)
	p.PersonalityTags = string(b)
}

type PetPhoto struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	PetID     uint           `gorm:"not null;index" json:"pet_id"`
	PhotoURL  string         `gorm:"size:512;not null" json:"photo_url"`
	IsPrimary bool           `gorm:"not null;default:false;index" json:"is_primary"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Pet Pet `gorm:"foreignKey:PetID" json:"-"`
}

func (PetPhoto) TableName() string {
	return "pet_photos"
}
