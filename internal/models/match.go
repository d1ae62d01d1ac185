package models

import "time"

// Match is the permanent conversation handle for an unordered pet pair.
// Pet1ID < Pet2ID always; the unique index on the normalized pair guarantees
// at most one row per pair even under concurrent creation.
type Match struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Pet1ID    uint      `gorm:"not null;index:idx_matches_pair,unique" json:"pet_1_id"`
	Pet2ID    uint      `gorm:"not null;index:idx_matches_pair,unique" json:"pet_2_id"`
	CreatedAt time.Time `json:"created_at"`

	Pet1 Pet `gorm:"foreignKey:Pet1ID" json:"-"`
	Pet2 Pet `gorm:"foreignKey:Pet2ID" json:"-"`
}

func (Match) TableName() string {
	return "matches"
}

// HasParticipant reports whether petID is one of the two matched pets.
func (m *Match) HasParticipant(petID uint) bool {
	return petID == m.Pet1ID || petID == m.Pet2ID
}

// CounterpartOf returns the other participant's pet ID, or 0 when petID is
// not part of the match.
func (m *Match) CounterpartOf(petID uint) uint {
	switch petID {
	case m.Pet1ID:
		return m.Pet2ID
	case m.Pet2ID:
		return m.Pet1ID
	}
	return 0
}

// NormalizePair orders an unordered pet pair deterministically (lower ID first).
func NormalizePair(petA, petB uint) (uint, uint) {
	if petA > petB {
		return petB, petA
	}
	return petA, petB
}
