package repository

import (
	"context"
	"errors"

	"zoodate/internal/domain"
	"zoodate/internal/models"

	"gorm.io/gorm"
)

type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// Create inserts a match row. Callers must normalize the pair first; the
// unique index on (pet_1_id, pet_2_id) makes the insert race-safe, with a
// lost race surfacing as gorm.ErrDuplicatedKey for the caller to re-read.
func (r *MatchRepository) Create(ctx context.Context, m *models.Match) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MatchRepository) GetByID(ctx context.Context, id uint) (*models.Match, error) {
	var m models.Match
	err := r.db.WithContext(ctx).First(&m, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMatchNotFound
		}
		return nil, err
	}
	return &m, nil
}

// GetByPair looks up the match for a normalized pair.
func (r *MatchRepository) GetByPair(ctx context.Context, pet1ID, pet2ID uint) (*models.Match, error) {
	var m models.Match
	err := r.db.WithContext(ctx).
		Where("pet_1_id = ? AND pet_2_id = ?", pet1ID, pet2ID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMatchNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *MatchRepository) ListByPetID(ctx context.Context, petID uint) ([]models.Match, error) {
	var list []models.Match
	err := r.db.WithContext(ctx).
		Where("pet_1_id = ? OR pet_2_id = ?", petID, petID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}
