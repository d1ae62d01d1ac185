package repository

import (
	"context"
	"errors"
	"time"

	"zoodate/internal/domain"
	"zoodate/internal/models"

	"gorm.io/gorm"
)

type PetRepository struct {
	db *gorm.DB
}

func NewPetRepository(db *gorm.DB) *PetRepository {
	return &PetRepository{db: db}
}

// Create inserts the pet as the account's active profile. Any previous active
// profile for the same account is deactivated in the same transaction, which
// keeps the one-active-pet-per-account invariant without a partial index.
func (r *PetRepository) Create(ctx context.Context, p *models.Pet) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Pet{}).
			Where("user_id = ? AND is_active = ?", p.UserID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		p.IsActive = true
		return tx.Create(p).Error
	})
}

func (r *PetRepository) GetByID(ctx context.Context, id uint) (*models.Pet, error) {
	var p models.Pet
	err := r.db.WithContext(ctx).Preload("User").Preload("Photos").First(&p, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPetNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PetRepository) GetActiveByUserID(ctx context.Context, userID uint) (*models.Pet, error) {
	var p models.Pet
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNoActivePet
		}
		return nil, err
	}
	return &p, nil
}

// GetByIDs returns the named pets keyed by ID, in one query.
func (r *PetRepository) GetByIDs(ctx context.Context, ids []uint) (map[uint]models.Pet, error) {
	if len(ids) == 0 {
		return map[uint]models.Pet{}, nil
	}
	var list []models.Pet
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]models.Pet, len(list))
	for _, p := range list {
		out[p.ID] = p
	}
	return out, nil
}

func (r *PetRepository) Update(ctx context.Context, p *models.Pet) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// Deactivate retires the profile; pets are never hard-deleted.
func (r *PetRepository) Deactivate(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Pet{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": false, "updated_at": time.Now()}).Error
}

// Photos

func (r *PetRepository) AddPhoto(ctx context.Context, photo *models.PetPhoto) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if photo.IsPrimary {
			if err := tx.Model(&models.PetPhoto{}).
				Where("pet_id = ? AND is_primary = ?", photo.PetID, true).
				Update("is_primary", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(photo).Error
	})
}

func (r *PetRepository) GetPrimaryPhotoURL(ctx context.Context, petID uint) (string, error) {
	var photo models.PetPhoto
	err := r.db.WithContext(ctx).
		Where("pet_id = ? AND is_primary = ?", petID, true).
		First(&photo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return photo.PhotoURL, nil
}

// PrimaryPhotoURLs returns primary photo URLs for the given pets in one query.
// Pets without a primary photo are absent from the map.
func (r *PetRepository) PrimaryPhotoURLs(ctx context.Context, petIDs []uint) (map[uint]string, error) {
	if len(petIDs) == 0 {
		return map[uint]string{}, nil
	}
	var photos []models.PetPhoto
	err := r.db.WithContext(ctx).
		Where("pet_id IN ? AND is_primary = ?", petIDs, true).
		Find(&photos).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint]string, len(photos))
	for _, ph := range photos {
		out[ph.PetID] = ph.PhotoURL
	}
	return out, nil
}
