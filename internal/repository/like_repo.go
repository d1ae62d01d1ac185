package repository

import (
	"context"
	"errors"

	"zoodate/internal/domain"
	"zoodate/internal/models"

	"gorm.io/gorm"
)

type LikeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

// Create inserts a judgment. The unique index on (liker, liked) turns a lost
// insert race into ErrDuplicateJudgment; requires TranslateError on the gorm
// config so driver duplicate-key errors surface as gorm.ErrDuplicatedKey.
func (r *LikeRepository) Create(ctx context.Context, l *models.Like) error {
	err := r.db.WithContext(ctx).Create(l).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicateJudgment
	}
	return err
}

// HasLike reports whether likerPetID has recorded is_like=true toward likedPetID.
func (r *LikeRepository) HasLike(ctx context.Context, likerPetID, likedPetID uint) (bool, error) {
	var c int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("liker_pet_id = ? AND liked_pet_id = ? AND is_like = ?", likerPetID, likedPetID, true).
		Count(&c).Error
	return c > 0, err
}
