package repository

import (
	"context"
	"errors"

	"zoodate/internal/models"

	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts a message. A duplicate client token within the match is
// reported as gorm.ErrDuplicatedKey so the caller can return the stored row.
func (r *MessageRepository) Create(ctx context.Context, m *models.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MessageRepository) GetByClientToken(ctx context.Context, matchID uint, token string) (*models.Message, error) {
	var m models.Message
	err := r.db.WithContext(ctx).
		Where("match_id = ? AND client_token = ?", matchID, token).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *MessageRepository) ListByMatchID(ctx context.Context, matchID uint, limit, offset int) ([]models.Message, error) {
	var list []models.Message
	err := r.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("created_at ASC, id ASC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

// MarkRead flips every unread message in the match not authored by readerPetID.
// The conditional WHERE makes concurrent calls safe to interleave; the return
// value is the number of rows transitioned (0 when nothing was unread).
func (r *MessageRepository) MarkRead(ctx context.Context, matchID, readerPetID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("match_id = ? AND sender_pet_id != ? AND is_read = ?", matchID, readerPetID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

// CountUnread counts messages authored by the counterpart that viewerPetID has
// not read. Recomputed on every call; nothing is cached.
func (r *MessageRepository) CountUnread(ctx context.Context, matchID, viewerPetID uint) (int64, error) {
	var c int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("match_id = ? AND sender_pet_id != ? AND is_read = ?", matchID, viewerPetID, false).
		Count(&c).Error
	return c, err
}

// LatestByMatchIDs returns each match's most recent message in one batched
// query, keyed by match ID. Matches without messages are absent from the map.
func (r *MessageRepository) LatestByMatchIDs(ctx context.Context, matchIDs []uint) (map[uint]models.Message, error) {
	if len(matchIDs) == 0 {
		return map[uint]models.Message{}, nil
	}
	var list []models.Message
	err := r.db.WithContext(ctx).
		Where("id IN (?)",
			r.db.Model(&models.Message{}).
				Select("MAX(id)").
				Where("match_id IN ?", matchIDs).
				Group("match_id"),
		).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint]models.Message, len(list))
	for _, m := range list {
		out[m.MatchID] = m
	}
	return out, nil
}

// CountUnreadByMatchIDs returns per-match unread counts for the viewer in one
// grouped query. Matches with zero unread are absent from the map.
func (r *MessageRepository) CountUnreadByMatchIDs(ctx context.Context, matchIDs []uint, viewerPetID uint) (map[uint]int64, error) {
	if len(matchIDs) == 0 {
		return map[uint]int64{}, nil
	}
	var rows []struct {
		MatchID uint
		Total   int64
	}
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Select("match_id, COUNT(*) as total").
		Where("match_id IN ? AND sender_pet_id != ? AND is_read = ?", matchIDs, viewerPetID, false).
		Group("match_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint]int64, len(rows))
	for _, row := range rows {
		out[row.MatchID] = row.Total
	}
	return out, nil
}
