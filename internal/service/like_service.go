package service

import (
	"context"
	"errors"

	"zoodate/internal/domain"
	"zoodate/internal/models"
)

// LikeStore is the persistence contract for the like ledger.
type LikeStore interface {
	Create(ctx context.Context, l *models.Like) error
	HasLike(ctx context.Context, likerPetID, likedPetID uint) (bool, error)
}

// PetGetter resolves pets by ID.
type PetGetter interface {
	GetByID(ctx context.Context, id uint) (*models.Pet, error)
}

// MatchNotifier pushes the "it's a match" notification to a pet's owner.
type MatchNotifier interface {
	NotifyNewMatch(ctx context.Context, userID, matchID uint, otherPetName string) error
}

// JudgmentResult is the outcome of recording a like or pass.
type JudgmentResult struct {
	Like models.Like

	// MutualMatch is non-nil when this judgment completed a mutual like.
	MutualMatch *models.Match
}

// LikeService records directional judgments and detects mutual interest.
type LikeService struct {
	likes   LikeStore
	pets    PetGetter
	matches *MatchService
	notif   MatchNotifier // may be nil
}

func NewLikeService(likes LikeStore, pets PetGetter, matches *MatchService, notif MatchNotifier) *LikeService {
	return &LikeService{likes: likes, pets: pets, matches: matches, notif: notif}
}

// RecordJudgment inserts a like/pass from actingPetID toward targetPetID.
// Exactly one like row is written; when the judgment is a like and the target
// has already liked back, the match for the pair is obtained or created and
// returned alongside the like.
func (s *LikeService) RecordJudgment(ctx context.Context, actingPetID, targetPetID uint, isLike bool) (*JudgmentResult, error) {
	if actingPetID == targetPetID {
		return nil, domain.ErrSelfJudgment
	}
	target, err := s.pets.GetByID(ctx, targetPetID)
	if err != nil {
		if errors.Is(err, domain.ErrPetNotFound) {
			return nil, err
		}
		return nil, domain.Transient(err)
	}

	like := models.Like{
		LikerPetID: actingPetID,
		LikedPetID: targetPetID,
		IsLike:     isLike,
	}
	if err := s.likes.Create(ctx, &like); err != nil {
		if errors.Is(err, domain.ErrDuplicateJudgment) {
			return nil, err
		}
		return nil, domain.Transient(err)
	}

	result := &JudgmentResult{Like: like}
	if !isLike {
		return result, nil
	}

	reciprocal, err := s.likes.HasLike(ctx, targetPetID, actingPetID)
	if err != nil {
		return nil, domain.Transient(err)
	}
	if !reciprocal {
		return result, nil
	}

	match, err := s.matches.GetOrCreateMatch(ctx, actingPetID, targetPetID)
	if err != nil {
		return nil, err
	}
	result.MutualMatch = match
	s.notifyMatched(ctx, match, actingPetID, target)
	return result, nil
}

// notifyMatched pushes "new match" to both owners. Best effort: a failed
// notification never fails the judgment.
func (s *LikeService) notifyMatched(ctx context.Context, match *models.Match, actingPetID uint, target *models.Pet) {
	if s.notif == nil {
		return
	}
	acting, err := s.pets.GetByID(ctx, actingPetID)
	if err != nil {
		return
	}
	_ = s.notif.NotifyNewMatch(ctx, acting.UserID, match.ID, target.Name)
	_ = s.notif.NotifyNewMatch(ctx, target.UserID, match.ID, acting.Name)
}
