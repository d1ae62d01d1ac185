package service

import (
	"context"
	"errors"

	"zoodate/internal/domain"
	"zoodate/internal/models"

	"gorm.io/gorm"
)

// MatchStore is the persistence contract for matches. Implemented by
// repository.MatchRepository and by the in-memory store used in tests.
type MatchStore interface {
	Create(ctx context.Context, m *models.Match) error
	GetByID(ctx context.Context, id uint) (*models.Match, error)
	GetByPair(ctx context.Context, pet1ID, pet2ID uint) (*models.Match, error)
	ListByPetID(ctx context.Context, petID uint) ([]models.Match, error)
}

// MatchService is the sole authority for "is there a conversation between
// these two pets". It creates at most one match per unordered pair.
type MatchService struct {
	matches MatchStore
}

func NewMatchService(matches MatchStore) *MatchService {
	return &MatchService{matches: matches}
}

// GetOrCreateMatch returns the match for the unordered pair {petA, petB},
// creating it if absent. Symmetric and idempotent: both argument orders and
// repeated calls yield the same row. A concurrent create losing the insert
// race resolves by re-reading the winner's row.
func (s *MatchService) GetOrCreateMatch(ctx context.Context, petA, petB uint) (*models.Match, error) {
	if petA == petB {
		return nil, domain.ErrSelfJudgment
	}
	pet1, pet2 := models.NormalizePair(petA, petB)

	m, err := s.matches.GetByPair(ctx, pet1, pet2)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, domain.ErrMatchNotFound) {
		return nil, domain.Transient(err)
	}

	m = &models.Match{Pet1ID: pet1, Pet2ID: pet2}
	err = s.matches.Create(ctx, m)
	if err == nil {
		return m, nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost the race; the existing row is authoritative.
		m, err = s.matches.GetByPair(ctx, pet1, pet2)
		if err != nil {
			return nil, domain.Transient(err)
		}
		return m, nil
	}
	return nil, domain.Transient(err)
}

// GetMatchForPair looks up the existing match for the unordered pair without
// creating one. domain.ErrMatchNotFound when the pair never matched.
func (s *MatchService) GetMatchForPair(ctx context.Context, petA, petB uint) (*models.Match, error) {
	pet1, pet2 := models.NormalizePair(petA, petB)
	m, err := s.matches.GetByPair(ctx, pet1, pet2)
	if err != nil {
		if errors.Is(err, domain.ErrMatchNotFound) {
			return nil, err
		}
		return nil, domain.Transient(err)
	}
	return m, nil
}

// GetMatch loads a match by ID.
func (s *MatchService) GetMatch(ctx context.Context, id uint) (*models.Match, error) {
	m, err := s.matches.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrMatchNotFound) {
			return nil, err
		}
		return nil, domain.Transient(err)
	}
	return m, nil
}

// ListMatchesForPet enumerates a pet's conversations. Activity ordering is a
// derived property of the message store, not of the match rows.
func (s *MatchService) ListMatchesForPet(ctx context.Context, petID uint) ([]models.Match, error) {
	list, err := s.matches.ListByPetID(ctx, petID)
	if err != nil {
		return nil, domain.Transient(err)
	}
	return list, nil
}
