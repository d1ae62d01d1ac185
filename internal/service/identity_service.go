package service

import (
	"context"
	"errors"

	"zoodate/internal/domain"
	"zoodate/internal/models"
)

// ActivePetStore looks up the single active pet profile of an account.
type ActivePetStore interface {
	GetActiveByUserID(ctx context.Context, userID uint) (*models.Pet, error)
}

// IdentityService maps an authenticated account to its active pet profile.
// "No active profile" is the normal state of an account that has not finished
// onboarding, so it surfaces as domain.ErrNoActivePet rather than a failure.
type IdentityService struct {
	pets ActivePetStore
}

func NewIdentityService(pets ActivePetStore) *IdentityService {
	return &IdentityService{pets: pets}
}

func (s *IdentityService) ResolveActivePet(ctx context.Context, accountID uint) (*models.Pet, error) {
	p, err := s.pets.GetActiveByUserID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNoActivePet) {
			return nil, err
		}
		return nil, domain.Transient(err)
	}
	return p, nil
}
