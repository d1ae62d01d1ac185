package repository

import (
	"context"
	"sort"

	"zoodate/internal/models"
	"zoodate/pkg/location"

	"gorm.io/gorm"
)

// DiscoveryFilters for map-based nearby search.
type DiscoveryFilters struct {
	Latitude      float64
	Longitude     float64
	RadiusKm      float64
	Species       string
	Intent        string
	ExcludeUserID uint
	Limit         int
}

type DiscoveryResult struct {
	Pet        models.Pet
	PhotoURL   string
	DistanceKm float64
}

// DiscoveryRepository performs location-based pet discovery.
type DiscoveryRepository struct {
	db *gorm.DB
}

func NewDiscoveryRepository(db *gorm.DB) *DiscoveryRepository {
	return &DiscoveryRepository{db: db}
}

// DiscoverPets returns active pets within radius, nearest first. A bounding
// box pre-filters in SQL; the exact Haversine cut happens in the application
// layer. The caller's own pets are always excluded.
func (r *DiscoveryRepository) DiscoverPets(ctx context.Context, f DiscoveryFilters) ([]DiscoveryResult, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.RadiusKm <= 0 {
		f.RadiusKm = 10
	}
	// Approximate degree delta for radius (km): 1 deg ~ 111km
	delta := f.RadiusKm / 111.0
	latMin, latMax := f.Latitude-delta, f.Latitude+delta
	lngMin, lngMax := f.Longitude-delta, f.Longitude+delta

	query := r.db.WithContext(ctx).Model(&models.Pet{}).
		Where("is_active = ?", true).
		Where("user_id != ?", f.ExcludeUserID).
		Where("latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?", latMin, latMax, lngMin, lngMax)
	if f.Species != "" {
		query = query.Where("species = ?", f.Species)
	}
	if f.Intent != "" {
		query = query.Where("intent = ?", f.Intent)
	}

	var pets []models.Pet
	if err := query.Find(&pets).Error; err != nil {
		return nil, err
	}

	results := make([]DiscoveryResult, 0, len(pets))
	petIDs := make([]uint, 0, len(pets))
	for _, p := range pets {
		d := location.HaversineKm(f.Latitude, f.Longitude, p.Latitude, p.Longitude)
		if d > f.RadiusKm {
			continue
		}
		results = append(results, DiscoveryResult{Pet: p, DistanceKm: d})
		petIDs = append(petIDs, p.ID)
	}

	// Primary photos in one batch, not per pet.
	var photos []models.PetPhoto
	if len(petIDs) > 0 {
		if err := r.db.WithContext(ctx).
			Where("pet_id IN ? AND is_primary = ?", petIDs, true).
			Find(&photos).Error; err != nil {
			return nil, err
		}
	}
	photoByPet := make(map[uint]string, len(photos))
	for _, ph := range photos {
		photoByPet[ph.PetID] = ph.PhotoURL
	}
	for i := range results {
		results[i].PhotoURL = photoByPet[results[i].Pet.ID]
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].DistanceKm < results[j].DistanceKm
	})
	if len(results) > f.Limit {
		results = results[:f.Limit]
	}
	return results, nil
}
