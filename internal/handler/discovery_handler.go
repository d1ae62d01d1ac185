package handler

import (
	"hash/fnv"
	"math"
	"net/http"
	"strconv"
	"strings"

	"zoodate/config"
	"zoodate/internal/domain"
	"zoodate/internal/middleware"
	"zoodate/internal/repository"
	"zoodate/pkg/location"

	"github.com/gin-gonic/gin"
)

type DiscoveryHandler struct {
	repo *repository.DiscoveryRepository
	cfg  *config.DiscoveryConfig
}

func NewDiscoveryHandler(repo *repository.DiscoveryRepository, cfg *config.DiscoveryConfig) *DiscoveryHandler {
	return &DiscoveryHandler{repo: repo, cfg: cfg}
}

// Discover returns nearby active pets, nearest first. Coordinates in the
// response are fuzzed so a pet's exact home location is never exposed.
func (h *DiscoveryHandler) Discover(c *gin.Context) {
	userID := middleware.GetUserID(c)
	lat, _ := strconv.ParseFloat(c.Query("lat"), 64)
	lng, _ := strconv.ParseFloat(c.Query("lng"), 64)
	radiusKm, _ := strconv.ParseFloat(c.Query("radius_km"), 64)
	if radiusKm <= 0 || radiusKm > domain.MaxSearchRadiusKm() {
		radiusKm = h.cfg.DefaultRadiusKm
	}
	species := strings.TrimSpace(c.Query("species"))
	intent := strings.TrimSpace(c.Query("intent"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > h.cfg.MaxResults {
		limit = h.cfg.MaxResults
	}

	results, err := h.repo.DiscoverPets(c.Request.Context(), repository.DiscoveryFilters{
		Latitude:      lat,
		Longitude:     lng,
		RadiusKm:      radiusKm,
		Species:       species,
		Intent:        intent,
		ExcludeUserID: userID,
		Limit:         limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "discovery failed"})
		return
	}

	out := make([]gin.H, len(results))
	for i, r := range results {
		fuzzLat, fuzzLng := fuzzCoords(r.Pet.ID, r.Pet.Latitude, r.Pet.Longitude)
		out[i] = gin.H{
			"pet_id":           r.Pet.ID,
			"name":             r.Pet.Name,
			"species":          r.Pet.Species,
			"breed":            r.Pet.Breed,
			"age":              r.Pet.Age,
			"intent":           r.Pet.Intent,
			"personality_tags": r.Pet.Tags(),
			"photo_url":        r.PhotoURL,
			"latitude":         fuzzLat,
			"longitude":        fuzzLng,
			"distance_km":      math.Round(r.DistanceKm*10) / 10,
		}
	}
	c.JSON(http.StatusOK, gin.H{"results": out})
}

// fuzzCoords offsets a pet's coordinates by a stable pseudo-random amount of
// up to ~300m. Stable per pet so the marker does not jump between requests.
func fuzzCoords(petID uint, lat, lng float64) (float64, float64) {
	h := fnv.New32a()
	var buf [4]byte
	buf[0] = byte(petID)
	buf[1] = byte(petID >> 8)
	buf[2] = byte(petID >> 16)
	buf[3] = byte(petID >> 24)
	h.Write(buf[:])
	seed := h.Sum32()
	// Two offsets in [-300m, 300m]
	dLat := (float64(seed&0xffff)/65535.0 - 0.5) * 600
	dLng := (float64(seed>>16)/65535.0 - 0.5) * 600
	return lat + location.FuzzMeters(dLat), lng + location.FuzzMeters(dLng)
}
