package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"zoodate/internal/domain"
	"zoodate/internal/middleware"
	"zoodate/internal/models"
	"zoodate/internal/repository"
	"zoodate/internal/service"
	"zoodate/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PetHandler struct {
	petRepo     *repository.PetRepository
	matchSvc    *service.MatchService
	identitySvc *service.IdentityService
	cloud       cloudinary.Client
}

func NewPetHandler(petRepo *repository.PetRepository, matchSvc *service.MatchService, identitySvc *service.IdentityService, cloud cloudinary.Client) *PetHandler {
	return &PetHandler{petRepo: petRepo, matchSvc: matchSvc, identitySvc: identitySvc, cloud: cloud}
}

type CreatePetRequest struct {
	Name            string   `json:"name" binding:"required,min=1,max=100"`
	Species         string   `json:"species" binding:"required"`
	Breed           string   `json:"breed"`
	Gender          string   `json:"gender"`
	Age             int      `json:"age" binding:"omitempty,min=0,max=50"`
	Bio             string   `json:"bio" binding:"max=1000"`
	PersonalityTags []string `json:"personality_tags"`
	Intent          string   `json:"intent"`
	HasPedigree     bool     `json:"has_pedigree"`
	IsNeutered      bool     `json:"is_neutered"`
	Latitude        float64  `json:"latitude"`
	Longitude       float64  `json:"longitude"`
}

// Create registers a new pet profile as the account's active one. A previous
// active profile is retired in the same transaction.
func (h *PetHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req CreatePetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !domain.ValidSpecies(req.Species) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown species"})
		return
	}
	if req.Gender != "" && !domain.ValidGender(req.Gender) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown gender"})
		return
	}
	if req.Intent != "" && !domain.ValidIntent(req.Intent) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown intent"})
		return
	}
	if len(req.PersonalityTags) > domain.MaxPersonalityTags {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("at most %d personality tags", domain.MaxPersonalityTags)})
		return
	}
	pet := &models.Pet{
		UserID:      userID,
		Name:        req.Name,
		Species:     req.Species,
		Breed:       req.Breed,
		Gender:      req.Gender,
		Age:         req.Age,
		Bio:         req.Bio,
		Intent:      req.Intent,
		HasPedigree: req.HasPedigree,
		IsNeutered:  req.IsNeutered,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	}
	if pet.Intent == "" {
		pet.Intent = domain.IntentOpen
	}
	pet.SetTags(req.PersonalityTags)
	if err := h.petRepo.Create(c.Request.Context(), pet); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"pet": petView(pet)})
}

// Get returns a pet's public profile. When the caller's active pet is matched
// with it the response carries the match ID so the client can open the chat.
func (h *PetHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pet id"})
		return
	}
	ctx := c.Request.Context()
	pet, err := h.petRepo.GetByID(ctx, uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrPetNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "pet not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	out := gin.H{"pet": petView(pet)}

	userID := middleware.GetUserID(c)
	if mine, err := h.identitySvc.ResolveActivePet(ctx, userID); err == nil && mine.ID != pet.ID {
		if match, err := h.matchSvc.GetMatchForPair(ctx, mine.ID, pet.ID); err == nil {
			out["match_id"] = match.ID
		}
	}
	c.JSON(http.StatusOK, out)
}

// Deactivate retires a pet profile. Only the owner may do this; the row is
// kept because likes, matches, and messages reference it.
func (h *PetHandler) Deactivate(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pet id"})
		return
	}
	ctx := c.Request.Context()
	pet, err := h.petRepo.GetByID(ctx, uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "pet not found"})
		return
	}
	if pet.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your pet"})
		return
	}
	if err := h.petRepo.Deactivate(ctx, pet.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "deactivate failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// UploadPhoto accepts a multipart image, pushes it to Cloudinary, and records
// the photo. ?primary=true demotes any existing primary photo.
func (h *PetHandler) UploadPhoto(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pet id"})
		return
	}
	ctx := c.Request.Context()
	pet, err := h.petRepo.GetByID(ctx, uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "pet not found"})
		return
	}
	if pet.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your pet"})
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
		return
	}
	defer f.Close()

	publicID := fmt.Sprintf("pet_%d_%s", pet.ID, uuid.NewString())
	url, _, err := h.cloud.UploadImage(ctx, f, "pets", publicID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
		return
	}
	primary := c.Query("primary") == "true" || c.Query("primary") == "1" || len(pet.Photos) == 0
	photo := &models.PetPhoto{
		PetID:     pet.ID,
		PhotoURL:  url,
		IsPrimary: primary,
	}
	if err := h.petRepo.AddPhoto(ctx, photo); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"photo": photo})
}

// petView augments the JSON shape with decoded personality tags.
func petView(p *models.Pet) gin.H {
	return gin.H{
		"id":               p.ID,
		"user_id":          p.UserID,
		"name":             p.Name,
		"species":          p.Species,
		"breed":            p.Breed,
		"gender":           p.Gender,
		"age":              p.Age,
		"bio":              p.Bio,
		"personality_tags": p.Tags(),
		"intent":           p.Intent,
		"has_pedigree":     p.HasPedigree,
		"is_neutered":      p.IsNeutered,
		"is_active":        p.IsActive,
		"photos":           p.Photos,
		"created_at":       p.CreatedAt,
	}
}
