package handler

import (
	"errors"
	"net/http"

	"zoodate/internal/domain"
	"zoodate/internal/middleware"
	"zoodate/internal/service"

	"github.com/gin-gonic/gin"
)

type LikeHandler struct {
	likeSvc     *service.LikeService
	identitySvc *service.IdentityService
}

func NewLikeHandler(likeSvc *service.LikeService, identitySvc *service.IdentityService) *LikeHandler {
	return &LikeHandler{likeSvc: likeSvc, identitySvc: identitySvc}
}

type JudgmentRequest struct {
	TargetPetID uint  `json:"target_pet_id" binding:"required"`
	IsLike      *bool `json:"is_like" binding:"required"`
}

// Create records a like or pass from the caller's active pet. When the like
// completes a mutual pair the response carries the match.
func (h *LikeHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req JudgmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	pet, err := h.identitySvc.ResolveActivePet(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNoActivePet) {
			c.JSON(http.StatusConflict, gin.H{"error": "create a pet profile first"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "profile lookup failed"})
		return
	}

	result, err := h.likeSvc.RecordJudgment(ctx, pet.ID, req.TargetPetID, *req.IsLike)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSelfJudgment):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrPetNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrDuplicateJudgment):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "judgment failed"})
		}
		return
	}
	out := gin.H{"like": result.Like, "matched": result.MutualMatch != nil}
	if result.MutualMatch != nil {
		out["match"] = result.MutualMatch
	}
	c.JSON(http.StatusCreated, out)
}
