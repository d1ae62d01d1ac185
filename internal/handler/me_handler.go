package handler

import (
	"errors"
	"net/http"

	"zoodate/internal/domain"
	"zoodate/internal/middleware"
	"zoodate/internal/repository"
	"zoodate/internal/service"
	"zoodate/pkg/entitlement"

	"github.com/gin-gonic/gin"
)

type MeHandler struct {
	userRepo    *repository.UserRepository
	identitySvc *service.IdentityService
	entitle     *entitlement.Client
}

func NewMeHandler(userRepo *repository.UserRepository, identitySvc *service.IdentityService, entitle *entitlement.Client) *MeHandler {
	return &MeHandler{userRepo: userRepo, identitySvc: identitySvc, entitle: entitle}
}

// GetProfile returns the account together with its active pet profile, if any.
func (h *MeHandler) GetProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)
	ctx := c.Request.Context()
	u, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	out := gin.H{"user": u}
	pet, err := h.identitySvc.ResolveActivePet(ctx, userID)
	if err == nil {
		out["active_pet"] = pet
	} else if !errors.Is(err, domain.ErrNoActivePet) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "profile lookup failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

// UpdateProfile patches account-level fields.
func (h *MeHandler) UpdateProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Name         *string `json:"name"`
		LocationText *string `json:"location_text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	u, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.LocationText != nil {
		u.LocationText = *req.LocationText
	}
	if err := h.userRepo.Update(ctx, u); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// RegisterPushToken stores the device FCM token for push notifications.
func (h *MeHandler) RegisterPushToken(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
		return
	}
	ctx := c.Request.Context()
	u, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	u.FCMToken = req.Token
	if err := h.userRepo.Update(ctx, u); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetEntitlement probes RevenueCat for the premium entitlement of this account.
func (h *MeHandler) GetEntitlement(c *gin.Context) {
	userID := middleware.GetUserID(c)
	u, err := h.userRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	premium, err := h.entitle.IsEntitled(c.Request.Context(), u.Email)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "entitlement check failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"premium": premium, "enforced": h.entitle.Enabled()})
}
