package handler

import (
	"errors"
	"net/http"
	"strconv"

	"zoodate/internal/domain"
	"zoodate/internal/middleware"
	"zoodate/internal/models"
	"zoodate/internal/service"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatSvc     *service.ChatService
	matchSvc    *service.MatchService
	identitySvc *service.IdentityService
}

func NewChatHandler(chatSvc *service.ChatService, matchSvc *service.MatchService, identitySvc *service.IdentityService) *ChatHandler {
	return &ChatHandler{chatSvc: chatSvc, matchSvc: matchSvc, identitySvc: identitySvc}
}

// activePet resolves the caller's active pet or writes the error response.
func (h *ChatHandler) activePet(c *gin.Context) (*models.Pet, bool) {
	userID := middleware.GetUserID(c)
	pet, err := h.identitySvc.ResolveActivePet(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNoActivePet) {
			c.JSON(http.StatusConflict, gin.H{"error": "create a pet profile first"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "profile lookup failed"})
		}
		return nil, false
	}
	return pet, true
}

func matchIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("match_id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid match_id"})
		return 0, false
	}
	return uint(id), true
}

func writeChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrMatchNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotAParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrEmptyMessage), errors.Is(err, domain.ErrMessageTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "chat operation failed"})
	}
}

// ListMatches returns the caller's raw matches.
func (h *ChatHandler) ListMatches(c *gin.Context) {
	pet, ok := h.activePet(c)
	if !ok {
		return
	}
	list, err := h.matchSvc.ListMatchesForPet(c.Request.Context(), pet.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": list})
}

// ListConversations returns conversation summaries ordered by recent activity.
func (h *ChatHandler) ListConversations(c *gin.Context) {
	pet, ok := h.activePet(c)
	if !ok {
		return
	}
	list, err := h.chatSvc.ListConversationSummaries(c.Request.Context(), pet.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": list})
}

// GetMessages returns a page of the conversation and marks it read.
func (h *ChatHandler) GetMessages(c *gin.Context) {
	pet, ok := h.activePet(c)
	if !ok {
		return
	}
	matchID, ok := matchIDParam(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.chatSvc.ListMessages(c.Request.Context(), matchID, pet.ID, limit, offset)
	if err != nil {
		writeChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": list})
}

type SendMessageRequest struct {
	Content     string `json:"content" binding:"required"`
	ClientToken string `json:"client_token"` // optional idempotency key
}

// SendMessage appends a message to the conversation.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	pet, ok := h.activePet(c)
	if !ok {
		return
	}
	matchID, ok := matchIDParam(c)
	if !ok {
		return
	}
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	msg, err := h.chatSvc.SendMessage(c.Request.Context(), matchID, pet.ID, req.Content, req.ClientToken)
	if err != nil {
		writeChatError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// MarkRead marks every unread counterpart message in the match as read.
func (h *ChatHandler) MarkRead(c *gin.Context) {
	pet, ok := h.activePet(c)
	if !ok {
		return
	}
	matchID, ok := matchIDParam(c)
	if !ok {
		return
	}
	n, err := h.chatSvc.MarkRead(c.Request.Context(), matchID, pet.ID)
	if err != nil {
		writeChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked_read": n})
}
