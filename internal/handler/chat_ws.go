package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"zoodate/config"
	"zoodate/internal/auth"
	"zoodate/internal/service"
	"zoodate/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	chatWriteWait  = 10 * time.Second
	chatPongWait   = 60 * time.Second
	chatPingPeriod = (chatPongWait * 9) / 10
)

var chatUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// UpgradeChatWS upgrades to WebSocket for match chat; query: token, match_id.
// The caller's active pet must be a participant of the match. While the
// socket is open the pet counts as viewing the conversation, so incoming
// messages are read on arrival instead of generating push notifications.
func UpgradeChatWS(cfg *config.JWTConfig, chatHub *ws.ChatHub, chatSvc *service.ChatService, matchSvc *service.MatchService, identitySvc *service.IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		matchIDStr := c.Query("match_id")
		if token == "" || matchIDStr == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token and match_id required"})
			return
		}
		claims, err := auth.ParseAccessToken(cfg, token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		var matchID uint
		if _, err := fmt.Sscanf(matchIDStr, "%d", &matchID); err != nil || matchID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid match_id"})
			return
		}
		ctx := c.Request.Context()
		pet, err := identitySvc.ResolveActivePet(ctx, claims.UserID)
		if err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "create a pet profile first"})
			return
		}
		match, err := matchSvc.GetMatch(ctx, matchID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
			return
		}
		if !match.HasParticipant(pet.ID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "not part of this match"})
			return
		}
		conn, err := chatUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		client := ws.NewClient(claims.UserID, pet.ID)
		room := chatHub.Join(matchID, match.Pet1ID, match.Pet2ID, client)
		defer func() {
			room.Leave(client)
			client.Close()
			chatHub.RemoveRoomIfEmpty(matchID)
		}()

		// Opening the conversation reads everything pending.
		_, _ = chatSvc.MarkRead(ctx, matchID, pet.ID)

		conn.SetReadDeadline(time.Now().Add(chatPongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(chatPongWait))
			return nil
		})
		go func() {
			ticker := time.NewTicker(chatPingPeriod)
			defer ticker.Stop()
			for {
				select {
				case msg, ok := <-client.Send:
					if !ok {
						return
					}
					conn.SetWriteDeadline(time.Now().Add(chatWriteWait))
					if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
						return
					}
				case <-ticker.C:
					conn.SetWriteDeadline(time.Now().Add(chatWriteWait))
					if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
						return
					}
				}
			}
		}()
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				break
			}
			var msg struct {
				Type        string `json:"type"`
				Content     string `json:"content"`
				ClientToken string `json:"client_token"`
			}
			if json.Unmarshal(raw, &msg) != nil {
				continue
			}
			switch msg.Type {
			case "typing":
				// Ephemeral, never persisted; the sender already knows.
				room.BroadcastExcept(client, map[string]interface{}{
					"type":          "typing",
					"match_id":      matchID,
					"sender_pet_id": pet.ID,
				})
			case "message":
				if _, err := chatSvc.SendMessage(ctx, matchID, pet.ID, msg.Content, msg.ClientToken); err != nil {
					// Validation failures go back to the sender only.
					errPayload, _ := json.Marshal(map[string]interface{}{
						"type":  "error",
						"error": err.Error(),
					})
					select {
					case client.Send <- errPayload:
					default:
					}
				}
			}
		}
	}
}
